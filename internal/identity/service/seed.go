package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/slogx"
)

// PermissionSeed is one catalog entry to install.
type PermissionSeed struct {
	Context string `json:"context"`
	Action  string `json:"action"`
}

// SeedItem is the per-entry result of a catalog load. Existing entries
// are reported, not overwritten; catalog loads are idempotent.
type SeedItem struct {
	Payload string     `json:"payload"`
	Status  ItemStatus `json:"status"`
}

// SeedResult is the batch result of a permission catalog load.
type SeedResult struct {
	Outcome BatchOutcome `json:"outcome"`
	Items   []SeedItem   `json:"items"`
}

// RoleSeed declares a role with the payloads it grants and the roles it
// inherits from, by name within the same batch.
type RoleSeed struct {
	Name         string   `json:"name"`
	Scope        string   `json:"scope"` // ADMIN or MANAGER
	Permissions  []string `json:"permissions"`
	InheritsFrom []string `json:"inheritsFrom"`
}

type SeedService struct {
	Store store.Store
}

// SeedPermissions installs catalog entries one by one, reporting each.
// An entry already present counts as success for the batch outcome.
func (s *SeedService) SeedPermissions(ctx context.Context, seeds []PermissionSeed) (SeedResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	result := SeedResult{Items: make([]SeedItem, 0, len(seeds))}
	var succeeded, failed int

	for _, seed := range seeds {
		perm := domain.Permission{
			ID:        idx.New().String(),
			Context:   seed.Context,
			Action:    seed.Action,
			CreatedAt: now,
		}

		item := SeedItem{Payload: perm.Payload()}
		switch err := s.Store.Permissions().CreatePermission(ctx, perm); {
		case err == nil:
			item.Status = ItemCreated
			succeeded++
		case errors.Is(err, store.ErrAlreadyExists):
			item.Status = ItemAlreadyPresent
			succeeded++
		default:
			item.Status = ItemFailed
			failed++
			log.Error("permission seed failed", slog.String("payload", item.Payload), slog.Any("error", err))
		}
		result.Items = append(result.Items, item)
	}

	result.Outcome = outcomeOf(succeeded, failed)
	return result, nil
}

// SeedPackRoles installs a pack together with its role templates in one
// transaction: either the whole tier exists afterwards or none of it.
// Role inheritance references are resolved by name within the batch.
func (s *SeedService) SeedPackRoles(ctx context.Context, pack domain.Pack, roles []RoleSeed) error {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		idByName := make(map[string]string, len(roles))
		for _, r := range roles {
			idByName[r.Name] = idx.New().String()
		}

		templates := make([]domain.PackRoleTemplate, 0, len(roles))
		for _, r := range roles {
			role := domain.Role{
				ID:               idByName[r.Name],
				Name:             r.Name,
				OrganizationType: domain.OrgPack,
				OrganizationID:   pack.ID,
				CreatedAt:        now,
				UpdatedAt:        now,
			}

			for _, payload := range r.Permissions {
				perm, err := tx.Permissions().GetPermissionByPayload(ctx, payload)
				if err != nil {
					return err
				}
				role.PermissionIDs = append(role.PermissionIDs, perm.ID)
			}

			for _, parent := range r.InheritsFrom {
				parentID, ok := idByName[parent]
				if !ok {
					return errors.New("service: role inherits from unknown role " + parent)
				}
				role.InheritsFrom = append(role.InheritsFrom, parentID)
			}

			if err := tx.Roles().CreateRole(ctx, role); err != nil {
				return err
			}
			templates = append(templates, domain.PackRoleTemplate{
				RoleID: role.ID,
				Scope:  domain.PersonaScope(r.Scope),
			})
		}

		pack.RoleTemplates = templates
		pack.CreatedAt = now
		pack.UpdatedAt = now
		return tx.Packs().CreatePack(ctx, pack)
	})
	if err != nil {
		return err
	}

	log.Info("pack seeded", slog.String("pack_id", pack.ID), slog.Int("roles", len(roles)))
	return nil
}

// SeedIfEmpty installs the default catalog and tier on a fresh database.
// Called once at startup; a populated store is left untouched.
func (s *SeedService) SeedIfEmpty(ctx context.Context, pack domain.Pack, perms []PermissionSeed, roles []RoleSeed) error {
	empty, err := s.Store.Permissions().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if _, err := s.SeedPermissions(ctx, perms); err != nil {
		return err
	}
	return s.SeedPackRoles(ctx, pack, roles)
}
