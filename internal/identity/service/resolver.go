package service

import (
	"context"
	"fmt"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
)

// ActorBundle carries the aggregates resolved for the current session.
// The pointers are nil when the session has no such persona.
type ActorBundle struct {
	Account    domain.Account
	Contractor *domain.Contractor
	Staff      *domain.StaffProfile
}

// RequiredPermission names the capability being checked.
type RequiredPermission struct {
	Context string
	Action  string
	Payload string
}

type ResolverService struct {
	Store store.Store
}

// HasPermission reports whether the actor, acting through the given
// persona, holds the required permission. The check is a pure boolean:
// it performs no writes, and absence of a match is the only deny signal.
func (s *ResolverService) HasPermission(
	ctx context.Context,
	persona domain.Persona,
	bundle ActorBundle,
	required RequiredPermission,
) (bool, error) {
	roleIDs, ok := bundle.roleIDsFor(persona)
	if !ok {
		return false, nil
	}

	payloads, err := s.collectPayloads(ctx, roleIDs, required.Context)
	if err != nil {
		return false, err
	}

	// The wildcard is computed from the caller's payload argument, not
	// the action. Stored payloads follow "<context>:<action>-<scope>",
	// so "read-*" grants every scope of "read". Kept literal for
	// compatibility; see the resolver tests pinning this.
	permissionPayload := required.Context + ":" + required.Action
	permissionWildCard := required.Context + ":" + required.Payload + "-*"

	for _, stored := range payloads {
		if stored == permissionPayload || stored == permissionWildCard {
			return true, nil
		}
	}
	return false, nil
}

// roleIDsFor selects which aggregate's role list to evaluate. A missing
// persona denies immediately.
func (b ActorBundle) roleIDsFor(persona domain.Persona) ([]string, bool) {
	switch persona {
	case domain.PersonaAccount:
		return b.Account.RoleIDs, b.Account.ID != ""
	case domain.PersonaContractor:
		if b.Contractor == nil {
			return nil, false
		}
		return b.Contractor.RoleIDs, true
	case domain.PersonaStaff:
		if b.Staff == nil {
			return nil, false
		}
		return b.Staff.RoleIDs, true
	default:
		return nil, false
	}
}

// collectPayloads loads every referenced role with its direct permissions
// (filtered to the requested context) and, transitively, those of the
// roles it inherits from. The walk keeps two sets: seen roles are skipped
// (diamonds are fine), roles still on the current path mean a cycle and
// return ErrRoleCycle instead of looping.
func (s *ResolverService) collectPayloads(ctx context.Context, roleIDs []string, permContext string) ([]string, error) {
	var payloads []string
	seen := make(map[string]struct{})
	onPath := make(map[string]struct{})

	var walk func(roleID string) error
	walk = func(roleID string) error {
		if _, cyclic := onPath[roleID]; cyclic {
			return fmt.Errorf("%w: role %s", ErrRoleCycle, roleID)
		}
		if _, done := seen[roleID]; done {
			return nil
		}
		seen[roleID] = struct{}{}
		onPath[roleID] = struct{}{}
		defer delete(onPath, roleID)

		role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
		if err != nil {
			return err
		}

		perms, err := s.Store.Permissions().ListPermissionsByRole(ctx, roleID, permContext)
		if err != nil {
			return err
		}
		for _, p := range perms {
			payloads = append(payloads, p.Payload())
		}

		for _, parentID := range role.InheritsFrom {
			if err := walk(parentID); err != nil {
				return err
			}
		}
		return nil
	}

	for _, roleID := range roleIDs {
		if err := walk(roleID); err != nil {
			return nil, err
		}
	}
	return payloads, nil
}
