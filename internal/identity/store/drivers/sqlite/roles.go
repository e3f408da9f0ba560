package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, organization_type, organization_id, created_at, updated_at
		 FROM roles WHERE id = ?`, id)
	return r.scanRole(ctx, row)
}

func (r *rolesRepo) scanRole(ctx context.Context, row *sql.Row) (domain.Role, error) {
	var role domain.Role
	var orgType string
	err := row.Scan(&role.ID, &role.Name, &orgType, &role.OrganizationID,
		&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	role.OrganizationType = domain.OrganizationType(orgType)

	return r.populateLinks(ctx, role)
}

func (r *rolesRepo) populateLinks(ctx context.Context, role domain.Role) (domain.Role, error) {
	var err error
	role.PermissionIDs, err = listLinkedIDs(ctx, r.db,
		`SELECT permission_id FROM role_permissions WHERE role_id = ?`, role.ID)
	if err != nil {
		return domain.Role{}, err
	}

	role.InheritsFrom, err = listLinkedIDs(ctx, r.db,
		`SELECT inherits_role_id FROM role_inherits WHERE role_id = ?`, role.ID)
	if err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (r *rolesRepo) ListRolesByOrganization(ctx context.Context, orgType domain.OrganizationType, orgID string) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, organization_type, organization_id, created_at, updated_at
		 FROM roles WHERE organization_type = ? AND organization_id = ?
		 ORDER BY created_at ASC`,
		string(orgType), orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		var typ string
		if err := rows.Scan(&role.ID, &role.Name, &typ, &role.OrganizationID,
			&role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		role.OrganizationType = domain.OrganizationType(typ)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, role := range roles {
		populated, err := r.populateLinks(ctx, role)
		if err != nil {
			return nil, err
		}
		roles[i] = populated
	}
	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, organization_type, organization_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, string(role.OrganizationType), role.OrganizationID, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, permID := range role.PermissionIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`,
			role.ID, permID,
		); err != nil {
			return mapConstraint(err)
		}
	}

	for _, parentID := range role.InheritsFrom {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO role_inherits (role_id, inherits_role_id) VALUES (?, ?)`,
			role.ID, parentID,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM roles`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
