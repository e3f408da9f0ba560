package sqlite

import (
	"context"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type permissionsRepo struct {
	db dbtx
}

func (r *permissionsRepo) GetPermissionByPayload(ctx context.Context, payload string) (domain.Permission, error) {
	var p domain.Permission
	err := r.db.QueryRowContext(ctx,
		`SELECT id, context, action, created_at FROM permissions WHERE payload = ?`, payload,
	).Scan(&p.ID, &p.Context, &p.Action, &p.CreatedAt)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) ListPermissionsByRole(ctx context.Context, roleID string, context string) ([]domain.Permission, error) {
	query := `SELECT p.id, p.context, p.action, p.created_at
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?`
	args := []any{roleID}
	if context != "" {
		query += ` AND p.context = ?`
		args = append(args, context)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Context, &p.Action, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (id, context, action, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Context, p.Action, p.Payload(), time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *permissionsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM permissions`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
