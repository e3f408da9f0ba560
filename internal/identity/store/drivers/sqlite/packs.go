package sqlite

import (
	"context"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type packsRepo struct {
	db dbtx
}

func (r *packsRepo) GetPackByID(ctx context.Context, id string) (domain.Pack, error) {
	var p domain.Pack
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, contracts_limit, created_at, updated_at FROM packs WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.ContractsLimit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Pack{}, mapNotFound(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT role_id, scope FROM pack_role_templates WHERE pack_id = ?`, id)
	if err != nil {
		return domain.Pack{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var tpl domain.PackRoleTemplate
		var scope string
		if err := rows.Scan(&tpl.RoleID, &scope); err != nil {
			return domain.Pack{}, err
		}
		tpl.Scope = domain.PersonaScope(scope)
		p.RoleTemplates = append(p.RoleTemplates, tpl)
	}
	return p, rows.Err()
}

func (r *packsRepo) CreatePack(ctx context.Context, p domain.Pack) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO packs (id, name, contracts_limit, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.ContractsLimit, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, tpl := range p.RoleTemplates {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO pack_role_templates (pack_id, role_id, scope) VALUES (?, ?, ?)`,
			p.ID, tpl.RoleID, string(tpl.Scope),
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}
