package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type contractorsRepo struct {
	db dbtx
}

const contractorColumns = `id, account_id, type, status, created_at, updated_at`

func (r *contractorsRepo) GetContractorByID(ctx context.Context, id string) (domain.Contractor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractorColumns+` FROM contractors WHERE id = ?`, id)
	return r.scanContractor(ctx, row)
}

func (r *contractorsRepo) GetContractorByAccount(ctx context.Context, accountID string) (domain.Contractor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractorColumns+` FROM contractors WHERE account_id = ?`, accountID)
	return r.scanContractor(ctx, row)
}

func (r *contractorsRepo) scanContractor(ctx context.Context, row *sql.Row) (domain.Contractor, error) {
	var c domain.Contractor
	var typ, status string
	err := row.Scan(&c.ID, &c.AccountID, &typ, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Contractor{}, mapNotFound(err)
	}
	c.Type = domain.ContractorType(typ)
	c.Status = domain.AccountStatus(status)

	c.RoleIDs, err = listLinkedIDs(ctx, r.db,
		`SELECT role_id FROM contractor_roles WHERE contractor_id = ?`, c.ID)
	if err != nil {
		return domain.Contractor{}, err
	}
	return c, nil
}

func (r *contractorsRepo) CreateContractor(ctx context.Context, c domain.Contractor) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contractors (id, account_id, type, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, string(c.Type), string(c.Status), now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, roleID := range c.RoleIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO contractor_roles (contractor_id, role_id) VALUES (?, ?)`,
			c.ID, roleID,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *contractorsRepo) UpdateContractorStatus(ctx context.Context, contractorID string, status domain.AccountStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contractors SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), contractorID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
