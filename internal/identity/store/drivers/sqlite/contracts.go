package sqlite

import (
	"context"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type contractsRepo struct {
	db dbtx
}

func (r *contractsRepo) GetContractByID(ctx context.Context, id string) (domain.Contract, error) {
	var c domain.Contract
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, status, created_at, updated_at FROM contracts WHERE id = ?`, id,
	).Scan(&c.ID, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Contract{}, mapNotFound(err)
	}
	c.Status = domain.ContractStatus(status)

	c.ContractorIDs, err = listLinkedIDs(ctx, r.db,
		`SELECT contractor_id FROM contract_parties WHERE contract_id = ?`, c.ID)
	if err != nil {
		return domain.Contract{}, err
	}
	return c, nil
}

func (r *contractsRepo) ListContractsByContractor(ctx context.Context, contractorID string) ([]domain.Contract, error) {
	ids, err := listLinkedIDs(ctx, r.db,
		`SELECT cp.contract_id
		 FROM contract_parties cp
		 JOIN contracts c ON c.id = cp.contract_id
		 WHERE cp.contractor_id = ?
		 ORDER BY c.created_at ASC`, contractorID)
	if err != nil {
		return nil, err
	}

	contracts := make([]domain.Contract, 0, len(ids))
	for _, id := range ids {
		c, err := r.GetContractByID(ctx, id)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

func (r *contractsRepo) CountContractsByContractor(ctx context.Context, contractorID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM contract_parties WHERE contractor_id = ?`, contractorID,
	).Scan(&n)
	return n, err
}

func (r *contractsRepo) CreateContract(ctx context.Context, c domain.Contract) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, string(c.Status), now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, contractorID := range c.ContractorIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO contract_parties (contract_id, contractor_id) VALUES (?, ?)`,
			c.ID, contractorID,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *contractsRepo) UpdateContractStatus(ctx context.Context, contractID string, status domain.ContractStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), contractID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
