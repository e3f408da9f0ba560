package sqlite

import (
	"context"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type staffRepo struct {
	db dbtx
}

func (r *staffRepo) GetStaffProfileByAccount(ctx context.Context, accountID string) (domain.StaffProfile, error) {
	var s domain.StaffProfile
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, contractor_id, status, created_at, updated_at
		 FROM staff_profiles WHERE account_id = ?`, accountID,
	).Scan(&s.ID, &s.AccountID, &s.ContractorID, &status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.StaffProfile{}, mapNotFound(err)
	}
	s.Status = domain.AccountStatus(status)

	s.RoleIDs, err = listLinkedIDs(ctx, r.db,
		`SELECT role_id FROM staff_roles WHERE staff_id = ?`, s.ID)
	if err != nil {
		return domain.StaffProfile{}, err
	}
	return s, nil
}

func (r *staffRepo) CreateStaffProfile(ctx context.Context, s domain.StaffProfile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff_profiles (id, account_id, contractor_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.ContractorID, string(s.Status), now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, roleID := range s.RoleIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO staff_roles (staff_id, role_id) VALUES (?, ?)`,
			s.ID, roleID,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}
