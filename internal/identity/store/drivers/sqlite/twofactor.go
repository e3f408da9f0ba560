package sqlite

import (
	"context"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type twoFactorRepo struct {
	db dbtx
}

func (r *twoFactorRepo) GetCredentialByAccount(ctx context.Context, accountID string) (domain.TwoFactorCredential, error) {
	var c domain.TwoFactorCredential
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, seed, status, failed_attempts, counter, last_generated_at, created_at, updated_at
		 FROM two_factor_credentials WHERE account_id = ?`, accountID,
	).Scan(&c.ID, &c.AccountID, &c.Seed, &status, &c.FailedAttempts, &c.Counter,
		&c.LastGeneratedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.TwoFactorCredential{}, mapNotFound(err)
	}
	c.Status = domain.CredentialStatus(status)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, credential_id, secret, status, generated_at, expires_at
		 FROM passcodes WHERE credential_id = ? ORDER BY generated_at ASC, id ASC`, c.ID)
	if err != nil {
		return domain.TwoFactorCredential{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var pc domain.PassCode
		var pcStatus string
		if err := rows.Scan(&pc.ID, &pc.CredentialID, &pc.Secret, &pcStatus,
			&pc.GeneratedAt, &pc.ExpiresAt); err != nil {
			return domain.TwoFactorCredential{}, err
		}
		pc.Status = domain.PassCodeStatus(pcStatus)
		c.PassCodes = append(c.PassCodes, pc)
	}
	return c, rows.Err()
}

func (r *twoFactorRepo) CreateCredential(ctx context.Context, c domain.TwoFactorCredential) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO two_factor_credentials (id, account_id, seed, status, failed_attempts, counter, last_generated_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.Seed, string(c.Status), c.FailedAttempts, c.Counter,
		c.LastGeneratedAt, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, pc := range c.PassCodes {
		if err := r.insertPassCode(ctx, pc); err != nil {
			return err
		}
	}
	return nil
}

func (r *twoFactorRepo) insertPassCode(ctx context.Context, pc domain.PassCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO passcodes (id, credential_id, secret, status, generated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pc.ID, pc.CredentialID, pc.Secret, string(pc.Status), pc.GeneratedAt, pc.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *twoFactorRepo) AppendPassCode(ctx context.Context, credentialID string, code domain.PassCode, counter uint64) error {
	if err := r.insertPassCode(ctx, code); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE two_factor_credentials
		 SET counter = ?, last_generated_at = ?, updated_at = ?
		 WHERE id = ?`,
		counter, code.GeneratedAt, time.Now().UTC(), credentialID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *twoFactorRepo) ExpirePendingPassCode(ctx context.Context, credentialID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE passcodes SET status = ? WHERE credential_id = ? AND status = ?`,
		string(domain.PassCodeExpired), credentialID, string(domain.PassCodePending),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *twoFactorRepo) VerifyPendingPassCode(ctx context.Context, passCodeID string) error {
	// Guarded on status so a non-Pending entry stays immutable.
	res, err := r.db.ExecContext(ctx,
		`UPDATE passcodes SET status = ? WHERE id = ? AND status = ?`,
		string(domain.PassCodeVerified), passCodeID, string(domain.PassCodePending),
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *twoFactorRepo) IncrementFailedAttempts(ctx context.Context, credentialID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE two_factor_credentials
		 SET failed_attempts = failed_attempts + 1, updated_at = ?
		 WHERE id = ?`,
		time.Now().UTC(), credentialID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *twoFactorRepo) UpdateCredentialStatus(ctx context.Context, credentialID string, status domain.CredentialStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE two_factor_credentials SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), credentialID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
