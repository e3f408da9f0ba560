package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, first_name, last_name, address, phone, email, password_hash, status, pack_id, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return r.scanAccount(ctx, row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return r.scanAccount(ctx, row)
}

func (r *accountsRepo) scanAccount(ctx context.Context, row *sql.Row) (domain.Account, error) {
	var a domain.Account
	var status string
	err := row.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Address, &a.Phone,
		&a.Email, &a.PasswordHash, &status, &a.PackID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Status = domain.AccountStatus(status)

	a.RoleIDs, err = listLinkedIDs(ctx, r.db,
		`SELECT role_id FROM account_roles WHERE account_id = ?`, a.ID)
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, first_name, last_name, address, phone, email, password_hash, status, pack_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FirstName, a.LastName, a.Address, a.Phone,
		a.Email, a.PasswordHash, string(a.Status), a.PackID, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, roleID := range a.RoleIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO account_roles (account_id, role_id) VALUES (?, ?)`,
			a.ID, roleID,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *accountsRepo) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// listLinkedIDs collects the single-column result of a join-table query.
func listLinkedIDs(ctx context.Context, db dbtx, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// requireAffected maps a zero-row update to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
