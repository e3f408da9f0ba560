package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type outboxRepo struct {
	db dbtx
}

func (r *outboxRepo) EnqueueEmail(ctx context.Context, m domain.EmailMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox_emails (id, recipient, subject, body, status, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Recipient, m.Subject, m.Body, string(domain.EmailPending), m.Attempts,
		time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *outboxRepo) ListPendingEmails(ctx context.Context, limit int) ([]domain.EmailMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipient, subject, body, status, attempts, created_at, sent_at
		 FROM outbox_emails WHERE status = ?
		 ORDER BY created_at ASC LIMIT ?`,
		string(domain.EmailPending), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmailMessage
	for rows.Next() {
		var m domain.EmailMessage
		var status string
		var sentAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Recipient, &m.Subject, &m.Body, &status,
			&m.Attempts, &m.CreatedAt, &sentAt); err != nil {
			return nil, err
		}
		m.Status = domain.EmailStatus(status)
		m.SentAt = mapNullTimePtr(sentAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *outboxRepo) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_emails SET status = ?, sent_at = ? WHERE id = ?`,
		string(domain.EmailSent), sentAt, id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *outboxRepo) MarkEmailFailed(ctx context.Context, id string, maxAttempts int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_emails
		 SET attempts = attempts + 1,
		     status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END
		 WHERE id = ?`,
		maxAttempts, string(domain.EmailFailed), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
