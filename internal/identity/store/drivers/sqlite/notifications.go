package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

type notificationsRepo struct {
	db dbtx
}

func (r *notificationsRepo) CreateNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, subject, body, created_at) VALUES (?, ?, ?, ?)`,
		n.ID, n.Subject, n.Body, time.Now().UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, target := range n.Targets {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO notification_targets (notification_id, account_id, read, read_at)
			 VALUES (?, ?, ?, ?)`,
			n.ID, target.AccountID, target.Read, target.ReadAt,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *notificationsRepo) ListNotificationsByAccount(ctx context.Context, accountID string) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.subject, n.body, n.created_at, nt.read, nt.read_at
		 FROM notifications n
		 JOIN notification_targets nt ON nt.notification_id = n.id
		 WHERE nt.account_id = ?
		 ORDER BY n.created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var read bool
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.Subject, &n.Body, &n.CreatedAt, &read, &readAt); err != nil {
			return nil, err
		}
		n.Targets = []domain.NotificationTarget{{
			AccountID: accountID,
			Read:      read,
			ReadAt:    mapNullTimePtr(readAt),
		}}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationsRepo) MarkNotificationRead(ctx context.Context, notificationID, accountID string, readAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notification_targets SET read = TRUE, read_at = ?
		 WHERE notification_id = ? AND account_id = ?`,
		readAt, notificationID, accountID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
