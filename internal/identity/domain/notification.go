package domain

import "time"

// NotificationTarget is one recipient's read state.
type NotificationTarget struct {
	AccountID string
	Read      bool
	ReadAt    *time.Time
}

// Notification is a fan-out record produced by provisioning and security
// events.
type Notification struct {
	ID        string
	Subject   string
	Body      string
	Targets   []NotificationTarget
	CreatedAt time.Time
}

// EmailStatus tracks an outbox row through dispatch.
type EmailStatus string

const (
	EmailPending EmailStatus = "Pending"
	EmailSent    EmailStatus = "Sent"
	EmailFailed  EmailStatus = "Failed"
)

// EmailMessage is a transactional outbox row: enqueued in the same
// transaction as the state change that caused it, dispatched
// asynchronously.
type EmailMessage struct {
	ID        string
	Recipient string
	Subject   string
	Body      string
	Status    EmailStatus
	Attempts  int
	CreatedAt time.Time
	SentAt    *time.Time
}
