package store

import (
	"context"
	"errors"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement
// this. It exposes sub-repositories to keep concerns tidy and testable,
// and to actively stop callers from accidentally nesting transactions.
type Store interface {
	Packs() Packs
	Accounts() Accounts
	Contractors() Contractors
	StaffProfiles() StaffProfiles
	Contracts() Contracts
	Roles() Roles
	Permissions() Permissions
	TwoFactor() TwoFactor
	Notifications() Notifications
	Outbox() Outbox

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-record writes such as provisioning.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Packs interface {
	// GetPackByID returns a pack with its role templates populated.
	GetPackByID(ctx context.Context, id string) (domain.Pack, error)

	// CreatePack inserts a pack together with its role templates.
	CreatePack(ctx context.Context, p domain.Pack) error
}

type Accounts interface {
	// GetAccountByID returns an account with its role ids populated.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail looks up by the lowercase-normalized address.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account. A duplicate email surfaces as
	// ErrAlreadyExists via the unique index, not a pre-check.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccountStatus sets the lifecycle status and bumps updated_at.
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}

type Contractors interface {
	GetContractorByID(ctx context.Context, id string) (domain.Contractor, error)

	// GetContractorByAccount resolves the one-to-one link from an account.
	GetContractorByAccount(ctx context.Context, accountID string) (domain.Contractor, error)

	// CreateContractor inserts a contracting entity with its role set.
	// A second contractor for the same account is ErrAlreadyExists.
	CreateContractor(ctx context.Context, c domain.Contractor) error

	UpdateContractorStatus(ctx context.Context, contractorID string, status domain.AccountStatus) error
}

type StaffProfiles interface {
	GetStaffProfileByAccount(ctx context.Context, accountID string) (domain.StaffProfile, error)

	// CreateStaffProfile inserts a staff profile with its role set.
	// A second profile for the same account is ErrAlreadyExists.
	CreateStaffProfile(ctx context.Context, s domain.StaffProfile) error
}

type Contracts interface {
	GetContractByID(ctx context.Context, id string) (domain.Contract, error)

	// ListContractsByContractor returns all contracts a contracting
	// entity is party to, oldest first.
	ListContractsByContractor(ctx context.Context, contractorID string) ([]domain.Contract, error)

	// CountContractsByContractor is the cheap headroom check used on
	// every session re-evaluation.
	CountContractsByContractor(ctx context.Context, contractorID string) (int, error)

	CreateContract(ctx context.Context, c domain.Contract) error

	UpdateContractStatus(ctx context.Context, contractID string, status domain.ContractStatus) error
}

type Roles interface {
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// ListRolesByOrganization returns the roles owned by a pack template
	// or contract instance.
	ListRolesByOrganization(ctx context.Context, orgType domain.OrganizationType, orgID string) ([]domain.Role, error)

	// CreateRole inserts a role with its permission references and
	// inheritance edges. Cycles are not validated here.
	CreateRole(ctx context.Context, r domain.Role) error

	// IsEmpty returns true if there are no roles.
	IsEmpty(ctx context.Context) (bool, error)
}

type Permissions interface {
	GetPermissionByPayload(ctx context.Context, payload string) (domain.Permission, error)

	// ListPermissionsByRole returns a role's direct permissions,
	// optionally filtered to one context ("" means all).
	ListPermissionsByRole(ctx context.Context, roleID string, context string) ([]domain.Permission, error)

	CreatePermission(ctx context.Context, p domain.Permission) error

	// IsEmpty returns true if the catalog has not been seeded.
	IsEmpty(ctx context.Context) (bool, error)
}

type TwoFactor interface {
	// GetCredentialByAccount loads the credential with its full passcode
	// history, oldest first.
	GetCredentialByAccount(ctx context.Context, accountID string) (domain.TwoFactorCredential, error)

	// CreateCredential inserts the credential together with its first
	// passcode. A second credential for the same account is ErrAlreadyExists.
	CreateCredential(ctx context.Context, c domain.TwoFactorCredential) error

	// AppendPassCode pushes a new history entry and updates the
	// credential's counter and last_generated_at.
	AppendPassCode(ctx context.Context, credentialID string, code domain.PassCode, counter uint64) error

	// ExpirePendingPassCode flips any Pending entry to Expired and
	// reports how many rows changed (0 when the tail was already dead).
	ExpirePendingPassCode(ctx context.Context, credentialID string) (int, error)

	// VerifyPendingPassCode marks the given passcode Verified only if it
	// is still Pending; returns ErrNotFound otherwise.
	VerifyPendingPassCode(ctx context.Context, passCodeID string) error

	IncrementFailedAttempts(ctx context.Context, credentialID string) error

	UpdateCredentialStatus(ctx context.Context, credentialID string, status domain.CredentialStatus) error
}

type Notifications interface {
	// CreateNotification inserts the record with its fan-out targets.
	CreateNotification(ctx context.Context, n domain.Notification) error

	// ListNotificationsByAccount returns notifications targeting an
	// account, newest first.
	ListNotificationsByAccount(ctx context.Context, accountID string) ([]domain.Notification, error)

	// MarkNotificationRead flips one target's read flag.
	MarkNotificationRead(ctx context.Context, notificationID, accountID string, readAt time.Time) error
}

type Outbox interface {
	// EnqueueEmail inserts a Pending outbox row. Call inside the same
	// transaction as the state change that produced it.
	EnqueueEmail(ctx context.Context, m domain.EmailMessage) error

	// ListPendingEmails returns up to limit Pending rows, oldest first.
	ListPendingEmails(ctx context.Context, limit int) ([]domain.EmailMessage, error)

	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error

	// MarkEmailFailed bumps the attempt counter; the row stays Pending
	// until maxAttempts, then flips to Failed.
	MarkEmailFailed(ctx context.Context, id string, maxAttempts int) error
}
