package domain

import "time"

// ContractStatus tracks the umbrella agreement's onboarding progress.
type ContractStatus string

const (
	ContractPending   ContractStatus = "Pending"
	ContractOnHold    ContractStatus = "OnHold"
	ContractActive    ContractStatus = "Active"
	ContractInactive  ContractStatus = "Inactive"
	ContractCompleted ContractStatus = "Completed"
	ContractStopped   ContractStatus = "Stopped"
)

// Contract is the umbrella agreement under which sites, buildings and
// apartments are registered. Parties are contracting entities.
type Contract struct {
	ID            string
	Status        ContractStatus
	ContractorIDs []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
