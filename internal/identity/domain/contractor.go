package domain

import "time"

// ContractorType distinguishes the legal shape of the contracting entity.
type ContractorType string

const (
	ContractorNatural ContractorType = "Natural"
	ContractorLegal   ContractorType = "Legal"
)

// Contractor is the legal/natural person behind an account, one-to-one
// with it. It carries its own role set for the contractingEntity persona.
type Contractor struct {
	ID        string
	AccountID string // unique: one contractor per account
	Type      ContractorType
	Status    AccountStatus // mirrors the onboarding stage
	RoleIDs   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContractorView struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

func (c Contractor) PublicView() ContractorView {
	return ContractorView{
		ID:     c.ID,
		Type:   string(c.Type),
		Status: string(c.Status),
	}
}
