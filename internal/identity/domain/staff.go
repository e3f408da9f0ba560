package domain

import "time"

// StaffProfile links an account to a contracting entity with the role set
// evaluated under the staff persona. An account holds at most one.
type StaffProfile struct {
	ID           string
	AccountID    string // unique: one staff profile per account
	ContractorID string
	Status       AccountStatus
	RoleIDs      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type StaffProfileView struct {
	ID           string `json:"id"`
	ContractorID string `json:"contractingEntityId"`
	Status       string `json:"status"`
}

func (s StaffProfile) PublicView() StaffProfileView {
	return StaffProfileView{
		ID:           s.ID,
		ContractorID: s.ContractorID,
		Status:       string(s.Status),
	}
}
