package domain

import "time"

// OrganizationType tags who owns a role: a pack template or a contract
// instance.
type OrganizationType string

const (
	OrgPack     OrganizationType = "pack"
	OrgContract OrganizationType = "contract"
)

// PersonaScope tags a pack role template with the persona it is granted
// to during provisioning.
type PersonaScope string

const (
	ScopeAdmin   PersonaScope = "ADMIN"   // contracting-entity roles
	ScopeManager PersonaScope = "MANAGER" // staff roles
)

// Role holds direct permission references and may inherit from other
// roles. The inheritance graph is directed; cycle detection happens at
// resolution time, not at write time.
type Role struct {
	ID               string
	Name             string
	OrganizationType OrganizationType
	OrganizationID   string
	PermissionIDs    []string
	InheritsFrom     []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Permission is an immutable catalog entry. The canonical payload string
// "<context>:<action>" is what authorization matches against; scope
// suffixes on the action (-*, -all, -own, ...) ride along inside it.
type Permission struct {
	ID        string
	Context   string
	Action    string
	CreatedAt time.Time
}

// Payload returns the canonical "<context>:<action>" matching string.
func (p Permission) Payload() string {
	return p.Context + ":" + p.Action
}

// Persona selects which aggregate's role list a permission check
// evaluates.
type Persona string

const (
	PersonaAccount    Persona = "account"
	PersonaContractor Persona = "contractingEntity"
	PersonaStaff      Persona = "staff"
)
