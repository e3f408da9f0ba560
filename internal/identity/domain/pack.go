package domain

import "time"

// PackRoleTemplate binds a role to a pack with the persona scope it is
// granted to at provisioning time.
type PackRoleTemplate struct {
	RoleID string
	Scope  PersonaScope
}

// Pack is a subscription-tier template: default role bundles plus
// numeric option limits.
type Pack struct {
	ID             string
	Name           string
	ContractsLimit int // maximum contracts an account on this pack may hold
	RoleTemplates  []PackRoleTemplate
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RolesForScope returns the role ids templated for the given persona scope.
func (p Pack) RolesForScope(scope PersonaScope) []string {
	var ids []string
	for _, tpl := range p.RoleTemplates {
		if tpl.Scope == scope {
			ids = append(ids, tpl.RoleID)
		}
	}
	return ids
}
