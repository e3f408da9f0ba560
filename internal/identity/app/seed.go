package app

import (
	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/service"
)

// defaultPermissions is the catalog installed on a fresh database. The
// scope suffix rides inside the action: "-all" grants every record of
// the context, "-own" only the caller's, "-*" is the wildcard matched
// at resolution time.
func defaultPermissions() []service.PermissionSeed {
	var seeds []service.PermissionSeed
	for _, ctx := range []string{"sites", "buildings", "apartments", "contracts", "accounts", "staff"} {
		for _, action := range []string{"read-all", "read-own", "read-*", "write-all", "write-own", "write-*"} {
			seeds = append(seeds, service.PermissionSeed{Context: ctx, Action: action})
		}
	}
	return seeds
}

// defaultRoles are the role templates of the standard pack. The manager
// role inherits the viewer baseline instead of restating it.
func defaultRoles() []service.RoleSeed {
	return []service.RoleSeed{
		{
			Name:  "viewer",
			Scope: string(domain.ScopeManager),
			Permissions: []string{
				"sites:read-own", "buildings:read-own", "apartments:read-own",
				"contracts:read-own", "accounts:read-own",
			},
		},
		{
			Name:         "manager",
			Scope:        string(domain.ScopeManager),
			InheritsFrom: []string{"viewer"},
			Permissions: []string{
				"sites:write-own", "buildings:write-own", "apartments:write-own",
				"staff:read-own",
			},
		},
		{
			Name:  "admin",
			Scope: string(domain.ScopeAdmin),
			Permissions: []string{
				"sites:read-*", "sites:write-*",
				"buildings:read-*", "buildings:write-*",
				"apartments:read-*", "apartments:write-*",
				"contracts:read-*", "contracts:write-*",
				"accounts:read-*", "accounts:write-*",
				"staff:read-*", "staff:write-*",
			},
		},
	}
}

func defaultPack(id string) domain.Pack {
	return domain.Pack{
		ID:             id,
		Name:           "Standard",
		ContractsLimit: 1,
	}
}
