package models

import "strings"

// Admin resources guarded by scopes of the form "<resource>:<action>".
const (
	ScopeRead   = "read"
	ScopeCreate = "create"
	ScopeUpdate = "update"
	ScopeDelete = "delete"
)

var ScopeActions = []string{ScopeRead, ScopeCreate, ScopeUpdate, ScopeDelete}

var AdminResources = []string{
	"appointments", "campaigns", "case-studies", "events", "resources",
	"services", "testimonials", "settings", "subscribers", "uploads",
}

// Role-based permission mappings
var rolePermissions = map[UserRole][]string{
	UserRoleSuperAdmin: {
		"*:*",
	},
	UserRoleAdmin: {
		"appointments:*", "campaigns:*", "case-studies:*", "events:*", "resources:*",
		"services:*", "testimonials:*", "settings:*", "subscribers:*", "uploads:*",
	},
	UserRoleEditor: {
		// Editors manage site content only
		"appointments:read", "campaigns:read", "settings:read", "subscribers:read",
		"case-studies:*", "events:*", "resources:*", "services:*", "testimonials:*", "uploads:*",
	},
}

// RoleHasScope reports whether a role grants the given "<resource>:<action>" scope.
func RoleHasScope(role UserRole, scope string) bool {
	resource, action, ok := strings.Cut(scope, ":")
	if !ok {
		return false
	}
	for _, granted := range rolePermissions[role] {
		gr, ga, _ := strings.Cut(granted, ":")
		if (gr == "*" || gr == resource) && (ga == "*" || ga == action) {
			return true
		}
	}
	return false
}

// ScopesForRole expands a role's grants into concrete scopes.
func ScopesForRole(role UserRole) []string {
	var scopes []string
	for _, resource := range AdminResources {
		for _, action := range ScopeActions {
			scope := resource + ":" + action
			if RoleHasScope(role, scope) {
				scopes = append(scopes, scope)
			}
		}
	}
	return scopes
}
