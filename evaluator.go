package designkit

import (
	"fmt"
	"strings"
)

// Evaluate decides whether a user holding userRoles may perform action on object.
//
// Evaluation order:
//   - no configuration for the object: allowed (fail-open)
//   - action listed in PublicAccess: allowed
//   - the first effective role (see ResolveRoles) whose permission lists the
//     action grants access, returning that role's field restrictions and the
//     filter of its first row permission
//
// When a record is supplied and the granting role has row permissions, at
// least one of them must list the action. A role failing its own row check
// does not deny; the next role may still grant access.
//
// Evaluate never panics on unknown objects, actions or roles.
//
// Example:
//
//	res := designkit.Evaluate(roles, perms, []string{"viewer"}, "orders", designkit.ActionRead, nil)
//	if !res.Allowed {
//	    log.Println(res.Reason)
//	}
func Evaluate(roles []RoleDefinition, permissions Permissions, userRoles []string, object string, action Action, record Record) PermissionCheckResult {
	config, ok := permissions[object]
	if !ok {
		return PermissionCheckResult{Allowed: true}
	}

	if containsAction(config.PublicAccess, action) {
		return PermissionCheckResult{Allowed: true}
	}

	for _, role := range ResolveRoles(userRoles, roles) {
		rp, ok := config.Roles[role]
		if !ok || !containsAction(rp.Actions, action) {
			continue
		}

		if record != nil && len(rp.RowPermissions) > 0 && !rowPermissionAllows(rp.RowPermissions, action) {
			continue
		}

		result := PermissionCheckResult{
			Allowed:           true,
			FieldRestrictions: rp.FieldPermissions,
		}
		if len(rp.RowPermissions) > 0 {
			result.RowFilter = rp.RowPermissions[0].Filter
		}
		return result
	}

	return PermissionCheckResult{
		Allowed: false,
		Reason:  deniedReason(object, action, userRoles),
	}
}

func rowPermissionAllows(rows []RowLevelPermission, action Action) bool {
	for _, rp := range rows {
		if containsAction(rp.Actions, action) {
			return true
		}
	}
	return false
}

// deniedReason echoes the roles as assigned, not the resolved set.
func deniedReason(object string, action Action, userRoles []string) string {
	return fmt.Sprintf("Action '%s' on '%s' is not permitted for roles: %s",
		action, object, strings.Join(userRoles, ", "))
}

// ResolveRoles expands userRoles through the inheritance graph in defs.
//
// The result is deduplicated and ordered breadth-first: the directly assigned
// roles first, then their parents, then grandparents. Cycles terminate because
// a role is enqueued at most once. Roles without a definition are kept but
// contribute no parents. If defs contains a name twice the first wins.
func ResolveRoles(userRoles []string, defs []RoleDefinition) []string {
	byName := make(map[string]RoleDefinition, len(defs))
	for _, d := range defs {
		if _, exists := byName[d.Name]; !exists {
			byName[d.Name] = d
		}
	}

	seen := make(map[string]bool, len(userRoles))
	resolved := make([]string, 0, len(userRoles))
	queue := make([]string, 0, len(userRoles))

	for _, r := range userRoles {
		if seen[r] {
			continue
		}
		seen[r] = true
		resolved = append(resolved, r)
		queue = append(queue, r)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		def, ok := byName[name]
		if !ok {
			continue
		}
		for _, parent := range def.Inherits {
			if seen[parent] {
				continue
			}
			seen[parent] = true
			resolved = append(resolved, parent)
			queue = append(queue, parent)
		}
	}

	return resolved
}
