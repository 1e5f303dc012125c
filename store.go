package designkit

import (
	"sync"
)

// StoreConfig is the initial state of a Store.
type StoreConfig struct {
	Roles       []RoleDefinition
	Permissions Permissions
	UserRoles   []string
	User        *User
}

// Store holds the current roles, permissions and user roles and answers
// permission checks against them.
//
// Store is not reactive: setters take effect on the next Check and nothing
// is cached. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	roles       []RoleDefinition
	permissions Permissions
	userRoles   []string
	user        *User
}

// NewStore creates a Store from cfg.
//
// Example:
//
//	store := designkit.NewStore(designkit.StoreConfig{
//	    Roles:       policy.Roles,
//	    Permissions: policy.Permissions,
//	    UserRoles:   []string{"editor"},
//	})
//	if store.Can("orders", designkit.ActionUpdate) {
//	    // show the edit button
//	}
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		roles:       cfg.Roles,
		permissions: cfg.Permissions,
		userRoles:   cfg.UserRoles,
		user:        cfg.User,
	}
}

// NewStoreFromPolicy creates a Store for userRoles over a policy.
func NewStoreFromPolicy(policy *Policy, userRoles ...string) *Store {
	return NewStore(StoreConfig{
		Roles:       policy.Roles,
		Permissions: policy.Permissions,
		UserRoles:   userRoles,
	})
}

// DefaultStore returns a Store with no permission configuration. Every check
// against it is allowed, since unconfigured objects are fail-open.
// Callers use it explicitly where no policy has been loaded yet.
func DefaultStore() *Store {
	return NewStore(StoreConfig{})
}

// Check evaluates action on object for the current user roles.
// record may be nil when no specific row is involved.
func (s *Store) Check(object string, action Action, record Record) PermissionCheckResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Evaluate(s.roles, s.permissions, s.userRoles, object, action, record)
}

// Can is a shortcut for Check(object, action, nil).Allowed.
func (s *Store) Can(object string, action Action) bool {
	return s.Check(object, action, nil).Allowed
}

// CheckAny reports whether any of the actions is allowed on object.
//
// Example:
//
//	if store.CheckAny("orders", designkit.ActionUpdate, designkit.ActionDelete) {
//	    // show the row menu
//	}
func (s *Store) CheckAny(object string, actions ...Action) bool {
	for _, a := range actions {
		if s.Can(object, a) {
			return true
		}
	}
	return false
}

// CheckAll reports whether every action is allowed on object.
// It is true for an empty action list.
func (s *Store) CheckAll(object string, actions ...Action) bool {
	for _, a := range actions {
		if !s.Can(object, a) {
			return false
		}
	}
	return true
}

// SetUserRoles replaces the user's directly assigned roles.
func (s *Store) SetUserRoles(roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userRoles = roles
}

// SetPermissions replaces the object permission configuration.
func (s *Store) SetPermissions(permissions Permissions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions = permissions
}

// SetRoles replaces the role definitions.
func (s *Store) SetRoles(roles []RoleDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = roles
}

// SetPolicy replaces role definitions and permissions at once.
func (s *Store) SetPolicy(policy *Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = policy.Roles
	s.permissions = policy.Permissions
}

// UserRoles returns the user's directly assigned roles.
func (s *Store) UserRoles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.userRoles...)
}

// EffectiveRoles returns the user's roles expanded through inheritance.
func (s *Store) EffectiveRoles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResolveRoles(s.userRoles, s.roles)
}

// User returns the user metadata, or nil if none was set.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// ForUser returns a new Store sharing this store's roles and permissions
// but checking for a different user.
func (s *Store) ForUser(userRoles []string, user *User) *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Store{
		roles:       s.roles,
		permissions: s.permissions,
		userRoles:   userRoles,
		user:        user,
	}
}
