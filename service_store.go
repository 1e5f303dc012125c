package designkit

import (
	"context"
)

// ============================================================================
// STORE INTEGRATION
// ============================================================================

// NewStore loads the stored policy into a new Store for a user.
//
// Example:
//
//	store, err := service.NewStore(ctx, []string{"editor"}, &designkit.User{ID: userID})
//	if err != nil {
//	    return err
//	}
//	mw := designkit.NewMiddleware(store)
func (s *Service) NewStore(ctx context.Context, userRoles []string, user *User) (*Store, error) {
	policy, err := s.LoadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(StoreConfig{
		Roles:       policy.Roles,
		Permissions: policy.Permissions,
		UserRoles:   userRoles,
		User:        user,
	}), nil
}

// Reload replaces the roles and permissions of store with the stored policy.
// On error the store keeps its previous policy.
func (s *Service) Reload(ctx context.Context, store *Store) error {
	policy, err := s.LoadPolicy(ctx)
	if err != nil {
		return err
	}
	store.SetPolicy(policy)
	s.logger.Debug("policy reloaded", "roles", len(policy.Roles), "objects", len(policy.Permissions))
	return nil
}

// Check evaluates a permission against the stored policy.
// Prefer a Store for repeated checks; this reads the database every time.
func (s *Service) Check(ctx context.Context, userRoles []string, object string, action Action, record Record) (PermissionCheckResult, error) {
	policy, err := s.LoadPolicy(ctx)
	if err != nil {
		return PermissionCheckResult{}, err
	}
	return Evaluate(policy.Roles, policy.Permissions, userRoles, object, action, record), nil
}
