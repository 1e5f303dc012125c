package designkit

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// POLICY LOADING
// ============================================================================

// LoadPolicy reads all role definitions and object permission configurations.
// Roles are ordered by creation time, then by name. Roles stored together by
// SavePolicy share a timestamp, so they come back in name order.
func (s *Service) LoadPolicy(ctx context.Context) (*Policy, error) {
	var policy *Policy
	err := s.ReadOnlyTransaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
		var err error
		policy, err = loadPolicy(ctx, db)
		return err
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func loadPolicy(ctx context.Context, db dbkit.IDB) (*Policy, error) {
	var roleRows []RoleRow
	err := dbkit.WithErr1(db.NewSelect().Model(&roleRows).Order("created_at ASC", "name ASC").Scan(ctx), "LoadRoles").Err()
	if err != nil {
		return nil, err
	}

	var objectRows []ObjectPermissionRow
	err = dbkit.WithErr1(db.NewSelect().Model(&objectRows).Scan(ctx), "LoadObjectPermissions").Err()
	if err != nil {
		return nil, err
	}

	var grantRows []RolePermissionRow
	err = dbkit.WithErr1(db.NewSelect().Model(&grantRows).Scan(ctx), "LoadRolePermissions").Err()
	if err != nil {
		return nil, err
	}

	policy := NewPolicy()
	for _, r := range roleRows {
		policy.Roles = append(policy.Roles, RoleDefinition{Name: r.Name, Label: r.Label, Inherits: r.Inherits})
	}
	for _, o := range objectRows {
		policy.Permissions[o.Object] = ObjectPermissionConfig{
			PublicAccess: o.PublicAccess,
			Roles:        make(map[string]RolePermission),
		}
	}
	for _, g := range grantRows {
		cfg, ok := policy.Permissions[g.Object]
		if !ok {
			continue
		}
		cfg.Roles[g.Role] = RolePermission{
			Actions:          g.Actions,
			FieldPermissions: g.FieldPermissions,
			RowPermissions:   g.RowPermissions,
		}
	}
	return policy, nil
}

// GetObjectPermissions returns the stored configuration of one object.
// The boolean is false when the object has no configuration (fail-open).
func (s *Service) GetObjectPermissions(ctx context.Context, object string) (ObjectPermissionConfig, bool, error) {
	var row ObjectPermissionRow
	err := dbkit.WithErr1(s.db.NewSelect().Model(&row).Where("object = ?", object).Limit(1).Scan(ctx), "GetObjectPermissions").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return ObjectPermissionConfig{}, false, nil
		}
		return ObjectPermissionConfig{}, false, err
	}

	var grants []RolePermissionRow
	err = dbkit.WithErr1(s.db.NewSelect().Model(&grants).Where("object = ?", object).Scan(ctx), "GetRolePermissions").Err()
	if err != nil {
		return ObjectPermissionConfig{}, false, err
	}

	cfg := ObjectPermissionConfig{PublicAccess: row.PublicAccess, Roles: make(map[string]RolePermission, len(grants))}
	for _, g := range grants {
		cfg.Roles[g.Role] = RolePermission{Actions: g.Actions, FieldPermissions: g.FieldPermissions, RowPermissions: g.RowPermissions}
	}
	return cfg, true, nil
}

// CountRoles returns the number of stored role definitions.
func (s *Service) CountRoles(ctx context.Context) (int, error) {
	return dbkit.Count[RoleRow](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

// RoleExists checks whether a role definition is stored.
func (s *Service) RoleExists(ctx context.Context, name string) (bool, error) {
	exists, err := dbkit.Exists[RoleRow](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name)
	})
	if err != nil {
		return false, NewError(ErrDatabaseError, err.Error()).WithRole(name)
	}
	return exists, nil
}

// ============================================================================
// POLICY CHANGES
// ============================================================================

// SavePolicy replaces the whole stored policy with p in one transaction.
// The actor ID must be present in ctx for the audit log.
//
// Example:
//
//	ctx = designkit.WithActorID(ctx, adminID)
//	err := service.SavePolicy(ctx, policy)
func (s *Service) SavePolicy(ctx context.Context, p *Policy) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for policy changes")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	return s.Transaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
		for _, model := range []any{(*RolePermissionRow)(nil), (*ObjectPermissionRow)(nil), (*RoleRow)(nil)} {
			result, err := db.NewDelete().Model(model).Where("TRUE").Exec(ctx)
			if err := dbkit.WithErr(result, err, "ClearPolicy").Err(); err != nil {
				return err
			}
		}

		if len(p.Roles) > 0 {
			rows := make([]RoleRow, 0, len(p.Roles))
			for _, r := range p.Roles {
				rows = append(rows, roleRow(r))
			}
			result, err := db.NewInsert().Model(&rows).Exec(ctx)
			if err := dbkit.WithErr(result, err, "InsertRoles").Err(); err != nil {
				return err
			}
		}

		for object, cfg := range p.Permissions {
			if err := insertObjectPermissions(ctx, db, object, cfg); err != nil {
				return err
			}
		}

		return s.logAudit(ctx, db, &AuditEntry{
			ActorID: actorID,
			Action:  AuditActionPolicyReplaced,
			Metadata: map[string]any{
				"roles":   len(p.Roles),
				"objects": len(p.Permissions),
			},
		})
	})
}

// SaveRole creates or updates one role definition. Every inherited role must
// already be stored, or be the role itself.
func (s *Service) SaveRole(ctx context.Context, role RoleDefinition) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for policy changes")
	}
	if err := policyValidator.Struct(role); err != nil {
		return NewError(ErrInvalidPolicy, err.Error()).WithRole(role.Name)
	}
	for _, parent := range role.Inherits {
		if parent == role.Name {
			continue
		}
		exists, err := s.RoleExists(ctx, parent)
		if err != nil {
			return err
		}
		if !exists {
			return NewError(ErrInvalidRole, fmt.Sprintf("role %q inherits undefined role %q", role.Name, parent)).
				WithRole(parent).
				WithActor(actorID)
		}
	}

	return s.Transaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
		row := roleRow(role)
		result, err := db.NewInsert().Model(&row).
			On("CONFLICT (name) DO UPDATE").
			Set("label = EXCLUDED.label").
			Set("inherits = EXCLUDED.inherits").
			Set("updated_at = current_timestamp").
			Exec(ctx)
		if err := dbkit.WithErr(result, err, "SaveRole").Err(); err != nil {
			return NewError(ErrDatabaseError, err.Error()).WithRole(role.Name)
		}

		return s.logAudit(ctx, db, &AuditEntry{
			ActorID:  actorID,
			Action:   AuditActionRoleSaved,
			Role:     role.Name,
			Metadata: map[string]any{"inherits": role.Inherits},
		})
	})
}

// DeleteRole removes a role definition and every grant made to it.
// A role still inherited by other roles cannot be deleted.
func (s *Service) DeleteRole(ctx context.Context, name string) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for policy changes")
	}

	return s.Transaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
		var roles []RoleRow
		err := dbkit.WithErr1(db.NewSelect().Model(&roles).Scan(ctx), "LoadRoles").Err()
		if err != nil {
			return err
		}
		for _, r := range roles {
			if r.Name == name {
				continue
			}
			for _, parent := range r.Inherits {
				if parent == name {
					return NewError(ErrInvalidPolicy, fmt.Sprintf("role %q is inherited by %q", name, r.Name)).
						WithRole(name).
						WithActor(actorID)
				}
			}
		}

		result, err := db.NewDelete().Model((*RolePermissionRow)(nil)).Where("role = ?", name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteRoleGrants").Err(); err != nil {
			return err
		}

		result, err = db.NewDelete().Model((*RoleRow)(nil)).Where("name = ?", name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteRole").Err(); err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return NewError(ErrNotFound, "role not defined").WithRole(name)
		}

		return s.logAudit(ctx, db, &AuditEntry{
			ActorID: actorID,
			Action:  AuditActionRoleDeleted,
			Role:    name,
		})
	})
}

// SaveObjectPermissions replaces the configuration of one object.
// Every role it grants must already be stored.
func (s *Service) SaveObjectPermissions(ctx context.Context, object string, cfg ObjectPermissionConfig) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for policy changes")
	}
	if object == "" {
		return NewError(ErrInvalidPolicy, "object name cannot be empty")
	}
	if err := policyValidator.Struct(cfg); err != nil {
		return NewError(ErrInvalidPolicy, err.Error()).WithObject(object)
	}

	if len(cfg.Roles) > 0 {
		names := make([]string, 0, len(cfg.Roles))
		for name := range cfg.Roles {
			names = append(names, name)
		}
		count, err := dbkit.Count[RoleRow](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name IN (?)", bun.In(names))
		})
		if err != nil {
			return err
		}
		if count != len(names) {
			return NewError(ErrInvalidRole, "object grants undefined roles").WithObject(object)
		}
	}

	return s.Transaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
		result, err := db.NewDelete().Model((*RolePermissionRow)(nil)).Where("object = ?", object).Exec(ctx)
		if err := dbkit.WithErr(result, err, "ClearObjectGrants").Err(); err != nil {
			return err
		}
		result, err = db.NewDelete().Model((*ObjectPermissionRow)(nil)).Where("object = ?", object).Exec(ctx)
		if err := dbkit.WithErr(result, err, "ClearObjectPermissions").Err(); err != nil {
			return err
		}

		if err := insertObjectPermissions(ctx, db, object, cfg); err != nil {
			return err
		}

		return s.logAudit(ctx, db, &AuditEntry{
			ActorID: actorID,
			Action:  AuditActionPermissionsSaved,
			Object:  object,
			Metadata: map[string]any{
				"public_access": cfg.PublicAccess,
				"roles":         len(cfg.Roles),
			},
		})
	})
}

// DeleteObjectPermissions removes the configuration of one object, which
// makes the object fail-open again.
func (s *Service) DeleteObjectPermissions(ctx context.Context, object string) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for policy changes")
	}

	return s.Transaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
		result, err := db.NewDelete().Model((*RolePermissionRow)(nil)).Where("object = ?", object).Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteObjectGrants").Err(); err != nil {
			return err
		}

		result, err = db.NewDelete().Model((*ObjectPermissionRow)(nil)).Where("object = ?", object).Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteObjectPermissions").Err(); err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return NewError(ErrNotFound, "object has no permission configuration").WithObject(object)
		}

		return s.logAudit(ctx, db, &AuditEntry{
			ActorID: actorID,
			Action:  AuditActionPermissionsDeleted,
			Object:  object,
		})
	})
}

func roleRow(r RoleDefinition) RoleRow {
	inherits := r.Inherits
	if inherits == nil {
		inherits = []string{}
	}
	return RoleRow{Name: r.Name, Label: r.Label, Inherits: inherits}
}

func insertObjectPermissions(ctx context.Context, db dbkit.IDB, object string, cfg ObjectPermissionConfig) error {
	public := cfg.PublicAccess
	if public == nil {
		public = []Action{}
	}
	objectRow := ObjectPermissionRow{Object: object, PublicAccess: public}
	result, err := db.NewInsert().Model(&objectRow).Exec(ctx)
	if err := dbkit.WithErr(result, err, "InsertObjectPermissions").Err(); err != nil {
		return err
	}

	if len(cfg.Roles) == 0 {
		return nil
	}

	grants := make([]RolePermissionRow, 0, len(cfg.Roles))
	for role, rp := range cfg.Roles {
		actions := rp.Actions
		if actions == nil {
			actions = []Action{}
		}
		grants = append(grants, RolePermissionRow{
			Object:           object,
			Role:             role,
			Actions:          actions,
			FieldPermissions: rp.FieldPermissions,
			RowPermissions:   rp.RowPermissions,
		})
	}
	result, err = db.NewInsert().Model(&grants).Exec(ctx)
	return dbkit.WithErr(result, err, "InsertRolePermissions").Err()
}
