package designkit

import (
	"time"

	"github.com/uptrace/bun"
)

// Action is an operation a user can perform on an object.
// The set is open: any string is a valid action.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionImport Action = "import"
	ActionShare  Action = "share"
)

// RoleDefinition describes a role and the roles it inherits from.
// Inheritance forms a directed graph that may contain cycles.
type RoleDefinition struct {
	Name     string   `json:"name" validate:"required"`
	Label    string   `json:"label"`
	Inherits []string `json:"inherits,omitempty" validate:"dive,required"`
}

// FieldLevelPermission restricts access to a single field.
// A nil flag means the operation is allowed.
type FieldLevelPermission struct {
	Field string `json:"field" validate:"required"`
	Read  *bool  `json:"read,omitempty"`
	Write *bool  `json:"write,omitempty"`
}

// RowLevelPermission limits which rows a role can act on.
// Filter is an opaque expression, see RowFilterMatcher.
type RowLevelPermission struct {
	Actions []Action `json:"actions" validate:"dive,required"`
	Filter  string   `json:"filter,omitempty"`
}

// RolePermission is what a single role may do on an object.
type RolePermission struct {
	Actions          []Action               `json:"actions" validate:"dive,required"`
	FieldPermissions []FieldLevelPermission `json:"fieldPermissions,omitempty" validate:"dive"`
	RowPermissions   []RowLevelPermission   `json:"rowPermissions,omitempty" validate:"dive"`
}

// ObjectPermissionConfig holds the permission configuration of one object.
type ObjectPermissionConfig struct {
	// PublicAccess lists actions allowed to everyone regardless of role.
	PublicAccess []Action                 `json:"publicAccess,omitempty" validate:"dive,required"`
	Roles        map[string]RolePermission `json:"roles" validate:"dive"`
}

// Permissions maps object names to their permission configuration.
type Permissions map[string]ObjectPermissionConfig

// Record is a single row, field name to value.
type Record map[string]any

// PermissionCheckResult is the outcome of a permission evaluation.
type PermissionCheckResult struct {
	Allowed           bool                   `json:"allowed"`
	Reason            string                 `json:"reason,omitempty"`
	FieldRestrictions []FieldLevelPermission `json:"fieldRestrictions,omitempty"`
	RowFilter         string                 `json:"rowFilter,omitempty"`
}

// CanReadField reports whether the field may be read under the result's
// field restrictions. Fields without an explicit entry are readable.
func (r PermissionCheckResult) CanReadField(field string) bool {
	if !r.Allowed {
		return false
	}
	for _, fp := range r.FieldRestrictions {
		if fp.Field == field && fp.Read != nil {
			return *fp.Read
		}
	}
	return true
}

// CanWriteField reports whether the field may be written under the result's
// field restrictions. Fields without an explicit entry are writable.
func (r PermissionCheckResult) CanWriteField(field string) bool {
	if !r.Allowed {
		return false
	}
	for _, fp := range r.FieldRestrictions {
		if fp.Field == field && fp.Write != nil {
			return *fp.Write
		}
	}
	return true
}

// User is optional metadata about the user a Store checks for.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Bool returns a pointer to b, for building field permissions inline.
func Bool(b bool) *bool {
	return &b
}

func containsAction(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// ============================================================================
// PERSISTENCE MODELS
// ============================================================================

// RoleRow is the stored form of a RoleDefinition.
type RoleRow struct {
	bun.BaseModel `bun:"table:designkit_roles,alias:dr"`

	Name      string    `bun:"name,pk"`
	Label     string    `bun:"label"`
	Inherits  []string  `bun:"inherits,type:jsonb"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ObjectPermissionRow stores the object-wide part of an ObjectPermissionConfig.
type ObjectPermissionRow struct {
	bun.BaseModel `bun:"table:designkit_object_permissions,alias:dop"`

	Object       string    `bun:"object,pk"`
	PublicAccess []Action  `bun:"public_access,type:jsonb"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RolePermissionRow stores one role's permissions on one object.
type RolePermissionRow struct {
	bun.BaseModel `bun:"table:designkit_role_permissions,alias:drp"`

	Object           string                 `bun:"object,pk"`
	Role             string                 `bun:"role,pk"`
	Actions          []Action               `bun:"actions,type:jsonb"`
	FieldPermissions []FieldLevelPermission `bun:"field_permissions,type:jsonb"`
	RowPermissions   []RowLevelPermission   `bun:"row_permissions,type:jsonb"`
	CreatedAt        time.Time              `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time              `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog records every change made to the stored policy.
type AuditLog struct {
	bun.BaseModel `bun:"table:designkit_audit_log,alias:dal"`

	ID        string    `bun:"id,pk,type:uuid"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	ActorID string `bun:"actor_id,notnull"`
	Action  string `bun:"action,notnull"`

	// Target of the change. Role is empty for object-wide changes and
	// Object is empty for role definition changes.
	Object string `bun:"object"`
	Role   string `bun:"role"`

	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`

	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// AuditAction is the kind of change recorded in the audit log.
type AuditAction string

const (
	AuditActionRoleSaved          AuditAction = "role_saved"
	AuditActionRoleDeleted        AuditAction = "role_deleted"
	AuditActionPermissionsSaved   AuditAction = "permissions_saved"
	AuditActionPermissionsDeleted AuditAction = "permissions_deleted"
	AuditActionPolicyReplaced     AuditAction = "policy_replaced"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID   string
	Action    AuditAction
	Object    string
	Role      string
	IPAddress string
	UserAgent string
	RequestID string
	Metadata  map[string]any
}

// ToModel converts an AuditEntry to an AuditLog row with the given id.
func (e *AuditEntry) ToModel(id string) *AuditLog {
	return &AuditLog{
		ID:        id,
		ActorID:   e.ActorID,
		Action:    string(e.Action),
		Object:    e.Object,
		Role:      e.Role,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		RequestID: e.RequestID,
		Metadata:  e.Metadata,
		Timestamp: time.Now(),
	}
}
