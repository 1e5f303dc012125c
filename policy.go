package designkit

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Policy holds role definitions and per-object permission configuration.
// It is usually assembled at startup, or loaded through Service.LoadPolicy,
// and handed to a Store.
type Policy struct {
	Roles       []RoleDefinition `json:"roles" validate:"dive"`
	Permissions Permissions      `json:"permissions" validate:"dive"`
}

// ObjectDefinition is a builder for one object's permission configuration.
type ObjectDefinition struct {
	name   string
	policy *Policy
}

// RoleGrant is a builder for one role's permissions on an object.
type RoleGrant struct {
	role   string
	object *ObjectDefinition
}

// RoleBuilder is a builder for a role definition.
type RoleBuilder struct {
	index  int
	policy *Policy
}

// NewPolicy creates an empty policy.
func NewPolicy() *Policy {
	return &Policy{
		Permissions: make(Permissions),
	}
}

// DefineRole adds a role definition and returns a builder for it.
//
// Example:
//
//	policy.DefineRole("admin").Label("Administrator").Inherits("editor").
//	    DefineRole("editor").Inherits("viewer").
//	    DefineRole("viewer")
func (p *Policy) DefineRole(name string) *RoleBuilder {
	p.Roles = append(p.Roles, RoleDefinition{Name: name})
	return &RoleBuilder{index: len(p.Roles) - 1, policy: p}
}

// Object starts (or continues) the permission configuration of an object.
//
// Example:
//
//	policy.Object("orders").
//	    Public(designkit.ActionRead).
//	    Grant("admin").Actions(designkit.ActionCreate, designkit.ActionDelete)
func (p *Policy) Object(name string) *ObjectDefinition {
	if p.Permissions == nil {
		p.Permissions = make(Permissions)
	}
	if _, exists := p.Permissions[name]; !exists {
		p.Permissions[name] = ObjectPermissionConfig{Roles: make(map[string]RolePermission)}
	}
	return &ObjectDefinition{name: name, policy: p}
}

// GetRole returns the first role definition with the given name.
func (p *Policy) GetRole(name string) (RoleDefinition, bool) {
	for _, r := range p.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return RoleDefinition{}, false
}

// GetObjects returns all configured object names.
func (p *Policy) GetObjects() []string {
	names := make([]string, 0, len(p.Permissions))
	for name := range p.Permissions {
		names = append(names, name)
	}
	return names
}

// Clone returns a copy of the policy that shares no slices or maps with p.
func (p *Policy) Clone() *Policy {
	return &Policy{
		Roles:       cloneRoles(p.Roles),
		Permissions: clonePermissions(p.Permissions),
	}
}

var policyValidator = validator.New()

// Validate checks role and permission data before it is stored or used.
// Every inherited role and every role referenced by an object must be defined,
// and role names must be unique.
func (p *Policy) Validate() error {
	if err := policyValidator.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewError(ErrInvalidPolicy, fmt.Sprintf("field %s failed %q", verrs[0].Namespace(), verrs[0].Tag()))
		}
		return NewError(ErrInvalidPolicy, err.Error())
	}

	defined := make(map[string]bool, len(p.Roles))
	for _, r := range p.Roles {
		if defined[r.Name] {
			return NewError(ErrInvalidPolicy, "duplicate role definition").WithRole(r.Name)
		}
		defined[r.Name] = true
	}

	for _, r := range p.Roles {
		for _, parent := range r.Inherits {
			if !defined[parent] {
				return NewError(ErrInvalidRole, fmt.Sprintf("role %q inherits undefined role %q", r.Name, parent)).
					WithRole(parent)
			}
		}
	}

	for object, cfg := range p.Permissions {
		for role := range cfg.Roles {
			if !defined[role] {
				return NewError(ErrInvalidRole, fmt.Sprintf("object %q grants undefined role %q", object, role)).
					WithObject(object).
					WithRole(role)
			}
		}
	}

	return nil
}

// Label sets the display label of the role.
func (b *RoleBuilder) Label(label string) *RoleBuilder {
	b.policy.Roles[b.index].Label = label
	return b
}

// Inherits adds parent roles whose grants this role also receives.
func (b *RoleBuilder) Inherits(parents ...string) *RoleBuilder {
	b.policy.Roles[b.index].Inherits = append(b.policy.Roles[b.index].Inherits, parents...)
	return b
}

// DefineRole continues defining roles on the policy (fluent API).
func (b *RoleBuilder) DefineRole(name string) *RoleBuilder {
	return b.policy.DefineRole(name)
}

// Object continues with object configuration on the policy (fluent API).
func (b *RoleBuilder) Object(name string) *ObjectDefinition {
	return b.policy.Object(name)
}

// Name returns the object name.
func (o *ObjectDefinition) Name() string {
	return o.name
}

// Public adds actions allowed to everyone on this object.
func (o *ObjectDefinition) Public(actions ...Action) *ObjectDefinition {
	cfg := o.policy.Permissions[o.name]
	cfg.PublicAccess = append(cfg.PublicAccess, actions...)
	o.policy.Permissions[o.name] = cfg
	return o
}

// Grant starts (or continues) the permissions of a role on this object.
func (o *ObjectDefinition) Grant(role string) *RoleGrant {
	o.update(role, func(*RolePermission) {})
	return &RoleGrant{role: role, object: o}
}

// Object continues with another object (fluent API).
func (o *ObjectDefinition) Object(name string) *ObjectDefinition {
	return o.policy.Object(name)
}

func (o *ObjectDefinition) update(role string, fn func(*RolePermission)) {
	cfg := o.policy.Permissions[o.name]
	if cfg.Roles == nil {
		cfg.Roles = make(map[string]RolePermission)
	}
	rp := cfg.Roles[role]
	fn(&rp)
	cfg.Roles[role] = rp
	o.policy.Permissions[o.name] = cfg
}

// Actions adds actions the role may perform on the object.
func (g *RoleGrant) Actions(actions ...Action) *RoleGrant {
	g.object.update(g.role, func(rp *RolePermission) {
		rp.Actions = append(rp.Actions, actions...)
	})
	return g
}

// Field adds a field-level restriction. Pass nil to leave an operation allowed.
func (g *RoleGrant) Field(field string, read, write *bool) *RoleGrant {
	g.object.update(g.role, func(rp *RolePermission) {
		rp.FieldPermissions = append(rp.FieldPermissions, FieldLevelPermission{Field: field, Read: read, Write: write})
	})
	return g
}

// Rows adds a row-level permission limiting actions to rows matching filter.
func (g *RoleGrant) Rows(filter string, actions ...Action) *RoleGrant {
	g.object.update(g.role, func(rp *RolePermission) {
		rp.RowPermissions = append(rp.RowPermissions, RowLevelPermission{Actions: actions, Filter: filter})
	})
	return g
}

// Grant continues with another role on the same object (fluent API).
func (g *RoleGrant) Grant(role string) *RoleGrant {
	return g.object.Grant(role)
}

// Object continues with another object (fluent API).
func (g *RoleGrant) Object(name string) *ObjectDefinition {
	return g.object.policy.Object(name)
}

// Policy returns the policy being built.
func (g *RoleGrant) Policy() *Policy {
	return g.object.policy
}

func cloneRoles(roles []RoleDefinition) []RoleDefinition {
	if roles == nil {
		return nil
	}
	out := make([]RoleDefinition, len(roles))
	for i, r := range roles {
		out[i] = RoleDefinition{Name: r.Name, Label: r.Label, Inherits: append([]string(nil), r.Inherits...)}
	}
	return out
}

func clonePermissions(perms Permissions) Permissions {
	if perms == nil {
		return nil
	}
	out := make(Permissions, len(perms))
	for object, cfg := range perms {
		roles := make(map[string]RolePermission, len(cfg.Roles))
		for name, rp := range cfg.Roles {
			roles[name] = cloneRolePermission(rp)
		}
		out[object] = ObjectPermissionConfig{
			PublicAccess: append([]Action(nil), cfg.PublicAccess...),
			Roles:        roles,
		}
	}
	return out
}

func cloneRolePermission(rp RolePermission) RolePermission {
	out := RolePermission{Actions: append([]Action(nil), rp.Actions...)}
	for _, fp := range rp.FieldPermissions {
		c := FieldLevelPermission{Field: fp.Field}
		if fp.Read != nil {
			c.Read = Bool(*fp.Read)
		}
		if fp.Write != nil {
			c.Write = Bool(*fp.Write)
		}
		out.FieldPermissions = append(out.FieldPermissions, c)
	}
	for _, row := range rp.RowPermissions {
		out.RowPermissions = append(out.RowPermissions, RowLevelPermission{
			Actions: append([]Action(nil), row.Actions...),
			Filter:  row.Filter,
		})
	}
	return out
}
