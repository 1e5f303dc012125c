package designkit

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// Migrations returns all database migrations required for designkit.
// Use service.Migrate(ctx) to apply them.
func (s *Service) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "designkit-001",
			Description: "Create designkit_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS designkit_roles (
                    name TEXT PRIMARY KEY,
                    label TEXT NOT NULL DEFAULT '',
                    inherits JSONB NOT NULL DEFAULT '[]',
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "designkit-002",
			Description: "Create designkit_object_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS designkit_object_permissions (
                    object TEXT PRIMARY KEY,
                    public_access JSONB NOT NULL DEFAULT '[]',
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "designkit-003",
			Description: "Create designkit_role_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS designkit_role_permissions (
                    object TEXT NOT NULL REFERENCES designkit_object_permissions(object) ON DELETE CASCADE,
                    role TEXT NOT NULL REFERENCES designkit_roles(name) ON DELETE CASCADE,
                    actions JSONB NOT NULL DEFAULT '[]',
                    field_permissions JSONB,
                    row_permissions JSONB,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    PRIMARY KEY (object, role)
                )`,
		},
		{
			ID:          "designkit-004",
			Description: "Create designkit_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS designkit_audit_log (
                    id UUID PRIMARY KEY,
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT NOT NULL,
                    action TEXT NOT NULL,
                    object TEXT,
                    role TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT,
                    metadata JSONB
                )`,
		},
	}
}

// Migrate applies Migrations to the database.
func (s *Service) Migrate(ctx context.Context) error {
	db, ok := s.db.(*dbkit.DBKit)
	if !ok {
		return fmt.Errorf("migrations require a dbkit.DBKit instance")
	}

	result, err := db.Migrate(ctx, s.Migrations())
	if err != nil {
		return dbkit.WithErr1(err, "Migrate").Err()
	}

	for _, m := range result.Applied {
		s.logger.Info("applied migration", "id", m.ID)
	}
	return nil
}
