package designkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Checker answers permission checks. *Store implements it.
type Checker interface {
	Check(object string, action Action, record Record) PermissionCheckResult
	Can(object string, action Action) bool
}

// PolicyLoader loads a complete policy. *Service implements it.
type PolicyLoader interface {
	LoadPolicy(ctx context.Context) (*Policy, error)
}

// PolicyManager defines the policy persistence interface.
type PolicyManager interface {
	PolicyLoader
	SavePolicy(ctx context.Context, p *Policy) error
	SaveRole(ctx context.Context, role RoleDefinition) error
	DeleteRole(ctx context.Context, name string) error
	SaveObjectPermissions(ctx context.Context, object string, cfg ObjectPermissionConfig) error
	DeleteObjectPermissions(ctx context.Context, object string) error
	GetObjectPermissions(ctx context.Context, object string) (ObjectPermissionConfig, bool, error)
}

// TransactionManager defines the transaction management interface.
type TransactionManager interface {
	Transaction(ctx context.Context, fn TxFunc) error
	ReadOnlyTransaction(ctx context.Context, fn TxFunc) error
}

// MigrationManager defines the migration management interface.
type MigrationManager interface {
	Migrations() []dbkit.Migration
	Migrate(ctx context.Context) error
}

// HealthMonitor defines the health monitoring interface.
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
	MissingTables(ctx context.Context) ([]string, error)
	Report(ctx context.Context) HealthReport
}

// TransactionMonitor defines the transaction monitoring interface.
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}

var (
	_ Checker            = (*Store)(nil)
	_ PolicyManager      = (*Service)(nil)
	_ TransactionManager = (*Service)(nil)
	_ MigrationManager   = (*Service)(nil)
	_ HealthMonitor      = (*HealthService)(nil)
	_ TransactionMonitor = (*Service)(nil)
)
