package designkit

import (
	"context"
	"slices"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// requiredTables are the tables created by Service.Migrations.
var requiredTables = []string{
	"designkit_roles",
	"designkit_object_permissions",
	"designkit_role_permissions",
	"designkit_audit_log",
}

// HealthService reports whether a Service can serve policy reads and writes:
// the database is reachable, the designkit schema is in place and
// transactions stay within thresholds.
type HealthService struct {
	*Service
	tables []string
}

// HealthReport is the combined state returned by HealthService.Report.
type HealthReport struct {
	Healthy       bool               `json:"healthy"`
	Database      dbkit.HealthStatus `json:"database"`
	MissingTables []string           `json:"missing_tables,omitempty"`
	SchemaError   string             `json:"schema_error,omitempty"`
	Transactions  TransactionMetrics `json:"transactions"`
}

// NewHealthService creates a health service for service.
func NewHealthService(service *Service) *HealthService {
	return &HealthService{Service: service, tables: requiredTables}
}

// Health returns the database status. Handles that are not a DBKit only
// get a connectivity check.
func (hs *HealthService) Health(ctx context.Context) dbkit.HealthStatus {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.Health(ctx)
	}

	status := dbkit.HealthStatus{Healthy: hs.Ping(ctx) == nil}
	if !status.Healthy {
		status.Error = "ping failed"
	}
	return status
}

// MissingTables returns the designkit tables not present in the current
// schema. An empty result means migrations have been applied.
func (hs *HealthService) MissingTables(ctx context.Context) ([]string, error) {
	var found []string
	err := hs.db.NewSelect().
		TableExpr("information_schema.tables").
		ColumnExpr("table_name").
		Where("table_schema = current_schema()").
		Where("table_name IN (?)", bun.In(hs.tables)).
		Scan(ctx, &found)
	if err != nil {
		return nil, dbkit.WithErr1(err, "MissingTables").Err()
	}

	var missing []string
	for _, table := range hs.tables {
		if !slices.Contains(found, table) {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// IsHealthy reports whether the database is reachable, the schema is
// complete and transactions are within thresholds.
func (hs *HealthService) IsHealthy(ctx context.Context) bool {
	return hs.Report(ctx).Healthy
}

// Report gathers database, schema and transaction health in one pass.
func (hs *HealthService) Report(ctx context.Context) HealthReport {
	report := HealthReport{
		Database:     hs.Health(ctx),
		Transactions: hs.GetTransactionMetrics(),
	}
	if !report.Database.Healthy {
		return report
	}

	missing, err := hs.MissingTables(ctx)
	if err != nil {
		report.SchemaError = err.Error()
		return report
	}
	report.MissingTables = missing

	report.Healthy = len(missing) == 0 && hs.IsTransactionHealthy()
	return report
}

// GetPoolStats returns connection pool statistics, or zero values when the
// handle is not a DBKit.
func (hs *HealthService) GetPoolStats() dbkit.PoolStats {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return dbkit.PoolStatsFromSQL(db.Stats())
	}
	return dbkit.PoolStats{}
}

// Ping runs a trivial query against the database.
func (hs *HealthService) Ping(ctx context.Context) error {
	var result int
	return hs.db.NewSelect().ColumnExpr("1").Scan(ctx, &result)
}
