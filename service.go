package designkit

import (
	"context"
	"log/slog"

	"github.com/fernandezvara/dbkit"

	"github.com/fernandezvara/designkit/idgen"
)

// Service persists role definitions and object permission configurations
// and records every change in an audit log.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Errors include operation names,
// database context, and preserve original error types for classification.
//
// Example error handling:
//
//	err := service.SaveRole(ctx, designkit.RoleDefinition{Name: "editor"})
//	if err != nil {
//	    if designkit.IsInvalidPolicy(err) {
//	        // Reject the input
//	    }
//	    var dbErr *dbkit.Error
//	    if errors.As(err, &dbErr) {
//	        fmt.Printf("Operation: %s, Table: %s\n", dbErr.Operation, dbErr.Table)
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	txMonitor *transactionMonitor
	logger    *slog.Logger
	ids       idgen.Generator
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for audit and transaction diagnostics.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithIDGenerator sets the generator used for audit log ids.
func WithIDGenerator(gen idgen.Generator) ServiceOption {
	return func(s *Service) {
		s.ids = gen
	}
}

// NewService creates a new designkit service.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := designkit.NewService(db, designkit.WithLogger(logger))
//	if err := service.Migrate(ctx); err != nil {
//	    return err
//	}
func NewService(db dbkit.IDB, opts ...ServiceOption) *Service {
	s := &Service{
		db:        db,
		txMonitor: newTransactionMonitor(),
		logger:    slog.Default(),
		ids:       idgen.UUID(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error) {
	var logs []AuditLog
	q := s.db.NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Object != "" {
		q = q.Where("object = ?", filter.Object)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultAuditLimit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
