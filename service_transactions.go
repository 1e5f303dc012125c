package designkit

import (
	"context"
	"fmt"
	"time"

	"github.com/fernandezvara/dbkit"
)

// TxFunc is run inside a transaction; db is bound to that transaction.
type TxFunc func(ctx context.Context, db dbkit.IDB) error

// Transaction executes fn within a database transaction with automatic commit/rollback.
// If fn returns an error, the transaction is rolled back. Otherwise, it's committed.
// Nested calls on a service already bound to a transaction use a savepoint.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context, db dbkit.IDB) error {
//	    _, err := db.NewDelete().Model((*designkit.RolePermissionRow)(nil)).Where("object = ?", "orders").Exec(ctx)
//	    return err
//	})
func (s *Service) Transaction(ctx context.Context, fn TxFunc) error {
	start := time.Now()

	var err error
	switch db := s.db.(type) {
	case *dbkit.Tx:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, tx)
		})
	case *dbkit.DBKit:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, tx)
		})
	default:
		err = fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)
	if err != nil {
		s.logger.Debug("transaction rolled back", "duration", duration, "error", err)
	}

	return err
}

// ReadOnlyTransaction executes fn within a read-only database transaction.
// Useful when loading a policy that must be consistent across tables.
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn TxFunc) error {
	db, ok := s.db.(*dbkit.DBKit)
	if !ok {
		// Already inside a transaction: reuse it.
		return s.Transaction(ctx, fn)
	}

	start := time.Now()
	err := db.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), func(tx *dbkit.Tx) error {
		return fn(ctx, tx)
	})
	s.txMonitor.recordTransaction(time.Since(start), err == nil)
	return err
}
