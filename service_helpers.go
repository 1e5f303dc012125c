package designkit

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

// logAudit writes entry through db, filling request metadata from ctx.
// It runs inside the caller's transaction, so a failed write rolls the
// change back.
func (s *Service) logAudit(ctx context.Context, db dbkit.IDB, entry *AuditEntry) error {
	audit := GetAuditContext(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = audit.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = audit.UserAgent
	}
	if entry.RequestID == "" {
		entry.RequestID = audit.RequestID
	}

	_, err := db.NewInsert().Model(entry.ToModel(s.ids.NewID())).Exec(ctx)
	if err != nil {
		s.logger.Warn("audit log write failed",
			"action", entry.Action,
			"object", entry.Object,
			"role", entry.Role,
			"actor_id", entry.ActorID,
			"error", err,
		)
		return dbkit.WithErr1(err, "LogAudit").Err()
	}
	return nil
}

// SavePolicyWithRetry saves p, retrying transient database errors with
// exponential backoff. It gives up early when ctx is done.
func (s *Service) SavePolicyWithRetry(ctx context.Context, p *Policy) error {
	return s.withRetry(ctx, 3, func() error {
		return s.SavePolicy(ctx, p)
	})
}

func (s *Service) withRetry(ctx context.Context, maxAttempts int, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransientTransactionError(err) || attempt == maxAttempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		jitter := time.Duration(float64(backoff) * 0.1 * (0.5 + rand.Float64()))
		s.logger.Info("retrying after transient error", "attempt", attempt+1, "backoff", backoff+jitter, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return lastErr
}

var transientErrors = []string{
	"connection",
	"timeout",
	"deadlock",
	"lock wait timeout",
	"could not serialize access",
	"broken pipe",
	"temporary failure",
	"try again",
	"resource temporarily unavailable",
}

// isTransientTransactionError checks if an error is transient and can be retried.
func isTransientTransactionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, transient := range transientErrors {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}
