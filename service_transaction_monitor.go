package designkit

import (
	"sync"
	"time"
)

// TransactionMetrics provides transaction performance and failure statistics.
type TransactionMetrics struct {
	TotalTransactions      int64         `json:"total_transactions"`
	SuccessfulTransactions int64         `json:"successful_transactions"`
	FailedTransactions     int64         `json:"failed_transactions"`
	AverageDuration        time.Duration `json:"average_duration"`
	MaxDuration            time.Duration `json:"max_duration"`
	MinDuration            time.Duration `json:"min_duration"`
	LastReset              time.Time     `json:"last_reset"`
}

// transactionMonitor accumulates transaction outcomes for the service.
type transactionMonitor struct {
	mu      sync.Mutex
	metrics TransactionMetrics
	total   time.Duration
}

func newTransactionMonitor() *transactionMonitor {
	return &transactionMonitor{
		metrics: TransactionMetrics{LastReset: time.Now()},
	}
}

func (tm *transactionMonitor) recordTransaction(duration time.Duration, success bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	m := &tm.metrics
	m.TotalTransactions++
	if success {
		m.SuccessfulTransactions++
	} else {
		m.FailedTransactions++
	}

	tm.total += duration
	m.AverageDuration = tm.total / time.Duration(m.TotalTransactions)
	if duration > m.MaxDuration {
		m.MaxDuration = duration
	}
	if m.TotalTransactions == 1 || duration < m.MinDuration {
		m.MinDuration = duration
	}
}

func (tm *transactionMonitor) getMetrics() TransactionMetrics {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.metrics
}

func (tm *transactionMonitor) reset() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.metrics = TransactionMetrics{LastReset: time.Now()}
	tm.total = 0
}

// GetTransactionMetrics returns the current transaction performance metrics.
func (s *Service) GetTransactionMetrics() TransactionMetrics {
	return s.txMonitor.getMetrics()
}

// ResetTransactionMetrics resets all transaction metrics.
func (s *Service) ResetTransactionMetrics() {
	s.txMonitor.reset()
}

// IsTransactionHealthy checks if transaction performance is within acceptable thresholds:
// under 5% failures and under one second on average, once ten transactions have run.
func (s *Service) IsTransactionHealthy() bool {
	metrics := s.txMonitor.getMetrics()

	if metrics.TotalTransactions < 10 {
		return true
	}

	failureRate := float64(metrics.FailedTransactions) / float64(metrics.TotalTransactions)
	if failureRate > 0.05 {
		return false
	}

	return metrics.AverageDuration <= time.Second
}
