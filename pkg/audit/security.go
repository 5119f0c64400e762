// Package audit provides security audit logging for SIEM consumption.
// Generated SQL is untrusted input; every statement the normalizer rejects or
// flags is logged as a structured event so pattern analysis can happen
// downstream.
package audit

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventQueryRejected is logged when generated SQL cannot be reduced to a
	// single SELECT statement.
	EventQueryRejected SecurityEventType = "query_rejected"
	// EventInjectionSuspected is logged when libinjection flags a string
	// literal in an otherwise accepted statement.
	EventInjectionSuspected SecurityEventType = "injection_suspected"
	// EventQueryExecuted is logged for accepted queries (high volume, info level).
	EventQueryExecuted SecurityEventType = "query_executed"
)

// SecurityAuditor logs security events under a dedicated logger namespace so
// SIEM pipelines can filter on it.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a security auditor. Pass nil to disable auditing.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	if logger == nil {
		return &SecurityAuditor{}
	}
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogQueryRejected records generated SQL the normalizer refused to run.
// Logged at WARN: rejection is the safety net working, not a failure.
func (a *SecurityAuditor) LogQueryRejected(question, reason string) {
	if a.logger == nil {
		return
	}
	a.logger.Warn("security event",
		zap.String("event_type", string(EventQueryRejected)),
		zap.String("event_id", uuid.NewString()),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("question", question),
		zap.String("reason", reason),
		zap.String("severity", "warning"))
}

// LogInjectionSuspected records a libinjection hit inside an accepted
// statement. Logged at ERROR with critical severity for immediate alerting:
// the statement still ran, bounded only by the SELECT-only gate and the
// statement timeout.
func (a *SecurityAuditor) LogInjectionSuspected(question string, warnings []string) {
	if a.logger == nil {
		return
	}
	a.logger.Error("security event",
		zap.String("event_type", string(EventInjectionSuspected)),
		zap.String("event_id", uuid.NewString()),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("question", question),
		zap.Strings("warnings", warnings),
		zap.String("severity", "critical"))
}

// LogQueryExecuted records an accepted query at INFO level.
func (a *SecurityAuditor) LogQueryExecuted(question string, rowCount int) {
	if a.logger == nil {
		return
	}
	a.logger.Info("security event",
		zap.String("event_type", string(EventQueryExecuted)),
		zap.String("event_id", uuid.NewString()),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("question", question),
		zap.Int("row_count", rowCount),
		zap.String("severity", "info"))
}
