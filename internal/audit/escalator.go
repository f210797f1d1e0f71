package audit

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var securityAlertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_security_alerts_total",
		Help: "Security alert entries appended by the escalator.",
	},
	[]string{"severity"},
)

// SecurityEscalator watches unauthorized post rejections per tenant.
// Ordinary denials are not audited; only when a tenant burns through its
// rejection budget does the escalator append a security_alert entry. A
// repeat breach while an alert is already outstanding escalates to
// critical.
type SecurityEscalator struct {
	repo   RepositoryAPI
	logger *slog.Logger
	limit  rate.Limit
	burst  int

	mu      sync.Mutex
	tenants map[string]*tenantState
}

type tenantState struct {
	limiter *rate.Limiter
	alerted bool
}

func NewSecurityEscalator(repo RepositoryAPI, logger *slog.Logger, perSecond float64, burst int) *SecurityEscalator {
	if perSecond <= 0 {
		perSecond = 0.1
	}
	if burst < 1 {
		burst = 10
	}
	return &SecurityEscalator{
		repo:    repo,
		logger:  logger,
		limit:   rate.Limit(perSecond),
		burst:   burst,
		tenants: make(map[string]*tenantState),
	}
}

// RecordRejection counts one denied write attempt by tenantID against
// channelID. The append is intentionally outside the gateway's transaction:
// the rejected post mutated nothing, so there is nothing to keep atomic
// with.
func (e *SecurityEscalator) RecordRejection(tenantID, channelID string) {
	e.mu.Lock()
	st, ok := e.tenants[tenantID]
	if !ok {
		st = &tenantState{limiter: rate.NewLimiter(e.limit, e.burst)}
		e.tenants[tenantID] = st
	}
	withinBudget := st.limiter.Allow()
	priorAlert := st.alerted
	if withinBudget {
		st.alerted = false
	} else {
		st.alerted = true
	}
	e.mu.Unlock()

	if withinBudget {
		return
	}

	severity := SeverityWarning
	if priorAlert {
		severity = SeverityCritical
	}

	entry := NewSystemEntry(ActionSecurityAlert, "channel", channelID, map[string]any{
		"offending_tenant_id": tenantID,
		"reason":              "repeated unauthorized write attempts",
	})
	entry.Severity = severity

	if err := e.repo.Append(ToDataModel(entry)); err != nil {
		// The rejected post already failed safely; losing the alert only
		// degrades observability, so log and move on.
		e.logger.Error("failed to append security alert",
			"tenant_id", tenantID,
			"channel_id", channelID,
			"error", err)
		return
	}

	securityAlertsTotal.WithLabelValues(string(severity)).Inc()
	e.logger.Warn("security alert raised",
		"tenant_id", tenantID,
		"channel_id", channelID,
		"severity", severity)
}
