package notify

import (
	"context"
	"time"

	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultSendTimeout = 10 * time.Second

// Guard bounds every delivery with a timeout and records the outcome.
// A nil inner notifier makes every send fail with ErrNotConfigured.
type Guard struct {
	inner   LeadNotifier
	backend string
	timeout time.Duration
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// GuardConfig names the backend and sets the per-send timeout.
type GuardConfig struct {
	Backend string
	Timeout time.Duration
}

func NewGuard(inner LeadNotifier, cfg GuardConfig, m *metrics.LeadMetrics, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	if cfg.Backend == "" {
		cfg.Backend = "none"
	}
	return &Guard{
		inner:   inner,
		backend: cfg.Backend,
		timeout: cfg.Timeout,
		metrics: m,
		logger:  logger.WithComponent("notify"),
		tracer:  otel.Tracer("fortis.internal.notify"),
	}
}

// Configured reports whether a delivery backend is wired.
func (g *Guard) Configured() bool {
	return g != nil && g.inner != nil
}

// Backend names the delivery backend ("formspree", "sendgrid", ...).
func (g *Guard) Backend() string {
	if g == nil {
		return "none"
	}
	return g.backend
}

func (g *Guard) SendFull(ctx context.Context, lead Lead) error {
	return g.deliver(ctx, KindFull, lead)
}

func (g *Guard) SendIncomplete(ctx context.Context, lead Lead) error {
	return g.deliver(ctx, KindIncomplete, lead)
}

func (g *Guard) deliver(ctx context.Context, kind Kind, lead Lead) error {
	if !g.Configured() {
		if g != nil {
			g.metrics.ObserveNotification(string(kind), false)
			g.logger.Warn("lead notification skipped: no backend", "kind", kind, "session_key", lead.SessionKey)
		}
		return ErrNotConfigured
	}

	// Deliveries outlive the inbound request that triggered them.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	ctx, span := g.tracer.Start(ctx, "notify.lead."+string(kind))
	defer span.End()
	span.SetAttributes(
		attribute.String("notify.backend", g.backend),
		attribute.Int64("lead.amount", lead.Amount),
	)

	if lead.SentAt.IsZero() {
		lead.SentAt = time.Now()
	}

	var err error
	switch kind {
	case KindFull:
		err = g.inner.SendFull(ctx, lead)
	default:
		err = g.inner.SendIncomplete(ctx, lead)
	}

	g.metrics.ObserveNotification(string(kind), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Error("lead notification failed", "error", err, "kind", kind, "backend", g.backend, "session_key", lead.SessionKey)
		return err
	}
	g.logger.Info("lead notification sent", "kind", kind, "backend", g.backend, "session_key", lead.SessionKey, "amount", lead.Amount)
	return nil
}

var _ LeadNotifier = (*Guard)(nil)
