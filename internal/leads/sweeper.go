package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortis-steel/chatbot-api/internal/notify"
	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// SweeperConfig holds the escalation and expiry thresholds.
type SweeperConfig struct {
	IncompleteAfter time.Duration
	TTL             time.Duration
	Interval        time.Duration
}

// DefaultSweeperConfig escalates after 10 minutes and expires after 2 hours.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		IncompleteAfter: 10 * time.Minute,
		TTL:             2 * time.Hour,
		Interval:        time.Minute,
	}
}

// SweepResult summarizes one pass.
type SweepResult struct {
	Scanned  int
	Notified int
	Failed   int
	Deleted  int
}

// Sweeper forwards stale partial leads and drops expired sessions.
type Sweeper struct {
	store    Store
	notifier notify.LeadNotifier
	cfg      SweeperConfig
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
	now      func() time.Time
	kick     chan struct{}
}

func NewSweeper(store Store, notifier notify.LeadNotifier, cfg SweeperConfig, m *metrics.LeadMetrics, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.Default()
	}
	def := DefaultSweeperConfig()
	if cfg.IncompleteAfter <= 0 {
		cfg.IncompleteAfter = def.IncompleteAfter
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	return &Sweeper{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
		logger:   logger.WithComponent("lead_sweeper"),
		now:      time.Now,
		kick:     make(chan struct{}, 1),
	}
}

// WithClock replaces the time source used by Run and Trigger.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	if now != nil {
		s.now = now
	}
	return s
}

// Trigger requests a pass without blocking. Kicks coalesce while one is pending.
func (s *Sweeper) Trigger() {
	if s == nil {
		return
	}
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run sweeps on every tick and every Trigger until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("lead sweeper started", "interval", s.cfg.Interval, "incomplete_after", s.cfg.IncompleteAfter, "ttl", s.cfg.TTL)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lead sweeper stopped")
			return nil
		case <-ticker.C:
		case <-s.kick:
		}
		s.Sweep(ctx, s.now())
	}
}

// Sweep applies the escalation and expiry rules to every session as of now.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) SweepResult {
	start := time.Now()
	var res SweepResult

	sessions, err := s.store.All(ctx)
	if err != nil {
		s.logger.Error("lead sweep: list sessions failed", "error", err)
		return res
	}

	for _, snapshot := range sessions {
		res.Scanned++
		s.sweepOne(ctx, snapshot.Key, now, &res)
	}

	s.metrics.ObserveSweep(time.Since(start).Seconds(), res.Deleted)
	s.metrics.SetActiveSessions(s.store.Len())
	if res.Notified > 0 || res.Failed > 0 || res.Deleted > 0 {
		s.logger.Info("lead sweep finished", "scanned", res.Scanned, "notified", res.Notified, "failed", res.Failed, "deleted", res.Deleted)
	}
	return res
}

func (s *Sweeper) sweepOne(ctx context.Context, key string, now time.Time, res *SweepResult) {
	unlock := s.store.Lock(key)
	defer unlock()

	// Re-read under the key lock; a request may have changed it since the snapshot.
	sess, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrSessionNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("lead sweep: get session failed", "error", err, "session_key", key)
		return
	}

	age := sess.Age(now)
	if age > s.cfg.IncompleteAfter && !sess.Notified && sess.Contacts().Any() {
		if err := s.sendIncomplete(ctx, sess); err != nil {
			res.Failed++
			s.logger.Warn("incomplete lead not delivered, will retry next pass", "error", err, "session_key", key, "age", age)
		} else {
			sess.MarkNotified(NotificationIncomplete, now)
			res.Notified++
			if err := s.store.Save(ctx, sess); err != nil {
				s.logger.Error("lead sweep: save session failed", "error", err, "session_key", key)
			}
		}
	}

	if age > s.cfg.TTL {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error("lead sweep: delete session failed", "error", err, "session_key", key)
			return
		}
		res.Deleted++
		s.logger.Debug("lead session expired", "session_key", key, "notified", sess.Notified, "age", age)
	}
}

func (s *Sweeper) sendIncomplete(ctx context.Context, sess Session) error {
	if s.notifier == nil {
		return notify.ErrNotConfigured
	}
	return s.notifier.SendIncomplete(ctx, sess.Lead(TimeoutReason(s.cfg.IncompleteAfter)))
}

// TimeoutReason renders the escalation reason, e.g. "Таймаут 10 минут".
func TimeoutReason(d time.Duration) string {
	if d%time.Hour == 0 && d >= time.Hour {
		h := int64(d / time.Hour)
		return fmt.Sprintf("Таймаут %d %s", h, plural(h, "час", "часа", "часов"))
	}
	m := int64(d / time.Minute)
	if m > 0 && d%time.Minute == 0 {
		return fmt.Sprintf("Таймаут %d %s", m, plural(m, "минута", "минуты", "минут"))
	}
	sec := int64(d / time.Second)
	return fmt.Sprintf("Таймаут %d %s", sec, plural(sec, "секунда", "секунды", "секунд"))
}

func plural(n int64, one, few, many string) string {
	n100 := n % 100
	n10 := n % 10
	switch {
	case n100 >= 11 && n100 <= 14:
		return many
	case n10 == 1:
		return one
	case n10 >= 2 && n10 <= 4:
		return few
	default:
		return many
	}
}
