// Package keepalive pings the service's own public URL so free-tier hosts do
// not put it to sleep between visitors.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// Pinger issues a GET against url on every tick.
type Pinger struct {
	url      string
	client   *http.Client
	logger   *logging.Logger
	interval time.Duration
}

// NewPinger returns nil when url is blank or interval is not positive.
func NewPinger(url string, interval time.Duration, client *http.Client, logger *logging.Logger) *Pinger {
	url = strings.TrimSpace(url)
	if url == "" || interval <= 0 {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pinger{
		url:      url,
		client:   client,
		logger:   logger.WithComponent("keepalive"),
		interval: interval,
	}
}

// Run pings until ctx is cancelled. A nil Pinger returns immediately.
func (p *Pinger) Run(ctx context.Context) error {
	if p == nil {
		return nil
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("keepalive started", "url", p.url, "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("keepalive ping failed", "error", err)
			}
		}
	}
}

// Ping performs a single request and fails on any non-2xx status.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("keepalive: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("keepalive: request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keepalive: unexpected status %d", resp.StatusCode)
	}
	p.logger.Debug("keepalive ping ok", "status", resp.StatusCode)
	return nil
}
