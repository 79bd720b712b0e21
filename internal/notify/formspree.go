package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// FormspreeConfig points the notifier at a hosted form endpoint.
type FormspreeConfig struct {
	Endpoint string
	ReplyTo  string
	Brand    string
	Timeout  time.Duration
}

// FormspreeNotifier posts leads as URL-encoded form submissions.
// Only HTTP 200 counts as a confirmed delivery.
type FormspreeNotifier struct {
	endpoint string
	replyTo  string
	brand    string
	client   *http.Client
	logger   *logging.Logger
}

// NewFormspreeNotifier returns nil when no endpoint is configured.
func NewFormspreeNotifier(cfg FormspreeConfig, client *http.Client, logger *logging.Logger) *FormspreeNotifier {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Brand == "" {
		cfg.Brand = defaultBrand
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &FormspreeNotifier{
		endpoint: cfg.Endpoint,
		replyTo:  cfg.ReplyTo,
		brand:    cfg.Brand,
		client:   client,
		logger:   logger,
	}
}

// SendFull submits a lead with both contacts.
func (n *FormspreeNotifier) SendFull(ctx context.Context, lead Lead) error {
	form := n.baseForm(lead)
	form.Set("_subject", fmt.Sprintf("🎯 ПОЛНАЯ ЗАЯВКА %s: %s", n.brand, lead.AmountText()))
	form.Set("type", "full_application")
	return n.post(ctx, KindFull, form)
}

// SendIncomplete submits a lead missing at least one contact.
func (n *FormspreeNotifier) SendIncomplete(ctx context.Context, lead Lead) error {
	form := n.baseForm(lead)
	form.Set("_subject", fmt.Sprintf("⚠️ НЕПОЛНАЯ ЗАЯВКА %s: %s (нет %s)", n.brand, lead.AmountText(), lead.MissingText()))
	form.Set("type", "incomplete_application")
	form.Set("missing_data", lead.MissingText())
	form.Set("reason", lead.Reason)
	return n.post(ctx, KindIncomplete, form)
}

func (n *FormspreeNotifier) baseForm(lead Lead) url.Values {
	form := url.Values{}
	if n.replyTo != "" {
		form.Set("_replyto", n.replyTo)
	}
	form.Set("amount", lead.AmountText())
	form.Set("phone", lead.PhoneDisplay())
	form.Set("client_email", lead.EmailDisplay())
	form.Set("text", lead.Text())
	form.Set("timestamp", lead.Timestamp())
	form.Set("session", lead.SessionKey)
	return form
}

func (n *FormspreeNotifier) post(ctx context.Context, kind Kind, form url.Values) error {
	if n == nil {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: formspree request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("notify: formspree post failed", "error", err, "kind", kind)
		return fmt.Errorf("notify: formspree post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("notify: formspree rejected lead", "status", resp.StatusCode, "kind", kind)
		return fmt.Errorf("notify: formspree returned status %d", resp.StatusCode)
	}
	n.logger.Info("notify: lead submitted to formspree", "kind", kind)
	return nil
}

var _ LeadNotifier = (*FormspreeNotifier)(nil)
