package notify

import (
	"context"
	"strings"

	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// EmailSender delivers one rendered lead email to the sales mailbox.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a rendered lead notification plus the metadata providers
// use for tagging and threading.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    string

	Kind       Kind
	Brand      string
	SessionKey string
	// ReplyTo is the visitor's address so managers can answer from their mail client.
	ReplyTo string
}

// Category is the provider-side label for the notification, e.g. "fortis-lead-full".
func (m EmailMessage) Category() string {
	brand := strings.ToLower(strings.Join(strings.Fields(m.Brand), "-"))
	if brand == "" {
		brand = strings.ToLower(defaultBrand)
	}
	kind := string(m.Kind)
	if kind == "" {
		kind = "unknown"
	}
	return brand + "-lead-" + kind
}

// StubEmailSender logs leads instead of mailing them.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: lead not mailed",
		"to", msg.To,
		"category", msg.Category(),
		"session_key", msg.SessionKey,
		"subject", msg.Subject,
	)
	return nil
}

var _ EmailSender = (*StubEmailSender)(nil)
