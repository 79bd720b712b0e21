package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/fortis-steel/chatbot-api/internal/config"
	"github.com/fortis-steel/chatbot-api/internal/notify"
	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// Notification backends accepted by NOTIFY_BACKEND.
const (
	BackendAuto      = "auto"
	BackendFormspree = "formspree"
	BackendSendGrid  = "sendgrid"
	BackendSES       = "ses"
	BackendSMTP      = "smtp"
	BackendStub      = "stub"
	BackendNone      = "none"
)

// autoOrder is the preference used when NOTIFY_BACKEND is "auto".
var autoOrder = []string{BackendFormspree, BackendSendGrid, BackendSES, BackendSMTP}

// BuildNotifier selects the lead delivery backend and wraps it in a Guard.
// The Guard is always returned; when nothing is configured it reports
// backend "none" and every send fails with notify.ErrNotConfigured.
func BuildNotifier(cfg *appconfig.Config, awsCfg *aws.Config, m *metrics.LeadMetrics, logger *logging.Logger) *notify.Guard {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewGuard(nil, notify.GuardConfig{}, m, logger)
	}

	guardCfg := notify.GuardConfig{Timeout: cfg.NotifyTimeout}
	choice := strings.ToLower(strings.TrimSpace(cfg.NotifyBackend))
	if choice == "" {
		choice = BackendAuto
	}

	candidates := []string{choice}
	if choice == BackendAuto {
		candidates = autoOrder
	}
	for _, backend := range candidates {
		inner := buildLeadNotifier(backend, cfg, awsCfg, logger)
		if inner == nil {
			continue
		}
		guardCfg.Backend = backend
		logger.Info("lead notifier configured", "backend", backend)
		return notify.NewGuard(inner, guardCfg, m, logger)
	}

	logger.Warn("no lead notifier configured; leads will only be logged", "requested", choice)
	guardCfg.Backend = BackendNone
	return notify.NewGuard(nil, guardCfg, m, logger)
}

func buildLeadNotifier(backend string, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.LeadNotifier {
	emailCfg := notify.EmailNotifierConfig{To: cfg.NotifyEmailTo}

	switch backend {
	case BackendFormspree:
		if n := notify.NewFormspreeNotifier(notify.FormspreeConfig{
			Endpoint: cfg.FormspreeURL,
			ReplyTo:  cfg.FormspreeReplyTo,
			Timeout:  cfg.NotifyTimeout,
		}, nil, logger); n != nil {
			return n
		}
	case BackendSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return emailNotifier(sender, emailCfg, logger)
		}
	case BackendSES:
		if awsCfg == nil || strings.TrimSpace(cfg.SESFromEmail) == "" {
			return nil
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail:        cfg.SESFromEmail,
			FromName:         cfg.SendGridFromName,
			ConfigurationSet: cfg.SESConfigurationSet,
		}, logger)
		if sender != nil {
			return emailNotifier(sender, emailCfg, logger)
		}
	case BackendSMTP:
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFromEmail,
			FromName:  cfg.SendGridFromName,
			Timeout:   cfg.NotifyTimeout,
		}, logger)
		if sender != nil {
			return emailNotifier(sender, emailCfg, logger)
		}
	case BackendStub:
		if emailCfg.To == "" {
			emailCfg.To = "leads@localhost"
		}
		return emailNotifier(notify.NewStubEmailSender(logger), emailCfg, logger)
	default:
		logger.Warn("unknown notify backend", "backend", backend)
	}
	return nil
}

// emailNotifier avoids returning a typed nil inside the interface.
func emailNotifier(sender notify.EmailSender, cfg notify.EmailNotifierConfig, logger *logging.Logger) notify.LeadNotifier {
	n := notify.NewEmailNotifier(sender, cfg, logger)
	if n == nil {
		return nil
	}
	return n
}
