package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortis-steel/chatbot-api/internal/templates"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

const (
	fullSubjectTmpl       = `🎯 ПОЛНАЯ ЗАЯВКА {{.Brand}}: {{.Lead.AmountText}}`
	incompleteSubjectTmpl = `⚠️ НЕПОЛНАЯ ЗАЯВКА {{.Brand}}: {{.Lead.AmountText}} (нет {{.Lead.MissingText}})`

	fullBodyTmpl = `Новая квалифицированная заявка из чата {{.Brand}}.

Сумма заказа: {{.Lead.AmountText}}
Телефон: {{.Lead.PhoneDisplay}}
Email: {{.Lead.EmailDisplay}}
Время: {{.Lead.Timestamp}}
Сессия: {{.Lead.SessionKey}}

Сообщения клиента:
{{.Lead.Text}}

Свяжитесь с клиентом в ближайшее время.
`

	incompleteBodyTmpl = `Неполная заявка из чата {{.Brand}}: клиент не оставил все контакты.

Сумма заказа: {{.Lead.AmountText}}
Телефон: {{.Lead.PhoneDisplay}}
Email: {{.Lead.EmailDisplay}}
Не хватает: {{.Lead.MissingText}}
Причина: {{.Lead.Reason}}
Время: {{.Lead.Timestamp}}
Сессия: {{.Lead.SessionKey}}

Сообщения клиента:
{{.Lead.Text}}
`

	fullHTMLTmpl = `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #10b981;">🎯 Полная заявка: {{.Lead.AmountText}}</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Телефон:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.PhoneDisplay}}</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Email:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.EmailDisplay}}</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Время:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.Timestamp}}</td></tr>
</table>
<pre style="background: #f9fafb; padding: 12px; border-radius: 8px; white-space: pre-wrap;">{{.Lead.Text}}</pre>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— {{.Brand}} Chatbot</p>
</div>`

	incompleteHTMLTmpl = `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #f59e0b;">⚠️ Неполная заявка: {{.Lead.AmountText}}</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Телефон:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.PhoneDisplay}}</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Email:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.EmailDisplay}}</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Причина:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.Reason}}</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Время:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Lead.Timestamp}}</td></tr>
</table>
<pre style="background: #fffbeb; padding: 12px; border-radius: 8px; white-space: pre-wrap;">{{.Lead.Text}}</pre>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— {{.Brand}} Chatbot</p>
</div>`
)

// EmailNotifier renders leads into emails for the sales mailbox.
type EmailNotifier struct {
	sender   EmailSender
	to       string
	brand    string
	renderer *templates.Renderer
	logger   *logging.Logger
}

// EmailNotifierConfig configures the recipient and brand shown in subjects.
type EmailNotifierConfig struct {
	To    string
	Brand string
}

// NewEmailNotifier returns nil when sender or recipient is missing.
func NewEmailNotifier(sender EmailSender, cfg EmailNotifierConfig, logger *logging.Logger) *EmailNotifier {
	if sender == nil || cfg.To == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Brand == "" {
		cfg.Brand = defaultBrand
	}
	return &EmailNotifier{
		sender:   sender,
		to:       cfg.To,
		brand:    cfg.Brand,
		renderer: &templates.Renderer{},
		logger:   logger,
	}
}

type emailView struct {
	Brand string
	Lead  Lead
}

// SendFull emails a lead with both contacts.
func (n *EmailNotifier) SendFull(ctx context.Context, lead Lead) error {
	return n.send(ctx, KindFull, lead, fullSubjectTmpl, fullBodyTmpl, fullHTMLTmpl)
}

// SendIncomplete emails a lead that is missing at least one contact.
func (n *EmailNotifier) SendIncomplete(ctx context.Context, lead Lead) error {
	return n.send(ctx, KindIncomplete, lead, incompleteSubjectTmpl, incompleteBodyTmpl, incompleteHTMLTmpl)
}

func (n *EmailNotifier) send(ctx context.Context, kind Kind, lead Lead, subjectTmpl, bodyTmpl, htmlTmpl string) error {
	if n == nil || n.sender == nil {
		return ErrNotConfigured
	}
	view := emailView{Brand: n.brand, Lead: lead}

	subject, err := n.renderer.Render(string(kind)+"_subject", subjectTmpl, view)
	if err != nil {
		return fmt.Errorf("notify: render subject: %w", err)
	}
	body, err := n.renderer.Render(string(kind)+"_body", bodyTmpl, view)
	if err != nil {
		return fmt.Errorf("notify: render body: %w", err)
	}
	html, err := n.renderer.Render(string(kind)+"_html", htmlTmpl, view)
	if err != nil {
		return fmt.Errorf("notify: render html: %w", err)
	}

	msg := EmailMessage{
		To:         n.to,
		Subject:    subject,
		Body:       body,
		HTML:       html,
		Kind:       kind,
		Brand:      n.brand,
		SessionKey: lead.SessionKey,
		ReplyTo:    lead.ReplyAddress(),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("notify: lead email failed", "error", err, "kind", kind, "to", n.to)
		return errors.Join(fmt.Errorf("notify: send %s lead", kind), err)
	}
	n.logger.Info("notify: lead email sent", "kind", kind, "to", n.to, "amount", lead.Amount)
	return nil
}

var _ LeadNotifier = (*EmailNotifier)(nil)
