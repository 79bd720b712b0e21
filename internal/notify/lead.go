package notify

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fortis-steel/chatbot-api/internal/contact"
)

const (
	defaultFromName = "Fortis Chatbot"
	defaultBrand    = "Fortis"

	// MissingMarker replaces an absent contact in notifications.
	MissingMarker = "ОТСУТСТВУЕТ"
	// MentionedMarker replaces a contact the visitor referred to but that could not be parsed.
	MentionedMarker = "упомянут, но не распознан"

	timestampLayout = "2006-01-02 15:04:05"
)

// ErrNotConfigured is returned when no delivery backend is available.
var ErrNotConfigured = errors.New("notify: lead notifier not configured")

// Kind distinguishes complete and partial lead notifications.
type Kind string

const (
	KindFull       Kind = "full"
	KindIncomplete Kind = "incomplete"
)

// Lead is the payload forwarded to the sales mailbox.
type Lead struct {
	SessionKey string
	Amount     int64
	Phone      contact.Value
	Email      contact.Value
	Messages   []string
	CreatedAt  time.Time
	SentAt     time.Time
	// Reason explains why an incomplete lead was escalated.
	Reason string
}

// LeadNotifier delivers leads. A nil error means the delivery was confirmed.
type LeadNotifier interface {
	SendFull(ctx context.Context, lead Lead) error
	SendIncomplete(ctx context.Context, lead Lead) error
}

// Text joins the visitor's qualifying messages.
func (l Lead) Text() string {
	return strings.Join(l.Messages, "\n---\n")
}

// PhoneDisplay renders the phone for humans, marking absent or unparsed values.
func (l Lead) PhoneDisplay() string { return displayContact(l.Phone) }

// EmailDisplay renders the email for humans, marking absent or unparsed values.
func (l Lead) EmailDisplay() string { return displayContact(l.Email) }

// ReplyAddress is the visitor email when it was recognized, else "".
func (l Lead) ReplyAddress() string {
	if l.Email.Kind() != contact.KindRecognized {
		return ""
	}
	return l.Email.Text()
}

// Missing lists absent contact channels in genitive form ("телефона", "email").
func (l Lead) Missing() []string {
	var parts []string
	if !l.Phone.IsSet() {
		parts = append(parts, "телефона")
	}
	if !l.Email.IsSet() {
		parts = append(parts, "email")
	}
	return parts
}

// MissingText is Missing joined for subjects and form fields.
func (l Lead) MissingText() string {
	return strings.Join(l.Missing(), ", ")
}

// AmountText formats the amount as "75,000 руб.".
func (l Lead) AmountText() string {
	return FormatAmount(l.Amount) + " руб."
}

// Timestamp formats SentAt, falling back to the current time.
func (l Lead) Timestamp() string {
	ts := l.SentAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Format(timestampLayout)
}

func displayContact(v contact.Value) string {
	switch v.Kind() {
	case contact.KindRecognized:
		return v.Text()
	case contact.KindMentioned:
		return MentionedMarker
	default:
		return MissingMarker
	}
}

// FormatAmount groups digits in thousands with commas.
func FormatAmount(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
