package leads

import (
	"time"

	"github.com/fortis-steel/chatbot-api/internal/contact"
	"github.com/fortis-steel/chatbot-api/internal/notify"
)

// NotificationKind records which lead notification a session received.
type NotificationKind string

const (
	NotificationNone       NotificationKind = "none"
	NotificationFull       NotificationKind = "full"
	NotificationIncomplete NotificationKind = "incomplete"
)

// Session accumulates one visitor's qualifying messages until the lead is
// forwarded or the session expires.
type Session struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Amount is the first qualifying order size and never changes.
	Amount           int64            `json:"amount"`
	Phone            contact.Value    `json:"-"`
	Email            contact.Value    `json:"-"`
	Messages         []string         `json:"messages"`
	Notified         bool             `json:"notified"`
	NotificationKind NotificationKind `json:"notification_kind"`
	ReminderSent     bool             `json:"reminder_sent"`
	MessageCount     int              `json:"message_count"`
}

func newSession(key string, amount int64, now time.Time) Session {
	return Session{
		Key:              key,
		CreatedAt:        now,
		UpdatedAt:        now,
		Amount:           amount,
		NotificationKind: NotificationNone,
	}
}

// Contacts returns the captured phone and email.
func (s Session) Contacts() contact.Contacts {
	return contact.Contacts{Phone: s.Phone, Email: s.Email}
}

// Absorb appends a qualifying message and merges its contacts. Contacts
// already captured are never replaced.
func (s *Session) Absorb(text string, found contact.Contacts, now time.Time) {
	merged := s.Contacts().Merge(found)
	s.Phone = merged.Phone
	s.Email = merged.Email
	s.Messages = append(s.Messages, text)
	s.MessageCount++
	s.UpdatedAt = now
}

// Age is the time elapsed since the session was created.
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// MarkNotified records a confirmed delivery.
func (s *Session) MarkNotified(kind NotificationKind, now time.Time) {
	s.Notified = true
	s.NotificationKind = kind
	s.UpdatedAt = now
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	out := s
	if s.Messages != nil {
		out.Messages = append([]string(nil), s.Messages...)
	}
	return out
}

// Lead converts the session into a notification payload.
func (s Session) Lead(reason string) notify.Lead {
	return notify.Lead{
		SessionKey: s.Key,
		Amount:     s.Amount,
		Phone:      s.Phone,
		Email:      s.Email,
		Messages:   append([]string(nil), s.Messages...),
		CreatedAt:  s.CreatedAt,
		Reason:     reason,
	}
}
