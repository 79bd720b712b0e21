package qualification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortis-steel/chatbot-api/internal/contact"
	"github.com/fortis-steel/chatbot-api/internal/leads"
	"github.com/fortis-steel/chatbot-api/internal/notify"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// Outcome labels what the policy did with a message.
type Outcome string

const (
	// OutcomeIgnored means the message is not part of a lead dialogue.
	OutcomeIgnored         Outcome = "ignored"
	OutcomeAskBoth         Outcome = "ask_both"
	OutcomeAskMissing      Outcome = "ask_missing"
	OutcomeReminder        Outcome = "reminder"
	OutcomeRepeat          Outcome = "repeat_request"
	OutcomeNotified        Outcome = "notified_full"
	OutcomeNotifyFailed    Outcome = "notify_failed"
	OutcomeAlreadyNotified Outcome = "already_notified"
)

// Decision is the policy's answer to one message.
type Decision struct {
	Outcome Outcome
	Reply   string
	Amount  int64
	// Created is true when the message opened a new session.
	Created bool
}

// Handled reports whether Reply should be sent instead of an AI reply.
func (d Decision) Handled() bool {
	return d.Outcome != OutcomeIgnored
}

// Config tunes the policy.
type Config struct {
	Threshold int64
	Brand     string
}

// Policy runs the lead dialogue state machine over a session store.
type Policy struct {
	store     leads.Store
	notifier  notify.LeadNotifier
	threshold int64
	replies   *replies
	logger    *logging.Logger
}

func NewPolicy(store leads.Store, notifier notify.LeadNotifier, cfg Config, logger *logging.Logger) *Policy {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Policy{
		store:     store,
		notifier:  notifier,
		threshold: cfg.Threshold,
		replies:   newReplies(cfg.Brand),
		logger:    logger.WithComponent("qualification"),
	}
}

// Threshold is the minimum qualifying amount.
func (p *Policy) Threshold() int64 {
	return p.threshold
}

// Handle routes one message for key through the state machine. A message
// opens a session when its amount reaches the threshold; once a session
// exists, messages carrying an amount or a contact continue it. Everything
// else is ignored and left to the AI reply.
//
// The key lock is held for the whole step, including the notification send,
// so concurrent messages for one visitor are serialized.
func (p *Policy) Handle(ctx context.Context, key, message string, now time.Time) (Decision, error) {
	qualifies, amount := Evaluate(message, p.threshold)
	found := contact.Extract(message)

	unlock := p.store.Lock(key)
	defer unlock()

	sess, err := p.store.Get(ctx, key)
	created := false
	switch {
	case errors.Is(err, leads.ErrSessionNotFound):
		if !qualifies {
			return Decision{Outcome: OutcomeIgnored, Amount: amount}, nil
		}
		sess, created, err = p.store.GetOrCreate(ctx, key, amount, now)
		if err != nil {
			return Decision{}, fmt.Errorf("qualification: create session: %w", err)
		}
	case err != nil:
		return Decision{}, fmt.Errorf("qualification: get session: %w", err)
	case !qualifies && !found.Any():
		return Decision{Outcome: OutcomeIgnored, Amount: amount}, nil
	}

	prior := sess.MessageCount
	sess.Absorb(message, found, now)

	decision := p.decide(ctx, &sess, prior, now)
	decision.Created = created
	decision.Amount = sess.Amount

	if err := p.store.Save(ctx, sess); err != nil {
		return Decision{}, fmt.Errorf("qualification: save session: %w", err)
	}

	p.logger.Info("lead message handled",
		"session_key", key,
		"outcome", decision.Outcome,
		"amount", sess.Amount,
		"phone", sess.Phone.Kind().String(),
		"email", sess.Email.Kind().String(),
		"message_count", sess.MessageCount,
	)
	return decision, nil
}

func (p *Policy) decide(ctx context.Context, sess *leads.Session, prior int, now time.Time) Decision {
	contacts := sess.Contacts()
	r := p.replies

	switch {
	case sess.Notified:
		reply := replyAckFull
		if sess.NotificationKind == leads.NotificationIncomplete {
			reply = replyAckIncomplete
		}
		return Decision{Outcome: OutcomeAlreadyNotified, Reply: reply}

	case contacts.Complete():
		if err := p.sendFull(ctx, *sess); err != nil {
			p.logger.Warn("full lead not delivered", "error", err, "session_key", sess.Key)
			return Decision{Outcome: OutcomeNotifyFailed, Reply: replyFullFailed}
		}
		sess.MarkNotified(leads.NotificationFull, now)
		return Decision{Outcome: OutcomeNotified, Reply: r.render("full_sent", replyFullSent, sess.Amount, "")}

	case contacts.Any():
		missing := missingContact(contacts)
		switch {
		case prior < 2 && !sess.ReminderSent:
			return Decision{Outcome: OutcomeAskMissing, Reply: r.render("ask_missing", replyAskMissing, sess.Amount, missing)}
		case !sess.ReminderSent:
			sess.ReminderSent = true
			return Decision{Outcome: OutcomeReminder, Reply: r.render("reminder", replyReminder, sess.Amount, missing)}
		default:
			return Decision{Outcome: OutcomeRepeat, Reply: r.render("repeat", replyRepeat, sess.Amount, missing)}
		}

	default:
		return Decision{Outcome: OutcomeAskBoth, Reply: r.render("ask_both", replyAskBoth, sess.Amount, "")}
	}
}

func (p *Policy) sendFull(ctx context.Context, sess leads.Session) error {
	if p.notifier == nil {
		return notify.ErrNotConfigured
	}
	return p.notifier.SendFull(ctx, sess.Lead(""))
}
