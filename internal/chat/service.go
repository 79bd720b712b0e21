// Package chat answers inbound chat messages, routing lead dialogue through
// the qualification policy and everything else to the AI replier.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fortis-steel/chatbot-api/internal/conversation"
	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/internal/qualification"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// EmptyMessageReply answers blank or malformed messages.
const EmptyMessageReply = "Напишите, пожалуйста, ваш вопрос: какой металлопрокат и в каком объёме вас интересует?"

// Qualifier runs the lead dialogue for one message.
type Qualifier interface {
	Handle(ctx context.Context, key, message string, now time.Time) (qualification.Decision, error)
}

// Replier produces AI replies and remembers exchanges.
type Replier interface {
	Reply(ctx context.Context, sessionKey, message string) string
	Record(ctx context.Context, sessionKey, userText, reply string)
	Configured() bool
}

// Trigger requests an out-of-band sweep pass.
type Trigger interface {
	Trigger()
}

// Reply is the answer to one chat message.
type Reply struct {
	Text    string
	Outcome string
}

// Service handles chat messages for every transport.
type Service struct {
	policy  Qualifier
	ai      Replier
	sweeper Trigger
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
	now     func() time.Time
}

func NewService(policy Qualifier, ai Replier, sweeper Trigger, m *metrics.LeadMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		policy:  policy,
		ai:      ai,
		sweeper: sweeper,
		metrics: m,
		logger:  logger.WithComponent("chat"),
		now:     time.Now,
	}
}

// AIConfigured reports whether replies come from a live AI backend.
func (s *Service) AIConfigured() bool {
	return s.ai != nil && s.ai.Configured()
}

// HandleMessage answers text from the visitor identified by key. Errors are
// returned only for internal failures; external outages degrade the reply.
func (s *Service) HandleMessage(ctx context.Context, key, text string) (Reply, error) {
	if s.sweeper != nil {
		s.sweeper.Trigger()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.ObserveChatMessage("empty")
		return Reply{Text: EmptyMessageReply, Outcome: "empty"}, nil
	}

	decision, err := s.policy.Handle(ctx, key, text, s.now())
	if err != nil {
		s.metrics.ObserveChatMessage("error")
		return Reply{}, fmt.Errorf("chat: qualify message: %w", err)
	}

	var reply Reply
	if decision.Handled() {
		reply = Reply{Text: decision.Reply, Outcome: string(decision.Outcome)}
	} else {
		reply = Reply{Text: s.aiReply(ctx, key, text), Outcome: "ai"}
	}
	s.metrics.ObserveChatMessage(reply.Outcome)

	if s.ai != nil {
		s.ai.Record(ctx, key, text, reply.Text)
	}
	s.logger.Debug("chat message answered", "session_key", key, "outcome", reply.Outcome)
	return reply, nil
}

func (s *Service) aiReply(ctx context.Context, key, text string) string {
	if s.ai == nil {
		return conversation.UnconfiguredReply
	}
	return s.ai.Reply(ctx, key, text)
}
