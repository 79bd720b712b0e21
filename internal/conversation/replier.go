package conversation

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultSystemPrompt frames the assistant for the Fortis sales site.
	DefaultSystemPrompt = "Ты вежливый консультант компании Fortis, поставщика металлопроката. " +
		"Отвечай кратко и по-русски. Помогай подобрать продукцию, объясняй условия поставки. " +
		"Если клиент готов сделать заказ, попроси указать сумму заказа, телефон и email. " +
		"Не придумывай цены и сроки, предлагай уточнить их у менеджера."

	// FallbackReply is returned when the AI service fails.
	FallbackReply = "Извините, сейчас не получается ответить. Попробуйте ещё раз через минуту " +
		"или оставьте телефон и email, и менеджер свяжется с вами."

	// UnconfiguredReply is returned when no AI service is configured.
	UnconfiguredReply = "Здравствуйте! Я помощник Fortis. Напишите, какой металлопрокат вас интересует " +
		"и на какую сумму планируется заказ, и оставьте телефон и email для связи с менеджером."

	defaultAITimeout = 20 * time.Second
)

// ReplierConfig tunes prompt construction and limits.
type ReplierConfig struct {
	SystemPrompt string
	Model        string
	Timeout      time.Duration
	MaxTokens    int32
	Temperature  float32
	HistoryTurns int64
}

// Replier produces AI chat replies. It never fails: errors and timeouts
// degrade to FallbackReply.
type Replier struct {
	client      LLMClient
	transcripts *TranscriptStore
	cfg         ReplierConfig
	metrics     *metrics.LeadMetrics
	logger      *logging.Logger
	tracer      trace.Tracer
}

func NewReplier(client LLMClient, transcripts *TranscriptStore, cfg ReplierConfig, m *metrics.LeadMetrics, logger *logging.Logger) *Replier {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAITimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.4
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 10
	}
	return &Replier{
		client:      client,
		transcripts: transcripts,
		cfg:         cfg,
		metrics:     m,
		logger:      logger.WithComponent("ai"),
		tracer:      otel.Tracer("fortis.internal.conversation.replier"),
	}
}

// Configured reports whether an AI backend is wired.
func (r *Replier) Configured() bool {
	return r != nil && r.client != nil
}

// Reply generates an answer to message using the session's recent turns.
func (r *Replier) Reply(ctx context.Context, sessionKey, message string) string {
	if !r.Configured() {
		r.metrics.ObserveAIReply("unconfigured")
		return UnconfiguredReply
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "conversation.reply")
	defer span.End()
	span.SetAttributes(attribute.Int("message.length", len(message)))

	req := LLMRequest{
		SessionKey:   sessionKey,
		Model:        r.cfg.Model,
		SystemPrompt: r.cfg.SystemPrompt,
		Messages:     append(r.history(ctx, sessionKey), ChatMessage{Role: ChatRoleUser, Content: message}),
		MaxTokens:    r.cfg.MaxTokens,
		Temperature:  r.cfg.Temperature,
	}

	resp, err := r.client.Complete(ctx, req)
	switch {
	case err != nil:
		span.RecordError(err)
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = "timeout"
		}
		r.metrics.ObserveAIReply(status)
		r.logger.Error("ai reply failed", "error", err, "status", status, "session_key", sessionKey)
		return FallbackReply
	case strings.TrimSpace(resp.Text) == "":
		r.metrics.ObserveAIReply("empty")
		r.logger.Warn("ai reply was empty", "session_key", sessionKey, "provider", resp.Provider, "stop_reason", resp.StopReason)
		return FallbackReply
	}

	span.SetAttributes(attribute.String("ai.provider", resp.Provider))
	text := strings.TrimSpace(resp.Text)
	if resp.Truncated() {
		r.logger.Warn("ai reply hit token limit", "session_key", sessionKey, "provider", resp.Provider, "max_tokens", r.cfg.MaxTokens)
		text = trimToSentence(text)
	}

	r.metrics.ObserveAIReply("ok")
	r.logger.Debug("ai reply generated",
		"session_key", sessionKey,
		"provider", resp.Provider,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return text
}

// trimToSentence drops a dangling partial sentence from a cut-off reply.
// Text without any sentence end is returned as is.
func trimToSentence(text string) string {
	cut := strings.LastIndexAny(text, ".!?…")
	if cut <= 0 {
		return text
	}
	_, size := utf8.DecodeRuneInString(text[cut:])
	return strings.TrimSpace(text[:cut+size])
}

// Record stores one exchange so later prompts see it. Failures are logged only.
func (r *Replier) Record(ctx context.Context, sessionKey, userText, reply string) {
	if r == nil || r.transcripts == nil {
		return
	}
	now := time.Now().UTC()
	for _, msg := range []TranscriptMessage{
		{Role: ChatRoleUser, Body: userText, Timestamp: now},
		{Role: ChatRoleAssistant, Body: reply, Timestamp: now},
	} {
		if strings.TrimSpace(msg.Body) == "" {
			continue
		}
		if err := r.transcripts.Append(ctx, sessionKey, msg); err != nil {
			r.logger.Warn("transcript append failed", "error", err, "session_key", sessionKey)
			return
		}
	}
}

func (r *Replier) history(ctx context.Context, sessionKey string) []ChatMessage {
	if r.transcripts == nil {
		return nil
	}
	turns, err := r.transcripts.List(ctx, sessionKey, r.cfg.HistoryTurns)
	if err != nil {
		r.logger.Warn("transcript read failed", "error", err, "session_key", sessionKey)
		return nil
	}
	out := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		role := ChatRoleUser
		if t.Role == ChatRoleAssistant {
			role = ChatRoleAssistant
		}
		out = append(out, ChatMessage{Role: role, Content: t.Body})
	}
	return out
}
