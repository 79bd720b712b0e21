package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplier_Unconfigured(t *testing.T) {
	r := NewReplier(nil, nil, ReplierConfig{}, nil, nil)
	assert.False(t, r.Configured())
	assert.Equal(t, UnconfiguredReply, r.Reply(context.Background(), "visitor", "привет"))
}

func TestReplier_ReturnsTrimmedText(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "  Здравствуйте!  "}}
	r := NewReplier(llm, nil, ReplierConfig{Model: "m"}, metrics.NewLeadMetrics(prometheus.NewRegistry()), nil)

	assert.Equal(t, "Здравствуйте!", r.Reply(context.Background(), "visitor", "привет"))
	assert.Equal(t, DefaultSystemPrompt, llm.last.SystemPrompt)
	assert.Equal(t, "visitor", llm.last.SessionKey)
	assert.Equal(t, "m", llm.last.Model)
	require.Len(t, llm.last.Messages, 1)
	assert.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "привет"}, llm.last.Messages[0])
}

func TestReplier_DropsCutOffSentence(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{
		Text:       "Арматура А500С есть на складе. Доставка по Москве занимает",
		Provider:   ProviderGemini,
		StopReason: StopReasonMaxTokens,
	}}
	r := NewReplier(llm, nil, ReplierConfig{}, nil, nil)
	assert.Equal(t, "Арматура А500С есть на складе.", r.Reply(context.Background(), "visitor", "есть арматура?"))

	llm.resp.Text = "Доставка по Москве занимает"
	assert.Equal(t, "Доставка по Москве занимает", r.Reply(context.Background(), "visitor", "сроки?"))

	llm.resp.StopReason = "STOP"
	llm.resp.Text = "Да. Есть"
	assert.Equal(t, "Да. Есть", r.Reply(context.Background(), "visitor", "есть?"))
}

func TestReplier_FallsBackOnErrorAndEmpty(t *testing.T) {
	r := NewReplier(&stubLLM{err: errors.New("boom")}, nil, ReplierConfig{}, nil, nil)
	assert.Equal(t, FallbackReply, r.Reply(context.Background(), "visitor", "привет"))

	r = NewReplier(&stubLLM{resp: LLMResponse{Text: " "}}, nil, ReplierConfig{}, nil, nil)
	assert.Equal(t, FallbackReply, r.Reply(context.Background(), "visitor", "привет"))
}

func TestReplier_TimesOut(t *testing.T) {
	r := NewReplier(&stubLLM{block: true}, nil, ReplierConfig{Timeout: 20 * time.Millisecond}, nil, nil)

	start := time.Now()
	assert.Equal(t, FallbackReply, r.Reply(context.Background(), "visitor", "привет"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReplier_UsesTranscriptHistory(t *testing.T) {
	ctx := context.Background()
	transcripts, _ := newTestTranscripts(t)
	llm := &stubLLM{resp: LLMResponse{Text: "ответ 2"}}
	r := NewReplier(llm, transcripts, ReplierConfig{HistoryTurns: 4}, nil, nil)

	r.Record(ctx, "visitor", "вопрос 1", "ответ 1")
	r.Record(ctx, "visitor", "", "")

	assert.Equal(t, "ответ 2", r.Reply(ctx, "visitor", "вопрос 2"))
	require.Len(t, llm.last.Messages, 3)
	assert.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "вопрос 1"}, llm.last.Messages[0])
	assert.Equal(t, ChatMessage{Role: ChatRoleAssistant, Content: "ответ 1"}, llm.last.Messages[1])
	assert.Equal(t, "вопрос 2", llm.last.Messages[2].Content)

	other := &stubLLM{resp: LLMResponse{Text: "x"}}
	NewReplier(other, transcripts, ReplierConfig{}, nil, nil).Reply(ctx, "someone-else", "hi")
	assert.Len(t, other.last.Messages, 1)
}

func TestReplier_RecordWithoutTranscriptsIsNoop(t *testing.T) {
	var r *Replier
	r.Record(context.Background(), "visitor", "a", "b")
	NewReplier(nil, nil, ReplierConfig{}, nil, nil).Record(context.Background(), "visitor", "a", "b")
}
