package conversation

import (
	"context"
	"strings"
)

// Transcript and prompt roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// StopReasonMaxTokens is the normalized stop reason for a reply cut at the token limit.
const StopReasonMaxTokens = "max_tokens"

// ChatMessage is one visitor or assistant turn sent to a model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage counts prompt and reply tokens of one completion.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
}

// LLMRequest asks a provider for the next assistant turn of a chat session.
type LLMRequest struct {
	// SessionKey is only used for log correlation; providers never send it.
	SessionKey   string
	Model        string
	SystemPrompt string
	Messages     []ChatMessage
	MaxTokens    int32
	// Negative leaves the provider default.
	Temperature float32
}

// LLMResponse is the assistant turn and which provider produced it.
type LLMResponse struct {
	Text       string
	Provider   string
	StopReason string
	Usage      TokenUsage
}

// Truncated reports whether the provider stopped at the token limit.
func (r LLMResponse) Truncated() bool {
	return strings.EqualFold(r.StopReason, StopReasonMaxTokens)
}

// LLMClient completes a chat session with one model provider.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
