package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func converseText(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(10),
			OutputTokens: aws.Int32(5),
		},
	}
}

func TestBedrockLLMClient_Complete(t *testing.T) {
	api := &fakeConverse{out: converseText("  Да, есть в наличии.  ")}
	client := NewBedrockLLMClient(api, "anthropic.claude-3-haiku")

	resp, err := client.Complete(context.Background(), LLMRequest{
		SessionKey:   "visitor-1",
		SystemPrompt: " prompt ",
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "привет"},
			{Role: ChatRoleAssistant, Content: "здравствуйте"},
			{Role: ChatRoleSystem, Content: "extra"},
			{Role: ChatRoleUser, Content: "есть арматура?"},
		},
		MaxTokens:   100,
		Temperature: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Да, есть в наличии.", resp.Text)
	assert.Equal(t, ProviderBedrock, resp.Provider)
	assert.Equal(t, TokenUsage{InputTokens: 10, OutputTokens: 5}, resp.Usage)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.False(t, resp.Truncated())

	require.NotNil(t, api.input)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	require.Len(t, api.input.System, 2)
	assert.Equal(t, "prompt", api.input.System[0].(*brtypes.SystemContentBlockMemberText).Value)
	assert.Len(t, api.input.Messages, 3)
	require.NotNil(t, api.input.InferenceConfig)
	assert.Nil(t, api.input.InferenceConfig.Temperature)
	assert.Equal(t, int32(100), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
}

func TestBedrockLLMClient_Errors(t *testing.T) {
	client := NewBedrockLLMClient(&fakeConverse{}, "")
	_, err := client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "x"}}})
	assert.Error(t, err, "model required")

	client = NewBedrockLLMClient(&fakeConverse{err: errors.New("throttled")}, "m")
	_, err = client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "x"}}})
	assert.Error(t, err)

	_, err = client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: "tool", Content: "x"}}})
	assert.Error(t, err)

	_, err = client.Complete(context.Background(), LLMRequest{})
	assert.Error(t, err)

	client = NewBedrockLLMClient(&fakeConverse{out: converseText("   ")}, "m")
	_, err = client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "x"}}})
	assert.Error(t, err)
}

func TestBedrockInferenceOmittedWhenEmpty(t *testing.T) {
	assert.Nil(t, bedrockInference(LLMRequest{Temperature: -1}))
}

func TestGeminiHistoryMapsRoles(t *testing.T) {
	history := geminiHistory([]ChatMessage{
		{Role: ChatRoleSystem, Content: "ignored"},
		{Role: ChatRoleUser, Content: "вопрос"},
		{Role: ChatRoleAssistant, Content: "ответ"},
		{Role: ChatRoleUser, Content: "  "},
	})
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
}

func TestGeminiResponse(t *testing.T) {
	_, err := geminiResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	resp, err := geminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("Добрый "), genai.Text("день ")}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 3, CandidatesTokenCount: 2, TotalTokenCount: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "Добрый день", resp.Text)
	assert.Equal(t, ProviderGemini, resp.Provider)
	assert.Equal(t, TokenUsage{InputTokens: 3, OutputTokens: 2}, resp.Usage)
	assert.False(t, resp.Truncated())

	resp, err = geminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("Арматура А500С есть. Цена")}},
			FinishReason: genai.FinishReasonMaxTokens,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, StopReasonMaxTokens, resp.StopReason)
	assert.True(t, resp.Truncated())
}

func TestBedrockMaxTokensStopReasonIsTruncated(t *testing.T) {
	out := converseText("Арматура есть. Доставка")
	out.StopReason = brtypes.StopReasonMaxTokens
	resp, err := NewBedrockLLMClient(&fakeConverse{out: out}, "m").Complete(context.Background(), LLMRequest{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "есть арматура?"}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Truncated())
}

func TestNewGeminiLLMClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiLLMClient(context.Background(), " ", "")
	assert.Error(t, err)
}

type stubLLM struct {
	resp  LLMResponse
	err   error
	calls int
	last  LLMRequest
	block bool
}

func (s *stubLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.calls++
	s.last = req
	if s.block {
		<-ctx.Done()
		return LLMResponse{}, ctx.Err()
	}
	return s.resp, s.err
}

func TestFallbackLLMClient(t *testing.T) {
	primary := &stubLLM{err: errors.New("gemini 503")}
	fallback := &stubLLM{resp: LLMResponse{Text: "fallback"}}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)

	ok := &stubLLM{resp: LLMResponse{Text: "primary"}}
	client = NewFallbackLLMClient(ok, fallback, nil)
	resp, err = client.Complete(context.Background(), LLMRequest{})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Equal(t, 1, fallback.calls)

	client = NewFallbackLLMClient(primary, nil, nil)
	_, err = client.Complete(context.Background(), LLMRequest{})
	assert.EqualError(t, err, "gemini 503")

	failing := &stubLLM{err: errors.New("bedrock down")}
	client = NewFallbackLLMClient(primary, failing, nil)
	_, err = client.Complete(context.Background(), LLMRequest{})
	assert.EqualError(t, err, "bedrock down")
}

func TestFallbackLLMClient_SkipsFallbackAfterDeadline(t *testing.T) {
	primary := &stubLLM{err: context.Canceled}
	fallback := &stubLLM{resp: LLMResponse{Text: "fallback"}}
	client := NewFallbackLLMClient(primary, fallback, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Complete(ctx, LLMRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.calls)
}
