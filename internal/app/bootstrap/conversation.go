package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/fortis-steel/chatbot-api/internal/config"
	"github.com/fortis-steel/chatbot-api/internal/conversation"
	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// BuildLLMClient wires Gemini as the primary model and Bedrock as the
// fallback. Either may be absent; with neither, it returns nil.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (conversation.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var primary, fallback conversation.LLMClient
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gemini, err := conversation.NewGeminiLLMClient(ctx, key, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		primary = gemini
		logger.Info("gemini LLM client enabled", "model", cfg.GeminiModel)
	}

	if model := strings.TrimSpace(cfg.BedrockModelID); model != "" {
		if awsCfg == nil {
			logger.Warn("bedrock model configured without AWS config; skipping")
		} else {
			fallback = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), model)
			logger.Info("bedrock LLM client enabled", "model", model)
		}
	}

	switch {
	case primary != nil && fallback != nil:
		return conversation.NewFallbackLLMClient(primary, fallback, logger), nil
	case primary != nil:
		return primary, nil
	case fallback != nil:
		return fallback, nil
	default:
		logger.Warn("no LLM provider configured; chat replies will be static")
		return nil, nil
	}
}

// BuildReplier assembles the AI replier. A nil client yields a replier that
// answers with the static unconfigured reply.
func BuildReplier(client conversation.LLMClient, transcripts *conversation.TranscriptStore, cfg *appconfig.Config, m *metrics.LeadMetrics, logger *logging.Logger) *conversation.Replier {
	rc := conversation.ReplierConfig{}
	if cfg != nil {
		rc.SystemPrompt = cfg.AISystemPrompt
		rc.Timeout = cfg.AITimeout
	}
	return conversation.NewReplier(client, transcripts, rc, m, logger)
}
