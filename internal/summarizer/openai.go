package summarizer

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// OpenAIClient is the primary Summarizer implementation, grounded on
// packages/llm-router's OpenAIClient (same client construction and
// CreateChatCompletion call, generalized from a chat request to a
// one-shot narrative prompt).
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIClient(apiKey, modelName string, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  modelName,
		logger: logger,
	}
}

func (c *OpenAIClient) Summarize(ctx context.Context, v model.Verdict, fin model.Financial, f model.Features) (string, error) {
	prompt := buildPrompt(v, fin, f)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You write a concise, factual two-sentence summary of a solar site placement analysis."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   180,
		Temperature: 0.3,
	})
	if err != nil {
		c.logger.Error("openai summarizer call failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai summarizer: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(v model.Verdict, fin model.Financial, f model.Features) string {
	return fmt.Sprintf(
		"Score=%d Grade=%s Class=%s Violations=%v Confidence=%d SolarIrradiance=%.2f CloudCover=%.1f Slope=%.1f GridDistance=%.1f PaybackYears=%.2f LifetimeProfit=%.0f",
		v.Score, v.Grade, v.SuitabilityClass, v.ConstraintViolations, v.Confidence,
		f.SolarIrradiance, f.CloudCoverPct, f.SlopeDegrees, f.GridDistanceKM,
		fin.PaybackYears, fin.LifetimeProfit,
	)
}
