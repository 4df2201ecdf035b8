package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// BedrockClient is the fallback Summarizer implementation, selected when
// the primary OpenAI-compatible client fails or is unconfigured. It
// mirrors the teacher platform's pattern of a second concrete provider
// client behind the same interface (packages/llm-router provider
// clients), swapped here from a chat-completion API to Bedrock's
// InvokeModel API.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
	logger  *zap.Logger
}

// NewBedrockClient loads the default AWS config for the given region.
// Returns an error if credentials/region cannot be resolved, which the
// caller may treat as "bedrock unavailable" and skip wiring it in.
func NewBedrockClient(ctx context.Context, region, modelID string, logger *zap.Logger) (*BedrockClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	return &BedrockClient{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
		logger:  logger,
	}, nil
}

type claudeRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
}

type claudeResponse struct {
	Completion string `json:"completion"`
}

func (c *BedrockClient) Summarize(ctx context.Context, v model.Verdict, fin model.Financial, f model.Features) (string, error) {
	prompt := fmt.Sprintf("\n\nHuman: Summarize this solar site analysis in two sentences: %s\n\nAssistant:", buildPrompt(v, fin, f))

	body, err := json.Marshal(claudeRequest{
		Prompt:            prompt,
		MaxTokensToSample: 180,
		Temperature:       0.3,
	})
	if err != nil {
		return "", err
	}

	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		c.logger.Error("bedrock summarizer call failed", zap.Error(err))
		return "", err
	}

	var resp claudeResponse
	if err := json.NewDecoder(bytes.NewReader(out.Body)).Decode(&resp); err != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", err)
	}
	return resp.Completion, nil
}
