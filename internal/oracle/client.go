package oracle

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/scenewatch/vision-backend/internal/automation"
)

const (
	defaultVisionModel = "lfm2-vl-450m-f16"
	summaryMaxTokens   = 256
	policyMaxTokens    = 256
	policyTemperature  = 0.1
)

type Config struct {
	// BaseURL points at an OpenAI-compatible endpoint (llama-server, vLLM,
	// or the hosted API).
	BaseURL string
	APIKey  string
	// VisionModel summarizes window frames.
	VisionModel string
	// PolicyModel evaluates rules against the summary. Defaults to the
	// vision model when unset.
	PolicyModel string
}

// Client performs the two-stage oracle call: a vision-only window summary,
// then a text-only rule evaluation over that summary. The vision stage never
// sees the rules and the policy stage never sees the frames.
type Client struct {
	cli         *openai.Client
	visionModel string
	policyModel string
	logger      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}
	policyModel := cfg.PolicyModel
	if policyModel == "" {
		policyModel = visionModel
	}

	return &Client{
		cli:         openai.NewClientWithConfig(clientConfig),
		visionModel: visionModel,
		policyModel: policyModel,
		logger:      logger.With("component", "oracle-client"),
	}
}

// Invoke summarizes one window and evaluates the given rules snapshot against
// the summary. The rules slice is the caller's snapshot; config mutations
// after the call starts do not affect it. When no rules are configured the
// policy stage is skipped entirely.
func (c *Client) Invoke(ctx context.Context, frames [][]byte, tStart, tEnd float64, rules []automation.Rule) (*Decision, error) {
	if len(frames) == 0 {
		return nil, &InvokeError{Stage: "summarize", Err: fmt.Errorf("no frames in window")}
	}

	summary, err := c.summarizeWindow(ctx, frames, tStart, tEnd)
	if err != nil {
		return nil, &InvokeError{Stage: "summarize", Err: err}
	}

	if len(rules) == 0 {
		return &Decision{
			Summary:          summary,
			TriggeredRuleIDs: []string{},
			Reasoning:        "no rules configured",
		}, nil
	}

	raw, err := c.evaluateRules(ctx, summary, rules)
	if err != nil {
		return nil, &InvokeError{Stage: "evaluate", Err: err}
	}

	dec := parseDecision(raw)
	dec.Summary = summary

	c.logger.Debug("oracle decision",
		"t_start", tStart,
		"t_end", tEnd,
		"triggered_rules", len(dec.TriggeredRuleIDs))

	return dec, nil
}

func (c *Client) summarizeWindow(ctx context.Context, frames [][]byte, tStart, tEnd float64) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(frames)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: summaryPrompt(tStart, tEnd, len(frames)),
	})
	for _, frame := range frames {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	resp, err := c.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) evaluateRules(ctx context.Context, summary string, rules []automation.Rule) (string, error) {
	resp, err := c.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.policyModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: policySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: policyUserPrompt(summary, rules)},
		},
		MaxTokens:   policyMaxTokens,
		Temperature: policyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("policy completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("policy completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
