package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

const anthropicVersion = "bedrock-2023-05-31"

// Client is an implementation of the LLMClient interface using Amazon Bedrock
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewClient creates a new Bedrock client
func NewClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *Client {
	return &Client{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// ModelName returns the Bedrock model id
func (c *Client) ModelName() string {
	return c.modelID
}

// Complete invokes the model with a payload in its family's format
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := buildPayload(c.modelID, prompt, c.maxTokens, c.temperature, c.topP)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	answer, err := parseAnswer(c.modelID, resp.Body)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Bedrock completion", zap.String("model", c.modelID), zap.Int("answer_size", len(answer)))
	return answer, nil
}

type modelFamily int

const (
	familyGeneric modelFamily = iota
	familyClaudeMessages
	familyClaudeText
	familyTitan
)

func familyOf(modelID string) modelFamily {
	switch {
	case strings.HasPrefix(modelID, "anthropic.claude-3"), strings.Contains(modelID, ".anthropic.claude-3"):
		return familyClaudeMessages
	case strings.HasPrefix(modelID, "anthropic.claude"):
		return familyClaudeText
	case strings.HasPrefix(modelID, "amazon.titan"):
		return familyTitan
	default:
		return familyGeneric
	}
}

func buildPayload(modelID, prompt string, maxTokens int, temperature, topP float32) ([]byte, error) {
	switch familyOf(modelID) {
	case familyClaudeMessages:
		return json.Marshal(map[string]interface{}{
			"anthropic_version": anthropicVersion,
			"max_tokens":        maxTokens,
			"temperature":       temperature,
			"top_p":             topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": prompt},
			},
		})
	case familyClaudeText:
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": maxTokens,
			"temperature":          temperature,
			"top_p":                topP,
		})
	case familyTitan:
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": maxTokens,
				"temperature":   temperature,
				"topP":          topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  maxTokens,
			"temperature": temperature,
			"top_p":       topP,
		})
	}
}

func parseAnswer(modelID string, body []byte) (string, error) {
	switch familyOf(modelID) {
	case familyClaudeMessages:
		var resp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", errors.New("empty response from Claude model")
		}
		return sb.String(), nil
	case familyClaudeText:
		var resp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return resp.Completion, nil
	case familyTitan:
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", errors.New("empty response from Titan model")
		}
		return resp.Results[0].OutputText, nil
	default:
		var resp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, candidate := range []string{resp.Output, resp.Text, resp.Generation} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return string(body), nil
	}
}
