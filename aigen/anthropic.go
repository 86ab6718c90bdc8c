package aigen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// maxResponseTokens leaves headroom for a large room: a 40-item BOQ at
// roughly 80 tokens per item is ~3200 tokens.
const maxResponseTokens = 4096

// Anthropic implements Generator and ProductLookup on top of the Anthropic
// Messages API.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates a client for the given API key and model name. Extra
// options are passed through to the underlying client; tests use
// anthropic.WithBaseURL to point at a local server.
func NewAnthropic(apiKey, model string, opts ...anthropic.ClientOption) *Anthropic {
	return &Anthropic{
		client: anthropic.NewClient(apiKey, opts...),
		model:  anthropic.Model(model),
	}
}

func (a *Anthropic) GenerateBOQ(ctx context.Context, requirements string) (string, error) {
	return a.complete(ctx, generateSystemPrompt, generateUserPrompt(requirements))
}

func (a *Anthropic) RefineBOQ(ctx context.Context, currentBOQ, instruction string) (string, error) {
	return a.complete(ctx, refineSystemPrompt, refineUserPrompt(currentBOQ, instruction))
}

// ProductDetails asks the model for an image URL and short description of a
// product. A response that cannot be parsed yields empty details rather
// than an error, since the lookup is a best-effort enrichment.
func (a *Anthropic) ProductDetails(ctx context.Context, productName string) (ProductInfo, error) {
	text, err := a.complete(ctx, "", productUserPrompt(productName))
	if err != nil {
		return ProductInfo{}, err
	}

	var info ProductInfo
	if raw := extractObject(text); raw != "" {
		if err := json.Unmarshal([]byte(raw), &info); err == nil {
			return info, nil
		}
	}
	return ProductInfo{Description: "No details found."}, nil
}

func (a *Anthropic) complete(ctx context.Context, system, user string) (string, error) {
	req := anthropic.MessagesRequest{
		Model:     a.model,
		System:    system,
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(user),
		},
	}

	resp, err := a.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	text := strings.TrimSpace(resp.GetFirstContentText())
	if text == "" {
		return "", fmt.Errorf("anthropic returned an empty response")
	}
	return text, nil
}

// extractObject returns the first {...} span in s, tolerating surrounding
// prose or markdown fences.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
