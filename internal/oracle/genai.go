package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/starford/notechat/internal/apperr"
)

// Backends accepted by Config.Backend.
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash-lite-001"

// Config selects the model endpoint.
type Config struct {
	Backend         string
	APIKey          string
	Project         string
	Location        string
	Model           string
	MaxOutputTokens int
}

// GenAI completes prompts with Google's Gemini API or Vertex AI.
type GenAI struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGenAI creates a client for cfg.Backend.
func NewGenAI(ctx context.Context, cfg Config) (*GenAI, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case BackendVertex:
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	case BackendGemini, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("oracle: gemini API key is required")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("oracle: unknown backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("oracle: create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GenAI{client: client, model: model, maxTokens: int32(cfg.MaxOutputTokens)}, nil
}

// Complete implements Oracle.
func (g *GenAI) Complete(ctx context.Context, prompt string) (Completion, error) {
	var gc *genai.GenerateContentConfig
	if g.maxTokens > 0 {
		gc = &genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return Completion{}, fmt.Errorf("%w: generate content: %v", apperr.ErrOracleFailure, err)
	}

	out := Completion{Text: strings.TrimSpace(resp.Text())}
	if resp.UsageMetadata != nil {
		out.Tokens = int(resp.UsageMetadata.TotalTokenCount)
	} else {
		out.Tokens = EstimateTokens(prompt) + EstimateTokens(out.Text)
	}
	return out, nil
}

// Name returns the model identifier.
func (g *GenAI) Name() string {
	return "genai:" + g.model
}
