// Package ollama provides a semantic analysis adapter using a local
// Ollama model.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.SemanticAnalyzer = (*Analyzer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama analyzer.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Analyzer scores listing text with a local Ollama model. The model
// returns a 1-10 verdict which is mapped to a small score delta, so a
// wayward model can nudge the heuristic ranking but never dominate it.
type Analyzer struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// verdict is the JSON shape the prompt asks the model for.
type verdict struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// New creates an Ollama analyzer.
func New(cfg Config) *Analyzer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Analyzer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// analysisPrompt asks for a strict JSON verdict so the response can be
// decoded without scraping prose.
const analysisPrompt = `You are valuing a UK property listing for below-market-value investment potential.
Rate the listing from 1 to 10, where 10 means severe distress (derelict, fire damaged,
repossession) at a bargain price with no caveats, and 1 means a fully modernised home
at full market price. Respond with ONLY a JSON object: {"score": <number>, "reasoning": "<one sentence>"}.

Listing:
%s`

// Analyze scores listing text and maps the model verdict to a delta.
func (a *Analyzer) Analyze(ctx context.Context, text string) (driven.Analysis, error) {
	raw, err := a.generate(ctx, fmt.Sprintf(analysisPrompt, text))
	if err != nil {
		return driven.Analysis{}, fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}

	v, err := parseVerdict(raw)
	if err != nil {
		return driven.Analysis{}, fmt.Errorf("parse verdict: %w", err)
	}

	return driven.Analysis{
		ScoreDelta: verdictDelta(v.Score),
		Rationale:  strings.TrimSpace(v.Reasoning),
	}, nil
}

// verdictDelta maps a 1-10 verdict onto a small adjustment: only a
// near-perfect verdict moves the needle.
func verdictDelta(score float64) float64 {
	switch {
	case score >= 10:
		return 1.0
	case score >= 9:
		return 0.5
	default:
		return 0
	}
}

// parseVerdict decodes the model response, tolerating prose around the
// JSON object.
func parseVerdict(raw string) (verdict, error) {
	var v verdict
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return v, fmt.Errorf("no JSON object in response %q", raw)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return v, fmt.Errorf("decode verdict: %w", err)
	}
	return v, nil
}

// generate produces a completion from a prompt.
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  a.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: &options{
			NumPredict:  200,
			Temperature: 0.2,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// Name returns the analyzer identifier.
func (a *Analyzer) Name() string {
	return "ollama/" + a.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (a *Analyzer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (a *Analyzer) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
