package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/infrastructure/resilience"
)

// Client talks to a local Ollama server and implements the inference port:
// Paraphrase for query expansion and Complete for generation and scoring.
// A shared rate limiter keeps concurrent pipelines from flooding the model.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(baseURL, model string, requestsPerSecond float64, executor *resilience.Executor) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 4
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		executor:   executor,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.generate(ctx, "complete", map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": maxTokens,
		},
	})
}

func (c *Client) Paraphrase(ctx context.Context, query string, history []domain.Turn, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	raw, err := c.generate(ctx, "paraphrase", map[string]any{
		"model":  c.model,
		"prompt": buildParaphrasePrompt(query, history, count),
		"stream": false,
	})
	if err != nil {
		return nil, err
	}
	return parseParaphraseLines(raw, count), nil
}

// generateJSON asks the model for a strict JSON response.
func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generate(ctx context.Context, operation string, payload map[string]any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", payload, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Do(ctx, "ollama_"+operation, classifyInferenceError, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func parseParaphraseLines(raw string, limit int) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, limit)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

// EntityExtractor labels entities in chunk text through the same model.
type EntityExtractor struct {
	client *Client
}

func NewEntityExtractor(client *Client) *EntityExtractor {
	return &EntityExtractor{client: client}
}

func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) ([]domain.ExtractedEntity, error) {
	raw, err := e.client.generateJSON(ctx, "extract_entities", buildEntityPrompt(text))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Entities []domain.ExtractedEntity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse entity json: %w", err)
	}

	out := make([]domain.ExtractedEntity, 0, len(parsed.Entities))
	for _, entity := range parsed.Entities {
		name := strings.TrimSpace(entity.Name)
		if name == "" {
			continue
		}
		out = append(out, domain.ExtractedEntity{Name: name, Type: strings.TrimSpace(entity.Type)})
	}
	return out, nil
}

// Scorer is the model-backed evaluation capability.
type Scorer struct {
	client  *Client
	timeout time.Duration
}

func NewScorer(client *Client, timeout time.Duration) *Scorer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Scorer{client: client, timeout: timeout}
}

func (s *Scorer) Score(ctx context.Context, question, answer string, chunks []domain.Chunk) (domain.ScoreParts, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.generateJSON(scoreCtx, "score", buildScoringPrompt(question, answer, chunks))
	if err != nil {
		return domain.ScoreParts{}, err
	}

	var parts domain.ScoreParts
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parts); err != nil {
		return domain.ScoreParts{}, fmt.Errorf("parse score json: %w", err)
	}
	return parts, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
