// Package ollama embeds text with a local or remote Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Vector widths of the embedding models Ollama ships most often.
var modelDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
	"bge-m3":            1024,
}

// Config selects the server and model. Zero fields take the defaults above.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// RequestsPerSecond caps calls to /api/embed. Zero means no cap.
	RequestsPerSecond float64
}

// EmbeddingService calls /api/embed, sending a whole batch per request.
type EmbeddingService struct {
	http       *resty.Client
	limiter    *rate.Limiter
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DimensionsFor(cfg.Model)
	}

	s := &EmbeddingService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
	s.http = resty.New().
		SetBaseURL(s.baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s
}

// DimensionsFor looks up model, ignoring any ":tag" suffix.
func DimensionsFor(model string) int {
	name, _, _ := strings.Cut(model, ":")
	if dims, ok := modelDimensions[name]; ok {
		return dims
	}
	return DefaultDimensions
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ollama: rate limit wait: %w", err)
		}
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: s.model, Input: texts}).
		Post("/api/embed")
	if err != nil {
		return nil, fmt.Errorf("ollama: embed request: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	var out embedResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: expected %d embeddings, got %d", len(texts), len(out.Embeddings))
	}

	vectors := make([][]float32, len(out.Embeddings))
	for i, values := range out.Embeddings {
		vectors[i] = make([]float32, len(values))
		for j, v := range values {
			vectors[i][j] = float32(v)
		}
	}
	return vectors, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists installed models, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	resp, err := s.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	if resp.IsError() {
		return statusError(resp)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	s.http.GetClient().CloseIdleConnections()
	return nil
}

func statusError(resp *resty.Response) error {
	return fmt.Errorf("ollama: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
}
