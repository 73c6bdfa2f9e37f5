package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
)

const (
	providerGemini = "gemini"

	// defaultGeminiModel is the free-tier model used as the primary.
	defaultGeminiModel = "gemini-2.5-flash"

	geminiCharBudget      = 24000
	geminiRateLimitBurst  = 5
	geminiMaxOutputTokens = 8192
)

// GeminiProvider is the primary, free-tier summarizer.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	apiKey      string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// NewGeminiProvider creates the Gemini backend. rps bounds request rate
// against free-tier quotas.
func NewGeminiProvider(ctx context.Context, apiKey, model string, rps float64, logger *zerolog.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	if model == "" {
		model = defaultGeminiModel
	}

	if rps <= 0 {
		rps = 1
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), geminiRateLimitBurst),
		logger:      logger,
	}, nil
}

// Close closes the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing genai client: %w", err)
		}
	}

	return nil
}

func (p *GeminiProvider) Name() string { return providerGemini }

func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) Available() bool { return p.apiKey != "" }

func (p *GeminiProvider) CharBudget() int { return geminiCharBudget }

// Summarize runs one generation request against the configured model.
func (p *GeminiProvider) Summarize(ctx context.Context, req Request) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()

	genModel := p.client.GenerativeModel(p.model)
	genModel.SetMaxOutputTokens(geminiMaxOutputTokens)
	genModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(req.User)))

	observability.SummaryRequestDuration.WithLabelValues(providerGemini, p.model).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.SummaryRequests.WithLabelValues(providerGemini, p.model, "error").Inc()

		return "", classify(providerGemini, err)
	}

	text := extractGeminiText(resp)
	if text == "" {
		observability.SummaryRequests.WithLabelValues(providerGemini, p.model, "empty").Inc()

		return "", classify(providerGemini, apperrors.ErrEmptyResponse)
	}

	observability.SummaryRequests.WithLabelValues(providerGemini, p.model, "ok").Inc()

	return strings.TrimSpace(text), nil
}

// extractGeminiText extracts text content from a generation response.
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					result.WriteString(string(text))
				}
			}
		}
	}

	return result.String()
}

// sanitizeUTF8 removes invalid UTF-8 sequences. The protobuf transport
// rejects strings with invalid bytes, and caption payloads can carry them.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

var _ Provider = (*GeminiProvider)(nil)
