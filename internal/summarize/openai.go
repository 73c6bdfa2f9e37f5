package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
)

const (
	providerOpenAI = "openai"

	// defaultOpenAIModel is the paid fallback model.
	defaultOpenAIModel = "gpt-4o-mini"

	// The fallback runs on paid tokens; keep budgets tighter than Gemini.
	openaiCharBudget      = 16000
	openaiMaxOutputTokens = 4096
	openaiRateLimitBurst  = 3
)

// OpenAIProvider is the paid fallback summarizer. It only runs when the
// primary fails, at most once per job.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	apiKey      string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// NewOpenAIProvider creates the fallback backend. An empty apiKey yields a
// provider that reports itself unavailable.
func NewOpenAIProvider(apiKey, model string, rps float64, logger *zerolog.Logger) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}

	if rps <= 0 {
		rps = 1
	}

	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), openaiRateLimitBurst),
		logger:      logger,
	}
}

func (p *OpenAIProvider) Name() string { return providerOpenAI }

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

func (p *OpenAIProvider) CharBudget() int { return openaiCharBudget }

// Summarize runs one chat completion request.
func (p *OpenAIProvider) Summarize(ctx context.Context, req Request) (string, error) {
	if !p.Available() {
		return "", classify(providerOpenAI, apperrors.ErrClientDisabled)
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: openaiMaxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	})

	observability.SummaryRequestDuration.WithLabelValues(providerOpenAI, p.model).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.SummaryRequests.WithLabelValues(providerOpenAI, p.model, "error").Inc()

		return "", classify(providerOpenAI, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		observability.SummaryRequests.WithLabelValues(providerOpenAI, p.model, "empty").Inc()

		return "", classify(providerOpenAI, apperrors.ErrEmptyResponse)
	}

	observability.SummaryRequests.WithLabelValues(providerOpenAI, p.model, "ok").Inc()

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Provider = (*OpenAIProvider)(nil)
