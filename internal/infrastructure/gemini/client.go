package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

const modelName = "gemini-1.5-flash"

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// FallbackFunc produces the explanation when the model is unavailable.
type FallbackFunc func(match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) string

// GeminiClient writes a short explanation of why a seeker and a listing fit.
type GeminiClient struct {
	client   *genai.Client
	model    generator
	fallback FallbackFunc
	logger   *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, fallback FallbackFunc, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)

	return &GeminiClient{
		client:   client,
		model:    model,
		fallback: fallback,
		logger:   logger,
	}, nil
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ExplainMatch asks the model for one or two sentences. Any model failure
// falls back to the template text.
func (c *GeminiClient) ExplainMatch(ctx context.Context, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt(match, seeker, listing)))
	if err != nil {
		c.logger.Warn("gemini unavailable, using fallback explanation", zap.Error(err))
		return c.fallback(match, seeker, listing), nil
	}

	text := responseText(resp)
	if text == "" {
		return c.fallback(match, seeker, listing), nil
	}
	return text, nil
}

func prompt(match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) string {
	budget := "not given"
	if seeker.BudgetMax != nil {
		budget = seeker.BudgetMax.String()
	}
	price := "not given"
	if listing.PricePerMonth != nil {
		price = listing.PricePerMonth.String()
	}
	return fmt.Sprintf(`
		A student looking for a summer sublease and a host both liked each other.
		Seeker: city %q, budget up to %s per month, interests %s, bio %q.
		Listing: %q in %s, %s, %s per month, %d roommates.
		Match score: %.2f.

		Task: Write a short, friendly explanation (1-2 sentences) of why this is a good fit.
		Output: Just the explanation text.
	`,
		seeker.City, budget, strings.Join(seeker.Interests, ", "), seeker.Bio,
		listing.Title, listing.City, listing.State, price, listing.RoommatesCount,
		match.ScoreValue(),
	)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}
