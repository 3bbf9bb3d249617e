package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/watchscope/pkg/config"
	"github.com/umputun/watchscope/pkg/domain"
)

// Summarizer produces a short natural-language digest of a title's forum
// discussion using any OpenAI-compatible endpoint. Disabled when no endpoint
// is configured.
type Summarizer struct {
	client *openai.Client
	config config.LLMConfig
}

// NewSummarizer creates a new discussion summarizer
func NewSummarizer(cfg config.LLMConfig) *Summarizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Enabled reports whether summaries are configured
func (s *Summarizer) Enabled() bool {
	return s.config.Endpoint != ""
}

const systemPrompt = `You summarize what viewers are saying about movies and TV shows based on forum discussion data.
Write 2-3 sentences capturing the overall reception and the recurring themes. Start with the subject matter directly.
NEVER use phrases like "The discussion shows", "Commenters say", "Based on the data". Do not invent facts absent from the input.`

// Summarize builds a short digest of the discussion around a title from its
// sentiment analysis and a handful of sample comments
func (s *Summarizer) Summarize(ctx context.Context, title string, signal *domain.SocialSignal, samples []string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("summarizer is not configured")
	}
	if signal == nil || signal.Analysis.AnalyzedComments == 0 {
		return "", fmt.Errorf("no discussion data for %q", title)
	}

	prompt := s.buildPrompt(title, signal, samples)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: float32(s.config.Temperature),
		MaxTokens:   s.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt assembles the user message with analysis numbers, trending
// topics and a capped number of sample comments
func (s *Summarizer) buildPrompt(title string, signal *domain.SocialSignal, samples []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n", title)
	fmt.Fprintf(&sb, "Buzz: %s, %d comments in recent discussion\n", signal.Buzz, signal.CommentVolume)
	fmt.Fprintf(&sb, "Sentiment: %s (average %.2f, %d positive / %d negative / %d neutral)\n",
		signal.Analysis.Label, signal.Analysis.AverageSentiment,
		signal.Analysis.PositiveCount, signal.Analysis.NegativeCount, signal.Analysis.NeutralCount)

	if len(signal.Analysis.TrendingTopics) > 0 {
		topics := make([]string, 0, len(signal.Analysis.TrendingTopics))
		for _, t := range signal.Analysis.TrendingTopics {
			topics = append(topics, fmt.Sprintf("%s (%d mentions, %s)", t.Keyword, t.Count, t.Sentiment))
		}
		fmt.Fprintf(&sb, "Trending topics: %s\n", strings.Join(topics, ", "))
	}

	if len(samples) > 0 {
		sb.WriteString("Sample comments:\n")
		const maxSamples = 10
		for i, c := range samples {
			if i >= maxSamples {
				break
			}
			c = strings.TrimSpace(c)
			if len(c) > 300 {
				c = c[:300]
			}
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}

	return sb.String()
}
