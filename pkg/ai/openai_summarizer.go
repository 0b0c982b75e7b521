package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// ShortSummaryLimit caps the short summary length after generation
const ShortSummaryLimit = 250

const (
	fullSummaryPrompt = "You are a helpful assistant that summarizes meeting transcripts. " +
		"Provide a clear, concise summary of the key points, decisions, and action items discussed in the meeting."
	shortSummaryPrompt = "You are a helpful assistant. Provide an extremely brief summary in 250 characters or less. " +
		"Be direct and concise."
)

// OpenAISummarizer generates the {full, short} summary pair with two
// independent chat completions. The two requests share no state and run
// concurrently; both must succeed.
type OpenAISummarizer struct {
	client         *openai.Client
	model          string
	maxTokens      int
	shortMaxTokens int
}

// NewOpenAISummarizer creates a summarizer using the provided config
func NewOpenAISummarizer(cfg *config.OpenAIConfig) *OpenAISummarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL + "/v1"
	}

	// The default client has no timeout, and job contexts carry no deadline;
	// a stalled completion would hold a worker slot and its meeting claim
	// until guard TTL, and block shutdown draining.
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAISummarizer{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          cfg.ChatModel,
		maxTokens:      cfg.SummaryMaxTokens,
		shortMaxTokens: cfg.ShortMaxTokens,
	}
}

// complete runs one chat completion and returns the trimmed content
func (s *OpenAISummarizer) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Summarize generates both summaries for the transcript document. The two
// calls run concurrently and are both awaited; either failing fails the call
// and no partial pair is returned.
func (s *OpenAISummarizer) Summarize(ctx context.Context, document string) (entities.SummaryPair, error) {
	var wg sync.WaitGroup
	var fullText, shortText string
	var fullErr, shortErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		fullText, fullErr = s.complete(ctx, fullSummaryPrompt,
			"Please summarize this meeting transcript:\n\n"+document, s.maxTokens)
	}()
	go func() {
		defer wg.Done()
		shortText, shortErr = s.complete(ctx, shortSummaryPrompt,
			"Summarize this meeting in 250 characters or less:\n\n"+document, s.shortMaxTokens)
	}()
	wg.Wait()

	if fullErr != nil {
		return entities.SummaryPair{}, &CapabilityError{Capability: "summarization", Err: fullErr}
	}
	if shortErr != nil {
		return entities.SummaryPair{}, &CapabilityError{Capability: "summarization", Err: shortErr}
	}

	return entities.SummaryPair{
		Text:  fullText,
		Short: Truncate(shortText, ShortSummaryLimit),
	}, nil
}

// Truncate caps s at limit characters, counting runes so a multibyte
// character is never split.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
