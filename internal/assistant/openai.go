package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Answerer = (*OpenAI)(nil)

// ChatCompletionsService defines the interface for making chat completion calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatCompletionsService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

const systemPrompt = "You are an agriculture assistant for Indian farmers. " +
	"Give short, practical answers about crop diseases, market prices, irrigation and government schemes."

// FallbackPrefix marks replies served from the keyword base after the model failed.
const FallbackPrefix = "**Fallback (API Unreachable):** "

// OpenAI answers with a chat model and falls back to keyword matching when
// the API call fails.
type OpenAI struct {
	completions ChatCompletionsService
	model       openai.ChatModel
	fallback    *Keyword
}

// NewOpenAI creates an answerer backed by the OpenAI API.
func NewOpenAI(apiKey, model string, fallback *Keyword) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return newOpenAI(client.Chat.Completions, model, fallback)
}

func newOpenAI(svc ChatCompletionsService, model string, fallback *Keyword) *OpenAI {
	if fallback == nil {
		fallback = NewKeyword(nil)
	}
	return &OpenAI{
		completions: svc,
		model:       openai.ChatModel(model),
		fallback:    fallback,
	}
}

// Answer asks the model, replying in language. On API failure the keyword
// answer is returned with FallbackPrefix.
func (o *OpenAI) Answer(ctx context.Context, question, language string) (string, error) {
	prompt := systemPrompt
	if language != "" && !strings.EqualFold(language, "English") {
		prompt += fmt.Sprintf(" Reply in %s.", language)
	}

	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(question),
		}),
		Model: openai.F(o.model),
	})
	if err == nil && len(resp.Choices) > 0 {
		if answer := strings.TrimSpace(resp.Choices[0].Message.Content); answer != "" {
			return answer, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("no choices returned")
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("chat completion: %w", ctx.Err())
	}

	slog.Warn("chat completion failed, using keyword fallback",
		"component", "assistant",
		"model", string(o.model),
		"error", err,
	)
	return FallbackPrefix + o.fallback.match(question), nil
}

// Name returns the chat model name
func (o *OpenAI) Name() string {
	return string(o.model)
}
