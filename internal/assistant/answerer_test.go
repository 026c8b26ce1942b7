package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func TestKeyword_BestOverlapWins(t *testing.T) {
	k := NewKeyword(nil)

	tests := []struct {
		question string
		want     string
	}{
		{"Why is my tomato leaf yellow?", "Yellow leaves usually mean nitrogen deficiency."},
		{"how much WATER for wheat", "Most crops need consistent irrigation."},
		{"onion price today", "Check market trends in the dashboard."},
		{"tell me about tractors", NoMatch},
		{"", NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, err := k.Answer(context.Background(), tt.question, "English")
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Answer(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestKeyword_Name(t *testing.T) {
	if NewKeyword(nil).Name() != "keyword" {
		t.Error("Name() != keyword")
	}
}

// mockCompletions implements ChatCompletionsService for testing
type mockCompletions struct {
	response  *openai.ChatCompletion
	err       error
	callCount int
	lastModel openai.ChatModel
}

func (m *mockCompletions) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.callCount++
	m.lastModel = params.Model.Value
	return m.response, m.err
}

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestOpenAI_Answer(t *testing.T) {
	// Given: a model that answers
	mock := &mockCompletions{response: completion("  Use neem oil.  ")}
	o := newOpenAI(mock, "gpt-4o-mini", nil)

	// When: asking
	got, err := o.Answer(context.Background(), "aphids on wheat?", "Hindi")

	// Then: the trimmed answer is returned and the model is used
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got != "Use neem oil." {
		t.Errorf("Answer() = %q", got)
	}
	if mock.lastModel != "gpt-4o-mini" {
		t.Errorf("model = %q", mock.lastModel)
	}
	if o.Name() != "gpt-4o-mini" {
		t.Errorf("Name() = %q", o.Name())
	}
}

func TestOpenAI_FallbackOnError(t *testing.T) {
	// Given: an unreachable API
	mock := &mockCompletions{err: errors.New("connection refused")}
	o := newOpenAI(mock, "gpt-4o-mini", nil)

	// When: asking a known question
	got, err := o.Answer(context.Background(), "water schedule", "English")

	// Then: the keyword answer is served with the fallback marker
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.HasPrefix(got, FallbackPrefix) {
		t.Errorf("Answer() = %q, want fallback prefix", got)
	}
	if !strings.HasSuffix(got, "Most crops need consistent irrigation.") {
		t.Errorf("Answer() = %q, want keyword answer", got)
	}
}

func TestOpenAI_FallbackOnEmptyChoices(t *testing.T) {
	mock := &mockCompletions{response: &openai.ChatCompletion{}}
	o := newOpenAI(mock, "gpt-4o-mini", nil)

	got, err := o.Answer(context.Background(), "price", "English")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.HasPrefix(got, FallbackPrefix) {
		t.Errorf("Answer() = %q, want fallback", got)
	}
}

func TestOpenAI_CancelledContext(t *testing.T) {
	mock := &mockCompletions{err: context.Canceled}
	o := newOpenAI(mock, "gpt-4o-mini", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Answer(ctx, "price", "English"); !errors.Is(err, context.Canceled) {
		t.Errorf("Answer() error = %v, want context.Canceled", err)
	}
}
