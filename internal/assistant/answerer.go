// Package assistant answers farming questions for the development backend's
// chatbot endpoint.
package assistant

import (
	"context"
	"strings"
)

// Answerer produces a reply to question in language.
type Answerer interface {
	Answer(ctx context.Context, question, language string) (string, error)
	Name() string
}

// Entry is one question/answer pair of the keyword knowledge base.
type Entry struct {
	Question string
	Answer   string
}

// DefaultKnowledge is the built-in keyword knowledge base.
var DefaultKnowledge = []Entry{
	{Question: "tomato leaf", Answer: "Yellow leaves usually mean nitrogen deficiency."},
	{Question: "water", Answer: "Most crops need consistent irrigation."},
	{Question: "price", Answer: "Check market trends in the dashboard."},
}

// NoMatch is the reply when no entry shares a word with the question.
const NoMatch = "I don't have information on that yet. Try asking about crops, diseases, or fertilizers."

// Compile-time interface check
var _ Answerer = (*Keyword)(nil)

// Keyword answers with the entry whose question contains the most words of
// the user's question.
type Keyword struct {
	entries []Entry
}

// NewKeyword creates a keyword answerer. Nil entries selects DefaultKnowledge.
func NewKeyword(entries []Entry) *Keyword {
	if entries == nil {
		entries = DefaultKnowledge
	}
	return &Keyword{entries: entries}
}

// Answer never fails. language is ignored.
func (k *Keyword) Answer(_ context.Context, question, _ string) (string, error) {
	return k.match(question), nil
}

func (k *Keyword) match(question string) string {
	words := strings.Fields(strings.ToLower(question))
	best, maxHits := "", 0
	for _, e := range k.entries {
		q := strings.ToLower(e.Question)
		hits := 0
		for _, w := range words {
			if strings.Contains(q, w) {
				hits++
			}
		}
		if hits > maxHits {
			best, maxHits = e.Answer, hits
		}
	}
	if maxHits == 0 {
		return NoMatch
	}
	return best
}

// Name identifies the answerer in logs.
func (k *Keyword) Name() string {
	return "keyword"
}
