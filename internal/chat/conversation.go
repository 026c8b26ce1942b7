// Package chat is the assistant conversation: an ordered list of turns, a
// selected language and at most one question in flight.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Apology is appended in place of a reply when the question fails.
const Apology = "Sorry, I'm having trouble connecting to the server. Please try again later."

// Sender identifies who wrote a turn.
type Sender string

const (
	User Sender = "user"
	Bot  Sender = "bot"
)

// Turn is one message. Turns are never edited once appended.
type Turn struct {
	ID     string
	Sender Sender
	Text   string
	At     time.Time
}

// Asker sends a question to the assistant. Implemented by *agriapi.Client.
type Asker interface {
	Ask(ctx context.Context, question, language string) (*agriapi.ChatReply, error)
}

// Conversation is safe for concurrent use.
type Conversation struct {
	asker  Asker
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	pack    Pack
	turns   []Turn
	sending bool
}

// New starts a conversation in language with the welcome turn.
func New(asker Asker, lang string) *Conversation {
	c := &Conversation{
		asker:  asker,
		now:    time.Now,
		logger: slog.Default().With("component", "chat"),
		pack:   Resolve(lang),
	}
	c.turns = []Turn{c.turn(Bot, c.pack.Welcome)}
	return c
}

func (c *Conversation) turn(s Sender, text string) Turn {
	return Turn{ID: ulid.Make().String(), Sender: s, Text: text, At: c.now()}
}

// Send appends text as a user turn and then the reply, or Apology if the
// question failed. The user turn is kept either way. The reply turn is
// returned.
func (c *Conversation) Send(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	c.sending = true
	c.turns = append(c.turns, c.turn(User, text))
	lang := c.pack.Language
	c.mu.Unlock()

	answer := Apology
	reply, err := c.asker.Ask(ctx, text, lang)
	if err != nil {
		c.logger.Warn("question failed", "language", lang, "error", err)
	} else {
		answer = reply.Answer
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.turn(Bot, answer)
	c.turns = append(c.turns, t)
	c.sending = false
	return t, nil
}

// SetLanguage switches the reply language. While the welcome is the only
// turn it is rewritten in the new language.
func (c *Conversation) SetLanguage(lang string) Pack {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pack = Resolve(lang)
	if len(c.turns) == 1 && c.turns[0].Sender == Bot {
		c.turns[0] = c.turn(Bot, c.pack.Welcome)
	}
	return c.pack
}

// Pack returns the current language pack.
func (c *Conversation) Pack() Pack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pack
}

// Busy reports whether a question is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Turns returns a copy of the transcript.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}
