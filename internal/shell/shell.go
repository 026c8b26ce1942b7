// Package shell derives the navigation menu from the session.
package shell

import (
	"context"

	"github.com/hyperengineering/croppriceai/internal/session"
)

// Item is one navigation entry. Command is the CLI command that opens it.
type Item struct {
	Label   string
	Command string
}

var (
	authenticatedItems = []Item{
		{Label: "Dashboard", Command: "predict"},
		{Label: "Analytics", Command: "analytics"},
		{Label: "Recommendation", Command: "recommend"},
		{Label: "Alerts", Command: "alerts"},
		{Label: "Pest Warning", Command: "pest"},
		{Label: "AI Assistant", Command: "chat"},
		{Label: "Logout", Command: "logout"},
	}
	guestItems = []Item{
		{Label: "Login", Command: "login"},
		{Label: "Register", Command: "register"},
	}
)

// Shell is the navigation frame around every view.
type Shell struct {
	sess *session.Session
}

// New creates a Shell for sess.
func New(sess *session.Session) *Shell {
	return &Shell{sess: sess}
}

// Items returns the menu entries for the current session state.
func (s *Shell) Items() []Item {
	src := guestItems
	if s.sess.IsAuthenticated() {
		src = authenticatedItems
	}
	out := make([]Item, len(src))
	copy(out, src)
	return out
}

// Allowed reports whether command may run in the current session state.
// Commands not on either menu are always allowed.
func (s *Shell) Allowed(command string) bool {
	gated := false
	for _, it := range authenticatedItems {
		if it.Command == command {
			gated = true
			break
		}
	}
	return !gated || s.sess.IsAuthenticated()
}

// Greeting is the header line shown above the menu.
func (s *Shell) Greeting() string {
	if id := s.sess.Identity(); id != "" {
		return "Welcome, " + id
	}
	return "Not logged in"
}

// Logout ends the session.
func (s *Shell) Logout(ctx context.Context) error {
	return s.sess.Logout(ctx)
}
