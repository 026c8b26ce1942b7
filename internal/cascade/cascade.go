// Package cascade keeps a state/district pair consistent: choosing a state
// invalidates the district and reloads the district list for that state.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrUnknownState    = errors.New("unknown state")
	ErrUnknownDistrict = errors.New("unknown district")
	ErrStale           = errors.New("state changed while loading districts")
)

// Source lists states and the districts of a state.
type Source interface {
	States(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, state string) ([]string, error)
}

// Select is the cascading state -> district selection. Safe for concurrent use.
type Select struct {
	src Source

	mu         sync.Mutex
	states     []string
	state      string
	districts  []string
	district   string
	generation uint64
}

// New creates an empty selection backed by src.
func New(src Source) *Select {
	return &Select{src: src}
}

// LoadStates fetches the state list. The current selection is kept.
func (s *Select) LoadStates(ctx context.Context) error {
	states, err := s.src.States(ctx)
	if err != nil {
		return fmt.Errorf("load states: %w", err)
	}
	s.mu.Lock()
	s.states = states
	s.mu.Unlock()
	return nil
}

// Reset chooses a state without loading its districts. The district and
// district list are cleared; SelectState loads the list.
func (s *Select) Reset(state string) error {
	_, err := s.reset(state)
	return err
}

func (s *Select) reset(state string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) > 0 && state != "" && !slices.Contains(s.states, state) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	s.state = state
	s.district = ""
	s.districts = nil
	s.generation++
	return s.generation, nil
}

// SelectState chooses a state. The district and district list are cleared
// immediately, then the list for the new state is loaded. A load that
// finishes after a newer SelectState is discarded with ErrStale.
func (s *Select) SelectState(ctx context.Context, state string) error {
	gen, err := s.reset(state)
	if err != nil {
		return err
	}

	if state == "" {
		return nil
	}

	districts, err := s.src.Districts(ctx, state)
	if err != nil {
		return fmt.Errorf("load districts for %q: %w", state, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStale
	}
	s.districts = districts
	return nil
}

// SelectDistrict chooses a district from the loaded list.
func (s *Select) SelectDistrict(district string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.districts, district) {
		return fmt.Errorf("%w: %q in %q", ErrUnknownDistrict, district, s.state)
	}
	s.district = district
	return nil
}

// States returns the loaded state list.
func (s *Select) States() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.states)
}

// Districts returns the district list for the selected state.
func (s *Select) Districts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.districts)
}

// State returns the selected state.
func (s *Select) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// District returns the selected district, empty when none.
func (s *Select) District() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.district
}
