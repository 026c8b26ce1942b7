// Package view implements the request lifecycle shared by every form page:
// edit fields, optionally fill some of them from a lookup, submit once, show
// either a result or a fixed failure message.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// State is the lifecycle position of a view.
type State int

const (
	Idle State = iota
	AwaitingDependentData
	Submitting
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingDependentData:
		return "awaiting_dependent_data"
	case Submitting:
		return "submitting"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is how the last submission ended.
type Outcome int

const (
	NoOutcome Outcome = iota
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "none"
	}
}

// SubmitFunc performs the single backend request of a page.
type SubmitFunc[R any] func(ctx context.Context, p agriapi.Payload) (R, error)

// FetchFunc performs a dependent lookup from the current field values and
// returns the fields to overwrite.
type FetchFunc func(ctx context.Context, values map[string]string) (map[string]string, error)

// Snapshot is a consistent copy of a view's observable state.
type Snapshot[R any] struct {
	State   State
	Outcome Outcome
	Loading bool
	Result  *R
	Error   string
	Notice  string
	Values  map[string]string
}

// View is the generic form-to-result state machine. Safe for concurrent use.
type View[R any] struct {
	name    string
	form    *form.Form
	submit  SubmitFunc[R]
	failMsg string
	payload func(*form.Form) agriapi.Payload
	notices map[string]string
	logger  *slog.Logger

	mu         sync.Mutex
	submitting bool
	resolved   bool
	outcome    Outcome
	result     *R
	errMsg     string
	notice     string
	busy       map[string]bool
}

// Option configures a View.
type Option[R any] func(*View[R])

// WithPayload replaces the default payload builder (form.Form.Payload).
func WithPayload[R any](fn func(*form.Form) agriapi.Payload) Option[R] {
	return func(v *View[R]) {
		v.payload = fn
	}
}

// WithNotice sets the message recorded when the named lookup fails.
func WithNotice[R any](trigger, msg string) Option[R] {
	return func(v *View[R]) {
		v.notices[trigger] = msg
	}
}

// WithLogger sets the view's logger.
func WithLogger[R any](l *slog.Logger) Option[R] {
	return func(v *View[R]) {
		v.logger = l
	}
}

// New creates a view named name over f. failureMessage is shown whenever the
// submission fails at the network level.
func New[R any](name string, f *form.Form, submit SubmitFunc[R], failureMessage string, opts ...Option[R]) *View[R] {
	v := &View[R]{
		name:    name,
		form:    f,
		submit:  submit,
		failMsg: failureMessage,
		payload: (*form.Form).Payload,
		notices: make(map[string]string),
		logger:  slog.Default(),
		busy:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "view", "view", name)
	return v
}

// Name returns the view's name.
func (v *View[R]) Name() string {
	return v.name
}

// Form returns the underlying form.
func (v *View[R]) Form() *form.Form {
	return v.form
}

// FailureMessage returns the fixed message shown on a failed submission.
func (v *View[R]) FailureMessage() string {
	return v.failMsg
}

// UpdateField edits one field. It never performs I/O. A resolved view goes
// back to Idle; its last result stays visible.
func (v *View[R]) UpdateField(name, value string) bool {
	if !v.form.Set(name, value) {
		return false
	}
	v.mu.Lock()
	v.resolved = false
	v.mu.Unlock()
	return true
}

// FetchDependent runs a user-triggered lookup. Only trigger is marked busy;
// other fields stay editable. On success the returned fields overwrite the
// form in place. On failure the fields are untouched and a notice is
// recorded; the error is returned for the caller's information.
func (v *View[R]) FetchDependent(ctx context.Context, trigger string, fetch FetchFunc) error {
	v.mu.Lock()
	if v.busy[trigger] {
		v.mu.Unlock()
		return ErrBusy
	}
	v.busy[trigger] = true
	v.notice = ""
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.busy, trigger)
		v.mu.Unlock()
	}()

	updates, err := fetch(ctx, v.form.Values())
	if err != nil {
		v.mu.Lock()
		v.notice = v.noticeFor(trigger, err)
		v.mu.Unlock()
		v.logger.Warn("dependent lookup failed", "trigger", trigger, "error", err)
		return err
	}

	v.form.Replace(updates)
	v.mu.Lock()
	v.resolved = false
	v.mu.Unlock()
	v.logger.Debug("dependent lookup applied", "trigger", trigger, "fields", len(updates))
	return nil
}

func (v *View[R]) noticeFor(trigger string, err error) string {
	if errors.Is(err, agriapi.ErrEmptyResult) {
		return fmt.Sprintf("No %s data available. Please enter manually.", trigger)
	}
	if msg, ok := v.notices[trigger]; ok {
		return msg
	}
	return fmt.Sprintf("Could not fetch %s. Please enter manually.", trigger)
}

// Submit validates the form and, when valid, issues exactly one request.
// Invalid input returns validation.Errors without any request. A Submit
// while one is in flight returns ErrBusy.
func (v *View[R]) Submit(ctx context.Context) (*R, error) {
	if err := v.form.Validate(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	if v.submitting {
		v.mu.Unlock()
		return nil, ErrBusy
	}
	v.submitting = true
	v.resolved = false
	v.result = nil
	v.errMsg = ""
	v.mu.Unlock()

	start := time.Now()
	res, err := v.submit(ctx, v.payload(v.form))

	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = false
	v.resolved = true

	if err != nil {
		v.outcome = Failure
		v.errMsg = v.failMsg
		v.logger.Warn("submission failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%s: %w", v.name, err)
	}

	v.outcome = Success
	v.result = &res
	v.logger.Debug("submission succeeded", "duration_ms", time.Since(start).Milliseconds())
	return &res, nil
}

// State returns the current lifecycle state.
func (v *View[R]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *View[R]) stateLocked() State {
	switch {
	case v.submitting:
		return Submitting
	case len(v.busy) > 0:
		return AwaitingDependentData
	case v.resolved:
		return Resolved
	default:
		return Idle
	}
}

// Snapshot returns a consistent copy of the view's state.
func (v *View[R]) Snapshot() Snapshot[R] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot[R]{
		State:   v.stateLocked(),
		Outcome: v.outcome,
		Loading: v.submitting,
		Result:  v.result,
		Error:   v.errMsg,
		Notice:  v.notice,
		Values:  v.form.Values(),
	}
}
