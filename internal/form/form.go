// Package form holds the editable key-value state behind every page.
package form

import (
	"strconv"
	"strings"
	"sync"

	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Kind is how a field's text is coerced when submitted.
type Kind int

const (
	Text Kind = iota
	Number
)

// Field describes one input.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  string
	Options  []string // suggested values, not enforced
	Omit     bool     // never sent in the payload
}

// Form is an ordered set of fields and their current values. Safe for
// concurrent use.
type Form struct {
	mu     sync.RWMutex
	fields []Field
	index  map[string]int
	values map[string]string
}

// New creates a form with every field at its default.
func New(fields ...Field) *Form {
	f := &Form{
		fields: fields,
		index:  make(map[string]int, len(fields)),
		values: make(map[string]string, len(fields)),
	}
	for i, fd := range fields {
		f.index[fd.Name] = i
		f.values[fd.Name] = fd.Default
	}
	return f
}

// Fields returns the field definitions in order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Has reports whether name is a field of this form.
func (f *Form) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Set updates one value. Unknown names are ignored and reported false.
func (f *Form) Set(name, value string) bool {
	if !f.Has(name) {
		return false
	}
	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()
	return true
}

// Get returns the current value of name.
func (f *Form) Get(name string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[name]
}

// Replace overwrites several known fields in place, leaving the rest alone.
func (f *Form) Replace(values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		if _, ok := f.index[k]; ok {
			f.values[k] = v
		}
	}
}

// Values returns a copy of all current values.
func (f *Form) Values() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Validate checks required fields are non-empty and numeric fields parse.
// It returns validation.Errors or nil.
func (f *Form) Validate() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var c validation.Collector
	for _, fd := range f.fields {
		v := f.values[fd.Name]
		if fd.Required {
			if err := validation.ValidateRequired(fd.Name, v); err != nil {
				c.Add(err)
				continue
			}
		}
		c.Add(validation.ValidateUTF8(fd.Name, v))
		if fd.Kind == Number {
			c.Add(validation.ValidateNumber(fd.Name, v))
		}
	}
	return c.Err()
}

// Payload builds the flat request body. Number fields become float64, empty
// optional fields are dropped. Call Validate first.
func (f *Form) Payload() agriapi.Payload {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p := make(agriapi.Payload, len(f.fields))
	for _, fd := range f.fields {
		if fd.Omit {
			continue
		}
		v := strings.TrimSpace(f.values[fd.Name])
		if v == "" && !fd.Required {
			continue
		}
		if fd.Kind == Number {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				p[fd.Name] = n
				continue
			}
		}
		p[fd.Name] = f.values[fd.Name]
	}
	return p
}

// FormatNumber renders a looked-up reading the way a user would type it.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
