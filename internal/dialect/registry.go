package dialect

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrFrozen is returned when registering into a registry that is already in use.
var ErrFrozen = errors.New("registry is frozen")

// Registry maps dialect tags to quote strategies. It is populated during
// setup and frozen before the first render; lookups are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	quotes map[Tag]QuoteFunc
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{quotes: make(map[Tag]QuoteFunc)}
}

// Defaults returns a registry holding every built-in strategy.
func Defaults() *Registry {
	r := NewRegistry()
	for tag, fn := range map[Tag]QuoteFunc{
		ANSI:      ANSIQuote,
		H2:        H2Quote,
		MySQL:     MySQLQuote,
		Postgres:  PostgresQuote,
		SQLite:    ANSIQuote,
		SQLServer: SQLServerQuote,
	} {
		r.quotes[tag] = fn
	}
	return r
}

// Register inserts or overwrites the quote strategy for tag.
func (r *Registry) Register(tag Tag, fn QuoteFunc) error {
	if tag == "" {
		return fmt.Errorf("register quote strategy: empty dialect tag")
	}
	if fn == nil {
		return fmt.Errorf("register quote strategy for %q: nil function", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register quote strategy for %q: %w", tag, ErrFrozen)
	}
	r.quotes[tag] = fn
	return nil
}

func (r *Registry) Lookup(tag Tag) (QuoteFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.quotes[tag]
	return fn, ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]Tag, 0, len(r.quotes))
	for t := range r.quotes {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// Freeze makes the registry read-only. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
