package hsql

import (
	"fmt"
	"slices"
	"sync"
)

// FuncRenderer renders a call to a function whose SQL does not follow
// the name(arg, ...) layout.
type FuncRenderer func(r *Renderer, args []Expr) (string, []any, error)

// Functions maps function names to custom renderers. Like the quote
// registry it is filled during setup and frozen before the first render.
type Functions struct {
	mu     sync.RWMutex
	fns    map[string]FuncRenderer
	frozen bool
}

func NewFunctions() *Functions {
	return &Functions{fns: make(map[string]FuncRenderer)}
}

// DefaultFunctions holds the renderers for extract, distinct-count, cast
// and the infix arithmetic, comparison and boolean operators.
func DefaultFunctions() *Functions {
	f := NewFunctions()
	f.fns["extract"] = renderExtract
	f.fns["distinct-count"] = renderDistinctCount
	f.fns["cast"] = renderCast
	for _, op := range []string{
		"+", "-", "*", "/", "%",
		"=", "<>", "<", "<=", ">", ">=", "like",
		"and", "or",
	} {
		f.fns[op] = Infix(op)
	}
	return f
}

// Register inserts or overwrites the renderer for name.
func (f *Functions) Register(name string, fn FuncRenderer) error {
	if name == "" {
		return fmt.Errorf("register function: empty name")
	}
	if fn == nil {
		return fmt.Errorf("register function %q: nil renderer", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frozen {
		return fmt.Errorf("register function %q: %w", name, ErrFrozen)
	}
	f.fns[name] = fn
	return nil
}

func (f *Functions) Lookup(name string) (FuncRenderer, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn, ok := f.fns[name]
	return fn, ok
}

// Names returns the registered function names in sorted order.
func (f *Functions) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.fns))
	for n := range f.fns {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (f *Functions) Freeze() {
	f.mu.Lock()
	f.frozen = true
	f.mu.Unlock()
}
