package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// ErrUnknownFunction is returned for invocations of names that are not bound.
var ErrUnknownFunction = errors.New("remote: function not bound")

// Func is a bound function. data is the decoded payload.
type Func func(ctx context.Context, data any) (any, error)

// Registry maps function names to handlers. It is safe for concurrent use.
type Registry struct {
	funcs *xsync.MapOf[string, Func]
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: xsync.NewMapOf[string, Func]()}
}

// Bind registers fn under name, replacing an earlier binding
func (r *Registry) Bind(name string, fn Func) {
	if fn == nil {
		panic("remote: Bind with nil function")
	}
	r.funcs.Store(name, fn)
}

// Unbind removes name and reports whether it was bound
func (r *Registry) Unbind(name string) bool {
	_, ok := r.funcs.LoadAndDelete(name)
	return ok
}

// Lookup returns the function bound to name
func (r *Registry) Lookup(name string) (Func, bool) {
	return r.funcs.Load(name)
}

// Names returns the bound names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, r.funcs.Size())
	r.funcs.Range(func(name string, _ Func) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Run invokes the function bound to name. A panicking function is reported as error.
func (r *Registry) Run(ctx context.Context, name string, data any) (result any, err error) {
	fn, ok := r.funcs.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("remote: function %q panicked: %v", name, p)
		}
	}()
	return fn(ctx, data)
}
