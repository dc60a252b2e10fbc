// Package dtypes maps aliases to predicates that decide whether a column holds the
// expected data type.
//
// A Registry only accepts predicates that survive a sanity probe: at registration the
// predicate is called with an empty int64 column and must return a bool without failing.
// Aliases can be any comparable value, typically a short tag ("int", "str") or a
// reflect.Type. Registering without an alias uses the function's Identity.
//
// There is no package-level registry. NewDefault builds a pre-populated one, and callers
// pass it explicitly to whatever needs it.
package dtypes

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/amp-labs/validity/frame"
)

// Predicate decides whether col has the expected data type. An error means the
// predicate could not decide.
type Predicate func(col frame.Column) (bool, error)

// Func is the common form of a predicate that cannot fail.
type Func func(col frame.Column) bool

const probeName = "probe"

type callable struct {
	id   Identity
	call func(col frame.Column) (any, error)
}

func (c callable) predicate() Predicate {
	return func(col frame.Column) (bool, error) {
		v, err := c.call(col)
		if err != nil {
			return false, err
		}

		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("%w: %s returned %v", ErrNotBoolean, c.id.Name(), v)
		}

		return b, nil
	}
}

// normalize converts one of the accepted function shapes into a callable:
//   - Func, func(frame.Column) bool
//   - Predicate, func(frame.Column) (bool, error)
//   - func(frame.DType) bool
//   - func(frame.Column) any, whose result is checked to be a bool
func normalize(fn any) (callable, error) {
	id, ok := IdentityOf(fn)
	if !ok {
		return callable{}, notCallable(fn)
	}

	c := callable{id: id}

	switch f := fn.(type) {
	case Func:
		c.call = func(col frame.Column) (any, error) { return f(col), nil }
	case func(frame.Column) bool:
		c.call = func(col frame.Column) (any, error) { return f(col), nil }
	case Predicate:
		c.call = func(col frame.Column) (any, error) { return f(col) }
	case func(frame.Column) (bool, error):
		c.call = func(col frame.Column) (any, error) { return f(col) }
	case func(frame.DType) bool:
		c.call = func(col frame.Column) (any, error) { return f(col.DType()), nil }
	case func(frame.Column) any:
		c.call = func(col frame.Column) (any, error) { return f(col), nil }
	default:
		return callable{}, notCallable(fn)
	}

	return c, nil
}

type entry struct {
	callable

	predicate Predicate
}

// Registry maps aliases to type predicates. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[any]*entry
	order   []any
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[any]*entry)}
}

// key turns a function alias into its Identity and rejects aliases that cannot be map keys.
func key(alias any) (any, bool) {
	if alias == nil {
		return nil, false
	}

	if id, ok := IdentityOf(alias); ok {
		return id, true
	}

	if !reflect.ValueOf(alias).Comparable() {
		return nil, false
	}

	return alias, true
}

// Register adds fn under each alias, or under fn's Identity when no alias is given.
// An existing entry for the same alias is replaced. On error nothing is registered.
//
// fn must be one of the shapes accepted by normalize and must return a bool when called
// with an empty int64 column.
func (r *Registry) Register(fn any, alias ...any) error {
	c, err := normalize(fn)
	if err != nil {
		return err
	}

	keys := make([]any, 0, max(len(alias), 1))

	if len(alias) == 0 {
		keys = append(keys, c.id)
	}

	for _, a := range alias {
		k, ok := key(a)
		if !ok {
			return &RegistrationError{Message: fmt.Sprintf("alias `%v` of %s is not comparable", a, c.id.Name())}
		}

		keys = append(keys, k)
	}

	if err := sanityCheck(c); err != nil {
		return err
	}

	e := &entry{callable: c, predicate: c.predicate()}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		if _, exists := r.entries[k]; !exists {
			r.order = append(r.order, k)
		}

		r.entries[k] = e
	}

	return nil
}

// sanityCheck calls the predicate once with an empty int64 column. A panic counts as a
// failure of the predicate, the same as a returned error.
func sanityCheck(c callable) (err error) {
	probe := frame.Ints(probeName)
	probeType := probe.DType().String()

	defer func() {
		if rec := recover(); rec != nil {
			var cause error

			text := fmt.Sprint(rec)

			if e, ok := rec.(error); ok {
				cause = e
				text = e.Error()
			}

			err = sanityFailed(c.id, probeType, cause, text)
		}
	}()

	v, callErr := c.call(probe)
	if callErr != nil {
		return sanityFailed(c.id, probeType, callErr, callErr.Error())
	}

	if _, ok := v.(bool); !ok {
		return notBoolean(c.id, v)
	}

	return nil
}

// Decorate registers fn under its own Identity and returns it unchanged, so it can wrap
// a package-level function declaration:
//
//	var isPositive = registry.Decorate(func(col frame.Column) bool { ... })
//
// It panics if fn is rejected, like regexp.MustCompile.
func (r *Registry) Decorate(fn Func) Func {
	if err := r.Register(fn); err != nil {
		panic(err)
	}

	return fn
}

// Decorator returns a function that registers its argument under alias and returns
// it unchanged. It panics if the predicate is rejected.
func (r *Registry) Decorator(alias ...any) func(Func) Func {
	return func(fn Func) Func {
		if err := r.Register(fn, alias...); err != nil {
			panic(err)
		}

		return fn
	}
}

// MustRegister registers fn under alias and returns it unchanged, keeping its static type.
// It panics if fn is rejected.
func MustRegister[F any](r *Registry, fn F, alias ...any) F {
	if err := r.Register(fn, alias...); err != nil {
		panic(err)
	}

	return fn
}

// Lookup returns the predicate registered under alias. A function alias is looked up
// by its Identity.
func (r *Registry) Lookup(alias any) (Predicate, error) {
	k, ok := key(alias)
	if !ok {
		return nil, &RegistryError{Alias: alias}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[k]
	if !ok {
		return nil, &RegistryError{Alias: alias}
	}

	return e.predicate, nil
}

// Resolve returns a predicate for expected: a function in one of the accepted shapes is
// used directly, anything else is looked up as an alias.
func (r *Registry) Resolve(expected any) (Predicate, error) {
	c, err := normalize(expected)
	if err == nil {
		return c.predicate(), nil
	}

	if _, isFunc := IdentityOf(expected); isFunc {
		return nil, err
	}

	return r.Lookup(expected)
}

// Contains reports whether k is a registered alias, or a function whose Identity
// matches a registered predicate.
func (r *Registry) Contains(k any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mk, ok := key(k); ok {
		if _, found := r.entries[mk]; found {
			return true
		}
	}

	id, ok := IdentityOf(k)
	if !ok {
		return false
	}

	for _, e := range r.entries {
		if e.id == id {
			return true
		}
	}

	return false
}

// Aliases returns the registered aliases in the order they were first registered.
func (r *Registry) Aliases() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]any, len(r.order))
	copy(out, r.order)

	return out
}

// Len returns the number of aliases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// IsRegistryError reports whether err came from a registration or lookup.
func IsRegistryError(err error) bool {
	return errors.Is(err, ErrRegistry)
}
