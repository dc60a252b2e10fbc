package dtypes

import (
	"reflect"
	"runtime"
	"strings"
)

// Identity is a comparable stand-in for a function value, which Go does not allow as a
// map key. It is the alias a predicate is registered under when none is given.
//
// Two function values share an Identity when they share code. Closures created from the
// same literal therefore compare equal even if they capture different variables.
type Identity struct {
	pc   uintptr
	name string
}

// IdentityOf returns the Identity of fn. The second result is false when fn is not a
// non-nil function.
func IdentityOf(fn any) (Identity, bool) {
	if fn == nil {
		return Identity{}, false
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return Identity{}, false
	}

	pc := rv.Pointer()
	id := Identity{pc: pc}

	if f := runtime.FuncForPC(pc); f != nil {
		id.name = f.Name()
	}

	return id, true
}

// Name returns the function name without its package path, e.g. "IsString" or
// "TestRegistry.func1".
func (i Identity) Name() string {
	name := i.name
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}

	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}

	if name == "" {
		return "<anonymous>"
	}

	return name
}

func (i Identity) String() string {
	return i.Name()
}
