// Package advice attaches before and after behavior to named operations.
//
// Behaviors are registered on a Registry against operation names, against all operations, or
// against all operations except some. Wrap then resolves every registration against the fixed
// set of implemented operations and returns a Table that dispatches calls by name. Before
// behaviors run in registration order, after behaviors in reverse registration order, so the
// last registered behavior is the innermost one.
//
// Registrations made after Wrap are not seen by the returned Table, and each Wrap returns an
// independent Table; register everything first and wrap once.
package advice

import "slices"

// Call is an invocation of an operation as seen by behaviors and implementations.
// Implementations set Result, after behaviors may read it.
type Call struct {
	Name   string
	Args   []any
	Result any
}

// Func is a behavior or an operation implementation.
type Func func(*Call)

type matcher struct {
	names  []string
	except bool
}

func (m matcher) match(name string) bool {
	return slices.Contains(m.names, name) != m.except
}

type registration struct {
	matcher
	fn Func
}

// Registry collects behaviors and named states.
type Registry struct {
	before []registration
	after  []registration
	states map[string]any
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		states: map[string]any{},
	}
}

// Before runs fn before each of the named operations. Names that are never implemented are
// ignored.
func (r *Registry) Before(fn Func, names ...string) {
	r.before = append(r.before, registration{matcher{names, false}, fn})
}

// After runs fn after each of the named operations.
func (r *Registry) After(fn Func, names ...string) {
	r.after = append(r.after, registration{matcher{names, false}, fn})
}

// BeforeAll runs fn before every operation.
func (r *Registry) BeforeAll(fn Func) {
	r.BeforeAllExcept(fn)
}

// AfterAll runs fn after every operation.
func (r *Registry) AfterAll(fn Func) {
	r.AfterAllExcept(fn)
}

// BeforeAllExcept runs fn before every operation that is not named. The complement is taken
// over the operations passed to Wrap.
func (r *Registry) BeforeAllExcept(fn Func, names ...string) {
	r.before = append(r.before, registration{matcher{names, true}, fn})
}

// AfterAllExcept runs fn after every operation that is not named.
func (r *Registry) AfterAllExcept(fn Func, names ...string) {
	r.after = append(r.after, registration{matcher{names, true}, fn})
}

// Advice registers a group of behaviors sharing private state. The setup function registers
// its behaviors on r and returns the state, which is then available through State under name.
func (r *Registry) Advice(name string, setup func(*Registry) any) {
	r.states[name] = setup(r)
}

// State returns the state of the named advice, or nil.
func (r *Registry) State(name string) any {
	return r.states[name]
}

// Get returns the state of the named advice as type T. It returns the zero value when the
// state is missing or of another type.
func Get[T any](r *Registry, name string) T {
	state, _ := r.states[name].(T)
	return state
}

// Wrap resolves all registrations against the implemented operations and returns the
// dispatch table.
func (r *Registry) Wrap(impls map[string]Func) *Table {
	t := &Table{
		entries: make(map[string]*entry, len(impls)),
		states:  r.states,
	}
	for name, impl := range impls {
		e := &entry{impl: impl}
		for _, reg := range r.before {
			if reg.match(name) {
				e.before = append(e.before, reg.fn)
			}
		}
		for i := len(r.after) - 1; 0 <= i; i-- {
			if r.after[i].match(name) {
				e.after = append(e.after, r.after[i].fn)
			}
		}
		t.entries[name] = e
	}
	return t
}

////////////////////////////////////////////////////////////////

type entry struct {
	before []Func
	impl   Func
	after  []Func
}

// Table dispatches operations by name through their behaviors.
type Table struct {
	entries map[string]*entry
	states  map[string]any
}

// Has returns true if the operation is implemented.
func (t *Table) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Names returns the implemented operations, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// State returns the state of the named advice, or nil.
func (t *Table) State(name string) any {
	return t.states[name]
}

// Invoke calls the named operation. It returns the result of the implementation, unchanged by
// the behaviors, and false if the operation is not implemented.
func (t *Table) Invoke(name string, args ...any) (any, bool) {
	e, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	call := &Call{Name: name, Args: args}
	for _, fn := range e.before {
		fn(call)
	}
	e.impl(call)
	result := call.Result
	for _, fn := range e.after {
		fn(call)
	}
	return result, true
}
