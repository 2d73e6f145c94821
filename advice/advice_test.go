package advice

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestOrder(t *testing.T) {
	trace := []string{}
	record := func(s string) Func {
		return func(*Call) {
			trace = append(trace, s)
		}
	}

	r := New()
	r.Before(record("A"), "op")
	r.Before(record("B"), "op")
	r.After(record("C"), "op")
	r.After(record("D"), "op")
	table := r.Wrap(map[string]Func{
		"op": record("op"),
	})

	_, ok := table.Invoke("op")
	test.That(t, ok)
	test.T(t, strings.Join(trace, ","), "A,B,op,D,C")
}

func TestOrderAll(t *testing.T) {
	trace := []string{}
	record := func(s string) Func {
		return func(call *Call) {
			trace = append(trace, s+":"+call.Name)
		}
	}

	r := New()
	r.BeforeAll(record("all"))
	r.Before(record("one"), "a")
	r.AfterAll(record("after"))
	r.AfterAllExcept(record("except"), "b")
	table := r.Wrap(map[string]Func{
		"a": record("impl"),
		"b": record("impl"),
	})

	table.Invoke("a")
	test.T(t, strings.Join(trace, ","), "all:a,one:a,impl:a,except:a,after:a")

	trace = trace[:0]
	table.Invoke("b")
	test.T(t, strings.Join(trace, ","), "all:b,impl:b,after:b")
}

func TestResult(t *testing.T) {
	r := New()
	seen := 0
	r.After(func(call *Call) {
		seen = call.Result.(int)
		call.Result = -1
	}, "double")
	table := r.Wrap(map[string]Func{
		"double": func(call *Call) {
			call.Result = 2 * call.Args[0].(int)
		},
	})

	result, ok := table.Invoke("double", 21)
	test.That(t, ok)
	test.T(t, result, 42)
	test.T(t, seen, 42)
}

func TestUnknownNames(t *testing.T) {
	r := New()
	called := false
	r.Before(func(*Call) {
		called = true
	}, "missing")
	table := r.Wrap(map[string]Func{
		"present": func(*Call) {},
	})

	_, ok := table.Invoke("present")
	test.That(t, ok)
	test.That(t, !called)

	_, ok = table.Invoke("missing")
	test.That(t, !ok)
	test.T(t, table.Names(), []string{"present"})
	test.That(t, table.Has("present"))
	test.That(t, !table.Has("missing"))
}

func TestLateRegistration(t *testing.T) {
	r := New()
	table := r.Wrap(map[string]Func{
		"op": func(*Call) {},
	})
	called := false
	r.BeforeAll(func(*Call) {
		called = true
	})

	table.Invoke("op")
	test.That(t, !called)
}

func TestState(t *testing.T) {
	type counter struct {
		n int
	}

	r := New()
	r.Advice("count", func(r *Registry) any {
		state := &counter{}
		r.BeforeAllExcept(func(*Call) {
			state.n++
		}, "reset")
		r.Before(func(*Call) {
			state.n = 0
		}, "reset")
		return state
	})
	table := r.Wrap(map[string]Func{
		"a":     func(*Call) {},
		"b":     func(*Call) {},
		"reset": func(*Call) {},
	})

	table.Invoke("a")
	table.Invoke("b")
	table.Invoke("a")
	test.T(t, Get[*counter](r, "count").n, 3)
	test.T(t, table.State("count").(*counter).n, 3)

	table.Invoke("reset")
	test.T(t, Get[*counter](r, "count").n, 0)
	test.That(t, Get[*counter](r, "missing") == nil)
	test.That(t, r.State("missing") == nil)
}
