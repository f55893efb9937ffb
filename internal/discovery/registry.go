// Package discovery enumerates the test units available to a run.
//
// Units are compiled into the binary: packages register their modules and
// test bodies against a Registry (typically from init functions) and the
// driver discovers them once per run, before filtering. The orchestration
// core only ever sees (TestID, executable unit) pairs.
package discovery

import (
	"strings"

	"hunit/internal/domain"
	"hunit/internal/execution"
)

// Discoverer supplies, for a given scope, an ordered sequence of test cases.
// The order is stable and deterministic; it is the order users mentally map
// onto their source layout.
type Discoverer interface {
	Discover(scope []string) []execution.Case
}

// Registry is the default Discoverer: an ordered collection of modules.
type Registry struct {
	order   []string
	modules map[string]*Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Module returns the module registered under name, creating it on first use.
// Registration order is preserved.
func (r *Registry) Module(name string) *Module {
	if m, ok := r.modules[name]; ok {
		return m
	}
	m := &Module{name: name}
	r.modules[name] = m
	r.order = append(r.order, name)
	return m
}

// Discover returns every registered case whose id falls under one of the
// scope prefixes (all cases when scope is empty), in registration order.
// A module that failed to collect surfaces as a single synthetic case
// carrying the collection error instead of vanishing from the count.
func (r *Registry) Discover(scope []string) []execution.Case {
	var cases []execution.Case
	for _, name := range r.order {
		m := r.modules[name]
		if m.err != nil {
			// The synthetic case also answers for scopes that reach inside
			// the module; its tests cannot be enumerated, so the collection
			// error stands in for all of them.
			if scopeTouches(m.name, scope) {
				cases = append(cases, execution.Case{
					ID:  domain.TestID(m.name),
					Err: m.err,
				})
			}
			continue
		}
		for _, c := range m.cases {
			if inScope(c.ID, scope) {
				cases = append(cases, c)
			}
		}
	}
	return cases
}

func inScope(id domain.TestID, scope []string) bool {
	if len(scope) == 0 {
		return true
	}
	for _, prefix := range scope {
		s := string(id)
		if s == prefix || strings.HasPrefix(s, prefix+".") {
			return true
		}
	}
	return false
}

// scopeTouches additionally matches when a scope prefix extends the module id,
// e.g. scope "pkg.broken.TestBroken.test_x" touches module "pkg.broken.TestBroken".
func scopeTouches(module string, scope []string) bool {
	if inScope(domain.TestID(module), scope) {
		return true
	}
	for _, prefix := range scope {
		if strings.HasPrefix(prefix, module+".") {
			return true
		}
	}
	return false
}

// Module groups the test cases of one source module under a common id prefix.
type Module struct {
	name  string
	err   error
	cases []execution.Case
}

// Name returns the module's id prefix.
func (m *Module) Name() string {
	return m.name
}

// Add registers one test body under the module. The resulting id is
// "<module>.<name>".
func (m *Module) Add(name string, body func(*execution.T)) {
	m.cases = append(m.cases, execution.Case{
		ID:   domain.TestID(m.name + "." + name),
		Body: body,
	})
}

// SetError marks the whole module as failed to collect. Its cases are
// replaced by one synthetic erroring unit at discovery time.
func (m *Module) SetError(err error) {
	m.err = err
}
