package compiler

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/css"
	"ngt-go/packages/templating/src/directive"
)

var (
	// ErrMissingSelector is returned when registering a directive that
	// cannot match any element.
	ErrMissingSelector = errors.New("compiler: directive has no selector")

	// ErrDuplicateDirective is returned when a directive is registered twice.
	ErrDuplicateDirective = errors.New("compiler: directive already registered")
)

// Match is a directive matched on an element, with the selector that matched.
type Match struct {
	Directive *directive.DirectiveClass
	Selector  *css.Selector
}

// Registry is the set of directives a template is compiled against.
type Registry struct {
	mu         sync.Mutex
	matcher    *css.SelectorMatcher[*directive.DirectiveClass]
	directives []*directive.DirectiveClass
}

// NewRegistry returns a registry holding dcs.
func NewRegistry(dcs ...*directive.DirectiveClass) (*Registry, error) {
	r := &Registry{matcher: css.NewSelectorMatcher[*directive.DirectiveClass]()}
	if err := r.Register(dcs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds directives to the registry.
func (r *Registry) Register(dcs ...*directive.DirectiveClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dc := range dcs {
		switch {
		case dc == nil || dc.Annotation == nil:
			return fmt.Errorf("%w: nil directive", ErrKindMismatch)
		case len(dc.Selectors()) == 0:
			return fmt.Errorf("%w: %s", ErrMissingSelector, dc)
		case slices.Contains(r.directives, dc):
			return fmt.Errorf("%w: %s", ErrDuplicateDirective, dc)
		}
		switch dc.Kind() {
		case directive.KindDecorator, directive.KindComponent, directive.KindTemplate:
		default:
			return fmt.Errorf("%w: unknown %s for %q", ErrKindMismatch, dc.Kind(), dc.Annotation.Selector())
		}
		r.matcher.AddSelectables(dc.Selectors(), dc)
		r.directives = append(r.directives, dc)
	}
	return nil
}

// Directives returns the registered directives in registration order.
func (r *Registry) Directives() []*directive.DirectiveClass {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.directives)
}

// Match returns the directives whose selector matches el, in registration
// order.
func (r *Registry) Match(el *html.Node) []Match {
	if el == nil || el.Type != html.ElementNode {
		return nil
	}
	target := css.FromElement(el)
	r.mu.Lock()
	defer r.mu.Unlock()
	found := map[*directive.DirectiveClass]*css.Selector{}
	r.matcher.Match(target, func(s *css.Selector, dc *directive.DirectiveClass) {
		if _, ok := found[dc]; !ok {
			found[dc] = s
		}
	})
	var matches []Match
	for _, dc := range r.directives {
		if s, ok := found[dc]; ok {
			matches = append(matches, Match{Directive: dc, Selector: s})
		}
	}
	return matches
}
