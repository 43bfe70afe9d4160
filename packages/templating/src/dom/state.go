package dom

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNotElement is returned when a render boundary is requested for a
	// node that is not an element.
	ErrNotElement = errors.New("dom: not an element")

	// ErrBoundaryExists is returned when an element already owns a boundary.
	ErrBoundaryExists = errors.New("dom: render boundary already exists")
)

// nodeState is the runtime data attached to a node that x/net/html has no
// room for.
type nodeState struct {
	boundary *html.Node
	props    map[string]any
	hooks    map[string][]func(any) error
	releases []func()
}

var (
	stateMu sync.Mutex
	states  = map[*html.Node]*nodeState{}
)

// stateFor must be called with stateMu held.
func stateFor(n *html.Node) *nodeState {
	st, ok := states[n]
	if !ok {
		st = &nodeState{}
		states[n] = st
	}
	return st
}

// CreateRenderBoundary attaches an isolated container to el into which a
// component renders its own view. The children of el are left untouched.
func CreateRenderBoundary(el *html.Node) (*html.Node, error) {
	if el == nil || el.Type != html.ElementNode {
		return nil, ErrNotElement
	}
	stateMu.Lock()
	defer stateMu.Unlock()
	st := stateFor(el)
	if st.boundary != nil {
		return nil, fmt.Errorf("<%s>: %w", el.Data, ErrBoundaryExists)
	}
	st.boundary = NewFragment()
	return st.boundary, nil
}

// RenderBoundary returns the boundary owned by el.
func RenderBoundary(el *html.Node) (*html.Node, bool) {
	stateMu.Lock()
	defer stateMu.Unlock()
	st, ok := states[el]
	if !ok || st.boundary == nil {
		return nil, false
	}
	return st.boundary, true
}

// ReleaseRenderBoundary drops the boundary owned by el.
func ReleaseRenderBoundary(el *html.Node) {
	stateMu.Lock()
	defer stateMu.Unlock()
	if st, ok := states[el]; ok {
		st.boundary = nil
	}
}

// Release drops every piece of runtime state attached to n and runs the
// callbacks registered with OnRelease. State is kept in a process-wide table
// until released.
func Release(n *html.Node) {
	stateMu.Lock()
	st, ok := states[n]
	delete(states, n)
	stateMu.Unlock()

	if ok {
		for _, fn := range st.releases {
			fn()
		}
	}
}

// ReleaseTree releases n and every node below it, boundaries included.
func ReleaseTree(n *html.Node) {
	if b, ok := RenderBoundary(n); ok {
		ReleaseTree(b)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ReleaseTree(c)
	}
	Release(n)
}

// OnRelease registers fn to be called once when n is released.
func OnRelease(n *html.Node, fn func()) {
	stateMu.Lock()
	defer stateMu.Unlock()
	st := stateFor(n)
	st.releases = append(st.releases, fn)
}

// SetProperty stores a bound value on n and notifies the callbacks
// registered for name. On elements the value is mirrored as an attribute;
// a nil value removes it. Every callback runs; their errors are returned
// together.
func SetProperty(n *html.Node, name string, value any) error {
	stateMu.Lock()
	st := stateFor(n)
	if st.props == nil {
		st.props = map[string]any{}
	}
	st.props[name] = value
	hooks := slices.Clone(st.hooks[name])
	stateMu.Unlock()

	if n.Type == html.ElementNode {
		if value == nil {
			RemoveAttr(n, name)
		} else {
			SetAttr(n, name, fmt.Sprint(value))
		}
	}
	var errs *multierror.Error
	for _, fn := range hooks {
		if err := fn(value); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("dom: %s change: %w", name, err))
		}
	}
	return errs.ErrorOrNil()
}

// Property returns the last value stored by SetProperty.
func Property(n *html.Node, name string) (any, bool) {
	stateMu.Lock()
	defer stateMu.Unlock()
	st, ok := states[n]
	if !ok {
		return nil, false
	}
	v, ok := st.props[name]
	return v, ok
}

// OnPropertyChange registers fn to be called with every new value of name on
// n. If a value is already present fn is called with it right away and its
// error returned.
func OnPropertyChange(n *html.Node, name string, fn func(any) error) error {
	stateMu.Lock()
	st := stateFor(n)
	if st.hooks == nil {
		st.hooks = map[string][]func(any) error{}
	}
	st.hooks[name] = append(st.hooks[name], fn)
	v, ok := st.props[name]
	stateMu.Unlock()

	if ok {
		return fn(v)
	}
	return nil
}

// RenderWithBoundaries writes n to w. Every render boundary found in the tree
// is emitted as a declarative shadow root, i.e. a leading
// <template shadowrootmode="open"> child of its element.
func RenderWithBoundaries(w io.Writer, n *html.Node) error {
	return html.Render(w, withBoundaries(n))
}

func withBoundaries(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	if b, ok := RenderBoundary(n); ok {
		tmpl := NewElement("template", html.Attribute{Key: "shadowrootmode", Val: "open"})
		tmpl.DataAtom = atom.Template
		for child := b.FirstChild; child != nil; child = child.NextSibling {
			tmpl.AppendChild(withBoundaries(child))
		}
		c.AppendChild(tmpl)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(withBoundaries(child))
	}
	return c
}
