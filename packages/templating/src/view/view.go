package view

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/dom"
)

var (
	// ViewToken resolves to the view a node belongs to.
	ViewToken = di.TypeOf[*View]()
	// ViewPortToken resolves to the view port of a template directive's anchor.
	ViewPortToken = di.TypeOf[*ViewPort]()
	// ViewFactoryToken resolves to the view factory of a template directive.
	ViewFactoryToken = di.TypeOf[*ViewFactory]()
)

// ExecutionContextToken resolves to the data context expressions of a view
// are evaluated against.
const ExecutionContextToken = "executionContext"

var (
	// ErrDetachedAnchor is returned when appending to a port whose anchor has
	// no parent node.
	ErrDetachedAnchor = errors.New("view: anchor is not attached")
	// ErrViewNotAttached is returned when removing a view the port does not hold.
	ErrViewNotAttached = errors.New("view: view is not attached to this port")
	// ErrViewAttached is returned when appending a view twice.
	ErrViewAttached = errors.New("view: view is already attached to this port")
)

// View is a live instantiation of a compiled template.
type View struct {
	nodes            []*html.Node
	executionContext any
	injector         *di.Injector
	parent           *View
}

// Nodes returns the root nodes of the view.
func (v *View) Nodes() []*html.Node {
	return slices.Clone(v.nodes)
}

// ExecutionContext returns the data context of the view.
func (v *View) ExecutionContext() any {
	return v.executionContext
}

// Injector returns the injector scoped to the view.
func (v *View) Injector() *di.Injector {
	return v.injector
}

// Parent returns the view this view was created from, if any.
func (v *View) Parent() *View {
	return v.parent
}

// ViewPort is the insertion/removal handle anchored at a placeholder node.
// Views are spliced in after the anchor, in append order.
type ViewPort struct {
	anchor *html.Node

	mu    sync.Mutex
	views []*View
}

// NewViewPort returns a port for anchor.
func NewViewPort(anchor *html.Node) *ViewPort {
	return &ViewPort{anchor: anchor}
}

// Anchor returns the placeholder node.
func (p *ViewPort) Anchor() *html.Node {
	return p.anchor
}

// Equal reports whether both ports are anchored at the same node.
func (p *ViewPort) Equal(o *ViewPort) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.anchor == o.anchor
}

// Len returns the number of attached views.
func (p *ViewPort) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

// Append inserts the nodes of v after the anchor and the views appended
// before it.
func (p *ViewPort) Append(v *View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	parent := p.anchor.Parent
	if parent == nil {
		return ErrDetachedAnchor
	}
	if slices.Contains(p.views, v) {
		return ErrViewAttached
	}
	ref := p.anchor
	for i := len(p.views) - 1; i >= 0; i-- {
		if n := p.views[i].nodes; len(n) > 0 {
			ref = n[len(n)-1]
			break
		}
	}
	for _, n := range v.nodes {
		dom.Detach(n)
		parent.InsertBefore(n, ref.NextSibling)
		ref = n
	}
	p.views = append(p.views, v)
	return nil
}

// Remove detaches the nodes of v.
func (p *ViewPort) Remove(v *View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := slices.Index(p.views, v)
	if i < 0 {
		return ErrViewNotAttached
	}
	for _, n := range v.nodes {
		dom.Detach(n)
	}
	p.views = slices.Delete(p.views, i, i+1)
	return nil
}

func (p *ViewPort) String() string {
	return fmt.Sprintf("ViewPort(%s)", dom.OuterHTML(p.anchor))
}
