package view

import (
	"fmt"
	"slices"

	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/dom"
)

// Binder binds one node of an instantiated template into a new scope.
type Binder interface {
	Bind(parent *di.Injector, node *html.Node) (*di.Injector, error)
}

// NodeBinding addresses a template node by the child indexes leading to it
// from the template roots, and names the binder to run on it.
type NodeBinding struct {
	Path   []int
	Binder Binder
}

// ViewFactory turns a compiled template into live views. It is immutable
// and may be shared by any number of concurrent CreateView calls.
type ViewFactory struct {
	nodes    []*html.Node
	bindings []NodeBinding
}

// NewViewFactory returns a factory for the template made of nodes. The nodes
// are never handed out; every view renders a fresh clone.
func NewViewFactory(nodes []*html.Node, bindings []NodeBinding) *ViewFactory {
	sorted := slices.Clone(bindings)
	// lexicographic path order is document order, parents first
	slices.SortStableFunc(sorted, func(a, b NodeBinding) int { return slices.Compare(a.Path, b.Path) })
	return &ViewFactory{nodes: nodes, bindings: sorted}
}

// Nodes returns the template nodes.
func (f *ViewFactory) Nodes() []*html.Node {
	return slices.Clone(f.nodes)
}

// Bindings returns the node bindings in document order.
func (f *ViewFactory) Bindings() []NodeBinding {
	return slices.Clone(f.bindings)
}

// CreateView renders the template with executionContext as its data context.
// The view's injector is a child of inj providing the view itself and the
// execution context.
func (f *ViewFactory) CreateView(inj *di.Injector, executionContext any) (*View, error) {
	return f.create(inj, executionContext, nil)
}

// CreateChildView is CreateView for structural directives: the view resolvable
// from inj, if any, becomes the parent of the new view.
func (f *ViewFactory) CreateChildView(inj *di.Injector, executionContext any) (*View, error) {
	var parent *View
	if inj.Has(ViewToken) {
		p, err := di.Get[*View](inj, ViewToken)
		if err != nil {
			return nil, err
		}
		parent = p
	}
	return f.create(inj, executionContext, parent)
}

func (f *ViewFactory) create(inj *di.Injector, executionContext any, parent *View) (*View, error) {
	v := &View{executionContext: executionContext, parent: parent}
	for _, n := range f.nodes {
		v.nodes = append(v.nodes, dom.CloneTree(n))
	}
	v.injector = inj.CreateChild(
		di.Value(ViewToken, v),
		di.Value(ExecutionContextToken, executionContext),
	)

	// Resolve every target first: binders may splice views next to their node.
	targets := make([]*html.Node, len(f.bindings))
	for i, b := range f.bindings {
		n, err := nodeAt(v.nodes, b.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = n
	}

	scopes := make(map[*html.Node]*di.Injector, len(targets))
	for i, b := range f.bindings {
		parentInj := v.injector
		for p := targets[i].Parent; p != nil; p = p.Parent {
			if s, ok := scopes[p]; ok {
				parentInj = s
				break
			}
		}
		child, err := b.Binder.Bind(parentInj, targets[i])
		if err != nil {
			return nil, err
		}
		scopes[targets[i]] = child
	}
	return v, nil
}

func nodeAt(roots []*html.Node, path []int) (*html.Node, error) {
	if len(path) == 0 || path[0] < 0 || path[0] >= len(roots) {
		return nil, fmt.Errorf("view: no template node at %v", path)
	}
	n := roots[path[0]]
	for _, idx := range path[1:] {
		c := n.FirstChild
		for i := 0; c != nil && i < idx; i++ {
			c = c.NextSibling
		}
		if c == nil || idx < 0 {
			return nil, fmt.Errorf("view: no template node at %v", path)
		}
		n = c
	}
	return n, nil
}
