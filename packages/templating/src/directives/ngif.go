// Package directives holds the built-in directives.
package directives

import (
	"sync"

	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directive"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/view"
)

// NgIfToken resolves to the *NgIf of an anchor scope.
var NgIfToken = di.TypeOf[*NgIf]()

// NgIfDirective renders its element while the bound ngIf value is truthy.
var NgIfDirective = directive.NewDirectiveClass(
	directive.MustTemplate(directive.Args{Selector: "[ng-if]", Exports: []string{"ngIf"}}),
	di.Class{
		Token: NgIfToken,
		Deps: []di.Token{
			view.ViewFactoryToken,
			view.ViewPortToken,
			view.ViewToken,
			di.InjectorToken,
			dom.NodeToken,
		},
		New: func(args ...any) (any, error) {
			return NewNgIf(
				args[0].(*view.ViewFactory),
				args[1].(*view.ViewPort),
				args[2].(*view.View),
				args[3].(*di.Injector),
				args[4].(*html.Node),
			)
		},
	},
)

// All returns the built-in directives.
func All() []*directive.DirectiveClass {
	return []*directive.DirectiveClass{NgIfDirective}
}

// NgIf is a conditional template directive. It follows the ngIf property of
// its anchor and keeps at most one view of its template in the view port.
type NgIf struct {
	viewFactory *view.ViewFactory
	viewPort    *view.ViewPort
	parentView  *view.View
	injector    *di.Injector

	mu    sync.Mutex
	value bool
	view  *view.View
}

// NewNgIf returns an NgIf following the ngIf property of anchor. Errors of
// later changes are returned by dom.SetProperty.
func NewNgIf(vf *view.ViewFactory, vp *view.ViewPort, parent *view.View, inj *di.Injector, anchor *html.Node) (*NgIf, error) {
	n := &NgIf{viewFactory: vf, viewPort: vp, parentView: parent, injector: inj}
	if err := dom.OnPropertyChange(anchor, "ngIf", n.Set); err != nil {
		return nil, err
	}
	return n, nil
}

// Value returns the current condition.
func (n *NgIf) Value() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.value
}

// View returns the rendered view, or nil.
func (n *NgIf) View() *view.View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

// Set applies a new condition. A truthy value renders a child view in the
// context of the parent view unless one is already shown; a falsy value
// removes it and releases the state bound to its nodes.
func (n *NgIf) Set(v any) error {
	value := truthy(v)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = value

	if !value {
		if n.view == nil {
			return nil
		}
		if err := n.viewPort.Remove(n.view); err != nil {
			return err
		}
		for _, node := range n.view.Nodes() {
			dom.ReleaseTree(node)
		}
		n.view = nil
		return nil
	}
	if n.view != nil {
		return nil
	}
	created, err := n.viewFactory.CreateChildView(n.injector, n.parentView.ExecutionContext())
	if err != nil {
		return err
	}
	if err := n.viewPort.Append(created); err != nil {
		return err
	}
	n.view = created
	return nil
}

// truthy parses attribute strings: only "true" is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t == "true"
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
