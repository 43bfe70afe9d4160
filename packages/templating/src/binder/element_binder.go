package binder

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directive"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/types"
	"ngt-go/packages/templating/src/view"
)

// ErrMissingViewFactory is returned when a component or template directive
// is configured without a view factory.
var ErrMissingViewFactory = errors.New("binder: missing view factory")

// Component is a component directive together with the factory of its view.
type Component struct {
	Directive   *directive.DirectiveClass
	ViewFactory *view.ViewFactory
}

// ElementBinder binds an element to its decorators and, optionally, one
// component. It is immutable once built and safe for concurrent use.
type ElementBinder struct {
	scope
	decorators []*directive.DirectiveClass
	component  *Component
}

// ElementOption configures an ElementBinder.
type ElementOption func(*ElementBinder)

// WithAttrs sets the declared attributes of the element.
func WithAttrs(attrs *types.NodeAttrs) ElementOption {
	return func(b *ElementBinder) { b.attrs = attrs }
}

// WithDecorators appends decorator directives.
func WithDecorators(dcs ...*directive.DirectiveClass) ElementOption {
	return func(b *ElementBinder) { b.decorators = append(b.decorators, dcs...) }
}

// WithComponent sets the component directive rendered into the element.
func WithComponent(dc *directive.DirectiveClass, vf *view.ViewFactory) ElementOption {
	return func(b *ElementBinder) { b.component = &Component{Directive: dc, ViewFactory: vf} }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) ElementOption {
	return func(b *ElementBinder) { b.logger = l }
}

// NewElementBinder returns a binder configured by opts. Every decorator must
// be of the decorator kind and the component of the component kind.
func NewElementBinder(opts ...ElementOption) (*ElementBinder, error) {
	b := &ElementBinder{scope: scope{logger: hclog.NewNullLogger()}}
	for _, opt := range opts {
		opt(b)
	}
	for _, dc := range b.decorators {
		if err := checkKind(dc, directive.KindDecorator, "decorator"); err != nil {
			return nil, err
		}
	}
	if c := b.component; c != nil {
		if err := checkKind(c.Directive, directive.KindComponent, "component"); err != nil {
			return nil, err
		}
		if c.ViewFactory == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingViewFactory, c.Directive)
		}
	}
	return b, nil
}

// Attrs returns the declared attributes, never nil.
func (b *ElementBinder) Attrs() *types.NodeAttrs {
	return b.nodeAttrs()
}

// Decorators returns the decorator directives.
func (b *ElementBinder) Decorators() []*directive.DirectiveClass {
	return append([]*directive.DirectiveClass(nil), b.decorators...)
}

// Component returns the component slot, or nil.
func (b *ElementBinder) Component() *Component {
	return b.component
}

// Bind creates the scope of element as a child of parent. Attribute
// bindings are wired first, then event listeners, then the decorators are
// instantiated. A component is resolved before a fresh render boundary of
// element is created for its view; a failed Bind leaves no boundary behind.
// The children of element are left alone.
func (b *ElementBinder) Bind(parent *di.Injector, element *html.Node) (*di.Injector, error) {
	providers := make([]di.Provider, 0, len(b.decorators)+1)
	for _, dc := range b.decorators {
		providers = append(providers, dc.Provider())
	}
	if b.component != nil {
		providers = append(providers, b.component.Directive.Provider())
	}
	child, err := b.open(parent, element, providers)
	if err != nil {
		return nil, err
	}

	for _, dc := range b.decorators {
		if _, err := b.instantiate(child, dc); err != nil {
			return nil, err
		}
	}

	if b.component == nil {
		return child, nil
	}
	instance, err := b.instantiate(child, b.component.Directive)
	if err != nil {
		return nil, err
	}
	boundary, err := dom.CreateRenderBoundary(element)
	if err != nil {
		return nil, fmt.Errorf("binder: render boundary: %w", err)
	}
	v, err := b.component.ViewFactory.CreateView(child, instance)
	if err != nil {
		dom.ReleaseRenderBoundary(element)
		return nil, err
	}
	for _, n := range v.Nodes() {
		dom.Detach(n)
		boundary.AppendChild(n)
	}
	b.logger.Trace("component rendered", "directive", b.component.Directive.String(), "nodes", len(v.Nodes()))
	return child, nil
}
