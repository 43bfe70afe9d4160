package binder

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directive"
	"ngt-go/packages/templating/src/types"
	"ngt-go/packages/templating/src/view"
)

// Template is a template directive together with the factory of the views
// it stamps out.
type Template struct {
	Directive   *directive.DirectiveClass
	ViewFactory *view.ViewFactory
}

// NonElementBinder binds an anchor node, usually a comment, to at most one
// template directive. It is immutable once built and safe for concurrent use.
type NonElementBinder struct {
	scope
	template *Template
}

// NonElementOption configures a NonElementBinder.
type NonElementOption func(*NonElementBinder)

// WithAnchorAttrs sets the declared attributes of the anchor.
func WithAnchorAttrs(attrs *types.NodeAttrs) NonElementOption {
	return func(b *NonElementBinder) { b.attrs = attrs }
}

// WithTemplate sets the template directive.
func WithTemplate(dc *directive.DirectiveClass, vf *view.ViewFactory) NonElementOption {
	return func(b *NonElementBinder) { b.template = &Template{Directive: dc, ViewFactory: vf} }
}

// WithAnchorLogger sets the logger.
func WithAnchorLogger(l hclog.Logger) NonElementOption {
	return func(b *NonElementBinder) { b.logger = l }
}

// NewNonElementBinder returns a binder configured by opts.
func NewNonElementBinder(opts ...NonElementOption) (*NonElementBinder, error) {
	b := &NonElementBinder{scope: scope{logger: hclog.NewNullLogger()}}
	for _, opt := range opts {
		opt(b)
	}
	if t := b.template; t != nil {
		if err := checkKind(t.Directive, directive.KindTemplate, "template"); err != nil {
			return nil, err
		}
		if t.ViewFactory == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingViewFactory, t.Directive)
		}
	}
	return b, nil
}

// Attrs returns the declared attributes, never nil.
func (b *NonElementBinder) Attrs() *types.NodeAttrs {
	return b.nodeAttrs()
}

// Template returns the template slot, or nil.
func (b *NonElementBinder) Template() *Template {
	return b.template
}

// Bind creates the scope of anchor as a child of parent. A template
// directive gets a view port on anchor and the configured view factory;
// which views to create is up to the directive.
func (b *NonElementBinder) Bind(parent *di.Injector, anchor *html.Node) (*di.Injector, error) {
	var providers []di.Provider
	if b.template != nil {
		providers = []di.Provider{
			di.Value(view.ViewPortToken, view.NewViewPort(anchor)),
			di.Value(view.ViewFactoryToken, b.template.ViewFactory),
			b.template.Directive.Provider(),
		}
	}
	child, err := b.open(parent, anchor, providers)
	if err != nil {
		return nil, err
	}
	if b.template != nil {
		if _, err := b.instantiate(child, b.template.Directive); err != nil {
			return nil, err
		}
	}
	return child, nil
}

var (
	_ view.Binder = (*ElementBinder)(nil)
	_ view.Binder = (*NonElementBinder)(nil)
)
