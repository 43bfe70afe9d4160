// Package compiler turns template markup into view factories: it matches
// the registered directives against every element and builds the element
// and anchor binders of the template.
package compiler

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/binder"
	"ngt-go/packages/templating/src/config"
	"ngt-go/packages/templating/src/directive"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/types"
	"ngt-go/packages/templating/src/view"
)

var (
	// ErrMultipleComponents is returned when more than one component
	// directive matches an element.
	ErrMultipleComponents = errors.New("compiler: multiple component directives on one element")

	// ErrMultipleTemplates is returned when more than one template directive
	// matches an element.
	ErrMultipleTemplates = errors.New("compiler: multiple template directives on one element")

	// ErrTemplateWithComponent is returned when a template and a component
	// directive match the same element.
	ErrTemplateWithComponent = errors.New("compiler: template and component directive on one element")

	// ErrRecursiveComponent is returned when a component's template contains
	// the component itself.
	ErrRecursiveComponent = errors.New("compiler: component renders itself")

	// ErrKindMismatch is the binder's slot/kind error.
	ErrKindMismatch = binder.ErrKindMismatch
)

// Compiler compiles templates against a registry. It is safe for
// concurrent use; component views are compiled once and cached.
type Compiler struct {
	registry *Registry
	config   *config.Config
	logger   hclog.Logger

	mu         sync.Mutex
	components map[*directive.DirectiveClass]*view.ViewFactory
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithConfig sets the attribute prefixes and anchor text.
func WithConfig(cfg *config.Config) Option {
	return func(c *Compiler) { c.config = cfg }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New returns a compiler using registry.
func New(registry *Registry, opts ...Option) *Compiler {
	c := &Compiler{
		registry:   registry,
		config:     config.Default(),
		logger:     hclog.NewNullLogger(),
		components: map[*directive.DirectiveClass]*view.ViewFactory{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile parses markup and compiles it.
func (c *Compiler) Compile(markup string) (*view.ViewFactory, error) {
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("compiler: parse: %w", err)
	}
	return c.compile(nodes, nil, nil)
}

// CompileNodes compiles a copy of nodes.
func (c *Compiler) CompileNodes(nodes []*html.Node) (*view.ViewFactory, error) {
	roots := make([]*html.Node, len(nodes))
	for i, n := range nodes {
		roots[i] = dom.CloneTree(n)
	}
	return c.compile(roots, nil, nil)
}

// compile compiles roots in place. skip is a directive already applied to
// the single root and is matched again everywhere below it. stack holds the
// components being compiled.
func (c *Compiler) compile(roots []*html.Node, skip *directive.DirectiveClass, stack []*directive.DirectiveClass) (*view.ViewFactory, error) {
	w := &walker{c: c, skip: skip, stack: stack}
	if skip != nil && len(roots) > 0 {
		w.skipRoot = roots[0]
	}
	for i := range roots {
		roots[i] = w.visit(roots[i], []int{i})
	}
	if err := w.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return view.NewViewFactory(roots, w.bindings), nil
}

func (c *Compiler) component(dc *directive.DirectiveClass, stack []*directive.DirectiveClass) (*view.ViewFactory, error) {
	if slices.Contains(stack, dc) {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveComponent, dc)
	}
	c.mu.Lock()
	f, ok := c.components[dc]
	c.mu.Unlock()
	if ok {
		return f, nil
	}
	markup, _ := dc.ComponentTemplate()
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("compiler: parse template of %s: %w", dc, err)
	}
	f, err = c.compile(nodes, nil, append(slices.Clone(stack), dc))
	if err != nil {
		return nil, fmt.Errorf("compiler: template of %s: %w", dc, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.components[dc]; ok {
		return cached, nil
	}
	c.components[dc] = f
	c.logger.Debug("component template compiled", "directive", dc.String(), "bindings", len(f.Bindings()))
	return f, nil
}

// splitAttrs removes the binding and event attributes of el and returns them.
func (c *Compiler) splitAttrs(el *html.Node) *types.NodeAttrs {
	bind, event := map[string]string{}, map[string]string{}
	kept := el.Attr[:0]
	for _, a := range el.Attr {
		if name, ok := binding(a.Key, c.config.BindPrefix, '[', ']'); ok {
			bind[name] = a.Val
			continue
		}
		if name, ok := binding(a.Key, c.config.EventPrefix, '(', ')'); ok {
			event[name] = a.Val
			continue
		}
		kept = append(kept, a)
	}
	el.Attr = kept
	return types.NewNodeAttrs(bind, event)
}

// binding reports whether key is prefix+name or open+name+close.
func binding(key, prefix string, open, end byte) (string, bool) {
	if prefix != "" && len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
		return key[len(prefix):], true
	}
	if len(key) > 2 && key[0] == open && key[len(key)-1] == end {
		return key[1 : len(key)-1], true
	}
	return "", false
}

// exportFor maps an attribute name to the export it sets: ng-if sets ngIf.
func exportFor(dc *directive.DirectiveClass, attr string) (string, bool) {
	flat := strings.ReplaceAll(attr, "-", "")
	for _, e := range dc.Annotation.Exports() {
		if strings.EqualFold(flat, e) {
			return e, true
		}
	}
	return "", false
}

type walker struct {
	c        *Compiler
	skip     *directive.DirectiveClass
	skipRoot *html.Node
	stack    []*directive.DirectiveClass

	bindings []view.NodeBinding
	errs     *multierror.Error
}

// visit compiles n and its subtree and returns the node standing in for n.
func (w *walker) visit(n *html.Node, path []int) *html.Node {
	if n.Type != html.ElementNode {
		return n
	}
	if out := w.element(n, path); out != n {
		return out
	}
	for i, child := range dom.Children(n) {
		w.visit(child, append(slices.Clone(path), i))
	}
	return n
}

func (w *walker) fail(n *html.Node, path []int, err error) {
	w.errs = multierror.Append(w.errs, fmt.Errorf("<%s> at %v: %w", n.Data, path, err))
}

func (w *walker) element(n *html.Node, path []int) *html.Node {
	var decorators []*directive.DirectiveClass
	var components, templates []Match
	for _, m := range w.c.registry.Match(n) {
		if m.Directive == w.skip && n == w.skipRoot {
			continue
		}
		switch m.Directive.Kind() {
		case directive.KindDecorator:
			decorators = append(decorators, m.Directive)
		case directive.KindComponent:
			components = append(components, m)
		case directive.KindTemplate:
			templates = append(templates, m)
		}
	}

	failed := false
	if len(components) > 1 {
		w.fail(n, path, fmt.Errorf("%w: %s", ErrMultipleComponents, names(components)))
		failed = true
	}
	if len(templates) > 1 {
		w.fail(n, path, fmt.Errorf("%w: %s", ErrMultipleTemplates, names(templates)))
		failed = true
	}
	if len(templates) > 0 && len(components) > 0 {
		w.fail(n, path, fmt.Errorf("%w: %s", ErrTemplateWithComponent, names(slices.Concat(templates, components))))
		failed = true
	}
	if failed {
		return n
	}
	if len(templates) == 1 {
		return w.template(n, path, templates[0])
	}

	attrs := w.c.splitAttrs(n)
	opts := []binder.ElementOption{binder.WithLogger(w.c.logger)}
	if len(decorators) > 0 {
		opts = append(opts, binder.WithDecorators(decorators...))
	}
	if len(components) == 1 {
		dc := components[0].Directive
		f, err := w.c.component(dc, w.stack)
		if err != nil {
			w.fail(n, path, err)
			return n
		}
		opts = append(opts, binder.WithComponent(dc, f))
	}
	if attrs.IsEmpty() && len(opts) == 1 {
		return n
	}
	if !attrs.IsEmpty() {
		opts = append(opts, binder.WithAttrs(attrs))
	}
	b, err := binder.NewElementBinder(opts...)
	if err != nil {
		w.fail(n, path, err)
		return n
	}
	w.c.logger.Debug("element binder", "element", n.Data, "path", path, "decorators", len(decorators), "component", len(components) == 1)
	w.bindings = append(w.bindings, view.NodeBinding{Path: path, Binder: b})
	return n
}

// template replaces n by an anchor bound to the template directive of m;
// n itself becomes the directive's view.
func (w *walker) template(n *html.Node, path []int, m Match) *html.Node {
	bind := map[string]string{}
	for _, name := range m.Selector.AttrNames() {
		v, ok := dom.Attr(n, name)
		if !ok {
			continue
		}
		dom.RemoveAttr(n, name)
		if export, ok := exportFor(m.Directive, name); ok && v != "" {
			bind[export] = v
		}
	}

	anchor := dom.NewComment(w.c.config.AnchorText)
	if p := n.Parent; p != nil {
		p.InsertBefore(anchor, n)
		p.RemoveChild(n)
	}

	f, err := w.c.compile([]*html.Node{n}, m.Directive, w.stack)
	if err != nil {
		w.errs = multierror.Append(w.errs, err)
		return anchor
	}
	b, err := binder.NewNonElementBinder(
		binder.WithAnchorAttrs(types.NewNodeAttrs(bind, nil)),
		binder.WithTemplate(m.Directive, f),
		binder.WithAnchorLogger(w.c.logger),
	)
	if err != nil {
		w.fail(n, path, err)
		return anchor
	}
	w.c.logger.Debug("template anchor", "directive", m.Directive.String(), "path", path)
	w.bindings = append(w.bindings, view.NodeBinding{Path: path, Binder: b})
	return anchor
}

func names(ms []Match) string {
	s := make([]string, len(ms))
	for i, m := range ms {
		s[i] = m.Directive.String()
	}
	return strings.Join(s, ", ")
}
