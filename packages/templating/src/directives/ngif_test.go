package directives_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/compiler"
	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directives"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/event"
	"ngt-go/packages/templating/src/observe"
	"ngt-go/packages/templating/src/view"
)

type fixture struct {
	t        *testing.T
	observer *observe.ObjectObserver
	events   *event.Dispatcher
	root     *html.Node
}

// render compiles markup and renders it against ctx into a fragment.
func render(t *testing.T, markup string, ctx any) *fixture {
	t.Helper()
	reg, err := compiler.NewRegistry(directives.All()...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	f, err := compiler.New(reg).Compile(markup)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	fx := &fixture{
		t:        t,
		observer: observe.NewObjectObserver(ctx),
		events:   event.NewDispatcher(ctx, nil),
		root:     dom.NewFragment(),
	}
	inj := di.New(append(fx.observer.Providers(), fx.events.Providers()...)...)
	v, err := f.CreateView(inj, ctx)
	if err != nil {
		t.Fatalf("CreateView() error = %v", err)
	}
	for _, n := range v.Nodes() {
		fx.root.AppendChild(n)
	}
	return fx
}

func (fx *fixture) digest() {
	fx.t.Helper()
	if _, err := fx.observer.Digest(); err != nil {
		fx.t.Fatalf("Digest() error = %v", err)
	}
}

func (fx *fixture) html() string {
	fx.t.Helper()
	var buf bytes.Buffer
	if err := dom.RenderWithBoundaries(&buf, fx.root); err != nil {
		fx.t.Fatalf("RenderWithBoundaries() error = %v", err)
	}
	return buf.String()
}

func find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestNgIf(t *testing.T) {
	t.Run("should render and remove its view", func(t *testing.T) {
		ctx := map[string]any{"show": true, "name": "ada"}
		fx := render(t, `<div><p ng-if="show">hi <span bind-title="name"></span></p></div>`, ctx)
		if diff := cmp.Diff(`<div><!--template--></div>`, fx.html()); diff != "" {
			t.Errorf("initial mismatch (-want +got):\n%s", diff)
		}

		fx.digest()
		if diff := cmp.Diff(`<div><!--template--><p>hi <span title="ada"></span></p></div>`, fx.html()); diff != "" {
			t.Errorf("shown mismatch (-want +got):\n%s", diff)
		}

		ctx["show"] = false
		fx.digest()
		if diff := cmp.Diff(`<div><!--template--></div>`, fx.html()); diff != "" {
			t.Errorf("hidden mismatch (-want +got):\n%s", diff)
		}

		ctx["show"] = true
		ctx["name"] = "grace"
		fx.digest()
		if diff := cmp.Diff(`<div><!--template--><p>hi <span title="grace"></span></p></div>`, fx.html()); diff != "" {
			t.Errorf("shown again mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should nest", func(t *testing.T) {
		ctx := map[string]any{"a": true, "b": true}
		fx := render(t, `<section ng-if="a"><i ng-if="b">x</i></section>`, ctx)
		fx.digest()
		if diff := cmp.Diff(`<!--template--><section><!--template--><i>x</i></section>`, fx.html()); diff != "" {
			t.Errorf("nested mismatch (-want +got):\n%s", diff)
		}
		ctx["b"] = false
		fx.digest()
		if diff := cmp.Diff(`<!--template--><section><!--template--></section>`, fx.html()); diff != "" {
			t.Errorf("inner hidden mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should release the bindings of removed views", func(t *testing.T) {
		ctx := map[string]any{"show": true, "name": "ada", "inc": func() {}}
		fx := render(t, `<p ng-if="show"><span bind-title="name" on-click="inc"></span></p>`, ctx)
		before := fx.observer.Len()
		fx.digest()
		span := find(fx.root, "span")
		if fx.observer.Len() != before+1 || fx.events.Listeners(span, "click") != 1 {
			t.Fatalf("Expected the view to be bound, got %d watches", fx.observer.Len())
		}
		ctx["show"] = false
		fx.digest()
		if fx.observer.Len() != before {
			t.Errorf("Expected %d watches, got %d", before, fx.observer.Len())
		}
		if n := fx.events.Listeners(span, "click"); n != 0 {
			t.Errorf("Expected no listener, got %d", n)
		}
		if _, ok := dom.Property(span, "title"); ok {
			t.Errorf("Expected the span state to be released")
		}
	})

	t.Run("should return errors from the digest", func(t *testing.T) {
		reg, _ := compiler.NewRegistry(directives.All()...)
		f, err := compiler.New(reg).Compile(`<p ng-if="show">x</p>`)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		ctx := map[string]any{"show": true}
		obs := observe.NewObjectObserver(ctx)
		if _, err := f.CreateView(di.New(obs.Providers()...), ctx); err != nil {
			t.Fatalf("CreateView() error = %v", err)
		}
		if _, err := obs.Digest(); !errors.Is(err, view.ErrDetachedAnchor) {
			t.Errorf("Expected ErrDetachedAnchor, got %v", err)
		}
	})

	t.Run("should wire listeners inside its view", func(t *testing.T) {
		clicks := 0
		ctx := map[string]any{"show": true, "inc": func() { clicks++ }}
		fx := render(t, `<p ng-if="show"><button on-click="inc"></button></p>`, ctx)
		fx.digest()
		btn := find(fx.root, "button")
		if btn == nil {
			t.Fatalf("Expected the button to be rendered")
		}
		if err := fx.events.Dispatch(btn, "click", nil); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if clicks != 1 {
			t.Errorf("Expected 1 click, got %d", clicks)
		}
	})
}

func TestNgIfSet(t *testing.T) {
	setup := func(t *testing.T, anchored bool) (*directives.NgIf, *view.ViewPort, *view.View, *html.Node) {
		t.Helper()
		anchor := dom.NewComment("template")
		t.Cleanup(func() { dom.Release(anchor) })
		if anchored {
			dom.NewFragment().AppendChild(anchor)
		}
		nodes, _ := dom.ParseFragment(`<b>x</b>`)
		parent, err := view.NewViewFactory(nil, nil).CreateView(di.New(), "ctx")
		if err != nil {
			t.Fatalf("CreateView() error = %v", err)
		}
		port := view.NewViewPort(anchor)
		n, err := directives.NewNgIf(view.NewViewFactory(nodes, nil), port, parent, parent.Injector(), anchor)
		if err != nil {
			t.Fatalf("NewNgIf() error = %v", err)
		}
		return n, port, parent, anchor
	}

	t.Run("should never stack views", func(t *testing.T) {
		n, port, parent, _ := setup(t, true)
		for _, v := range []any{true, true, "true", 1.0} {
			if err := n.Set(v); err != nil {
				t.Fatalf("Set(%v) error = %v", v, err)
			}
		}
		if port.Len() != 1 {
			t.Errorf("Expected 1 view, got %d", port.Len())
		}
		if n.View().Parent() != parent || n.View().ExecutionContext() != "ctx" {
			t.Errorf("Expected a child view of the parent view in its context")
		}
	})

	t.Run("should parse attribute strings", func(t *testing.T) {
		n, port, _, _ := setup(t, true)
		_ = n.Set("false")
		if n.Value() || port.Len() != 0 {
			t.Errorf("Expected \"false\" to be falsy")
		}
		_ = n.Set("true")
		if !n.Value() || port.Len() != 1 {
			t.Errorf("Expected \"true\" to be truthy")
		}
		_ = n.Set(nil)
		if n.Value() || port.Len() != 0 || n.View() != nil {
			t.Errorf("Expected nil to remove the view")
		}
		if err := n.Set(false); err != nil {
			t.Errorf("Expected removing nothing to succeed, got %v", err)
		}
	})

	t.Run("should follow the anchor property", func(t *testing.T) {
		n, port, _, anchor := setup(t, true)
		err := dom.SetProperty(anchor, "ngIf", true)
		if port.Len() != 1 || err != nil || n.View() == nil {
			t.Errorf("Expected a view, got %d (%v)", port.Len(), err)
		}
		if err := dom.SetProperty(anchor, "ngIf", false); err != nil || port.Len() != 0 {
			t.Errorf("Expected no view, got %d", port.Len())
		}
	})

	t.Run("should report view port errors", func(t *testing.T) {
		n, _, _, anchor := setup(t, false)
		if err := dom.SetProperty(anchor, "ngIf", true); !errors.Is(err, view.ErrDetachedAnchor) {
			t.Errorf("Expected ErrDetachedAnchor, got %v", err)
		}
		if n.View() != nil {
			t.Errorf("Expected no view")
		}
	})
}
