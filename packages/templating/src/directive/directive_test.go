package directive_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directive"
	"ngt-go/packages/templating/src/dom"
)

type tooltip struct{}

func TestAnnotations(t *testing.T) {
	t.Run("should keep selector and exports", func(t *testing.T) {
		a, err := directive.NewTemplate(directive.Args{Selector: "[ng-if]", Exports: []string{"ngIf"}})
		if err != nil {
			t.Fatalf("NewTemplate() error = %v", err)
		}
		if a.Kind() != directive.KindTemplate || a.Selector() != "[ng-if]" {
			t.Errorf("Expected template [ng-if], got %s %q", a.Kind(), a.Selector())
		}
		if diff := cmp.Diff([]string{"ngIf"}, a.Exports()); diff != "" {
			t.Errorf("Exports() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should accept empty metadata", func(t *testing.T) {
		if _, err := directive.NewDecorator(directive.Args{}); err != nil {
			t.Errorf("NewDecorator() error = %v", err)
		}
	})

	t.Run("should assert metadata eagerly", func(t *testing.T) {
		bad := []func() error{
			func() error { _, err := directive.NewDecorator(directive.Args{Selector: ":not(:not(a))"}); return err },
			func() error { _, err := directive.NewComponent(directive.Args{Exports: []string{"a-b"}}); return err },
			func() error { _, err := directive.NewTemplate(directive.Args{Exports: []string{"x", "x"}}); return err },
			func() error { _, err := directive.NewDecorator(directive.Args{Template: "<p></p>"}); return err },
		}
		for i, f := range bad {
			if err := f(); !errors.Is(err, directive.ErrInvalidAnnotation) {
				t.Errorf("case %d: Expected ErrInvalidAnnotation, got %v", i, err)
			}
		}
	})

	t.Run("should panic in Must variants", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("Expected a panic")
			}
		}()
		directive.MustComponent(directive.Args{Exports: []string{""}})
	})
}

func TestDirectiveClass(t *testing.T) {
	t.Run("should expose the dependency list", func(t *testing.T) {
		token := di.TypeOf[*tooltip]()
		dc := directive.NewDirectiveClass(
			directive.MustDecorator(directive.Args{Selector: "[tooltip]"}),
			di.Class{Token: token, Deps: []di.Token{dom.NodeToken}, New: func(...any) (any, error) { return &tooltip{}, nil }},
		)
		deps := dc.Deps()
		if len(deps) != 1 || deps[0] != dom.NodeToken {
			t.Errorf("Expected [NodeToken], got %v", deps)
		}
		if dc.Token() != token || dc.Kind() != directive.KindDecorator {
			t.Errorf("Expected decorator with the class token")
		}
		if len(dc.Selectors()) != 1 {
			t.Errorf("Expected one parsed selector")
		}
	})

	t.Run("should default to a unique token", func(t *testing.T) {
		a := directive.MustComponent(directive.Args{Selector: "x-a", Template: "<b></b>"})
		newFn := func(...any) (any, error) { return &tooltip{}, nil }
		d1 := directive.NewDirectiveClass(a, di.Class{New: newFn})
		d2 := directive.NewDirectiveClass(a, di.Class{New: newFn})
		if d1.Token() == nil || d1.Token() == d2.Token() {
			t.Errorf("Expected distinct non-nil tokens")
		}
		if tmpl, ok := d1.ComponentTemplate(); !ok || tmpl != "<b></b>" {
			t.Errorf("Expected the component template, got %q", tmpl)
		}
	})
}
