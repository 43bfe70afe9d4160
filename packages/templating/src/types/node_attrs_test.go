package types_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngt-go/packages/templating/src/types"
)

func TestNodeAttrs(t *testing.T) {
	t.Run("should not alias the constructor maps", func(t *testing.T) {
		bind := map[string]string{"value": "someExpr"}
		attrs := types.NewNodeAttrs(bind, nil)
		bind["value"] = "changed"
		attrs.Bind()["value"] = "changed too"
		if expr, _ := attrs.BindExpr("value"); expr != "someExpr" {
			t.Errorf("Expected someExpr, got %q", expr)
		}
	})

	t.Run("should list names in sorted order", func(t *testing.T) {
		attrs := types.NewNodeAttrs(
			map[string]string{"b": "1", "a": "2"},
			map[string]string{"keyup": "k", "click": "c"},
		)
		if diff := cmp.Diff([]string{"a", "b"}, attrs.BindNames()); diff != "" {
			t.Errorf("BindNames() mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"click", "keyup"}, attrs.EventNames()); diff != "" {
			t.Errorf("EventNames() mismatch (-want +got):\n%s", diff)
		}
		if expr, ok := attrs.EventExpr("click"); !ok || expr != "c" {
			t.Errorf("Expected click -> c, got %q", expr)
		}
	})

	t.Run("should treat nil and empty as empty", func(t *testing.T) {
		var nilAttrs *types.NodeAttrs
		if !nilAttrs.IsEmpty() || !types.NewNodeAttrs(nil, nil).IsEmpty() {
			t.Errorf("Expected empty attrs")
		}
		if len(nilAttrs.BindNames()) != 0 {
			t.Errorf("Expected no names")
		}
	})
}
