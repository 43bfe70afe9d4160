package types

import (
	"maps"
	"slices"

	"ngt-go/packages/templating/src/di"
)

// NodeAttrsToken is the DI token under which a binder registers the
// declared attributes of its node.
var NodeAttrsToken = di.TypeOf[*NodeAttrs]()

// NodeAttrs is the immutable description of a node's declared bindings:
// property name -> expression, and event name -> expression.
type NodeAttrs struct {
	bind  map[string]string
	event map[string]string
}

// NewNodeAttrs copies bind and event into a new NodeAttrs. Either may be nil.
func NewNodeAttrs(bind, event map[string]string) *NodeAttrs {
	return &NodeAttrs{
		bind:  maps.Clone(bind),
		event: maps.Clone(event),
	}
}

// Bind returns a copy of the property bindings.
func (a *NodeAttrs) Bind() map[string]string {
	if a == nil {
		return nil
	}
	return maps.Clone(a.bind)
}

// Event returns a copy of the event bindings.
func (a *NodeAttrs) Event() map[string]string {
	if a == nil {
		return nil
	}
	return maps.Clone(a.event)
}

// BindExpr returns the expression bound to a property.
func (a *NodeAttrs) BindExpr(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	expr, ok := a.bind[name]
	return expr, ok
}

// EventExpr returns the expression bound to an event.
func (a *NodeAttrs) EventExpr(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	expr, ok := a.event[name]
	return expr, ok
}

// BindNames returns the bound property names, sorted.
func (a *NodeAttrs) BindNames() []string {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.bind))
}

// EventNames returns the bound event names, sorted.
func (a *NodeAttrs) EventNames() []string {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.event))
}

// IsEmpty reports whether there are no bindings at all.
func (a *NodeAttrs) IsEmpty() bool {
	return a == nil || (len(a.bind) == 0 && len(a.event) == 0)
}
