// Package binder wires a single DOM node of an instantiated template into a
// new injector scope: the node and its declared attributes, attribute
// observation, event listeners and the directives matched on the node.
package binder

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directive"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/event"
	"ngt-go/packages/templating/src/observe"
	"ngt-go/packages/templating/src/types"
)

// ErrKindMismatch is returned when a directive is configured in a slot that
// does not accept its kind.
var ErrKindMismatch = errors.New("binder: directive kind does not match its slot")

var emptyAttrs = types.NewNodeAttrs(nil, nil)

// scope holds what both binders do before their directives are built.
type scope struct {
	attrs  *types.NodeAttrs
	logger hclog.Logger
}

func (s *scope) nodeAttrs() *types.NodeAttrs {
	if s.attrs == nil {
		return emptyAttrs
	}
	return s.attrs
}

// open creates the child scope of parent providing node, the node attrs and
// extra, then wires the attribute bindings and event listeners of node.
func (s *scope) open(parent *di.Injector, node *html.Node, extra []di.Provider) (*di.Injector, error) {
	providers := append([]di.Provider{
		di.Value(dom.NodeToken, node),
		di.Value(types.NodeAttrsToken, s.nodeAttrs()),
	}, extra...)
	child := parent.CreateChild(providers...)
	log := s.logger.With("node", node.Data, "injector", child.ID())
	log.Trace("scope created", "parent", parent.ID())

	if names := s.attrs.BindNames(); len(names) > 0 {
		obs, err := di.Get[observe.Observer](child, observe.ObserverToken)
		if err != nil {
			return nil, fmt.Errorf("binder: resolve observer: %w", err)
		}
		for _, name := range names {
			expr, _ := s.attrs.BindExpr(name)
			if err := obs.BindNode(expr, node, []string{}, name); err != nil {
				return nil, fmt.Errorf("binder: bind %q to %q: %w", expr, name, err)
			}
			log.Trace("property bound", "property", name, "expression", expr)
		}
	}

	if names := s.attrs.EventNames(); len(names) > 0 {
		h, err := di.Get[event.Handler](child, event.HandlerToken)
		if err != nil {
			return nil, fmt.Errorf("binder: resolve event handler: %w", err)
		}
		for _, name := range names {
			expr, _ := s.attrs.EventExpr(name)
			if err := h.Listen(node, name, expr); err != nil {
				return nil, fmt.Errorf("binder: listen %q on %q: %w", expr, name, err)
			}
			log.Trace("listener attached", "event", name, "expression", expr)
		}
	}
	return child, nil
}

func (s *scope) instantiate(child *di.Injector, dc *directive.DirectiveClass) (any, error) {
	v, err := child.Get(dc.Token())
	if err != nil {
		return nil, fmt.Errorf("binder: resolve %s: %w", dc, err)
	}
	s.logger.Trace("directive created", "directive", dc.String(), "injector", child.ID())
	return v, nil
}

func checkKind(dc *directive.DirectiveClass, want directive.Kind, slot string) error {
	if dc == nil {
		return fmt.Errorf("%w: nil directive in %s slot", ErrKindMismatch, slot)
	}
	if dc.Kind() != want {
		return fmt.Errorf("%w: %s in %s slot", ErrKindMismatch, dc, slot)
	}
	return nil
}
