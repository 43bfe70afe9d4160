// Package event is the event-dispatch service binders attach listeners to.
package event

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/jmespath/go-jmespath"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/view"
)

// Handler attaches an expression to an event of a node: whenever eventName
// fires on node, expression is evaluated against the current scope.
type Handler interface {
	Listen(node *html.Node, eventName, expression string) error
}

var (
	// HandlerToken resolves to the Handler of the requesting scope.
	HandlerToken = di.TypeOf[Handler]()
	// DispatcherToken resolves to the shared *Dispatcher.
	DispatcherToken = di.TypeOf[*Dispatcher]()
)

// ErrNotCallable is returned when a listener expression does not evaluate
// to a function.
var ErrNotCallable = errors.New("event: expression is not callable")

// Event is what a listener function receives.
type Event struct {
	Name    string
	Target  *html.Node
	Payload any
}

type listener struct {
	source  string
	expr    *jmespath.JMESPath
	context any
}

type key struct {
	node *html.Node
	name string
}

// Dispatcher is a reference Handler. Listener expressions are JMESPath
// expressions that must select a function in the execution context: a
// func(), func(Event) or func(Event) error.
type Dispatcher struct {
	context any
	logger  hclog.Logger

	mu        sync.Mutex
	listeners map[key][]listener
}

// NewDispatcher returns a dispatcher whose own Listen evaluates against context.
func NewDispatcher(context any, logger hclog.Logger) *Dispatcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{context: context, logger: logger, listeners: map[key][]listener{}}
}

// Listen registers a listener evaluated against the dispatcher's root context.
func (d *Dispatcher) Listen(node *html.Node, eventName, expression string) error {
	return d.listen(d.context, node, eventName, expression)
}

// ForContext returns a Handler registering listeners evaluated against ctx.
func (d *Dispatcher) ForContext(ctx any) Handler {
	return handlerFunc(func(node *html.Node, eventName, expression string) error {
		return d.listen(ctx, node, eventName, expression)
	})
}

// Providers registers d and a scoped Handler bound to the execution context
// of the requesting scope.
func (d *Dispatcher) Providers() []di.Provider {
	return []di.Provider{
		di.Value(DispatcherToken, d),
		di.Scoped(di.Factory(HandlerToken, []di.Token{view.ExecutionContextToken}, func(args ...any) (any, error) {
			return d.ForContext(args[0]), nil
		})),
	}
}

func (d *Dispatcher) listen(ctx any, node *html.Node, eventName, expression string) error {
	expr, err := jmespath.Compile(expression)
	if err != nil {
		return fmt.Errorf("event: compile %q: %w", expression, err)
	}
	d.mu.Lock()
	k := key{node: node, name: eventName}
	first := len(d.listeners[k]) == 0
	d.listeners[k] = append(d.listeners[k], listener{source: expression, expr: expr, context: ctx})
	d.mu.Unlock()
	if first {
		dom.OnRelease(node, func() { d.forget(k) })
	}
	d.logger.Trace("listener registered", "event", eventName, "expression", expression, "node", node.Data)
	return nil
}

// Dispatch fires eventName on node, invoking every listener in registration
// order. The first failing listener stops the dispatch.
func (d *Dispatcher) Dispatch(node *html.Node, eventName string, payload any) error {
	d.mu.Lock()
	ls := append([]listener(nil), d.listeners[key{node: node, name: eventName}]...)
	d.mu.Unlock()

	ev := Event{Name: eventName, Target: node, Payload: payload}
	for _, l := range ls {
		v, err := l.expr.Search(l.context)
		if err != nil {
			return fmt.Errorf("event: evaluate %q: %w", l.source, err)
		}
		switch fn := v.(type) {
		case func():
			fn()
		case func(Event):
			fn(ev)
		case func(Event) error:
			if err := fn(ev); err != nil {
				return fmt.Errorf("event: %s listener %q: %w", eventName, l.source, err)
			}
		default:
			return fmt.Errorf("%w: %q evaluated to %T", ErrNotCallable, l.source, v)
		}
	}
	return nil
}

func (d *Dispatcher) forget(k key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, k)
}

// Listeners returns the number of listeners for eventName on node.
func (d *Dispatcher) Listeners(node *html.Node, eventName string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[key{node: node, name: eventName}])
}

type handlerFunc func(node *html.Node, eventName, expression string) error

func (f handlerFunc) Listen(node *html.Node, eventName, expression string) error {
	return f(node, eventName, expression)
}
