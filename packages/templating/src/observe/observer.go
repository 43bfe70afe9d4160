// Package observe is the expression-observation service binders wire node
// properties to. ObjectObserver is a reference implementation evaluating
// JMESPath expressions against execution contexts on every Digest.
package observe

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/jmespath/go-jmespath"
	"golang.org/x/net/html"

	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/view"
)

// Observer wires an expression to a node property: whenever the value of
// expression changes, targetProperty on node is updated. contextPath selects
// a nested context and is empty for direct node bindings.
type Observer interface {
	BindNode(expression string, node *html.Node, contextPath []string, targetProperty string) error
}

var (
	// ObserverToken resolves to the Observer of the requesting scope.
	ObserverToken = di.TypeOf[Observer]()
	// ObjectObserverToken resolves to the shared *ObjectObserver.
	ObjectObserverToken = di.TypeOf[*ObjectObserver]()
)

// DefaultMaxPasses bounds the number of passes a Digest makes before giving up.
const DefaultMaxPasses = 10

// ErrUnstable is returned when a digest keeps producing changes.
var ErrUnstable = errors.New("observe: digest did not stabilise")

type watch struct {
	source  string
	expr    *jmespath.JMESPath
	path    *jmespath.JMESPath
	context any
	node    *html.Node
	prop    string

	primed   bool
	last     any
	released bool
}

// ObjectObserver owns the watches of a rendered tree.
type ObjectObserver struct {
	context   any
	logger    hclog.Logger
	maxPasses int

	mu      sync.Mutex
	watches []*watch
}

// Option configures an ObjectObserver.
type Option func(*ObjectObserver)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *ObjectObserver) { o.logger = l }
}

// WithMaxPasses overrides DefaultMaxPasses.
func WithMaxPasses(n int) Option {
	return func(o *ObjectObserver) { o.maxPasses = n }
}

// NewObjectObserver returns an observer whose own BindNode evaluates against
// context.
func NewObjectObserver(context any, opts ...Option) *ObjectObserver {
	o := &ObjectObserver{
		context:   context,
		logger:    hclog.NewNullLogger(),
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BindNode registers a watch evaluated against the observer's root context.
func (o *ObjectObserver) BindNode(expression string, node *html.Node, contextPath []string, targetProperty string) error {
	return o.bind(o.context, expression, node, contextPath, targetProperty)
}

// ForContext returns an Observer registering watches evaluated against ctx.
func (o *ObjectObserver) ForContext(ctx any) Observer {
	return &contextObserver{root: o, context: ctx}
}

// Providers registers o and a scoped Observer that evaluates against the
// execution context of whichever scope requests it.
func (o *ObjectObserver) Providers() []di.Provider {
	return []di.Provider{
		di.Value(ObjectObserverToken, o),
		di.Scoped(di.Factory(ObserverToken, []di.Token{view.ExecutionContextToken}, func(args ...any) (any, error) {
			return o.ForContext(args[0]), nil
		})),
	}
}

func (o *ObjectObserver) bind(ctx any, expression string, node *html.Node, contextPath []string, prop string) error {
	expr, err := jmespath.Compile(expression)
	if err != nil {
		return fmt.Errorf("observe: compile %q: %w", expression, err)
	}
	w := &watch{source: expression, expr: expr, context: ctx, node: node, prop: prop}
	if len(contextPath) > 0 {
		joined := strings.Join(contextPath, ".")
		if w.path, err = jmespath.Compile(joined); err != nil {
			return fmt.Errorf("observe: compile context path %q: %w", joined, err)
		}
	}
	o.mu.Lock()
	o.watches = append(o.watches, w)
	o.mu.Unlock()
	dom.OnRelease(node, func() { o.drop(w) })
	o.logger.Trace("watch registered", "expression", expression, "property", prop, "node", node.Data)
	return nil
}

// drop removes w once its node is released.
func (o *ObjectObserver) drop(w *watch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w.released = true
	o.watches = slices.DeleteFunc(o.watches, func(x *watch) bool { return x == w })
}

// Len returns the number of registered watches.
func (o *ObjectObserver) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.watches)
}

type change struct {
	w     *watch
	value any
}

// Digest evaluates every watch and pushes changed values to their nodes.
// Callbacks run by the updates may register new watches; passes repeat until
// nothing changes. It returns the number of property updates made. Errors of
// change callbacks are collected and returned once the pass completes.
// Digest must not run concurrently with itself.
func (o *ObjectObserver) Digest() (int, error) {
	total := 0
	for pass := 0; pass < o.maxPasses; pass++ {
		o.mu.Lock()
		watches := append([]*watch(nil), o.watches...)
		o.mu.Unlock()

		var changes []change
		var errs *multierror.Error
		for _, w := range watches {
			v, err := w.evaluate()
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			if w.primed && reflect.DeepEqual(v, w.last) {
				continue
			}
			w.primed, w.last = true, v
			changes = append(changes, change{w: w, value: v})
		}
		if err := errs.ErrorOrNil(); err != nil {
			return total, err
		}
		if len(changes) == 0 {
			o.logger.Trace("digest stable", "passes", pass+1, "updates", total)
			return total, nil
		}
		for _, c := range changes {
			if o.isReleased(c.w) {
				continue
			}
			if err := dom.SetProperty(c.w.node, c.w.prop, c.value); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("observe: apply %q: %w", c.w.source, err))
			}
		}
		total += len(changes)
		if err := errs.ErrorOrNil(); err != nil {
			return total, err
		}
	}
	return total, fmt.Errorf("%w after %d passes", ErrUnstable, o.maxPasses)
}

func (o *ObjectObserver) isReleased(w *watch) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return w.released
}

func (w *watch) evaluate() (any, error) {
	ctx := w.context
	if w.path != nil {
		nested, err := w.path.Search(ctx)
		if err != nil {
			return nil, fmt.Errorf("observe: evaluate context path for %q: %w", w.source, err)
		}
		ctx = nested
	}
	v, err := w.expr.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: evaluate %q: %w", w.source, err)
	}
	return v, nil
}

type contextObserver struct {
	root    *ObjectObserver
	context any
}

func (c *contextObserver) BindNode(expression string, node *html.Node, contextPath []string, targetProperty string) error {
	return c.root.bind(c.context, expression, node, contextPath, targetProperty)
}
