package directive

import (
	"errors"
	"fmt"
	"regexp"

	"ngt-go/packages/templating/src/css"
)

// Kind is the directive taxonomy: how a binder renders a directive.
type Kind int

const (
	// KindDecorator directives act through injected dependencies and bindings only.
	KindDecorator Kind = iota
	// KindComponent directives render their own view into the element's render boundary.
	KindComponent
	// KindTemplate directives control the views inserted at an anchor node.
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindDecorator:
		return "decorator"
	case KindComponent:
		return "component"
	case KindTemplate:
		return "template"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrInvalidAnnotation is wrapped by every annotation assertion failure.
var ErrInvalidAnnotation = errors.New("invalid directive annotation")

var exportRegexp = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// Args is the metadata declared by a directive.
type Args struct {
	// Selector is the CSS selector matching the nodes the directive applies to.
	Selector string
	// Exports lists the bindable properties of the directive.
	Exports []string
	// Template is the markup of a component's own view. Components only.
	Template string
}

// Annotation is the metadata of a directive of one Kind.
type Annotation interface {
	Kind() Kind
	Selector() string
	Exports() []string
}

type annotation struct {
	kind      Kind
	selector  string
	exports   []string
	selectors []*css.Selector
}

func (a *annotation) Kind() Kind        { return a.kind }
func (a *annotation) Selector() string  { return a.selector }
func (a *annotation) Exports() []string { return append([]string(nil), a.exports...) }

// Selectors returns the parsed selector list, nil when the directive has no
// selector.
func (a *annotation) Selectors() []*css.Selector { return a.selectors }

// DecoratorAnnotation marks a decorator directive.
type DecoratorAnnotation struct{ annotation }

// TemplateAnnotation marks a template directive.
type TemplateAnnotation struct{ annotation }

// ComponentAnnotation marks a component directive.
type ComponentAnnotation struct {
	annotation
	template string
}

// Template returns the markup of the component's view.
func (a *ComponentAnnotation) Template() string { return a.template }

func newAnnotation(kind Kind, args Args) (annotation, error) {
	a := annotation{kind: kind, selector: args.Selector}
	if args.Selector != "" {
		selectors, err := css.Parse(args.Selector)
		if err != nil {
			return a, fmt.Errorf("%w: %s selector %q: %v", ErrInvalidAnnotation, kind, args.Selector, err)
		}
		a.selectors = selectors
	}
	seen := map[string]bool{}
	for _, e := range args.Exports {
		if !exportRegexp.MatchString(e) {
			return a, fmt.Errorf("%w: %s %q: export %q is not an identifier", ErrInvalidAnnotation, kind, args.Selector, e)
		}
		if seen[e] {
			return a, fmt.Errorf("%w: %s %q: duplicate export %q", ErrInvalidAnnotation, kind, args.Selector, e)
		}
		seen[e] = true
	}
	a.exports = append([]string(nil), args.Exports...)
	return a, nil
}

// NewDecorator asserts args and returns a decorator annotation.
func NewDecorator(args Args) (*DecoratorAnnotation, error) {
	if args.Template != "" {
		return nil, fmt.Errorf("%w: decorator %q: only components have a template", ErrInvalidAnnotation, args.Selector)
	}
	a, err := newAnnotation(KindDecorator, args)
	if err != nil {
		return nil, err
	}
	return &DecoratorAnnotation{a}, nil
}

// NewTemplate asserts args and returns a template annotation.
func NewTemplate(args Args) (*TemplateAnnotation, error) {
	if args.Template != "" {
		return nil, fmt.Errorf("%w: template directive %q: only components have a template", ErrInvalidAnnotation, args.Selector)
	}
	a, err := newAnnotation(KindTemplate, args)
	if err != nil {
		return nil, err
	}
	return &TemplateAnnotation{a}, nil
}

// NewComponent asserts args and returns a component annotation.
func NewComponent(args Args) (*ComponentAnnotation, error) {
	a, err := newAnnotation(KindComponent, args)
	if err != nil {
		return nil, err
	}
	return &ComponentAnnotation{annotation: a, template: args.Template}, nil
}

// MustDecorator is like NewDecorator but panics on invalid args.
func MustDecorator(args Args) *DecoratorAnnotation { return must(NewDecorator(args)) }

// MustTemplate is like NewTemplate but panics on invalid args.
func MustTemplate(args Args) *TemplateAnnotation { return must(NewTemplate(args)) }

// MustComponent is like NewComponent but panics on invalid args.
func MustComponent(args Args) *ComponentAnnotation { return must(NewComponent(args)) }

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
