package directive

import (
	"fmt"

	"ngt-go/packages/templating/src/css"
	"ngt-go/packages/templating/src/di"
)

// DirectiveClass pairs a directive's metadata with its constructor.
type DirectiveClass struct {
	Annotation Annotation
	Class      di.Class
}

// NewDirectiveClass returns the descriptor of a directive. The class token
// defaults to a unique token per descriptor when c.Token is nil.
func NewDirectiveClass(a Annotation, c di.Class) *DirectiveClass {
	dc := &DirectiveClass{Annotation: a, Class: c}
	if dc.Class.Token == nil {
		dc.Class.Token = dc
	}
	return dc
}

// Kind returns the kind declared by the annotation.
func (dc *DirectiveClass) Kind() Kind {
	return dc.Annotation.Kind()
}

// Token returns the token the directive instance is registered under in the
// binding scope.
func (dc *DirectiveClass) Token() di.Token {
	return dc.Class.Token
}

// Deps returns the constructor's declared dependency list.
func (dc *DirectiveClass) Deps() []di.Token {
	return append([]di.Token(nil), dc.Class.Deps...)
}

// Selectors returns the parsed selector list of the annotation.
func (dc *DirectiveClass) Selectors() []*css.Selector {
	if s, ok := dc.Annotation.(interface{ Selectors() []*css.Selector }); ok {
		return s.Selectors()
	}
	return nil
}

// ComponentTemplate returns the markup of a component's view.
func (dc *DirectiveClass) ComponentTemplate() (string, bool) {
	c, ok := dc.Annotation.(*ComponentAnnotation)
	if !ok {
		return "", false
	}
	return c.Template(), true
}

func (dc *DirectiveClass) String() string {
	if dc.Class.Token == di.Token(dc) {
		return fmt.Sprintf("%s %q", dc.Kind(), dc.Annotation.Selector())
	}
	return fmt.Sprintf("%s %q (%s)", dc.Kind(), dc.Annotation.Selector(), di.FormatToken(dc.Class.Token))
}

// Provider returns the provider building the directive in a binding scope.
func (dc *DirectiveClass) Provider() di.Provider {
	return dc.Class
}
