package di

import (
	"fmt"
	"reflect"
)

// Token identifies something resolvable from an Injector.
// A token is either a reflect.Type (see TypeOf) or a string key such as
// "executionContext". Tokens must be comparable.
type Token any

// TypeOf returns the token for type T. Interface types are supported:
// TypeOf[io.Reader]() is the token of the io.Reader interface itself.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provider tells an Injector how to produce the value for a token.
type Provider interface {
	// ProvidedToken returns the token this provider registers.
	ProvidedToken() Token

	// Dependencies returns the tokens that must be resolved before Instantiate
	// is called. The resolved values are passed in the same order.
	Dependencies() []Token

	// Instantiate builds the value from its resolved dependencies.
	Instantiate(args []any) (any, error)
}

// valueProvider registers an already constructed value.
type valueProvider struct {
	token Token
	value any
}

// Value returns a provider that always resolves token to v, as-is.
func Value(token Token, v any) Provider {
	return &valueProvider{token: token, value: v}
}

func (p *valueProvider) ProvidedToken() Token { return p.token }
func (p *valueProvider) Dependencies() []Token { return nil }
func (p *valueProvider) Instantiate([]any) (any, error) { return p.value, nil }

// Class is a constructable type together with its declared dependency list.
// New receives the resolved dependencies in the order of Deps.
type Class struct {
	Token Token
	Deps  []Token
	New   func(args ...any) (any, error)
}

// ProvidedToken returns the token instances of the class are cached under.
func (c Class) ProvidedToken() Token { return c.Token }

// Dependencies returns the declared dependency list.
func (c Class) Dependencies() []Token { return c.Deps }

// Instantiate calls New with the resolved dependencies.
func (c Class) Instantiate(args []any) (any, error) {
	if c.New == nil {
		return nil, fmt.Errorf("class %s has no constructor", FormatToken(c.Token))
	}
	return c.New(args...)
}

// Factory returns a provider that builds the value for token by calling fn
// with the resolved deps.
func Factory(token Token, deps []Token, fn func(args ...any) (any, error)) Provider {
	return Class{Token: token, Deps: deps, New: fn}
}

// scopedProvider marks a provider whose value is built per requesting
// injector instead of once in the injector that registers it.
type scopedProvider struct {
	Provider
}

// Scoped wraps p so that every injector resolving its token through the
// registering injector gets its own instance, built from dependencies
// resolved in the requesting injector. Typical use is a service that needs
// the execution context of the view asking for it.
func Scoped(p Provider) Provider {
	return scopedProvider{Provider: p}
}

// FormatToken renders a token for error and log messages.
func FormatToken(t Token) string {
	switch tok := t.(type) {
	case reflect.Type:
		return tok.String()
	case string:
		return fmt.Sprintf("%q", tok)
	default:
		return fmt.Sprintf("%v", tok)
	}
}
