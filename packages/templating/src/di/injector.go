package di

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoProvider is returned when no injector in the chain provides a token.
	ErrNoProvider = errors.New("no provider")

	// ErrCyclicDependency is returned when resolving a token requires itself.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrTypeMismatch is returned by Get when the resolved value is not of the
	// requested type.
	ErrTypeMismatch = errors.New("unexpected type")
)

// InjectorToken resolves to the injector the lookup was made on.
var InjectorToken = TypeOf[*Injector]()

// ResolutionError reports a failed lookup together with the chain of tokens
// that led to it, outermost first.
type ResolutionError struct {
	Path []Token
	Err  error
}

func (e *ResolutionError) Error() string {
	parts := make([]string, len(e.Path))
	for i, t := range e.Path {
		parts[i] = FormatToken(t)
	}
	return fmt.Sprintf("di: resolve %s: %v", strings.Join(parts, " -> "), e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

type registration struct {
	key      string
	provider Provider
}

// Injector is a hierarchical token -> provider registry. Lookups that miss
// locally are delegated to the parent. Each provider is instantiated at most
// once per injector that registers it, even under concurrent Gets. Scoped
// providers are instantiated once per requesting injector instead.
type Injector struct {
	id        string
	parent    *Injector
	providers map[Token]registration

	mu        sync.RWMutex
	instances map[Token]any
	flights   singleflight.Group
}

// New creates a root injector.
func New(providers ...Provider) *Injector {
	return newInjector(nil, providers)
}

func newInjector(parent *Injector, providers []Provider) *Injector {
	inj := &Injector{
		id:        uuid.NewString(),
		parent:    parent,
		providers: make(map[Token]registration, len(providers)),
		instances: make(map[Token]any),
	}
	for i, p := range providers {
		// later providers for the same token win
		inj.providers[p.ProvidedToken()] = registration{key: strconv.Itoa(i), provider: p}
	}
	return inj
}

// CreateChild returns a new injector whose parent is inj.
func (inj *Injector) CreateChild(providers ...Provider) *Injector {
	return newInjector(inj, providers)
}

// Parent returns the parent injector, or nil for a root.
func (inj *Injector) Parent() *Injector {
	return inj.parent
}

// ID returns a unique identifier of this injector, for logs.
func (inj *Injector) ID() string {
	return inj.id
}

// Has reports whether token is provided by inj or one of its ancestors.
func (inj *Injector) Has(token Token) bool {
	if token == InjectorToken {
		return true
	}
	for cur := inj; cur != nil; cur = cur.parent {
		if _, ok := cur.providers[token]; ok {
			return true
		}
	}
	return false
}

// Get resolves token.
func (inj *Injector) Get(token Token) (any, error) {
	return inj.resolve(token, nil)
}

// Get resolves token and asserts the result to T.
func Get[T any](inj *Injector, token Token) (T, error) {
	var zero T
	v, err := inj.Get(token)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &ResolutionError{
			Path: []Token{token},
			Err:  fmt.Errorf("%w: got %T, want %s", ErrTypeMismatch, v, TypeOf[T]()),
		}
	}
	return t, nil
}

func (inj *Injector) resolve(token Token, path []Token) (any, error) {
	// full slice expression so sibling dependencies never share a backing array
	next := append(path[:len(path):len(path)], token)
	for _, t := range path {
		if t == token {
			return nil, &ResolutionError{Path: next, Err: ErrCyclicDependency}
		}
	}
	if token == InjectorToken {
		return inj, nil
	}
	for cur := inj; cur != nil; cur = cur.parent {
		reg, ok := cur.providers[token]
		if !ok {
			continue
		}
		if _, scoped := reg.provider.(scopedProvider); scoped && cur != inj {
			reg.key = "scoped/" + cur.id + "/" + reg.key
			return inj.instantiate(token, reg, next)
		}
		return cur.instantiate(token, reg, next)
	}
	return nil, &ResolutionError{Path: next, Err: ErrNoProvider}
}

func (inj *Injector) instantiate(token Token, reg registration, path []Token) (any, error) {
	if len(reg.provider.Dependencies()) == 0 {
		if _, ok := reg.provider.(*valueProvider); ok {
			v, _ := reg.provider.Instantiate(nil)
			return v, nil
		}
	}
	if v, ok := inj.cached(token); ok {
		return v, nil
	}
	v, err, _ := inj.flights.Do(reg.key, func() (any, error) {
		if v, ok := inj.cached(token); ok {
			return v, nil
		}
		deps := reg.provider.Dependencies()
		args := make([]any, len(deps))
		for i, dep := range deps {
			arg, err := inj.resolve(dep, path)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		v, err := reg.provider.Instantiate(args)
		if err != nil {
			return nil, &ResolutionError{Path: path, Err: err}
		}
		inj.mu.Lock()
		inj.instances[token] = v
		inj.mu.Unlock()
		return v, nil
	})
	return v, err
}

func (inj *Injector) cached(token Token) (any, bool) {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	v, ok := inj.instances[token]
	return v, ok
}
