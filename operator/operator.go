package operator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/flexquery/schema"
)

var (
	// ErrUnsupported is returned when an operator cannot be applied to a
	// field type or a stored value.
	ErrUnsupported = errors.New("operator not supported")

	// ErrDuplicate is returned when registering a name twice.
	ErrDuplicate = errors.New("operator already registered")
)

// Predicate tests a single stored field value.
// It MUST be safe for concurrent use.
type Predicate func(fieldValue string) (bool, error)

// Args carries a condition's operands into Spec.Compile.
type Args struct {
	// Type is the declared type of the tested field.
	Type schema.FieldType
	// Values are the condition values, in order.
	Values []string
	// Params are the condition params. Unknown keys are present but ignored.
	Params map[string]string
}

// Param returns a parameter by case-insensitive key.
func (a Args) Param(key string) (string, bool) {
	return lookupParam(a.Params, key)
}

func lookupParam(params map[string]string, key string) (string, bool) {
	if v, ok := params[key]; ok {
		return v, true
	}
	for k, v := range params {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Arity is the inclusive number of values an operator accepts.
// Max < 0 means unbounded.
type Arity struct {
	Min int
	Max int
}

// Exactly returns an arity of exactly n values.
func Exactly(n int) Arity { return Arity{Min: n, Max: n} }

// AtLeast returns an arity of n or more values.
func AtLeast(n int) Arity { return Arity{Min: n, Max: -1} }

// Check returns an error if n values do not satisfy the arity.
func (a Arity) Check(n int) error {
	if n < a.Min || (a.Max >= 0 && n > a.Max) {
		return fmt.Errorf("expected %s value(s), got %d", a, n)
	}
	return nil
}

func (a Arity) String() string {
	switch {
	case a.Max < 0:
		return fmt.Sprintf("%d..N", a.Min)
	case a.Min == a.Max:
		return fmt.Sprintf("%d", a.Min)
	default:
		return fmt.Sprintf("%d..%d", a.Min, a.Max)
	}
}

// ParamFunc validates the raw value of a known parameter.
type ParamFunc func(value string) error

// Spec describes one operator.
type Spec struct {
	// Name is the canonical operator name.
	Name string

	// Arity is the number of condition values the operator accepts.
	Arity Arity

	// Supports reports whether the operator applies to a field type.
	// nil means every type is supported.
	Supports func(schema.FieldType) bool

	// Params lists the known parameter keys and their validators.
	// Keys are matched case-insensitively; unlisted keys are ignored.
	Params map[string]ParamFunc

	// DefaultParam is the parameter holding the substitute value for
	// missing fields. Empty means "default".
	DefaultParam string

	// Exact marks operators that match a Keyword field iff the stored
	// value equals one of the condition values byte for byte. Indexes use
	// it to answer such conditions from postings.
	Exact bool

	// Infallible reports whether predicates compiled for a field type never
	// return an error for stored values that are valid for that type.
	// nil means they may fail. Indexes only skip documents when no
	// predicate of the query can fail.
	Infallible func(schema.FieldType) bool

	// Compile pre-parses the condition values into a Predicate. Errors
	// returned from Compile are validation errors.
	Compile func(Args) (Predicate, error)
}

// SupportsType reports whether the operator applies to fields of type t.
func (s *Spec) SupportsType(t schema.FieldType) bool {
	return s.Supports == nil || s.Supports(t)
}

// NeverFails reports whether predicates for fields of type t cannot fail.
func (s *Spec) NeverFails(t schema.FieldType) bool {
	return s.Infallible != nil && s.Infallible(t)
}

// DefaultKey returns the parameter key used for substitute values.
func (s *Spec) DefaultKey() string {
	if s.DefaultParam == "" {
		return "default"
	}
	return s.DefaultParam
}

// CheckArgs validates the value count and every known parameter.
func (s *Spec) CheckArgs(values []string, params map[string]string) error {
	if err := s.Arity.Check(len(values)); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, ok := lookupParam(params, k)
		if !ok {
			continue
		}
		if err := s.Params[k](raw); err != nil {
			return fmt.Errorf("param %q: %w", k, err)
		}
	}
	return nil
}

// Registry is a set of named operator specs.
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register adds a spec under its Name.
func (r *Registry) Register(s Spec) error {
	if s.Name == "" {
		return errors.New("operator name must not be empty")
	}
	if s.Compile == nil {
		return fmt.Errorf("operator %q: Compile must not be nil", s.Name)
	}
	if s.Arity.Min < 0 {
		return fmt.Errorf("operator %q: negative arity", s.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[s.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, s.Name)
	}
	spec := s
	r.specs[s.Name] = &spec
	return nil
}

// MustRegister registers specs and panics on error.
func (r *Registry) MustRegister(specs ...Spec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Alias makes an existing operator reachable under another name.
func (r *Registry) Alias(alias, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.specs[name]
	if !ok {
		return fmt.Errorf("unknown operator %q", name)
	}
	if _, ok := r.specs[alias]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, alias)
	}
	r.specs[alias] = spec
	return nil
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.specs[name]
	return s, ok
}

// Names returns all registered names (aliases included), sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for n := range r.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{specs: make(map[string]*Spec, len(r.specs))}
	for n, s := range r.specs {
		c.specs[n] = s
	}
	return c
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared registry of built-in operators.
// Callers that register their own operators should use NewDefaultRegistry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewDefaultRegistry()
	})
	return defaultReg
}

// NewDefaultRegistry returns a new registry holding the built-in operators.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}
