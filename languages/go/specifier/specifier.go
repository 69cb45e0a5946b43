// Package specifier holds the registry of field types that can be packed. A Specifier binds
// a type name to its width in bits, the native container its raw bits fit in, and the pair
// of conversions between the container and the value a caller works with.
//
// Every Registry starts with the built in specifiers:
//
//   - "B0" through "B64": plain unsigned integers of that many bits. The Go value is the
//     container type, so "B3" is a uint8 and "B17" a uint32.
//   - "bool": 1 bit, true is 1 and false is 0.
//
// Enumerated types are added with DeriveEnum() and Registry.Register().
package specifier

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/gostdlib/base/concurrency/sync"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/field"
)

// MaxBits is the widest field a Specifier can describe.
const MaxBits = 64

// ToContainerFn converts a caller's value into the raw bits stored for a field.
type ToContainerFn func(v any) (uint64, error)

// FromContainerFn converts the raw bits of a field into the caller's value.
type FromContainerFn func(repr uint64) (any, error)

// Specifier describes a field type. Specifiers are read-only once created.
type Specifier struct {
	// Name is the name fields use to refer to this type.
	Name string
	// Bits is the number of bits the type packs into.
	Bits int
	// Container is the smallest native width that holds Bits bits.
	Container field.NativeWidth
	// Type is the kind of value the bits are interpreted as.
	Type field.Type
	// Enum is set when Type == field.FTEnum.
	Enum *Enum

	to   ToContainerFn
	from FromContainerFn
}

// Custom creates a Specifier with caller provided conversions. to must never return a value
// with bits set above bits, from must accept every value to can return.
func Custom(name string, bits int, typ field.Type, to ToContainerFn, from FromContainerFn) (*Specifier, error) {
	if to == nil || from == nil {
		return nil, errors.Errorf(errors.KindInvalidLayout, name, "specifier must have both conversions")
	}
	if bits < 0 || bits > MaxBits {
		return nil, errors.Errorf(errors.KindUnsupportedWidth, name, "width %d is not in [0, %d]", bits, MaxBits)
	}
	w, err := field.BestFit(bits)
	if err != nil {
		return nil, errors.WithName(err, name)
	}
	return &Specifier{Name: name, Bits: bits, Container: w, Type: typ, to: to, from: from}, nil
}

// ToContainer converts v to the raw bits for the type.
func (s *Specifier) ToContainer(v any) (uint64, error) {
	return s.to(v)
}

// FromContainer converts raw bits to a value of the type. repr must fit in Bits bits.
func (s *Specifier) FromContainer(repr uint64) (any, error) {
	if s.Bits < 64 && repr>>uint(s.Bits) != 0 {
		return nil, errors.Errorf(errors.KindMalformedRepr, s.Name, "%d does not fit in %d bits", repr, s.Bits)
	}
	return s.from(repr)
}

// String implements fmt.Stringer.
func (s *Specifier) String() string {
	return fmt.Sprintf("%s(%d bits, %s)", s.Name, s.Bits, s.Container)
}

// Primitive returns the specifier for an n bit unsigned integer. n must be in [0, 64].
func Primitive(n int) (*Specifier, error) {
	if n < 0 || n > MaxBits {
		return nil, errors.Errorf(errors.KindUnsupportedWidth, "", "primitive width %d is not in [0, %d]", n, MaxBits)
	}
	w := field.MustBestFit(n)
	name := PrimitiveName(n)
	return &Specifier{
		Name:      name,
		Bits:      n,
		Container: w,
		Type:      field.FTUint,
		to: func(v any) (uint64, error) {
			u, ok := Uint64(v)
			if !ok {
				return 0, errors.Errorf(errors.KindTypeMismatch, "", "%s takes an unsigned integer, got %T", name, v)
			}
			return u, nil
		},
		from: func(repr uint64) (any, error) {
			return Native(w, repr), nil
		},
	}, nil
}

// PrimitiveName is the registered name of an n bit unsigned integer.
func PrimitiveName(n int) string {
	return "B" + strconv.Itoa(n)
}

// BoolName is the registered name of the boolean type.
const BoolName = "bool"

// Bool returns the specifier for a boolean.
func Bool() *Specifier {
	return &Specifier{
		Name:      BoolName,
		Bits:      1,
		Container: field.W8,
		Type:      field.FTBool,
		to: func(v any) (uint64, error) {
			b, ok := v.(bool)
			if !ok {
				return 0, errors.Errorf(errors.KindTypeMismatch, "", "bool takes a bool, got %T", v)
			}
			if b {
				return 1, nil
			}
			return 0, nil
		},
		from: func(repr uint64) (any, error) {
			switch repr {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
			return nil, errors.Errorf(errors.KindMalformedRepr, BoolName, "invalid internal representation %d", repr)
		},
	}
}

// Native converts repr to the Go type of the container width: uint8, uint16, uint32 or uint64.
func Native(w field.NativeWidth, repr uint64) any {
	switch w {
	case field.W8:
		return uint8(repr)
	case field.W16:
		return uint16(repr)
	case field.W32:
		return uint32(repr)
	}
	return repr
}

// Uint64 returns v as a uint64 if v is an unsigned integer or a non-negative signed integer,
// including named types with those underlying types.
func Uint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uint:
		return uint64(x), true
	case int:
		return uint64(x), x >= 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		return uint64(i), i >= 0
	}
	return 0, false
}

// Registry holds Specifiers by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Specifier
}

// NewRegistry returns a Registry holding the built in specifiers.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]*Specifier, MaxBits+2)}
	for n := 0; n <= MaxBits; n++ {
		s, err := Primitive(n)
		if err != nil {
			panic(err) // Can't happen, n is always in range.
		}
		r.specs[s.Name] = s
	}
	b := Bool()
	r.specs[b.Name] = b
	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default is the Registry used when no other is given.
func Default() *Registry {
	return defaultRegistry()
}

// Register adds s to the registry. Registering a second specifier with the same name fails.
func (r *Registry) Register(s *Specifier) error {
	if err := validate(s); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[s.Name]; ok {
		return errors.Errorf(errors.KindDuplicateSpecifier, s.Name, "already registered")
	}
	r.specs[s.Name] = s
	return nil
}

// Lookup returns the Specifier registered as name.
func (r *Registry) Lookup(name string) (*Specifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.specs[name]
	if !ok {
		return nil, errors.Errorf(errors.KindUnknownSpecifier, name, "not registered")
	}
	return s, nil
}

// Names returns the sorted names of all registered specifiers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the registry. Specifiers are shared, they are read-only.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := &Registry{specs: make(map[string]*Specifier, len(r.specs))}
	for k, v := range r.specs {
		n.specs[k] = v
	}
	return n
}

func validate(s *Specifier) error {
	switch {
	case s == nil:
		return errors.Errorf(errors.KindInvalidLayout, "", "nil specifier")
	case s.Name == "":
		return errors.Errorf(errors.KindInvalidLayout, "", "specifier must have a name")
	case s.to == nil || s.from == nil:
		return errors.Errorf(errors.KindInvalidLayout, s.Name, "specifier must have both conversions, use Custom() to create one")
	case s.Bits < 0 || s.Bits > MaxBits:
		return errors.Errorf(errors.KindUnsupportedWidth, s.Name, "width %d is not in [0, %d]", s.Bits, MaxBits)
	}
	if want := field.MustBestFit(s.Bits); s.Container != want {
		return errors.Errorf(errors.KindInvalidLayout, s.Name, "container %s is not the best fit for %d bits, want %s", s.Container, s.Bits, want)
	}
	return nil
}
