package specifier

import (
	"math/bits"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/field"
)

// Variant declares one value of an enumerated type.
type Variant struct {
	// Name is the name of the variant.
	Name string
	// Discriminant is the packed value of the variant. If nil, the variant's position in
	// the declaration is used.
	Discriminant *uint64
}

// Bare returns a Variant whose discriminant is its position.
func Bare(name string) Variant {
	return Variant{Name: name}
}

// Explicit returns a Variant with discriminant d.
func Explicit(name string, d uint64) Variant {
	return Variant{Name: name, Discriminant: &d}
}

// EnumValue is the value of an enum field.
type EnumValue struct {
	// Enum is the name of the enumerated type.
	Enum string
	// Name is the name of the variant.
	Name string
	// Discriminant is the packed value of the variant.
	Discriminant uint64
}

// String implements fmt.Stringer.
func (e EnumValue) String() string {
	return e.Enum + "." + e.Name
}

// Enum is the mapping between the variants of an enumerated type and their packed values.
type Enum struct {
	// Name is the name of the enumerated type.
	Name string
	// Values are the variants in declaration order.
	Values []EnumValue

	byName map[string]EnumValue
	byDisc map[uint64]EnumValue
}

// Len reports the number of variants.
func (e *Enum) Len() int {
	return len(e.Values)
}

// ByName returns the variant called name.
func (e *Enum) ByName(name string) (EnumValue, bool) {
	v, ok := e.byName[name]
	return v, ok
}

// ByDiscriminant returns the variant packed as d.
func (e *Enum) ByDiscriminant(d uint64) (EnumValue, bool) {
	v, ok := e.byDisc[d]
	return v, ok
}

// DeriveEnum creates the Specifier for an enumerated type. The number of variants must be a
// power of two, the type packs into log2(len(variants)) bits. Every discriminant must fit in
// that many bits and must be unique.
func DeriveEnum(name string, variants []Variant) (*Specifier, error) {
	count := len(variants)
	if count == 0 || count&(count-1) != 0 {
		return nil, errors.Errorf(errors.KindNonPowerOfTwoVariantCount, name, "has %d variants", count)
	}

	width := bits.TrailingZeros(uint(count))
	container, err := field.BestFit(width)
	if err != nil {
		return nil, errors.WithName(err, name)
	}

	e := &Enum{
		Name:   name,
		Values: make([]EnumValue, 0, count),
		byName: make(map[string]EnumValue, count),
		byDisc: make(map[uint64]EnumValue, count),
	}
	limit := uint64(1) << width
	for i, v := range variants {
		if v.Name == "" {
			return nil, errors.Errorf(errors.KindInvalidLayout, name, "variant %d has no name", i)
		}
		d := uint64(i)
		if v.Discriminant != nil {
			d = *v.Discriminant
		}
		if d >= limit {
			return nil, errors.Errorf(errors.KindDiscriminantOverflow, name, "variant %s has discriminant %d, which does not fit in %d bits", v.Name, d, width)
		}
		if _, ok := e.byName[v.Name]; ok {
			return nil, errors.Errorf(errors.KindDuplicateVariant, name, "variant %s is declared twice", v.Name)
		}
		if other, ok := e.byDisc[d]; ok {
			return nil, errors.Errorf(errors.KindDuplicateDiscriminant, name, "variants %s and %s both have discriminant %d", other.Name, v.Name, d)
		}

		ev := EnumValue{Enum: name, Name: v.Name, Discriminant: d}
		e.Values = append(e.Values, ev)
		e.byName[ev.Name] = ev
		e.byDisc[d] = ev
	}

	return &Specifier{
		Name:      name,
		Bits:      width,
		Container: container,
		Type:      field.FTEnum,
		Enum:      e,
		to:        e.toContainer,
		from:      e.fromContainer,
	}, nil
}

// toContainer accepts an EnumValue of this enum or the name of a variant.
func (e *Enum) toContainer(v any) (uint64, error) {
	var name string
	switch x := v.(type) {
	case EnumValue:
		if x.Enum != e.Name {
			return 0, errors.Errorf(errors.KindTypeMismatch, "", "value %s is not a %s", x, e.Name)
		}
		name = x.Name
	case string:
		name = x
	default:
		return 0, errors.Errorf(errors.KindTypeMismatch, "", "%s takes an EnumValue or variant name, got %T", e.Name, v)
	}

	ev, ok := e.byName[name]
	if !ok {
		return 0, errors.Errorf(errors.KindUnknownVariant, "", "%s has no variant %q", e.Name, name)
	}
	return ev.Discriminant, nil
}

func (e *Enum) fromContainer(repr uint64) (any, error) {
	ev, ok := e.byDisc[repr]
	if !ok {
		return nil, errors.Errorf(errors.KindInvalidDiscriminant, "", "%d is not a discriminant of %s", repr, e.Name)
	}
	return ev, nil
}
