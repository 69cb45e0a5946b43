package structs

import (
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/bearlytools/bitpack/internal/bits"
	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/field"
	"github.com/bearlytools/bitpack/languages/go/specifier"
)

// Accessor reads and writes one field of the Structs of a Descriptor. Accessors are
// built once by Define and are safe for concurrent use, the Structs they act on are not.
type Accessor struct {
	// Field is the planned field this Accessor reads and writes.
	Field FieldSpec

	desc *Descriptor
}

func newAccessor(d *Descriptor, f FieldSpec) *Accessor {
	return &Accessor{Field: f, desc: d}
}

// Raw returns the field's bits without converting them.
func (a *Accessor) Raw(s *Struct) (uint64, error) {
	if err := a.check(s); err != nil {
		return 0, err
	}
	// A zero width field has no bits to read and always holds zero.
	if a.Field.BitWidth == 0 {
		return 0, nil
	}
	v, err := bits.ReadUint64(s.buf, a.Field.Start, a.Field.End)
	if err != nil {
		return 0, errors.WithName(err, a.Field.Name)
	}
	return v, nil
}

// SetRaw stores repr in the field. Bits of repr above the field's width are dropped.
func (a *Accessor) SetRaw(s *Struct, repr uint64) error {
	if err := a.check(s); err != nil {
		return err
	}
	if a.Field.BitWidth == 0 {
		return nil
	}
	if err := bits.WriteUint64(s.buf, a.Field.Start, a.Field.End, repr); err != nil {
		return errors.WithName(err, a.Field.Name)
	}
	return nil
}

// Get returns the field's value as the type its specifier converts to.
func (a *Accessor) Get(s *Struct) (any, error) {
	repr, err := a.Raw(s)
	if err != nil {
		return nil, err
	}
	v, err := a.Field.Spec.FromContainer(repr)
	if err != nil {
		err = errors.WithName(err, a.Field.Name)
		a.desc.log.Debug(
			"field does not decode",
			zap.String("struct", a.desc.name),
			zap.String("field", a.Field.Name),
			zap.Uint64("repr", repr),
			zap.Error(err),
		)
		return nil, err
	}
	return v, nil
}

// Set converts v with the field's specifier and stores it. Nothing is written if the
// conversion fails. Unsigned values wider than the field are truncated to its width.
func (a *Accessor) Set(s *Struct, v any) error {
	if err := a.check(s); err != nil {
		return err
	}
	repr, err := a.Field.Spec.ToContainer(v)
	if err != nil {
		return errors.WithName(err, a.Field.Name)
	}
	return a.SetRaw(s, repr)
}

func (a *Accessor) check(s *Struct) error {
	if s == nil {
		return errors.Errorf(errors.KindTypeMismatch, a.Field.Name, "nil Struct")
	}
	if s.desc != a.desc {
		return errors.Errorf(errors.KindTypeMismatch, a.Field.Name, "accessor of %s used on a %s", a.desc.name, s.desc.name)
	}
	return nil
}

func (a *Accessor) mustBe(t field.Type) error {
	if a.Field.Spec.Type != t {
		return errors.Errorf(errors.KindTypeMismatch, a.Field.Name, "field is a %s, not a %s", a.Field.Spec.Type, t)
	}
	return nil
}

// GetUint returns the unsigned integer field name as a T. T must be able to hold every
// value the field can.
func GetUint[T constraints.Unsigned](s *Struct, name string) (T, error) {
	a, err := uintAccessor(s, name)
	if err != nil {
		return 0, err
	}
	if limit := uint64(^T(0)); limit < bits.Mask128(a.Field.BitWidth).Lo {
		var zero T
		return 0, errors.Errorf(errors.KindTypeMismatch, name, "%T can't hold a %d bit value", zero, a.Field.BitWidth)
	}
	repr, err := a.Raw(s)
	if err != nil {
		return 0, err
	}
	return T(repr), nil
}

// SetUint stores v in the unsigned integer field name, truncated to the field's width.
func SetUint[T constraints.Unsigned](s *Struct, name string, v T) error {
	a, err := uintAccessor(s, name)
	if err != nil {
		return err
	}
	return a.SetRaw(s, uint64(v))
}

func uintAccessor(s *Struct, name string) (*Accessor, error) {
	if s == nil {
		return nil, errors.Errorf(errors.KindTypeMismatch, name, "nil Struct")
	}
	a, err := s.desc.Accessor(name)
	if err != nil {
		return nil, err
	}
	if err := a.mustBe(field.FTUint); err != nil {
		return nil, err
	}
	return a, nil
}

// GetEnumAs returns the variant name of enum field name converted to T. It is for callers
// that declare a named string type for their enum.
func GetEnumAs[T ~string](s *Struct, name string) (T, error) {
	ev, err := s.GetEnum(name)
	if err != nil {
		return "", err
	}
	return T(ev.Name), nil
}

// SetEnumAs stores the variant called v in enum field name.
func SetEnumAs[T ~string](s *Struct, name string, v T) error {
	return s.SetEnum(name, string(v))
}

// enumOf returns the enum of the field an Accessor is for.
func (a *Accessor) enumOf() (*specifier.Enum, error) {
	if err := a.mustBe(field.FTEnum); err != nil {
		return nil, err
	}
	return a.Field.Spec.Enum, nil
}
