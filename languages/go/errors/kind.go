package errors

import (
	"fmt"
	"strings"
)

//go:generate stringer -type=Kind -linecomment

// Kind is the kind of failure a *BitError represents. A Kind is also an error, so it can be
// used as the target of Is():
//
//	if errors.Is(err, errors.KindMisalignedLayout) {
//		...
//	}
type Kind uint8

const (
	KindUnknown                   Kind = 0  // Unknown
	KindUnsupportedWidth          Kind = 1  // UnsupportedWidth
	KindUnknownSpecifier          Kind = 2  // UnknownSpecifier
	KindMisalignedLayout          Kind = 3  // MisalignedLayout
	KindWidthMismatch             Kind = 4  // WidthMismatch
	KindNonPowerOfTwoVariantCount Kind = 5  // NonPowerOfTwoVariantCount
	KindDiscriminantOverflow      Kind = 6  // DiscriminantOverflow
	KindEmptyRange                Kind = 7  // EmptyRange
	KindOutOfBounds               Kind = 8  // OutOfBounds
	KindInvalidDiscriminant       Kind = 9  // InvalidDiscriminant
	KindMalformedRepr             Kind = 10 // MalformedRepr
	KindTypeMismatch              Kind = 11 // TypeMismatch
	KindDuplicateSpecifier        Kind = 12 // DuplicateSpecifier
	KindDuplicateField            Kind = 13 // DuplicateField
	KindDuplicateVariant          Kind = 14 // DuplicateVariant
	KindDuplicateDiscriminant     Kind = 15 // DuplicateDiscriminant
	KindUnknownVariant            Kind = 16 // UnknownVariant
	KindUnknownField              Kind = 17 // UnknownField
	KindInvalidLayout             Kind = 18 // InvalidLayout
	KindParse                     Kind = 19 // Parse
)

// Error implements error.
func (k Kind) Error() string {
	return "bitpack: " + k.String()
}

//go:generate stringer -type=Phase -linecomment

// Phase is when an error of a Kind can happen.
type Phase uint8

const (
	PhaseUnknown Phase = 0 // unknown
	// PhaseConfig errors happen while registering specifiers or defining a struct. A type
	// that failed in this phase is never usable.
	PhaseConfig Phase = 1 // config
	// PhaseCodec errors mean a bit range given to the codec broke the layout invariants.
	PhaseCodec Phase = 2 // codec
	// PhaseDecode errors mean the packed bits don't map to a value of the field's type.
	PhaseDecode Phase = 3 // decode
	// PhaseAccess errors are bad arguments to an accessor.
	PhaseAccess Phase = 4 // access
	// PhaseParse errors come from reading a schema.
	PhaseParse Phase = 5 // parse
)

// Phase reports the Phase errors of this Kind belong to.
func (k Kind) Phase() Phase {
	switch k {
	case KindEmptyRange, KindOutOfBounds:
		return PhaseCodec
	case KindInvalidDiscriminant, KindMalformedRepr:
		return PhaseDecode
	case KindTypeMismatch, KindUnknownVariant, KindUnknownField:
		return PhaseAccess
	case KindParse:
		return PhaseParse
	case KindUnknown:
		return PhaseUnknown
	}
	return PhaseConfig
}

// Category is the Category used when promoting an error of this Kind with Wrap().
func (k Kind) Category() Category {
	switch k {
	case KindUnknown:
		return CatUnknown
	case KindEmptyRange, KindOutOfBounds, KindMalformedRepr, KindInvalidLayout:
		return CatInternal
	}
	return CatUser
}

// Type is the Type used when promoting an error of this Kind with Wrap().
func (k Kind) Type() Type {
	switch k {
	case KindUnknown:
		return TypeUnknown
	case KindEmptyRange, KindOutOfBounds, KindMalformedRepr, KindInvalidLayout:
		return TypeBug
	case KindInvalidDiscriminant:
		return TypeDecode
	case KindParse:
		return TypeParse
	case KindTypeMismatch, KindUnknownVariant, KindUnknownField:
		return TypeParameter
	}
	return TypeLayout
}

// BitError is the error returned by every bitpack package.
type BitError struct {
	// Kind is the kind of failure.
	Kind Kind
	// Name is the field, specifier or enum the error is about. May be empty.
	Name string
	// Detail is a human readable description.
	Detail string
	// Expected and Actual are set for KindWidthMismatch.
	Expected, Actual int
	// Cause is a wrapped error, if any.
	Cause error
}

// Errorf creates a *BitError of Kind k about name.
func Errorf(k Kind, name string, format string, args ...any) *BitError {
	return &BitError{Kind: k, Name: name, Detail: fmt.Sprintf(format, args...)}
}

// WidthMismatch is returned when a field's asserted width disagrees with the width of its type.
func WidthMismatch(field string, expected, actual int) *BitError {
	return &BitError{
		Kind:     KindWidthMismatch,
		Name:     field,
		Detail:   fmt.Sprintf("asserted %d bits, but the type is %d bits", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

// WithName sets the Name on err if it is a *BitError without one. The original error is not
// modified. Other errors, including ones that wrap a *BitError, are returned as is.
func WithName(err error, name string) error {
	be, ok := err.(*BitError)
	if !ok || be.Name != "" {
		return err
	}
	cp := *be
	cp.Name = name
	return &cp
}

// Error implements error.
func (e *BitError) Error() string {
	b := strings.Builder{}
	b.WriteString("bitpack: ")
	b.WriteString(e.Kind.String())
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *BitError) Unwrap() error {
	return e.Cause
}

// Is reports if target is the Kind of this error.
func (e *BitError) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	return e.Kind == k
}
