package structs

import (
	"fmt"
	"strings"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/field"
	"github.com/bearlytools/bitpack/languages/go/specifier"
)

// FieldDecl declares a field of a bitfield struct, in the order it is packed.
type FieldDecl struct {
	// Name is the name of the field.
	Name string
	// Type is the registered specifier name, like "B3", "bool" or an enum name.
	Type string
	// Assert, if set, is the width the field must have. Planning fails if the type
	// has a different width.
	Assert *int
}

// Field is a shorthand for FieldDecl{Name: name, Type: typ}.
func Field(name, typ string) FieldDecl {
	return FieldDecl{Name: name, Type: typ}
}

// Asserted is a shorthand for a FieldDecl with a width assertion.
func Asserted(name, typ string, bits int) FieldDecl {
	return FieldDecl{Name: name, Type: typ, Assert: &bits}
}

// FieldSpec is a planned field.
type FieldSpec struct {
	Name string
	// Type is the specifier name.
	Type string
	// BitWidth is the number of bits the field packs into.
	BitWidth int
	// ContainerWidth is the native width the field's value is handled in.
	ContainerWidth field.NativeWidth
	// Start and End are the half open bit range [Start, End) the field occupies.
	Start, End int

	Spec *specifier.Specifier
}

// Layout is the planned packing of a struct. Fields are in declaration order and
// their ranges are contiguous from bit 0.
type Layout struct {
	TotalBits int
	Fields    []FieldSpec
}

// Size is the size of the packed struct in bytes.
func (l Layout) Size() int {
	return l.TotalBits / 8
}

// Table renders the layout as aligned text, one field per line.
func (l Layout) Table() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%-16s %-12s %5s  %-8s %s\n", "FIELD", "TYPE", "BITS", "NATIVE", "RANGE")
	for _, f := range l.Fields {
		fmt.Fprintf(&b, "%-16s %-12s %5d  %-8s [%d, %d)\n", f.Name, f.Type, f.BitWidth, f.ContainerWidth, f.Start, f.End)
	}
	fmt.Fprintf(&b, "total: %d bits, %d bytes\n", l.TotalBits, l.Size())
	return b.String()
}

// Plan lays out fields back to back starting at bit 0. The sum of the field widths must
// be a multiple of 8. A nil reg uses specifier.Default().
func Plan(fields []FieldDecl, reg *specifier.Registry) (Layout, error) {
	if reg == nil {
		reg = specifier.Default()
	}

	l := Layout{Fields: make([]FieldSpec, 0, len(fields))}
	seen := make(map[string]bool, len(fields))
	offset := 0
	for _, fd := range fields {
		if fd.Name == "" {
			return Layout{}, errors.Errorf(errors.KindInvalidLayout, "", "field %d has no name", len(l.Fields))
		}
		if seen[fd.Name] {
			return Layout{}, errors.Errorf(errors.KindDuplicateField, fd.Name, "declared twice")
		}
		seen[fd.Name] = true

		spec, err := reg.Lookup(fd.Type)
		if err != nil {
			e := errors.Errorf(errors.KindUnknownSpecifier, fd.Name, "field type %q", fd.Type)
			e.Cause = err
			return Layout{}, e
		}
		if fd.Assert != nil && *fd.Assert != spec.Bits {
			return Layout{}, errors.WidthMismatch(fd.Name, *fd.Assert, spec.Bits)
		}

		l.Fields = append(l.Fields, FieldSpec{
			Name:           fd.Name,
			Type:           spec.Name,
			BitWidth:       spec.Bits,
			ContainerWidth: spec.Container,
			Start:          offset,
			End:            offset + spec.Bits,
			Spec:           spec,
		})
		offset += spec.Bits
	}
	l.TotalBits = offset

	if l.TotalBits%8 != 0 {
		return Layout{}, &errors.BitError{
			Kind:     errors.KindMisalignedLayout,
			Detail:   fmt.Sprintf("fields total %d bits, which is %d bits short of a byte boundary", l.TotalBits, 8-l.TotalBits%8),
			Expected: (l.TotalBits + 7) / 8 * 8,
			Actual:   l.TotalBits,
		}
	}
	return l, nil
}

// Validate checks that the ranges are ordered, contiguous and cover [0, TotalBits), that
// every container is the best fit for its width and that TotalBits is byte aligned.
func (l Layout) Validate() error {
	offset := 0
	for _, f := range l.Fields {
		switch {
		case f.Start != offset:
			return errors.Errorf(errors.KindInvalidLayout, f.Name, "starts at bit %d, want %d", f.Start, offset)
		case f.End-f.Start != f.BitWidth:
			return errors.Errorf(errors.KindInvalidLayout, f.Name, "range [%d, %d) is not %d bits", f.Start, f.End, f.BitWidth)
		case f.Spec == nil:
			return errors.Errorf(errors.KindInvalidLayout, f.Name, "has no specifier")
		case f.Spec.Bits != f.BitWidth:
			return errors.Errorf(errors.KindInvalidLayout, f.Name, "is %d bits, but its type is %d", f.BitWidth, f.Spec.Bits)
		}
		want, err := field.BestFit(f.BitWidth)
		if err != nil {
			return errors.WithName(err, f.Name)
		}
		if f.ContainerWidth != want {
			return errors.Errorf(errors.KindInvalidLayout, f.Name, "container %s is not the best fit for %d bits", f.ContainerWidth, f.BitWidth)
		}
		offset = f.End
	}
	if offset != l.TotalBits {
		return errors.Errorf(errors.KindInvalidLayout, "", "fields cover %d bits, layout says %d", offset, l.TotalBits)
	}
	if l.TotalBits%8 != 0 {
		return errors.Errorf(errors.KindMisalignedLayout, "", "%d bits is not a whole number of bytes", l.TotalBits)
	}
	return nil
}
