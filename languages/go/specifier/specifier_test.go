package specifier

import (
	"context"
	"fmt"
	"testing"

	"github.com/gostdlib/base/concurrency/sync"
	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/field"
)

func TestPrimitives(t *testing.T) {
	reg := NewRegistry()

	for n := 0; n <= MaxBits; n++ {
		s, err := reg.Lookup(PrimitiveName(n))
		if err != nil {
			t.Fatalf("TestPrimitives(B%d): got err == %s, want err == nil", n, err)
		}
		if s.Bits != n {
			t.Errorf("TestPrimitives(B%d): got Bits %d", n, s.Bits)
		}
		if s.Container != field.MustBestFit(n) {
			t.Errorf("TestPrimitives(B%d): got Container %s, want %s", n, s.Container, field.MustBestFit(n))
		}
		if s.Type != field.FTUint {
			t.Errorf("TestPrimitives(B%d): got Type %s", n, s.Type)
		}
	}
}

func TestPrimitiveConversions(t *testing.T) {
	tests := []struct {
		desc string
		n    int
		in   any
		repr uint64
		out  any
	}{
		{desc: "B3 from uint8", n: 3, in: uint8(5), repr: 5, out: uint8(5)},
		{desc: "B3 from int", n: 3, in: 5, repr: 5, out: uint8(5)},
		{desc: "B12 from uint64", n: 12, in: uint64(4095), repr: 4095, out: uint16(4095)},
		{desc: "B24 from uint32", n: 24, in: uint32(0xABCDEF), repr: 0xABCDEF, out: uint32(0xABCDEF)},
		{desc: "B64 max", n: 64, in: ^uint64(0), repr: ^uint64(0), out: ^uint64(0)},
	}

	for _, test := range tests {
		s, err := Primitive(test.n)
		if err != nil {
			t.Fatalf("TestPrimitiveConversions(%s): got err == %s", test.desc, err)
		}
		repr, err := s.ToContainer(test.in)
		if err != nil {
			t.Errorf("TestPrimitiveConversions(%s): ToContainer got err == %s", test.desc, err)
			continue
		}
		if repr != test.repr {
			t.Errorf("TestPrimitiveConversions(%s): ToContainer got %d, want %d", test.desc, repr, test.repr)
		}
		out, err := s.FromContainer(repr)
		if err != nil {
			t.Errorf("TestPrimitiveConversions(%s): FromContainer got err == %s", test.desc, err)
			continue
		}
		if diff := pretty.Compare(test.out, out); diff != "" {
			t.Errorf("TestPrimitiveConversions(%s): -want/+got:\n%s", test.desc, diff)
		}
		if _, ok := out.(uint8); ok != (s.Container == field.W8) {
			t.Errorf("TestPrimitiveConversions(%s): got Go type %T for container %s", test.desc, out, s.Container)
		}
	}
}

func TestPrimitiveRejects(t *testing.T) {
	s, err := Primitive(4)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []any{-1, "4", true, 1.5} {
		if _, err := s.ToContainer(v); !errors.Is(err, errors.KindTypeMismatch) {
			t.Errorf("TestPrimitiveRejects(%v): got err == %v, want KindTypeMismatch", v, err)
		}
	}
	if _, err := s.FromContainer(16); !errors.Is(err, errors.KindMalformedRepr) {
		t.Errorf("TestPrimitiveRejects(repr 16): got err == %v, want KindMalformedRepr", err)
	}
	if _, err := Primitive(65); !errors.Is(err, errors.KindUnsupportedWidth) {
		t.Errorf("TestPrimitiveRejects(B65): got err == %v, want KindUnsupportedWidth", err)
	}
}

func TestNamedUnsigned(t *testing.T) {
	type Port uint16

	s, err := Primitive(16)
	if err != nil {
		t.Fatal(err)
	}
	repr, err := s.ToContainer(Port(8080))
	if err != nil {
		t.Fatalf("TestNamedUnsigned: got err == %s", err)
	}
	if repr != 8080 {
		t.Fatalf("TestNamedUnsigned: got %d, want 8080", repr)
	}
}

func TestBool(t *testing.T) {
	s := Default().mustLookup(t, BoolName)

	if s.Bits != 1 || s.Container != field.W8 || s.Type != field.FTBool {
		t.Fatalf("TestBool: got %s", s)
	}

	for _, b := range []bool{false, true} {
		repr, err := s.ToContainer(b)
		if err != nil {
			t.Fatalf("TestBool(%v): got err == %s", b, err)
		}
		got, err := s.FromContainer(repr)
		if err != nil {
			t.Fatalf("TestBool(%v): got err == %s", b, err)
		}
		if got != b {
			t.Errorf("TestBool(%v): round trip got %v", b, got)
		}
	}

	if _, err := s.ToContainer(1); !errors.Is(err, errors.KindTypeMismatch) {
		t.Errorf("TestBool(int): got err == %v, want KindTypeMismatch", err)
	}
	// The width check catches this before the bool conversion does.
	if _, err := s.FromContainer(2); !errors.Is(err, errors.KindMalformedRepr) {
		t.Errorf("TestBool(repr 2): got err == %v, want KindMalformedRepr", err)
	}
	if _, err := s.from(2); !errors.Is(err, errors.KindMalformedRepr) {
		t.Errorf("TestBool(from 2): got err == %v, want KindMalformedRepr", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Lookup("Mode"); !errors.Is(err, errors.KindUnknownSpecifier) {
		t.Fatalf("TestRegistry(unknown): got err == %v, want KindUnknownSpecifier", err)
	}

	mode, err := DeriveEnum("Mode", []Variant{Bare("Off"), Bare("On")})
	if err != nil {
		t.Fatal(err)
	}

	clone := reg.Clone()
	if err := reg.Register(mode); err != nil {
		t.Fatalf("TestRegistry(register): got err == %s", err)
	}
	if err := reg.Register(mode); !errors.Is(err, errors.KindDuplicateSpecifier) {
		t.Fatalf("TestRegistry(register twice): got err == %v, want KindDuplicateSpecifier", err)
	}
	if got := reg.mustLookup(t, "Mode"); got != mode {
		t.Fatalf("TestRegistry(lookup): got %s, want %s", got, mode)
	}
	if _, err := clone.Lookup("Mode"); err == nil {
		t.Fatalf("TestRegistry(clone): registering in the original changed the clone")
	}
	if got, want := len(reg.Names()), MaxBits+3; got != want {
		t.Fatalf("TestRegistry(names): got %d names, want %d", got, want)
	}

	bad := &Specifier{Name: "Bad", Bits: 3, Container: field.W16, to: mode.to, from: mode.from}
	if err := reg.Register(bad); !errors.Is(err, errors.KindInvalidLayout) {
		t.Fatalf("TestRegistry(container not minimal): got err == %v, want KindInvalidLayout", err)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	const n = 16
	g := sync.Group{}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("E%d", i)
		g.Go(ctx, func(ctx context.Context) error {
			s, err := DeriveEnum(name, []Variant{Bare("A"), Bare("B")})
			if err != nil {
				return err
			}
			if err := reg.Register(s); err != nil {
				return err
			}
			if _, err := Default().Lookup("B7"); err != nil {
				return err
			}
			_, err = reg.Lookup(name)
			return err
		})
	}
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("TestRegistryConcurrent: got err == %s", err)
	}

	if got, want := len(reg.Names()), MaxBits+2+n; got != want {
		t.Errorf("TestRegistryConcurrent: got %d names, want %d", got, want)
	}
	if Default() != Default() {
		t.Errorf("TestRegistryConcurrent: Default() built more than one Registry")
	}
}

func TestCustom(t *testing.T) {
	// A 4 bit signed integer in two's complement.
	nibble, err := Custom(
		"I4", 4, field.FTUint,
		func(v any) (uint64, error) {
			i, ok := v.(int8)
			if !ok || i < -8 || i > 7 {
				return 0, errors.Errorf(errors.KindTypeMismatch, "", "want int8 in [-8, 7], got %v", v)
			}
			return uint64(uint8(i) & 0xF), nil
		},
		func(repr uint64) (any, error) {
			return int8(repr<<4) >> 4, nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if nibble.Container != field.W8 {
		t.Fatalf("TestCustom: got container %s", nibble.Container)
	}

	for i := int8(-8); i <= 7; i++ {
		repr, err := nibble.ToContainer(i)
		if err != nil {
			t.Fatalf("TestCustom(%d): got err == %s", i, err)
		}
		got, err := nibble.FromContainer(repr)
		if err != nil {
			t.Fatalf("TestCustom(%d): got err == %s", i, err)
		}
		if got != i {
			t.Fatalf("TestCustom(%d): round trip got %v", i, got)
		}
	}

	if _, err := Custom("X", 3, field.FTUint, nil, nil); !errors.Is(err, errors.KindInvalidLayout) {
		t.Fatalf("TestCustom(nil conversions): got err == %v, want KindInvalidLayout", err)
	}
}

func (r *Registry) mustLookup(t *testing.T, name string) *Specifier {
	t.Helper()
	s, err := r.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %s", name, err)
	}
	return s
}
