package idl

import (
	"context"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/specifier"
	"github.com/bearlytools/bitpack/languages/go/structs"
)

const netSchema = `
// A comment
// About something
package net // Yeah I can comment here

version 2 // And here too

Enum Mode {
	Off
	Low
	High @3 // explicit
	Auto @2
}

// The header every frame starts with.
Bitfield Header {
	Flag bool
	Kind B3 @bits(3)
	Mode Mode

	Rest B26 // padding to 32 bits
}

Bitfield Empty {
}
`

func TestParse(t *testing.T) {
	f, err := Parse(context.Background(), []byte(netSchema))
	if err != nil {
		t.Fatalf("TestParse: got err == %s", err)
	}

	// Block lines are checked relative to each other, then cleared for the comparison.
	if len(f.Enums) != 1 || len(f.Bitfields) != 2 {
		t.Fatalf("TestParse: got %d enums and %d bitfields, want 1 and 2", len(f.Enums), len(f.Bitfields))
	}
	if f.Bitfields[0].Line-f.Enums[0].Line != 8 || f.Bitfields[1].Line-f.Bitfields[0].Line != 8 {
		t.Errorf("TestParse: got block lines %d, %d, %d, want them 8 lines apart", f.Enums[0].Line, f.Bitfields[0].Line, f.Bitfields[1].Line)
	}
	for name, line := range map[string]int{"Mode": f.Enums[0].Line, "Header": f.Bitfields[0].Line, "Empty": f.Bitfields[1].Line} {
		if f.idents[name] != line {
			t.Errorf("TestParse: ident %s recorded at line %d, want %d", name, f.idents[name], line)
		}
	}
	if len(f.idents) != 3 {
		t.Errorf("TestParse: got %d idents, want 3", len(f.idents))
	}
	f.Enums[0].Line, f.Bitfields[0].Line, f.Bitfields[1].Line = 0, 0, 0
	f.idents = nil

	three := 3
	want := &File{
		Package: "net",
		Version: 2,
		Enums: []*Enum{
			{
				Name: "Mode",
				Variants: []specifier.Variant{
					specifier.Bare("Off"),
					specifier.Bare("Low"),
					specifier.Explicit("High", 3),
					specifier.Explicit("Auto", 2),
				},
			},
		},
		Bitfields: []*Bitfield{
			{
				Name: "Header",
				Fields: []structs.FieldDecl{
					structs.Field("Flag", "bool"),
					{Name: "Kind", Type: "B3", Assert: &three},
					structs.Field("Mode", "Mode"),
					structs.Field("Rest", "B26"),
				},
			},
			{Name: "Empty"},
		},
	}
	if diff := pretty.Compare(want, f); diff != "" {
		t.Errorf("TestParse: -want/+got:\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		desc    string
		content string
		want    string
	}{
		{
			desc:    "No package",
			content: "version 0\n",
			want:    "package",
		},
		{
			desc:    "Package uppercase",
			content: "package Net\nversion 0\n",
			want:    "uppercase",
		},
		{
			desc:    "Keyword case",
			content: "Package net\nversion 0\n",
			want:    "required to be",
		},
		{
			desc:    "Bad version",
			content: "package net\nversion x\n",
			want:    "version",
		},
		{
			desc:    "Unknown block",
			content: "package net\nversion 0\nStruct A {\n}\n",
			want:    "do not understand",
		},
		{
			desc:    "Lowercase block keyword",
			content: "package net\nversion 0\nenum A {\n}\n",
			want:    "keywords are",
		},
		{
			desc:    "Unclosed Enum",
			content: "package net\nversion 0\nEnum A {\n\tB\n",
			want:    "closing",
		},
		{
			desc:    "Lowercase variant",
			content: "package net\nversion 0\nEnum A {\n\tb\n\tC\n}\n",
			want:    "lowercase",
		},
		{
			desc:    "Bad discriminant",
			content: "package net\nversion 0\nEnum A {\n\tB @x\n\tC\n}\n",
			want:    "@{{Number}}",
		},
		{
			desc:    "Duplicate variant",
			content: "package net\nversion 0\nEnum A {\n\tB\n\tB\n}\n",
			want:    "already contains variant",
		},
		{
			desc:    "Field without type",
			content: "package net\nversion 0\nBitfield A {\n\tx\n}\n",
			want:    "{{Type}}",
		},
		{
			desc:    "Bad assertion",
			content: "package net\nversion 0\nBitfield A {\n\tx B8 @bits(eight)\n}\n",
			want:    "@bits",
		},
		{
			desc:    "Trailing junk",
			content: "package net\nversion 0\nBitfield A {\n\tx B8 extra\n}\n",
			want:    "unexpected",
		},
		{
			desc:    "Duplicate field",
			content: "package net\nversion 0\nBitfield A {\n\tx B4\n\tx B4\n}\n",
			want:    "already contains field",
		},
		{
			desc:    "Duplicate identifier",
			content: "package net\nversion 0\nEnum A {\n\tB\n}\nBitfield A {\n}\n",
			want:    "already declared",
		},
	}

	for _, test := range tests {
		_, err := Parse(context.Background(), []byte(test.content))
		if err == nil {
			t.Errorf("TestParseErrors(%s): got err == nil, want error containing %q", test.desc, test.want)
			continue
		}
		if !errors.Is(err, errors.KindParse) {
			t.Errorf("TestParseErrors(%s): got err == %s, want KindParse", test.desc, err)
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("TestParseErrors(%s): got err == %s, want it to contain %q", test.desc, err, test.want)
		}
	}
}

func TestCompile(t *testing.T) {
	f, err := Parse(context.Background(), []byte(netSchema))
	if err != nil {
		t.Fatal(err)
	}

	reg := specifier.NewRegistry()
	c, err := f.Compile(reg)
	if err != nil {
		t.Fatalf("TestCompile: got err == %s", err)
	}
	if _, err := reg.Lookup("Mode"); err == nil {
		t.Errorf("TestCompile: Compile registered Mode in the registry it was given")
	}
	if _, err := c.Registry.Lookup("Mode"); err != nil {
		t.Errorf("TestCompile: compiled registry is missing Mode: %s", err)
	}

	h := c.Structs["Header"]
	if h == nil {
		t.Fatalf("TestCompile: no Header descriptor")
	}
	if h.Size() != 4 {
		t.Errorf("TestCompile: Header is %d bytes, want 4", h.Size())
	}
	if c.Structs["Empty"].Size() != 0 {
		t.Errorf("TestCompile: Empty is %d bytes, want 0", c.Structs["Empty"].Size())
	}

	s := h.New()
	if err := s.SetEnum("Mode", "High"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBool("Flag", true); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare([]byte{0b1_000_11_00, 0, 0, 0}, s.Bytes()); diff != "" {
		t.Errorf("TestCompile: -want/+got:\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		desc    string
		content string
		err     errors.Kind
	}{
		{
			desc:    "Three variants",
			content: "package net\nversion 0\nEnum A {\n\tB\n\tC\n\tD\n}\n",
			err:     errors.KindNonPowerOfTwoVariantCount,
		},
		{
			desc:    "Discriminant too big",
			content: "package net\nversion 0\nEnum A {\n\tB\n\tC @5\n}\n",
			err:     errors.KindDiscriminantOverflow,
		},
		{
			desc:    "Misaligned",
			content: "package net\nversion 0\nBitfield A {\n\tx B3\n}\n",
			err:     errors.KindMisalignedLayout,
		},
		{
			desc:    "Width assertion",
			content: "package net\nversion 0\nBitfield A {\n\tx B8 @bits(7)\n}\n",
			err:     errors.KindWidthMismatch,
		},
		{
			desc:    "Unknown type",
			content: "package net\nversion 0\nBitfield A {\n\tx Mode\n}\n",
			err:     errors.KindUnknownSpecifier,
		},
		{
			desc:    "Enum shadows a built in",
			content: "package net\nversion 0\nEnum B8 {\n\tX\n}\n",
			err:     errors.KindDuplicateSpecifier,
		},
	}

	for _, test := range tests {
		f, err := Parse(context.Background(), []byte(test.content))
		if err != nil {
			t.Errorf("TestCompileErrors(%s): Parse got err == %s", test.desc, err)
			continue
		}
		_, err = f.Compile(nil)
		if !errors.Is(err, test.err) {
			t.Errorf("TestCompileErrors(%s): got err == %v, want %s", test.desc, err, test.err)
			continue
		}
		if !strings.Contains(err.Error(), "[Line ") {
			t.Errorf("TestCompileErrors(%s): got err == %s, want the line of the block", test.desc, err)
		}
	}
}

func TestBitsAssertion(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "@bits(3)", want: 3},
		{in: "@bits(0)", want: 0},
		{in: "@bits(64)", want: 64},
		{in: "@bits()", wantErr: true},
		{in: "@bits(-1)", wantErr: true},
		{in: "@bits(3", wantErr: true},
		{in: "@3", wantErr: true},
	}

	for _, test := range tests {
		got, err := bitsAssertion(test.in)
		switch {
		case test.wantErr && err == nil:
			t.Errorf("TestBitsAssertion(%s): got err == nil, want err != nil", test.in)
		case !test.wantErr && err != nil:
			t.Errorf("TestBitsAssertion(%s): got err == %s", test.in, err)
		case got != test.want:
			t.Errorf("TestBitsAssertion(%s): got %d, want %d", test.in, got, test.want)
		}
	}
}
