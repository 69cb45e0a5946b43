// Package bitpack packs named fields of arbitrary bit widths into the fewest whole bytes.
// This package re-exports the types most callers need, the details live in
// languages/go/structs (layouts and accessors) and languages/go/specifier (field types).
package bitpack

import (
	"github.com/bearlytools/bitpack/languages/go/field"
	"github.com/bearlytools/bitpack/languages/go/specifier"
	"github.com/bearlytools/bitpack/languages/go/structs"
)

// FieldType represents how the bits of a field are interpreted.
type FieldType = field.Type

const (
	FTUnknown = field.FTUnknown
	FTUint    = field.FTUint
	FTBool    = field.FTBool
	FTEnum    = field.FTEnum
)

// NativeWidth is the Go integer width a field's value is handled in.
type NativeWidth = field.NativeWidth

type (
	// Descriptor describes a bitfield struct type.
	Descriptor = structs.Descriptor
	// Struct is one packed value of a Descriptor.
	Struct = structs.Struct
	// FieldDecl declares a field of a Descriptor.
	FieldDecl = structs.FieldDecl
	// Layout is the planned packing of a Descriptor.
	Layout = structs.Layout
	// Option is an optional argument to Define.
	Option = structs.Option

	// Specifier describes a field type.
	Specifier = specifier.Specifier
	// Registry holds Specifiers by name.
	Registry = specifier.Registry
	// Variant declares one value of an enumerated type.
	Variant = specifier.Variant
	// EnumValue is the value of an enum field.
	EnumValue = specifier.EnumValue
)

var (
	// Define plans a Descriptor from fields.
	Define = structs.Define
	// MustDefine is Define, but it panics on error.
	MustDefine = structs.MustDefine
	// Field declares a field.
	Field = structs.Field
	// Asserted declares a field whose type must be bits wide.
	Asserted = structs.Asserted
	// WithRegistry has Define look up field types in a Registry other than the default.
	WithRegistry = structs.WithRegistry

	// NewRegistry returns a Registry holding the built in specifiers.
	NewRegistry = specifier.NewRegistry
	// DeriveEnum creates the Specifier for an enumerated type.
	DeriveEnum = specifier.DeriveEnum
	// Bare declares a variant whose discriminant is its position.
	Bare = specifier.Bare
	// Explicit declares a variant with a discriminant.
	Explicit = specifier.Explicit
)

// Uint names the built in specifier of an n bit unsigned integer, for use in a FieldDecl.
func Uint(n int) string {
	return specifier.PrimitiveName(n)
}

// Bool is the name of the built in boolean specifier.
const Bool = specifier.BoolName
