// Package structs packs named fields into the fewest whole bytes possible. A Descriptor is
// planned once from a list of FieldDecls. Each Struct it creates owns a byte buffer exactly
// Layout.Size() bytes long, with every field occupying its own bit range in declaration
// order and no padding between fields.
//
// Bits are numbered from the most significant bit of byte 0. A field's value is stored with
// its most significant bit at the lowest numbered bit of its range.
package structs

import (
	"slices"

	"go.uber.org/zap"

	"github.com/bearlytools/bitpack/internal/bits"
	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/specifier"
)

type options struct {
	reg *specifier.Registry
	log *zap.Logger
}

// Option is an optional argument to Define.
type Option func(*options)

// WithRegistry has Define look up field types in reg instead of specifier.Default().
func WithRegistry(reg *specifier.Registry) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// WithLogger sets the logger for the Descriptor and its Structs instead of Logger().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// Descriptor describes a bitfield struct type. It is immutable and safe for concurrent use.
type Descriptor struct {
	name      string
	layout    Layout
	accessors []*Accessor
	byName    map[string]*Accessor
	log       *zap.Logger
}

// Define plans and validates the layout of fields and builds their Accessors.
func Define(name string, fields []FieldDecl, opts ...Option) (*Descriptor, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = Logger()
	}

	l, err := Plan(fields, o.reg)
	if err != nil {
		return nil, errors.WithName(err, name)
	}
	if err := l.Validate(); err != nil {
		return nil, errors.WithName(err, name)
	}

	d := &Descriptor{
		name:      name,
		layout:    l,
		accessors: make([]*Accessor, 0, len(l.Fields)),
		byName:    make(map[string]*Accessor, len(l.Fields)),
		log:       o.log.With(zap.String("struct", name)),
	}
	for _, f := range l.Fields {
		a := newAccessor(d, f)
		d.accessors = append(d.accessors, a)
		d.byName[f.Name] = a
	}

	if ce := d.log.Check(zap.DebugLevel, "defined bitfield struct"); ce != nil {
		fs := make([]zap.Field, 0, len(l.Fields)+2)
		fs = append(fs, zap.Int("bits", l.TotalBits), zap.Int("bytes", l.Size()))
		for _, f := range l.Fields {
			fs = append(fs, zap.Ints(f.Name, []int{f.Start, f.End}))
		}
		ce.Write(fs...)
	}
	return d, nil
}

// MustDefine is Define, but it panics on error. It is for package level Descriptors.
func MustDefine(name string, fields []FieldDecl, opts ...Option) *Descriptor {
	d, err := Define(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name is the name of the struct type.
func (d *Descriptor) Name() string {
	return d.name
}

// Layout returns the planned layout.
func (d *Descriptor) Layout() Layout {
	return d.layout
}

// Size is the size in bytes of the struct.
func (d *Descriptor) Size() int {
	return d.layout.Size()
}

// Fields returns the Accessors of every field in declaration order.
func (d *Descriptor) Fields() []*Accessor {
	return slices.Clone(d.accessors)
}

// Accessor returns the Accessor for the field called name.
func (d *Descriptor) Accessor(name string) (*Accessor, error) {
	a, ok := d.byName[name]
	if !ok {
		return nil, errors.Errorf(errors.KindUnknownField, name, "%s has no such field", d.name)
	}
	return a, nil
}

// New returns a Struct with every bit set to zero.
func (d *Descriptor) New() *Struct {
	return &Struct{desc: d, buf: make([]byte, d.Size())}
}

// FromBytes returns a Struct holding a copy of b. b must be exactly Size() bytes. Fields
// are not checked here, a field whose bits are not a valid value fails when it is read.
func (d *Descriptor) FromBytes(b []byte) (*Struct, error) {
	if len(b) != d.Size() {
		d.log.Debug("wrong payload size", zap.Int("want", d.Size()), zap.Int("got", len(b)))
		return nil, &errors.BitError{
			Kind:     errors.KindOutOfBounds,
			Name:     d.name,
			Detail:   "payload is the wrong size",
			Expected: d.Size(),
			Actual:   len(b),
		}
	}
	return &Struct{desc: d, buf: slices.Clone(b)}, nil
}

// Struct is one packed value of a Descriptor. A Struct is not safe for concurrent
// modification.
type Struct struct {
	desc *Descriptor
	buf  []byte
}

// Descriptor returns the Descriptor s was created by.
func (s *Struct) Descriptor() *Descriptor {
	return s.desc
}

// Get returns the value of field name.
func (s *Struct) Get(name string) (any, error) {
	a, err := s.desc.Accessor(name)
	if err != nil {
		return nil, err
	}
	return a.Get(s)
}

// Set stores v in field name. If v can't be converted, s is unchanged.
func (s *Struct) Set(name string, v any) error {
	a, err := s.desc.Accessor(name)
	if err != nil {
		return err
	}
	return a.Set(s, v)
}

// GetBool returns the value of the bool field name.
func (s *Struct) GetBool(name string) (bool, error) {
	v, err := s.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Errorf(errors.KindTypeMismatch, name, "field is a %T, not a bool", v)
	}
	return b, nil
}

// SetBool stores b in the bool field name.
func (s *Struct) SetBool(name string, b bool) error {
	return s.Set(name, b)
}

// GetEnum returns the variant stored in the enum field name.
func (s *Struct) GetEnum(name string) (specifier.EnumValue, error) {
	a, err := s.desc.Accessor(name)
	if err != nil {
		return specifier.EnumValue{}, err
	}
	if _, err := a.enumOf(); err != nil {
		return specifier.EnumValue{}, err
	}
	v, err := a.Get(s)
	if err != nil {
		return specifier.EnumValue{}, err
	}
	return v.(specifier.EnumValue), nil
}

// SetEnum stores the variant called variant in the enum field name.
func (s *Struct) SetEnum(name, variant string) error {
	a, err := s.desc.Accessor(name)
	if err != nil {
		return err
	}
	if _, err := a.enumOf(); err != nil {
		return err
	}
	return a.Set(s, variant)
}

// Bytes returns a copy of the packed bytes.
func (s *Struct) Bytes() []byte {
	return slices.Clone(s.buf)
}

// Clone returns a deep copy of s.
func (s *Struct) Clone() *Struct {
	return &Struct{desc: s.desc, buf: slices.Clone(s.buf)}
}

// Dump returns every byte of s as 8 binary digits.
func (s *Struct) Dump() []string {
	return bits.Binary(s.buf)
}

// String implements fmt.Stringer. It renders the bytes of s in binary separated by " | ".
func (s *Struct) String() string {
	b := getBuffer()
	defer putBuffer(b)

	for i, d := range s.Dump() {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(d)
	}
	return b.String()
}
