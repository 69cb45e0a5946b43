// Package bitjson converts bitfield Structs to and from JSON objects. Every field becomes a
// member named after the field: unsigned integers are JSON numbers, bools are JSON booleans
// and enums are the name of their variant (or its discriminant, see WithUseEnumNumbers).
package bitjson

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strconv"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/gostdlib/base/concurrency/sync"
	basectx "github.com/gostdlib/base/context"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/field"
	"github.com/bearlytools/bitpack/languages/go/specifier"
	"github.com/bearlytools/bitpack/languages/go/structs"
)

var buffers = sync.NewPool[*bytes.Buffer](
	basectx.Background(),
	"bitjsonBuffers",
	func() *bytes.Buffer {
		return &bytes.Buffer{}
	},
	sync.WithBuffer(10),
)

// marshalOptions provides options for writing Structs as JSON.
type marshalOptions struct {
	UseEnumNumbers bool
}

// MarshalOption provides options for marshaling a Struct to JSON.
type MarshalOption func(marshalOptions) (marshalOptions, error)

// WithUseEnumNumbers configures whether enum values are emitted as numbers or variant names.
func WithUseEnumNumbers(use bool) MarshalOption {
	return func(m marshalOptions) (marshalOptions, error) {
		m.UseEnumNumbers = use
		return m, nil
	}
}

// Marshal marshals s to a JSON object.
func Marshal(ctx context.Context, s *structs.Struct, options ...MarshalOption) ([]byte, error) {
	buf := buffers.Get(ctx)
	buf.Reset()
	defer buffers.Put(ctx, buf)

	if err := MarshalWriter(ctx, s, buf, options...); err != nil {
		return nil, err
	}
	return slices.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// MarshalWriter marshals s to a JSON object written to w.
func MarshalWriter(ctx context.Context, s *structs.Struct, w io.Writer, options ...MarshalOption) error {
	opts, err := marshalOpts(options)
	if err != nil {
		return err
	}
	return writeJSON(ctx, jsontext.NewEncoder(w), s, opts)
}

func marshalOpts(options []MarshalOption) (marshalOptions, error) {
	opts := marshalOptions{}
	for _, opt := range options {
		var err error
		opts, err = opt(opts)
		if err != nil {
			return marshalOptions{}, err
		}
	}
	return opts, nil
}

func writeJSON(ctx context.Context, enc *jsontext.Encoder, s *structs.Struct, opts marshalOptions) error {
	if s == nil {
		return enc.WriteToken(jsontext.Null)
	}
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, a := range s.Descriptor().Fields() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.WriteToken(jsontext.String(a.Field.Name)); err != nil {
			return err
		}
		if err := writeValue(enc, a, s, opts); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// writeValue writes the JSON value of one field.
func writeValue(enc *jsontext.Encoder, a *structs.Accessor, s *structs.Struct, opts marshalOptions) error {
	v, err := a.Get(s)
	if err != nil {
		return err
	}

	switch x := v.(type) {
	case bool:
		return enc.WriteToken(jsontext.Bool(x))
	case specifier.EnumValue:
		if opts.UseEnumNumbers {
			return enc.WriteToken(jsontext.Uint(x.Discriminant))
		}
		return enc.WriteToken(jsontext.String(x.Name))
	}
	if u, ok := specifier.Uint64(v); ok {
		return enc.WriteToken(jsontext.Uint(u))
	}

	// Custom specifiers can return any Go value.
	b, err := jsonv2.Marshal(v)
	if err != nil {
		return errors.Errorf(errors.KindTypeMismatch, a.Field.Name, "can't marshal %T: %s", v, err)
	}
	return enc.WriteValue(jsontext.Value(b))
}

// Array is used to write out an array of JSON objects.
type Array struct {
	enc     *jsontext.Encoder
	opts    marshalOptions
	written bool
}

// NewArray creates a new Array for streaming JSON array output.
func NewArray(w io.Writer, options ...MarshalOption) (*Array, error) {
	opts, err := marshalOpts(options)
	if err != nil {
		return nil, err
	}
	return &Array{enc: jsontext.NewEncoder(w), opts: opts}, nil
}

// Write writes s as the next element of the JSON array.
func (a *Array) Write(ctx context.Context, s *structs.Struct) error {
	if !a.written {
		if err := a.enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		a.written = true
	}
	return writeJSON(ctx, a.enc, s, a.opts)
}

// Close finishes writing the JSON array.
func (a *Array) Close() error {
	if !a.written {
		if err := a.enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
	}
	a.written = false
	return a.enc.WriteToken(jsontext.EndArray)
}

// Reset resets the Array to write to a new io.Writer.
func (a *Array) Reset(w io.Writer) {
	a.written = false
	a.enc.Reset(w)
}

// unmarshalOptions provides options for reading JSON into Structs.
type unmarshalOptions struct {
	IgnoreUnknownFields bool
}

// UnmarshalOption provides options for unmarshaling JSON to a Struct.
type UnmarshalOption func(unmarshalOptions) (unmarshalOptions, error)

// WithIgnoreUnknownFields configures whether unknown JSON members are ignored.
func WithIgnoreUnknownFields(ignore bool) UnmarshalOption {
	return func(u unmarshalOptions) (unmarshalOptions, error) {
		u.IgnoreUnknownFields = ignore
		return u, nil
	}
}

// Unmarshal parses a JSON object into a new Struct of d. Fields missing from the object are
// zero. Numbers must fit in their field, they are never truncated.
func Unmarshal(ctx context.Context, data []byte, d *structs.Descriptor, options ...UnmarshalOption) (*structs.Struct, error) {
	return UnmarshalReader(ctx, bytes.NewReader(data), d, options...)
}

// UnmarshalReader is Unmarshal reading the JSON object from r.
func UnmarshalReader(ctx context.Context, r io.Reader, d *structs.Descriptor, options ...UnmarshalOption) (*structs.Struct, error) {
	opts := unmarshalOptions{}
	for _, opt := range options {
		var err error
		opts, err = opt(opts)
		if err != nil {
			return nil, err
		}
	}

	dec := jsontext.NewDecoder(r)
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, parseErr(err)
	}
	if tok.Kind() != '{' {
		return nil, errors.Errorf(errors.KindTypeMismatch, d.Name(), "want a JSON object, got %s", tok.Kind())
	}

	s := d.New()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, parseErr(err)
		}
		if tok.Kind() == '}' {
			if err := atEOF(dec); err != nil {
				return nil, err
			}
			return s, nil
		}
		name := tok.String()

		a, err := d.Accessor(name)
		if err != nil {
			if !opts.IgnoreUnknownFields {
				return nil, err
			}
			if err := dec.SkipValue(); err != nil {
				return nil, parseErr(err)
			}
			continue
		}

		tok, err = dec.ReadToken()
		if err != nil {
			return nil, parseErr(err)
		}
		if err := readValue(a, s, tok); err != nil {
			return nil, err
		}
	}
}

// readValue stores the JSON scalar tok in the field of a.
func readValue(a *structs.Accessor, s *structs.Struct, tok jsontext.Token) error {
	name := a.Field.Name

	switch tok.Kind() {
	case 'n':
		return nil
	case 't', 'f':
		return a.Set(s, tok.Bool())
	case '"':
		return a.Set(s, tok.String())
	case '0':
		u, err := strconv.ParseUint(tok.String(), 10, 64)
		if err != nil {
			return errors.Errorf(errors.KindTypeMismatch, name, "%s is not an unsigned integer", tok.String())
		}
		if a.Field.BitWidth < 64 && u>>uint(a.Field.BitWidth) != 0 {
			return errors.Errorf(errors.KindTypeMismatch, name, "%d does not fit in %d bits", u, a.Field.BitWidth)
		}
		if a.Field.Spec.Type == field.FTEnum {
			ev, ok := a.Field.Spec.Enum.ByDiscriminant(u)
			if !ok {
				return errors.Errorf(errors.KindInvalidDiscriminant, name, "%d is not a discriminant of %s", u, a.Field.Spec.Name)
			}
			return a.Set(s, ev)
		}
		return a.Set(s, u)
	}
	return errors.Errorf(errors.KindTypeMismatch, name, "fields hold scalars, got JSON %s", tok.Kind())
}

// atEOF checks that only whitespace follows the object.
func atEOF(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return parseErr(err)
	}
	return &errors.BitError{Kind: errors.KindParse, Detail: "trailing data after the object, found JSON " + tok.Kind().String()}
}

func parseErr(err error) error {
	return &errors.BitError{Kind: errors.KindParse, Detail: "invalid JSON", Cause: err}
}
