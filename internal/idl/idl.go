// Package idl parses .bits schema files. A schema declares enumerated types and the
// bitfield structs built from them:
//
//	package net
//	version 0
//
//	Enum Mode {
//		Off
//		Low
//		High @3
//		Auto @2
//	}
//
//	Bitfield Header {
//		Flag bool
//		Kind B3 @bits(3)
//		Mode Mode
//		Rest B26
//	}
//
// A variant without an @N discriminant gets its position in the Enum. A field's optional
// @bits(N) asserts the width of its type. Lines starting with // are comments.
package idl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gostdlib/base/context"
	"github.com/johnsiilver/halfpike"

	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/specifier"
	"github.com/bearlytools/bitpack/languages/go/structs"
)

// File is a parsed .bits file.
type File struct {
	Package string
	Version int
	// Enums are in declaration order.
	Enums []*Enum
	// Bitfields are in declaration order.
	Bitfields []*Bitfield

	idents map[string]int
}

// Enum is a parsed Enum block.
type Enum struct {
	Name     string
	Line     int
	Variants []specifier.Variant
}

// Bitfield is a parsed Bitfield block.
type Bitfield struct {
	Name   string
	Line   int
	Fields []structs.FieldDecl
}

// New returns an empty File for use with halfpike.Parse.
func New() *File {
	return &File{idents: map[string]int{}}
}

// Parse parses the content of a .bits file.
func Parse(ctx context.Context, content []byte) (*File, error) {
	f := New()
	if err := halfpike.Parse(ctx, string(content), f); err != nil {
		return nil, &errors.BitError{Kind: errors.KindParse, Detail: "invalid schema", Cause: err}
	}
	return f, nil
}

// Validate implements halfpike.Validator.
func (f *File) Validate() error {
	if f.Package == "" {
		return fmt.Errorf("schema has no package line")
	}
	return nil
}

// Start is the start point for reading the schema.
func (f *File) Start(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	return f.ParsePackage
}

// skipCommentsAndWhitespace skips comment lines and empty lines.
func (f *File) skipCommentsAndWhitespace(p *halfpike.Parser) {
	for {
		line := p.Next()
		if p.EOF(line) {
			p.Backup()
			return
		}
		if len(line.Items) == 0 || (len(line.Items) == 1 && line.Items[0].Val == "\n") {
			continue
		}
		if isComment(line.Items[0]) {
			continue
		}
		p.Backup()
		return
	}
}

// ParsePackage parses the package line, which must come first.
func (f *File) ParsePackage(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	f.skipCommentsAndWhitespace(p)

	line := p.Next()
	if p.EOF(line) {
		return p.Errorf("[Line %d] error: reached the end of the file, want: 'package {{package name}}'", line.LineNum)
	}
	if len(line.Items) < 3 {
		return p.Errorf("[Line %d] error: got %q, want: 'package {{package name}}'", line.LineNum, line.Raw)
	}
	if err := caseSensitiveCheck("package", line.Items[0].Val); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	if err := validPackage(line.Items[1].Val); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	f.Package = line.Items[1].Val

	if err := commentOrEOL(line, 2); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	return f.ParseVersion
}

// ParseVersion parses the version line, which must follow the package line.
func (f *File) ParseVersion(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	f.skipCommentsAndWhitespace(p)

	line := p.Next()
	if p.EOF(line) || len(line.Items) < 3 {
		return p.Errorf("[Line %d] error: got %q, want: 'version {{Integer}}'", line.LineNum, line.Raw)
	}
	if err := caseSensitiveCheck("version", line.Items[0].Val); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}

	v, err := line.Items[1].ToInt()
	if err != nil || v < 0 {
		return p.Errorf("[Line %d] error: got: %q, want: 'version {{Integer}}'", line.LineNum, line.Raw)
	}
	f.Version = v

	if err := commentOrEOL(line, 2); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	return f.FindNext
}

// FindNext finds the next Enum or Bitfield block.
func (f *File) FindNext(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	f.skipCommentsAndWhitespace(p)

	line := p.Next()
	if p.EOF(line) {
		return nil
	}

	switch line.Items[0].Val {
	case "Enum":
		p.Backup()
		return f.ParseEnum
	case "Bitfield":
		p.Backup()
		return f.ParseBitfield
	}
	if strings.EqualFold(line.Items[0].Val, "enum") || strings.EqualFold(line.Items[0].Val, "bitfield") {
		return p.Errorf("[Line %d] error: keywords are 'Enum' and 'Bitfield', got %q", line.LineNum, line.Items[0].Val)
	}
	return p.Errorf("[Line %d] error: do not understand this line, want an Enum or Bitfield", line.LineNum)
}

// blockStart parses a "Keyword Name {" line.
func (f *File) blockStart(keyword string, line halfpike.Line) (string, error) {
	if len(line.Items) < 4 {
		return "", fmt.Errorf("[Line %d] error: got %q, want: '%s {{Name}} {'", line.LineNum, line.Raw, keyword)
	}
	if err := caseSensitiveCheck(keyword, line.Items[0].Val); err != nil {
		return "", fmt.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	name := line.Items[1].Val
	if err := validateIdent(name); err != nil {
		return "", fmt.Errorf("[Line %d] error: %s identifier: %w", line.LineNum, keyword, err)
	}
	if line.Items[2].Val != "{" {
		return "", fmt.Errorf("[Line %d] error: expected '{' after %s %s, got %q", line.LineNum, keyword, name, line.Items[2].Val)
	}
	if err := commentOrEOL(line, 3); err != nil {
		return "", fmt.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	if prev, ok := f.idents[name]; ok {
		return "", fmt.Errorf("[Line %d] error: %q is already declared on line %d", line.LineNum, name, prev)
	}
	f.idents[name] = line.LineNum
	return name, nil
}

// ParseEnum parses an Enum block.
func (f *File) ParseEnum(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	line := p.Next()
	name, err := f.blockStart("Enum", line)
	if err != nil {
		return p.Errorf("%s", err)
	}
	e := &Enum{Name: name, Line: line.LineNum}

	seen := map[string]bool{}
	for {
		f.skipCommentsAndWhitespace(p)
		line = p.Next()
		if p.EOF(line) {
			return p.Errorf("[Line %d] error: malformed Enum %s, reached the end of the file before the closing '}'", line.LineNum, name)
		}
		if line.Items[0].Val == "}" {
			if err := commentOrEOL(line, 1); err != nil {
				return p.Errorf("[Line %d] error: %s", line.LineNum, err)
			}
			break
		}

		vName := line.Items[0].Val
		if err := validateIdent(vName); err != nil {
			return p.Errorf("[Line %d] error: Enum %s variant: %s", line.LineNum, name, err)
		}
		if seen[vName] {
			return p.Errorf("[Line %d] error: Enum %s already contains variant %q", line.LineNum, name, vName)
		}
		seen[vName] = true

		v := specifier.Bare(vName)
		next := 1
		if len(line.Items) > 1 && strings.HasPrefix(line.Items[1].Val, "@") {
			d, err := strconv.ParseUint(strings.TrimPrefix(line.Items[1].Val, "@"), 10, 64)
			if err != nil {
				return p.Errorf("[Line %d] error: expected @{{Number}} after variant %s, got %q", line.LineNum, vName, line.Items[1].Val)
			}
			v = specifier.Explicit(vName, d)
			next = 2
		}
		if err := commentOrEOL(line, next); err != nil {
			return p.Errorf("[Line %d] error: %s", line.LineNum, err)
		}
		e.Variants = append(e.Variants, v)
	}

	f.Enums = append(f.Enums, e)
	return f.FindNext
}

// ParseBitfield parses a Bitfield block.
func (f *File) ParseBitfield(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	line := p.Next()
	name, err := f.blockStart("Bitfield", line)
	if err != nil {
		return p.Errorf("%s", err)
	}
	b := &Bitfield{Name: name, Line: line.LineNum}

	seen := map[string]bool{}
	for {
		f.skipCommentsAndWhitespace(p)
		line = p.Next()
		if p.EOF(line) {
			return p.Errorf("[Line %d] error: malformed Bitfield %s, reached the end of the file before the closing '}'", line.LineNum, name)
		}
		if line.Items[0].Val == "}" {
			if err := commentOrEOL(line, 1); err != nil {
				return p.Errorf("[Line %d] error: %s", line.LineNum, err)
			}
			break
		}

		if len(line.Items) < 3 || isComment(line.Items[1]) {
			return p.Errorf("[Line %d] error: got %q, want: '{{Name}} {{Type}} [@bits({{Integer}})]'", line.LineNum, line.Raw)
		}
		fName, typ := line.Items[0].Val, line.Items[1].Val
		if err := validFieldName(fName); err != nil {
			return p.Errorf("[Line %d] error: Bitfield %s field: %s", line.LineNum, name, err)
		}
		if seen[fName] {
			return p.Errorf("[Line %d] error: Bitfield %s already contains field %q", line.LineNum, name, fName)
		}
		seen[fName] = true

		fd := structs.Field(fName, typ)
		next := 2
		if len(line.Items) > 2 && strings.HasPrefix(line.Items[2].Val, "@") {
			n, err := bitsAssertion(line.Items[2].Val)
			if err != nil {
				return p.Errorf("[Line %d] error: field %s: %s", line.LineNum, fName, err)
			}
			fd.Assert = &n
			next = 3
		}
		if err := commentOrEOL(line, next); err != nil {
			return p.Errorf("[Line %d] error: %s", line.LineNum, err)
		}
		b.Fields = append(b.Fields, fd)
	}

	f.Bitfields = append(f.Bitfields, b)
	return f.FindNext
}

// bitsAssertion parses "@bits(N)".
func bitsAssertion(s string) (int, error) {
	inner, ok := strings.CutPrefix(s, "@bits(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return 0, fmt.Errorf("got %q, want: '@bits({{Integer}})'", s)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(inner, ")"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("got %q, want: '@bits({{Integer}})'", s)
	}
	return n, nil
}

type compileOptions struct {
	structOpts []structs.Option
}

// CompileOption is an optional argument to Compile.
type CompileOption func(*compileOptions)

// WithStructOptions passes opts to every structs.Define call.
func WithStructOptions(opts ...structs.Option) CompileOption {
	return func(o *compileOptions) {
		o.structOpts = append(o.structOpts, opts...)
	}
}

// Compiled holds the result of Compile.
type Compiled struct {
	// Registry holds the built in specifiers of the registry given to Compile plus the file's Enums.
	Registry *specifier.Registry
	// Structs holds a Descriptor for every Bitfield, by name.
	Structs map[string]*structs.Descriptor
}

// Compile derives every Enum into a clone of reg and defines every Bitfield against it.
// reg is not modified. A nil reg uses specifier.Default().
func (f *File) Compile(reg *specifier.Registry, options ...CompileOption) (Compiled, error) {
	opts := compileOptions{}
	for _, o := range options {
		o(&opts)
	}
	if reg == nil {
		reg = specifier.Default()
	}
	reg = reg.Clone()

	for _, e := range f.Enums {
		s, err := specifier.DeriveEnum(e.Name, e.Variants)
		if err != nil {
			return Compiled{}, lineErr(err, e.Line)
		}
		if err := reg.Register(s); err != nil {
			return Compiled{}, lineErr(err, e.Line)
		}
	}

	c := Compiled{Registry: reg, Structs: make(map[string]*structs.Descriptor, len(f.Bitfields))}
	sopts := append([]structs.Option{structs.WithRegistry(reg)}, opts.structOpts...)
	for _, b := range f.Bitfields {
		d, err := structs.Define(b.Name, b.Fields, sopts...)
		if err != nil {
			return Compiled{}, lineErr(err, b.Line)
		}
		c.Structs[b.Name] = d
	}
	return c, nil
}

// lineErr adds the line a block was declared on to a *BitError's detail.
func lineErr(err error, line int) error {
	var be *errors.BitError
	if !errors.As(err, &be) {
		return err
	}
	cp := *be
	cp.Detail = fmt.Sprintf("[Line %d] %s", line, be.Detail)
	return &cp
}

func caseSensitiveCheck(want string, item string) error {
	if item != want {
		if strings.EqualFold(item, want) {
			return fmt.Errorf("%q keyword found, but it is required to be %q", item, want)
		}
		return fmt.Errorf("got: %q, want: %q", item, want)
	}
	return nil
}

func isComment(item halfpike.Item) bool {
	return strings.HasPrefix(item.Val, "//")
}

func commentOrEOL(line halfpike.Line, from int) error {
	if from >= len(line.Items) {
		return nil
	}
	if isComment(line.Items[from]) {
		return nil
	}
	if len(line.Items[from:]) > 1 {
		return fmt.Errorf("got item %q after %q, which was unexpected", halfpike.ItemJoin(line, from, len(line.Items)), halfpike.ItemJoin(line, 0, from))
	}
	return nil
}

// validPackage checks a package name: a lowercase letter followed by letters, digits or '_'.
func validPackage(pkgName string) error {
	runes := []rune(pkgName)
	if len(runes) == 0 {
		return fmt.Errorf("package name cannot be empty")
	}
	if unicode.IsUpper(runes[0]) {
		return fmt.Errorf("package name cannot start with an uppercase letter")
	}
	if !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("package name must start with a letter")
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			continue
		}
		return fmt.Errorf("package name contains character %q which is invalid for a package name", r)
	}
	return nil
}

// validateIdent checks an Enum, Bitfield or variant name: an uppercase letter followed by
// letters or digits.
func validateIdent(ident string) error {
	runes := []rune(ident)
	if len(runes) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("identifier must start with a letter")
	}
	if !unicode.IsUpper(runes[0]) {
		return fmt.Errorf("identifier cannot start with a lowercase letter")
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		return fmt.Errorf("identifier contains character %q which is invalid for an identifier", r)
	}
	return nil
}

// validFieldName checks a field name: a letter followed by letters, digits or '_'.
func validFieldName(name string) error {
	runes := []rune(name)
	if len(runes) == 0 {
		return fmt.Errorf("field name cannot be empty")
	}
	if !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("field name must start with a letter")
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			continue
		}
		return fmt.Errorf("field name contains character %q which is invalid for a field name", r)
	}
	return nil
}
