// bitc reads a .bits schema, prints the packed layout of every Bitfield in it and can
// decode a payload against one of them.
//
//	bitc [-v] [-struct Name -hex 9c000001] file.bits
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	osfs "github.com/gopherfs/fs/io/os"
	"github.com/gostdlib/base/context"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/bearlytools/bitpack/internal/idl"
	"github.com/bearlytools/bitpack/languages/go/bitjson"
	"github.com/bearlytools/bitpack/languages/go/errors"
	"github.com/bearlytools/bitpack/languages/go/structs"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	enumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

// styler renders headings. It is a no-op unless output goes to a terminal.
type styler struct {
	color bool
}

func newStyler(out io.Writer) styler {
	f, ok := out.(*os.File)
	return styler{color: ok && term.IsTerminal(int(f.Fd()))}
}

func (s styler) heading(text string) string {
	if !s.color {
		return text
	}
	return headingStyle.Render(text)
}

func (s styler) enum(text string) string {
	if !s.color {
		return text
	}
	return enumStyle.Render(text)
}

func main() {
	ctx := context.Background()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		exitf("%s", errors.Wrap(ctx, err))
	}
}

type config struct {
	verbose bool
	hex     string
	strct   string
	path    string
}

func parseFlags(args []string, out io.Writer) (config, error) {
	c := config{}

	fl := flag.NewFlagSet("bitc", flag.ContinueOnError)
	fl.SetOutput(out)
	fl.BoolVar(&c.verbose, "v", false, "log debug output to stderr")
	fl.StringVar(&c.hex, "hex", "", "hex encoded payload to decode, requires -struct")
	fl.StringVar(&c.strct, "struct", "", "the Bitfield to decode -hex with")
	if err := fl.Parse(args); err != nil {
		return config{}, err
	}

	if fl.NArg() != 1 {
		return config{}, fmt.Errorf("usage: bitc [-v] [-struct Name -hex HEX] file.bits")
	}
	c.path = fl.Arg(0)
	if (c.hex == "") != (c.strct == "") {
		return config{}, fmt.Errorf("-hex and -struct must be used together")
	}
	return c, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	c, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	if c.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer l.Sync()
		structs.SetLogger(l)
		defer structs.SetLogger(nil)
	}

	file, compiled, err := load(ctx, c.path)
	if err != nil {
		return err
	}

	if c.hex == "" {
		printLayouts(out, newStyler(out), file, compiled)
		return nil
	}
	return decode(ctx, out, compiled, c.strct, c.hex)
}

// load reads, parses and compiles the schema at path.
func load(ctx context.Context, path string) (*idl.File, idl.Compiled, error) {
	fs, err := osfs.New()
	if err != nil {
		return nil, idl.Compiled{}, err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, idl.Compiled{}, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	content, err := fs.ReadFile(path)
	if err != nil {
		return nil, idl.Compiled{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	file, err := idl.Parse(ctx, content)
	if err != nil {
		return nil, idl.Compiled{}, err
	}
	compiled, err := file.Compile(nil)
	if err != nil {
		return nil, idl.Compiled{}, err
	}
	return file, compiled, nil
}

func printLayouts(out io.Writer, st styler, file *idl.File, compiled idl.Compiled) {
	fmt.Fprintf(out, "%s\n", st.heading(fmt.Sprintf("package %s (version %d)", file.Package, file.Version)))

	for _, e := range file.Enums {
		spec, err := compiled.Registry.Lookup(e.Name)
		if err != nil {
			continue
		}
		vals := make([]string, 0, spec.Enum.Len())
		for _, v := range spec.Enum.Values {
			vals = append(vals, fmt.Sprintf("%s=%d", v.Name, v.Discriminant))
		}
		fmt.Fprintf(out, "\n%s\n", st.enum(fmt.Sprintf("Enum %s: %d bits, %s", e.Name, spec.Bits, strings.Join(vals, " "))))
	}

	for _, b := range file.Bitfields {
		d := compiled.Structs[b.Name]
		fmt.Fprintf(out, "\n%s\n%s", st.heading("Bitfield "+b.Name), d.Layout().Table())
	}
}

func decode(ctx context.Context, out io.Writer, compiled idl.Compiled, name, payload string) error {
	d, ok := compiled.Structs[name]
	if !ok {
		return errors.Errorf(errors.KindUnknownField, name, "schema has no such Bitfield")
	}

	payload = strings.TrimPrefix(strings.ReplaceAll(payload, " ", ""), "0x")
	b, err := hex.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("-hex is not valid hex: %w", err)
	}

	s, err := d.FromBytes(b)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", s)
	for _, a := range d.Fields() {
		v, err := a.Get(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-16s [%3d, %3d)  %v\n", a.Field.Name, a.Field.Start, a.Field.End, v)
	}

	j, err := bitjson.Marshal(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", j)
	return nil
}

func exitf(s string, i ...any) {
	fmt.Printf(s+"\n", i...)
	os.Exit(1)
}
