// Command bejcli inspects and converts Binary Encoded JSON documents.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kungfusheep/bej"
	"github.com/kungfusheep/bej/bejvalue"
)

// logger emits structured operational detail (file sizes, dictionary
// stats, decode errors) to stderr. The codec package itself stays silent;
// only this CLI layer logs.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Command is implemented by every bejcli subcommand.
type Command interface {
	Name() string
	DefineFlags(fs *flag.FlagSet)
	Execute(args []string) error
}

// CommandRegistry holds all available commands.
type CommandRegistry struct {
	commands map[string]Command
}

func NewCommandRegistry() *CommandRegistry {
	registry := &CommandRegistry{commands: make(map[string]Command)}

	registry.Register(&EncodeCmd{})
	registry.Register(&DecodeCmd{})
	registry.Register(&DictCmd{})
	registry.Register(&ValidateCmd{})

	return registry
}

func (r *CommandRegistry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

func (r *CommandRegistry) Get(name string) (Command, bool) {
	cmd, exists := r.commands[name]
	return cmd, exists
}

func (r *CommandRegistry) ExecuteCommand(cmdName string, args []string) error {
	cmd, exists := r.Get(cmdName)
	if !exists {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fs := flag.NewFlagSet(fmt.Sprintf("bejcli %s", cmdName), flag.ExitOnError)
	cmd.DefineFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bejcli %s [flags] [input-path]\n", cmdName)
		if fs.NFlag() > 0 {
			fmt.Fprintf(os.Stderr, "\nFlags:\n")
			fs.PrintDefaults()
		}
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Execute(fs.Args())
}

func main() {
	if len(os.Args) < 2 {
		printGlobalHelp()
		os.Exit(1)
	}

	if os.Args[1] == "--help" || os.Args[1] == "-h" {
		printGlobalHelp()
		return
	}

	registry := NewCommandRegistry()

	cmdName := os.Args[1]
	args := os.Args[2:]

	if err := registry.ExecuteCommand(cmdName, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printGlobalHelp() {
	fmt.Print(`bejcli - Binary Encoded JSON CLI tool

Usage:
  bejcli encode -s <schema> [-a <annotation>] [-o <output>] [input.json]
  bejcli decode -s <schema> [-a <annotation>] [-o <output>] [input.bej]
  bejcli dict <dict-file>
  bejcli validate -s <schema> [-a <annotation>] [input.json]

Flags common to encode/decode/validate:
  -s string   path to the schema dictionary (.bin or .map), required
  -a string   path to the annotation dictionary, optional

Flags common to encode/decode:
  -o string   output path, defaults to stdout

The input path is positional and optional; if omitted, input is read
from stdin.
`)
}

func loadDictionaries(schemaPath, annotPath string) (*bej.Dictionary, *bej.Dictionary, error) {
	if schemaPath == "" {
		return nil, nil, fmt.Errorf("-s is required")
	}

	schema, err := bej.LoadDictionary(schemaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading schema dictionary: %w", err)
	}

	var annot *bej.Dictionary
	if annotPath != "" {
		annot, err = bej.LoadDictionary(annotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading annotation dictionary: %w", err)
		}
	}

	return schema, annot, nil
}

// readInput reads from the positional path if given, else stdin.
func readInput(args []string) ([]byte, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("at most one input path may be given")
	}
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

// openOutput opens path for writing, or stdout if path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

// EncodeCmd converts a JSON document into a BEJ document.
type EncodeCmd struct {
	schema string
	annot  string
	output string
}

func (c *EncodeCmd) Name() string { return "encode" }

func (c *EncodeCmd) DefineFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.schema, "s", "", "schema dictionary path (required)")
	fs.StringVar(&c.annot, "a", "", "annotation dictionary path")
	fs.StringVar(&c.output, "o", "", "output path, defaults to stdout")
}

func (c *EncodeCmd) Execute(args []string) error {
	schema, annot, err := loadDictionaries(c.schema, c.annot)
	if err != nil {
		return err
	}

	input, err := readInput(args)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := bejvalue.ParseText(input)
	if err != nil {
		return fmt.Errorf("parsing json: %w", err)
	}

	out, err := bej.NewEncoder(schema, annot).Encode(doc)
	if err != nil {
		logger.Error("encode failed", "input_bytes", len(input), "error", err)
		return fmt.Errorf("encoding: %w", err)
	}
	logger.Info("encoded", "input_bytes", len(input), "output_bytes", len(out))

	dst, err := openOutput(c.output)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer dst.Close()

	_, err = dst.Write(out)
	return err
}

// DecodeCmd converts a BEJ document into JSON text.
type DecodeCmd struct {
	schema string
	annot  string
	output string
}

func (c *DecodeCmd) Name() string { return "decode" }

func (c *DecodeCmd) DefineFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.schema, "s", "", "schema dictionary path (required)")
	fs.StringVar(&c.annot, "a", "", "annotation dictionary path")
	fs.StringVar(&c.output, "o", "", "output path, defaults to stdout")
}

func (c *DecodeCmd) Execute(args []string) error {
	schema, annot, err := loadDictionaries(c.schema, c.annot)
	if err != nil {
		return err
	}

	input, err := readInput(args)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := bej.NewDecoder(schema, annot).Decode(input)
	if err != nil {
		logger.Error("decode failed", "input_bytes", len(input), "error", err)
		return fmt.Errorf("decoding: %w", err)
	}
	logger.Info("decoded", "input_bytes", len(input))

	dst, err := openOutput(c.output)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer dst.Close()

	_, err = fmt.Fprintln(dst, bejvalue.WriteText(doc))
	return err
}

// DictCmd dumps a dictionary's entry tree to stdout. [EXPANSION]:
// ambient dictionary-introspection tooling, the BEJ analogue of the
// teacher's schema inspection commands.
type DictCmd struct{}

func (c *DictCmd) Name() string { return "dict" }

func (c *DictCmd) DefineFlags(fs *flag.FlagSet) {}

func (c *DictCmd) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bejcli dict <dict-file>")
	}

	d, err := bej.LoadDictionary(args[0])
	if err != nil {
		return fmt.Errorf("loading dictionary: %w", err)
	}
	logger.Info("loaded dictionary", "path", args[0], "entries", d.EntryCount())

	return bej.DumpDictionary(os.Stdout, d)
}

// ValidateCmd round-trips a JSON document through the codec and reports
// whether the decoded result is equal to the original. [EXPANSION]:
// the BEJ analogue of the teacher's schema-compatibility checker.
type ValidateCmd struct {
	schema string
	annot  string
}

func (c *ValidateCmd) Name() string { return "validate" }

func (c *ValidateCmd) DefineFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.schema, "s", "", "schema dictionary path (required)")
	fs.StringVar(&c.annot, "a", "", "annotation dictionary path")
}

func (c *ValidateCmd) Execute(args []string) error {
	schema, annot, err := loadDictionaries(c.schema, c.annot)
	if err != nil {
		return err
	}

	input, err := readInput(args)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	original, err := bejvalue.ParseText(input)
	if err != nil {
		return fmt.Errorf("parsing json: %w", err)
	}

	enc := bej.NewEncoder(schema, annot)
	wire, err := enc.Encode(original)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	dec := bej.NewDecoder(schema, annot)
	roundTripped, err := dec.Decode(wire)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	if !bejvalue.Equal(original, roundTripped) {
		fmt.Fprintln(os.Stderr, "round trip mismatch")
		fmt.Printf("original:  %s\n", bejvalue.WriteText(original))
		fmt.Printf("roundtrip: %s\n", bejvalue.WriteText(roundTripped))
		os.Exit(1)
	}

	fmt.Printf("ok: %d bytes, round trip matches\n", len(wire))
	return nil
}
