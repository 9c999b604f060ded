package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kaleido-lang/kaleido/pkg/ast"
	"github.com/kaleido-lang/kaleido/pkg/lexer"
	"github.com/kaleido-lang/kaleido/pkg/parser"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug flags for dumping front-end stages
var (
	dTokens   bool
	dAST      bool
	watchMode bool
)

// ErrParseFailed indicates the input did not fully parse
var ErrParseFailed = errors.New("parse failed")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Normalize compiler-style single-dash flags to double-dash for pflag compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrParseFailed) {
			return 65
		}
		return 1
	}
	return 0
}

// debugFlagNames lists all debug flags that should accept single-dash style
var debugFlagNames = []string{"dtokens", "dast"}

// normalizeFlags converts compiler-style single-dash flags like -dtokens to --dtokens
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kaleido [file]",
		Short: "kaleido parses Kaleidoscope source into an AST",
		Long: `kaleido is the front end of the Kaleidoscope expression language.
It reads source text, reports a diagnostic for each top-level construct
that does not parse, and can dump the token stream or the recognized
AST for inspection. With no file argument (or "-") it reads standard
input.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "-"
			if len(args) > 0 {
				filename = args[0]
			}

			if watchMode {
				if filename == "-" {
					return errors.New("--watch requires a file argument")
				}
				return doWatch(filename, out, errOut)
			}

			// Handle -dtokens: dump the token stream
			if dTokens {
				return doTokens(filename, out, errOut)
			}

			// Handle -dast: parse and dump the AST
			if dAST {
				return doAST(filename, out, errOut)
			}

			program, err := parseInput(filename, errOut)
			if err != nil {
				return err
			}
			fmt.Fprintf(errOut, "kaleido: parsed %d declarations from %s\n",
				len(program.Decls), displayName(filename))
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVarP(&dTokens, "dtokens", "", false, "Dump the token stream")
	rootCmd.Flags().BoolVarP(&dAST, "dast", "", false, "Dump the AST after parsing")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Re-parse the file on every change")

	return rootCmd
}

// displayName is the input name used in diagnostics
func displayName(filename string) string {
	if filename == "-" {
		return "<stdin>"
	}
	return filename
}

// readSource reads the named file, or standard input for "-"
func readSource(filename string, errOut io.Writer) (string, error) {
	if filename == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(errOut, "kaleido: error reading stdin: %v\n", err)
			return "", err
		}
		return string(content), nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "kaleido: error reading %s: %v\n", filename, err)
		return "", err
	}
	return string(content), nil
}

// fileReporter prefixes each diagnostic with the input name, producing
// "file: line L, col C: msg" lines on the error writer.
type fileReporter struct {
	name   string
	w      io.Writer
	hadErr bool
}

func (r *fileReporter) Report(err error) {
	r.hadErr = true
	fmt.Fprintf(r.w, "%s: %v\n", r.name, err)
}

func (r *fileReporter) HadError() bool {
	return r.hadErr
}

// parseInput reads and parses a source file, writing one diagnostic line per
// failed construct to errOut. The returned program holds every construct
// that parsed even when an error is returned.
func parseInput(filename string, errOut io.Writer) (*ast.Program, error) {
	content, err := readSource(filename, errOut)
	if err != nil {
		return nil, err
	}

	l := lexer.New(content)
	reporter := &fileReporter{name: displayName(filename), w: errOut}
	p := parser.New(l, reporter)
	program, err := p.ParseProgram()
	if err != nil {
		return program, fmt.Errorf("%s: %w", displayName(filename), ErrParseFailed)
	}
	return program, nil
}

// doTokens dumps the token stream, one token per line
func doTokens(filename string, out, errOut io.Writer) error {
	content, err := readSource(filename, errOut)
	if err != nil {
		return err
	}

	l := lexer.New(content)
	for {
		tok := l.NextToken()
		if tok.Type == lexer.TokenEOF {
			return nil
		}
		fmt.Fprintln(out, tokenLine(tok))
	}
}

// tokenLine formats one token for -dtokens output
func tokenLine(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenIdentifier:
		return fmt.Sprintf("IDENT %s", tok.Literal)
	case lexer.TokenNumber:
		return fmt.Sprintf("NUMBER %v", tok.Value)
	case lexer.TokenUnknown:
		return fmt.Sprintf("UNKNOWN %s", tok.Literal)
	default:
		return tok.Type.String()
	}
}

// doAST parses the file and writes the AST to a .parsed.ks file, echoing it
// to stdout. When reading standard input only stdout is written.
func doAST(filename string, out, errOut io.Writer) error {
	program, err := parseInput(filename, errOut)
	if err != nil {
		return err
	}

	if filename != "-" {
		outputFilename := parsedOutputFilename(filename)
		outFile, err := os.Create(outputFilename)
		if err != nil {
			fmt.Fprintf(errOut, "kaleido: error creating %s: %v\n", outputFilename, err)
			return err
		}
		defer outFile.Close()

		printer := ast.NewPrinter(outFile)
		printer.PrintProgram(program)
	}

	// Also print to stdout for convenience
	printer := ast.NewPrinter(out)
	printer.PrintProgram(program)

	return nil
}

// parsedOutputFilename returns the output filename for -dast
// input.ks -> input.parsed.ks
func parsedOutputFilename(filename string) string {
	ext := ".ks"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".parsed.ks"
	}
	return filename + ".parsed.ks"
}
