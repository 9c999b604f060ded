package parser

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/kaleido-lang/kaleido/pkg/ast"
	"github.com/kaleido-lang/kaleido/pkg/lexer"
	"gopkg.in/yaml.v3"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name  string  `yaml:"name"`
	Input string  `yaml:"input"`
	AST   ASTSpec `yaml:"ast"`
}

// ASTSpec represents the expected AST structure
type ASTSpec struct {
	Kind   string    `yaml:"kind"`
	Name   string    `yaml:"name,omitempty"`
	Params []string  `yaml:"params,omitempty"`
	Callee string    `yaml:"callee,omitempty"`
	Body   *ASTSpec  `yaml:"body,omitempty"`
	Left   *ASTSpec  `yaml:"left,omitempty"`
	Right  *ASTSpec  `yaml:"right,omitempty"`
	Args   []ASTSpec `yaml:"args,omitempty"`
	Op     string    `yaml:"op,omitempty"`
	Value  *float64  `yaml:"value,omitempty"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func newTestParser(input string) *Parser {
	return New(lexer.New(input), NewWriterReporter(io.Discard))
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			p := newTestParser(tc.Input)
			decl, err := p.ParseDeclaration()

			if err != nil {
				t.Fatalf("parser error: %v", err)
			}
			if decl == nil {
				t.Fatal("ParseDeclaration returned nil")
			}

			verifyAST(t, decl, tc.AST)
		})
	}
}

func verifyAST(t *testing.T, node ast.Node, spec ASTSpec) {
	t.Helper()

	switch spec.Kind {
	case "Function":
		fn, ok := node.(*ast.Function)
		if !ok {
			t.Fatalf("expected Function, got %T", node)
		}
		if fn.Proto.Name != spec.Name {
			t.Errorf("Function name: expected %q, got %q", spec.Name, fn.Proto.Name)
		}
		verifyParams(t, fn.Proto.Params, spec.Params)
		if spec.Body != nil {
			verifyAST(t, fn.Body, *spec.Body)
		}

	case "Prototype":
		proto, ok := node.(*ast.Prototype)
		if !ok {
			t.Fatalf("expected Prototype, got %T", node)
		}
		if proto.Name != spec.Name {
			t.Errorf("Prototype.Name: expected %q, got %q", spec.Name, proto.Name)
		}
		verifyParams(t, proto.Params, spec.Params)

	case "Number":
		num, ok := node.(ast.Number)
		if !ok {
			t.Fatalf("expected Number, got %T", node)
		}
		if spec.Value != nil && num.Value != *spec.Value {
			t.Errorf("Number.Value: expected %v, got %v", *spec.Value, num.Value)
		}

	case "Variable":
		variable, ok := node.(ast.Variable)
		if !ok {
			t.Fatalf("expected Variable, got %T", node)
		}
		if variable.Name != spec.Name {
			t.Errorf("Variable.Name: expected %q, got %q", spec.Name, variable.Name)
		}

	case "Binary":
		binary, ok := node.(ast.Binary)
		if !ok {
			t.Fatalf("expected Binary, got %T", node)
		}
		if spec.Op != "" && string(binary.Op) != spec.Op {
			t.Errorf("Binary.Op: expected %q, got %q", spec.Op, string(binary.Op))
		}
		if spec.Left != nil {
			verifyAST(t, binary.Left, *spec.Left)
		}
		if spec.Right != nil {
			verifyAST(t, binary.Right, *spec.Right)
		}

	case "Call":
		call, ok := node.(ast.Call)
		if !ok {
			t.Fatalf("expected Call, got %T", node)
		}
		if call.Callee != spec.Callee {
			t.Errorf("Call.Callee: expected %q, got %q", spec.Callee, call.Callee)
		}
		if len(call.Args) != len(spec.Args) {
			t.Fatalf("Call.Args: expected %d args, got %d", len(spec.Args), len(call.Args))
		}
		for i, argSpec := range spec.Args {
			verifyAST(t, call.Args[i], argSpec)
		}

	default:
		t.Fatalf("unknown AST kind: %s", spec.Kind)
	}
}

func verifyParams(t *testing.T, got, expected []string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("params: expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("params[%d]: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	p := newTestParser(input)
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	return expr
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Multiplicative before additive
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"2 * 3 + 4", "((2 * 3) + 4)"},
		// Comparison binds loosest
		{"1 + 2 < 3 * 4", "((1 + 2) < (3 * 4))"},
		{"a > b - 1", "(a > (b - 1))"},
		// Parentheses override precedence
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		// Left associativity for equal precedence
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 / 4 / 2", "((8 / 4) / 2)"},
		{"1 + 2 - 3", "((1 + 2) - 3)"},
		// Longer mixed chain
		{"1 + 2 * 3 - 4 / 2", "((1 + (2 * 3)) - (4 / 2))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			actual := ast.ExprString(expr)
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestFunctionCall(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		callee   string
		argCount int
	}{
		{"no args", "foo()", "foo", 0},
		{"one arg", "bar(1)", "bar", 1},
		{"two args", "foo(1, 2)", "foo", 2},
		{"nested call", "outer(inner(x), 2)", "outer", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			call, ok := expr.(ast.Call)
			if !ok {
				t.Fatalf("expected Call, got %T", expr)
			}
			if call.Callee != tt.callee {
				t.Errorf("expected callee %q, got %q", tt.callee, call.Callee)
			}
			if len(call.Args) != tt.argCount {
				t.Errorf("expected %d args, got %d", tt.argCount, len(call.Args))
			}
		})
	}
}

func TestParenGroupingIsTransparent(t *testing.T) {
	// '(' expression ')' yields the inner expression itself, not a wrapper.
	expr := parseExpr(t, "(42)")
	num, ok := expr.(ast.Number)
	if !ok {
		t.Fatalf("expected Number, got %T", expr)
	}
	if num.Value != 42 {
		t.Errorf("expected value 42, got %v", num.Value)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unterminated group", "(1+2", "expected ')'"},
		{"missing operand", "1 +", "expected expression"},
		{"bare operator", "*", "expected expression"},
		{"unknown character", "1 + @", "expected expression, got '@'"},
		{"bad argument separator", "foo(1 2)", "expected ')' or ',' in argument list"},
		{"missing function name", "def 1(x) x", "expected function name in prototype"},
		{"missing paren in prototype", "def f x", "expected '(' in prototype"},
		{"unterminated prototype", "extern f(x", "expected ')' in prototype"},
		{"extern without name", "extern", "expected function name in prototype, got end of input"},
		{"definition without body", "def f(x)", "expected expression, got end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.input)
			decl, err := p.ParseDeclaration()
			if err == nil {
				t.Fatalf("expected error, got declaration %v", decl)
			}
			if decl != nil {
				t.Errorf("expected nil declaration alongside error, got %v", decl)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error to contain %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	p := newTestParser("def f(x)\n  x + *")
	_, err := p.ParseDeclaration()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Line != 2 {
		t.Errorf("expected line 2, got %d", parseErr.Line)
	}
	if parseErr.Column != 7 {
		t.Errorf("expected col 7, got %d", parseErr.Column)
	}
}

func TestDuplicateParameterNames(t *testing.T) {
	// Duplicate parameters are accepted as-is; nothing validates them.
	p := newTestParser("def f(x x) x")
	decl, err := p.ParseDeclaration()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	fn := decl.(*ast.Function)
	verifyParams(t, fn.Proto.Params, []string{"x", "x"})
}

func TestTopLevelExpressionWrapping(t *testing.T) {
	p := newTestParser("1 + 2")
	decl, err := p.ParseDeclaration()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	fn, ok := decl.(*ast.Function)
	if !ok {
		t.Fatalf("expected Function, got %T", decl)
	}
	if !fn.Proto.IsAnonymous() {
		t.Errorf("expected anonymous prototype, got name %q", fn.Proto.Name)
	}
	if len(fn.Proto.Params) != 0 {
		t.Errorf("expected zero parameters, got %v", fn.Proto.Params)
	}
	if _, ok := fn.Body.(ast.Binary); !ok {
		t.Errorf("expected Binary body, got %T", fn.Body)
	}
}

func TestSemicolonsAreSkipped(t *testing.T) {
	p := newTestParser(";; 1 + 2 ;;")
	decl, err := p.ParseDeclaration()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if decl == nil {
		t.Fatal("expected a declaration, got nil")
	}
	decl, err = p.ParseDeclaration()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if decl != nil {
		t.Errorf("expected end of input, got %v", decl)
	}
}

func TestEmptyInput(t *testing.T) {
	p := newTestParser("")
	decl, err := p.ParseDeclaration()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if decl != nil {
		t.Errorf("expected nil declaration at end of input, got %v", decl)
	}
}

func TestParseProgram(t *testing.T) {
	input := `extern sin(a)
def double(x) x * 2
double(21);`

	p := newTestParser(input)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if len(prog.Decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(prog.Decls))
	}
	if _, ok := prog.Decls[0].(*ast.Prototype); !ok {
		t.Errorf("expected Prototype first, got %T", prog.Decls[0])
	}
	if _, ok := prog.Decls[1].(*ast.Function); !ok {
		t.Errorf("expected Function second, got %T", prog.Decls[1])
	}
}

func TestParseProgramRecovery(t *testing.T) {
	// One bad construct between two good ones: both good declarations
	// survive and exactly one diagnostic is reported.
	input := `def good(x) x + 1
def 1bad(
def alsogood(y) y * 2`

	var diagnostics bytes.Buffer
	reporter := NewWriterReporter(&diagnostics)
	p := New(lexer.New(input), reporter)

	prog, err := p.ParseProgram()
	if err == nil {
		t.Fatal("expected error from ParseProgram, got nil")
	}
	if !reporter.HadError() {
		t.Error("expected reporter to record an error")
	}
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(prog.Decls))
	}

	lines := strings.Split(strings.TrimSpace(diagnostics.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 diagnostic line, got %d: %q", len(lines), diagnostics.String())
	}
	if !strings.Contains(lines[0], "expected function name in prototype") {
		t.Errorf("unexpected diagnostic: %q", lines[0])
	}
}

func TestParseProgramResyncAtSemicolon(t *testing.T) {
	input := `1 + @ ; 2 + 3`

	var diagnostics bytes.Buffer
	p := New(lexer.New(input), NewWriterReporter(&diagnostics))

	prog, err := p.ParseProgram()
	if err == nil {
		t.Fatal("expected error from ParseProgram, got nil")
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 declaration after resync, got %d", len(prog.Decls))
	}
	fn := prog.Decls[0].(*ast.Function)
	if got := ast.ExprString(fn.Body); got != "(2 + 3)" {
		t.Errorf("expected body (2 + 3), got %q", got)
	}
}

func TestPrintedFormRoundTrips(t *testing.T) {
	// Re-parsing the printed form of an expression prints identically; the
	// printed form pins down the grouping the parser chose.
	inputs := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"1 - 2 - 3",
		"foo(a, b + 1) < bar()",
		"x / y / z * 2",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			printed := ast.ExprString(parseExpr(t, input))
			reprinted := ast.ExprString(parseExpr(t, printed))
			if printed != reprinted {
				t.Errorf("round trip changed the tree: %q vs %q", printed, reprinted)
			}
		})
	}
}
