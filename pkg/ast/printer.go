// Package ast provides AST printing functionality
package ast

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer outputs the AST as Kaleidoscope source. Binary expressions are
// printed fully parenthesized so the operator nesting chosen by the parser
// is visible in the output.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram prints each declaration of a program on its own line
func (p *Printer) PrintProgram(prog *Program) {
	for _, decl := range prog.Decls {
		p.printDecl(decl)
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) printDecl(decl Decl) {
	switch d := decl.(type) {
	case *Prototype:
		fmt.Fprintf(p.w, "extern %s(%s);", d.Name, strings.Join(d.Params, " "))
	case *Function:
		if d.Proto.IsAnonymous() {
			p.printExpr(d.Body)
			fmt.Fprint(p.w, ";")
		} else {
			fmt.Fprintf(p.w, "def %s(%s) ", d.Proto.Name, strings.Join(d.Proto.Params, " "))
			p.printExpr(d.Body)
		}
	default:
		fmt.Fprintf(p.w, "# unknown declaration %T", decl)
	}
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case Number:
		fmt.Fprint(p.w, strconv.FormatFloat(e.Value, 'g', -1, 64))
	case Variable:
		fmt.Fprint(p.w, e.Name)
	case Binary:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Left)
		fmt.Fprintf(p.w, " %c ", e.Op)
		p.printExpr(e.Right)
		fmt.Fprint(p.w, ")")
	case Call:
		fmt.Fprintf(p.w, "%s(", e.Callee)
		for i, arg := range e.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(arg)
		}
		fmt.Fprint(p.w, ")")
	default:
		fmt.Fprintf(p.w, "# unknown expr %T", expr)
	}
}

// ExprString returns the printed form of a single expression
func ExprString(expr Expr) string {
	var buf bytes.Buffer
	NewPrinter(&buf).printExpr(expr)
	return buf.String()
}
