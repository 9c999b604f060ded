// Package ast defines the abstract syntax tree for Kaleidoscope
package ast

// Node is the base interface for all AST nodes
type Node interface {
	implNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implExpr()
}

// Decl is the interface for top-level declarations
type Decl interface {
	Node
	implDecl()
}

// Number represents a numeric literal
type Number struct {
	Value float64
}

// Variable represents an identifier expression
type Variable struct {
	Name string
}

// Binary represents a binary expression. Op is the operator character as it
// appeared in the source.
type Binary struct {
	Op    rune
	Left  Expr
	Right Expr
}

// Call represents a function call
type Call struct {
	Callee string
	Args   []Expr
}

// Prototype represents a function's name and ordered parameter names. A
// bare prototype is the form an extern declaration takes.
type Prototype struct {
	Name   string
	Params []string
}

// Function represents a function definition: a prototype plus a body
// expression. A top-level expression is represented as a Function whose
// prototype is anonymous.
type Function struct {
	Proto *Prototype
	Body  Expr
}

// IsAnonymous reports whether the prototype belongs to a wrapped top-level
// expression rather than a named function.
func (p *Prototype) IsAnonymous() bool {
	return p.Name == ""
}

// Program is the sequence of top-level declarations recognized in one input
type Program struct {
	Decls []Decl
}

// Marker methods for interface implementation
func (Number) implNode() {}
func (Number) implExpr() {}

func (Variable) implNode() {}
func (Variable) implExpr() {}

func (Binary) implNode() {}
func (Binary) implExpr() {}

func (Call) implNode() {}
func (Call) implExpr() {}

func (*Prototype) implNode() {}
func (*Prototype) implDecl() {}

func (*Function) implNode() {}
func (*Function) implDecl() {}
