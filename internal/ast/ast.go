// Package ast defines the abstract syntax tree, parameterised by a type
// parameter M carrying per-node metadata: M is `struct{}` fresh out of the
// parser, check.TypeInfo after the type checker, and
// check.ValidatedTypeInfo after the validator. Every node embeds a Span.
//
// Statements and expressions are split into two marker interfaces over a
// shared Node; the type parameter lets one node set serve every pipeline
// stage instead of a separate tree per pass.
package ast

import (
	"github.com/whylang/whyc/internal/position"
)

// Span is re-exported for callers that only need the AST package.
type Span = position.Span

// Unit is the metadata type every node carries fresh out of the parser,
// before the shallow/deep checker rebuilds the tree with check.TypeInfo.
type Unit = struct{}

// Node is satisfied by every statement, expression and top-level item.
type Node interface {
	GetSpan() Span
}

// Statement is the marker interface for statement-position nodes.
type Statement[M any] interface {
	Node
	GetInfo() M
	statementNode()
}

// Expression is the marker interface for expression-position nodes.
type Expression[M any] interface {
	Node
	GetInfo() M
	expressionNode()
}

// ===== Identifiers and literals =====

// Id is a bare name reference: a variable, a field, a parameter, a struct
// tag. Used both as a Statement-tree leaf (e.g. Parameter.Name) and, in
// expression position, as Expression[M].
type Id[M any] struct {
	Name string
	Info M
	Pos  Span
}

func (n *Id[M]) GetSpan() Span  { return n.Pos }
func (n *Id[M]) GetInfo() M     { return n.Info }
func (n *Id[M]) expressionNode() {}

// NumKind distinguishes Num's two lexeme-derived forms.
type NumKind int

const (
	IntegerNum NumKind = iota
	FloatNum
)

// Num is an integer or floating point literal.
type Num[M any] struct {
	Kind   NumKind
	IntVal uint64
	FltVal float64
	Info   M
	Pos    Span
}

func (n *Num[M]) GetSpan() Span  { return n.Pos }
func (n *Num[M]) GetInfo() M     { return n.Info }
func (n *Num[M]) expressionNode() {}

// ===== Functions and lambdas =====

// Parameter is a named function's parameter; its TypeName is always
// present. Lambda parameters, whose annotation may be elided, use
// LambdaParameter.
type Parameter[M any] struct {
	Name     Id[M]
	TypeName TypeName
	Info     M
	Pos      Span
}

func (n *Parameter[M]) GetSpan() Span { return n.Pos }
func (n *Parameter[M]) GetInfo() M    { return n.Info }

// Function is used both as a top-level/nested Statement and, when
// anonymous, as an Expression (`let f = fn(...): T {...};`).
type Function[M any] struct {
	Name       *Id[M] // nil for an anonymous function expression
	Parameters []Parameter[M]
	ReturnType TypeName
	Body       []Statement[M]
	Info       M
	Pos        Span
}

func (n *Function[M]) GetSpan() Span  { return n.Pos }
func (n *Function[M]) GetInfo() M     { return n.Info }
func (n *Function[M]) statementNode() {}
func (n *Function[M]) expressionNode() {}

// LambdaParameter elides its type annotation more often than Parameter
// does; kept as its own node type rather than reusing Parameter.
type LambdaParameter[M any] struct {
	Name     Id[M]
	TypeName TypeName // nil when elided
	Info     M
	Pos      Span
}

func (n *LambdaParameter[M]) GetSpan() Span { return n.Pos }
func (n *LambdaParameter[M]) GetInfo() M    { return n.Info }

// Lambda is `\(params) => body`.
type Lambda[M any] struct {
	Parameters []LambdaParameter[M]
	Body       Expression[M]
	Info       M
	Pos        Span
}

func (n *Lambda[M]) GetSpan() Span  { return n.Pos }
func (n *Lambda[M]) GetInfo() M     { return n.Info }
func (n *Lambda[M]) expressionNode() {}

// ===== Control flow =====

// If is used both in expression position and (with the trailing semicolon
// elided or not) in statement position; the two share this one node.
type If[M any] struct {
	Condition Expression[M]
	Then      Block[M]
	Else      *Block[M] // nil when there is no else arm
	Info      M
	Pos       Span
}

func (n *If[M]) GetSpan() Span  { return n.Pos }
func (n *If[M]) GetInfo() M     { return n.Info }
func (n *If[M]) statementNode() {}
func (n *If[M]) expressionNode() {}

// WhileLoop is a statement-only construct (the language has no loop
// expressions).
type WhileLoop[M any] struct {
	Condition Expression[M]
	Body      Block[M]
	Info      M
	Pos       Span
}

func (n *WhileLoop[M]) GetSpan() Span { return n.Pos }
func (n *WhileLoop[M]) GetInfo() M    { return n.Info }
func (n *WhileLoop[M]) statementNode() {}

// Block is `{ statements }`; its value (in expression position) is the
// cell of its trailing YieldingExpression, or Void otherwise.
type Block[M any] struct {
	Statements []Statement[M]
	Info       M
	Pos        Span
}

func (n *Block[M]) GetSpan() Span  { return n.Pos }
func (n *Block[M]) GetInfo() M     { return n.Info }
func (n *Block[M]) expressionNode() {}

// Parens is a parenthesised expression, `(expr)`.
type Parens[M any] struct {
	Inner Expression[M]
	Info  M
	Pos   Span
}

func (n *Parens[M]) GetSpan() Span  { return n.Pos }
func (n *Parens[M]) GetInfo() M     { return n.Info }
func (n *Parens[M]) expressionNode() {}

// ===== Postfix =====

// PostfixKind tags which of Call/Index/PropertyAccess a Postfix node is.
type PostfixKind int

const (
	Call PostfixKind = iota
	Index
	PropertyAccess
)

// Postfix is `f(args)`, `a[i]`, or `recv.field`, chained left-to-right
// during parsing.
type Postfix[M any] struct {
	Kind     PostfixKind
	Target   Expression[M]
	Args     []Expression[M] // Call only
	Index    Expression[M]   // Index only
	Field    string          // PropertyAccess only
	FieldPos Span            // PropertyAccess only
	Info     M
	Pos      Span
}

func (n *Postfix[M]) GetSpan() Span  { return n.Pos }
func (n *Postfix[M]) GetInfo() M     { return n.Info }
func (n *Postfix[M]) expressionNode() {}

// ===== Prefix =====

type PrefixOp int

const (
	Neg PrefixOp = iota
	Not
)

// Prefix is a unary `-expr` or `!expr`.
type Prefix[M any] struct {
	Op      PrefixOp
	Operand Expression[M]
	Info    M
	Pos     Span
}

func (n *Prefix[M]) GetSpan() Span  { return n.Pos }
func (n *Prefix[M]) GetInfo() M     { return n.Info }
func (n *Prefix[M]) expressionNode() {}

// ===== Binary =====

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Equals
	LessThan
	GreaterThan
	LessEq
	GreaterEq
)

// Precedence returns the operator's binding power, tightest first: `*`,
// then `+ -`, then the comparisons.
func (op BinaryOp) Precedence() int {
	switch op {
	case Mul:
		return 3
	case Add, Sub:
		return 2
	default:
		return 1
	}
}

// IsComparison reports whether op yields Boolean rather than the operand
// type.
func (op BinaryOp) IsComparison() bool {
	return op == Equals || op == LessThan || op == GreaterThan || op == LessEq || op == GreaterEq
}

// Binary is a left-associative binary expression, already rebalanced for
// precedence by the time parsing of the enclosing rule returns.
type Binary[M any] struct {
	Op    BinaryOp
	Left  Expression[M]
	Right Expression[M]
	Info  M
	Pos   Span
}

func (n *Binary[M]) GetSpan() Span  { return n.Pos }
func (n *Binary[M]) GetInfo() M     { return n.Info }
func (n *Binary[M]) expressionNode() {}

// ===== Arrays =====

// Array is either an element-list literal (`[1, 2, 3]`) or a default-filled
// literal (`[0; 5]`); Count is nil in the former case.
type Array[M any] struct {
	Elements []Expression[M]
	Default  Expression[M] // non-nil for the default-filled form
	Count    Expression[M] // non-nil for the default-filled form
	Info     M
	Pos      Span
}

func (n *Array[M]) GetSpan() Span  { return n.Pos }
func (n *Array[M]) GetInfo() M     { return n.Info }
func (n *Array[M]) expressionNode() {}

// ===== Structs =====

// StructFieldValue is one `name: value` pair of a struct initialisation.
type StructFieldValue[M any] struct {
	Name  string
	Value Expression[M]
	Pos   Span
}

// StructInitialisation is `Name { field: value, ... }`.
type StructInitialisation[M any] struct {
	Name   Id[M]
	Fields []StructFieldValue[M]
	Info   M
	Pos    Span
}

func (n *StructInitialisation[M]) GetSpan() Span  { return n.Pos }
func (n *StructInitialisation[M]) GetInfo() M     { return n.Info }
func (n *StructInitialisation[M]) expressionNode() {}

// StructFieldDecl is one `name: T;` member of a struct declaration.
type StructFieldDecl struct {
	Name     string
	TypeName TypeName
	Pos      Span
}

// StructDeclaration registers a named struct type.
type StructDeclaration[M any] struct {
	Name   Id[M]
	Fields []StructFieldDecl
	Info   M
	Pos    Span
}

func (n *StructDeclaration[M]) GetSpan() Span { return n.Pos }
func (n *StructDeclaration[M]) GetInfo() M    { return n.Info }
func (n *StructDeclaration[M]) statementNode() {}

// ===== Statements with no expression-position counterpart =====

// Initialisation is `let [mut] name [: T] = expr;`.
type Initialisation[M any] struct {
	Id       Id[M]
	Mutable  bool
	TypeName TypeName // nil when elided
	Value    Expression[M]
	Info     M
	Pos      Span
}

func (n *Initialisation[M]) GetSpan() Span { return n.Pos }
func (n *Initialisation[M]) GetInfo() M    { return n.Info }
func (n *Initialisation[M]) statementNode() {}

// Constant is `const name: T = expr;`.
type Constant[M any] struct {
	Id       Id[M]
	TypeName TypeName
	Value    Expression[M]
	Info     M
	Pos      Span
}

func (n *Constant[M]) GetSpan() Span { return n.Pos }
func (n *Constant[M]) GetInfo() M    { return n.Info }
func (n *Constant[M]) statementNode() {}

// Assignment is `name = expr;`.
type Assignment[M any] struct {
	Id    Id[M]
	Value Expression[M]
	Info  M
	Pos   Span
}

func (n *Assignment[M]) GetSpan() Span { return n.Pos }
func (n *Assignment[M]) GetInfo() M    { return n.Info }
func (n *Assignment[M]) statementNode() {}

// ExpressionStatement is an expression terminated by `;`; its value is
// discarded (cell is Void).
type ExpressionStatement[M any] struct {
	Expr Expression[M]
	Info M
	Pos  Span
}

func (n *ExpressionStatement[M]) GetSpan() Span { return n.Pos }
func (n *ExpressionStatement[M]) GetInfo() M    { return n.Info }
func (n *ExpressionStatement[M]) statementNode() {}

// YieldingExpression is an expression with no trailing `;`: the value of
// the enclosing block.
type YieldingExpression[M any] struct {
	Expr Expression[M]
	Info M
	Pos  Span
}

func (n *YieldingExpression[M]) GetSpan() Span { return n.Pos }
func (n *YieldingExpression[M]) GetInfo() M    { return n.Info }
func (n *YieldingExpression[M]) statementNode() {}

// Return is `return expr;`.
type Return[M any] struct {
	Expr Expression[M]
	Info M
	Pos  Span
}

func (n *Return[M]) GetSpan() Span { return n.Pos }
func (n *Return[M]) GetInfo() M    { return n.Info }
func (n *Return[M]) statementNode() {}

// Declaration is `declare name: T;`, an extern/forward binding with no
// value.
type Declaration[M any] struct {
	Id       Id[M]
	TypeName TypeName
	Info     M
	Pos      Span
}

func (n *Declaration[M]) GetSpan() Span { return n.Pos }
func (n *Declaration[M]) GetInfo() M    { return n.Info }
func (n *Declaration[M]) statementNode() {}

// Comment is kept in the statement stream so pretty-printers (out of core
// scope) can round-trip it; the checker treats it as a no-op with cell
// Void.
type Comment[M any] struct {
	Text string
	Info M
	Pos  Span
}

func (n *Comment[M]) GetSpan() Span { return n.Pos }
func (n *Comment[M]) GetInfo() M    { return n.Info }
func (n *Comment[M]) statementNode() {}

// Program is the parse result: the ordered top-level statement list.
type Program[M any] struct {
	Statements []Statement[M]
}
