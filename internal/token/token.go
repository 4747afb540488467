// Package token defines the lexeme vocabulary the lexer produces and the
// parser consumes: a tagged Kind plus whatever payload that kind carries,
// and the Span every token is anchored to.
package token

import (
	"fmt"

	"github.com/whylang/whyc/internal/position"
)

// Kind tags the variant of a Token: punctuation, operator, keyword and
// lexeme groups.
type Kind int

const (
	EOF Kind = iota

	Comment

	Ident
	Integer
	Float

	// Punctuation.
	Assign    // =
	Semicolon // ;
	Colon     // :
	Comma     // ,
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Dot       // .
	Arrow     // ->
	FatArrow  // =>
	Backslash // \
	Bang      // !

	// Operators.
	Plus  // +
	Minus // -
	Star  // *
	Eq    // ==
	Lt    // <
	Gt    // >
	Le    // <=
	Ge    // >=

	// Keywords.
	Let
	Const
	Fn
	If
	Else
	While
	Return
	Struct
	Declare
	Mut
)

var names = map[Kind]string{
	EOF:       "EOF",
	Comment:   "comment",
	Ident:     "identifier",
	Integer:   "integer",
	Float:     "float",
	Assign:    "=",
	Semicolon: ";",
	Colon:     ":",
	Comma:     ",",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	Dot:       ".",
	Arrow:     "->",
	FatArrow:  "=>",
	Backslash: `\`,
	Bang:      "!",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Eq:        "==",
	Lt:        "<",
	Gt:        ">",
	Le:        "<=",
	Ge:        ">=",
	Let:       "let",
	Const:     "const",
	Fn:        "fn",
	If:        "if",
	Else:      "else",
	While:     "while",
	Return:    "return",
	Struct:    "struct",
	Declare:   "declare",
	Mut:       "mut",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps the reserved identifier spelling to its keyword Kind, used
// by the lexer after it has read a maximal identifier run.
var Keywords = map[string]Kind{
	"let":     Let,
	"const":   Const,
	"fn":      Fn,
	"if":      If,
	"else":    Else,
	"while":   While,
	"return":  Return,
	"struct":  Struct,
	"declare": Declare,
	"mut":     Mut,
}

// Token is a single lexeme: a Kind plus whatever payload that kind carries
// and the Span it occupies in the source.
type Token struct {
	Kind  Kind
	Text  string // raw lexeme text; identifier name or comment body
	Int   uint64 // populated when Kind == Integer
	Float float64 // populated when Kind == Float
	Span  position.Span
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, Comment:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case Integer:
		return fmt.Sprintf("integer(%d)", t.Int)
	case Float:
		return fmt.Sprintf("float(%g)", t.Float)
	default:
		return t.Kind.String()
	}
}

// Is reports whether the token has the given kind. Lexeme-bearing kinds
// (Ident, Integer, Float, Comment) match regardless of payload.
func (t Token) Is(k Kind) bool { return t.Kind == k }
