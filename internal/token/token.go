// Package token defines the token kinds produced by the lexer.
package token

import (
	"fmt"
	"minijava/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, System, println
	INT    // 123
	FLOAT  // 1.5f, 2F
	DOUBLE // 3.14, 3.14d
	STRING // "hello"
	CHAR   // 'A'

	// Operators
	ASSIGN  // =
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	BANG    // !
	INC     // ++
	DEC     // --

	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	AND // &&
	OR  // ||

	// Compound assignment, recognised only to be rejected
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;

	// Type keywords
	KW_INT
	KW_FLOAT
	KW_DOUBLE
	KW_BOOLEAN
	KW_CHAR
	KW_STRING

	// Statement and literal keywords
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_TRUE
	KW_FALSE

	// Java keywords outside the accepted subset
	KW_CLASS
	KW_PUBLIC
	KW_PRIVATE
	KW_PROTECTED
	KW_STATIC
	KW_FINAL
	KW_VOID
	KW_NEW
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_DO
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_TRY
	KW_CATCH
	KW_FINALLY
	KW_THROW
	KW_NULL
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
	DOUBLE: "DOUBLE",
	STRING: "STRING",
	CHAR:   "CHAR",

	ASSIGN:  "=",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	BANG:    "!",
	INC:     "++",
	DEC:     "--",

	EQ:  "==",
	NEQ: "!=",
	LT:  "<",
	LTE: "<=",
	GT:  ">",
	GTE: ">=",
	AND: "&&",
	OR:  "||",

	PLUS_ASSIGN:    "+=",
	MINUS_ASSIGN:   "-=",
	STAR_ASSIGN:    "*=",
	SLASH_ASSIGN:   "/=",
	PERCENT_ASSIGN: "%=",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",

	KW_INT:     "int",
	KW_FLOAT:   "float",
	KW_DOUBLE:  "double",
	KW_BOOLEAN: "boolean",
	KW_CHAR:    "char",
	KW_STRING:  "String",

	KW_IF:    "if",
	KW_ELSE:  "else",
	KW_WHILE: "while",
	KW_FOR:   "for",
	KW_TRUE:  "true",
	KW_FALSE: "false",

	KW_CLASS:     "class",
	KW_PUBLIC:    "public",
	KW_PRIVATE:   "private",
	KW_PROTECTED: "protected",
	KW_STATIC:    "static",
	KW_FINAL:     "final",
	KW_VOID:      "void",
	KW_NEW:       "new",
	KW_RETURN:    "return",
	KW_BREAK:     "break",
	KW_CONTINUE:  "continue",
	KW_DO:        "do",
	KW_SWITCH:    "switch",
	KW_CASE:      "case",
	KW_DEFAULT:   "default",
	KW_TRY:       "try",
	KW_CATCH:     "catch",
	KW_FINALLY:   "finally",
	KW_THROW:     "throw",
	KW_NULL:      "null",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_INT && k <= KW_NULL
}

// IsType returns true for the six declarable type keywords.
func (k Kind) IsType() bool {
	return k >= KW_INT && k <= KW_STRING
}

// IsLiteral returns true if the kind is a literal token.
func (k Kind) IsLiteral() bool {
	return k >= INT && k <= CHAR
}

// IsModifier returns true for access and storage modifiers.
func (k Kind) IsModifier() bool {
	switch k {
	case KW_PUBLIC, KW_PRIVATE, KW_PROTECTED, KW_STATIC, KW_FINAL:
		return true
	}
	return false
}

// IsCompoundAssign returns true for +=, -=, *=, /= and %=.
func (k Kind) IsCompoundAssign() bool {
	return k >= PLUS_ASSIGN && k <= PERCENT_ASSIGN
}

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind)
	for k := KW_INT; k <= KW_NULL; k++ {
		keywords[kindNames[k]] = k
	}
}

// Keywords returns every keyword spelling.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := KW_INT; k <= KW_NULL; k++ {
		out = append(out, kindNames[k])
	}
	return out
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
// For STRING and CHAR tokens Lexeme holds the decoded value without quotes.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
