// Package lexer implements tokenization for minijava source text.
//
// The scanner is a lexmachine DFA compiled once per process; Tokenize turns its raw
// matches into positioned tokens and decodes string and char literals.
package lexer

import (
	"fmt"
	"minijava/internal/diag"
	"minijava/internal/span"
	"minijava/internal/token"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// operators lists every operator and delimiter spelling with its kind.
var operators = []struct {
	text string
	kind token.Kind
}{
	{"=", token.ASSIGN},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.PERCENT},
	{"!", token.BANG},
	{"++", token.INC},
	{"--", token.DEC},
	{"==", token.EQ},
	{"!=", token.NEQ},
	{"<", token.LT},
	{"<=", token.LTE},
	{">", token.GT},
	{">=", token.GTE},
	{"&&", token.AND},
	{"||", token.OR},
	{"+=", token.PLUS_ASSIGN},
	{"-=", token.MINUS_ASSIGN},
	{"*=", token.STAR_ASSIGN},
	{"/=", token.SLASH_ASSIGN},
	{"%=", token.PERCENT_ASSIGN},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"{", token.LBRACE},
	{"}", token.RBRACE},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{",", token.COMMA},
	{".", token.DOT},
	{";", token.SEMICOLON},
}

// match is what the lexmachine actions produce; positions are resolved afterwards.
type match struct {
	kind   token.Kind
	offset int
	text   string
}

var (
	compileOnce sync.Once
	compiled    *lexmachine.Lexer
	compileErr  error
)

// machine returns the shared compiled scanner definition.
func machine() (*lexmachine.Lexer, error) {
	compileOnce.Do(func() {
		lm := lexmachine.NewLexer()
		lm.Add([]byte(`[ \t\r\n]+`), skip)
		lm.Add([]byte(`//[^\n]*`), skip)
		lm.Add([]byte(`/\*([^*]|\r|\n|(\*+([^*/]|\r|\n)))*\*+/`), skip)

		lm.Add([]byte(`"([^\\"\n]|\\[^\n])*"`), action(token.STRING))
		lm.Add([]byte(`'([^\\'\n]+|\\[^\n])'`), action(token.CHAR))

		lm.Add([]byte(`[0-9]+\.[0-9]+[fF]|[0-9]+[fF]`), action(token.FLOAT))
		lm.Add([]byte(`[0-9]+\.[0-9]+[dD]?|[0-9]+[dD]`), action(token.DOUBLE))
		lm.Add([]byte(`[0-9]+`), action(token.INT))
		lm.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), action(token.IDENT))

		for _, op := range operators {
			lm.Add([]byte(escape(op.text)), action(op.kind))
		}

		if err := lm.Compile(); err != nil {
			compileErr = fmt.Errorf("lexer: compile: %w", err)
			return
		}
		compiled = lm
	})
	return compiled, compileErr
}

// escape backslash-escapes every byte so the text is matched literally.
func escape(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		b.WriteByte('\\')
		b.WriteByte(text[i])
	}
	return b.String()
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func action(kind token.Kind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return match{kind: kind, offset: m.TC, text: string(m.Bytes)}, nil
	}
}

// Lexer tokenizes one source text.
type Lexer struct {
	source   string
	filename string

	lineStarts []int // byte offset of the first byte of every line
	diags      []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	l := &Lexer{source: source, filename: filename, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			l.lineStarts = append(l.lineStarts, i+1)
		}
	}
	return l
}

// Filename returns the name the lexer was created with.
func (l *Lexer) Filename() string {
	return l.filename
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice always ends with an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	end := token.Token{Kind: token.EOF, Span: span.Span{Start: l.position(len(l.source)), End: l.position(len(l.source))}}

	lm, err := machine()
	if err != nil {
		l.diags = append(l.diags, diag.Errorf(diag.RuntimeError, "E1000", end.Span, "%v", err))
		return append(tokens, end), l.diags
	}
	scanner, err := lm.Scanner([]byte(l.source))
	if err != nil {
		l.diags = append(l.diags, diag.Errorf(diag.RuntimeError, "E1000", end.Span, "lexer: %v", err))
		return append(tokens, end), l.diags
	}

	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			l.unconsumed(ui.StartTC, ui.FailTC)
			next := ui.FailTC
			if next <= ui.StartTC {
				next = ui.StartTC + 1
			}
			scanner.TC = next
			continue
		}
		if err != nil {
			l.diags = append(l.diags, diag.Errorf(diag.SyntaxError, "E1000", end.Span, "%v", err))
			break
		}
		tokens = append(tokens, l.makeToken(tok.(match)))
	}

	return append(tokens, end), l.diags
}

// ---- internal helpers ----

// position converts a byte offset into a line/column position.
func (l *Lexer) position(offset int) span.Position {
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return span.Position{Offset: offset, Line: line + 1, Column: offset - l.lineStarts[line] + 1}
}

func (l *Lexer) spanOf(start, end int) span.Span {
	return span.Span{Start: l.position(start), End: l.position(end)}
}

// addError records a syntax diagnostic.
func (l *Lexer) addError(code string, s span.Span, format string, args ...interface{}) diag.Diagnostic {
	d := diag.Errorf(diag.SyntaxError, code, s, format, args...)
	l.diags = append(l.diags, d)
	return d
}

func (l *Lexer) makeToken(m match) token.Token {
	s := l.spanOf(m.offset, m.offset+len(m.text))
	switch m.kind {
	case token.IDENT:
		return token.Token{Kind: token.LookupIdent(m.text), Lexeme: m.text, Span: s}
	case token.STRING:
		return token.Token{Kind: token.STRING, Lexeme: l.unescape(m.text[1:len(m.text)-1], s), Span: s}
	case token.CHAR:
		value := l.unescape(m.text[1:len(m.text)-1], s)
		if utf8.RuneCountInString(value) != 1 {
			l.addError("E1004", s, "invalid character literal %s", m.text)
		}
		return token.Token{Kind: token.CHAR, Lexeme: value, Span: s}
	default:
		return token.Token{Kind: m.kind, Lexeme: m.text, Span: s}
	}
}

// unconsumed reports input the DFA could not match.
func (l *Lexer) unconsumed(startTC, failTC int) {
	if startTC >= len(l.source) {
		l.addError("E1003", l.spanOf(len(l.source), len(l.source)), "unexpected end of input")
		return
	}
	s := l.spanOf(startTC, startTC+1)
	switch ch := l.source[startTC]; ch {
	case '"':
		l.addError("E1003", l.spanOf(startTC, failTC), "unterminated string literal")
	case '\'':
		l.addError("E1003", l.spanOf(startTC, failTC), "unterminated character literal")
	case '&', '|':
		d := l.addError("E1001", s, "unexpected character: '%c'", ch)
		l.diags[len(l.diags)-1] = d.WithHint(fmt.Sprintf("did you mean '%c%c'?", ch, ch))
	default:
		r, _ := utf8.DecodeRuneInString(l.source[startTC:])
		l.addError("E1001", s, "unexpected character: '%c'", r)
	}
}

// unescape decodes the body of a string or char literal.
func (l *Lexer) unescape(body string, s span.Span) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 >= len(body) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch esc := body[i]; esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(esc)
		default:
			l.addError("E1002", s, "unknown escape sequence: \\%c", esc)
			b.WriteByte(esc)
		}
	}
	return b.String()
}
