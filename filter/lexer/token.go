// Package lexer splits a raw filter expression into tokens: identifiers,
// bare-string/number/bool/datetime literals (left untyped — that is the
// typer's job, see spec §4.1), comparison operators, and the two group
// connectives.
//
// The scanner shape (a byte buffer, a position, a Scan method) follows the
// teacher's parser/token.go Tokenizer; the keyword table and SQL-specific
// state machine are replaced entirely since this grammar has no keywords,
// only six operators and two connectives.
package lexer

import "github.com/Thysk/rucio/filter/ast"

// Kind identifies the lexical category of a Token. The data model in
// spec §3 lists STRING/NUMBER/BOOL/DATETIME as separate token kinds, but
// §4.1 is explicit that "the lexer does not distinguish number vs. string
// vs. datetime — that is the Typer's job". We honor that: both identifiers
// and bare-string literals are lexed as Term, tagged Ident when the
// lexeme matches the identifier charset exactly (so the parser can prefer
// it as a key name) and Bare otherwise (when it starts with a digit or
// contains any character outside that charset, such as `* . - : /`).
type Kind int

const (
	EOF Kind = iota
	Ident
	Bare
	Op
	Comma
	Semicolon
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "IDENT"
	case Bare:
		return "BARE"
	case Op:
		return "OP"
	case Comma:
		return "COMMA"
	case Semicolon:
		return "SEMICOLON"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexed unit: its kind, its raw source text (Lexeme), the
// resolved Operator when Kind == Op, and the byte offset it started at.
type Token struct {
	Kind    Kind
	Lexeme  string
	Op      ast.Operator
	Offset  int
}

func isIdentStart(r byte) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r byte) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// isBareExtra reports whether r is one of the extra characters a bare
// string (unquoted value) may contain beyond the identifier charset.
func isBareExtra(r byte) bool {
	switch r {
	case '*', '.', '-', ':', '/':
		return true
	default:
		return false
	}
}

func isSpace(r byte) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// isTermStop reports whether r terminates a bare term: whitespace, one of
// the two connectives, or the start of an operator.
func isTermStop(r byte) bool {
	switch r {
	case ' ', '\t', '\n', '\r', ',', ';', '=', '!', '<', '>':
		return true
	default:
		return false
	}
}

// Lexer is a byte-oriented, maximal-munch scanner over a filter expression.
type Lexer struct {
	src string
	pos int
}

func New(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

// Tokens lexes the entire source and returns the token stream (including a
// trailing EOF token), or a syntax error for unrecognized input.
func (l *Lexer) Tokens() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == EOF {
			return out, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Offset: start}, nil
	}

	c := l.peek()

	switch c {
	case ',':
		l.pos++
		return Token{Kind: Comma, Lexeme: ",", Offset: start}, nil
	case ';':
		l.pos++
		return Token{Kind: Semicolon, Lexeme: ";", Offset: start}, nil
	case '<':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return Token{Kind: Op, Lexeme: "<=", Op: ast.LE, Offset: start}, nil
		}
		return Token{Kind: Op, Lexeme: "<", Op: ast.LT, Offset: start}, nil
	case '>':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return Token{Kind: Op, Lexeme: ">=", Op: ast.GE, Offset: start}, nil
		}
		return Token{Kind: Op, Lexeme: ">", Op: ast.GT, Offset: start}, nil
	case '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Kind: Op, Lexeme: "!=", Op: ast.NE, Offset: start}, nil
		}
		return Token{}, ast.SyntaxError(start, "unexpected character %q", c)
	case '=':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return Token{Kind: Op, Lexeme: "==", Op: ast.EQ, Offset: start}, nil
		}
		return Token{Kind: Op, Lexeme: "=", Op: ast.EQ, Offset: start}, nil
	}

	// Term: identifier or bare string. Maximal-munch up to the next
	// whitespace/connective/operator-start character.
	isIdent := isIdentStart(c)
	l.pos++
	for l.pos < len(l.src) && !isTermStop(l.src[l.pos]) {
		if !isIdentCont(l.src[l.pos]) {
			isIdent = false
		}
		l.pos++
	}
	lexeme := l.src[start:l.pos]
	if lexeme == "" {
		return Token{}, ast.SyntaxError(start, "unexpected character %q", c)
	}
	kind := Bare
	if isIdent {
		kind = Ident
	}
	return Token{Kind: kind, Lexeme: lexeme, Offset: start}, nil
}
