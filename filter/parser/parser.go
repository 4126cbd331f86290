// Package parser consumes a lexer.Token stream into a raw, pre-typed
// DNF: a list of OR-groups, each a list of AND-conditions, following the
// EBNF grammar in spec §4.2:
//
//	expr       = andgroup { ";" andgroup } ;
//	andgroup   = condition { "," condition } ;
//	condition  = term OP term [ OP term ] ;
//	term       = IDENT | LITERAL ;
//
// Key/value role resolution for two-term conditions, and the ambiguity
// rules for compound (three-term) inequalities, are applied here; actual
// string-to-typed-value coercion is left to the typer package.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/filter/datetimeutil"
	"github.com/Thysk/rucio/filter/lexer"
)

// RawCondition is a condition whose operand roles have been resolved but
// whose literal text has not yet been coerced to a typed value.
type RawCondition struct {
	// Key is nil for a literal condition (both operands are literal text).
	Key *string
	// Left holds the left-hand literal text for a literal condition.
	Left string
	Op   ast.Operator
	// Right holds the value literal text (for a keyed condition, the
	// right-hand literal text; for a literal condition, the right-hand
	// literal text as well).
	Right string

	Offset int
}

type RawAndGroup []RawCondition
type RawOrExpression []RawAndGroup

var (
	dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeOnlyRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d{1,6})?Z?$`)
	boolRe     = regexp.MustCompile(`(?i)^(true|false)$`)
	intRe      = regexp.MustCompile(`^[+-]?\d+$`)
	floatRe    = regexp.MustCompile(`^[+-]?\d+\.\d+$`)
)

// Parser turns a token stream into a RawOrExpression, resolving key/value
// ambiguity using the set of declared reserved key names.
type Parser struct {
	tokens      []lexer.Token
	pos         int
	reservedSet map[string]bool
}

// Parse lexes and parses source, given the set of reserved key names used
// to resolve key/value ambiguity in untyped two-term conditions (spec §4.2).
func Parse(source string, reservedKeys map[string]bool) (RawOrExpression, error) {
	toks, err := lexer.New(source).Tokens()
	if err != nil {
		return nil, err
	}
	toks = mergeDateTimeTerms(toks)
	p := &Parser{tokens: toks, reservedSet: reservedKeys}
	return p.parseExpr()
}

// mergeDateTimeTerms merges an adjacent (date, time) pair of Bare tokens —
// produced when a space-separated datetime literal like
// "1900-01-01 00:00:00" is lexed as two terms because the lexer stops a
// bare term at whitespace — back into a single token. Only a literal date
// immediately followed by a literal time, with nothing else between them,
// is merged; this never fires for any other adjacent-term sequence.
func mergeDateTimeTerms(toks []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == lexer.Bare && dateOnlyRe.MatchString(t.Lexeme) && i+1 < len(toks) {
			next := toks[i+1]
			if next.Kind == lexer.Bare && timeOnlyRe.MatchString(next.Lexeme) {
				out = append(out, lexer.Token{
					Kind:   lexer.Bare,
					Lexeme: t.Lexeme + " " + next.Lexeme,
					Offset: t.Offset,
				})
				i++
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) parseExpr() (RawOrExpression, error) {
	var or RawOrExpression
	group, err := p.parseAndGroup()
	if err != nil {
		return nil, err
	}
	or = append(or, group)

	for p.cur().Kind == lexer.Semicolon {
		p.advance()
		group, err := p.parseAndGroup()
		if err != nil {
			return nil, err
		}
		or = append(or, group)
	}

	if p.cur().Kind != lexer.EOF {
		return nil, ast.SyntaxError(p.cur().Offset, "unexpected token %q", p.cur().Lexeme)
	}
	return or, nil
}

func (p *Parser) parseAndGroup() (RawAndGroup, error) {
	var group RawAndGroup
	conds, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	group = append(group, conds...)

	for p.cur().Kind == lexer.Comma {
		p.advance()
		conds, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		group = append(group, conds...)
	}
	return group, nil
}

// parseCondition parses one `term OP term [OP term]` and returns either one
// RawCondition (simple triple or literal condition) or two (an expanded
// compound inequality).
func (p *Parser) parseCondition() ([]RawCondition, error) {
	t1 := p.cur()
	if t1.Kind != lexer.Ident && t1.Kind != lexer.Bare {
		return nil, ast.SyntaxError(t1.Offset, "expected a term, found %q", t1.Lexeme)
	}
	p.advance()

	op1Tok := p.cur()
	if op1Tok.Kind != lexer.Op {
		return nil, ast.SyntaxError(op1Tok.Offset, "expected an operator, found %q", op1Tok.Lexeme)
	}
	p.advance()

	t2 := p.cur()
	if t2.Kind != lexer.Ident && t2.Kind != lexer.Bare {
		return nil, ast.SyntaxError(t2.Offset, "expected a term, found %q", t2.Lexeme)
	}
	p.advance()

	if p.cur().Kind == lexer.Op {
		op2Tok := p.advance()
		t3 := p.cur()
		if t3.Kind != lexer.Ident && t3.Kind != lexer.Bare {
			return nil, ast.SyntaxError(t3.Offset, "expected a term, found %q", t3.Lexeme)
		}
		p.advance()
		return p.expandCompound(t1, op1Tok, t2, op2Tok, t3)
	}

	cond, err := p.resolveSimple(t1, op1Tok, t2)
	if err != nil {
		return nil, err
	}
	return []RawCondition{cond}, nil
}

// expandCompound handles `a OP1 key OP2 b`: OP1/OP2 must both be
// directional and share direction, and it expands to two simple triples
// on the middle key in the same AndGroup (spec §4.2). A middle term that
// looks like a literal instead yields two literal conditions.
func (p *Parser) expandCompound(a lexer.Token, op1 lexer.Token, mid lexer.Token, op2 lexer.Token, b lexer.Token) ([]RawCondition, error) {
	if op1.Op == ast.EQ || op1.Op == ast.NE {
		return nil, ast.SyntaxError(op1.Offset, "compound inequality cannot use %q", op1.Lexeme)
	}
	if op2.Op == ast.EQ || op2.Op == ast.NE {
		return nil, ast.SyntaxError(op2.Offset, "compound inequality cannot use %q", op2.Lexeme)
	}

	// Mixed-direction compound inequalities are rejected as a duplicate
	// criterion regardless of whether the middle term is a key or a
	// literal (spec §4.5 design notes: the same error kind is reused).
	if op1.Op.Direction() != op2.Op.Direction() {
		return nil, ast.DuplicateError(mid.Offset,
			"compound inequality on %q has mixed-direction operators %q and %q", mid.Lexeme, op1.Lexeme, op2.Lexeme)
	}

	if looksLikeLiteral(mid.Lexeme) {
		// A literal middle term makes this a chained literal comparison
		// (e.g. "3 > 2 > 1"), not a bound on a key: expand to two literal
		// conditions read left-to-right.
		return []RawCondition{
			{Left: a.Lexeme, Op: op1.Op, Right: mid.Lexeme, Offset: a.Offset},
			{Left: mid.Lexeme, Op: op2.Op, Right: b.Lexeme, Offset: mid.Offset},
		}, nil
	}

	keyName := mid.Lexeme
	return []RawCondition{
		{Key: &keyName, Op: op1.Op.Flip(), Right: a.Lexeme, Offset: a.Offset},
		{Key: &keyName, Op: op2.Op, Right: b.Lexeme, Offset: b.Offset},
	}, nil
}

// resolveSimple resolves key/value roles for a two-term condition per the
// ambiguity rules in spec §4.2: both-literal is a literal condition;
// otherwise a reserved-key-name match wins, then literal-looking text
// marks the value side, and left-as-key is the default.
func (p *Parser) resolveSimple(left lexer.Token, op lexer.Token, right lexer.Token) (RawCondition, error) {
	leftLiteral := looksLikeLiteral(left.Lexeme)
	rightLiteral := looksLikeLiteral(right.Lexeme)

	if leftLiteral && rightLiteral {
		return RawCondition{Left: left.Lexeme, Op: op.Op, Right: right.Lexeme, Offset: left.Offset}, nil
	}

	leftReserved := p.reservedSet[left.Lexeme]
	rightReserved := p.reservedSet[right.Lexeme]

	keyOnLeft := true
	switch {
	case leftReserved && !rightReserved:
		keyOnLeft = true
	case rightReserved && !leftReserved:
		keyOnLeft = false
	case rightLiteral && !leftLiteral:
		keyOnLeft = true
	case leftLiteral && !rightLiteral:
		keyOnLeft = false
	default:
		keyOnLeft = true
	}

	if keyOnLeft {
		key := left.Lexeme
		return RawCondition{Key: &key, Op: op.Op, Right: right.Lexeme, Offset: left.Offset}, nil
	}
	key := right.Lexeme
	return RawCondition{Key: &key, Op: op.Op.Flip(), Right: left.Lexeme, Offset: right.Offset}, nil
}

// looksLikeLiteral is a cheap syntactic pre-check (not full coercion) used
// only to resolve key/value ambiguity: does this lexeme look like a bool,
// datetime, int, or float literal? Plain words never look like literals,
// even if they'd ultimately stringify fine.
func looksLikeLiteral(lexeme string) bool {
	s := strings.TrimSpace(lexeme)
	if boolRe.MatchString(s) {
		return true
	}
	if looksLikeDateTime(s) {
		return true
	}
	if intRe.MatchString(s) {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return true
		}
	}
	if floatRe.MatchString(s) {
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return true
		}
	}
	return false
}

func looksLikeDateTime(s string) bool {
	_, ok := datetimeutil.Parse(s)
	return ok
}
