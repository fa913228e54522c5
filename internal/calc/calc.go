// Package calc detects arithmetic questions and evaluates them with a small
// recursive-descent parser. Only numeric literals, + - * / % ^ and parentheses are
// accepted; nothing is handed to a general purpose evaluator.
package calc

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrSyntax is returned for input that is not a well-formed expression.
	ErrSyntax = errors.New("invalid expression")
	// ErrNotFinite is returned when the result is infinite or NaN.
	ErrNotFinite = errors.New("result is not a finite number")
)

var (
	fillerWords = regexp.MustCompile(`(?i)what is|calculate|solve|compute|equals|equal|answer|result`)
	exprChars   = regexp.MustCompile(`^[\d\s+\-*/().^%]+$`)
	operators   = regexp.MustCompile(`[+\-*/^%]`)
)

// Extract strips filler words from text and reports whether what remains is an
// arithmetic expression.
func Extract(text string) (string, bool) {
	s := fillerWords.ReplaceAllString(text, "")
	s = strings.NewReplacer("×", "*", "÷", "/").Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimRight(s, "?="))
	if !exprChars.MatchString(s) || !operators.MatchString(s) {
		return "", false
	}
	return s, true
}

// Eval evaluates expr. Parentheses and exponent chains may nest at most MaxDepth
// levels deep.
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/' | '%') unary)*
//	unary   := ('+' | '-')* power
//	power   := primary ('^' unary)?
//	primary := number | '(' expr ')'
func Eval(expr string) (float64, error) {
	p := &parser{src: expr}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// Format renders v the way a calculator display would: shortest round-trip decimal,
// exponent notation only for very large or very small magnitudes.
func Format(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MaxDepth bounds the nesting of parentheses and exponent chains.
const MaxDepth = 256

type parser struct {
	src   string
	pos   int
	depth int
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf("expression nested deeper than %d", MaxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

// peek returns the next non-space byte, or 0 at end of input.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			left *= right
		case '/':
			left /= right
		case '%':
			left = math.Mod(left, right)
		}
	}
}

func (p *parser) unary() (float64, error) {
	neg := false
	for c := p.peek(); c == '-' || c == '+'; c = p.peek() {
		if c == '-' {
			neg = !neg
		}
		p.pos++
	}
	v, err := p.power()
	if neg {
		v = -v
	}
	return v, err
}

func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) primary() (float64, error) {
	c := p.peek()
	switch {
	case c == 0:
		return 0, p.errorf("unexpected end of expression")
	case c == '(':
		p.pos++
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	}
	return 0, p.errorf("unexpected %q", c)
}

func (p *parser) number() (float64, error) {
	start := p.pos
	digits, dots := 0, 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' {
			digits++
		} else if c == '.' {
			dots++
		} else {
			break
		}
		p.pos++
	}
	lit := p.src[start:p.pos]
	if digits == 0 || dots > 1 {
		p.pos = start
		return 0, p.errorf("malformed number %q", lit)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("malformed number %q", lit)
	}
	return v, nil
}
