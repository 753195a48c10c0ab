package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/flexquery/condition"
)

// Parse builds a query tree from its textual form:
//
//	type = 'session' AND (age range ['10','20'] {missing:'Ignore'} OR NOT name fuzzy 'jon')
//
// Keywords are case-insensitive. AND binds tighter than OR, and adjacent
// conditions without a connector are joined with AND. Values are
// single-quoted; \' and \\ escape a quote and a backslash. The optional
// {key:'value'} suffix sets the boost, the missing-value policy and the
// operator params.
//
// Malformed text yields a *condition.ValidationError wrapping a *ParseError.
func Parse(s string) (Node, error) {
	p := &parser{lex: lexer{input: s}}
	n, err := p.parse()
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, condition.NewValidationError(condition.NoIndex, "", "", pe)
		}
		return nil, err
	}
	return n, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Node {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// ParseCondition parses the textual form of a single condition.
func ParseCondition(s string) (condition.Condition, error) {
	n, err := Parse(s)
	if err != nil {
		return condition.Condition{}, err
	}
	leaf, ok := n.(*Leaf)
	if !ok {
		return condition.Condition{}, condition.NewValidationError(condition.NoIndex, "", "",
			&ParseError{Msg: "expected a single condition"})
	}
	return leaf.Condition, nil
}

type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k tokenKind) (token, error) {
	t := p.tok
	if t.kind != k {
		return t, p.errorf("expected %s, found %s", k, p.describe())
	}
	return t, p.advance()
}

func (p *parser) describe() string {
	switch p.tok.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return condition.Quote(p.tok.text)
	default:
		return strconv.Quote(p.tok.text)
	}
}

func (p *parser) parse() (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.errorf("empty query")
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s", p.describe())
	}
	return n, nil
}

func (p *parser) parseOr() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []Node{first}
	for p.tok.keyword("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	if len(children) == 1 {
		return first, nil
	}
	return Or(children...), nil
}

func (p *parser) parseAnd() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []Node{first}
	for {
		switch {
		case p.tok.keyword("AND"):
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.tok.kind == tokLParen, p.tok.kind == tokWord && !p.tok.keyword("OR"):
			// implicit AND
		default:
			if len(children) == 1 {
				return first, nil
			}
			return And(children...), nil
		}
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
}

func (p *parser) parseUnary() (Node, error) {
	switch {
	case p.tok.keyword("NOT"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	case p.tok.kind == tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case p.tok.kind == tokWord:
		c, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		return Cond(c), nil
	}
	return nil, p.errorf("expected condition, found %s", p.describe())
}

func (p *parser) parseCondition() (condition.Condition, error) {
	field, err := p.expect(tokWord)
	if err != nil {
		return condition.Condition{}, err
	}
	if p.tok.kind != tokWord && p.tok.kind != tokSymbol {
		return condition.Condition{}, p.errorf("expected operator after %q, found %s", field.text, p.describe())
	}
	op := p.tok.text
	if err := p.advance(); err != nil {
		return condition.Condition{}, err
	}

	values, err := p.parseValues()
	if err != nil {
		return condition.Condition{}, err
	}
	c := condition.New(field.text, op, values...)

	if p.tok.kind == tokLBrace {
		if err := p.parseOptions(&c); err != nil {
			return condition.Condition{}, err
		}
	}
	return c, nil
}

func (p *parser) parseValues() ([]string, error) {
	if p.tok.kind == tokString {
		v := p.tok.text
		return []string{v}, p.advance()
	}
	if _, err := p.expect(tokLBracket); err != nil {
		return nil, p.errorf("expected value or value list, found %s", p.describe())
	}
	var values []string
	for p.tok.kind != tokRBracket {
		if len(values) > 0 {
			if _, err := p.expect(tokComma); err != nil {
				return nil, err
			}
		}
		v, err := p.expect(tokString)
		if err != nil {
			return nil, err
		}
		values = append(values, v.text)
	}
	return values, p.advance()
}

func (p *parser) parseOptions(c *condition.Condition) error {
	if err := p.advance(); err != nil { // {
		return err
	}
	var (
		kind   condition.MissingValueKind
		params map[string]string
	)
	for first := true; p.tok.kind != tokRBrace; first = false {
		if !first {
			if _, err := p.expect(tokComma); err != nil {
				return err
			}
		}
		keyTok, err := p.expect(tokWord)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokColon); err != nil {
			return err
		}
		valTok, err := p.expect(tokString)
		if err != nil {
			return err
		}

		switch strings.ToLower(keyTok.text) {
		case "boost":
			b, convErr := strconv.Atoi(strings.TrimSpace(valTok.text))
			if convErr != nil {
				return &ParseError{Offset: valTok.pos, Msg: fmt.Sprintf("invalid boost %q", valTok.text)}
			}
			c.Boost = b
		case "missing":
			k, parseErr := condition.ParseMissingValueKind(valTok.text)
			if parseErr != nil {
				return &ParseError{Offset: valTok.pos, Msg: parseErr.Error()}
			}
			kind = k
		default:
			if params == nil {
				params = make(map[string]string)
			}
			params[keyTok.text] = valTok.text
		}
	}
	if err := p.advance(); err != nil { // }
		return err
	}

	c.MissingValue = condition.MissingValueOf(kind)
	if v, ok := params["default"]; ok && kind == condition.MissingUseDefault {
		c.MissingValue = condition.UseDefault(v)
		delete(params, "default")
	}
	if len(params) > 0 {
		c.Params = params
	}
	return nil
}
