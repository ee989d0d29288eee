package traqula

import (
	"fmt"
	"strconv"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/model"
)

// parser is a hand-written recursive-descent reader over the lexer's token
// stream, in the teacher's style of favoring a compact hand-rolled decoder
// over a parser-generator dependency.
type parser struct {
	lex *lexer
	cur token
}

// Parse parses src into a Script per the grammar in spec §6.
func Parse(src string) (*Script, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseScript()
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: at byte %d: %s", bcerr.ErrParseError, p.cur.pos, fmt.Sprintf(format, args...))
}

func (p *parser) atSymbol(s string) bool { return p.cur.kind == tokSymbol && p.cur.text == s }
func (p *parser) atIdent(s string) bool  { return p.cur.kind == tokIdent && equalFold(p.cur.text, s) }

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (p *parser) expectSymbol(s string) error {
	if !p.atSymbol(s) {
		return p.errorf("expected %q, found %q", s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) expectIdent(s string) error {
	if !p.atIdent(s) {
		return p.errorf("expected keyword %q, found %q", s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) expectIdentName() (string, error) {
	if p.cur.kind != tokIdent {
		return "", p.errorf("expected identifier, found %q", p.cur.text)
	}
	name := p.cur.text
	return name, p.advance()
}

func (p *parser) parseScript() (*Script, error) {
	script := &Script{}
	for p.cur.kind != tokEOF {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		script.Commands = append(script.Commands, cmd)
		if p.atSymbol(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return script, nil
}

func (p *parser) parseCommand() (Command, error) {
	switch {
	case p.atIdent("add"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch {
		case p.atIdent("role"):
			return p.parseAddRole()
		case p.atIdent("posit"):
			return p.parseAddPosit()
		default:
			return nil, p.errorf("expected %q or %q after %q", "role", "posit", "add")
		}
	case p.atIdent("search"):
		return p.parseSearch()
	default:
		return nil, p.errorf("expected %q or %q, found %q", "add", "search", p.cur.text)
	}
}

func (p *parser) parseAddRole() (Command, error) {
	if err := p.advance(); err != nil { // consume "role"
		return nil, err
	}
	var names []string
	for {
		name, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return AddRoles{Names: names}, nil
}

func (p *parser) parseAddPosit() (Command, error) {
	if err := p.advance(); err != nil { // consume "posit"
		return nil, err
	}
	var literals []PositLiteral
	for {
		lit, err := p.parsePositLiteral()
		if err != nil {
			return nil, err
		}
		literals = append(literals, lit)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return AddPosits{Literals: literals}, nil
}

func (p *parser) parsePositLiteral() (PositLiteral, error) {
	var lit PositLiteral
	if p.atSymbol("+") {
		if err := p.advance(); err != nil {
			return lit, err
		}
		name, err := p.expectIdentName()
		if err != nil {
			return lit, err
		}
		lit.OuterVar = name
	}
	if err := p.expectSymbol("["); err != nil {
		return lit, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return lit, err
	}
	for {
		ap, err := p.parseAppearanceLiteral()
		if err != nil {
			return lit, err
		}
		lit.Appearances = append(lit.Appearances, ap)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return lit, err
			}
			continue
		}
		break
	}
	if err := p.expectSymbol("}"); err != nil {
		return lit, err
	}
	if err := p.expectSymbol(","); err != nil {
		return lit, err
	}
	value, err := p.parseValueLiteral()
	if err != nil {
		return lit, err
	}
	lit.Value = value
	if err := p.expectSymbol(","); err != nil {
		return lit, err
	}
	t, err := p.parseTimeLiteral()
	if err != nil {
		return lit, err
	}
	lit.Time = t
	if err := p.expectSymbol("]"); err != nil {
		return lit, err
	}
	return lit, nil
}

func (p *parser) parseAppearanceLiteral() (AppearanceLiteral, error) {
	var ap AppearanceLiteral
	if err := p.expectSymbol("("); err != nil {
		return ap, err
	}
	ref, err := p.parseThingRef()
	if err != nil {
		return ap, err
	}
	ap.Thing = ref
	if err := p.expectSymbol(","); err != nil {
		return ap, err
	}
	role, err := p.expectIdentName()
	if err != nil {
		return ap, err
	}
	ap.Role = role
	if err := p.expectSymbol(")"); err != nil {
		return ap, err
	}
	return ap, nil
}

func (p *parser) parseThingRef() (ThingRef, error) {
	fresh := false
	if p.atSymbol("+") {
		fresh = true
		if err := p.advance(); err != nil {
			return ThingRef{}, err
		}
	}
	name, err := p.expectIdentName()
	if err != nil {
		return ThingRef{}, err
	}
	return ThingRef{Name: name, Fresh: fresh}, nil
}

func (p *parser) parseValueLiteral() (model.Value, error) {
	switch p.cur.kind {
	case tokString:
		v := model.StringValue(p.cur.text)
		return v, p.advance()
	case tokPercent:
		percent, err := strconv.Atoi(p.cur.text)
		if err != nil {
			return nil, p.errorf("invalid certainty literal %q: %v", p.cur.text, err)
		}
		c, err := model.NewCertainty(percent)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return model.CertaintyValue{Certainty: c}, p.advance()
	case tokNumber:
		text := p.cur.text
		hasDot := p.cur.hasDot
		if err := p.advance(); err != nil {
			return nil, err
		}
		if hasDot {
			d, err := model.NewDecimal(text)
			if err != nil {
				return nil, p.errorf("%v", err)
			}
			return model.DecimalValue{Decimal: d}, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q: %v", text, err)
		}
		return model.Int64Value(n), nil
	case tokTimeLiteral, tokTimeConstant:
		t, err := p.parseTimeLiteral()
		if err != nil {
			return nil, err
		}
		return model.TimeValue{Time: t}, nil
	case tokSymbol:
		if p.cur.text == "{" || p.cur.text == "[" {
			// p.cur was already tokenized as a one-character symbol, which
			// left the lexer positioned just past the opening brace/bracket.
			// Rewind to where that brace started before re-scanning it as a
			// balanced JSON blob.
			p.lex.pos = p.cur.pos
			raw, err := p.lex.scanJSON()
			if err != nil {
				return nil, err
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			v, err := model.NewJSONValue(raw)
			if err != nil {
				return nil, p.errorf("%v", err)
			}
			return v, nil
		}
	}
	return nil, p.errorf("expected a value literal, found %q", p.cur.text)
}

func (p *parser) parseTimeLiteral() (model.Time, error) {
	switch p.cur.kind {
	case tokTimeLiteral, tokTimeConstant:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return model.Time{}, err
		}
		t, err := model.ParseTime(text)
		if err != nil {
			return model.Time{}, p.errorf("%v", err)
		}
		return t, nil
	default:
		return model.Time{}, p.errorf("expected a time literal, found %q", p.cur.text)
	}
}

// --- search ---

func (p *parser) parseSearch() (Command, error) {
	if err := p.advance(); err != nil { // consume "search"
		return nil, err
	}
	search := Search{}
	for {
		pattern, err := p.parsePositPattern()
		if err != nil {
			return nil, err
		}
		search.Clauses = append(search.Clauses, pattern)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if p.atIdent("as") {
		ref, err := p.parseAsOf()
		if err != nil {
			return nil, err
		}
		search.AsOf = ref
	}
	if p.atIdent("where") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			pred, err := p.parsePredicate()
			if err != nil {
				return nil, err
			}
			search.Where = append(search.Where, pred)
			if p.atIdent("and") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if p.atIdent("return") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			name, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			search.Return = append(search.Return, name)
			if p.atSymbol(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if p.atIdent("limit") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokNumber {
			return nil, p.errorf("expected integer after %q, found %q", "limit", p.cur.text)
		}
		n, err := strconv.ParseUint(p.cur.text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid limit %q: %v", p.cur.text, err)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		search.Limit = &n
	}
	return search, nil
}

// parseAsOf consumes "as of" followed by a time reference: a variable name
// or a time literal/constant.
func (p *parser) parseAsOf() (*TimeRef, error) {
	if err := p.expectIdent("as"); err != nil {
		return nil, err
	}
	if err := p.expectIdent("of"); err != nil {
		return nil, err
	}
	if p.cur.kind == tokTimeLiteral || p.cur.kind == tokTimeConstant {
		t, err := p.parseTimeLiteral()
		if err != nil {
			return nil, err
		}
		return &TimeRef{Literal: &t}, nil
	}
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	return &TimeRef{VarName: name}, nil
}

func (p *parser) parsePositPattern() (PositPattern, error) {
	var pat PositPattern
	if p.atSymbol("+") {
		if err := p.advance(); err != nil {
			return pat, err
		}
		name, err := p.expectIdentName()
		if err != nil {
			return pat, err
		}
		pat.OuterVar = name
	}
	if err := p.expectSymbol("["); err != nil {
		return pat, err
	}
	asp, err := p.parseAppearanceSetPattern()
	if err != nil {
		return pat, err
	}
	pat.AppearanceSet = asp
	if err := p.expectSymbol(","); err != nil {
		return pat, err
	}
	vs, err := p.parseValueSlot()
	if err != nil {
		return pat, err
	}
	pat.Value = vs
	if err := p.expectSymbol(","); err != nil {
		return pat, err
	}
	ts, err := p.parseTimeSlot()
	if err != nil {
		return pat, err
	}
	pat.Time = ts
	if err := p.expectSymbol("]"); err != nil {
		return pat, err
	}
	if p.atIdent("as") {
		ref, err := p.parseAsOf()
		if err != nil {
			return pat, err
		}
		pat.AsOf = ref
	}
	return pat, nil
}

func (p *parser) parseAppearanceSetPattern() (AppearanceSetPattern, error) {
	if p.atSymbol("*") {
		if err := p.advance(); err != nil {
			return AppearanceSetPattern{}, err
		}
		return AppearanceSetPattern{Wildcard: true}, nil
	}
	if err := p.expectSymbol("{"); err != nil {
		return AppearanceSetPattern{}, err
	}
	var asp AppearanceSetPattern
	for {
		ap, err := p.parseAppearancePattern()
		if err != nil {
			return asp, err
		}
		asp.Appearances = append(asp.Appearances, ap)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return asp, err
			}
			continue
		}
		break
	}
	if err := p.expectSymbol("}"); err != nil {
		return asp, err
	}
	return asp, nil
}

func (p *parser) parseAppearancePattern() (AppearancePattern, error) {
	var ap AppearancePattern
	if err := p.expectSymbol("("); err != nil {
		return ap, err
	}
	slot, err := p.parseThingSlot()
	if err != nil {
		return ap, err
	}
	ap.Thing = slot
	if err := p.expectSymbol(","); err != nil {
		return ap, err
	}
	if p.atSymbol("*") {
		ap.RoleWildcard = true
		if err := p.advance(); err != nil {
			return ap, err
		}
	} else {
		name, err := p.expectIdentName()
		if err != nil {
			return ap, err
		}
		ap.Role = name
	}
	if err := p.expectSymbol(")"); err != nil {
		return ap, err
	}
	return ap, nil
}

func (p *parser) parseThingSlot() (ThingSlot, error) {
	if p.atSymbol("*") {
		if err := p.advance(); err != nil {
			return ThingSlot{}, err
		}
		return ThingSlot{Wildcard: true}, nil
	}
	fresh := false
	if p.atSymbol("+") {
		fresh = true
		if err := p.advance(); err != nil {
			return ThingSlot{}, err
		}
	}
	name, err := p.expectIdentName()
	if err != nil {
		return ThingSlot{}, err
	}
	names := []string{name}
	for p.atSymbol("|") {
		if fresh {
			return ThingSlot{}, p.errorf("a fresh binding cannot be part of a recall union")
		}
		if err := p.advance(); err != nil {
			return ThingSlot{}, err
		}
		n2, err := p.expectIdentName()
		if err != nil {
			return ThingSlot{}, err
		}
		names = append(names, n2)
	}
	return ThingSlot{Fresh: fresh, Names: names}, nil
}

func (p *parser) parseValueSlot() (ValueSlot, error) {
	if p.atSymbol("*") {
		if err := p.advance(); err != nil {
			return ValueSlot{}, err
		}
		return ValueSlot{Wildcard: true}, nil
	}
	if p.atSymbol("+") {
		if err := p.advance(); err != nil {
			return ValueSlot{}, err
		}
		name, err := p.expectIdentName()
		if err != nil {
			return ValueSlot{}, err
		}
		return ValueSlot{VarName: name, Fresh: true}, nil
	}
	if p.cur.kind == tokIdent {
		name, err := p.expectIdentName()
		if err != nil {
			return ValueSlot{}, err
		}
		return ValueSlot{VarName: name}, nil
	}
	v, err := p.parseValueLiteral()
	if err != nil {
		return ValueSlot{}, err
	}
	return ValueSlot{Literal: v}, nil
}

func (p *parser) parseTimeSlot() (TimeSlot, error) {
	if p.atSymbol("*") {
		if err := p.advance(); err != nil {
			return TimeSlot{}, err
		}
		return TimeSlot{Wildcard: true}, nil
	}
	if p.atSymbol("+") {
		if err := p.advance(); err != nil {
			return TimeSlot{}, err
		}
		name, err := p.expectIdentName()
		if err != nil {
			return TimeSlot{}, err
		}
		return TimeSlot{VarName: name, Fresh: true}, nil
	}
	if p.cur.kind == tokIdent {
		name, err := p.expectIdentName()
		if err != nil {
			return TimeSlot{}, err
		}
		return TimeSlot{VarName: name}, nil
	}
	t, err := p.parseTimeLiteral()
	if err != nil {
		return TimeSlot{}, err
	}
	return TimeSlot{Literal: &t}, nil
}

func (p *parser) parsePredicate() (Predicate, error) {
	var pred Predicate
	name, err := p.expectIdentName()
	if err != nil {
		return pred, err
	}
	pred.LeftVar = name
	if p.cur.kind != tokSymbol {
		return pred, p.errorf("expected a comparison operator, found %q", p.cur.text)
	}
	switch p.cur.text {
	case "<", "<=", ">", ">=", "=", "==":
		pred.Op = p.cur.text
	default:
		return pred, p.errorf("unsupported operator %q", p.cur.text)
	}
	if err := p.advance(); err != nil {
		return pred, err
	}
	if p.cur.kind == tokIdent {
		rname, err := p.expectIdentName()
		if err != nil {
			return pred, err
		}
		pred.RightVar = rname
		pred.RightIsVar = true
		return pred, nil
	}
	if p.cur.kind == tokTimeLiteral || p.cur.kind == tokTimeConstant {
		t, err := p.parseTimeLiteral()
		if err != nil {
			return pred, err
		}
		pred.RightTime = &t
		return pred, nil
	}
	v, err := p.parseValueLiteral()
	if err != nil {
		return pred, err
	}
	pred.RightValue = v
	return pred, nil
}
