package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	lterrors "github.com/orizon-lang/lty/internal/errors"
)

// Parse reads a type expression.
//
//	bool char i8..i128 isize u8..u128 usize f32 f64 str !
//	*const T   *mut T   &T   &mut T   [T; N]   [T]   (A, B)   ()
//	fn(A, B) -> R   fn name<A>   Name<A, B>   $N
//	dyn Trait   impl Trait   proj Path   closure#N   _   {error}
//
// Identifiers listed in params resolve to the placeholder with their
// position as index; any other identifier that is not a primitive names an
// ADT.
func (c *Context) Parse(src string, params ...string) (Type, error) {
	return c.ParseWith(src, nil, params...)
}

// Alias is the expansion of a named type.
type Alias struct {
	// Type is the aliased type. Placeholders $0..$N-1 stand for the
	// alias's own parameters.
	Type Type
	// Params is the number of arguments the alias takes.
	Params int
}

// AliasFunc looks up name. It returns nil when name is not an alias.
type AliasFunc func(name string) (*Alias, error)

// ParseWith is Parse with identifiers that aliases knows expanded in
// place. An alias applied to the wrong number of arguments is an arity
// error.
func (c *Context) ParseWith(src string, aliases AliasFunc, params ...string) (Type, error) {
	p := &parser{ctx: c, src: src, params: params, aliases: aliases}
	p.next()

	t, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q after type", p.tok.text)
	}

	return t, nil
}

// MustParse is Parse for literals known to be valid.
func (c *Context) MustParse(src string, params ...string) Type {
	t, err := c.Parse(src, params...)
	if err != nil {
		panic(err)
	}

	return t
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokPunct
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type parser struct {
	ctx    *Context
	src    string
	pos    int
	tok    token
	params []string

	aliases AliasFunc
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return lterrors.Parse(p.src, p.tok.offset, fmt.Sprintf(format, args...))
}

// next scans the following token into p.tok.
func (p *parser) next() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}

	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, offset: start}
		return
	}

	ch := p.src[p.pos]
	switch {
	case isIdentStart(ch):
		for p.pos < len(p.src) {
			if isIdentChar(p.src[p.pos]) {
				p.pos++
				continue
			}
			// Path separators are part of the identifier.
			if strings.HasPrefix(p.src[p.pos:], "::") && p.pos+2 < len(p.src) && isIdentStart(p.src[p.pos+2]) {
				p.pos += 2
				continue
			}
			break
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], offset: start}
	case ch >= '0' && ch <= '9':
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		p.tok = token{kind: tokInt, text: p.src[start:p.pos], offset: start}
	case strings.HasPrefix(p.src[p.pos:], "->"):
		p.pos += 2
		p.tok = token{kind: tokPunct, text: "->", offset: start}
	default:
		p.pos++
		p.tok = token{kind: tokPunct, text: string(ch), offset: start}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (p *parser) is(text string) bool {
	return p.tok.kind != tokEOF && p.tok.text == text
}

func (p *parser) expect(text string) error {
	if !p.is(text) {
		if p.tok.kind == tokEOF {
			return p.errorf("expected %q, found end of input", text)
		}

		return p.errorf("expected %q, found %q", text, p.tok.text)
	}

	p.next()

	return nil
}

func (p *parser) integer() (int, error) {
	if p.tok.kind != tokInt {
		return 0, p.errorf("expected integer, found %q", p.tok.text)
	}

	n, err := strconv.Atoi(p.tok.text)
	if err != nil {
		return 0, p.errorf("bad integer %q", p.tok.text)
	}

	p.next()

	return n, nil
}

func (p *parser) ident() (string, error) {
	if p.tok.kind != tokIdent {
		if p.tok.kind == tokEOF {
			return "", p.errorf("expected identifier, found end of input")
		}

		return "", p.errorf("expected identifier, found %q", p.tok.text)
	}

	name := p.tok.text
	p.next()

	return name, nil
}

func (p *parser) parseType() (Type, error) {
	switch {
	case p.tok.kind == tokEOF:
		return nil, p.errorf("expected type, found end of input")
	case p.is("!"):
		p.next()
		return p.ctx.Never(), nil
	case p.is("*"):
		return p.parsePointer()
	case p.is("&"):
		p.next()
		mutable := false
		if p.is("mut") {
			mutable = true
			p.next()
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return p.ctx.Ref(elem, mutable), nil
	case p.is("["):
		return p.parseArrayOrSlice()
	case p.is("("):
		return p.parseTuple()
	case p.is("$"):
		p.next()
		idx, err := p.integer()
		if err != nil {
			return nil, err
		}
		return p.ctx.Param(idx, ""), nil
	case p.is("{"):
		p.next()
		if err := p.expect("error"); err != nil {
			return nil, err
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		return p.ctx.Error(), nil
	case p.tok.kind == tokIdent:
		return p.parseNamed()
	default:
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
}

func (p *parser) parsePointer() (Type, error) {
	p.next()

	var mutable bool
	switch {
	case p.is("mut"):
		mutable = true
	case p.is("const"):
	default:
		return nil, p.errorf("expected const or mut after *")
	}
	p.next()

	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}

	return p.ctx.RawPtr(elem, mutable), nil
}

func (p *parser) parseArrayOrSlice() (Type, error) {
	p.next()

	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if p.is(";") {
		p.next()
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}

		return p.ctx.Array(elem, n), nil
	}

	if err := p.expect("]"); err != nil {
		return nil, err
	}

	return p.ctx.Slice(elem), nil
}

func (p *parser) parseTuple() (Type, error) {
	elems, err := p.parseList("(", ")")
	if err != nil {
		return nil, err
	}

	return p.ctx.Tuple(elems...), nil
}

// parseList reads open, a comma separated list with an optional trailing
// comma, and closer.
func (p *parser) parseList(open, closer string) ([]Type, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}

	var out []Type
	for !p.is(closer) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)

		if !p.is(",") {
			break
		}
		p.next()
	}

	if err := p.expect(closer); err != nil {
		return nil, err
	}

	return out, nil
}

func (p *parser) optionalArgs() ([]Type, error) {
	if !p.is("<") {
		return nil, nil
	}

	return p.parseList("<", ">")
}

func (p *parser) parseNamed() (Type, error) {
	name := p.tok.text

	switch name {
	case "_":
		p.next()
		return p.ctx.Infer(), nil
	case "fn":
		p.next()
		return p.parseFn()
	case "dyn", "impl", "proj":
		p.next()
		bound, err := p.ident()
		if err != nil {
			return nil, err
		}
		switch name {
		case "dyn":
			return p.ctx.Dynamic(bound), nil
		case "impl":
			return p.ctx.Opaque(bound), nil
		default:
			return p.ctx.Projection(bound), nil
		}
	case "closure":
		p.next()
		if err := p.expect("#"); err != nil {
			return nil, err
		}
		id, err := p.integer()
		if err != nil {
			return nil, err
		}
		return p.ctx.Closure(id), nil
	}

	for i, param := range p.params {
		if param == name {
			p.next()
			return p.ctx.Param(i, name), nil
		}
	}

	if t, ok := p.ctx.Primitive(name); ok {
		p.next()
		return t, nil
	}

	p.next()
	args, err := p.optionalArgs()
	if err != nil {
		return nil, err
	}

	if p.aliases != nil {
		alias, err := p.aliases(name)
		if err != nil {
			return nil, err
		}
		if alias != nil {
			if len(args) != alias.Params {
				return nil, lterrors.Arity(name+angleList(args), len(args), alias.Params)
			}
			return p.ctx.Instantiate(alias.Type, args), nil
		}
	}

	return p.ctx.Adt(name, args...), nil
}

func (p *parser) parseFn() (Type, error) {
	if p.tok.kind == tokIdent {
		name, _ := p.ident()
		args, err := p.optionalArgs()
		if err != nil {
			return nil, err
		}

		return p.ctx.FnDef(name, args...), nil
	}

	inputs, err := p.parseList("(", ")")
	if err != nil {
		return nil, err
	}

	var output Type
	if p.is("->") {
		p.next()
		if output, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	return p.ctx.FnPtr(inputs, output), nil
}
