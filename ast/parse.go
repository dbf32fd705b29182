package ast

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseError is a syntax error with the position or range at which it
// was detected.
type ParseError struct {
	Msg  string
	Span Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokHex
	tokString
	tokPunct // operators and delimiters
)

type token struct {
	kind tokenKind
	text string
	span Span
}

type lexer struct {
	src  string
	pos  int
	line uint32
	col  uint32
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (lx *lexer) errorf(span Span, format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Span: span}
}

func (lx *lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) advance() byte {
	ch := lx.src[lx.pos]
	lx.pos++
	if ch == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return ch
}

func (lx *lexer) skipSpace() error {
	for lx.pos < len(lx.src) {
		ch := lx.peekByte()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.advance()
		case ch == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
			for lx.pos < len(lx.src) && lx.peekByte() != '\n' {
				lx.advance()
			}
		case ch == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*':
			start := lx.here()
			lx.advance()
			lx.advance()
			closed := false
			for lx.pos < len(lx.src) {
				if lx.peekByte() == '*' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/' {
					lx.advance()
					lx.advance()
					closed = true
					break
				}
				lx.advance()
			}
			if !closed {
				return lx.errorf(Span{start.Line, start.Col, start.Line, start.Col}, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

type pos struct {
	Line, Col uint32
}

func (lx *lexer) here() pos { return pos{lx.line, lx.col} }

func spanFrom(start pos, end pos) Span {
	return Span{Line: start.Line, Col: start.Col, EndLine: end.Line, EndCol: end.Col}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// twoBytePuncts are matched before single-byte punctuation.
var twoBytePuncts = []string{"==", "!=", "<=", ">=", "&&", "||"}

func (lx *lexer) next() (token, error) {
	if err := lx.skipSpace(); err != nil {
		return token{}, err
	}
	start := lx.here()
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, span: spanFrom(start, start)}, nil
	}
	ch := lx.peekByte()

	switch {
	case isIdentStart(ch):
		var sb strings.Builder
		for lx.pos < len(lx.src) && isIdentPart(lx.peekByte()) {
			sb.WriteByte(lx.advance())
		}
		return token{kind: tokIdent, text: sb.String(), span: spanFrom(start, lx.here())}, nil

	case ch == '0' && lx.pos+1 < len(lx.src) && (lx.src[lx.pos+1] == 'x' || lx.src[lx.pos+1] == 'X'):
		lx.advance()
		lx.advance()
		var sb strings.Builder
		for lx.pos < len(lx.src) && isHexDigit(lx.peekByte()) {
			sb.WriteByte(lx.advance())
		}
		sp := spanFrom(start, lx.here())
		if sb.Len()%2 != 0 {
			return token{}, lx.errorf(sp, "hex literal has odd length")
		}
		return token{kind: tokHex, text: sb.String(), span: sp}, nil

	case isDigit(ch):
		var sb strings.Builder
		for lx.pos < len(lx.src) && isDigit(lx.peekByte()) {
			sb.WriteByte(lx.advance())
		}
		return token{kind: tokNumber, text: sb.String(), span: spanFrom(start, lx.here())}, nil

	case ch == '"':
		lx.advance()
		var sb strings.Builder
		for {
			if lx.pos >= len(lx.src) {
				return token{}, lx.errorf(spanFrom(start, lx.here()), "unterminated string literal")
			}
			c := lx.advance()
			if c == '"' {
				break
			}
			if c == '\\' {
				if lx.pos >= len(lx.src) {
					return token{}, lx.errorf(spanFrom(start, lx.here()), "unterminated string literal")
				}
				esc := lx.advance()
				switch esc {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case '\\', '"':
					sb.WriteByte(esc)
				default:
					return token{}, lx.errorf(spanFrom(start, lx.here()), "unknown escape \\%c", esc)
				}
				continue
			}
			sb.WriteByte(c)
		}
		return token{kind: tokString, text: sb.String(), span: spanFrom(start, lx.here())}, nil
	}

	for _, p := range twoBytePuncts {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.advance()
			lx.advance()
			return token{kind: tokPunct, text: p, span: spanFrom(start, lx.here())}, nil
		}
	}
	switch ch {
	case '(', ')', '{', '}', ',', ';', '+', '-', '*', '/', '%', '<', '>', '=', '!', '^', '.':
		lx.advance()
		return token{kind: tokPunct, text: string(ch), span: spanFrom(start, lx.here())}, nil
	}
	return token{}, lx.errorf(spanFrom(start, start), "unexpected character %q", ch)
}

type parser struct {
	lx  *lexer
	tok token // current token
}

// ParseContract parses a full SilverScript source file into a Contract.
// The returned error, if any, is a *ParseError.
func ParseContract(src string) (*Contract, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.bump(); err != nil {
		return nil, err
	}
	if err := p.parsePragma(); err != nil {
		return nil, err
	}
	c, err := p.parseContract()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("expected end of input, found %q", p.tok.text)
	}
	return c, nil
}

func (p *parser) bump() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Span: p.tok.span}
}

func (p *parser) expectPunct(text string) (Span, error) {
	if p.tok.kind != tokPunct || p.tok.text != text {
		return Span{}, p.errorf("expected %q, found %q", text, p.tok.text)
	}
	sp := p.tok.span
	return sp, p.bump()
}

func (p *parser) expectIdent() (string, Span, error) {
	if p.tok.kind != tokIdent {
		return "", Span{}, p.errorf("expected identifier, found %q", p.tok.text)
	}
	name, sp := p.tok.text, p.tok.span
	return name, sp, p.bump()
}

func (p *parser) expectKeyword(kw string) error {
	if p.tok.kind != tokIdent || p.tok.text != kw {
		return p.errorf("expected %q, found %q", kw, p.tok.text)
	}
	return p.bump()
}

func (p *parser) atPunct(text string) bool {
	return p.tok.kind == tokPunct && p.tok.text == text
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok.kind == tokIdent && p.tok.text == kw
}

// parsePragma accepts an optional "pragma silverscript <anything>;" line.
func (p *parser) parsePragma() error {
	if !p.atKeyword("pragma") {
		return nil
	}
	if err := p.bump(); err != nil {
		return err
	}
	if err := p.expectKeyword("silverscript"); err != nil {
		return err
	}
	// Version constraint tokens up to the terminating semicolon.
	for !p.atPunct(";") {
		if p.tok.kind == tokEOF {
			return p.errorf("unterminated pragma")
		}
		if err := p.bump(); err != nil {
			return err
		}
	}
	return p.bump()
}

func (p *parser) parseContract() (*Contract, error) {
	start := p.tok.span
	if err := p.expectKeyword("contract"); err != nil {
		return nil, err
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var funcs []*Function
	for !p.atPunct("}") {
		f, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, f)
	}
	end, err := p.expectPunct("}")
	if err != nil {
		return nil, err
	}
	return &Contract{
		Name:      name,
		Params:    params,
		Functions: funcs,
		Span:      Span{start.Line, start.Col, end.EndLine, end.EndCol},
	}, nil
}

func (p *parser) parseParamList() ([]*Param, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []*Param
	for !p.atPunct(")") {
		if len(params) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		typeName, tsp, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		name, nsp, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, &Param{
			Name:     name,
			TypeName: typeName,
			Span:     Span{tsp.Line, tsp.Col, nsp.EndLine, nsp.EndCol},
		})
	}
	_, err := p.expectPunct(")")
	return params, err
}

func (p *parser) parseFunction() (*Function, error) {
	start := p.tok.span
	entrypoint := false
	if p.atKeyword("entrypoint") {
		entrypoint = true
		if err := p.bump(); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var body []Statement
	for !p.atPunct("}") {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	end, err := p.expectPunct("}")
	if err != nil {
		return nil, err
	}
	return &Function{
		Name:       name,
		Entrypoint: entrypoint,
		Params:     params,
		Body:       body,
		Span:       Span{start.Line, start.Col, end.EndLine, end.EndCol},
	}, nil
}

func (p *parser) parseStatement() (Statement, error) {
	start := p.tok.span
	if p.atKeyword("require") {
		if err := p.bump(); err != nil {
			return nil, err
		}
		if _, err := p.expectPunct("("); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		end, err := p.expectPunct(";")
		if err != nil {
			return nil, err
		}
		return &RequireStatement{
			Cond: cond,
			Span: Span{start.Line, start.Col, end.EndLine, end.EndCol},
		}, nil
	}

	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if p.atPunct("(") {
		// Helper call statement.
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		end, err := p.expectPunct(";")
		if err != nil {
			return nil, err
		}
		return &CallStatement{
			FuncName: name,
			Args:     args,
			Span:     Span{start.Line, start.Col, end.EndLine, end.EndCol},
		}, nil
	}

	// Local declaration: <type> <name> = <expr>;
	varName, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectPunct(";")
	if err != nil {
		return nil, err
	}
	return &DeclStatement{
		TypeName: name,
		VarName:  varName,
		Value:    value,
		Span:     Span{start.Line, start.Col, end.EndLine, end.EndCol},
	}, nil
}

func (p *parser) parseArgs() ([]Expr, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Expr
	for !p.atPunct(")") {
		if len(args) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	_, err := p.expectPunct(")")
	return args, err
}

// Binding powers, loosest first.
var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseBinary(1)
}

func (p *parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPunct {
		prec, ok := binaryPrec[p.tok.text]
		if !ok || prec < minPrec {
			break
		}
		op := p.tok.text
		if err := p.bump(); err != nil {
			return nil, err
		}
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		ls, rs := left.ExprSpan(), right.ExprSpan()
		left = &BinaryExpr{
			Op:   op,
			Left: left, Right: right,
			Span: Span{ls.Line, ls.Col, rs.EndLine, rs.EndCol},
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokPunct && (p.tok.text == "-" || p.tok.text == "!") {
		op := p.tok.text
		start := p.tok.span
		if err := p.bump(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		os := operand.ExprSpan()
		return &UnaryExpr{
			Op:      op,
			Operand: operand,
			Span:    Span{start.Line, start.Col, os.EndLine, os.EndCol},
		}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.tok
	switch tok.kind {
	case tokNumber:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf("integer literal out of range")
		}
		if err := p.bump(); err != nil {
			return nil, err
		}
		return &IntLiteral{Value: n, Span: tok.span}, nil

	case tokHex:
		b, err := hex.DecodeString(tok.text)
		if err != nil {
			return nil, p.errorf("invalid hex literal")
		}
		if err := p.bump(); err != nil {
			return nil, err
		}
		return &BytesLiteral{Value: b, Span: tok.span}, nil

	case tokString:
		if err := p.bump(); err != nil {
			return nil, err
		}
		return &StringLiteral{Value: tok.text, Span: tok.span}, nil

	case tokIdent:
		switch tok.text {
		case "true", "false":
			if err := p.bump(); err != nil {
				return nil, err
			}
			return &BoolLiteral{Value: tok.text == "true", Span: tok.span}, nil
		}
		name := tok.text
		if err := p.bump(); err != nil {
			return nil, err
		}
		if p.atPunct("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			var endSpan Span
			if len(args) > 0 {
				endSpan = args[len(args)-1].ExprSpan()
			} else {
				endSpan = tok.span
			}
			return &CallExpr{
				Name: name,
				Args: args,
				Span: Span{tok.span.Line, tok.span.Col, endSpan.EndLine, endSpan.EndCol},
			}, nil
		}
		return &VarRef{Name: name, Span: tok.span}, nil

	case tokPunct:
		if tok.text == "(" {
			if err := p.bump(); err != nil {
				return nil, err
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, p.errorf("expected expression, found %q", tok.text)
}
