// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package syntax

import "fmt"

// ParseError reports a syntax error at a specific span.
type ParseError struct {
	Span    Span
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Message)
}

func newParseError(span Span, format string, args ...interface{}) *ParseError {
	return &ParseError{Span: span, Message: fmt.Sprintf(format, args...)}
}

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser returns a parser over tokens (normally produced by Lexer.Tokenize).
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseDecls parses a whole file's worth of top-level declarations.
func (p *Parser) ParseDecls() ([]Decl, error) {
	var decls []Decl
	for !p.isEOF() {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func (p *Parser) parseDecl() (Decl, error) {
	tok := p.current()
	switch tok.Kind {
	case TokDef:
		return p.parseDef()
	case TokTheorem:
		return p.parseTheorem()
	case TokAxiom:
		return p.parseAxiom()
	case TokInductive:
		return p.parseInductive()
	case TokStructure:
		return p.parseStructure()
	default:
		return nil, newParseError(tok.Span, "expected declaration, found %s", tok.Kind)
	}
}

func (p *Parser) parseDef() (*DefDecl, error) {
	start, err := p.expect(TokDef)
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	univParams, err := p.parseUniverseParams()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	var returnType Expr
	if p.check(TokColon) {
		p.advance()
		returnType, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokColonEq); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &DefDecl{
		SpanVal:        start.Span.To(body.Span()),
		Name:           name,
		UniverseParams: univParams,
		Params:         params,
		ReturnType:     returnType,
		Body:           body,
	}, nil
}

func (p *Parser) parseTheorem() (*TheoremDecl, error) {
	start, err := p.expect(TokTheorem)
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	univParams, err := p.parseUniverseParams()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	ty, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColonEq); err != nil {
		return nil, err
	}
	proof, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &TheoremDecl{
		SpanVal:        start.Span.To(proof.Span()),
		Name:           name,
		UniverseParams: univParams,
		Params:         params,
		Type:           ty,
		Proof:          proof,
	}, nil
}

func (p *Parser) parseAxiom() (*AxiomDecl, error) {
	start, err := p.expect(TokAxiom)
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	univParams, err := p.parseUniverseParams()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	ty, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &AxiomDecl{
		SpanVal:        start.Span.To(ty.Span()),
		Name:           name,
		UniverseParams: univParams,
		Params:         params,
		Type:           ty,
	}, nil
}

func (p *Parser) parseInductive() (*InductiveDecl, error) {
	start, err := p.expect(TokInductive)
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	univParams, err := p.parseUniverseParams()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	var ty Expr
	if p.check(TokColon) {
		p.advance()
		ty, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokWhere); err != nil {
		return nil, err
	}

	var ctors []Constructor
	for p.check(TokPipe) {
		p.advance()
		c, err := p.parseConstructor()
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, c)
	}

	end := name.Span
	if len(ctors) > 0 {
		end = ctors[len(ctors)-1].SpanVal
	}

	return &InductiveDecl{
		SpanVal:        start.Span.To(end),
		Name:           name,
		UniverseParams: univParams,
		Params:         params,
		Type:           ty,
		Constructors:   ctors,
	}, nil
}

func (p *Parser) parseConstructor() (Constructor, error) {
	name, err := p.parseIdent()
	if err != nil {
		return Constructor{}, err
	}
	params, err := p.parseParams()
	if err != nil {
		return Constructor{}, err
	}

	var ty Expr
	end := name.Span
	if p.check(TokColon) {
		p.advance()
		ty, err = p.parseExpr()
		if err != nil {
			return Constructor{}, err
		}
		end = ty.Span()
	}

	return Constructor{SpanVal: name.Span.To(end), Name: name, Params: params, Type: ty}, nil
}

func (p *Parser) parseStructure() (*StructureDecl, error) {
	start, err := p.expect(TokStructure)
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	univParams, err := p.parseUniverseParams()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokWhere); err != nil {
		return nil, err
	}

	var fields []Field
	for !p.isEOF() && !p.check(TokRBrace) {
		fieldName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		fieldType, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Span: fieldName.Span.To(fieldType.Span()), Name: fieldName, Type: fieldType})

		if !p.check(TokComma) {
			break
		}
		p.advance()
	}

	end := name.Span
	if len(fields) > 0 {
		end = fields[len(fields)-1].Span
	}

	return &StructureDecl{
		SpanVal:        start.Span.To(end),
		Name:           name,
		UniverseParams: univParams,
		Params:         params,
		Fields:         fields,
	}, nil
}

// parseUniverseParams parses an optional `.{u v}` universe parameter list.
func (p *Parser) parseUniverseParams() ([]Ident, error) {
	var params []Ident
	if !p.check(TokDot) {
		return params, nil
	}
	p.advance()
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	for !p.check(TokRBrace) {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, id)
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return params, nil
}

// parseParams parses zero or more `(x y : T)` / `{x : T}` parameter groups.
func (p *Parser) parseParams() ([]Param, error) {
	var params []Param
	for p.check(TokLParen) || p.check(TokLBrace) {
		implicit := p.check(TokLBrace)
		start := p.current().Span
		p.advance()

		first, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		names := []Ident{first}
		for !p.check(TokColon) && !p.isEOF() {
			next, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			names = append(names, next)
		}

		var ty Expr
		if p.check(TokColon) {
			p.advance()
			ty, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}

		endTok := TokRParen
		if implicit {
			endTok = TokRBrace
		}
		end, err := p.expect(endTok)
		if err != nil {
			return nil, err
		}

		params = append(params, Param{Span: start.To(end.Span), Names: names, Type: ty, Implicit: implicit})
	}
	return params, nil
}

// ParseExpr parses a single expression (exported for tooling that
// wants to parse a standalone expression, e.g. a REPL).
func (p *Parser) ParseExpr() (Expr, error) { return p.parseExpr() }

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseArrowExpr()
}

// parseArrowExpr parses right-associative arrow types: A -> B -> C.
func (p *Parser) parseArrowExpr() (Expr, error) {
	expr, err := p.parseForallExpr()
	if err != nil {
		return nil, err
	}
	for p.check(TokArrow) {
		p.advance()
		to, err := p.parseForallExpr()
		if err != nil {
			return nil, err
		}
		expr = &ArrowExpr{SpanVal: expr.Span().To(to.Span()), From: expr, To: to}
	}
	return expr, nil
}

func (p *Parser) parseForallExpr() (Expr, error) {
	if p.check(TokForall) {
		start := p.advance().Span
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokComma); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ForallExpr{SpanVal: start.To(body.Span()), Params: params, Body: body}, nil
	}
	return p.parseLambdaExpr()
}

func (p *Parser) parseLambdaExpr() (Expr, error) {
	if p.check(TokFun) || p.check(TokLambda) {
		start := p.advance().Span
		params, err := p.parseLambdaParams()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokFatArrow); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &LamExpr{SpanVal: start.To(body.Span()), Params: params, Body: body}, nil
	}
	return p.parseLetExpr()
}

func (p *Parser) parseLambdaParams() ([]Param, error) {
	var params []Param
	for {
		if p.check(TokFatArrow) {
			break
		}
		switch {
		case p.check(TokLBrace):
			p.advance()
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			var ty Expr
			if p.check(TokColon) {
				p.advance()
				ty, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(TokRBrace); err != nil {
				return nil, err
			}
			params = append(params, Param{Span: name.Span, Names: []Ident{name}, Type: ty, Implicit: true})
		case p.check(TokLParen):
			p.advance()
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			var ty Expr
			if p.check(TokColon) {
				p.advance()
				ty, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(TokRParen); err != nil {
				return nil, err
			}
			params = append(params, Param{Span: name.Span, Names: []Ident{name}, Type: ty})
		default:
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Span: name.Span, Names: []Ident{name}})
		}
	}
	return params, nil
}

func (p *Parser) parseLetExpr() (Expr, error) {
	if p.check(TokLet) {
		start := p.advance().Span
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		var ty Expr
		if p.check(TokColon) {
			p.advance()
			ty, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(TokColonEq); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokIn); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &LetExpr{SpanVal: start.To(body.Span()), Name: name, Type: ty, Value: value, Body: body}, nil
	}
	return p.parseMatchExpr()
}

func (p *Parser) parseMatchExpr() (Expr, error) {
	if p.check(TokMatch) {
		start := p.advance().Span
		scrutinee, err := p.parseAppExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokWith); err != nil {
			return nil, err
		}
		var arms []MatchArm
		for p.check(TokPipe) {
			p.advance()
			pat, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokFatArrow); err != nil {
				return nil, err
			}
			body, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			arms = append(arms, MatchArm{Span: pat.Span.To(body.Span()), Pattern: pat, Body: body})
		}
		end := scrutinee.Span()
		if len(arms) > 0 {
			end = arms[len(arms)-1].Span
		}
		return &MatchExpr{SpanVal: start.To(end), Scrutinee: scrutinee, Arms: arms}, nil
	}
	return p.parseIfExpr()
}

func (p *Parser) parseIfExpr() (Expr, error) {
	if p.check(TokIf) {
		start := p.advance().Span
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokThen); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokElse); err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &IfExpr{SpanVal: start.To(els.Span()), Cond: cond, Then: then, Else: els}, nil
	}
	return p.parseAppExpr()
}

// parseAppExpr parses application, which binds tighter than any
// arrow/forall/lambda/let/match/if form: f x y z.
func (p *Parser) parseAppExpr() (Expr, error) {
	fn, err := p.parseAtomicExpr()
	if err != nil {
		return nil, err
	}
	var args []Expr
	for !p.isEOF() && p.isAtomicStart() {
		arg, err := p.parseAtomicExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return fn, nil
	}
	return &AppExpr{SpanVal: fn.Span().To(args[len(args)-1].Span()), Func: fn, Args: args}, nil
}

func (p *Parser) parseAtomicExpr() (Expr, error) {
	tok := p.current()
	switch tok.Kind {
	case TokIdent:
		p.advance()
		return &IdentExpr{Ident: Ident{Span: tok.Span, Name: tok.Text}}, nil

	case TokNumber:
		p.advance()
		var n uint64
		for _, ch := range tok.Text {
			n = n*10 + uint64(ch-'0')
		}
		return &LitExpr{SpanVal: tok.Span, Lit: Lit{Kind: LitNat, Nat: n}}, nil

	case TokString:
		p.advance()
		return &LitExpr{SpanVal: tok.Span, Lit: Lit{Kind: LitString, Str: tok.Text}}, nil

	case TokUnderscore:
		p.advance()
		return &HoleExpr{SpanVal: tok.Span}, nil

	case TokType:
		p.advance()
		return &UniverseExpr{SpanVal: tok.Span, Kind: Universe{Kind: UniverseType}}, nil

	case TokProp:
		p.advance()
		return &UniverseExpr{SpanVal: tok.Span, Kind: Universe{Kind: UniverseProp}}, nil

	case TokSort:
		p.advance()
		v, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		return &UniverseExpr{SpanVal: tok.Span.To(v.Span), Kind: Universe{Kind: UniverseSort, Var: v.Name}}, nil

	case TokLParen:
		start := p.advance().Span
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(TokRParen)
		if err != nil {
			return nil, err
		}
		return &ParenExpr{SpanVal: start.To(end.Span), Inner: inner}, nil

	default:
		return nil, newParseError(tok.Span, "expected expression, found %s", tok.Kind)
	}
}

func (p *Parser) parsePattern() (Pattern, error) {
	tok := p.current()
	switch tok.Kind {
	case TokUnderscore:
		p.advance()
		return Pattern{Kind: PatternWildcard, Span: tok.Span}, nil

	case TokNumber:
		p.advance()
		var n uint64
		for _, ch := range tok.Text {
			n = n*10 + uint64(ch-'0')
		}
		return Pattern{Kind: PatternLit, Span: tok.Span, Lit: Lit{Kind: LitNat, Nat: n}}, nil

	case TokIdent:
		p.advance()
		ident := Ident{Span: tok.Span, Name: tok.Text}
		var args []Pattern
		for !p.isEOF() && p.isPatternStart() && !p.check(TokFatArrow) {
			arg, err := p.parsePattern()
			if err != nil {
				return Pattern{}, err
			}
			args = append(args, arg)
		}
		if len(args) == 0 {
			return Pattern{Kind: PatternVar, Span: tok.Span, Name: ident}, nil
		}
		return Pattern{Kind: PatternConstructor, Span: tok.Span.To(args[len(args)-1].Span), Name: ident, Args: args}, nil

	default:
		return Pattern{}, newParseError(tok.Span, "expected pattern, found %s", tok.Kind)
	}
}

func (p *Parser) parseIdent() (Ident, error) {
	tok := p.current()
	if tok.Kind != TokIdent {
		return Ident{}, newParseError(tok.Span, "expected identifier, found %s", tok.Kind)
	}
	p.advance()
	return Ident{Span: tok.Span, Name: tok.Text}, nil
}

func (p *Parser) check(kind TokenKind) bool {
	return !p.isEOF() && p.current().Kind == kind
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return Token{}, newParseError(p.current().Span, "expected %s, found %s", kind, p.current().Kind)
}

func (p *Parser) current() Token {
	idx := p.pos
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	return p.tokens[idx]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) isEOF() bool {
	return p.current().Kind == TokEOF
}

func (p *Parser) isAtomicStart() bool {
	switch p.current().Kind {
	case TokIdent, TokNumber, TokString, TokUnderscore, TokType, TokProp, TokSort, TokLParen:
		return true
	default:
		return false
	}
}

func (p *Parser) isPatternStart() bool {
	switch p.current().Kind {
	case TokIdent, TokNumber, TokUnderscore:
		return true
	default:
		return false
	}
}
