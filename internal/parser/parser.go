package parser

import "fmt"

// ParseError is a surface-syntax error with source position
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse parses one protocol file into a Unit AST
func Parse(filename string, src []byte) (*Node, error) {
	p := &parser{file: filename, lex: newLexer(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseUnit()
}

type parser struct {
	file string
	lex  *lexer
	tok  token
}

func (p *parser) next() error {
	t, err := p.lex.next()
	if err != nil {
		return p.errAt(t, "%v", err)
	}
	p.tok = t
	return nil
}

func (p *parser) errAt(t token, format string, args ...interface{}) error {
	return &ParseError{File: p.file, Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(typ tokenType) (token, error) {
	if p.tok.typ != typ {
		return token{}, p.errAt(p.tok, "expected %s, found %s", tokenNames[typ], p.tok)
	}
	t := p.tok
	if err := p.next(); err != nil {
		return token{}, err
	}
	return t, nil
}

func (p *parser) expectKeyword(kw string) (token, error) {
	if p.tok.typ != tokenIdent || p.tok.lit != kw {
		return token{}, p.errAt(p.tok, "expected %q, found %s", kw, p.tok)
	}
	t := p.tok
	if err := p.next(); err != nil {
		return token{}, err
	}
	return t, nil
}

func (p *parser) nodeAt(typ NodeType, t token) *Node {
	n := NewNode(typ)
	n.Location = Location{
		File:      p.file,
		StartLine: t.line,
		StartCol:  t.col,
		EndLine:   t.line,
		EndCol:    t.col + len(t.lit),
	}
	return n
}

func (p *parser) closeSpan(n *Node, t token) {
	n.Location.EndLine = t.line
	n.Location.EndCol = t.col + len(t.lit)
}

func (p *parser) parseUnit() (*Node, error) {
	unit := p.nodeAt(NodeUnit, p.tok)
	for p.tok.typ != tokenEOF {
		proto, err := p.parseProtocol()
		if err != nil {
			return nil, err
		}
		unit.Body = append(unit.Body, proto)
	}
	return unit, nil
}

func (p *parser) parseProtocol() (*Node, error) {
	start, err := p.expectKeyword(kwProtocol)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}
	proto := p.nodeAt(NodeProtocol, start)
	proto.Name = name.lit
	body, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	proto.Body = body
	p.closeSpan(proto, end)
	return proto, nil
}

// parseBlock parses "{ stmt* }" and returns the statements and the
// closing brace token
func (p *parser) parseBlock() ([]*Node, token, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, token{}, err
	}
	var stmts []*Node
	for p.tok.typ != tokenRBrace {
		if p.tok.typ == tokenEOF {
			return nil, token{}, p.errAt(p.tok, "unexpected end of file, expected '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, token{}, err
		}
		stmts = append(stmts, stmt)
	}
	end := p.tok
	if err := p.next(); err != nil {
		return nil, token{}, err
	}
	return stmts, end, nil
}

func (p *parser) parseStatement() (*Node, error) {
	if p.tok.typ != tokenIdent {
		return nil, p.errAt(p.tok, "expected statement, found %s", p.tok)
	}
	switch p.tok.lit {
	case kwSend:
		return p.parseAction(NodeSend, kwSend)
	case kwRecv:
		return p.parseAction(NodeRecv, kwRecv)
	case kwEmbed:
		return p.parseAction(NodeEmbed, kwEmbed)
	case kwCall:
		return p.parseAction(NodeCall, kwCall)
	case kwEnd:
		start := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		end, err := p.expect(tokenSemicolon)
		if err != nil {
			return nil, err
		}
		n := p.nodeAt(NodeEnd, start)
		p.closeSpan(n, end)
		return n, nil
	case kwBreak:
		return p.parseJump(NodeBreak)
	case kwContinue:
		return p.parseJump(NodeContinue)
	case kwLoop:
		return p.parseLoop()
	case kwChoose:
		return p.parseBranching(NodeChoose, kwChoose)
	case kwOffer:
		return p.parseBranching(NodeOffer, kwOffer)
	case kwSplit:
		return p.parseSplit()
	default:
		return nil, p.errAt(p.tok, "expected statement, found %s", p.tok)
	}
}

// parseAction parses "send T;", "recv T;", "embed T;" and "call Name;"
func (p *parser) parseAction(typ NodeType, kw string) (*Node, error) {
	start, err := p.expectKeyword(kw)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(tokenSemicolon)
	if err != nil {
		return nil, err
	}
	n := p.nodeAt(typ, start)
	n.Name = name.lit
	p.closeSpan(n, end)
	return n, nil
}

// parseJump parses "break [label];" and "continue [label];"
func (p *parser) parseJump(typ NodeType) (*Node, error) {
	start := p.tok
	if err := p.next(); err != nil {
		return nil, err
	}
	n := p.nodeAt(typ, start)
	if p.tok.typ == tokenIdent {
		n.Name = p.tok.lit
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	end, err := p.expect(tokenSemicolon)
	if err != nil {
		return nil, err
	}
	p.closeSpan(n, end)
	return n, nil
}

func (p *parser) parseLoop() (*Node, error) {
	start, err := p.expectKeyword(kwLoop)
	if err != nil {
		return nil, err
	}
	n := p.nodeAt(NodeLoop, start)
	if p.tok.typ == tokenIdent {
		n.Name = p.tok.lit
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	body, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	p.closeSpan(n, end)
	return n, nil
}

// parseBranching parses "choose { {...} {...} }" and the offer form
func (p *parser) parseBranching(typ NodeType, kw string) (*Node, error) {
	start, err := p.expectKeyword(kw)
	if err != nil {
		return nil, err
	}
	n := p.nodeAt(typ, start)
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	for p.tok.typ == tokenLBrace {
		brStart := p.tok
		body, brEnd, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		br := p.nodeAt(NodeBranch, brStart)
		br.Body = body
		p.closeSpan(br, brEnd)
		n.Branches = append(n.Branches, br)
	}
	end, err := p.expect(tokenRBrace)
	if err != nil {
		return nil, err
	}
	if len(n.Branches) == 0 {
		return nil, p.errAt(start, "%s must have at least one branch", kw)
	}
	p.closeSpan(n, end)
	return n, nil
}

// parseSplit parses "split { tx {...} rx {...} }"; either half may be
// omitted
func (p *parser) parseSplit() (*Node, error) {
	start, err := p.expectKeyword(kwSplit)
	if err != nil {
		return nil, err
	}
	n := p.nodeAt(NodeSplit, start)
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	for p.tok.typ == tokenIdent && (p.tok.lit == kwTx || p.tok.lit == kwRx) {
		half := p.tok.lit
		halfStart := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		body, halfEnd, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		br := p.nodeAt(NodeBranch, halfStart)
		br.Body = body
		p.closeSpan(br, halfEnd)
		if half == kwTx {
			if n.Tx != nil {
				return nil, p.errAt(halfStart, "duplicate tx half in split")
			}
			n.Tx = br
		} else {
			if n.Rx != nil {
				return nil, p.errAt(halfStart, "duplicate rx half in split")
			}
			n.Rx = br
		}
	}
	end, err := p.expect(tokenRBrace)
	if err != nil {
		return nil, err
	}
	p.closeSpan(n, end)
	return n, nil
}
