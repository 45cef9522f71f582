package parser

import "fmt"

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenLBrace
	tokenRBrace
	tokenSemicolon
	tokenInvalid
)

var tokenNames = map[tokenType]string{
	tokenEOF:       "end of file",
	tokenIdent:     "identifier",
	tokenLBrace:    "'{'",
	tokenRBrace:    "'}'",
	tokenSemicolon: "';'",
	tokenInvalid:   "invalid token",
}

// Keywords of the surface syntax. They are contextual: a keyword is only
// special in statement position, so value-type descriptors may reuse them.
const (
	kwProtocol = "protocol"
	kwSend     = "send"
	kwRecv     = "recv"
	kwCall     = "call"
	kwEmbed    = "embed"
	kwEnd      = "end"
	kwChoose   = "choose"
	kwOffer    = "offer"
	kwSplit    = "split"
	kwTx       = "tx"
	kwRx       = "rx"
	kwLoop     = "loop"
	kwBreak    = "break"
	kwContinue = "continue"
)

type token struct {
	typ  tokenType
	lit  string
	line int
	col  int
}

func (t token) String() string {
	if t.typ == tokenIdent {
		return fmt.Sprintf("%q", t.lit)
	}
	return tokenNames[t.typ]
}
