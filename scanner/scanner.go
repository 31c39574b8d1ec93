/*
Package scanner defines the external tokenizer boundary of spec.md §6: a
Tokenizer produces one earleygo.Token at a time, terminated by a token
whose Sym is earleygo.EndOfInput.

Two implementations are provided: ByteTokenizer, a minimal scanner that
treats every input byte as a literal-byte terminal (spec.md §6's [1,127]
convention), and a lexmachine-backed adapter in the lexmach subpackage for
grammars with named, regex-recognized terminals.

Grounded on gorgo's lr/scanner package (the Tokenizer interface, the
SetErrorHandler/default-error-logging idiom, DefaultTokenizer wrapping
text/scanner).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package scanner

import (
	"bufio"
	"io"

	"github.com/npillmayer/schuko/tracing"

	"github.com/jarro2783/earleygo"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.scanner")
}

// Tokenizer produces tokens from some input source, one at a time.
type Tokenizer interface {
	NextToken() earleygo.Token
	SetErrorHandler(func(error))
}

// simpleToken is the token type returned by ByteTokenizer and by
// lexmach.Scanner.
type simpleToken struct {
	sym    earleygo.Sym
	lexeme string
	span   earleygo.Span
}

func (t simpleToken) Sym() earleygo.Sym  { return t.sym }
func (t simpleToken) Lexeme() string     { return t.lexeme }
func (t simpleToken) Span() earleygo.Span { return t.span }

// MakeToken builds a Token from its parts; exported so the lexmach
// subpackage (and callers writing their own Tokenizer) can construct one
// without a second token type.
func MakeToken(sym earleygo.Sym, lexeme string, span earleygo.Span) earleygo.Token {
	return simpleToken{sym: sym, lexeme: lexeme, span: span}
}

func logError(e error) {
	tracer().Errorf("scanner error: %s", e.Error())
}

// ByteTokenizer scans raw bytes, emitting one literal-byte terminal token
// per byte (spec.md §6: "terminal ids [1,127] denote literal bytes"),
// followed by a single earleygo.EndOfInput token once the source is
// exhausted.
type ByteTokenizer struct {
	r      *bufio.Reader
	pos    int
	Error  func(error)
	atEOF  bool
}

var _ Tokenizer = (*ByteTokenizer)(nil)

// NewByteTokenizer wraps r as a ByteTokenizer.
func NewByteTokenizer(r io.Reader) *ByteTokenizer {
	return &ByteTokenizer{r: bufio.NewReader(r), Error: logError}
}

// SetErrorHandler is part of the Tokenizer interface.
func (t *ByteTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *ByteTokenizer) NextToken() earleygo.Token {
	if t.atEOF {
		return simpleToken{sym: earleygo.EndOfInput, span: earleygo.Span{t.pos, t.pos}}
	}
	b, err := t.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			t.Error(err)
		}
		t.atEOF = true
		return simpleToken{sym: earleygo.EndOfInput, span: earleygo.Span{t.pos, t.pos}}
	}
	tok := simpleToken{
		sym:    earleygo.Sym(b),
		lexeme: string(b),
		span:   earleygo.Span{t.pos, t.pos + 1},
	}
	t.pos++
	return tok
}

// Tokenize drains t into a slice of symbols, stopping before the
// EndOfInput token (the form the recognition engine consumes).
func Tokenize(t Tokenizer) []earleygo.Sym {
	var out []earleygo.Sym
	for {
		tok := t.NextToken()
		if tok.Sym() == earleygo.EndOfInput {
			return out
		}
		out = append(out, tok.Sym())
	}
}
