/*
Package lexmach adapts github.com/timtadh/lexmachine into a
scanner.Tokenizer, for grammars whose terminals are named and
regex-recognized rather than individual literal bytes (spec.md §6's named
terminal ids, FirstNamedSymbol and up).

Grounded on gorgo's lr/scanner/lexmach package, generalized from gorgo's
gorgo.TokType to earleygo.Sym and from its scanner.Tokenizer to this
module's scanner.Tokenizer.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package lexmach

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/scanner"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.scanner")
}

// Adapter wraps a compiled lexmachine DFA as a source of scanner.Tokenizers.
type Adapter struct {
	Lexer *lexmachine.Lexer
}

// New builds an Adapter recognizing literals ('(', ';', …), keywords
// ("if", "for", …, each matched by its lowercased spelling only),
// and any further patterns registered by init, with every named terminal
// resolved through symbols. init is called before literal/keyword rules
// are added, so it may register patterns that should take priority (they
// are tried in registration order by lexmachine).
//
// New returns an error if compiling the DFA failed.
func New(init func(*lexmachine.Lexer), literals []string, keywords []string, symbols map[string]earleygo.Sym) (*Adapter, error) {
	a := &Adapter{Lexer: lexmachine.NewLexer()}
	init(a.Lexer)
	for _, lit := range literals {
		pattern := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		a.Lexer.Add([]byte(pattern), makeAction(lit, symbols[lit]))
	}
	for _, kw := range keywords {
		a.Lexer.Add([]byte(strings.ToLower(kw)), makeAction(kw, symbols[kw]))
	}
	if err := a.Lexer.Compile(); err != nil {
		tracer().Errorf("error compiling DFA: %v", err)
		return nil, err
	}
	return a, nil
}

// Scanner creates a Tokenizer scanning input.
func (a *Adapter) Scanner(input string) (*Scanner, error) {
	s, err := a.Lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	return &Scanner{scanner: s, Error: logError}, nil
}

// Scanner is a scanner.Tokenizer backed by a compiled lexmachine DFA.
type Scanner struct {
	scanner *lexmachine.Scanner
	Error   func(error)
}

var _ scanner.Tokenizer = (*Scanner)(nil)

// SetErrorHandler is part of the scanner.Tokenizer interface.
func (s *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		s.Error = logError
		return
	}
	s.Error = h
}

func logError(e error) {
	tracer().Errorf("scanner error: %s", e.Error())
}

// NextToken is part of the scanner.Tokenizer interface. Unconsumable input
// is reported to Error and then skipped, one byte at a time, matching
// lexmachine's own recovery idiom (gorgo's LMScanner.NextToken).
func (s *Scanner) NextToken() earleygo.Token {
	tok, err, eof := s.scanner.Next()
	for err != nil {
		s.Error(err)
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			s.scanner.TC = ui.FailTC
		}
		tok, err, eof = s.scanner.Next()
	}
	if eof {
		return scanner.MakeToken(earleygo.EndOfInput, "", earleygo.Span{})
	}
	t := tok.(*lexmachine.Token)
	return scanner.MakeToken(
		earleygo.Sym(t.Type),
		string(t.Lexeme),
		earleygo.Span{t.StartColumn, t.EndColumn},
	)
}

// Skip is a pre-defined lexmachine action which ignores the scanned match
// (for whitespace and comment rules registered via the init callback).
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeAction(name string, sym earleygo.Sym) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(sym), name, m), nil
	}
}
