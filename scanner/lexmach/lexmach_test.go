package lexmach

import (
	"testing"

	"github.com/timtadh/lexmachine"

	"github.com/jarro2783/earleygo"
)

const (
	symNum earleygo.Sym = 300 + iota
	symID
)

var testSymbols = map[string]earleygo.Sym{
	"NUM": symNum,
	"ID":  symID,
	"+":   earleygo.Sym('+'),
	"*":   earleygo.Sym('*'),
}

func testInit(lexer *lexmachine.Lexer) {
	lexer.Add([]byte(`( |\t|\n|\r)+`), Skip)
	lexer.Add([]byte(`[0-9]+`), makeAction("NUM", symNum))
	lexer.Add([]byte(`([a-z]|[A-Z])+`), makeAction("ID", symID))
}

func TestAdapter_ScansLiteralsAndNamedTerminals(t *testing.T) {
	a, err := New(testInit, []string{"+", "*"}, nil, testSymbols)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sc, err := a.Scanner("12 + ab * 3")
	if err != nil {
		t.Fatalf("Scanner: %v", err)
	}

	var syms []earleygo.Sym
	var lexemes []string
	for {
		tok := sc.NextToken()
		if tok.Sym() == earleygo.EndOfInput {
			break
		}
		syms = append(syms, tok.Sym())
		lexemes = append(lexemes, tok.Lexeme())
	}

	wantSyms := []earleygo.Sym{symNum, earleygo.Sym('+'), symID, earleygo.Sym('*'), symNum}
	if len(syms) != len(wantSyms) {
		t.Fatalf("token count = %d, want %d (lexemes: %v)", len(syms), len(wantSyms), lexemes)
	}
	for i, want := range wantSyms {
		if syms[i] != want {
			t.Errorf("token %d: sym = %v, want %v (lexeme %q)", i, syms[i], want, lexemes[i])
		}
	}
	wantLexemes := []string{"12", "+", "ab", "*", "3"}
	for i, want := range wantLexemes {
		if lexemes[i] != want {
			t.Errorf("token %d: lexeme = %q, want %q", i, lexemes[i], want)
		}
	}
}

func TestAdapter_SetErrorHandler_NilRestoresDefault(t *testing.T) {
	a, err := New(testInit, nil, nil, testSymbols)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sc, err := a.Scanner("7")
	if err != nil {
		t.Fatalf("Scanner: %v", err)
	}
	called := false
	sc.SetErrorHandler(func(error) { called = true })
	sc.SetErrorHandler(nil)
	_ = sc.NextToken()
	if called {
		t.Errorf("nil handler must restore the default, not the previously set one")
	}
}
