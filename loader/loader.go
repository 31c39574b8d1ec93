/*
Package loader implements the external grammar-surface-syntax boundary of
spec.md §6: "a mapping from nonterminal name to a list of alternatives,
each alternative an ordered sequence whose elements are either (a) a
nonterminal or terminal name or (b) a literal byte. The loader resolves
names to ids and reports undefined references."

Grammar files are TOML (github.com/BurntSushi/toml), the format
dekarrin-tunaq uses for its own world-data and manifest files (see
internal/tqw/tqw.go, this package's grounding source for the
decode-into-a-plain-struct-then-validate idiom).

File shape:

	start = "Expr"

	[terminals]
	num = 256
	plus = 257

	[rules]
	Expr = [["Expr", "plus", "Term"], ["Term"]]
	Term = [["num"], ["(", "Expr", ")"]]

A rule token that names neither a declared terminal nor a rule's own LHS,
and is exactly one ASCII character long, is resolved as a literal-byte
terminal (spec.md §6's [1,127] convention — e.g. the "(" above). Anything
else is an undeclared reference and is rejected. Every [terminals] entry
carries an explicit id of at least FirstNamedSymbol. Nonterminal ids are
auto-assigned, one per [rules] key in sorted key order, counting up from
FirstNamedSymbol and skipping ids already taken by a terminal.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package loader

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/schuko/tracing"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/grammar"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.loader")
}

// file is the TOML decoding target; a thin, unvalidated mirror of the
// surface syntax, resolved into a grammar.Grammar by build.
type file struct {
	Start     string              `toml:"start"`
	Terminals map[string]int      `toml:"terminals"`
	Rules     map[string][][]string `toml:"rules"`
}

// Symbols is the name-to-id table a grammar's names were resolved
// through. Returned alongside the grammar so a scanner (scanner/lexmach in
// particular) can translate its own terminal names through the same ids.
type Symbols map[string]earleygo.Sym

// Load reads and resolves a grammar file from path.
func Load(path string) (*grammar.Grammar, Symbols, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return LoadBytes(data)
}

// LoadBytes resolves a grammar file already in memory, as TOML source.
func LoadBytes(data []byte) (*grammar.Grammar, Symbols, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, nil, &earleygo.GrammarInvalidError{Reason: "malformed grammar TOML: " + err.Error()}
	}
	return build(&f)
}

func build(f *file) (*grammar.Grammar, Symbols, error) {
	if f.Start == "" {
		return nil, nil, &earleygo.GrammarInvalidError{Reason: "grammar file declares no start symbol"}
	}
	if len(f.Rules) == 0 {
		return nil, nil, &earleygo.GrammarInvalidError{Reason: "grammar file declares no rules"}
	}

	syms := make(Symbols)
	used := make(map[earleygo.Sym]bool)
	next := earleygo.FirstNamedSymbol

	termNames := sortedKeys(f.Terminals)
	for _, name := range termNames {
		id := earleygo.Sym(f.Terminals[name])
		if id < earleygo.FirstNamedSymbol {
			return nil, nil, &earleygo.GrammarInvalidError{
				Reason: fmt.Sprintf("terminal %q: id %d is below FirstNamedSymbol (%d)", name, id, earleygo.FirstNamedSymbol),
			}
		}
		if used[id] {
			return nil, nil, &earleygo.GrammarInvalidError{Reason: fmt.Sprintf("terminal %q: id %d already assigned", name, id)}
		}
		used[id] = true
		syms[name] = id
	}

	lhsNames := sortedKeys(f.Rules)
	for _, name := range lhsNames {
		if _, ok := syms[name]; ok {
			return nil, nil, &earleygo.GrammarInvalidError{
				Reason: fmt.Sprintf("%q is declared as both a terminal and a nonterminal", name),
			}
		}
		for used[next] {
			next++
		}
		syms[name] = next
		used[next] = true
		next++
	}

	resolve := func(tok string) (earleygo.Sym, error) {
		if sym, ok := syms[tok]; ok {
			return sym, nil
		}
		if r := []rune(tok); len(r) == 1 && r[0] < 128 {
			return earleygo.Sym(r[0]), nil
		}
		return 0, &earleygo.GrammarInvalidError{Reason: fmt.Sprintf("undefined symbol %q", tok)}
	}

	startSym, ok := syms[f.Start]
	if !ok {
		return nil, nil, &earleygo.GrammarInvalidError{Reason: fmt.Sprintf("start symbol %q has no rules", f.Start)}
	}

	b := grammar.NewBuilder(startSym)
	for name, sym := range syms {
		b.Name(sym, name)
	}
	for _, lhs := range lhsNames {
		lhsSym := syms[lhs]
		for altNo, alt := range f.Rules[lhs] {
			rhs := make([]earleygo.Sym, 0, len(alt))
			for _, tok := range alt {
				sym, err := resolve(tok)
				if err != nil {
					return nil, nil, err
				}
				rhs = append(rhs, sym)
			}
			tracer().Debugf("rule %s.%d: %v", lhs, altNo, alt)
			b.AddRule(lhsSym, rhs...)
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return g, syms, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
