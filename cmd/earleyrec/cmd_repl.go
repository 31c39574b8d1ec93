package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jarro2783/earleygo/earley"
	"github.com/jarro2783/earleygo/item"
	"github.com/jarro2783/earleygo/loader"
	"github.com/jarro2783/earleygo/scanner"
)

// newReplCmd builds an interactive loop that creates one Engine per line of
// input over a shared item store, so a grammar can be iterated on without
// re-invoking the binary
// (grounded on gorgo's terex/terexlang/trepl REPL loop).
func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl <grammar-file>",
		Short: "Read expressions interactively and report accept/reject for each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loader.Load(args[0])
			if err != nil {
				return fail("load grammar: %w", err)
			}
			store := item.NewStore(g)

			rl, err := readline.New("earleyrec> ")
			if err != nil {
				return fail("start readline: %w", err)
			}
			defer rl.Close()

			pterm.Info.Println("Quit with <ctrl>D")
			for {
				line, err := rl.Readline()
				if err != nil {
					break
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				e := earley.New(g, store)
				tokens := scanner.Tokenize(scanner.NewByteTokenizer(strings.NewReader(line)))
				accept, err := e.Recognize(tokens)
				if err != nil {
					pterm.Error.Println(err.Error())
					continue
				}
				if accept {
					pterm.Info.Println("accepted")
				} else {
					pterm.Error.Println("rejected")
				}
			}
			pterm.Info.Println("Good bye!")
			return nil
		},
	}
}
