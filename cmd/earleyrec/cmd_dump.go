package main

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jarro2783/earleygo/earley"
	"github.com/jarro2783/earleygo/forest"
	"github.com/jarro2783/earleygo/internal/dump"
	"github.com/jarro2783/earleygo/item"
	"github.com/jarro2783/earleygo/loader"
	"github.com/jarro2783/earleygo/scanner"
)

func newDumpCmd() *cobra.Command {
	var forestPath string
	cmd := &cobra.Command{
		Use:   "dump <grammar-file>",
		Short: "Recognize --expression and print the chart, plus an optional GraphViz forest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loader.Load(args[0])
			if err != nil {
				return fail("load grammar: %w", err)
			}
			store := item.NewStore(g)
			e := earley.New(g, store)
			tokens := scanner.Tokenize(scanner.NewByteTokenizer(strings.NewReader(exprFlag)))

			accept, err := e.Recognize(tokens)
			dump.Chart(e, -1, os.Stdout)
			dump.Stats(e, os.Stdout)
			if err != nil || !accept {
				pterm.Error.Println("rejected; no forest to extract")
				return nil
			}
			if forestPath != "" {
				f := forest.Extract(e)
				out, err := os.Create(forestPath)
				if err != nil {
					return fail("create forest file: %w", err)
				}
				defer out.Close()
				forest.ToGraphViz(f, out)
				pterm.Info.Printf("wrote forest to %s\n", forestPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&forestPath, "forest", "", "write the parse forest as GraphViz DOT to this path")
	return cmd
}
