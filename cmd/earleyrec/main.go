/*
Command earleyrec is the CLI driver of spec.md §6: it loads a grammar file,
recognizes an expression against it, and reports accept/reject with exit
code 0/non-zero.

Grounded on dhamidi-sai's cmd/sai (the cobra root-command-plus-subcommands
layout, one file per subcommand) and on gorgo's terex/terexlang/trepl
(pterm-styled banners, a readline-based REPL loop), restyled around this
module's loader/scanner/earley/forest/internal-dump packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.cli")
}

var (
	debugFlag   bool
	timingFlag  bool
	exprFlag    string
)

func main() {
	initDisplay()
	root := &cobra.Command{
		Use:   "earleyrec <grammar-file>",
		Short: "Recognize an expression against a TOML grammar file with an Earley parser",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "dump the chart on rejection")
	root.PersistentFlags().BoolVar(&timingFlag, "timing", false, "report recognition wall-clock time")
	root.PersistentFlags().StringVarP(&exprFlag, "expression", "e", "", "expression to parse")
	root.AddCommand(newDumpCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{Text: "  >>", Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)}
	pterm.Error.Prefix = pterm.Prefix{Text: " ERR", Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack)}
}

func newRunID() string {
	return uuid.New().String()
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
