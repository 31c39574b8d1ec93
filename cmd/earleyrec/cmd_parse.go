package main

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/earley"
	"github.com/jarro2783/earleygo/internal/dump"
	"github.com/jarro2783/earleygo/item"
	"github.com/jarro2783/earleygo/loader"
	"github.com/jarro2783/earleygo/scanner"
)

func runParse(cmd *cobra.Command, args []string) error {
	runID := newRunID()
	tracer().Infof("run %s: loading grammar %s", runID, args[0])

	g, _, err := loader.Load(args[0])
	if err != nil {
		return fail("load grammar: %w", err)
	}
	store := item.NewStore(g)
	e := earley.New(g, store)

	tokens := scanner.Tokenize(scanner.NewByteTokenizer(strings.NewReader(exprFlag)))

	start := time.Now()
	accept, err := e.Recognize(tokens)
	elapsed := time.Since(start)

	if timingFlag {
		pterm.Info.Printf("run %s: recognition took %s\n", runID, elapsed)
	}

	if err != nil {
		var perr *earleygo.ParseError
		if errors.As(err, &perr) {
			pterm.Error.Printf("rejected at position %d, expected one of: %s\n",
				perr.Position, dump.Expected(g, perr.Expected))
			if debugFlag {
				var buf bytes.Buffer
				dump.Chart(e, perr.Position, &buf)
				pterm.Println(buf.String())
			}
			return fail("parse error")
		}
		return err
	}
	if !accept {
		pterm.Error.Println("rejected")
		if debugFlag {
			var buf bytes.Buffer
			dump.Chart(e, -1, &buf)
			pterm.Println(buf.String())
		}
		return fail("parse error")
	}

	pterm.Info.Println("accepted")
	if debugFlag {
		var buf bytes.Buffer
		dump.Stats(e, &buf)
		pterm.Println(buf.String())
	}
	return nil
}
