package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	"github.com/google/subcommands"
)

type quoteCmd struct {
	window string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "look up a ticker's price" }
func (*quoteCmd) Usage() string {
	return `briefs quote [-w 1D|1W|1M|3M|1Y] <symbol>

  Fetches the current price and the change over the window.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "w", "1D", "Chart window")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	window, err := quotes.ParseWindow(c.window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	client, err := newQuoteClient()
	if err != nil {
		return fail(err)
	}

	res, err := client.Lookup(ctx, f.Arg(0), window)
	if err != nil {
		fmt.Fprintln(os.Stderr, quotes.Hint)
		return fail(err)
	}
	printMarkdown(present.QuoteMarkdown(present.NewQuoteView(res)))
	return subcommands.ExitSuccess
}
