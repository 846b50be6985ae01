package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/google/subcommands"
)

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display a brief" }
func (*showCmd) Usage() string {
	return `briefs show [<id>]

  Displays one brief: summary, insights with the conviction breakdown,
  watchlist and sources. Without an id the latest brief is shown.
`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	store, err := loadStore(ctx)
	if err != nil {
		return fail(err)
	}

	latest, ok := store.Latest()
	if !ok {
		return fail(fmt.Errorf("the feed has no briefs"))
	}
	b := latest
	if f.NArg() == 1 {
		if b, err = store.Get(f.Arg(0)); err != nil {
			return fail(fmt.Errorf("%s: %w", f.Arg(0), err))
		}
	}

	printMarkdown(present.BriefMarkdown(present.NewBriefView(b, b.ID == latest.ID, false)))
	return subcommands.ExitSuccess
}
