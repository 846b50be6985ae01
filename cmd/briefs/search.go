package main

import (
	"context"
	"flag"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/google/subcommands"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "find briefs mentioning a ticker or phrase" }
func (*searchCmd) Usage() string {
	return `briefs search <query>

  Matches tickers, summaries, insight bullets and watchlist reasons,
  ignoring case.
`
}

func (*searchCmd) SetFlags(*flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	query := strings.TrimSpace(strings.Join(f.Args(), " "))
	if query == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	store, err := loadStore(ctx)
	if err != nil {
		return fail(err)
	}
	matched := briefs.Filter(store.Briefs(), query)
	printMarkdown(present.ArchiveMarkdown(present.Archive(matched, ""), query))
	return subcommands.ExitSuccess
}
