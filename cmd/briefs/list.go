package main

import (
	"context"
	"flag"

	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/google/subcommands"
)

type listCmd struct {
	limit int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list briefs, newest first" }
func (*listCmd) Usage() string {
	return `briefs list [-n <count>]

  Lists the briefs in the feed with their id, date and subject.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "Maximum number of briefs to list (0 for all)")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := loadStore(ctx)
	if err != nil {
		return fail(err)
	}
	list := store.Briefs()
	if c.limit > 0 && c.limit < len(list) {
		list = list[:c.limit]
	}
	printMarkdown(present.ArchiveMarkdown(present.Archive(list, ""), ""))
	return subcommands.ExitSuccess
}
