package clicmds

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/finder"
)

// ResolveFlags for printing candidates
func ResolveFlags() []cli.Flag {
	return TableFlags()
}

// Resolve prints the selectors a lookup would try, one per line in lookup order
func Resolve(ctx *cli.Context) error {
	setLogLevel(ctx)
	q, err := queryFromFlags(ctx)
	if err != nil {
		return err
	}

	for _, candidate := range finder.New(nil).QueryCandidates(q) {
		fmt.Fprintln(ctx.App.Writer, candidate)
	}
	return nil
}
