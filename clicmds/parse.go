package clicmds

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/finder"
	"gitlab.com/tablefinder/finder/static"
)

// ParseFlags for looking up tables in a saved page
func ParseFlags() []cli.Flag {
	return append(TableFlags(),
		&cli.StringFlag{
			Name:     "file",
			Usage:    "html file to search",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "lookup journal directory, empty disables recording",
		},
	)
}

// Parse runs a lookup against an html file
func Parse(ctx *cli.Context) error {
	setLogLevel(ctx)
	q, err := queryFromFlags(ctx)
	if err != nil {
		return err
	}

	doc, err := static.LoadFile(ctx.String("file"))
	if err != nil {
		return err
	}

	journal, opts, err := openJournal(ctx.String("datadir"))
	if err != nil {
		return err
	}
	defer closeJournal(journal)

	logCtx := logContext()
	log.Ctx(logCtx).Debug().Str("file", ctx.String("file")).Msg("parsed document")
	return runQuery(logCtx, ctx.App.Writer, finder.New(doc, opts...), q)
}
