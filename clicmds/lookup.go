package clicmds

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/finder"
	"gitlab.com/tablefinder/store"
	"gitlab.com/tablefinder/tablek"
)

// TableFlags describe a single table lookup
func TableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "table",
			Usage:    "table locator: an id, or css=, xpath=, jquery=, sizzle= prefixed expression",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "header",
			Usage: "look in the header cells",
		},
		&cli.BoolFlag{
			Name:  "footer",
			Usage: "look in the footer cells",
		},
		&cli.StringFlag{
			Name:  "row",
			Usage: "1-based row, -1 is the last row",
		},
		&cli.StringFlag{
			Name:  "col",
			Usage: "1-based column, -1 is the last column",
		},
		&cli.StringFlag{
			Name:  "content",
			Usage: "text the element must contain",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "log resolved candidates",
		},
	}
}

func setLogLevel(ctx *cli.Context) {
	if ctx.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func logContext() context.Context {
	return log.Logger.WithContext(context.Background())
}

func queryFromFlags(ctx *cli.Context) (finder.Query, error) {
	q := finder.Query{Locator: ctx.String("table"), Intent: tablek.Default, Content: tablek.NoContent}
	if ctx.IsSet("content") {
		q.Content = tablek.Contains(ctx.String("content"))
	}

	selected := 0
	if ctx.Bool("header") {
		q.Intent = tablek.Header
		selected++
	}
	if ctx.Bool("footer") {
		q.Intent = tablek.Footer
		selected++
	}
	if ctx.IsSet("row") {
		q.Intent, q.Index = tablek.Row, ctx.String("row")
		selected++
	}
	if ctx.IsSet("col") {
		q.Intent, q.Index = tablek.Col, ctx.String("col")
		selected++
	}

	if selected > 1 {
		return q, errors.New("only one of --header, --footer, --row or --col may be used")
	}
	if q.Intent.Indexed() && q.Index == "" {
		return q, errors.Errorf("--%s needs an index", q.Intent)
	}
	if selected == 0 && ctx.IsSet("content") {
		q.Intent = tablek.InTable
	}
	return q, nil
}

// openJournal returns the finder options recording into dataPath, nothing when it is empty
func openJournal(dataPath string) (*store.LookupStore, []finder.Option, error) {
	if dataPath == "" {
		return nil, nil, nil
	}

	journal := store.NewLookupStore(dataPath)
	if err := journal.Init(); err != nil {
		return nil, nil, err
	}
	return journal, []finder.Option{finder.WithRecorder(journal)}, nil
}

func closeJournal(journal *store.LookupStore) {
	if journal == nil {
		return
	}
	if err := journal.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close lookup journal")
	}
}

func runQuery(ctx context.Context, w io.Writer, tables *finder.TableElementFinder, q finder.Query) error {
	ele, err := tables.Query(ctx, q)
	if err != nil {
		return err
	}
	if ele == nil {
		return errors.Wrapf(tablek.ErrElementNotFound, "%s %s %s %s", q.Locator, q.Intent, q.Index, q.Content)
	}

	text, err := ele.Text()
	if err != nil {
		return err
	}
	markup, err := ele.HTML()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "text: %s\n", text)
	fmt.Fprintf(w, "html: %s\n", markup)
	return nil
}
