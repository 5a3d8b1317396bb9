package clicmds

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/store"
)

// HistoryFlags for reading the lookup journal
func HistoryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "datadir",
			Usage:    "lookup journal directory",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "max number of lookups to print",
			Value: 20,
		},
	}
}

// History prints recent lookups, newest first
func History(ctx *cli.Context) error {
	journal := store.NewLookupStore(ctx.String("datadir"))
	if err := journal.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init journal for viewing")
		return err
	}
	defer closeJournal(journal)

	records, err := journal.Recent(ctx.Int("limit"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no lookups recorded")
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "Had %d lookups\n", len(records))
	for _, rec := range records {
		index := ""
		if rec.Intent.Indexed() {
			index = "[" + rec.Index + "]"
		}
		content := "<any>"
		if rec.HasContent {
			content = fmt.Sprintf("%q", rec.Content)
		}

		fmt.Fprintf(w, "%s %s %s%s content=%s\n", rec.Time.Format(time.RFC3339), rec.Locator, rec.Intent, index, content)
		switch {
		case rec.Err != "":
			fmt.Fprintf(w, "  error: %s\n", rec.Err)
		case rec.Found:
			fmt.Fprintf(w, "  matched %s: %s\n", rec.Matched, rec.Text)
		default:
			fmt.Fprintf(w, "  not found in %s\n", strings.Join(rec.Candidates, ", "))
		}
	}
	return nil
}
