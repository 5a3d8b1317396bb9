package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/clicmds"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := cli.NewApp()
	app.Name = "tablefinder"
	app.Version = "0.1"
	app.Usage = "Find cells, rows and columns of html tables"
	app.Commands = []*cli.Command{
		{
			Name:    "resolve",
			Aliases: []string{"r"},
			Usage:   "print the selectors a lookup tries",
			Action:  clicmds.Resolve,
			Flags:   clicmds.ResolveFlags(),
		},
		{
			Name:    "parse",
			Aliases: []string{"p"},
			Usage:   "look up a table in a saved html file",
			Action:  clicmds.Parse,
			Flags:   clicmds.ParseFlags(),
		},
		{
			Name:    "find",
			Aliases: []string{"f"},
			Usage:   "look up a table in a page loaded in chrome",
			Action:  clicmds.Find,
			Flags:   clicmds.FindFlags(),
		},
		{
			Name:    "history",
			Aliases: []string{"h"},
			Usage:   "print recent lookups from the journal",
			Action:  clicmds.History,
			Flags:   clicmds.HistoryFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("tablefinder failed")
	}
}
