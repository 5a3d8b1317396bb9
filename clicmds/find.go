package clicmds

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/finder"
	"gitlab.com/tablefinder/finder/browser"
	"gitlab.com/tablefinder/tablek"
)

// FindFlags for looking up tables in a live page
func FindFlags() []cli.Flag {
	return append(TableFlags(),
		&cli.StringFlag{
			Name:  "url",
			Usage: "page to load",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "config to use",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "lookup journal directory, empty disables recording",
		},
		&cli.IntFlag{
			Name:  "numbrowsers",
			Usage: "max number of browsers to keep ready",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "chrome binary, defaults to the usual location for this OS",
		},
		&cli.StringFlag{
			Name:  "leaser",
			Usage: "unix socket of a browser leaser daemon, browsers are started locally when unset",
		},
	)
}

func newLeaser(cfg *tablek.Config) browser.LeaserService {
	if cfg.Leaser == tablek.SocketLeaser {
		return browser.NewSocketLeaser(cfg.LeaserSocket)
	}
	return browser.NewLocalLeaser(cfg.ChromePath, cfg.ProfileDir)
}

// Find loads --url in chrome and runs a lookup against the live DOM
func Find(ctx *cli.Context) error {
	setLogLevel(ctx)
	q, err := queryFromFlags(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.URL == "" {
		return errors.New("--url or a config url is required")
	}

	journal, opts, err := openJournal(cfg.DataPath)
	if err != nil {
		return err
	}
	defer closeJournal(journal)

	findCtx, cancel := context.WithCancel(logContext())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			log.Info().Msg("Ctrl-C Pressed, shutting down")
			cancel()
		case <-findCtx.Done():
		}
	}()

	pool := browser.NewGCDBrowserPool(cfg.NumBrowsers, newLeaser(cfg),
		browser.WithNavigationTimeout(cfg.NavigationTimeout),
		browser.WithStableAfter(cfg.StableAfter),
	)
	log.Info().Str("url", cfg.URL).Msg("Starting browser")
	if err := pool.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init browser pool")
		return err
	}
	defer func() {
		if err := pool.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close browser pool")
		}
	}()

	tab, err := pool.OpenTab(findCtx)
	if err != nil {
		return err
	}
	defer pool.CloseTab(context.Background(), tab)

	if err := tab.Navigate(findCtx, cfg.URL); err != nil {
		return errors.Wrapf(err, "loading %s", cfg.URL)
	}

	return runQuery(findCtx, ctx.App.Writer, finder.New(tab, opts...), q)
}
