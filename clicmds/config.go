package clicmds

import (
	"io/ioutil"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/tablek"
)

// loadConfig reads --config when given, flags fill in whatever the file left empty
func loadConfig(ctx *cli.Context) (*tablek.Config, error) {
	cfg := tablek.DefaultConfig()

	if ctx.String("config") != "" {
		data, err := ioutil.ReadFile(ctx.String("config"))
		if err != nil {
			return nil, err
		}

		if err := toml.NewDecoder(strings.NewReader(string(data))).Decode(cfg); err != nil {
			return nil, err
		}
	}

	if (cfg.URL == "" || ctx.IsSet("url")) && ctx.String("url") != "" {
		cfg.URL = ctx.String("url")
	}
	if (cfg.DataPath == "" || ctx.IsSet("datadir")) && ctx.String("datadir") != "" {
		cfg.DataPath = ctx.String("datadir")
	}
	if ctx.IsSet("numbrowsers") {
		cfg.NumBrowsers = ctx.Int("numbrowsers")
	}
	if ctx.IsSet("chrome") {
		cfg.ChromePath = ctx.String("chrome")
	}
	if ctx.IsSet("leaser") {
		cfg.Leaser = tablek.SocketLeaser
		cfg.LeaserSocket = ctx.String("leaser")
	}
	return cfg, nil
}
