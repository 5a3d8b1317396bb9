package tablek

import "time"

// LeaserType defines how browsers are started
type LeaserType int8

const (
	// LocalLeaser starts chrome processes directly
	LocalLeaser LeaserType = iota
	// SocketLeaser asks a leaser daemon over a unix socket
	SocketLeaser
)

// Config for tablefinder
type Config struct {
	URL               string        `toml:"url"`
	DataPath          string        `toml:"data_path"`   // lookup journal, empty disables recording
	NumBrowsers       int           `toml:"num_browsers"`
	Leaser            LeaserType    `toml:"leaser"`
	LeaserSocket      string        `toml:"leaser_socket"`
	ChromePath        string        `toml:"chrome_path"` // overrides the per OS default
	ProfileDir        string        `toml:"profile_dir"`
	NavigationTimeout time.Duration `toml:"navigation_timeout"`
	StableAfter       time.Duration `toml:"stable_after"`
}

// DefaultConfig values used when neither the config file nor flags set them
func DefaultConfig() *Config {
	return &Config{
		DataPath:          "",
		NumBrowsers:       1,
		Leaser:            LocalLeaser,
		LeaserSocket:      "tablefinder.sock",
		NavigationTimeout: 45 * time.Second,
		StableAfter:       300 * time.Millisecond,
	}
}
