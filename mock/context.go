package mock

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// Context carrying a debug console logger so lookups are visible in test output
func Context(ctx context.Context) context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
