package main

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// configureLogging points the global logger at a JSON file when logFile is
// set, otherwise at console, which may be io.Discard. The returned func
// closes the file.
func configureLogging(level, logFile string, console io.Writer) (func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
		return func() { _ = f.Close() }, nil
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	return func() {}, nil
}
