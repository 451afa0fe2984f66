package build

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btclog"
)

// LogWriter writes all log output to stdout. It exists so a host process
// can swap the destination of every sublogger at once by providing its own
// backend through the genSubLogger hook instead.
type LogWriter struct{}

// Write implements io.Writer.
func (w *LogWriter) Write(b []byte) (int, error) {
	return os.Stdout.Write(b)
}

// NewSubLogger constructs a new subsystem logger. If no generator is
// provided, logging for the subsystem stays disabled until the host wires
// its own backend; packages therefore log nothing by default.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	if genSubLogger != nil {
		return genSubLogger(subsystem)
	}

	return btclog.Disabled
}

// SubLoggers is a type that holds a map of subsystem loggers keyed by their
// subsystem name.
type SubLoggers map[string]btclog.Logger

// ParseAndSetLevel parses the given log level string and applies it to all
// of the passed subsystem loggers. An error is returned if the level is
// not a valid btclog level.
func ParseAndSetLevel(level string, loggers SubLoggers) error {
	parsed, ok := btclog.LevelFromString(strings.ToLower(level))
	if !ok {
		return fmt.Errorf("invalid log level: %v", level)
	}

	for _, logger := range loggers {
		logger.SetLevel(parsed)
	}

	return nil
}
