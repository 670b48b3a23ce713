package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Output formats accepted by New
const (
	FormatColor = "color"
	FormatJSON  = "json"
)

// New creates the process logger. verbose forces debug level; otherwise
// LOG_LEVEL is honored and defaults to info.
func New(out io.Writer, format string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if format == FormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(ForWriter(out))
	}

	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		logLevel := os.Getenv("LOG_LEVEL")
		if level, err := logrus.ParseLevel(logLevel); err == nil {
			log.SetLevel(level)
		} else {
			log.SetLevel(logrus.InfoLevel)
			if logLevel != "" {
				log.WithFields(logrus.Fields{
					"attempted_level": logLevel,
					"default_level":   "INFO",
				}).Warn("Invalid log level specified, defaulting to INFO")
			}
		}
	}
	return log
}
