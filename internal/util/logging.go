package util

import (
	"io"
	"strings"

	logrus "github.com/sirupsen/logrus"
)

func init() {
	// Default logging to discard until explicitly enabled via --log-level
	logrus.SetOutput(io.Discard)
}

// ConfigureLogging routes logrus to w at the named level. "off" (or "none")
// discards everything.
func ConfigureLogging(level string, w io.Writer) {
	level = strings.ToLower(level)
	if level == "off" || level == "none" || w == nil {
		logrus.SetOutput(io.Discard)
		return
	}

	logrus.SetOutput(w)
	switch level {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.DebugLevel)
	}
}
