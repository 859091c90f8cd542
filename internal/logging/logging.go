// Package logging configures the global logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params selects logger output and format.
type Params struct {
	Level string
	JSON  bool
	// File is the rotating log file. Empty writes to Fallback only.
	File string
	// Stderr tees file output to stderr.
	Stderr bool
	// Fallback receives logs when File is empty. Nil means stderr.
	Fallback io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the global logger and returns a closer for the log file.
func Setup(params Params) io.Closer {
	if params.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.Level))

	if params.File == "" {
		out := params.Fallback
		if out == nil {
			out = os.Stderr
		}
		logrus.SetOutput(out)
		return nopCloser{}
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:  params.File,
		MaxSize:   50,    // megabytes
		LocalTime: false, // UTC backup timestamps
		Compress:  true,
	}
	if params.Stderr {
		logrus.SetOutput(NewCombinedWriter(os.Stderr, lumberJackLogger))
	} else {
		logrus.SetOutput(lumberJackLogger)
	}
	return lumberJackLogger
}

// GetLevel parses a level name. Unknown names map to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
