package ecopath

import (
	"io"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures the loggers of the programs.
type LogConfig struct {
	File       string // stdout when empty
	Debug      bool
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger returns a logfmt logger and the closer of its output. Records
// at the debug level are dropped unless Debug is set.
func NewLogger(conf LogConfig) (kitlog.Logger, io.Closer) {
	var w io.WriteCloser = nopCloser{os.Stdout}
	if conf.File != "" {
		w = &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
		}
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	if !conf.Debug {
		logger = dropDebug(logger)
	}
	return logger, w
}

func dropDebug(next kitlog.Logger) kitlog.Logger {
	return kitlog.LoggerFunc(func(keyvals ...interface{}) error {
		for i := 0; i+1 < len(keyvals); i += 2 {
			if keyvals[i] == "level" && keyvals[i+1] == "debug" {
				return nil
			}
		}
		return next.Log(keyvals...)
	})
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
