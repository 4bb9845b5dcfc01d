package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates a logrus logger. Development builds get colored text output,
// everything else gets JSON.
func New(env, level string) *logrus.Logger {
	return NewWithOutput(os.Stdout, env, level)
}

func NewWithOutput(out io.Writer, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if env == "dev" || env == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
