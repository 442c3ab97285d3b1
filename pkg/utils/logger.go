package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const logTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

var Logger *logrus.Logger

// InitLogger configures the process-wide logger from the logging config
// values. Output is "stdout", "stderr", or "file" with a path.
func InitLogger(level, format, output, file string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	out, err := logOutput(output, file)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetLevel(logLevel)
	logger.SetFormatter(logFormatter(format))
	logger.SetOutput(out)

	Logger = logger
	return nil
}

func logFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{TimestampFormat: logTimestampFormat}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: logTimestampFormat,
	}
}

func logOutput(output, file string) (io.Writer, error) {
	switch {
	case output == "file" && file != "":
		return os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	case output == "stderr":
		return os.Stderr, nil
	default:
		return os.Stdout, nil
	}
}

// GetLogger returns the global logger, initializing defaults on first use
func GetLogger() *logrus.Logger {
	if Logger == nil {
		InitLogger("info", "json", "stdout", "")
	}
	return Logger
}

// ComponentLogger returns a logger entry tagged with the component name
func ComponentLogger(name string) *logrus.Entry {
	return GetLogger().WithField("component", name)
}
