// Package logging configures the process logger.
//
// Log entries carry operation names, sizes and error kinds only. Passphrases,
// derived keys, plaintext and envelope contents are never logged.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger
func Setup(level, format string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)

	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	}

	if out != nil {
		logrus.SetOutput(out)
	}
	return nil
}

// For returns a logger tagged with the package that emits it
func For(pkg string) *logrus.Entry {
	return logrus.WithField("package", pkg)
}

// Operation creates standardized operation logging fields
func Operation(operation, status string, additional ...logrus.Fields) logrus.Fields {
	fields := logrus.Fields{
		"operation": operation,
		"status":    status,
	}

	for _, extra := range additional {
		for k, v := range extra {
			fields[k] = v
		}
	}

	return fields
}
