package commons

import (
	"os"

	"github.com/getsentry/raven-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var sentryEnabled bool

// SetupLogging configures the global logrus logger. verbose forces debug.
func SetupLogging(level string, format string, verbose bool) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	if verbose {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)

	switch format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return errors.Errorf("invalid log format %q", format)
	}
	return nil
}

// InitSentry enables error reporting when dsn is set.
func InitSentry(dsn string, release string) error {
	if dsn == "" {
		sentryEnabled = false
		return nil
	}

	if err := raven.SetDSN(dsn); err != nil {
		return errors.Wrap(err, "couldn't configure sentry")
	}
	raven.SetRelease(release)
	sentryEnabled = true
	log.Debug("[Main] Sentry error reporting enabled")
	return nil
}

func SentryEnabled() bool {
	return sentryEnabled
}

// ReportError sends err to sentry, if enabled.
func ReportError(err error, tags map[string]string) {
	if !sentryEnabled || err == nil {
		return
	}
	raven.CaptureError(err, tags)
}
