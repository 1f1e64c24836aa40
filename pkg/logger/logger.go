package logger

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Options controls how Init builds the process logger.
type Options struct {
	Level   string
	Pretty  bool
	Service string
	Output  io.Writer
}

// Init replaces the package logger and points the standard library logger at it.
func Init(opts Options) {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level))); err == nil && opts.Level != "" {
		level = l
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	base = ctx.Logger()

	stdlog.SetFlags(0)
	stdlog.SetOutput(base)
}

// L exposes the underlying logger for callers that want structured fields.
func L() *zerolog.Logger {
	return &base
}

func Info(format string, v ...interface{}) {
	base.Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	base.Error().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	base.Debug().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	base.Warn().Msgf(format, v...)
}

// WithReport returns a child logger tagged with a report id.
func WithReport(reportID string) zerolog.Logger {
	return base.With().Str("report_id", reportID).Logger()
}

// LogNotificationError records a notification that could not be delivered.
func LogNotificationError(reportID, recipient string, err error) {
	base.Warn().
		Str("report_id", reportID).
		Str("recipient", recipient).
		Err(err).
		Msg(fmt.Sprintf("notification to %s failed", recipient))
}
