package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry so service code can chain contextual fields.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger for the given service name.
// Level and format fall back to info/text when unparseable.
func NewLogger(service, level, format string) *Logger {
	log := logrus.New()

	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parsedLevel = logrus.InfoLevel
	}
	log.SetLevel(parsedLevel)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		})
	}

	log.SetOutput(os.Stdout)

	return &Logger{
		entry: log.WithField("service", service),
	}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return &Logger{entry: logrus.NewEntry(log)}
}

func (l *Logger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *Logger) Warn(msg string) {
	l.entry.Warning(msg)
}

func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

func (l *Logger) Fatal(msg string) {
	l.entry.Fatal(msg)
}

// WithError attaches an error to the logging context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// WithField attaches a single contextual field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields attaches multiple contextual fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}
