package log

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/peekpark/peekpark/domain"
	"github.com/rs/zerolog"
)

// New builds the process logger. Anything other than production logs at debug level.
func New(environment string) zerolog.Logger {
	return NewWithWriter(os.Stdout, environment)
}

// NewWithWriter builds a console logger writing to out
func NewWithWriter(out io.Writer, environment string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	if environment != "production" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return logger
}

// AuditLogger writes audit events as structured log lines
type AuditLogger struct {
	log zerolog.Logger
}

var _ domain.AuditLogger = (*AuditLogger)(nil)

func NewAuditLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{log: logger.With().Str("component", "audit").Logger()}
}

func (a *AuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	e := a.log.Info()
	if !event.Success {
		e = a.log.Warn()
	}
	e = e.Str("event_type", string(event.EventType)).
		Bool("success", event.Success).
		Time("at", event.Timestamp)
	if event.UserID != "" {
		e = e.Str("user_id", event.UserID)
	}
	if event.Phone != "" {
		e = e.Str("phone", MaskPhone(event.Phone))
	}
	if event.DeviceID != "" {
		e = e.Str("device_id", event.DeviceID)
	}
	if event.SessionID != "" {
		e = e.Str("session_id", event.SessionID)
	}
	if event.ErrorMsg != "" {
		e = e.Str("error", event.ErrorMsg)
	}
	if len(event.Metadata) > 0 {
		e = e.Interface("metadata", event.Metadata)
	}
	e.Msg("audit")
	return nil
}

// MaskPhone keeps the country code and the last three digits
func MaskPhone(phone string) string {
	if len(phone) <= 7 {
		return "***"
	}
	masked := []byte(phone)
	for i := 4; i < len(masked)-3; i++ {
		masked[i] = '*'
	}
	return string(masked)
}
