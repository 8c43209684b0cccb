package toast

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger that receives non-fatal warnings such as
// dropped actions or unplayable audio files. A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func warn(msg string, args ...any) {
	l := logger.Load()
	if l == nil {
		l = slog.Default()
	}
	l.Warn(msg, args...)
}
