package toaster

import (
	"log/slog"
	"runtime"

	"github.com/ezchuang/gotoast/internal/backend/beeep"
	"github.com/ezchuang/gotoast/internal/backend/freedesktop"
	"github.com/ezchuang/gotoast/internal/backend/powershell"
	"github.com/ezchuang/gotoast/platform"
)

// DefaultPlatform picks the backend for the running OS: the WinRT toast API
// on Windows, the freedesktop server on Linux, beeep elsewhere or when the
// session bus is unavailable.
func DefaultPlatform(logger *slog.Logger) platform.Platform {
	switch runtime.GOOS {
	case "windows":
		return powershell.New(powershell.WithLogger(logger))
	case "linux", "freebsd", "openbsd", "netbsd":
		p, err := freedesktop.New(freedesktop.WithLogger(logger))
		if err == nil {
			return p
		}
		logger.Warn("session bus unavailable, falling back to beeep", "error", err)
	}
	return beeep.New(beeep.WithLogger(logger))
}
