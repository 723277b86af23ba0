// Package cli holds the operator commands of nightstay-admin.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nightstay/backend-go/internal/config"
	"github.com/nightstay/backend-go/internal/database/service"
)

// Context is bound into every command's Run method
type Context struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer

	// OpenAuth connects to the database on first use. Commands that only need
	// migrations never call it.
	OpenAuth func() (service.AuthService, error)
}

// NewLogger returns an slog logger printing through charmbracelet/log
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "nightstay-admin",
	})
	return slog.New(handler)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}
