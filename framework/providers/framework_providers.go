// Package providers holds the stock providers every loom application gets:
// settings and a structured logger, registered under their well-known keys.
package providers

import (
	"go.uber.org/zap"

	"github.com/loomstack/loom/framework/config"
	"github.com/loomstack/loom/framework/container"
)

// ── Settings provider ─────────────────────────────────────────────────────────

// Settings returns hooks for a provider that registers the env-backed
// application settings.
//
// Registered keys:
//   - "settings" → *config.Settings
func Settings(envFiles ...string) container.Hooks {
	return container.Hooks{
		Start: func(s *container.Scope) error {
			return s.Register("settings", func(*container.Container) (any, error) {
				return config.Load(envFiles...), nil
			})
		},
	}
}

// ── Logger provider ───────────────────────────────────────────────────────────

// Logger returns hooks for a provider that registers a zap logger,
// production- or development-configured per the settings environment.
//
// Registered keys:
//   - "logger" → *zap.Logger
func Logger() container.Hooks {
	return container.Hooks{
		Start: func(s *container.Scope) error {
			if err := s.Require("settings"); err != nil {
				return err
			}
			return s.Register("logger", func(c *container.Container) (any, error) {
				settings, err := container.ResolveAs[*config.Settings](c, "settings")
				if err != nil {
					return nil, err
				}
				if settings.IsProduction() {
					return zap.NewProduction()
				}
				return zap.NewDevelopment()
			})
		},
		Stop: func(s *container.Scope) error {
			c := s.Container()
			if !c.Resolved("logger") {
				return nil
			}
			log, err := container.ResolveAs[*zap.Logger](c, "logger")
			if err != nil {
				return err
			}
			// Sync flushes buffered entries; stderr may reject it, which
			// is fine on shutdown.
			_ = log.Sync()
			return nil
		},
	}
}

// RegisterCore declares the settings and logger providers on c under
// their conventional names.
func RegisterCore(c *container.Container, envFiles ...string) error {
	if _, err := c.RegisterProvider("settings", Settings(envFiles...)); err != nil {
		return err
	}
	if _, err := c.RegisterProvider("logger", Logger()); err != nil {
		return err
	}
	return nil
}
