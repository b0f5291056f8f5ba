// Package app assembles the demo application: a root container carrying
// settings, logger, and a store provider, a cdn slice exporting a purge
// service, and an admin slice that imports it.
package app

import (
	"go.uber.org/zap"

	loomapp "github.com/loomstack/loom/framework/app"
	"github.com/loomstack/loom/framework/container"
	"github.com/loomstack/loom/framework/providers"
)

// New builds the demo application. Nothing is constructed yet: the
// returned application is fully declared but unprepared, so the caller
// chooses lazy (PrepareAll) or eager (BootAll) loading.
func New(opts ...loomapp.Option) (*loomapp.Application, error) {
	a := loomapp.New("main", opts...)
	root := a.Root()

	if err := providers.RegisterCore(root); err != nil {
		return nil, err
	}

	// The store opens at provider start and closes at shutdown.
	if _, err := root.RegisterProvider("db", container.Hooks{
		Start: func(s *container.Scope) error {
			return s.RegisterValue("db.conn", OpenStore())
		},
		Stop: func(s *container.Scope) error {
			store, err := container.ResolveAs[*Store](s.Container(), "db.conn")
			if err != nil {
				return err
			}
			return store.Close()
		},
	}); err != nil {
		return nil, err
	}
	root.Export("settings", "logger", "db.conn")

	if err := registerCDN(a); err != nil {
		return nil, err
	}
	if err := registerAdmin(a); err != nil {
		return nil, err
	}
	return a, nil
}

func registerCDN(a *loomapp.Application) error {
	cdn, err := a.RegisterSlice("cdn")
	if err != nil {
		return err
	}
	cdn.Import(container.ImportDecl{From: "main", Keys: []string{"logger", "db.conn"}})

	purge := container.NewBlueprint(func(deps map[string]any) (any, error) {
		return NewPurgeService(
			deps["log"].(*zap.Logger),
			deps["store"].(*Store),
		), nil
	},
		container.UseAs("log", "main.logger"),
		container.UseAs("store", "main.db.conn"),
	)
	if err := cdn.Register("purge", purge.Factory()); err != nil {
		return err
	}
	cdn.Export("purge")
	return nil
}

func registerAdmin(a *loomapp.Application) error {
	admin, err := a.RegisterSlice("admin")
	if err != nil {
		return err
	}
	// No key subset: pull in everything cdn exports.
	admin.Import(container.ImportDecl{From: "cdn"})

	dashboard := container.NewBlueprint(func(deps map[string]any) (any, error) {
		return NewDashboard(deps["purge"].(*PurgeService)), nil
	},
		container.Use("cdn.purge"),
	)
	return admin.Register("dashboard", dashboard.Factory())
}
