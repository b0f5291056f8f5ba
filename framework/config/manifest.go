package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/loomstack/loom/framework/app"
	"github.com/loomstack/loom/framework/container"
)

// ── Application manifest ──────────────────────────────────────────────────────
//
// A manifest declares the application's container topology: which slices
// exist, what each exports, and what each imports from whom. It declares
// structure only — component factories and provider hooks stay in code.
//
//	app:
//	  name: main
//	slices:
//	  - name: cdn
//	    exports: [purge]
//	  - name: admin
//	    imports:
//	      - from: cdn
//	        keys: [purge]

// Manifest is the root of an application manifest file.
type Manifest struct {
	App    AppManifest     `yaml:"app" validate:"required"`
	Slices []SliceManifest `yaml:"slices" validate:"dive"`
}

// AppManifest names the root container and optionally declares its own
// exports and imports (the root can both feed and consume slices).
type AppManifest struct {
	Name      string           `yaml:"name" validate:"required"`
	ExportAll bool             `yaml:"export_all"`
	Exports   []string         `yaml:"exports"`
	Imports   []ImportManifest `yaml:"imports" validate:"dive"`
}

// SliceManifest declares one slice container.
type SliceManifest struct {
	Name      string           `yaml:"name" validate:"required"`
	ExportAll bool             `yaml:"export_all"`
	Exports   []string         `yaml:"exports"`
	Imports   []ImportManifest `yaml:"imports" validate:"dive"`
}

// ImportManifest declares one import statement of a slice.
type ImportManifest struct {
	From string   `yaml:"from" validate:"required"`
	Keys []string `yaml:"keys"`
	As   string   `yaml:"as"`
}

var validate = validator.New()

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &container.ConfigurationError{Reason: fmt.Sprintf("manifest: %v", err)}
	}
	if err := validate.Struct(&m); err != nil {
		return nil, &container.ConfigurationError{Reason: fmt.Sprintf("manifest: %v", err)}
	}
	return &m, nil
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply creates the manifest's slices on a and installs their export and
// import declarations. Wiring itself happens when a prepares or boots.
func (m *Manifest) Apply(a *app.Application) error {
	root := a.Root()
	if m.App.ExportAll {
		root.ExportAll()
	}
	if len(m.App.Exports) > 0 {
		root.Export(m.App.Exports...)
	}
	for _, im := range m.App.Imports {
		root.Import(container.ImportDecl{From: im.From, Keys: im.Keys, As: im.As})
	}
	for _, sm := range m.Slices {
		slice, err := a.RegisterSlice(sm.Name)
		if err != nil {
			return err
		}
		if sm.ExportAll {
			slice.ExportAll()
		}
		if len(sm.Exports) > 0 {
			slice.Export(sm.Exports...)
		}
		for _, im := range sm.Imports {
			slice.Import(container.ImportDecl{From: im.From, Keys: im.Keys, As: im.As})
		}
	}
	return nil
}

// Build creates an application from the manifest.
func Build(m *Manifest, opts ...app.Option) (*app.Application, error) {
	a := app.New(m.App.Name, opts...)
	if err := m.Apply(a); err != nil {
		return nil, err
	}
	return a, nil
}
