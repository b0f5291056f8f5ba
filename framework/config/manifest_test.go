package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomstack/loom/framework/config"
	"github.com/loomstack/loom/framework/container"
)

const demoManifest = `
app:
  name: main
  exports: [logger]
slices:
  - name: cdn
    exports: [purge]
    imports:
      - from: main
        keys: [logger]
  - name: admin
    imports:
      - from: cdn
        as: edge
`

func TestManifest_ParseAndBuild(t *testing.T) {
	m, err := config.Parse([]byte(demoManifest))
	require.NoError(t, err)
	assert.Equal(t, "main", m.App.Name)
	require.Len(t, m.Slices, 2)
	assert.Equal(t, []string{"purge"}, m.Slices[0].Exports)
	assert.Equal(t, "edge", m.Slices[1].Imports[0].As)

	a, err := config.Build(m)
	require.NoError(t, err)

	require.NoError(t, a.Root().RegisterValue("logger", "a logger"))
	cdn, ok := a.Slice("cdn")
	require.True(t, ok)
	require.NoError(t, cdn.RegisterValue("purge", "purge service"))

	require.NoError(t, a.PrepareAll())

	admin, ok := a.Slice("admin")
	require.True(t, ok)
	v, err := admin.Resolve("edge.purge")
	require.NoError(t, err)
	assert.Equal(t, "purge service", v)

	viaCDN, err := cdn.Resolve("main.logger")
	require.NoError(t, err)
	assert.Equal(t, "a logger", viaCDN)
}

func TestManifest_MissingSliceNameRejected(t *testing.T) {
	_, err := config.Parse([]byte(`
app:
  name: main
slices:
  - exports: [x]
`))
	var cfg *container.ConfigurationError
	require.ErrorAs(t, err, &cfg)
}

func TestManifest_MissingAppNameRejected(t *testing.T) {
	_, err := config.Parse([]byte(`slices: []`))
	var cfg *container.ConfigurationError
	require.ErrorAs(t, err, &cfg)
}

func TestManifest_MalformedYAMLRejected(t *testing.T) {
	_, err := config.Parse([]byte("app: [unclosed"))
	var cfg *container.ConfigurationError
	require.ErrorAs(t, err, &cfg)
}

func TestManifest_ImportWithoutFromRejected(t *testing.T) {
	_, err := config.Parse([]byte(`
app:
  name: main
slices:
  - name: admin
    imports:
      - keys: [x]
`))
	var cfg *container.ConfigurationError
	require.ErrorAs(t, err, &cfg)
}

func TestManifest_DuplicateSliceSurfacesOnApply(t *testing.T) {
	m, err := config.Parse([]byte(`
app:
  name: main
slices:
  - name: cdn
  - name: cdn
`))
	require.NoError(t, err)

	_, err = config.Build(m)
	var cfg *container.ConfigurationError
	require.ErrorAs(t, err, &cfg)
}
