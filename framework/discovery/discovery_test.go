package discovery_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomstack/loom/framework/container"
	"github.com/loomstack/loom/framework/discovery"
)

func valueEntry(key, value string) discovery.Entry {
	return discovery.Entry{
		Key: key,
		Factory: func(*container.Container) (any, error) {
			return value, nil
		},
	}
}

func TestApply_RegistersInSourceOrder(t *testing.T) {
	c := container.New("main")
	src := discovery.Static{
		valueEntry("actions.home", "home"),
		valueEntry("actions.about", "about"),
		valueEntry("views.layout", "layout"),
	}

	require.NoError(t, discovery.Apply(c, src))
	assert.Equal(t, []string{"actions.home", "actions.about", "views.layout"}, c.Keys())

	v, err := c.Resolve("actions.home")
	require.NoError(t, err)
	assert.Equal(t, "home", v)
}

func TestApply_SkipsNonRegistrable(t *testing.T) {
	c := container.New("main")
	hidden := valueEntry("internal.helper", "helper")
	hidden.NonRegistrable = true
	src := discovery.Static{hidden, valueEntry("actions.home", "home")}

	require.NoError(t, discovery.Apply(c, src))
	assert.False(t, c.Has("internal.helper"))
	assert.True(t, c.Has("actions.home"))
}

func TestApply_ExclusionList(t *testing.T) {
	c := container.New("main")
	src := discovery.Static{
		valueEntry("actions.home", "home"),
		valueEntry("actions.legacy", "legacy"),
	}

	require.NoError(t, discovery.Apply(c, src, discovery.Exclude("actions.legacy")))
	assert.Equal(t, []string{"actions.home"}, c.Keys())
}

func TestApply_DuplicateKeyFails(t *testing.T) {
	c := container.New("main")
	require.NoError(t, c.RegisterValue("actions.home", "existing"))

	err := discovery.Apply(c, discovery.Static{valueEntry("actions.home", "home")})
	var dup *container.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
}

type failingSource struct{}

func (failingSource) Components() ([]discovery.Entry, error) {
	return nil, errors.New("walk failed")
}

func TestApply_SourceErrorPropagates(t *testing.T) {
	c := container.New("main")
	require.EqualError(t, discovery.Apply(c, failingSource{}), "walk failed")
}
