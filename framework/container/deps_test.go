package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomstack/loom/framework/container"
)

type mailer interface {
	Send(to, body string) error
}

type smtpMailer struct{ sent []string }

func (m *smtpMailer) Send(to, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

type fakeMailer struct{ sent []string }

func (m *fakeMailer) Send(to, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

type notifier struct {
	mail  mailer
	from  string
	calls int
}

func newNotifierBlueprint() *container.Blueprint {
	return container.NewBlueprint(func(deps map[string]any) (any, error) {
		return &notifier{
			mail: deps["mail"].(mailer),
			from: deps["from"].(string),
		}, nil
	},
		container.UseAs("mail", "mailers.smtp"),
		container.UseAs("from", "settings.sender"),
	)
}

// ── Declarations ──────────────────────────────────────────────────────────────

func TestUse_LocalNameIsLastSegment(t *testing.T) {
	d := container.Use("persistence.db")
	assert.Equal(t, "db", d.Local)
	assert.Equal(t, "persistence.db", d.Key)

	plain := container.Use("logger")
	assert.Equal(t, "logger", plain.Local)
}

func TestUseAs_ExplicitLocalName(t *testing.T) {
	d := container.UseAs("store", "main.db.conn")
	assert.Equal(t, "store", d.Local)
	assert.Equal(t, "main.db.conn", d.Key)
}

// ── Construction ──────────────────────────────────────────────────────────────

func TestBlueprint_ConstructResolvesDeclaredKeys(t *testing.T) {
	c := container.New("main")
	smtp := &smtpMailer{}
	require.NoError(t, c.RegisterValue("mailers.smtp", smtp))
	require.NoError(t, c.RegisterValue("settings.sender", "noreply@example.com"))

	v, err := newNotifierBlueprint().Construct(c, nil)
	require.NoError(t, err)
	n := v.(*notifier)
	assert.Same(t, smtp, n.mail)
	assert.Equal(t, "noreply@example.com", n.from)
}

func TestBlueprint_OverridesBypassRegistryOnlyForOverriddenKeys(t *testing.T) {
	c := container.New("main")
	smtpResolves := 0
	require.NoError(t, c.Register("mailers.smtp", func(*container.Container) (any, error) {
		smtpResolves++
		return &smtpMailer{}, nil
	}))
	require.NoError(t, c.RegisterValue("settings.sender", "noreply@example.com"))

	fake := &fakeMailer{}
	v, err := newNotifierBlueprint().Construct(c, map[string]any{"mail": fake})
	require.NoError(t, err)
	n := v.(*notifier)

	assert.Same(t, fake, n.mail, "overridden dependency binds directly")
	assert.Equal(t, 0, smtpResolves, "registry must not be consulted for overridden keys")
	assert.Equal(t, "noreply@example.com", n.from, "unlisted keys still resolve from the registry")
}

func TestBlueprint_MissingDependencyFails(t *testing.T) {
	c := container.New("main")
	require.NoError(t, c.RegisterValue("settings.sender", "noreply@example.com"))

	_, err := newNotifierBlueprint().Construct(c, nil)
	var unknown *container.UnknownKeyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "mailers.smtp", unknown.Key)
}

func TestBlueprint_FactoryAdaptsToRegistry(t *testing.T) {
	c := container.New("main")
	require.NoError(t, c.RegisterValue("mailers.smtp", &smtpMailer{}))
	require.NoError(t, c.RegisterValue("settings.sender", "noreply@example.com"))
	require.NoError(t, c.Register("notifier", newNotifierBlueprint().Factory()))

	first, err := c.Resolve("notifier")
	require.NoError(t, err)
	second, err := c.Resolve("notifier")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestBlueprint_DepsAccessor(t *testing.T) {
	bp := newNotifierBlueprint()
	deps := bp.Deps()
	require.Len(t, deps, 2)
	assert.Equal(t, "mail", deps[0].Local)
	assert.Equal(t, "settings.sender", deps[1].Key)
}
