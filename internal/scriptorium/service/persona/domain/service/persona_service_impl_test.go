package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/pkg/errno"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/store/inmemory"
)

func personaJSON(id, name string) string {
	return `{
		"id": "` + id + `",
		"name": "` + name + `",
		"description": "a test persona",
		"greeting": "hello from ` + id + `",
		"systemPrompt": "You are ` + name + `."
	}`
}

func writePersonaDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestPersonaService_LoadAll(t *testing.T) {
	dir := writePersonaDir(t, map[string]string{
		"vanilla.json": personaJSON("vanilla", "Vanilla"),
		"pirate.json":  personaJSON("pirate", "Pirate"),
		"notes.txt":    "not a persona",
	})
	svc := NewPersonaService(inmemory.NewPersonaStore())

	report, err := svc.LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Empty(t, report.Rejected)
	assert.Equal(t, "vanilla", svc.Current().ID)
}

func TestPersonaService_LoadAllCollectsRejects(t *testing.T) {
	dir := writePersonaDir(t, map[string]string{
		"good.json":    personaJSON("good", "Good"),
		"broken.json":  "{not json",
		"missing.json": `{"id": "missing"}`,
		"badid.json":   personaJSON("Bad_ID", "Bad"),
	})
	svc := NewPersonaService(inmemory.NewPersonaStore())

	report, err := svc.LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	assert.Len(t, report.Rejected, 3)
}

func TestPersonaService_EmptyRegistryInstallsFallback(t *testing.T) {
	svc := NewPersonaService(inmemory.NewPersonaStore())

	report, err := svc.LoadAll(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, report.Loaded)

	current := svc.Current()
	require.NotNil(t, current)
	assert.Equal(t, FallbackPersonaID, current.ID)
	assert.NotEmpty(t, current.SystemPrompt)
}

func TestPersonaService_DefaultSelectionOrder(t *testing.T) {
	// No vanilla: "default" wins over lexical order.
	dir := writePersonaDir(t, map[string]string{
		"aardvark.json": personaJSON("aardvark", "Aardvark"),
		"default.json":  personaJSON("default", "Default"),
	})
	svc := NewPersonaService(inmemory.NewPersonaStore())
	_, err := svc.LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, "default", svc.Current().ID)

	// Neither vanilla nor default: first in lexical order.
	dir = writePersonaDir(t, map[string]string{
		"zebra.json":    personaJSON("zebra", "Zebra"),
		"aardvark.json": personaJSON("aardvark", "Aardvark"),
	})
	svc = NewPersonaService(inmemory.NewPersonaStore())
	_, err = svc.LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, "aardvark", svc.Current().ID)
}

func TestPersonaService_Switch(t *testing.T) {
	dir := writePersonaDir(t, map[string]string{
		"vanilla.json": personaJSON("vanilla", "Vanilla"),
		"pirate.json":  personaJSON("pirate", "Pirate"),
	})
	svc := NewPersonaService(inmemory.NewPersonaStore())
	_, err := svc.LoadAll(dir)
	require.NoError(t, err)

	p, err := svc.Switch("pirate")
	require.NoError(t, err)
	assert.Equal(t, "pirate", p.ID)
	assert.Equal(t, "pirate", svc.Current().ID)

	_, err = svc.Switch("nonexistent")
	assert.ErrorIs(t, err, errno.ErrPersonaNotFound)
	assert.Equal(t, "pirate", svc.Current().ID)
}

func TestPersonaService_ListForChannel(t *testing.T) {
	svc := NewPersonaService(inmemory.NewPersonaStore())
	_, err := svc.LoadAll(t.TempDir())
	require.NoError(t, err)

	_, err = svc.AddCustom(&entity.Persona{
		ID:           "slack-only",
		Name:         "Slack Only",
		Description:  "scoped persona",
		Greeting:     "hi",
		SystemPrompt: "You serve slack.",
		Channels:     []string{"slack"},
	})
	require.NoError(t, err)

	slack := svc.ListForChannel("slack")
	web := svc.ListForChannel("web")

	ids := func(ps []*entity.Persona) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Contains(t, ids(slack), "slack-only")
	assert.NotContains(t, ids(web), "slack-only")
	// The fallback has no channel list, so it serves everywhere.
	assert.Contains(t, ids(web), FallbackPersonaID)
}

func TestPersonaService_AddCustom(t *testing.T) {
	svc := NewPersonaService(inmemory.NewPersonaStore())
	_, err := svc.LoadAll(t.TempDir())
	require.NoError(t, err)

	p, err := svc.AddCustom(&entity.Persona{
		Name:         "Captain Hook",
		Description:  "a pirate",
		Greeting:     "arr",
		SystemPrompt: "You are a pirate.",
	})
	require.NoError(t, err)
	assert.Equal(t, "captain-hook", p.ID)
	assert.True(t, p.Custom)

	_, err = svc.AddCustom(&entity.Persona{
		ID:           "captain-hook",
		Name:         "Captain Hook",
		Description:  "a pirate",
		Greeting:     "arr",
		SystemPrompt: "You are a pirate.",
	})
	assert.ErrorIs(t, err, errno.ErrPersonaExists)

	_, err = svc.AddCustom(&entity.Persona{Name: "Incomplete"})
	assert.ErrorIs(t, err, errno.ErrPersonaInvalid)
}

func TestPersonaService_ReloadKeepsCustomsAndSelection(t *testing.T) {
	dir := writePersonaDir(t, map[string]string{
		"vanilla.json": personaJSON("vanilla", "Vanilla"),
		"pirate.json":  personaJSON("pirate", "Pirate"),
	})
	svc := NewPersonaService(inmemory.NewPersonaStore())
	_, err := svc.LoadAll(dir)
	require.NoError(t, err)

	_, err = svc.AddCustom(&entity.Persona{
		ID:           "runtime",
		Name:         "Runtime",
		Description:  "created at runtime",
		Greeting:     "hi",
		SystemPrompt: "You are runtime-made.",
	})
	require.NoError(t, err)
	_, err = svc.Switch("pirate")
	require.NoError(t, err)

	report, err := svc.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, "pirate", svc.Current().ID)

	p, err := svc.Get("runtime")
	require.NoError(t, err)
	assert.True(t, p.Custom)
}

func TestPersonaService_ReloadFallsBackWhenCurrentRemoved(t *testing.T) {
	dir := writePersonaDir(t, map[string]string{
		"vanilla.json": personaJSON("vanilla", "Vanilla"),
		"pirate.json":  personaJSON("pirate", "Pirate"),
	})
	svc := NewPersonaService(inmemory.NewPersonaStore())
	_, err := svc.LoadAll(dir)
	require.NoError(t, err)
	_, err = svc.Switch("pirate")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "pirate.json")))

	_, err = svc.Reload()
	require.NoError(t, err)
	assert.Equal(t, "vanilla", svc.Current().ID)
}

func TestDeriveID(t *testing.T) {
	assert.Equal(t, "captain-hook", entity.DeriveID("Captain Hook"))
	assert.Equal(t, "mr-robot-2", entity.DeriveID("  Mr. Robot 2!  "))
	assert.Equal(t, "", entity.DeriveID("!!!"))
}
