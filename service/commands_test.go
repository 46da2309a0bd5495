package service

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postboard/app/controllers"
	"postboard/app/repositories"
	"postboard/app/routes"
	"postboard/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line with args and input and returns its output.
func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(strings.NewReader(input), &out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "postboard version 1.0.0\n", out)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assembly:\n  parallelism: 0\n"), 0644))

	_, err := run(t, "", "--config", path, "version")
	assert.ErrorContains(t, err, "invalid config")

	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "", "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestStoreLifecycle(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "badger")

	out, err := run(t, "", "store", "seed", "--path", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 3 users, 3 posts, 9 comments\n", out)

	c := &cli{out: &bytes.Buffer{}}
	c.cfg.Store.Path = dbPath
	backupFile, err := c.backup(filepath.Join(dir, "backups"))
	require.NoError(t, err)

	t.Run("clean cancelled", func(t *testing.T) {
		out, err := run(t, "n\n", "store", "clean", "--path", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Operation cancelled")
		assert.DirExists(t, dbPath)
	})

	t.Run("clean", func(t *testing.T) {
		out, err := run(t, "y\n", "store", "clean", "--path", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Database cleaned successfully")
		assert.NoDirExists(t, dbPath)

		out, err = run(t, "", "store", "clean", "--path", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "already clean")
	})

	t.Run("restore", func(t *testing.T) {
		out, err := run(t, "", "store", "restore", backupFile, "--path", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Database restored successfully")

		store, err := repositories.Open(dbPath)
		require.NoError(t, err)
		defer store.Close()
		users, err := store.Users.List()
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})

	t.Run("restore missing file", func(t *testing.T) {
		_, err := run(t, "", "store", "restore", filepath.Join(dir, "nope.db"), "--path", dbPath)
		assert.ErrorContains(t, err, "does not exist")
	})
}

func TestSeedFromFile(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(fixture, []byte(`{
		"users": [{"id": 7, "name": "Kurtis Weissnat", "company": {"name": "Johns Group"}}],
		"posts": [{"id": 61, "userId": 7, "title": "voluptatem doloribus", "body": "dolore maxime"}]
	}`), 0644))

	out, err := run(t, "", "store", "seed", fixture, "--path", filepath.Join(dir, "badger"))
	require.NoError(t, err)
	assert.Equal(t, "Seeded 1 users, 1 posts, 0 comments\n", out)

	_, err = run(t, "", "store", "seed", filepath.Join(dir, "missing.json"), "--path", filepath.Join(dir, "badger"))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	store, err := repositories.Open("")
	require.NoError(t, err)
	defer store.Close()
	svc := services.NewStoreService(store.Users, store.Posts, store.Comments)
	fixture, err := services.DefaultFixture()
	require.NoError(t, err)
	_, err = svc.Seed(fixture)
	require.NoError(t, err)

	server := httptest.NewServer(routes.SetupStoreRoutes(controllers.NewStoreController(svc, nil), nil))
	defer server.Close()

	out, err := run(t, "", "render", "--user", "1", "--remote", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "Author: Leanne Graham with Romaguera-Crona")
	assert.Contains(t, out, "Multi-layered client-server neural-net")

	out, err = run(t, "", "render", "--user", "3", "--remote", server.URL, "--main-only")
	require.NoError(t, err)
	assert.Equal(t, `<p class="default-text">Select an Employee to display their posts.</p>`+"\n", out)
}
