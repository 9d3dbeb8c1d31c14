package sheetapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRewritesRefs(t *testing.T) {
	in := map[string]interface{}{
		"name": "Yorick",
		"url":  "/api/characters/yorick",
		"spells": []interface{}{
			map[string]interface{}{"url": "/api/spells/fireball"},
		},
	}

	out := Transform(in).(map[string]interface{})
	assert.Equal(t, "characters/yorick.yaml", out["ref"])
	assert.NotContains(t, out, "url")

	spells := out["spells"].([]interface{})
	assert.Equal(t, "spells/fireball.yaml", spells[0].(map[string]interface{})["ref"])
}

func TestMirrorWritesYAML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/characters/yorick", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Yorick","level":5}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(srv.URL, dir, false)

	path, err := c.Mirror("yorick")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "characters", "yorick.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Yorick")
}

func TestMirrorSkipsExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "characters", "yorick.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0755))
	require.NoError(t, os.WriteFile(local, []byte("name: Cached\n"), 0644))

	// Server that fails the test if touched.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected fetch for cached record")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, dir, false)
	path, err := c.Mirror("yorick")
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "name: Cached\n", string(data))
}
