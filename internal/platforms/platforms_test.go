package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	names := make([]string, 0)
	for _, p := range r.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"github", "instagram", "wordpress", "youtube"}, names)

	yt, ok := r.Get("YouTube")
	require.True(t, ok)
	assert.Equal(t, StatusReady, yt.Status)
	assert.Equal(t, "video", yt.Type)
}

func TestRegistry_AddIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()

	added, err := r.Add("Discord", Config{URL: "https://discord.example/hook"})
	require.NoError(t, err)
	assert.Equal(t, "discord", added.Name)
	assert.Equal(t, StatusIntegrated, added.Status)
	assert.Equal(t, TypeCustom, added.Type)

	got, ok := r.Get("discord")
	require.True(t, ok)
	assert.Equal(t, added, got)

	before := r.Len()
	_, err = r.Add("DISCORD", Config{Type: "Webhook", URL: "https://other.example"})
	require.NoError(t, err)
	assert.Equal(t, before, r.Len(), "re-adding must overwrite")

	got, _ = r.Get("Discord")
	assert.Equal(t, TypeWebhook, got.Type)
	assert.Equal(t, "https://other.example", got.URL)
}

func TestRegistry_AddEmptyName(t *testing.T) {
	_, err := NewRegistry().Add("  ", Config{})
	assert.True(t, errors.Is(err, ErrEmptyName))
}

func TestRegistry_LoadCatalogue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.toml")
	doc := `
[[platform]]
name = "Mastodon"
type = "webhook"
url = "https://social.example/hook"
api_key_ref = "MASTODON_TOKEN"

[[platform]]
name = "newsletter"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	r := NewRegistry()
	n, err := r.LoadCatalogue(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, ok := r.Get("mastodon")
	require.True(t, ok)
	assert.Equal(t, TypeWebhook, m.Type)
	assert.Equal(t, "MASTODON_TOKEN", m.APIKeyRef)

	nl, ok := r.Get("newsletter")
	require.True(t, ok)
	assert.Equal(t, TypeCustom, nl.Type)
}

func TestRegistry_LoadCatalogueErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.LoadCatalogue(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[platform]\nname="), 0644))
	_, err = r.LoadCatalogue(bad)
	assert.Error(t, err)
}

func TestPoster_Post(t *testing.T) {
	var received Content
	var auth string
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ok.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	t.Setenv("HOOK_TOKEN", "secret")

	r := NewRegistry()
	_, err := r.Add("hook", Config{Type: TypeWebhook, URL: ok.URL, APIKeyRef: "HOOK_TOKEN"})
	require.NoError(t, err)
	_, err = r.Add("broken", Config{Type: TypeWebhook, URL: failing.URL})
	require.NoError(t, err)

	p := NewPoster(r)
	content := Content{Title: "Launch", Body: "We rise"}

	res := p.Post(context.Background(), "Hook", content)
	assert.True(t, res.OK(), res.Message)
	assert.Equal(t, ok.URL, res.URL)
	assert.Equal(t, content, received)
	assert.Equal(t, "Bearer secret", auth)

	res = p.Post(context.Background(), "broken", content)
	assert.Equal(t, PostError, res.Status)
	assert.Contains(t, res.Message, "502")

	res = p.Post(context.Background(), "instagram", content)
	assert.True(t, res.OK())
	assert.Equal(t, localManifestOnly, res.URL)

	res = p.Post(context.Background(), "myspace", content)
	assert.Equal(t, PostError, res.Status)
	assert.Contains(t, res.Message, "unknown platform")
}
