package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/phoenix/internal/broadcast"
	"github.com/leefowlercu/phoenix/internal/intel"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/scanner"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/testutil"
	"github.com/leefowlercu/phoenix/internal/vbrain"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

const manifestReply = `{
	"brandIdentity": {"name": "Phoenix", "mission": "Protect communities", "tone": "Bold", "signaturePhrases": ["Rise together"]},
	"activeFocus": "Spring launch",
	"suggestedWorkflows": ["Launch reel"],
	"brandManifestJson": {"brand_name": "Phoenix", "mission": "Protect communities"}
}`

type harness struct {
	orch       *Orchestrator
	gen        *testutil.FakeGenerator
	root       string
	bucket     string
	processed  string
	hub        *broadcast.Hub
	discussion *broadcast.Discussion
}

type recorder struct {
	mu   sync.Mutex
	msgs []broadcast.Message
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Send(_ context.Context, msg broadcast.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func newHarness(t *testing.T, replies ...string) *harness {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "workspace")
	bucket := filepath.Join(root, "bucket")
	processed := filepath.Join(bucket, "processed")
	require.NoError(t, os.MkdirAll(processed, 0755))

	gen := testutil.NewFakeGenerator("fake", replies...)
	source := testutil.StaticSource{Generator: gen}
	profile := filepath.Join(root, "brand_brain", "brand_profile.json")

	store := vbrain.NewStore(filepath.Join(root, "brand_brain", "vbrain.json"))
	require.NoError(t, store.Load())

	registry := platforms.NewRegistry()
	table := workflow.NewTable()
	hub := broadcast.NewHub(nil)
	discussion := broadcast.NewDiscussion(hub, 0, time.Second, nil)
	t.Cleanup(discussion.Stop)

	orch, err := New(root, Components{
		Store:      store,
		Scanner:    scanner.New(),
		Fetcher:    intel.NewFetcher(intel.WithTimeout(2 * time.Second)),
		Synthesis:  synthesis.NewEngine(source, profile),
		Content:    synthesis.NewContentEngine(source, profile, nil),
		Platforms:  registry,
		Table:      table,
		Processor:  workflow.NewBucketProcessor(table, bucket, processed),
		Executor:   workflow.NewExecutor(table, platforms.NewPoster(registry), bucket, processed),
		Discussion: discussion,
	}, WithHomeDir(filepath.Join(base, "home")))
	require.NoError(t, err)

	return &harness{
		orch:       orch,
		gen:        gen,
		root:       root,
		bucket:     bucket,
		processed:  processed,
		hub:        hub,
		discussion: discussion,
	}
}

func TestNew_RequiresComponents(t *testing.T) {
	_, err := New(t.TempDir(), Components{})
	assert.Error(t, err)
}

func TestNew_PrimaryRootAndDefaultFocus(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, []string{h.root}, h.orch.Roots())
	assert.Equal(t, DefaultFocus, h.orch.Focus())
	assert.Equal(t, h.bucket, h.orch.BucketDir())
}

func TestAddDiscoveryPath_Dedup(t *testing.T) {
	h := newHarness(t)
	extra := t.TempDir()
	ctx := context.Background()

	roots, err := h.orch.AddDiscoveryPath(ctx, extra)
	require.NoError(t, err)
	assert.Equal(t, []string{h.root, extra}, roots)

	roots, err = h.orch.AddDiscoveryPath(ctx, extra+string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, []string{h.root, extra}, roots)

	roots, err = h.orch.AddDiscoveryPath(ctx, h.root)
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestAddDiscoveryPath_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.orch.AddDiscoveryPath(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = h.orch.AddDiscoveryPath(ctx, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("notes"), 0644))
	_, err = h.orch.AddDiscoveryPath(ctx, file)
	assert.ErrorIs(t, err, ErrNotDirectory)

	assert.Equal(t, []string{h.root}, h.orch.Roots())
}

func TestSetFocus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.orch.SetFocus(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyFocus)
	assert.Equal(t, DefaultFocus, h.orch.Focus())

	focus, err := h.orch.SetFocus(ctx, "  Spring launch ")
	require.NoError(t, err)
	assert.Equal(t, "Spring launch", focus)
	assert.Equal(t, "Spring launch", h.orch.Status().GlobalFocus)
}

func TestAddInspirationURL(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	urls, err := h.orch.AddInspirationURL(ctx, "https://a.example/about")
	require.NoError(t, err)
	urls, err = h.orch.AddInspirationURL(ctx, "https://a.example/about")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/about"}, urls)

	for _, bad := range []string{"", "ftp://a.example", "not a url", "/relative"} {
		_, err := h.orch.AddInspirationURL(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
}

func TestAddPlatform_CaseInsensitiveOverwrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.orch.AddPlatform(ctx, "Discord", platforms.Config{URL: "https://one.example"})
	require.NoError(t, err)
	p, err := h.orch.AddPlatform(ctx, "discord", platforms.Config{Type: "chat", URL: "https://two.example"})
	require.NoError(t, err)
	assert.Equal(t, "discord", p.Name)

	var matches []platforms.Platform
	for _, pl := range h.orch.Status().Platforms {
		if pl.Name == "discord" {
			matches = append(matches, pl)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, "https://two.example", matches[0].URL)
	assert.Equal(t, "chat", matches[0].Type)

	_, err = h.orch.AddPlatform(ctx, " ", platforms.Config{})
	assert.ErrorIs(t, err, platforms.ErrEmptyName)
}

func TestIntegrateAgents_PersistsImmediately(t *testing.T) {
	h := newHarness(t)

	err := h.orch.IntegrateAgents(context.Background(), map[string]string{
		"seek":  "http://localhost:7777",
		"scout": "http://localhost:7778",
	})
	require.NoError(t, err)

	agents := h.orch.Status().Agents
	require.Len(t, agents, 2)
	assert.Equal(t, vbrain.AgentStatusReady, agents["seek"].Status)

	reloaded := vbrain.NewStore(filepath.Join(h.root, "brand_brain", "vbrain.json"))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []string{"scout", "seek"}, reloaded.Agents())
}

func TestUpload_OverwritesSameName(t *testing.T) {
	h := newHarness(t)

	name, err := h.orch.Upload("reel.mp4", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "reel.mp4", name)

	_, err = h.orch.Upload("../reel.mp4", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(h.bucket, "reel.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(h.bucket)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".upload-"), "temp file left behind: %s", e.Name())
	}
}

func TestUpload_RejectsBadNames(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"", ".", "..", ".hidden.png", "/"} {
		_, err := h.orch.Upload(name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidFileName, name)
	}
}

func TestUpload_ContentCheck(t *testing.T) {
	pngHeader := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"png bytes as png", "hero.png", pngHeader, nil},
		{"placeholder bytes", "reel.mp4", "not sniffable", nil},
		{"html saved as png", "hero.png", "<!DOCTYPE html><html><body>404</body></html>", ErrContentMismatch},
		{"png saved as mp4", "reel.mp4", pngHeader, ErrContentMismatch},
		{"markdown brief", "brief.md", "# Brief", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.orch.Upload(tt.file, strings.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, statErr := os.Stat(filepath.Join(h.bucket, tt.file))
				assert.True(t, os.IsNotExist(statErr), "rejected upload was stored")
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(filepath.Join(h.bucket, tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestProcessBucket_RepeatedPassesDoubleAndStartDiscussion(t *testing.T) {
	h := newHarness(t)
	rec := &recorder{}
	h.hub.Subscribe(rec)

	require.NoError(t, os.WriteFile(filepath.Join(h.bucket, "hero.png"), []byte("img"), 0644))
	ctx := context.Background()

	first, err := h.orch.ProcessBucket(ctx, "make it loud")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, first[0].Description, "make it loud")

	h.discussion.Wait()
	assert.Equal(t, 3, rec.Len())

	second, err := h.orch.ProcessBucket(ctx, "")
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Len(t, h.orch.ListWorkflows(), 2)
	assert.Equal(t, 2, h.orch.Status().Workflows[workflow.StatusAwaitingApproval])
}

func TestProcessBucket_EmptyBucketStartsNoDiscussion(t *testing.T) {
	h := newHarness(t)
	rec := &recorder{}
	h.hub.Subscribe(rec)

	got, err := h.orch.ProcessBucket(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)

	h.discussion.Wait()
	assert.Zero(t, rec.Len())
}

func TestExecuteWorkflow_ArchivesAsset(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.bucket, "clip.mp4"), []byte("vid"), 0644))
	ctx := context.Background()

	proposals, err := h.orch.ProcessBucket(ctx, "")
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	done, err := h.orch.ExecuteWorkflow(ctx, proposals[0].ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, done.Status)
	assert.True(t, done.Archived)

	assert.NoFileExists(t, filepath.Join(h.bucket, "clip.mp4"))
	assert.FileExists(t, filepath.Join(h.processed, "clip.mp4"))
}

func TestExecuteWorkflow_UnknownID(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.bucket, "a.png"), []byte("img"), 0644))
	_, err := h.orch.ProcessBucket(context.Background(), "")
	require.NoError(t, err)
	before := h.orch.ListWorkflows()

	_, err = h.orch.ExecuteWorkflow(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
	assert.Equal(t, before, h.orch.ListWorkflows())
}

func TestSync_LearnsAllRootsAndStoresManifest(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Inspo</title></head><body><p>Community first.</p></body></html>`)
	}))
	defer page.Close()

	h := newHarness(t, manifestReply)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "README.md"), []byte("# Phoenix\nWe rise."), 0644))

	extra := filepath.Join(t.TempDir(), "side-project")
	require.NoError(t, os.MkdirAll(extra, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(extra, "notes.md"), []byte("side notes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(extra, "package.json"), []byte(`{"name":"side"}`), 0644))

	ctx := context.Background()
	_, err := h.orch.AddDiscoveryPath(ctx, extra)
	require.NoError(t, err)
	_, err = h.orch.AddInspirationURL(ctx, page.URL)
	require.NoError(t, err)

	res, err := h.orch.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{h.root, extra}, res.Learn.Roots)
	assert.Equal(t, 2, res.Learn.Contexts)
	require.False(t, res.Synthesis.Failed(), res.Synthesis.Error)
	assert.Equal(t, "Phoenix", res.Synthesis.Manifest.BrandIdentity.Name)

	require.Equal(t, 1, h.gen.Calls())
	prompt := h.gen.Requests()[0].UserPrompt
	assert.Contains(t, prompt, "README.md")
	assert.Contains(t, prompt, "side-project/package.json")
	assert.Contains(t, prompt, "Community first.")
	assert.Less(t, strings.Index(prompt, "README.md"), strings.Index(prompt, "side-project/notes.md"))

	st := h.orch.Status()
	require.NotNil(t, st.Brand)
	assert.Equal(t, "Phoenix", st.Brand.Name)
	assert.Equal(t, "Spring launch", st.Brand.ActiveFocus)
	assert.NotNil(t, st.LastSyncTime)

	m, ok := h.orch.Manifest()
	require.True(t, ok)
	assert.Equal(t, "Protect communities", m.BrandIdentity.Mission)
}

func TestSyncDNA_FailureKeepsNoManifest(t *testing.T) {
	h := newHarness(t, "I cannot answer in JSON today.")

	res, err := h.orch.SyncDNA(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, synthesis.ErrMalformedManifest)

	_, ok := h.orch.Manifest()
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(h.root, "brand_brain", "brand_profile.json"))
}

func TestLearn_ReplacesRootEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "a.md"), []byte("a"), 0644))

	first, err := h.orch.Learn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Contexts)

	require.NoError(t, os.Remove(filepath.Join(h.root, "a.md")))
	second, err := h.orch.Learn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Contexts)
}

func TestDiscoverSystemRoots(t *testing.T) {
	h := newHarness(t)
	home := h.orch.home

	mk := func(dir, marker string) {
		require.NoError(t, os.MkdirAll(dir, 0755))
		if marker == "" {
			return
		}
		if marker == ".git" {
			require.NoError(t, os.Mkdir(filepath.Join(dir, marker), 0755))
			return
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, marker), []byte("x"), 0644))
	}

	mk(filepath.Join(home, "plain"), "")
	mk(filepath.Join(home, ".dotfiles"), ".git")
	mk(filepath.Join(home, "Documents", "essay"), "README.md")
	mk(filepath.Join(home, "Desktop", "site"), "package.json")
	mk(filepath.Join(home, "repo"), ".git")

	got := h.orch.DiscoverSystemRoots()
	assert.Equal(t, []string{
		filepath.Join(home, "Desktop", "site"),
		filepath.Join(home, "Documents", "essay"),
		filepath.Join(home, "repo"),
	}, got)

	_, err := h.orch.AddDiscoveryPath(context.Background(), filepath.Join(home, "repo"))
	require.NoError(t, err)
	assert.NotContains(t, h.orch.DiscoverSystemRoots(), filepath.Join(home, "repo"))
}

func TestDiscoverSystemRoots_Capped(t *testing.T) {
	h := newHarness(t)
	home := h.orch.home
	for i := range 14 {
		dir := filepath.Join(home, fmt.Sprintf("project-%02d", i))
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644))
	}

	got := h.orch.DiscoverSystemRoots()
	require.Len(t, got, 10)
	assert.Equal(t, filepath.Join(home, "project-00"), got[0])
	assert.Equal(t, filepath.Join(home, "project-09"), got[9])
}

func TestDiscoverSystemRoots_MissingHome(t *testing.T) {
	h := newHarness(t)
	assert.Empty(t, h.orch.DiscoverSystemRoots())
}

func TestGenerateContent(t *testing.T) {
	h := newHarness(t, "Rise together, Seattle.")
	ctx := context.Background()

	_, err := h.orch.GenerateContent(ctx, " ", "creative")
	assert.ErrorIs(t, err, ErrEmptyTask)

	resp, err := h.orch.GenerateContent(ctx, "Write a launch caption", "")
	require.NoError(t, err)
	assert.Equal(t, "Rise together, Seattle.", resp.Content)
	assert.Equal(t, "default", h.gen.Requests()[0].Task)
}

func TestGenerateContent_Unavailable(t *testing.T) {
	h := newHarness(t)
	h.orch.c.Content = nil

	_, err := h.orch.GenerateContent(context.Background(), "task", "")
	assert.ErrorIs(t, err, ErrContentUnavailable)
}
