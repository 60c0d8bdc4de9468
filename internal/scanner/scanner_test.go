package scanner

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writePNG(t *testing.T, root, rel string, w, h int) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Phoenix Rising\n\nCommunity first.")
	writeFile(t, root, "docs/notes.txt", "plain notes")
	writeFile(t, root, "docs/guide.markdown", "intro\n\n## Getting Started\n")
	writeFile(t, root, "package.json", `{"name":"phoenix"}`)
	writeFile(t, root, "media/clip.mp4", "0000")
	writePNG(t, root, "media/logo.png", 4, 3)
	writeFile(t, root, "node_modules/dep/README.md", "ignored")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "src/app.go", "package main")
	return root
}

func TestScan_Deterministic(t *testing.T) {
	root := sampleTree(t)
	s := New(WithFilter(NewFilter([]string{".git", "node_modules"}, nil)), WithClock(fixedClock))

	first := s.Scan(context.Background(), root)
	second := s.Scan(context.Background(), root)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Scan() not deterministic (-first +second):\n%s", diff)
	}
	assert.Equal(t, 3, first.ContextCount)
	assert.Equal(t, 2, first.AssetCount)
	assert.Len(t, first.ProjectFingerprints, 1)
}

func TestScan_LexicographicOrder(t *testing.T) {
	root := sampleTree(t)
	s := New(WithFilter(NewFilter([]string{".git", "node_modules"}, nil)))

	rec := s.Scan(context.Background(), root)

	var paths []string
	for _, sn := range rec.ContextSnippets {
		paths = append(paths, sn.Path)
	}
	assert.Equal(t, []string{"README.md", "docs/guide.markdown", "docs/notes.txt"}, paths)

	require.Len(t, rec.Assets, 2)
	assert.Equal(t, "media/clip.mp4", rec.Assets[0].Path)
	assert.Equal(t, AssetVideo, rec.Assets[0].Kind)
	assert.Equal(t, int64(4), rec.Assets[0].SizeBytes)
	assert.Equal(t, "media/logo.png", rec.Assets[1].Path)
	assert.Equal(t, AssetImage, rec.Assets[1].Kind)
	assert.Equal(t, "video/mp4", rec.Assets[0].MIME)
	assert.Equal(t, "image/png", rec.Assets[1].MIME)
}

func TestScan_SkipDirectories(t *testing.T) {
	root := sampleTree(t)
	writeFile(t, root, "deep/nested/node_modules/pkg/notes.md", "ignored")

	rec := New(WithFilter(NewFilter([]string{".git", "node_modules"}, nil))).Scan(context.Background(), root)

	for _, sn := range rec.ContextSnippets {
		assert.NotContains(t, sn.Path, "node_modules")
	}
	assert.Equal(t, 3, rec.ContextCount)
}

func TestScan_SkipPatterns(t *testing.T) {
	root := sampleTree(t)
	filter := NewFilter([]string{".git", "node_modules"}, []string{"docs/**"})

	rec := New(WithFilter(filter)).Scan(context.Background(), root)

	assert.Equal(t, 1, rec.ContextCount)
	require.Len(t, rec.ContextSnippets, 1)
	assert.Equal(t, "README.md", rec.ContextSnippets[0].Path)
}

func TestScan_Caps(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFile(t, root, filepath.Join("notes", string(rune('a'+i))+".md"), "note")
		writeFile(t, root, filepath.Join("clips", string(rune('a'+i))+".mov"), "x")
	}

	s := New(WithLimits(Limits{MaxAssets: 3, MaxSnippets: 2}))
	rec := s.Scan(context.Background(), root)

	assert.Equal(t, 8, rec.ContextCount)
	assert.Equal(t, 8, rec.AssetCount)
	assert.Len(t, rec.ContextSnippets, 2)
	assert.Len(t, rec.Assets, 3)
	assert.Equal(t, "clips/a.mov", rec.Assets[0].Path)
}

func TestScan_SnippetTruncation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "long.txt", strings.Repeat("é", 50))
	writeFile(t, root, "requirements.txt", strings.Repeat("x", 50))

	rec := New(WithLimits(Limits{SnippetChars: 10, FingerprintChars: 5})).Scan(context.Background(), root)

	var long Snippet
	for _, sn := range rec.ContextSnippets {
		if sn.Path == "long.txt" {
			long = sn
		}
	}
	assert.Equal(t, strings.Repeat("é", 10), long.Snippet)

	require.Len(t, rec.ProjectFingerprints, 1)
	assert.Equal(t, "requirements.txt", rec.ProjectFingerprints[0].File)
	assert.Equal(t, "xxxxx", rec.ProjectFingerprints[0].Content)
}

func TestScan_FingerprintsRootOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/package.json", "{}")
	writeFile(t, root, "Dockerfile", "FROM scratch")
	writeFile(t, root, "go.mod", "module example.com/x")

	rec := New().Scan(context.Background(), root)

	assert.Equal(t, []string{"Dockerfile", "go.mod"}, rec.FingerprintNames())
}

func TestScan_MarkdownTitleAndImageDimensions(t *testing.T) {
	root := sampleTree(t)

	rec := New(WithFilter(NewFilter([]string{".git", "node_modules"}, nil))).Scan(context.Background(), root)

	titles := map[string]string{}
	for _, sn := range rec.ContextSnippets {
		titles[sn.Path] = sn.Title
	}
	assert.Equal(t, "Phoenix Rising", titles["README.md"])
	assert.Equal(t, "Getting Started", titles["docs/guide.markdown"])
	assert.Empty(t, titles["docs/notes.txt"])

	logo := rec.Assets[1]
	assert.Equal(t, 4, logo.Width)
	assert.Equal(t, 3, logo.Height)
}

func TestScan_MissingRoot(t *testing.T) {
	rec := New().Scan(context.Background(), filepath.Join(t.TempDir(), "absent"))

	assert.True(t, rec.ScannedAt.IsZero())
	assert.NotNil(t, rec.ContextSnippets)
	assert.NotNil(t, rec.Assets)
	assert.NotNil(t, rec.ProjectFingerprints)
	assert.Zero(t, rec.ContextCount)
	assert.Zero(t, rec.AssetCount)
}

// mismatchedXrefPDF returns a PDF whose xref entry for object 1 points at
// object 2.
func mismatchedXrefPDF() string {
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n",
	}
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		b.WriteString(obj)
	}
	xref := b.Len()
	b.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for _, off := range []int{offsets[1], offsets[1], offsets[2]} {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return b.String()
}

func TestScan_MalformedPDF(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"mismatched xref", mismatchedXrefPDF()},
		{"truncated", "%PDF-1.4\n1 0 obj\n<< /Type"},
		{"not a pdf", "just some text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "README.md", "# Phoenix\n\nStill here.")
			writeFile(t, root, "deck.pdf", tt.content)

			var rec Record
			require.NotPanics(t, func() {
				rec = New().Scan(context.Background(), root)
			})

			assert.Equal(t, 2, rec.ContextCount)
			require.NotEmpty(t, rec.ContextSnippets)
			assert.Equal(t, "README.md", rec.ContextSnippets[0].Path)
			for _, sn := range rec.ContextSnippets {
				assert.NotEqual(t, "deck.pdf", sn.Path)
			}
		})
	}
}

func TestReadPDF_MismatchedXref(t *testing.T) {
	path := writeFile(t, t.TempDir(), "deck.pdf", mismatchedXrefPDF())

	out, err := readPDF(path, 100)
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestScan_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "secret.md", "outside")
	if err := os.Symlink(filepath.Join(outside, "secret.md"), filepath.Join(root, "link.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	rec := New().Scan(context.Background(), root)
	assert.Zero(t, rec.ContextCount)
}

func TestScan_CancelledContext(t *testing.T) {
	root := sampleTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := New().Scan(ctx, root)
	assert.Zero(t, rec.ContextCount)
	assert.False(t, rec.ScannedAt.IsZero())
}

func TestMerge(t *testing.T) {
	limits := Limits{MaxAssets: 2, MaxSnippets: 2}
	a := Record{
		ContextSnippets:     []Snippet{{Path: "README.md", Snippet: "a"}},
		Assets:              []Asset{{Path: "x.png", Kind: AssetImage}},
		ProjectFingerprints: []Fingerprint{{File: "go.mod", Content: "module a"}},
		ContextCount:        1,
		AssetCount:          1,
		ScannedAt:           fixedClock(),
	}
	b := Record{
		ContextSnippets: []Snippet{{Path: "one.md"}, {Path: "two.md"}},
		Assets:          []Asset{{Path: "y.mp4", Kind: AssetVideo}, {Path: "z.mp4", Kind: AssetVideo}},
		ContextCount:    2,
		AssetCount:      5,
		ScannedAt:       fixedClock().Add(time.Hour),
	}

	merged := Merge(limits, []string{"primary", "other"}, []Record{a, b})

	assert.Equal(t, 3, merged.ContextCount)
	assert.Equal(t, 6, merged.AssetCount)
	assert.Equal(t, fixedClock().Add(time.Hour), merged.ScannedAt)
	assert.Equal(t, []Snippet{{Path: "primary/README.md", Snippet: "a"}, {Path: "other/one.md"}}, merged.ContextSnippets)
	assert.Equal(t, []string{"primary/x.png", "other/y.mp4"}, []string{merged.Assets[0].Path, merged.Assets[1].Path})
	assert.Equal(t, []string{"primary/go.mod"}, merged.FingerprintNames())
}
