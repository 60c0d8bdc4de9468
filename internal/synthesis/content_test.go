package synthesis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/testutil"
)

func TestLoadProfile(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Profile
	}{
		{
			name: "snake case with voice",
			doc:  `{"brand_name":"Phoenix","mission":"Protect","voice":{"tone":"Bold","signature_phrases":["Rise"]}}`,
			want: Profile{BrandName: "Phoenix", Mission: "Protect", Tone: "Bold", SignaturePhrases: []string{"Rise"}},
		},
		{
			name: "camel case flat",
			doc:  `{"brandName":"Ash","tone":"Calm","signaturePhrases":["Steady"]}`,
			want: Profile{BrandName: "Ash", Tone: "Calm", SignaturePhrases: []string{"Steady"}},
		},
		{
			name: "unknown shape",
			doc:  `{"colors":["red"]}`,
			want: Profile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "brand_profile.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0644))

			got, err := LoadProfile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadProfile_Missing(t *testing.T) {
	got, err := LoadProfile(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Profile{}, got)
}

func TestProfile_SystemPrompt(t *testing.T) {
	p := Profile{BrandName: "Phoenix", Mission: "Protect", Tone: "Bold", SignaturePhrases: []string{"Rise", "Hold"}}
	prompt := p.SystemPrompt()

	assert.Contains(t, prompt, "Brand Content Engine for Phoenix")
	assert.Contains(t, prompt, "Mission: Protect")
	assert.Contains(t, prompt, "Tone: Bold")
	assert.Contains(t, prompt, "Rise, Hold")
}

func TestContentEngine_Generate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand_profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"brand_name":"Phoenix"}`), 0644))

	gen := testutil.NewFakeGenerator("fake", "Draft alert")
	engine := NewContentEngine(testutil.StaticSource{Generator: gen}, path, nil)

	resp, err := engine.Generate(context.Background(), "Draft a community alert", "")
	require.NoError(t, err)
	assert.Equal(t, "Draft alert", resp.Content)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, providers.TaskDefault, reqs[0].Task)
	assert.Contains(t, reqs[0].SystemPrompt, "Phoenix")
	assert.False(t, reqs[0].JSON)

	_, err = engine.Generate(context.Background(), "  ", "creative")
	assert.Error(t, err)
}
