package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/phoenix/internal/testutil"
)

func newBucket(t *testing.T, files ...string) (bucket, processed string) {
	t.Helper()
	root := t.TempDir()
	bucket = filepath.Join(root, "bucket")
	processed = filepath.Join(bucket, "processed")
	require.NoError(t, os.MkdirAll(processed, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(bucket, f), []byte("data"), 0644))
	}
	return bucket, processed
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestProcess_ProposesAssetsInOrder(t *testing.T) {
	bucket, processed := newBucket(t, "zeta.mp4", "alpha.png", "notes.txt", "beta.JPG")
	require.NoError(t, os.WriteFile(filepath.Join(processed, "old.png"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(bucket, "nested.png"), 0755))

	table := NewTable()
	bp := NewBucketProcessor(table, bucket, processed, WithProcessorClock(fixedClock))

	got, err := bp.Process(context.Background(), ProcessRequest{Focus: "Launch"})
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, p.AssetName)
	}
	assert.Equal(t, []string{"alpha.png", "beta.JPG", "zeta.mp4"}, names)

	assert.Equal(t, ClassFree, got[0].Classification)
	assert.Equal(t, ClassPremium, got[2].Classification)
	assert.Equal(t, "instagram", got[0].Plan.Platform)
	assert.Equal(t, "youtube", got[2].Plan.Platform)
	assert.Equal(t, StatusAwaitingApproval, got[0].Status)
	assert.Regexp(t, `^wf_\d+_[0-9a-f]{8}$`, got[0].ID)
	assert.Equal(t, fixedClock(), got[0].CreatedAt)
	assert.Len(t, got[0].Plan.Tasks, 3)
	assert.Equal(t, 3, table.Len())
}

func TestProcess_TwicePassesDoubleProposals(t *testing.T) {
	bucket, processed := newBucket(t, "clip.mov")
	table := NewTable()
	bp := NewBucketProcessor(table, bucket, processed)

	first, err := bp.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)
	second, err := bp.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].AssetName, second[0].AssetName)
	assert.Equal(t, 2, table.Len())
}

func TestProcess_SteerInDescription(t *testing.T) {
	bucket, processed := newBucket(t, "hero.webp")
	bp := NewBucketProcessor(NewTable(), bucket, processed)

	got, err := bp.Process(context.Background(), ProcessRequest{Steer: "focus on Seattle"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Description, "hero.webp")
	assert.Contains(t, got[0].Description, "focus on Seattle")
	assert.Equal(t, "focus on Seattle", got[0].Steer)
	assert.Contains(t, got[0].Plan.Story, "focus on Seattle")
}

func TestProcess_MissingBucket(t *testing.T) {
	bp := NewBucketProcessor(NewTable(), filepath.Join(t.TempDir(), "absent"), "")

	got, err := bp.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

type stubPlanner struct {
	plan Plan
	err  error
}

func (s stubPlanner) Plan(context.Context, PlanRequest) (Plan, error) {
	return s.plan, s.err
}

func TestProcess_Planner(t *testing.T) {
	t.Run("planned", func(t *testing.T) {
		bucket, processed := newBucket(t, "a.png")
		planned := Plan{Title: "Custom", Story: "s", Tasks: [][2]string{{"Analyst", "Measure"}}}
		bp := NewBucketProcessor(NewTable(), bucket, processed, WithPlanner(stubPlanner{plan: planned}))

		got, err := bp.Process(context.Background(), ProcessRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Custom", got[0].Plan.Title)
		assert.Equal(t, "instagram", got[0].Plan.Platform, "empty platform falls back to default")
	})

	t.Run("fallback", func(t *testing.T) {
		bucket, processed := newBucket(t, "a.png")
		bp := NewBucketProcessor(NewTable(), bucket, processed, WithPlanner(stubPlanner{err: errors.New("offline")}))

		got, err := bp.Process(context.Background(), ProcessRequest{})
		require.NoError(t, err)
		assert.Equal(t, DefaultPlan(PlanRequest{AssetName: "a.png"}), got[0].Plan)
	})
}

func TestLLMPlanner(t *testing.T) {
	reply := "```json\n" + `{"title": "Reel", "story": "Rise", "tasks": [["Creative", "Cut reel"]], "platform": "Instagram"}` + "\n```"
	gen := testutil.NewFakeGenerator("fake", reply)
	planner := NewLLMPlanner(testutil.StaticSource{Generator: gen}, nil)

	plan, err := planner.Plan(context.Background(), PlanRequest{AssetName: "a.png", Focus: "Spring", Brand: Brand{Name: "Ash"}})
	require.NoError(t, err)
	assert.Equal(t, Plan{Title: "Reel", Story: "Rise", Tasks: [][2]string{{"Creative", "Cut reel"}}, Platform: "instagram"}, plan)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].UserPrompt, "'a.png'")
	assert.Contains(t, reqs[0].UserPrompt, "USER MISSION FOCUS: Spring")
	assert.Contains(t, reqs[0].UserPrompt, `"brand_name":"Ash"`)

	bad := NewLLMPlanner(testutil.StaticSource{Generator: testutil.NewFakeGenerator("fake", `{"title": "x"}`)}, nil)
	_, err = bad.Plan(context.Background(), PlanRequest{AssetName: "a.png"})
	assert.Error(t, err)
}
