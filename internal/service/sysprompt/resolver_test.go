package sysprompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/repository/memory"
	"chatterhub/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

type fixture struct {
	t     *testing.T
	store *store.Store
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, store: store.New(memory.NewDriver(), testLogger())}
}

func (f *fixture) folder(id, prompt string, parent *string) {
	f.t.Helper()
	require.NoError(f.t, store.Put(context.Background(), f.store, repositories.Folders,
		models.Folder{ID: id, Name: "folder " + id, SystemPrompt: prompt, ParentFolderID: parent}))
}

func (f *fixture) group(id, own string, folder *string) {
	f.t.Helper()
	require.NoError(f.t, store.Put(context.Background(), f.store, repositories.ChatGroups,
		models.ChatGroup{ID: id, Name: "group " + id, OwnSystemPrompt: own, FolderID: folder}))
}

func (f *fixture) resolver() *Resolver {
	return NewResolver(f.store, testLogger())
}

// scenario: A("Be concise") > B(""), G1 in B, G2 in B with "Be verbose"
func scenario(t *testing.T) *fixture {
	f := newFixture(t)
	f.folder("A", "Be concise", nil)
	f.folder("B", "", ptr("A"))
	f.group("G1", "", ptr("B"))
	f.group("G2", "Be verbose", ptr("B"))
	return f
}

func TestEffectivePrompt_Scenario(t *testing.T) {
	ctx := context.Background()
	r := scenario(t).resolver()

	g1, err := r.EffectivePrompt(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectivePrompt{Prompt: "Be concise", Source: models.PromptSourceFolder, SourceID: "A"}, g1)

	g2, err := r.EffectivePrompt(ctx, "G2")
	require.NoError(t, err)
	assert.Equal(t, models.EffectivePrompt{Prompt: "Be verbose", Source: models.PromptSourceChat, SourceID: "G2"}, g2)

	affected, err := r.AffectedChatGroups(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"G1"}, affected)
}

func TestEffectivePrompt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.folder("root", "root prompt", nil)
	f.folder("mid", "mid prompt", ptr("root"))
	f.folder("leaf", "", ptr("mid"))
	f.folder("bare", "", nil)
	f.folder("orphan", "", ptr("deleted"))
	f.group("in-leaf", "", ptr("leaf"))
	f.group("in-root", "", ptr("root"))
	f.group("in-bare", "", ptr("bare"))
	f.group("unfiled", "", nil)
	f.group("dangling", "", ptr("deleted"))
	f.group("via-orphan", "", ptr("orphan"))
	r := f.resolver()

	tests := []struct {
		group string
		want  models.EffectivePrompt
	}{
		{"in-leaf", models.EffectivePrompt{Prompt: "mid prompt", Source: models.PromptSourceFolder, SourceID: "mid"}},
		{"in-root", models.EffectivePrompt{Prompt: "root prompt", Source: models.PromptSourceFolder, SourceID: "root"}},
		{"in-bare", models.NoPrompt()},
		{"unfiled", models.NoPrompt()},
		{"dangling", models.NoPrompt()},
		{"via-orphan", models.NoPrompt()},
		{"missing-group", models.NoPrompt()},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, err := r.EffectivePrompt(ctx, tt.group)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EffectivePrompt(%s) mismatch (-want +got):\n%s", tt.group, diff)
			}
		})
	}
}

func TestEffectivePrompt_ReadsCurrentState(t *testing.T) {
	ctx := context.Background()
	f := scenario(t)
	r := f.resolver()

	f.folder("B", "B now has one", ptr("A"))
	got, err := r.EffectivePrompt(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "B", got.SourceID)
}

func TestEffectivePrompt_CycleTerminates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.folder("x", "", ptr("y"))
	f.folder("y", "", ptr("z"))
	f.folder("z", "", ptr("x"))
	f.folder("self", "", ptr("self"))
	f.group("g", "", ptr("x"))
	f.group("s", "", ptr("self"))
	r := f.resolver()

	for _, id := range []string{"g", "s"} {
		got, err := r.EffectivePrompt(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.NoPrompt(), got)
	}

	inherited, err := r.InheritedForFolder(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, models.NoPrompt(), inherited)

	path, err := r.AncestryPath(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, []models.FolderRef{
		{ID: "z", Name: "folder z"},
		{ID: "y", Name: "folder y"},
		{ID: "x", Name: "folder x"},
	}, path)
}

// A cycle above a folder with a prompt still resolves to that prompt
func TestEffectivePrompt_PromptBeforeCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.folder("p", "found", ptr("q"))
	f.folder("q", "", ptr("p"))
	f.group("g", "", ptr("p"))

	got, err := f.resolver().EffectivePrompt(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "found", got.Prompt)
}

func TestEffectivePrompt_WalkBoundedByFolderCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const n = 50
	for i := 0; i < n; i++ {
		f.folder(fmt.Sprintf("f%d", i), "", ptr(fmt.Sprintf("f%d", (i+1)%n)))
	}
	f.group("g", "", ptr("f0"))

	var reads atomic.Int32
	r := f.resolver()
	visited := map[string]bool{}
	got, err := r.walk(ctx, "f0", visited, func(ctx context.Context, id string) (*models.Folder, error) {
		reads.Add(1)
		return r.storeLookup(ctx, id)
	})
	require.NoError(t, err)
	assert.Equal(t, models.NoPrompt(), got)
	assert.Equal(t, int32(n), reads.Load())
}

func TestInheritedForFolder(t *testing.T) {
	ctx := context.Background()
	f := scenario(t)
	f.folder("C", "C's own", ptr("B"))
	r := f.resolver()

	tests := []struct {
		folder string
		want   models.EffectivePrompt
	}{
		{"C", models.EffectivePrompt{Prompt: "Be concise", Source: models.PromptSourceFolder, SourceID: "A"}},
		{"B", models.EffectivePrompt{Prompt: "Be concise", Source: models.PromptSourceFolder, SourceID: "A"}},
		{"A", models.NoPrompt()},
		{"missing", models.NoPrompt()},
	}

	for _, tt := range tests {
		t.Run(tt.folder, func(t *testing.T) {
			got, err := r.InheritedForFolder(ctx, tt.folder)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAffectedChatGroups_InverseOfEffective(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.folder("r1", "one", nil)
	f.folder("r1a", "", ptr("r1"))
	f.folder("r1b", "two", ptr("r1"))
	f.folder("r2", "", nil)
	f.folder("loop1", "", ptr("loop2"))
	f.folder("loop2", "", ptr("loop1"))
	f.group("g1", "", ptr("r1"))
	f.group("g2", "", ptr("r1a"))
	f.group("g3", "", ptr("r1b"))
	f.group("g4", "own", ptr("r1"))
	f.group("g5", "", ptr("r2"))
	f.group("g6", "", nil)
	f.group("g7", "", ptr("loop1"))
	r := f.resolver()

	folders, err := store.All[models.Folder](ctx, f.store, repositories.Folders)
	require.NoError(t, err)
	groups, err := store.All[models.ChatGroup](ctx, f.store, repositories.ChatGroups)
	require.NoError(t, err)

	for _, folder := range folders {
		affected, err := r.AffectedChatGroups(ctx, folder.ID)
		require.NoError(t, err)

		var want []string
		for _, g := range groups {
			ep, err := r.EffectivePrompt(ctx, g.ID)
			require.NoError(t, err)
			if ep.Source == models.PromptSourceFolder && ep.SourceID == folder.ID {
				want = append(want, g.ID)
			}
		}
		if diff := cmp.Diff(want, affected, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("AffectedChatGroups(%s) mismatch (-want +got):\n%s", folder.ID, diff)
		}
	}

	affected, err := r.AffectedChatGroups(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, affected)

	none, err := r.AffectedChatGroups(ctx, "r2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAncestryPath(t *testing.T) {
	ctx := context.Background()
	f := scenario(t)
	f.folder("orphan", "", ptr("gone"))
	f.group("unfiled", "", nil)
	f.group("in-orphan", "", ptr("orphan"))
	f.group("dangling", "", ptr("gone"))
	r := f.resolver()

	tests := []struct {
		group string
		want  []models.FolderRef
	}{
		{"G1", []models.FolderRef{{ID: "A", Name: "folder A"}, {ID: "B", Name: "folder B"}}},
		{"unfiled", []models.FolderRef{}},
		{"in-orphan", []models.FolderRef{{ID: "orphan", Name: "folder orphan"}}},
		{"dangling", []models.FolderRef{}},
		{"missing", []models.FolderRef{}},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, err := r.AncestryPath(ctx, tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreviewFolderPrompt(t *testing.T) {
	ctx := context.Background()
	f := scenario(t)
	f.group("G3", "", ptr("A"))
	r := f.resolver()

	// Giving B a prompt takes G1 away from A; G2 overrides and G3 sits above B
	changes, err := r.PreviewFolderPrompt(ctx, "B", "From B")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "G1", changes[0].ChatGroupID)
	assert.Equal(t, "A", changes[0].Before.SourceID)
	assert.Equal(t, models.EffectivePrompt{Prompt: "From B", Source: models.PromptSourceFolder, SourceID: "B"}, changes[0].After)

	// Clearing A leaves G1 and G3 with nothing
	changes, err = r.PreviewFolderPrompt(ctx, "A", "")
	require.NoError(t, err)
	ids := make([]string, 0, len(changes))
	for _, c := range changes {
		ids = append(ids, c.ChatGroupID)
		assert.Equal(t, models.NoPrompt(), c.After)
	}
	assert.Equal(t, []string{"G1", "G3"}, ids)

	// Same value: nothing changes
	changes, err = r.PreviewFolderPrompt(ctx, "A", "Be concise")
	require.NoError(t, err)
	assert.Empty(t, changes)

	changes, err = r.PreviewFolderPrompt(ctx, "missing", "x")
	require.NoError(t, err)
	assert.Empty(t, changes)

	// Preview never writes
	a, err := store.Get[models.Folder](ctx, f.store, repositories.Folders, "A")
	require.NoError(t, err)
	assert.Equal(t, "Be concise", a.SystemPrompt)
}

// failingDriver fails every read once broken is set
type failingDriver struct {
	*memory.Driver
	broken atomic.Bool
}

var errDisk = errors.New("disk unavailable")

func (d *failingDriver) Get(ctx context.Context, c repositories.Collection, id string) ([]byte, bool, error) {
	if d.broken.Load() {
		return nil, false, errDisk
	}
	return d.Driver.Get(ctx, c, id)
}

func (d *failingDriver) List(ctx context.Context, c repositories.Collection, f repositories.Filter) ([][]byte, error) {
	if d.broken.Load() {
		return nil, errDisk
	}
	return d.Driver.List(ctx, c, f)
}

func TestResolver_StorageFaultsDegrade(t *testing.T) {
	ctx := context.Background()
	d := &failingDriver{Driver: memory.NewDriver()}
	s := store.New(d, testLogger())
	require.NoError(t, store.Put(ctx, s, repositories.Folders, models.Folder{ID: "A", SystemPrompt: "x"}))
	require.NoError(t, store.Put(ctx, s, repositories.ChatGroups, models.ChatGroup{ID: "G", FolderID: ptr("A")}))
	r := NewResolver(s, testLogger())

	d.broken.Store(true)

	ep, err := r.EffectivePrompt(ctx, "G")
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, models.NoPrompt(), ep)

	ep, err = r.InheritedForFolder(ctx, "A")
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, models.NoPrompt(), ep)

	affected, err := r.AffectedChatGroups(ctx, "A")
	assert.ErrorIs(t, err, errDisk)
	assert.Empty(t, affected)

	path, err := r.AncestryPath(ctx, "G")
	assert.ErrorIs(t, err, errDisk)
	assert.Empty(t, path)

	changes, err := r.PreviewFolderPrompt(ctx, "A", "y")
	assert.ErrorIs(t, err, errDisk)
	assert.Empty(t, changes)
}
