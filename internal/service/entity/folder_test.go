package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

func TestFolderService_Create(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	svc := NewFolderService(s, testLogger(), WithIDGenerator(sequentialIDs("f")), WithClock(newTestClock().Now))

	root, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "  Work  ", SystemPrompt: "be terse"})
	require.NoError(t, err)
	assert.Equal(t, "f-1", root.ID)
	assert.Equal(t, "Work", root.Name)
	assert.Nil(t, root.ParentFolderID)
	assert.Equal(t, root.CreatedAt, root.UpdatedAt)

	child, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "Child", ParentFolderID: ptr("f-1")})
	require.NoError(t, err)
	require.NotNil(t, child.ParentFolderID)
	assert.Equal(t, "f-1", *child.ParentFolderID)

	// Blank parent means root
	top, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "Top", ParentFolderID: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, top.ParentFolderID)

	stored, err := svc.GetFolder(ctx, "f-1")
	require.NoError(t, err)
	assert.Equal(t, root, stored)
}

func TestFolderService_CreateErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewFolderService(newTestStore(), testLogger())

	_, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "orphan", ParentFolderID: ptr("missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestFolderService_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewFolderService(newTestStore(), testLogger(), WithIDGenerator(sequentialIDs("f")), WithClock(newTestClock().Now))

	a, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "A", SystemPrompt: "old"})
	require.NoError(t, err)
	b, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "B"})
	require.NoError(t, err)

	updated, err := svc.UpdateFolder(ctx, a.ID, &services.UpdateFolderRequest{SystemPrompt: ptr("new")})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Name, "unset fields are kept")
	assert.Equal(t, "new", updated.SystemPrompt)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	moved, err := svc.UpdateFolder(ctx, b.ID, &services.UpdateFolderRequest{
		ParentFolderID: models.Set(ptr(a.ID)),
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, *moved.ParentFolderID)

	toRoot, err := svc.UpdateFolder(ctx, b.ID, &services.UpdateFolderRequest{
		ParentFolderID: models.Set(nil),
	})
	require.NoError(t, err)
	assert.Nil(t, toRoot.ParentFolderID)

	missing, err := svc.UpdateFolder(ctx, "nope", &services.UpdateFolderRequest{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.UpdateFolder(ctx, a.ID, &services.UpdateFolderRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateFolder(ctx, a.ID, &services.UpdateFolderRequest{Name: ptr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFolderService_MoveRejectsCycles(t *testing.T) {
	ctx := context.Background()
	svc := NewFolderService(newTestStore(), testLogger(), WithIDGenerator(sequentialIDs("f")))

	// f-1 > f-2 > f-3
	_, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "1"})
	require.NoError(t, err)
	_, err = svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "2", ParentFolderID: ptr("f-1")})
	require.NoError(t, err)
	_, err = svc.CreateFolder(ctx, &services.CreateFolderRequest{Name: "3", ParentFolderID: ptr("f-2")})
	require.NoError(t, err)

	tests := []struct {
		name      string
		folder    string
		newParent string
		wantErr   error
	}{
		{"own parent", "f-1", "f-1", domain.ErrValidation},
		{"direct child", "f-1", "f-2", domain.ErrValidation},
		{"grandchild", "f-1", "f-3", domain.ErrValidation},
		{"missing parent", "f-3", "nope", domain.ErrNotFound},
		{"sibling move is fine", "f-3", "f-1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateFolder(ctx, tt.folder, &services.UpdateFolderRequest{
				ParentFolderID: models.Set(ptr(tt.newParent)),
			})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFolderService_MoveWithExistingCycleAbove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	svc := NewFolderService(s, testLogger())

	// x and y already point at each other (written by another client)
	require.NoError(t, store.Put(ctx, s, repositories.Folders, models.Folder{ID: "x", Name: "x", ParentFolderID: ptr("y")}))
	require.NoError(t, store.Put(ctx, s, repositories.Folders, models.Folder{ID: "y", Name: "y", ParentFolderID: ptr("x")}))
	require.NoError(t, store.Put(ctx, s, repositories.Folders, models.Folder{ID: "z", Name: "z"}))

	moved, err := svc.UpdateFolder(ctx, "z", &services.UpdateFolderRequest{
		ParentFolderID: models.Set(ptr("x")),
	})
	require.NoError(t, err, "the walk terminates")
	assert.Equal(t, "x", *moved.ParentFolderID)
}

func TestFolderService_DeleteDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	folders := NewFolderService(s, testLogger(), WithIDGenerator(sequentialIDs("f")))
	groups := NewChatGroupService(s, testLogger(), WithIDGenerator(sequentialIDs("g")))

	_, err := folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: "parent"})
	require.NoError(t, err)
	_, err = folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: "child", ParentFolderID: ptr("f-1")})
	require.NoError(t, err)
	_, err = groups.CreateChatGroup(ctx, &services.CreateChatGroupRequest{Name: "chat", FolderID: ptr("f-1")})
	require.NoError(t, err)

	require.NoError(t, folders.DeleteFolder(ctx, "f-1"))
	require.NoError(t, folders.DeleteFolder(ctx, "f-1"), "deleting twice is fine")

	child, err := folders.GetFolder(ctx, "f-2")
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.Equal(t, "f-1", *child.ParentFolderID, "dangling reference kept")

	group, err := groups.GetChatGroup(ctx, "g-1")
	require.NoError(t, err)
	require.NotNil(t, group)
}

func TestFolderService_Tree(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	svc := NewFolderService(s, testLogger())

	put := func(f models.Folder) {
		require.NoError(t, store.Put(ctx, s, repositories.Folders, f))
	}
	put(models.Folder{ID: "a", Name: "A", SystemPrompt: "p"})
	put(models.Folder{ID: "b", Name: "B", ParentFolderID: ptr("a")})
	put(models.Folder{ID: "dangling", Name: "D", ParentFolderID: ptr("gone")})
	put(models.Folder{ID: "c1", Name: "C1", ParentFolderID: ptr("c2")})
	put(models.Folder{ID: "c2", Name: "C2", ParentFolderID: ptr("c1")})

	require.NoError(t, store.Put(ctx, s, repositories.ChatGroups, models.ChatGroup{ID: "g1", FolderID: ptr("b")}))
	require.NoError(t, store.Put(ctx, s, repositories.ChatGroups, models.ChatGroup{ID: "g2"}))
	require.NoError(t, store.Put(ctx, s, repositories.ChatGroups, models.ChatGroup{ID: "g3", FolderID: ptr("gone")}))

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)

	rootIDs := make([]string, 0, len(tree.Folders))
	for _, n := range tree.Folders {
		rootIDs = append(rootIDs, n.ID)
	}
	assert.Equal(t, []string{"a", "dangling", "c1", "c2"}, rootIDs)
	assert.Equal(t, []string{"g2", "g3"}, tree.ChatGroupIDs)

	a := tree.Folders[0]
	assert.True(t, a.HasSystemPrompt)
	require.Len(t, a.Folders, 1)
	assert.Equal(t, "b", a.Folders[0].ID)
	assert.Equal(t, []string{"g1"}, a.Folders[0].ChatGroupIDs)
}
