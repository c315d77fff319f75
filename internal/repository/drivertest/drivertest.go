// Package drivertest holds the behavior every repositories.Driver must share.
package drivertest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/domain/repositories"
)

type doc struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"`
	FolderID       *string `json:"folder_id"`
	IsActive       bool    `json:"is_active"`
}

func encode(t *testing.T, d doc) []byte {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	return b
}

func names(t *testing.T, docs [][]byte) []string {
	t.Helper()
	out := make([]string, 0, len(docs))
	for _, b := range docs {
		var d doc
		require.NoError(t, json.Unmarshal(b, &d))
		out = append(out, d.Name)
	}
	return out
}

func ptr(s string) *string { return &s }

// Run exercises a driver. newDriver must return an empty driver each call.
func Run(t *testing.T, newDriver func(t *testing.T) repositories.Driver) {
	ctx := context.Background()

	t.Run("get missing id", func(t *testing.T) {
		d := newDriver(t)
		got, found, err := d.Get(ctx, repositories.Prompts, "nope")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("put then get", func(t *testing.T) {
		d := newDriver(t)
		require.NoError(t, d.Put(ctx, repositories.Prompts, "p1", encode(t, doc{ID: "p1", Name: "first"})))

		got, found, err := d.Get(ctx, repositories.Prompts, "p1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []string{"first"}, names(t, [][]byte{got}))
	})

	t.Run("collections are separate", func(t *testing.T) {
		d := newDriver(t)
		require.NoError(t, d.Put(ctx, repositories.Prompts, "x", encode(t, doc{ID: "x", Name: "prompt"})))

		_, found, err := d.Get(ctx, repositories.Folders, "x")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("list keeps insertion order across updates", func(t *testing.T) {
		d := newDriver(t)
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, d.Put(ctx, repositories.Prompts, name, encode(t, doc{ID: name, Name: name})))
		}
		// Replacing a record keeps its position
		require.NoError(t, d.Put(ctx, repositories.Prompts, "a", encode(t, doc{ID: "a", Name: "a2"})))

		docs, err := d.List(ctx, repositories.Prompts, repositories.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "b", "c"}, names(t, docs))
	})

	t.Run("delete", func(t *testing.T) {
		d := newDriver(t)
		require.NoError(t, d.Put(ctx, repositories.Prompts, "p1", encode(t, doc{ID: "p1", Name: "x"})))
		require.NoError(t, d.Delete(ctx, repositories.Prompts, "p1"))
		require.NoError(t, d.Delete(ctx, repositories.Prompts, "p1"), "deleting a missing id is a no-op")

		_, found, err := d.Get(ctx, repositories.Prompts, "p1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("filter by string field", func(t *testing.T) {
		d := newDriver(t)
		require.NoError(t, d.Put(ctx, repositories.Folders, "root", encode(t, doc{ID: "root", Name: "root"})))
		require.NoError(t, d.Put(ctx, repositories.Folders, "c1", encode(t, doc{ID: "c1", Name: "c1", ParentFolderID: ptr("root")})))
		require.NoError(t, d.Put(ctx, repositories.Folders, "other", encode(t, doc{ID: "other", Name: "other", ParentFolderID: ptr("x")})))
		require.NoError(t, d.Put(ctx, repositories.Folders, "c2", encode(t, doc{ID: "c2", Name: "c2", ParentFolderID: ptr("root")})))

		docs, err := d.List(ctx, repositories.Folders, repositories.Where("parent_folder_id", "root"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, names(t, docs))
	})

	t.Run("filter by nil matches absent and null", func(t *testing.T) {
		d := newDriver(t)
		// parent_folder_id is omitted when nil; folder_id is written as null
		require.NoError(t, d.Put(ctx, repositories.Folders, "root", encode(t, doc{ID: "root", Name: "root"})))
		require.NoError(t, d.Put(ctx, repositories.Folders, "child", encode(t, doc{ID: "child", Name: "child", ParentFolderID: ptr("root")})))
		require.NoError(t, d.Put(ctx, repositories.ChatGroups, "g1", encode(t, doc{ID: "g1", Name: "unfiled"})))
		require.NoError(t, d.Put(ctx, repositories.ChatGroups, "g2", encode(t, doc{ID: "g2", Name: "filed", FolderID: ptr("root")})))

		docs, err := d.List(ctx, repositories.Folders, repositories.Where("parent_folder_id", nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"root"}, names(t, docs))

		docs, err = d.List(ctx, repositories.ChatGroups, repositories.Where("folder_id", nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"unfiled"}, names(t, docs))
	})

	t.Run("filter by bool field", func(t *testing.T) {
		d := newDriver(t)
		require.NoError(t, d.Put(ctx, repositories.MCPServers, "on", encode(t, doc{ID: "on", Name: "on", IsActive: true})))
		require.NoError(t, d.Put(ctx, repositories.MCPServers, "off", encode(t, doc{ID: "off", Name: "off"})))

		docs, err := d.List(ctx, repositories.MCPServers, repositories.Where("is_active", true))
		require.NoError(t, err)
		assert.Equal(t, []string{"on"}, names(t, docs))

		docs, err = d.List(ctx, repositories.MCPServers, repositories.Where("is_active", false))
		require.NoError(t, err)
		assert.Equal(t, []string{"off"}, names(t, docs))
	})

	t.Run("filter on unindexed field is rejected", func(t *testing.T) {
		d := newDriver(t)
		_, err := d.List(ctx, repositories.Prompts, repositories.Where("title", "x"))
		assert.Error(t, err)
	})

	t.Run("empty collection lists nothing", func(t *testing.T) {
		d := newDriver(t)
		docs, err := d.List(ctx, repositories.ImageAttachments, repositories.Filter{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
