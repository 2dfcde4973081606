package vfs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

func upload(t *testing.T, svc *Service, path, name, content, mimeType string) {
	t.Helper()
	_, err := svc.UploadFile(context.Background(), owner, path, name,
		strings.NewReader(content), int64(len(content)), mimeType)
	require.NoError(t, err)
}

func TestCreateFolderThenList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, owner, "/", "Docs")
	require.NoError(t, err)
	assert.True(t, folder.IsFolder)
	assert.Equal(t, "Docs", folder.Name)
	assert.Equal(t, "/", folder.Path)
	assert.Equal(t, owner+"/Docs/", folder.ObjectKey)
	assert.Zero(t, folder.Size)
	assert.Nil(t, folder.MimeType)

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Docs", entries[0].Name)
}

func TestCreateFolder_SiblingConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, owner, "/", "Docs")
	require.NoError(t, err)

	_, err = svc.CreateFolder(ctx, owner, "/", "Docs")
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestCreateFolder_SameNameDifferentOwners(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, "alice", "/", "Docs")
	require.NoError(t, err)
	_, err = svc.CreateFolder(ctx, "bob", "/", "Docs")
	require.NoError(t, err)
}

func TestCreateFolder_InvalidNames(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, name := range []string{"", "   ", "a/b", strings.Repeat("x", 256), ".", ".."} {
		_, err := svc.CreateFolder(ctx, owner, "/", name)
		require.Error(t, err, "name %q should be rejected", name)
		assert.True(t, IsValidation(err), "name %q should be a validation error, got %v", name, err)
	}
}

func TestUploadFileThenList(t *testing.T) {
	svc, _, objects := newTestService()
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, owner, "/", "Docs")
	require.NoError(t, err)

	upload(t, svc, "/Docs/", "a.txt", "hello", "text/plain")

	entries, err := svc.ListEntries(ctx, owner, "/Docs/", Filters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.EqualValues(t, 5, entries[0].Size)
	assert.False(t, entries[0].IsFolder)
	require.NotNil(t, entries[0].MimeType)
	assert.Equal(t, "text/plain", *entries[0].MimeType)

	// payload landed at the expected flat key
	data, ok := objects.objects[owner+"/Docs/a.txt"]
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))
}

func TestUploadFile_DuplicateNamesCreateDistinctEntries(t *testing.T) {
	// Unlike folder creation, file upload does not enforce sibling
	// uniqueness: two uploads of the same name yield two entries.
	svc, _, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "a.txt", "one", "text/plain")
	upload(t, svc, "/", "a.txt", "two", "text/plain")

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUploadFile_ObjectWriteFailureLeavesNoMetadata(t *testing.T) {
	svc, meta, objects := newTestService()
	objects.failPutKeys[owner+"/a.txt"] = true

	_, err := svc.UploadFile(context.Background(), owner, "/", "a.txt",
		strings.NewReader("x"), 1, "text/plain")
	require.Error(t, err)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, meta.all(owner))
}

func TestUploadGateClosed(t *testing.T) {
	meta := newMemStore()
	objects := newMemObjects()
	svc := New(meta, objects, &stubGate{open: false})
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, owner, "/", "Docs")
	assert.ErrorIs(t, err, ErrUploadWindowClosed)

	_, err = svc.UploadFile(ctx, owner, "/", "a.txt", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrUploadWindowClosed)

	_, _, err = svc.UploadTree(ctx, owner, "/", []TreeItem{
		{RelativePath: "a.txt", Reader: strings.NewReader("x"), Size: 1},
	})
	assert.ErrorIs(t, err, ErrUploadWindowClosed)

	// Nothing slipped through while the window was closed.
	assert.Empty(t, meta.all(owner))
	assert.Empty(t, objects.objects)

	// Reads stay open.
	_, err = svc.ListEntries(ctx, owner, "/", Filters{})
	assert.NoError(t, err)
}

func TestUploadTree_Reconstruction(t *testing.T) {
	svc, meta, _ := newTestService()
	ctx := context.Background()

	uploaded, itemErrors, err := svc.UploadTree(ctx, owner, "/", []TreeItem{
		{RelativePath: "a/b/x.txt", Reader: strings.NewReader("x"), Size: 1, MimeType: "text/plain"},
		{RelativePath: "a/b/y.txt", Reader: strings.NewReader("y"), Size: 1, MimeType: "text/plain"},
		{RelativePath: "a/c/z.txt", Reader: strings.NewReader("z"), Size: 1, MimeType: "text/plain"},
	})
	require.NoError(t, err)
	assert.Empty(t, itemErrors)
	require.Len(t, uploaded, 3)

	// Exactly three folders materialized, "a" only once.
	var folders, files []string
	for _, e := range meta.all(owner) {
		if e.IsFolder {
			folders = append(folders, e.Path+e.Name+"/")
		} else {
			files = append(files, e.Path+e.Name)
		}
	}
	assert.ElementsMatch(t, []string{"/a/", "/a/b/", "/a/c/"}, folders)
	assert.ElementsMatch(t, []string{"/a/b/x.txt", "/a/b/y.txt", "/a/c/z.txt"}, files)

	// Every entry's object key extends its ancestor folder keys.
	for _, e := range meta.all(owner) {
		assert.True(t, strings.HasPrefix(e.ObjectKey, owner+"/"))
		if e.Path != "/" {
			parentKey := owner + e.Path
			assert.True(t, strings.HasPrefix(e.ObjectKey, parentKey),
				"%s should start with %s", e.ObjectKey, parentKey)
		}
	}
}

func TestUploadTree_ExistingFolderIsNotAConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, owner, "/", "a")
	require.NoError(t, err)

	uploaded, itemErrors, err := svc.UploadTree(ctx, owner, "/", []TreeItem{
		{RelativePath: "a/x.txt", Reader: strings.NewReader("x"), Size: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, itemErrors)
	assert.Len(t, uploaded, 1)

	// Still exactly one "a" folder.
	entries, err := svc.ListEntries(ctx, owner, "/", Filters{TypeCategory: TypeFolder})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUploadTree_PartialFailure(t *testing.T) {
	svc, _, objects := newTestService()
	objects.failPutKeys[owner+"/a/bad.txt"] = true

	uploaded, itemErrors, err := svc.UploadTree(context.Background(), owner, "/", []TreeItem{
		{RelativePath: "a/good.txt", Reader: strings.NewReader("g"), Size: 1},
		{RelativePath: "a/bad.txt", Reader: strings.NewReader("b"), Size: 1},
		{RelativePath: "a/also-good.txt", Reader: strings.NewReader("g"), Size: 1},
	})
	require.NoError(t, err)
	assert.Len(t, uploaded, 2)
	require.Len(t, itemErrors, 1)
	assert.Contains(t, itemErrors[0], "a/bad.txt")
}

func TestDeleteEntry_File(t *testing.T) {
	svc, meta, objects := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "a.txt", "hello", "text/plain")
	entries := meta.all(owner)
	require.Len(t, entries, 1)

	require.NoError(t, svc.DeleteEntry(ctx, owner, entries[0].ID))
	assert.Empty(t, meta.all(owner))
	assert.Empty(t, objects.objects)
}

func TestDeleteEntry_FolderRecursive(t *testing.T) {
	svc, meta, objects := newTestService()
	ctx := context.Background()

	docs, err := svc.CreateFolder(ctx, owner, "/", "Docs")
	require.NoError(t, err)
	_, _, err = svc.UploadTree(ctx, owner, "/Docs/", []TreeItem{
		{RelativePath: "deep/nested/tree/file.txt", Reader: strings.NewReader("x"), Size: 1},
		{RelativePath: "top.txt", Reader: strings.NewReader("y"), Size: 1},
	})
	require.NoError(t, err)
	upload(t, svc, "/", "outside.txt", "keep me", "text/plain")

	require.NoError(t, svc.DeleteEntry(ctx, owner, docs.ID))

	// No objects remain under the folder's key prefix.
	keys, err := objects.ListByPrefix(ctx, docs.ObjectKey)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// No metadata remains under the folder's addressing prefix, at any depth.
	for _, e := range meta.all(owner) {
		assert.False(t, strings.HasPrefix(e.Path, "/Docs/"), "leftover entry %s%s", e.Path, e.Name)
		assert.NotEqual(t, "Docs", e.Name)
	}

	// The sibling outside the subtree survived.
	root, err := svc.ListEntries(ctx, owner, "/", Filters{})
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "outside.txt", root[0].Name)

	// Listing the deleted folder's path yields empty, not an error.
	gone, err := svc.ListEntries(ctx, owner, "/Docs/", Filters{})
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestDeleteEntry_NotFoundAndForeignOwner(t *testing.T) {
	svc, meta, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "a.txt", "x", "")
	id := meta.all(owner)[0].ID

	// Unknown id and another owner's id are indistinguishable.
	assert.ErrorIs(t, svc.DeleteEntry(ctx, owner, "no-such-id"), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEntry(ctx, "intruder", id), ErrNotFound)

	// The entry is still there.
	assert.Len(t, meta.all(owner), 1)
}

func TestDeleteEntry_ObjectStoreFailureStillCleansMetadata(t *testing.T) {
	// Dangling objects are tolerated; dangling metadata is not.
	svc, meta, objects := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "a.txt", "x", "")
	id := meta.all(owner)[0].ID

	objects.failDelete = true
	require.NoError(t, svc.DeleteEntry(ctx, owner, id))
	assert.Empty(t, meta.all(owner))
	assert.Len(t, objects.objects, 1) // orphan object left behind
}

func TestBulkDelete_IsolatesFailures(t *testing.T) {
	svc, meta, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "a.txt", "x", "")
	upload(t, svc, "/", "b.txt", "y", "")
	upload(t, svc, "/", "c.txt", "z", "")

	ids := []string{"bogus-id"}
	for _, e := range meta.all(owner) {
		ids = append(ids, e.ID)
	}

	result := svc.BulkDelete(ctx, owner, ids)
	assert.Equal(t, 3, result.DeletedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bogus-id")
	assert.Empty(t, meta.all(owner))
}

func TestListEntries_OrderingFoldersFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "zeta.txt", "x", "")
	upload(t, svc, "/", "alpha.txt", "x", "")
	_, err := svc.CreateFolder(ctx, owner, "/", "zoo")
	require.NoError(t, err)
	_, err = svc.CreateFolder(ctx, owner, "/", "bar")
	require.NoError(t, err)

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"bar", "zoo", "alpha.txt", "zeta.txt"}, names)
}

func TestListEntries_DoesNotCrossOwners(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "mine.txt", "x", "")
	_, err := svc.UploadFile(ctx, "someone-else", "/", "theirs.txt", strings.NewReader("y"), 1, "")
	require.NoError(t, err)

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mine.txt", entries[0].Name)
}

func TestListEntries_ImageFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "photo.png", "x", "image/png")
	upload(t, svc, "/", "notes.txt", "x", "text/plain")

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{TypeCategory: TypeImage})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "photo.png", entries[0].Name)
}

func TestListEntries_SearchIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	upload(t, svc, "/", "Report-Final.pdf", "x", "application/pdf")
	upload(t, svc, "/", "misc.txt", "x", "text/plain")

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{NameSubstring: "report"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Report-Final.pdf", entries[0].Name)
}

func TestListEntries_DateRangeWithFixedClock(t *testing.T) {
	meta := newMemStore()
	objects := newMemObjects()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := now
	svc := New(meta, objects, &stubGate{open: true}).WithClock(func() time.Time { return clock })
	ctx := context.Background()

	// Created ten days before "now".
	clock = now.AddDate(0, 0, -10)
	upload(t, svc, "/", "old.txt", "x", "text/plain")

	// Created at "now".
	clock = now
	upload(t, svc, "/", "fresh.txt", "x", "text/plain")

	entries, err := svc.ListEntries(ctx, owner, "/", Filters{DateRange: DateWeek})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh.txt", entries[0].Name)

	entries, err = svc.ListEntries(ctx, owner, "/", Filters{DateRange: DateAll})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestListEntries_RejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ListEntries(ctx, owner, "no-leading-slash/", Filters{})
	assert.True(t, IsValidation(err))

	_, err = svc.ListEntries(ctx, owner, "/", Filters{TypeCategory: "spreadsheet"})
	assert.True(t, IsValidation(err))

	_, err = svc.ListEntries(ctx, owner, "/", Filters{DateRange: "fortnight"})
	assert.True(t, IsValidation(err))
}

func TestNamespaceUniquenessAcrossTreeAndExplicitCreates(t *testing.T) {
	svc, meta, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.UploadTree(ctx, owner, "/", []TreeItem{
		{RelativePath: "shared/one.txt", Reader: strings.NewReader("1"), Size: 1},
		{RelativePath: "shared/two.txt", Reader: strings.NewReader("2"), Size: 1},
	})
	require.NoError(t, err)

	// An explicit create of the already-materialized folder conflicts.
	_, err = svc.CreateFolder(ctx, owner, "/", "shared")
	assert.True(t, IsConflict(err))

	// At most one live folder entry per (owner, path, name).
	seen := map[string]int{}
	for _, e := range meta.all(owner) {
		if e.IsFolder {
			seen[e.Path+e.Name]++
		}
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "duplicate folder entry for %s", key)
	}
}
