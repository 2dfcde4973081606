package vfs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/Docs", "/Docs/"},
		{"/Docs/", "/Docs/"},
		{"/a/b/c", "/a/b/c/"},
	}
	for _, tc := range cases {
		got, err := NormalizePath(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizePath_Invalid(t *testing.T) {
	for _, in := range []string{
		"Docs/",       // no leading slash
		"/a//b/",      // empty segment
		"/../escape/", // dot segment
		"/" + strings.Repeat("x", 256) + "/",
	} {
		_, err := NormalizePath(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsValidation(err), "input %q", in)
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("report.pdf"))
	assert.NoError(t, ValidateName("My Folder"))
	assert.NoError(t, ValidateName(strings.Repeat("x", 255)))

	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName("a/b"))
	assert.Error(t, ValidateName("."))
	assert.Error(t, ValidateName(".."))
	assert.Error(t, ValidateName(strings.Repeat("x", 256)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "u1/Docs/a.txt", FileKey("u1", "/Docs/", "a.txt"))
	assert.Equal(t, "u1/Docs/", FolderKey("u1", "/", "Docs"))
	assert.Equal(t, "/Docs/sub/", ChildPath("/Docs/", "sub"))

	// A folder's key is a strict prefix of every descendant's key.
	folder := FolderKey("u1", "/", "Docs")
	assert.True(t, strings.HasPrefix(FileKey("u1", "/Docs/", "a.txt"), folder))
	assert.True(t, strings.HasPrefix(FolderKey("u1", "/Docs/", "sub"), folder))

	// The trailing slash keeps sibling folders with a shared name prefix
	// out of each other's key space.
	a := FolderKey("u1", "/", "report")
	b := FolderKey("u1", "/", "reports")
	assert.False(t, strings.HasPrefix(b, a))
}

func TestSplitRelative(t *testing.T) {
	dirs, file, err := SplitRelative("a/b/x.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, dirs)
	assert.Equal(t, "x.txt", file)

	dirs, file, err = SplitRelative("x.txt")
	require.NoError(t, err)
	assert.Empty(t, dirs)
	assert.Equal(t, "x.txt", file)

	// Doubled and leading slashes collapse, matching browser uploads.
	dirs, file, err = SplitRelative("/a//b/x.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, dirs)
	assert.Equal(t, "x.txt", file)
}

func TestSplitRelative_Invalid(t *testing.T) {
	for _, in := range []string{"", "/", "a/../x.txt", "a/./x.txt"} {
		_, _, err := SplitRelative(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsValidation(err), "input %q", in)
	}
}
