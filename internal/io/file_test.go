package ioutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.True(t, IsDir(dir))
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := EnsureDir(filepath.Join(file, "sub"))
	assert.Error(t, err)
}

func TestExistsAndIsDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "archive.zip")
	require.NoError(t, os.WriteFile(file, []byte("zip"), 0644))

	assert.True(t, Exists(file))
	assert.False(t, IsDir(file))
	assert.True(t, Exists(base))
	assert.True(t, IsDir(base))
	assert.False(t, Exists(filepath.Join(base, "missing")))
}

func TestMove_CreatesParent(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "tmp", "templates")
	require.NoError(t, EnsureDir(src))
	require.NoError(t, os.WriteFile(filepath.Join(src, "obj_000001.png"), []byte("png"), 0644))

	dst := filepath.Join(base, "datasets", "templates")
	require.NoError(t, Move(src, dst))

	assert.False(t, Exists(src))
	assert.True(t, Exists(filepath.Join(dst, "obj_000001.png")))
}

func TestMove_DestinationNotEmpty(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dst := filepath.Join(base, "dst")
	require.NoError(t, EnsureDir(src))
	require.NoError(t, EnsureDir(dst))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "keep"), []byte("x"), 0644))

	assert.Error(t, Move(src, dst))
	assert.True(t, Exists(src))
}
