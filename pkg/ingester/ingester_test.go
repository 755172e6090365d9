package ingester

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/core"
	"vaultfs/pkg/ignore"
	"vaultfs/pkg/refs"
	"vaultfs/pkg/storage/disk"
	"vaultfs/pkg/types"
	"vaultfs/pkg/vfs"
)

func setupStore(t *testing.T) (*cas.Store, *vfs.Engine) {
	dir := t.TempDir()
	backend, err := disk.NewAdapter(dir + "/obj")
	require.NoError(t, err)
	store := cas.NewStore(backend)
	mgr, err := refs.NewManager(dir+"/refs", store)
	require.NoError(t, err)
	return store, vfs.NewEngine(store, mgr)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	for p, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func TestImportDir_Basic(t *testing.T) {
	store, eng := setupStore(t)
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"readme.md":    "hello\nworld",
		"src/main.go":  "package main",
		"src/util.go":  "package main",
		"data/nums.csv": "1,2,3",
	})

	ing := NewIngester(store, nil)
	root, stats, err := ing.ImportDir(context.Background(), src)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Files)
	assert.EqualValues(t, 2, stats.Dirs)

	res, err := eng.ReadAtPath(context.Background(), types.Root(root), "readme.md", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, res.Lines)

	st, err := eng.OpenAtPath(context.Background(), types.Root(root), "src")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Entries)
}

func TestImportDir_BinaryDetection(t *testing.T) {
	store, eng := setupStore(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "blob.bin"), []byte{0x00, 0xFF, 0x10}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "text.txt"), []byte("plain"), 0o644))

	ing := NewIngester(store, nil)
	root, _, err := ing.ImportDir(context.Background(), src)
	require.NoError(t, err)

	st, err := eng.OpenAtPath(context.Background(), types.Root(root), "blob.bin")
	require.NoError(t, err)
	assert.Equal(t, core.TypeBytes, st.Kind)
	assert.Equal(t, 3, st.Size)

	st, err = eng.OpenAtPath(context.Background(), types.Root(root), "text.txt")
	require.NoError(t, err)
	assert.Equal(t, core.TypeText, st.Kind)
}

func TestImportDir_Symlink(t *testing.T) {
	store, eng := setupStore(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "real.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink("real.txt", filepath.Join(src, "link")))

	ing := NewIngester(store, nil)
	root, stats, err := ing.ImportDir(context.Background(), src)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Symlinks)

	res, err := eng.ReadAtPath(context.Background(), types.Root(root), "link", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, core.TypeSymlink, res.Kind)
	assert.Equal(t, "real.txt", res.Target)
}

func TestImportDir_IgnoreRules(t *testing.T) {
	store, eng := setupStore(t)
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"keep.go":       "x",
		"skip.log":      "x",
		".env":          "SECRET=1",
		".vfs/obj/stub": "x",
	})
	require.NoError(t, os.WriteFile(filepath.Join(src, ignore.IgnoreFileName), []byte("*.log\n"), 0o644))

	matcher, err := ignore.NewMatcher(src)
	require.NoError(t, err)
	ing := NewIngester(store, matcher)
	root, stats, err := ing.ImportDir(context.Background(), src)
	require.NoError(t, err)

	_, err = eng.OpenAtPath(context.Background(), types.Root(root), "keep.go")
	assert.NoError(t, err)
	for _, gone := range []string{"skip.log", ".env", ".vfs"} {
		_, err = eng.OpenAtPath(context.Background(), types.Root(root), gone)
		assert.Error(t, err, gone)
	}
	assert.GreaterOrEqual(t, stats.Skipped, int64(3))
}

func TestImportDir_DeterministicRoot(t *testing.T) {
	store, _ := setupStore(t)
	files := map[string]string{"a.txt": "1", "b/c.txt": "2"}

	src1 := t.TempDir()
	writeFiles(t, src1, files)
	src2 := t.TempDir()
	writeFiles(t, src2, files)

	ing := NewIngester(store, nil)
	r1, _, err := ing.ImportDir(context.Background(), src1)
	require.NoError(t, err)
	r2, _, err := ing.ImportDir(context.Background(), src2)
	require.NoError(t, err)
	assert.Equal(t, r1, r2, "相同内容必须得到相同的根 Hash")
}

func TestImportDir_NotADirectory(t *testing.T) {
	store, _ := setupStore(t)
	f := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	ing := NewIngester(store, nil)
	_, _, err := ing.ImportDir(context.Background(), f)
	assert.Error(t, err)
}
