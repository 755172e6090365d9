package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/refs"
	"vaultfs/pkg/storage/disk"
	"vaultfs/pkg/types"
	"vaultfs/pkg/vfs"
)

func setupSearcher(t *testing.T) (*Searcher, *vfs.Engine, *cas.Store) {
	dir := t.TempDir()
	backend, err := disk.NewAdapter(dir + "/obj")
	require.NoError(t, err)
	store := cas.NewStore(backend)
	mgr, err := refs.NewManager(dir+"/refs", store)
	require.NoError(t, err)
	return NewSearcher(store, mgr), vfs.NewEngine(store, mgr), store
}

// buildTree 把 path→content 写进一棵新树，返回根 Hash
func buildTree(t *testing.T, eng *vfs.Engine, store *cas.Store, files map[string]string) types.Root {
	ctx := context.Background()
	h, err := store.EnsureEmptyTree(ctx)
	require.NoError(t, err)
	root := types.Root(h)
	for p, content := range files {
		newRoot, err := eng.WriteAtPath(ctx, root, p, vfs.TextLeaf(content))
		require.NoError(t, err)
		root = types.Root(newRoot)
	}
	return root
}

// -----------------------------------------------------------------------------
// Pattern 匹配语义
// -----------------------------------------------------------------------------

func TestPattern_Match(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"f.txt", "f.txt", true},
		{"f.txt", "g.txt", false},
		{"*.txt", "f.txt", true},
		{"*.txt", "a/f.txt", false}, // * 不跨段
		{"?.txt", "f.txt", true},
		{"?.txt", "ab.txt", false},
		{"a/*.txt", "a/f.txt", true},
		{"a/*.txt", "a/b/f.txt", false},
		{"**", "a/b/c", true},
		{"**/*.ts", "a.ts", true},
		{"**/*.ts", "x/y/a.ts", true},
		{"src/**/*.ts", "src/a.ts", true}, // ** 可以吞零段
		{"src/**/*.ts", "src/x/y/a.ts", true},
		{"src/**/*.ts", "lib/a.ts", false},
		{"src/**/*.ts", "src/a.js", false},
		{"a/**/b/**/c", "a/x/b/y/c", true}, // 多个 **
		{"*.{ts,js}", "a.ts", true},
		{"*.{ts,js}", "a.js", true},
		{"*.{ts,js}", "a.go", false},
		{"{src,lib}/*.go", "lib/m.go", true},
		{"{a,{b,c}}.txt", "c.txt", true}, // 嵌套大括号
	}
	for _, tc := range cases {
		p, err := Compile(tc.pattern)
		require.NoError(t, err, tc.pattern)
		assert.Equal(t, tc.want, p.Match(tc.path), "%s vs %s", tc.pattern, tc.path)
	}
}

func TestPattern_Malformed(t *testing.T) {
	_, err := Compile("{a,b")
	assert.Error(t, err)
	_, err = Compile("[x.txt")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
// Glob
// -----------------------------------------------------------------------------

func TestGlob_SelectsByExtension(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"src/a.ts": "x",
		"src/b.js": "y",
	})

	got, err := s.Glob(context.Background(), root, "src/**/*.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, got)
}

func TestGlob_SortedAndDeep(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"x/z.txt":      "2",
		"x/y.txt":      "1",
		"x/deep/q.txt": "3",
		"x/readme.md":  "m",
	})

	got, err := s.Glob(context.Background(), root, "x/*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"x/y.txt", "x/z.txt"}, got)

	got, err = s.Glob(context.Background(), root, "**/*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"x/deep/q.txt", "x/y.txt", "x/z.txt"}, got)
}

func TestGlob_NeverMatchesTrees(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"dir/inner.txt": "x",
	})

	// "dir" 本身是树，glob 只测试非树条目
	got, err := s.Glob(context.Background(), root, "dir")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// -----------------------------------------------------------------------------
// Grep
// -----------------------------------------------------------------------------

func TestGrep_Basic(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"a.txt": "hello\nneedle here\nworld",
		"b.txt": "nothing",
	})

	got, err := s.Grep(context.Background(), root, "needle", GrepOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0].Path)
	assert.Equal(t, 1, got[0].LineIndex)
	assert.Equal(t, "needle here", got[0].Content)
	assert.Nil(t, got[0].Context)
}

func TestGrep_MaxResultsStopsTraversal(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"a.txt": "match\nmatch",
		"b.txt": "match",
	})

	got, err := s.Grep(context.Background(), root, "match", GrepOptions{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// 默认上限 100
	got, err = s.Grep(context.Background(), root, "match", GrepOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestGrep_GlobFilter(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"src/a.go": "package main",
		"doc/a.md": "package main",
	})

	got, err := s.Grep(context.Background(), root, "package", GrepOptions{GlobFilter: "**/*.go"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "src/a.go", got[0].Path)
}

func TestGrep_ContextLines(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{
		"f.txt": "l0\nl1\nHIT\nl3\nl4",
	})

	got, err := s.Grep(context.Background(), root, "HIT", GrepOptions{ContextLines: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"l1", "HIT", "l3"}, got[0].Context)

	// 上下文被文件边界截断
	got, err = s.Grep(context.Background(), root, "l0", GrepOptions{ContextLines: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"l0", "l1", "HIT"}, got[0].Context)
}

func TestGrep_BadRegex(t *testing.T) {
	s, eng, store := setupSearcher(t)
	root := buildTree(t, eng, store, map[string]string{"f.txt": "x"})

	_, err := s.Grep(context.Background(), root, "([", GrepOptions{})
	assert.Error(t, err)
}

func TestGrep_SkipsNonText(t *testing.T) {
	s, eng, store := setupSearcher(t)
	ctx := context.Background()

	root := buildTree(t, eng, store, map[string]string{"t.txt": "match"})
	blobHash, err := store.PutBytes(ctx, []byte("match"))
	require.NoError(t, err)
	newRoot, err := eng.WriteAtPath(ctx, root, "raw.bin", vfs.HashLeaf(blobHash))
	require.NoError(t, err)

	got, err := s.Grep(ctx, types.Root(newRoot), "match", GrepOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t.txt", got[0].Path)
}
