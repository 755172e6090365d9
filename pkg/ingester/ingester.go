package ingester

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/core"
	"vaultfs/pkg/ignore"
	"vaultfs/pkg/types"
)

// Stats 是一次导入的汇总计数
type Stats struct {
	Files    int64
	Dirs     int64
	Symlinks int64
	Skipped  int64
	Bytes    int64
}

// Ingester 把本地目录整棵导入对象库，返回根树 Hash。
// 同一目录下的文件并行入库；目录树自底向上组装，
// 所以任何时刻库里都只有完整的子树，不会出现悬空引用。
type Ingester struct {
	store    *cas.Store
	matcher  *ignore.Matcher
	parallel int
}

func NewIngester(store *cas.Store, matcher *ignore.Matcher) *Ingester {
	return &Ingester{
		store:    store,
		matcher:  matcher,
		parallel: runtime.NumCPU(),
	}
}

// ImportDir 导入 dir 的全部内容 (dir 自身不成为条目，它的子项就是根树的条目)
func (ing *Ingester) ImportDir(ctx context.Context, dir string) (types.Hash, *Stats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", nil, err
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("import root %q is not a directory", dir)
	}

	stats := &Stats{}
	root, err := ing.importTree(ctx, dir, "", stats)
	if err != nil {
		return "", nil, err
	}
	return root, stats, nil
}

// importTree 递归导入一个目录，返回对应的树 Hash
func (ing *Ingester) importTree(ctx context.Context, absDir, relDir string, stats *Stats) (types.Hash, error) {
	dirEnts, err := os.ReadDir(absDir)
	if err != nil {
		return "", fmt.Errorf("read dir %s: %w", absDir, err)
	}

	type slot struct {
		entry core.TreeEntry
		ok    bool
	}
	slots := make([]slot, len(dirEnts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.parallel)

	for i, de := range dirEnts {
		relPath := de.Name()
		if relDir != "" {
			relPath = relDir + "/" + de.Name()
		}
		if ing.matcher != nil && ing.matcher.Matches(relPath) {
			atomic.AddInt64(&stats.Skipped, 1)
			continue
		}

		absPath := filepath.Join(absDir, de.Name())

		// 子目录串行递归 (目录内部的文件自己并行)，文件与链接并行入库
		if de.IsDir() {
			subHash, err := ing.importTree(ctx, absPath, relPath, stats)
			if err != nil {
				return "", err
			}
			atomic.AddInt64(&stats.Dirs, 1)
			slots[i] = slot{entry: core.TreeEntry{Name: de.Name(), Type: core.TypeTree, Hash: subHash}, ok: true}
			continue
		}

		g.Go(func() error {
			entry, err := ing.ingestLeaf(gctx, absPath, de, stats)
			if err != nil {
				return err
			}
			slots[i] = slot{entry: entry, ok: true}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	entries := make([]core.TreeEntry, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			entries = append(entries, s.entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return ing.store.PutTree(ctx, entries)
}

// ingestLeaf 导入单个非目录项：符号链接存目标字符串，
// 文件按内容嗅探分流到文本或字节对象
func (ing *Ingester) ingestLeaf(ctx context.Context, absPath string, de fs.DirEntry, stats *Stats) (core.TreeEntry, error) {
	if de.Type()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(absPath)
		if err != nil {
			return core.TreeEntry{}, fmt.Errorf("readlink %s: %w", absPath, err)
		}
		hash, err := ing.store.PutSymlink(ctx, target)
		if err != nil {
			return core.TreeEntry{}, err
		}
		atomic.AddInt64(&stats.Symlinks, 1)
		return core.TreeEntry{Name: de.Name(), Type: core.TypeSymlink, Hash: hash}, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return core.TreeEntry{}, fmt.Errorf("read file %s: %w", absPath, err)
	}
	atomic.AddInt64(&stats.Files, 1)
	atomic.AddInt64(&stats.Bytes, int64(len(data)))

	if isText(data) {
		hash, err := ing.store.PutText(ctx, string(data))
		if err != nil {
			return core.TreeEntry{}, err
		}
		return core.TreeEntry{Name: de.Name(), Type: core.TypeText, Hash: hash}, nil
	}

	hash, err := ing.store.PutBytes(ctx, data)
	if err != nil {
		return core.TreeEntry{}, err
	}
	return core.TreeEntry{Name: de.Name(), Type: core.TypeBytes, Hash: hash}, nil
}

// isText 判断内容能否按行存储：合法 UTF-8 且不含 NUL。
// 空文件算文本 (往返后还是空字符串)。
func isText(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}
