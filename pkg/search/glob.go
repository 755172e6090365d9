package search

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/core"
	"vaultfs/pkg/refs"
	"vaultfs/pkg/types"
)

// Pattern 是编译后的 glob 模式。
// 大括号组先展开成若干备选，每个备选再按 / 切成段：
//
//   - `*` 匹配单段内任意字符 (不跨 /)
//   - `?` 匹配单个非 / 字符
//   - `**` 匹配零或多个完整段
//   - `{a,b}` 展开为备选分支
type Pattern struct {
	raw  string
	alts [][]string
}

// Compile 展开大括号并预切分所有备选分支
func Compile(pattern string) (*Pattern, error) {
	expanded, err := expandBraces(pattern)
	if err != nil {
		return nil, err
	}
	p := &Pattern{raw: pattern, alts: make([][]string, 0, len(expanded))}
	for _, alt := range expanded {
		segs := strings.Split(alt, "/")
		// 提前验证段内语法，匹配阶段就不会再出错
		for _, seg := range segs {
			if seg == "**" {
				continue
			}
			if _, err := path.Match(seg, ""); err != nil {
				return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
			}
		}
		p.alts = append(p.alts, segs)
	}
	return p, nil
}

// Match 判断相对路径是否命中任一备选分支
func (p *Pattern) Match(relPath string) bool {
	segs := strings.Split(relPath, "/")
	for _, alt := range p.alts {
		if matchSegments(alt, segs) {
			return true
		}
	}
	return false
}

// matchSegments 逐段递归匹配；`**` 贪心地尝试吞掉 0..n 段
func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		// 吞零段
		if matchSegments(pattern[1:], segs) {
			return true
		}
		// 吞一段后继续
		if len(segs) == 0 {
			return false
		}
		return matchSegments(pattern, segs[1:])
	}
	if len(segs) == 0 {
		return false
	}
	if ok, err := path.Match(pattern[0], segs[0]); err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}

// expandBraces 把首个 {a,b,...} 组展开成备选，递归直到没有大括号。
// 组内逗号按嵌套深度切分，支持 {a,{b,c}} 这类嵌套。
func expandBraces(pattern string) ([]string, error) {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		if strings.ContainsAny(pattern, "},") && strings.ContainsRune(pattern, '}') {
			return nil, fmt.Errorf("unbalanced brace in %q", pattern)
		}
		return []string{pattern}, nil
	}

	depth := 0
	closeAt := -1
	var parts []string
	last := open + 1
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				parts = append(parts, pattern[last:i])
				closeAt = i
			}
		case ',':
			if depth == 1 {
				parts = append(parts, pattern[last:i])
				last = i + 1
			}
		}
		if closeAt >= 0 {
			break
		}
	}
	if closeAt < 0 {
		return nil, fmt.Errorf("unbalanced brace in %q", pattern)
	}

	prefix, suffix := pattern[:open], pattern[closeAt+1:]
	var out []string
	for _, part := range parts {
		sub, err := expandBraces(prefix + part + suffix)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// Searcher 在虚拟树上做只读遍历：glob 与 grep 都建在对象库的读取路径上
type Searcher struct {
	store *cas.Store
	refs  *refs.Manager
}

func NewSearcher(store *cas.Store, refMgr *refs.Manager) *Searcher {
	return &Searcher{store: store, refs: refMgr}
}

// Glob 返回命中模式的所有非目录条目的完整相对路径，按路径排序。
// 为了让 `**` 能命中任意深度，树层级被无条件递归。
func (s *Searcher) Glob(ctx context.Context, root types.Root, pattern string) ([]string, error) {
	compiled, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	rootHash, err := s.refs.ResolveRoot(ctx, root)
	if err != nil {
		return nil, err
	}

	var results []string
	err = s.walk(ctx, rootHash, "", func(relPath string, entry core.TreeEntry) (bool, error) {
		if compiled.Match(relPath) {
			results = append(results, relPath)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// walk 深度优先遍历树，对每个非树条目回调一次。
// 回调返回 false 时立刻终止整个遍历。
func (s *Searcher) walk(ctx context.Context, treeHash types.Hash, prefix string, fn func(relPath string, entry core.TreeEntry) (bool, error)) error {
	obj, err := s.store.Get(ctx, treeHash)
	if err != nil {
		return err
	}
	tree, ok := obj.(*core.Tree)
	if !ok {
		return nil
	}

	for _, entry := range tree.Entries {
		relPath := entry.Name
		if prefix != "" {
			relPath = prefix + "/" + entry.Name
		}
		if entry.Type == core.TypeTree {
			if err := s.walk(ctx, entry.Hash, relPath, fn); err != nil {
				return err
			}
			continue
		}
		cont, err := fn(relPath, entry)
		if err != nil {
			return err
		}
		if !cont {
			return errStopWalk
		}
	}
	return nil
}
