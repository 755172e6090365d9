package search

import (
	"context"
	"errors"
	"regexp"

	"vaultfs/pkg/core"
	"vaultfs/pkg/types"
)

// errStopWalk 是遍历提前终止的内部信号，不会泄漏给调用方
var errStopWalk = errors.New("stop walk")

// DefaultMaxResults 是 grep 单次调用的默认结果上限
const DefaultMaxResults = 100

// GrepOptions 控制 grep 的过滤与截断
type GrepOptions struct {
	// GlobFilter 非空时只检查路径命中该模式的文件
	GlobFilter string
	// MaxResults <= 0 时取 DefaultMaxResults；达到上限后遍历立即停止
	MaxResults int
	// ContextLines 是命中行上下各附带的行数
	ContextLines int
}

// Match 是一条 grep 命中：路径、行号 (0 起) 与该行内容。
// ContextLines > 0 时 Context 携带命中行前后的邻近行 (含命中行自身)。
type Match struct {
	Path      string   `json:"path"`
	LineIndex int      `json:"lineIndex"`
	Content   string   `json:"content"`
	Context   []string `json:"context,omitempty"`
}

// Grep 对树里每个文本对象逐行做正则匹配，最多收集 MaxResults 条。
// 结果顺序就是树的遍历顺序 (条目按名字排序)，到达上限后不再读取后续对象。
// 非文本对象 (bytes / symlink) 直接跳过。
func (s *Searcher) Grep(ctx context.Context, root types.Root, expr string, opt GrepOptions) ([]Match, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	var filter *Pattern
	if opt.GlobFilter != "" {
		filter, err = Compile(opt.GlobFilter)
		if err != nil {
			return nil, err
		}
	}

	limit := opt.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	rootHash, err := s.refs.ResolveRoot(ctx, root)
	if err != nil {
		return nil, err
	}

	var results []Match
	err = s.walk(ctx, rootHash, "", func(relPath string, entry core.TreeEntry) (bool, error) {
		if entry.Type != core.TypeText {
			return true, nil
		}
		if filter != nil && !filter.Match(relPath) {
			return true, nil
		}

		obj, err := s.store.Get(ctx, entry.Hash)
		if err != nil {
			return false, err
		}
		text, ok := obj.(*core.Text)
		if !ok {
			return true, nil
		}

		lines := text.Lines
		for i, line := range lines {
			if !re.MatchString(line) {
				continue
			}
			m := Match{Path: relPath, LineIndex: i, Content: line}
			if opt.ContextLines > 0 {
				lo := max(0, i-opt.ContextLines)
				hi := min(len(lines), i+opt.ContextLines+1)
				m.Context = lines[lo:hi]
			}
			results = append(results, m)
			if len(results) >= limit {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, err
	}
	return results, nil
}
