package vfs

import (
	"context"
	"encoding/base64"

	"vaultfs/pkg/core"
	"vaultfs/pkg/types"
)

// ReadResult 是范围读取的结果。
// 按对象类型只有一个内容字段有效；Total 是完整长度 (条目/行/字节数)，
// 部分读取时调用方靠它知道还剩多少。
type ReadResult struct {
	Kind    core.ObjectType  `json:"type"`
	Hash    types.Hash       `json:"hash"`
	Total   int              `json:"total"`
	Entries []core.TreeEntry `json:"entries,omitempty"` // tree
	Lines   []string         `json:"lines,omitempty"`   // text
	Data    string           `json:"data,omitempty"`    // bytes (base64)
	Target  string           `json:"target,omitempty"`  // symlink (忽略范围)
}

// clampRange 把 [start, end) 收敛到 [0, total]。end < 0 表示“到结尾”。
func clampRange(start, end, total int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end < 0 || end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

// ReadRange 返回对象内容的有界切片：树的条目、文本的行、
// 二进制负载 (base64 编码)。符号链接忽略范围，始终返回完整目标。
// 默认范围 (start=0, end=-1) 是全量。
func (e *Engine) ReadRange(ctx context.Context, hash types.Hash, start, end int) (*ReadResult, error) {
	obj, err := e.store.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	return readRange(obj, start, end), nil
}

func readRange(obj core.Object, start, end int) *ReadResult {
	res := &ReadResult{Kind: obj.Type(), Hash: obj.ID()}
	switch o := obj.(type) {
	case *core.Tree:
		res.Total = o.Len()
		s, t := clampRange(start, end, res.Total)
		res.Entries = o.Entries[s:t]
	case *core.Text:
		res.Total = o.Len()
		s, t := clampRange(start, end, res.Total)
		res.Lines = o.Lines[s:t]
	case *core.Blob:
		res.Total = o.Len()
		s, t := clampRange(start, end, res.Total)
		res.Data = base64.StdEncoding.EncodeToString(o.Data[s:t])
	case *core.Symlink:
		res.Total = len(o.Target)
		res.Target = o.Target
	}
	return res
}

// ReadAtPath 是 OpenAtPath + ReadRange 的组合：
// 一次调用定位并读取，同时报告完整长度 (方便分页读大文件)。
func (e *Engine) ReadAtPath(ctx context.Context, root types.Root, path string, start, end int) (*ReadResult, error) {
	st, err := e.OpenAtPath(ctx, root, path)
	if err != nil {
		return nil, err
	}
	return e.ReadRange(ctx, st.Hash, start, end)
}
