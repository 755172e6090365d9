package vfs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/core"
	"vaultfs/pkg/refs"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/types"
)

// ErrInvalidOperation 表示结构上不允许的请求：
// 对空路径做修改、对非文本对象做行编辑等。
var ErrInvalidOperation = errors.New("invalid operation")

// Engine 是树重写引擎：基于对象库的路径解析与路径修改。
// 修改从不拷贝整棵树 —— 只重建受影响路径上的树节点，
// 兄弟子树按原 Hash 原样引用 (结构共享)。
type Engine struct {
	store *cas.Store
	refs  *refs.Manager
}

func NewEngine(store *cas.Store, refMgr *refs.Manager) *Engine {
	return &Engine{store: store, refs: refMgr}
}

// Store 暴露底层对象库 (搜索引擎复用同一条读路径)
func (e *Engine) Store() *cas.Store { return e.store }

// Refs 暴露引用表
func (e *Engine) Refs() *refs.Manager { return e.refs }

// splitPath 把 "a/b/c" 切成段。空路径返回 nil；
// 空段 ("a//b") 视为非法，由调用方决定报 NotFound 还是 InvalidOperation。
func splitPath(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, nil
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" || s == "." || s == ".." {
			return nil, fmt.Errorf("invalid path segment: %q", s)
		}
	}
	return segs, nil
}

// Stat 是 OpenAtPath 的结果：类型、Hash 和类型相关的元信息
type Stat struct {
	Kind    core.ObjectType `json:"type"`
	Hash    types.Hash      `json:"hash"`
	Entries int             `json:"entries,omitempty"` // tree: 条目数
	Lines   int             `json:"lines,omitempty"`   // text: 行数
	Size    int             `json:"size,omitempty"`    // bytes: 字节长度
	Target  string          `json:"target,omitempty"`  // symlink: 目标
}

// statOf 对一个对象做穷举分派，填充类型相关元信息
func statOf(obj core.Object) *Stat {
	st := &Stat{Kind: obj.Type(), Hash: obj.ID()}
	switch o := obj.(type) {
	case *core.Tree:
		st.Entries = o.Len()
	case *core.Text:
		st.Lines = o.Len()
	case *core.Blob:
		st.Size = o.Len()
	case *core.Symlink:
		st.Target = o.Target
	}
	return st
}

// OpenAtPath 解析根，然后逐级在树条目里查找路径段。
// 任何一段缺失、或中间节点不是树，都返回 storage.ErrNotFound。
// 空路径返回根对象本身。
func (e *Engine) OpenAtPath(ctx context.Context, root types.Root, path string) (*Stat, error) {
	rootHash, err := e.refs.ResolveRoot(ctx, root)
	if err != nil {
		return nil, err
	}

	segs, err := splitPath(path)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	obj, err := e.store.Get(ctx, rootHash)
	if err != nil {
		return nil, err
	}

	for _, seg := range segs {
		tree, ok := obj.(*core.Tree)
		if !ok {
			// 中间节点不是树 ⇒ 路径不存在
			return nil, storage.ErrNotFound
		}
		entry, ok := tree.Lookup(seg)
		if !ok {
			return nil, storage.ErrNotFound
		}
		obj, err = e.store.Get(ctx, entry.Hash)
		if err != nil {
			return nil, err
		}
	}

	return statOf(obj), nil
}
