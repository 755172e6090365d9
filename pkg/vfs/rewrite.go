package vfs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vaultfs/pkg/core"
	"vaultfs/pkg/refs"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/types"
)

// Leaf 是写操作的内容来源：要么是新的文本内容，要么是对象库里
// 已有对象的 Hash 引用。显式二选一，不做“长得像 Hash 就当 Hash”的猜测 ——
// 一个恰好只包含一条 Hash 的文本文件不应该被偷换语义。
type Leaf struct {
	text    string
	hashRef types.Hash
	isHash  bool
}

// TextLeaf 写入新的文本内容 (按 "\n" 切行)
func TextLeaf(content string) Leaf { return Leaf{text: content} }

// HashLeaf 复用对象库中已有对象；Hash 不存在时写操作报 ErrInvalidReference
func HashLeaf(hash types.Hash) Leaf { return Leaf{hashRef: hash, isHash: true} }

// resolveLeaf 确定叶子的 (type, hash)，必要时创建新的 Text 对象
func (e *Engine) resolveLeaf(ctx context.Context, leaf Leaf) (core.ObjectType, types.Hash, error) {
	if !leaf.isHash {
		hash, err := e.store.PutText(ctx, leaf.text)
		if err != nil {
			return "", "", err
		}
		return core.TypeText, hash, nil
	}

	obj, err := e.store.Get(ctx, leaf.hashRef)
	if errors.Is(err, storage.ErrNotFound) {
		return "", "", fmt.Errorf("%w: %s", refs.ErrInvalidReference, leaf.hashRef)
	}
	if err != nil {
		return "", "", err
	}
	return obj.Type(), obj.ID(), nil
}

// loadTree 读出一棵树。对象不是树时返回 (nil, false)。
func (e *Engine) loadTree(ctx context.Context, hash types.Hash) (*core.Tree, bool, error) {
	obj, err := e.store.Get(ctx, hash)
	if err != nil {
		return nil, false, err
	}
	tree, ok := obj.(*core.Tree)
	return tree, ok, nil
}

// WriteAtPath 在路径处写入内容，返回新的根 Hash。
//
// 自底向上的路径索引重建：叶子段把父树的同名条目剔除后追加新条目并重哈希；
// 每个祖先段递归进既有 (或新建的) 子树，再用更新后的子 Hash 重建本层。
// 只有路径沿线的树节点被重写，所有兄弟子树按原 Hash 引用不动。
//
// root 是自动推进引用时，成功后引用被推到新根；Hash 真的变了才触发回调。
func (e *Engine) WriteAtPath(ctx context.Context, root types.Root, path string, leaf Leaf) (types.Hash, error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidOperation, err)
	}
	if len(segs) == 0 {
		return "", fmt.Errorf("%w: cannot mutate empty path", ErrInvalidOperation)
	}

	rootHash, err := e.refs.ResolveRoot(ctx, root)
	if err != nil {
		return "", err
	}

	leafType, leafHash, err := e.resolveLeaf(ctx, leaf)
	if err != nil {
		return "", err
	}

	newRoot, err := e.rewrite(ctx, rootHash, segs, leafType, leafHash)
	if err != nil {
		return "", err
	}

	if err := e.maybeAdvance(ctx, root, newRoot); err != nil {
		return "", err
	}
	return newRoot, nil
}

// rewrite 递归重建 treeHash 这一层，把 segs 指向的叶子替换为 (leafType, leafHash)
func (e *Engine) rewrite(ctx context.Context, treeHash types.Hash, segs []string, leafType core.ObjectType, leafHash types.Hash) (types.Hash, error) {
	tree, ok, err := e.loadTree(ctx, treeHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: intermediate node is not a tree", ErrInvalidOperation)
	}

	name := segs[0]

	var childType core.ObjectType
	var childHash types.Hash

	if len(segs) == 1 {
		// 叶子层：剔除同名条目，追加新条目
		childType, childHash = leafType, leafHash
	} else {
		// 祖先层：递归进既有子树；子树缺失 (或被非树占位) 时从空树新建
		subHash := core.NewEmptyTree().ID()
		if entry, found := tree.Lookup(name); found && entry.Type == core.TypeTree {
			subHash = entry.Hash
		} else if _, err := e.store.EnsureEmptyTree(ctx); err != nil {
			return "", err
		}
		childHash, err = e.rewrite(ctx, subHash, segs[1:], leafType, leafHash)
		if err != nil {
			return "", err
		}
		childType = core.TypeTree
	}

	entries := append(tree.Without(name), core.TreeEntry{
		Name: name,
		Type: childType,
		Hash: childHash,
	})
	return e.store.PutTree(ctx, entries)
}

// maybeAdvance 在 root 是自动推进引用时把它推到新根
func (e *Engine) maybeAdvance(ctx context.Context, root types.Root, newRoot types.Hash) error {
	name, auto := e.refs.IsAutoUpdating(root)
	if !auto {
		return nil
	}
	return e.refs.SetRef(ctx, name, newRoot)
}

// DeleteAtPath 删除路径处的条目，返回新的根 Hash。
// 路径上任何一段缺失都是 no-op：返回空 Hash、不碰引用。
// 空路径 (等于删掉存储根) 报 ErrInvalidOperation。
func (e *Engine) DeleteAtPath(ctx context.Context, root types.Root, path string) (types.Hash, error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidOperation, err)
	}
	if len(segs) == 0 {
		return "", fmt.Errorf("%w: cannot delete the store root", ErrInvalidOperation)
	}

	rootHash, err := e.refs.ResolveRoot(ctx, root)
	if err != nil {
		return "", err
	}

	newRoot, err := e.remove(ctx, rootHash, segs)
	if err != nil {
		return "", err
	}
	if newRoot == "" {
		return "", nil // no-op
	}

	if err := e.maybeAdvance(ctx, root, newRoot); err != nil {
		return "", err
	}
	return newRoot, nil
}

// remove 镜像 rewrite，但在叶子层剔除条目。
// 返回空 Hash 表示路径不存在 (no-op 向上冒泡)。
func (e *Engine) remove(ctx context.Context, treeHash types.Hash, segs []string) (types.Hash, error) {
	tree, ok, err := e.loadTree(ctx, treeHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil // 中间节点不是树 ⇒ 路径不存在
	}

	name := segs[0]
	entry, found := tree.Lookup(name)
	if !found {
		return "", nil
	}

	var entries []core.TreeEntry
	if len(segs) == 1 {
		entries = tree.Without(name)
	} else {
		subRoot, err := e.remove(ctx, entry.Hash, segs[1:])
		if err != nil {
			return "", err
		}
		if subRoot == "" {
			return "", nil
		}
		entries = append(tree.Without(name), core.TreeEntry{
			Name: name,
			Type: core.TypeTree,
			Hash: subRoot,
		})
	}
	return e.store.PutTree(ctx, entries)
}

// EditRange 对文本做行级拼接：用 replacement 的行替换 [start, end) 行。
// 空 replacement 删除该范围；start == end 是插入。
// 目标不是文本对象时报 ErrInvalidOperation。基于 ReadAtPath + WriteAtPath 组合实现。
func (e *Engine) EditRange(ctx context.Context, root types.Root, path string, start, end int, replacement string) (types.Hash, error) {
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: bad line range [%d, %d)", ErrInvalidOperation, start, end)
	}

	st, err := e.OpenAtPath(ctx, root, path)
	if err != nil {
		return "", err
	}
	if st.Kind != core.TypeText {
		return "", fmt.Errorf("%w: edit target is %s, not text", ErrInvalidOperation, st.Kind)
	}

	obj, err := e.store.Get(ctx, st.Hash)
	if err != nil {
		return "", err
	}
	text := obj.(*core.Text)

	s, t := clampRange(start, end, text.Len())

	var insert []string
	if replacement != "" {
		insert = strings.Split(replacement, "\n")
	}

	lines := make([]string, 0, text.Len()-(t-s)+len(insert))
	lines = append(lines, text.Lines[:s]...)
	lines = append(lines, insert...)
	lines = append(lines, text.Lines[t:]...)

	newHash, err := e.store.PutTextLines(ctx, lines)
	if err != nil {
		return "", err
	}
	return e.WriteAtPath(ctx, root, path, HashLeaf(newHash))
}
