package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/core"
	"vaultfs/pkg/types"
)

// RestoreCallback 在每个叶子落盘后触发一次 (通知上层做进度展示等)
type RestoreCallback func(path string, hash types.Hash, kind core.ObjectType)

// Exporter 把对象库里的子树还原到本地文件系统，或打印单个对象
type Exporter struct {
	store *cas.Store
}

func NewExporter(store *cas.Store) *Exporter {
	return &Exporter{store: store}
}

// RestoreTree 递归地把树还原到目标目录：
// 文本对象按行拼回字符串落盘，字节对象原样写出，符号链接重建为 os.Symlink。
// 目标目录不存在时自动创建；已有同名文件被覆盖。
func (e *Exporter) RestoreTree(ctx context.Context, treeHash types.Hash, targetDir string, onRestore RestoreCallback) error {
	obj, err := e.store.Get(ctx, treeHash)
	if err != nil {
		return fmt.Errorf("failed to get tree %s: %w", treeHash, err)
	}
	tree, ok := obj.(*core.Tree)
	if !ok {
		return fmt.Errorf("object %s is not a tree, got: %s", treeHash, obj.Type())
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create dir %s: %w", targetDir, err)
	}

	for _, entry := range tree.Entries {
		fullPath := filepath.Join(targetDir, entry.Name)

		if entry.Type == core.TypeTree {
			if err := e.RestoreTree(ctx, entry.Hash, fullPath, onRestore); err != nil {
				return err
			}
			continue
		}

		if err := e.restoreLeaf(ctx, entry.Hash, fullPath); err != nil {
			return err
		}
		if onRestore != nil {
			onRestore(fullPath, entry.Hash, entry.Type)
		}
	}
	return nil
}

// restoreLeaf 把单个非目录对象写到本地路径
func (e *Exporter) restoreLeaf(ctx context.Context, hash types.Hash, fullPath string) error {
	obj, err := e.store.Get(ctx, hash)
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", hash, err)
	}

	switch o := obj.(type) {
	case *core.Text:
		return os.WriteFile(fullPath, []byte(o.Content()), 0644)
	case *core.Blob:
		return os.WriteFile(fullPath, o.Data, 0644)
	case *core.Symlink:
		// 覆盖语义：旧链接先删掉，否则 os.Symlink 会报 EEXIST
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return os.Symlink(o.Target, fullPath)
	default:
		return fmt.Errorf("cannot restore object type %s at %s", obj.Type(), fullPath)
	}
}
