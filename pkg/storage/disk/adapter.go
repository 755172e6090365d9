package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vaultfs/pkg/core"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/types"
)

// Adapter 实现了 storage.Backend 接口。
// 磁盘布局：<root>/<hash 前 2 位>/<剩余 62 位>
// 用前缀子目录做 Sharding，避免单目录无限膨胀。
type Adapter struct {
	rootPath string // 例如 /data/.vfs/obj
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	// 确保根目录存在
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create object storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// layout 返回哈希对应的物理路径
// Example: hash "aabbcc..." -> root/aa/bbcc...
func (s *Adapter) layout(hash types.Hash) string {
	h := string(hash)
	if len(h) < 2 {
		return filepath.Join(s.rootPath, h)
	}
	return filepath.Join(s.rootPath, h[:2], h[2:])
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	targetPath := s.layout(obj.ID())

	// 1. 幂等性检查：已存在就直接跳过 (Dedup —— 只有首次出现才有副作用)
	if _, err := os.Stat(targetPath); err == nil {
		return nil
	}

	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 2. 原子写入：先写临时文件再 Rename。
	// 保证落盘的记录要么不存在，要么是完整的。
	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(obj.Bytes()); err != nil {
		tempFile.Close()
		return err
	}
	tempFile.Close() // 必须先关闭才能 Rename

	return os.Rename(tempFile.Name(), targetPath)
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	f, err := os.Open(s.layout(hash))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := os.Stat(s.layout(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash 利用 Sharding 目录结构展开短哈希前缀
func (s *Adapter) ExpandHash(ctx context.Context, prefix string) (types.Hash, error) {
	if len(prefix) < 4 {
		return "", fmt.Errorf("hash prefix too short: %q", prefix)
	}

	shard := prefix[:2]
	rest := prefix[2:]

	entries, err := os.ReadDir(filepath.Join(s.rootPath, shard))
	if os.IsNotExist(err) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	var match types.Hash
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), rest) {
			continue
		}
		if match != "" {
			return "", storage.ErrAmbiguousHash
		}
		match = types.Hash(shard + e.Name())
	}

	if match == "" {
		return "", storage.ErrNotFound
	}
	return match, nil
}
