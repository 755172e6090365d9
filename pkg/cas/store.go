package cas

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"vaultfs/pkg/core"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/types"
)

// Store 是类型化的对象库：在原始记录后端之上提供
// PutText / PutBytes / PutSymlink / PutTree / Get / Has。
//
// 内部带一个进程内的 read-through 缓存。对象不可变，所以缓存永不失效、
// 也不需要按键加锁；条目从不逐出，进程生命周期内单调增长
// (设计取舍：进程是短命的；长命部署请叠加带 TTL 的 Redis 层)。
type Store struct {
	backend storage.Backend

	mu    sync.RWMutex
	cache map[types.Hash]core.Object
}

// NewStore 用底层后端构造对象库。没有全局单例：调用方自己持有引用。
func NewStore(backend storage.Backend) *Store {
	return &Store{
		backend: backend,
		cache:   make(map[types.Hash]core.Object),
	}
}

// PutText 存入文本内容 (写入时按 "\n" 切行)，返回内容地址
func (s *Store) PutText(ctx context.Context, content string) (types.Hash, error) {
	obj, err := core.NewText(content)
	if err != nil {
		return "", err
	}
	return s.putObject(ctx, obj)
}

// PutTextLines 按行存入文本 (EditRange 的回写路径)
func (s *Store) PutTextLines(ctx context.Context, lines []string) (types.Hash, error) {
	obj, err := core.NewTextFromLines(lines)
	if err != nil {
		return "", err
	}
	return s.putObject(ctx, obj)
}

// PutBytes 存入二进制负载
func (s *Store) PutBytes(ctx context.Context, data []byte) (types.Hash, error) {
	obj, err := core.NewBlob(data)
	if err != nil {
		return "", err
	}
	return s.putObject(ctx, obj)
}

// PutSymlink 存入符号链接
func (s *Store) PutSymlink(ctx context.Context, target string) (types.Hash, error) {
	obj, err := core.NewSymlink(target)
	if err != nil {
		return "", err
	}
	return s.putObject(ctx, obj)
}

// PutTree 存入目录树 (条目在构造时排序、查重)
func (s *Store) PutTree(ctx context.Context, entries []core.TreeEntry) (types.Hash, error) {
	obj, err := core.NewTree(entries)
	if err != nil {
		return "", err
	}
	return s.putObject(ctx, obj)
}

// EnsureEmptyTree 保证空树存在并返回它的 Hash (工作引用的初始指向)
func (s *Store) EnsureEmptyTree(ctx context.Context) (types.Hash, error) {
	return s.putObject(ctx, core.NewEmptyTree())
}

// putObject 幂等写入：缓存命中直接返回，否则写后端并回填缓存。
// 副作用只在内容第一次出现时发生。
func (s *Store) putObject(ctx context.Context, obj core.Object) (types.Hash, error) {
	hash := obj.ID()

	s.mu.RLock()
	_, cached := s.cache[hash]
	s.mu.RUnlock()
	if cached {
		return hash, nil
	}

	if err := s.backend.Put(ctx, obj); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[hash] = obj
	s.mu.Unlock()
	return hash, nil
}

// Get 读取对象。未知 Hash、损坏或不可读的记录一律返回 storage.ErrNotFound ——
// 读路径上的“不存在”是一个值，不是故障 (损坏记录吞错是刻意保留的策略，
// 偏向可用性而不是严格完整性校验)。
func (s *Store) Get(ctx context.Context, hash types.Hash) (core.Object, error) {
	s.mu.RLock()
	obj, ok := s.cache[hash]
	s.mu.RUnlock()
	if ok {
		return obj, nil
	}

	reader, err := s.backend.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		slog.Debug("unreadable object record treated as missing", "hash", hash, "err", err)
		return nil, storage.ErrNotFound
	}

	obj, err = core.DecodeObject(data)
	if err != nil {
		slog.Debug("corrupt object record treated as missing", "hash", hash, "err", err)
		return nil, storage.ErrNotFound
	}

	s.mu.Lock()
	s.cache[hash] = obj
	s.mu.Unlock()
	return obj, nil
}

// Has 检查对象是否存在 (缓存优先)
func (s *Store) Has(ctx context.Context, hash types.Hash) (bool, error) {
	s.mu.RLock()
	_, ok := s.cache[hash]
	s.mu.RUnlock()
	if ok {
		return true, nil
	}
	return s.backend.Has(ctx, hash)
}

// ExpandHash 透传到后端
func (s *Store) ExpandHash(ctx context.Context, prefix string) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, prefix)
}

// CacheLen 返回缓存条目数 (可观测性用)
func (s *Store) CacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
