package storage

import (
	"context"
	"errors"
	"io"

	"vaultfs/pkg/core"
	"vaultfs/pkg/types"
)

var (
	// ErrNotFound 在读路径上表示“不存在”。
	// 注意：它是一个值，不是故障 —— 未知 Hash、缺失的记录都用它表达。
	ErrNotFound = errors.New("object not found")

	// ErrAmbiguousHash 表示短哈希前缀命中了多个对象
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
)

// Backend defines the interface for a raw record storage backend.
// Implementations can be local disk, S3-compatible storage, or a cache
// decorator wrapped around either.
type Backend interface {
	// Put 将一个对象记录持久化。
	// 内容寻址保证幂等：同一 Hash 重复写入等价于一次写入，
	// 两个并发写者写相同内容是安全竞争。
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取原始记录字节。
	// 返回 io.ReadCloser 以支持大记录的流式读取。
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (去重预检用)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把唯一的短哈希前缀展开成完整 Hash
	ExpandHash(ctx context.Context, prefix string) (types.Hash, error)
}
