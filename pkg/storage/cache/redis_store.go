package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"vaultfs/pkg/core"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/types"
)

// CachedBackend 是一个装饰器，为底层的 storage.Backend 添加 Redis 缓存层。
// 多个进程共享同一个对象库时 (比如磁盘后端换成 S3)，它把存在性检查和
// 小记录的读取从网络请求降到毫秒级。
//
// 缓存值用 CBOR 编码 (记录字节 + 完整 Hash)。这是缓存私有的编码，
// 与磁盘上的记录布局无关。
type CachedBackend struct {
	backend storage.Backend
	client  *redis.Client
	ttl     time.Duration
}

// Config Redis 缓存配置
type Config struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 过期时间 (例如 24h)
}

// cachedRecord 是 Redis 里的缓存值
type cachedRecord struct {
	Hash types.Hash `cbor:"h"`
	Data []byte     `cbor:"d"`
}

// NewCachedBackend 包装一个底层后端
func NewCachedBackend(backend storage.Backend, cfg Config) (*CachedBackend, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedBackend{backend: backend, client: client, ttl: cfg.TTL}, nil
}

// cacheKey 生成 Redis Key，加前缀防止冲突
func (s *CachedBackend) cacheKey(hash types.Hash) string {
	return "vfs:obj:" + string(hash)
}

// Has 优先查 Redis。
// Redis 故障时降级为直查底层，绝不让缓存故障拖垮主流程。
func (s *CachedBackend) Has(ctx context.Context, hash types.Hash) (bool, error) {
	val, err := s.client.Exists(ctx, s.cacheKey(hash)).Result()
	if err != nil {
		slog.Warn("redis exists check failed, falling through", "err", err)
	} else if val > 0 {
		return true, nil
	}

	found, err := s.backend.Has(ctx, hash)
	if err != nil {
		return false, err
	}
	return found, nil
}

// Put 先用 Has 预检去重，再穿透到底层，成功后回填缓存
func (s *CachedBackend) Put(ctx context.Context, obj core.Object) error {
	exists, err := s.Has(ctx, obj.ID())
	if err != nil {
		return err
	}
	if exists {
		return nil // 幂等：已存在
	}

	if err := s.backend.Put(ctx, obj); err != nil {
		return err
	}

	// 底层写成功了才写缓存；缓存写失败可以忽略
	if payload, err := encodeCached(obj.ID(), obj.Bytes()); err == nil {
		s.client.Set(ctx, s.cacheKey(obj.ID()), payload, s.ttl)
	}
	return nil
}

// Get 先查 Redis；未命中则读底层并异步回填
func (s *CachedBackend) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	raw, err := s.client.Get(ctx, s.cacheKey(hash)).Bytes()
	if err == nil {
		var rec cachedRecord
		if cbor.Unmarshal(raw, &rec) == nil && rec.Hash == hash {
			return io.NopCloser(bytes.NewReader(rec.Data)), nil
		}
		// 缓存值解不开就当未命中，继续读底层
		slog.Warn("corrupt cache entry ignored", "hash", hash)
	} else if err != redis.Nil {
		slog.Warn("redis get failed, falling through", "err", err)
	}

	reader, err := s.backend.Get(ctx, hash)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, err
	}

	// 异步回填，不阻塞主流程。用 Background 保证上层 ctx 取消也能完成。
	go func() {
		fillCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if payload, err := encodeCached(hash, data); err == nil {
			s.client.Set(fillCtx, s.cacheKey(hash), payload, s.ttl)
		}
	}()

	return io.NopCloser(bytes.NewReader(data)), nil
}

// ExpandHash 透传 —— 前缀查询没法用点查缓存加速
func (s *CachedBackend) ExpandHash(ctx context.Context, prefix string) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, prefix)
}

func encodeCached(hash types.Hash, data []byte) ([]byte, error) {
	return cbor.Marshal(cachedRecord{Hash: hash, Data: data})
}
