package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/exporter"
	"vaultfs/pkg/ignore"
	"vaultfs/pkg/ingester"
	"vaultfs/pkg/meta"
	"vaultfs/pkg/refs"
	"vaultfs/pkg/search"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/storage/cache"
	"vaultfs/pkg/storage/s3"
	"vaultfs/pkg/types"
	"vaultfs/pkg/vfs"

	"vaultfs/pkg/storage/disk"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有单例服务，CLI 命令只跟它打交道
type App struct {
	Store    *cas.Store
	Refs     *refs.Manager
	Engine   *vfs.Engine
	Searcher *search.Searcher
	Exporter *exporter.Exporter
	Meta     *meta.Repository

	// DBPath 是库根目录 (<dbRoot>/obj、<dbRoot>/refs、<dbRoot>/meta.db)
	DBPath string

	metaDB *meta.DB
}

// New 是工厂函数，按 Viper 配置组装所有服务。
// 后端选择 (disk/s3)、可选的 Redis 缓存层、reflog 落库都在这里接线。
func New(ctx context.Context) (*App, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		return nil, fmt.Errorf("db path not set")
	}

	backend, err := buildBackend(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 可选的 Redis 读穿缓存：地址为空就直连后端
	if addr := viper.GetString("cache.redis.addr"); addr != "" {
		cached, err := cache.NewCachedBackend(backend, cache.Config{
			RedisURL: addr,
			TTL:      viper.GetDuration("cache.redis.ttl"),
		})
		if err != nil {
			// 缓存不可用时降级为直连，不阻塞启动
			slog.Warn("redis cache unavailable, falling back to direct backend", "err", err)
		} else {
			backend = cached
		}
	}

	store := cas.NewStore(backend)
	refMgr, err := refs.NewManager(filepath.Join(dbPath, "refs"), store)
	if err != nil {
		return nil, fmt.Errorf("failed to init refs: %w", err)
	}

	a := &App{
		Store:    store,
		Refs:     refMgr,
		Engine:   vfs.NewEngine(store, refMgr),
		Searcher: search.NewSearcher(store, refMgr),
		Exporter: exporter.NewExporter(store),
		DBPath:   dbPath,
	}

	// reflog：每次引用变更记一条流水。oldHash 从上一条日志接链，
	// 所以不需要 Hook 额外携带旧值。
	db, err := meta.NewDB(ctx, meta.Config{
		Driver: viper.GetString("meta.driver"),
		DSN:    viper.GetString("meta.dsn"),
	})
	if err != nil {
		slog.Warn("meta db unavailable, ref history disabled", "err", err)
	} else {
		a.metaDB = db
		a.Meta = meta.NewRepository(db)
		refMgr.OnChange(a.recordRefChange)
	}

	return a, nil
}

// recordRefChange 是挂在引用管理器上的 reflog 钩子
func (a *App) recordRefChange(name types.RefName, newHash types.Hash) {
	ctx := context.Background()

	var oldHash types.Hash
	if prev, err := a.Meta.History(ctx, name, 1); err == nil && len(prev) == 1 {
		oldHash = types.Hash(prev[0].NewHash)
	}

	detail := map[string]any{"source": "ref-manager"}
	if newHash == "" {
		detail["deleted"] = true
	}
	if err := a.Meta.RecordChange(ctx, name, oldHash, newHash, detail); err != nil {
		slog.Warn("failed to record ref change", "ref", name, "err", err)
	}
}

// buildBackend 按配置选择对象后端
func buildBackend(ctx context.Context, dbPath string) (storage.Backend, error) {
	switch t := viper.GetString("storage.type"); t {
	case "", "disk":
		return disk.NewAdapter(filepath.Join(dbPath, "obj"))
	case "s3":
		return s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			AccessKeyID:     viper.GetString("storage.s3.access_key"),
			SecretAccessKey: viper.GetString("storage.s3.secret_key"),
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", t)
	}
}

// NewIngester 构建一个绑定 srcDir 忽略规则的导入器
func (a *App) NewIngester(srcDir string) (*ingester.Ingester, error) {
	matcher, err := ignore.NewMatcher(srcDir)
	if err != nil {
		return nil, err
	}
	return ingester.NewIngester(a.Store, matcher), nil
}

// Close 释放持有的连接
func (a *App) Close() error {
	if a.metaDB == nil {
		return nil
	}
	conn, err := a.metaDB.GetConn().DB()
	if err != nil {
		return err
	}
	return conn.Close()
}
