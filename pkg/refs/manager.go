package refs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"vaultfs/pkg/cas"
	"vaultfs/pkg/storage"
	"vaultfs/pkg/types"
)

var (
	// ErrInvalidReference 表示写操作引用了对象库里不存在的 Hash
	ErrInvalidReference = errors.New("invalid reference: hash not in object store")

	// ErrInvalidName 表示引用名不合法 (空、路径穿越等)
	ErrInvalidName = errors.New("invalid ref name")
)

// DefaultWorkingRef 是默认的工作引用。
// 工作命名空间 (work/) 下的引用在第一次解析时自动创建，指向空树；
// 其下的引用会被路径修改自动推进。
const DefaultWorkingRef types.RefName = "work/main"

// Hook 在引用的 Hash 每次发生变化时被调用。
// 删除引用时 newHash 为空字符串。外部的 live-reload 传输层只消费这个口子。
type Hook func(name types.RefName, newHash types.Hash)

// RefInfo 是 ListRefs 的返回条目
type RefInfo struct {
	Name      types.RefName
	Hash      types.Hash
	UpdatedAt time.Time
}

// Manager 负责管理引用：<rootPath>/<ref-name-as-path> 的纯文本文件，
// 内容就是指向的 Hash。
//
// 指针更新是单文件原地覆盖，没有 compare-and-swap：两个并发写者
// 基于同一个过期父根竞争时，后写者胜 (last-write-wins)。这是沿袭的
// 语义，测试里有显式覆盖；丢失的更新至少会留在 reflog 里可查。
type Manager struct {
	rootPath string
	store    *cas.Store

	mu    sync.RWMutex
	hooks []Hook
}

// NewManager 创建引用管理器。rootPath 一般是 <dbRoot>/refs。
func NewManager(rootPath string, store *cas.Store) (*Manager, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create refs dir: %w", err)
	}
	return &Manager{rootPath: rootPath, store: store}, nil
}

// OnChange 注册变更回调。回调在持有写入者 goroutine 上同步执行。
func (m *Manager) OnChange(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

func (m *Manager) notify(name types.RefName, newHash types.Hash) {
	m.mu.RLock()
	hooks := make([]Hook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.RUnlock()

	slog.Info("ref changed", "ref", name, "hash", newHash)
	for _, h := range hooks {
		h(name, newHash)
	}
}

// validateName 拒绝空名字和路径穿越
func validateName(name types.RefName) error {
	n := string(name)
	if n == "" || strings.HasPrefix(n, "/") || strings.HasSuffix(n, "/") {
		return ErrInvalidName
	}
	for _, seg := range strings.Split(n, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidName
		}
	}
	return nil
}

// refPath 返回引用的物理路径 (名字就是相对路径)
func (m *Manager) refPath(name types.RefName) string {
	return filepath.Join(m.rootPath, filepath.FromSlash(string(name)))
}

// GetRef 读取引用指向的 Hash。不存在返回 storage.ErrNotFound。
func (m *Manager) GetRef(ctx context.Context, name types.RefName) (types.Hash, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(m.refPath(name))
	if os.IsNotExist(err) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", name, err)
	}
	// 清理换行符 (手工编辑时可能带 \n)
	return types.Hash(strings.TrimSpace(string(data))), nil
}

// SetRef 把引用指向一个已存在的 Hash。
// 未知 Hash 报 ErrInvalidReference；Hash 实际变化时触发回调。
func (m *Manager) SetRef(ctx context.Context, name types.RefName, hash types.Hash) error {
	if err := validateName(name); err != nil {
		return err
	}
	ok, err := m.store.Has(ctx, hash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidReference, hash)
	}

	old, err := m.GetRef(ctx, name)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	path := m.refPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// 单文件覆盖写；并发 SetRef 为 last-write-wins
	if err := os.WriteFile(path, []byte(hash), 0644); err != nil {
		return fmt.Errorf("failed to write ref %s: %w", name, err)
	}

	if old != hash {
		m.notify(name, hash)
	}
	return nil
}

// DeleteRef 删除引用。存在并删除成功返回 true，回调收到空 Hash。
func (m *Manager) DeleteRef(ctx context.Context, name types.RefName) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	err := os.Remove(m.refPath(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete ref %s: %w", name, err)
	}
	m.notify(name, "")
	return true, nil
}

// ListRefs 列出引用 (可选前缀过滤)，按最近更新排序
func (m *Manager) ListRefs(ctx context.Context, prefix string) ([]RefInfo, error) {
	var out []RefInfo

	err := filepath.WalkDir(m.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(m.rootPath, path)
		if err != nil {
			return err
		}
		name := types.RefName(filepath.ToSlash(rel))
		if prefix != "" && !strings.HasPrefix(string(name), prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, RefInfo{
			Name:      name,
			Hash:      types.Hash(strings.TrimSpace(string(data))),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ResolveRoot 把一个 Root 输入解析为 Hash：
//   - 长得像 Hash (64 位 Hex) ⇒ 校验存在性后直接使用
//   - 否则按引用名查找
//   - working 命名空间的引用在第一次解析时自动创建，指向空树
//
// 解析不出来返回 storage.ErrNotFound。
func (m *Manager) ResolveRoot(ctx context.Context, root types.Root) (types.Hash, error) {
	if h := types.Hash(root); h.IsValid() {
		ok, err := m.store.Has(ctx, h)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", storage.ErrNotFound
		}
		return h, nil
	}

	name := types.RefName(root)
	if err := validateName(name); err != nil {
		return "", storage.ErrNotFound
	}

	hash, err := m.GetRef(ctx, name)
	if errors.Is(err, storage.ErrNotFound) && name.IsWorking() {
		// 首次引用：初始化为空树
		empty, err := m.store.EnsureEmptyTree(ctx)
		if err != nil {
			return "", err
		}
		if err := m.SetRef(ctx, name, empty); err != nil {
			return "", err
		}
		return empty, nil
	}
	return hash, err
}

// IsAutoUpdating 判断一个 Root 输入是否是会被路径修改自动推进的引用
func (m *Manager) IsAutoUpdating(root types.Root) (types.RefName, bool) {
	if types.Hash(root).IsValid() {
		return "", false
	}
	name := types.RefName(root)
	return name, name.IsWorking()
}
