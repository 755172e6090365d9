package core

import (
	"bytes"
	"fmt"
	"sort"

	"vaultfs/pkg/types"
)

// TreeEntry 是 Tree 中的一条子引用
// Tree 只持有子对象的 Hash，从不直接拥有子对象本身 (子对象可以被多个父节点共享)
type TreeEntry struct {
	Name string     `json:"name"`
	Type ObjectType `json:"type"`
	Hash types.Hash `json:"hash"`
}

// Tree 是目录型对象：按名字排序、名字唯一的子条目列表
type Tree struct {
	hash     types.Hash `json:"-"`
	rawBytes []byte     `json:"-"`

	Entries []TreeEntry `json:"entries"`
}

// NewTree 创建一个新的目录树节点。
// 条目会先按名字排序再参与哈希，所以两个 name→hash 映射相同的树，
// 无论插入顺序如何，Hash 必然一致 (Canonical Tree Hashing)。
// 名字重复直接报错，这属于调用方的结构性 Bug。
func NewTree(entries []TreeEntry) (*Tree, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return nil, fmt.Errorf("duplicate entry name in tree: %q", sorted[i].Name)
		}
	}

	t := &Tree{Entries: sorted}
	t.hash = CalculateHash(TypeTree, t.canonical())
	raw, err := encodeRecord(t)
	if err != nil {
		return nil, err
	}
	t.rawBytes = raw
	return t, nil
}

// NewEmptyTree 返回空树。工作引用的初始指向就是它。
func NewEmptyTree() *Tree {
	t, err := NewTree(nil)
	if err != nil {
		// 空条目列表不可能失败
		panic(err)
	}
	return t
}

// canonical 生成确定性序列化：每条 "name\x00type\x00hash\n"。
// 名字里不允许出现 NUL 和 "/" (路径分隔符)，所以 \x00 是安全的定界符。
func (t *Tree) canonical() []byte {
	var buf bytes.Buffer
	for _, e := range t.Entries {
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.WriteString(string(e.Type))
		buf.WriteByte(0)
		buf.WriteString(string(e.Hash))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Lookup 在已排序的条目里二分查找一个名字
func (t *Tree) Lookup(name string) (TreeEntry, bool) {
	i := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Name >= name })
	if i < len(t.Entries) && t.Entries[i].Name == name {
		return t.Entries[i], true
	}
	return TreeEntry{}, false
}

// Without 返回一份去掉指定名字后的条目拷贝 (原 Tree 不可变，绝不原地改)
func (t *Tree) Without(name string) []TreeEntry {
	out := make([]TreeEntry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}

func (t *Tree) Type() ObjectType { return TypeTree }
func (t *Tree) ID() types.Hash   { return t.hash }
func (t *Tree) Bytes() []byte    { return t.rawBytes }
func (t *Tree) Len() int         { return len(t.Entries) }
