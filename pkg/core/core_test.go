package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultfs/pkg/types"
)

// mockHash 生成一个合法的 64 字符 Hex，用来充当子节点引用
func mockHash(input string) types.Hash {
	sum := sha256.Sum256([]byte(input))
	return types.Hash(hex.EncodeToString(sum[:]))
}

// -----------------------------------------------------------------------------
// 1. 确定性哈希 (Deterministic Hashing)
// -----------------------------------------------------------------------------

func TestText_HashDeterminism(t *testing.T) {
	t1, err := NewText("hello\nworld")
	require.NoError(t, err)
	t2, err := NewText("hello\nworld")
	require.NoError(t, err)

	// 相同内容必须产生相同 Hash —— 这是去重的根基
	assert.Equal(t, t1.ID(), t2.ID())

	// 不同内容必须产生不同 Hash
	t3, err := NewText("hello\nworld\n")
	require.NoError(t, err)
	assert.NotEqual(t, t1.ID(), t3.ID())
}

func TestHash_TypeTagSeparation(t *testing.T) {
	// 相同字节内容、不同类型 ⇒ 不同 Hash (typeTag 参与摘要)
	txt, err := NewText("target")
	require.NoError(t, err)
	lnk, err := NewSymlink("target")
	require.NoError(t, err)
	blb, err := NewBlob([]byte("target"))
	require.NoError(t, err)

	assert.NotEqual(t, txt.ID(), lnk.ID())
	assert.NotEqual(t, txt.ID(), blb.ID())
	assert.NotEqual(t, lnk.ID(), blb.ID())
}

func TestTree_CanonicalOrdering(t *testing.T) {
	ha, hb := mockHash("a"), mockHash("b")

	t1, err := NewTree([]TreeEntry{
		{Name: "a.txt", Type: TypeText, Hash: ha},
		{Name: "b.txt", Type: TypeText, Hash: hb},
	})
	require.NoError(t, err)

	t2, err := NewTree([]TreeEntry{
		{Name: "b.txt", Type: TypeText, Hash: hb},
		{Name: "a.txt", Type: TypeText, Hash: ha},
	})
	require.NoError(t, err)

	// 插入顺序无关，name→hash 映射相同 ⇒ Hash 相同
	assert.Equal(t, t1.ID(), t2.ID(), "树哈希必须与插入顺序无关")
	// 条目本身也要被排序
	assert.Equal(t, "a.txt", t2.Entries[0].Name)
}

func TestTree_DuplicateName(t *testing.T) {
	_, err := NewTree([]TreeEntry{
		{Name: "x", Type: TypeText, Hash: mockHash("1")},
		{Name: "x", Type: TypeText, Hash: mockHash("2")},
	})
	assert.Error(t, err, "名字重复属于结构性错误，必须拒绝")
}

// -----------------------------------------------------------------------------
// 2. 文本切行语义
// -----------------------------------------------------------------------------

func TestText_LineSplitting(t *testing.T) {
	txt, err := NewText("hello\nworld")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, txt.Lines)
	assert.Equal(t, "hello\nworld", txt.Content())

	// 尾部换行产生一个空尾行，内容往返不变
	txt2, err := NewText("hello\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", ""}, txt2.Lines)
	assert.Equal(t, "hello\n", txt2.Content())

	// 空内容是单个空行
	txt3, err := NewText("")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, txt3.Lines)
}

// -----------------------------------------------------------------------------
// 3. 磁盘记录往返 (Record Round-Trip)
// -----------------------------------------------------------------------------

func TestRecord_RoundTrip(t *testing.T) {
	objs := []Object{}

	txt, err := NewText("line1\nline2")
	require.NoError(t, err)
	objs = append(objs, txt)

	blb, err := NewBlob([]byte{0x00, 0xff, 0x10})
	require.NoError(t, err)
	objs = append(objs, blb)

	lnk, err := NewSymlink("../elsewhere")
	require.NoError(t, err)
	objs = append(objs, lnk)

	tre, err := NewTree([]TreeEntry{{Name: "f", Type: TypeText, Hash: txt.ID()}})
	require.NoError(t, err)
	objs = append(objs, tre)

	for _, obj := range objs {
		decoded, err := DecodeObject(obj.Bytes())
		require.NoError(t, err, "类型 %s 解码失败", obj.Type())
		// 解码走构造函数、重算 Hash —— 往返后地址必须一致
		assert.Equal(t, obj.ID(), decoded.ID(), "类型 %s 往返后 Hash 变了", obj.Type())
		assert.Equal(t, obj.Type(), decoded.Type())
	}
}

func TestRecord_BytesAsIntegerArray(t *testing.T) {
	blb, err := NewBlob([]byte{1, 2, 255})
	require.NoError(t, err)

	// 互操作布局要求：负载是整数数组，不是 base64 字符串
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blb.Bytes(), &raw))
	assert.JSONEq(t, `[1,2,255]`, string(raw["data"]))
	assert.JSONEq(t, `"bytes"`, string(raw["type"]))
}

func TestRecord_EmptyTree(t *testing.T) {
	empty := NewEmptyTree()
	// 空树的 entries 必须序列化为 []，不能是 null
	assert.JSONEq(t, `{"type":"tree","entries":[]}`, string(empty.Bytes()))

	decoded, err := DecodeObject(empty.Bytes())
	require.NoError(t, err)
	assert.Equal(t, empty.ID(), decoded.ID())
}

func TestDecode_Malformed(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"type":"alien"}`),
		[]byte(`{"type":"bytes","data":[300]}`), // 超出 byte 范围
		[]byte(`{}`),
	}
	for _, c := range cases {
		_, err := DecodeObject(c)
		assert.Error(t, err, "输入 %q 应该解码失败", c)
	}
}

// -----------------------------------------------------------------------------
// 4. Tree 查找辅助
// -----------------------------------------------------------------------------

func TestTree_Lookup(t *testing.T) {
	tre, err := NewTree([]TreeEntry{
		{Name: "b", Type: TypeText, Hash: mockHash("b")},
		{Name: "a", Type: TypeTree, Hash: mockHash("a")},
		{Name: "c", Type: TypeBytes, Hash: mockHash("c")},
	})
	require.NoError(t, err)

	e, ok := tre.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, TypeText, e.Type)

	_, ok = tre.Lookup("zzz")
	assert.False(t, ok)

	rest := tre.Without("b")
	assert.Len(t, rest, 2)
}
