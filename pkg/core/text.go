package core

import (
	"strings"

	"vaultfs/pkg/types"
)

// Text 是文本对象：一段按行存储的有序序列。
// 写入时内容按 "\n" 切分成行，规范化内容是把行重新用 "\n" 拼回去，
// 所以 store/load 往返不会改变 Hash。
type Text struct {
	hash     types.Hash `json:"-"`
	rawBytes []byte     `json:"-"`

	Lines []string `json:"lines"`
}

// NewText 从原始字符串内容创建文本对象
func NewText(content string) (*Text, error) {
	return NewTextFromLines(strings.Split(content, "\n"))
}

// NewTextFromLines 从行序列创建文本对象 (EditRange 的拼接路径用它)
func NewTextFromLines(lines []string) (*Text, error) {
	// 防御：空切片和 [""] 规范化后是同一个内容 ("")
	if len(lines) == 0 {
		lines = []string{""}
	}
	t := &Text{Lines: lines}
	t.hash = CalculateHash(TypeText, []byte(t.Content()))
	raw, err := encodeRecord(t)
	if err != nil {
		return nil, err
	}
	t.rawBytes = raw
	return t, nil
}

// Content 还原原始字符串
func (t *Text) Content() string { return strings.Join(t.Lines, "\n") }

func (t *Text) Type() ObjectType { return TypeText }
func (t *Text) ID() types.Hash   { return t.hash }
func (t *Text) Bytes() []byte    { return t.rawBytes }
func (t *Text) Len() int         { return len(t.Lines) }
