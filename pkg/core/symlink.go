package core

import "vaultfs/pkg/types"

// Symlink 是符号链接对象：只有一个目标字符串
type Symlink struct {
	hash     types.Hash
	rawBytes []byte

	Target string
}

// NewSymlink 创建一个符号链接对象
func NewSymlink(target string) (*Symlink, error) {
	s := &Symlink{Target: target}
	s.hash = CalculateHash(TypeSymlink, []byte(target))
	raw, err := encodeRecord(s)
	if err != nil {
		return nil, err
	}
	s.rawBytes = raw
	return s, nil
}

func (s *Symlink) Type() ObjectType { return TypeSymlink }
func (s *Symlink) ID() types.Hash   { return s.hash }
func (s *Symlink) Bytes() []byte    { return s.rawBytes }
