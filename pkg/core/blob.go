package core

import "vaultfs/pkg/types"

// Blob 是原始二进制对象 (ObjectType = "bytes")
type Blob struct {
	hash     types.Hash
	rawBytes []byte

	Data []byte
}

// NewBlob 创建一个二进制对象
func NewBlob(data []byte) (*Blob, error) {
	b := &Blob{Data: data}
	b.hash = CalculateHash(TypeBytes, data)
	raw, err := encodeRecord(b)
	if err != nil {
		return nil, err
	}
	b.rawBytes = raw
	return b, nil
}

func (b *Blob) Type() ObjectType { return TypeBytes }
func (b *Blob) ID() types.Hash   { return b.hash }
func (b *Blob) Bytes() []byte    { return b.rawBytes }
func (b *Blob) Len() int         { return len(b.Data) }
