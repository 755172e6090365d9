package core

import (
	"encoding/json"
	"fmt"
)

// 磁盘记录格式：{ "type": ..., 类型特有字段 } 的 JSON 文档。
// 为了和既有数据目录位级兼容，二进制负载存为整数数组 (不是 base64 字符串)，
// 加载时再还原成字节缓冲。这正是 encoding/json 对 []int 的默认编码，
// 所以这里用 JSON 而不是 CBOR (CBOR 会把字节串编码为原生 byte string)。

type treeRecord struct {
	Type    ObjectType  `json:"type"`
	Entries []TreeEntry `json:"entries"`
}

type textRecord struct {
	Type  ObjectType `json:"type"`
	Lines []string   `json:"lines"`
}

type bytesRecord struct {
	Type ObjectType `json:"type"`
	Data []int      `json:"data"`
}

type symlinkRecord struct {
	Type   ObjectType `json:"type"`
	Target string     `json:"target"`
}

// encodeRecord 把对象序列化为磁盘记录。
// 穷举 switch：新增对象类型时编译器不会提醒，但 default 分支会在测试里炸出来。
func encodeRecord(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Tree:
		entries := o.Entries
		if entries == nil {
			entries = []TreeEntry{}
		}
		return json.Marshal(treeRecord{Type: TypeTree, Entries: entries})
	case *Text:
		lines := o.Lines
		if lines == nil {
			lines = []string{}
		}
		return json.Marshal(textRecord{Type: TypeText, Lines: lines})
	case *Blob:
		data := make([]int, len(o.Data))
		for i, b := range o.Data {
			data[i] = int(b)
		}
		return json.Marshal(bytesRecord{Type: TypeBytes, Data: data})
	case *Symlink:
		return json.Marshal(symlinkRecord{Type: TypeSymlink, Target: o.Target})
	default:
		return nil, fmt.Errorf("unsupported object type: %s", obj.Type())
	}
}

// DecodeObject 从磁盘记录还原对象。
// 还原走各自的构造函数，Hash 会重新计算 —— 顺便校验了编码的确定性。
// 任何解析失败都以 error 返回，由上层 (cas.Store) 决定如何呈现。
func DecodeObject(data []byte) (Object, error) {
	var header struct {
		Type ObjectType `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("malformed object record: %w", err)
	}

	switch header.Type {
	case TypeTree:
		var rec treeRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("malformed tree record: %w", err)
		}
		return NewTree(rec.Entries)
	case TypeText:
		var rec textRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("malformed text record: %w", err)
		}
		return NewTextFromLines(rec.Lines)
	case TypeBytes:
		var rec bytesRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("malformed bytes record: %w", err)
		}
		buf := make([]byte, len(rec.Data))
		for i, v := range rec.Data {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("byte value out of range at index %d: %d", i, v)
			}
			buf[i] = byte(v)
		}
		return NewBlob(buf)
	case TypeSymlink:
		var rec symlinkRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("malformed symlink record: %w", err)
		}
		return NewSymlink(rec.Target)
	default:
		return nil, fmt.Errorf("unknown object type: %q", header.Type)
	}
}
