package core

import (
	"crypto/sha256"
	"encoding/hex"

	"vaultfs/pkg/types"
)

// CalculateHash 计算对象的内容地址。
// 公式固定为 sha256(typeTag + ":" + canonicalContent)：
// 相同类型 + 相同规范化内容 ⇒ 相同 Hash，这就是去重 (Dedup) 的保证。
//
// 各类型的 canonicalContent 由各自的构造函数给出：
//   - text:    所有行用 "\n" 重新拼接 (等于写入时的原始内容)
//   - bytes:   原始负载本身
//   - symlink: 目标字符串
//   - tree:    条目按名字排序后的确定性序列化 (见 tree.go)
func CalculateHash(typeTag ObjectType, canonical []byte) types.Hash {
	h := sha256.New()
	h.Write([]byte(typeTag))
	h.Write([]byte{':'})
	h.Write(canonical)
	return types.Hash(hex.EncodeToString(h.Sum(nil)))
}
