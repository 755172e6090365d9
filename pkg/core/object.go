package core

import "vaultfs/pkg/types"

// ObjectType 定义了 VaultFS 中的对象类型
// 这是一个封闭集合：所有消费点 (加载/检索/导出) 都必须做穷举 switch
type ObjectType string

const (
	TypeTree    ObjectType = "tree"    // 目录树：按名字排序的子条目列表
	TypeText    ObjectType = "text"    // 文本：按行存储 (写入时按 "\n" 切分)
	TypeBytes   ObjectType = "bytes"   // 原始二进制负载
	TypeSymlink ObjectType = "symlink" // 符号链接：单个目标字符串
)

// Object 是所有 Merkle DAG 节点的通用接口
// 对象是 Write-Once 的：不存在任何原地更新操作。
// Tree 只能引用在它之前已经算出 Hash 的子节点，所以对象图天然无环。
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象的哈希值 (内容地址)
	ID() types.Hash

	// Bytes 返回对象的序列化记录 (用于存储)
	Bytes() []byte
}
