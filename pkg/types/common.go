// pkg/types/common.go
package types

// Hash 代表对象的唯一标识符 (SHA256 Hex String)
// 这是一个“值对象”，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool { return h == "" }

// IsValid 检查是否是合法的 64 位小写 Hex
// 用于 ResolveRoot 区分 “字面 Hash” 和 “Ref 名字”
func (h Hash) IsValid() bool {
	if len(h) != 64 {
		return false
	}
	for _, c := range h {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

// RefName 代表一个可变指针的名字 (层级式字符串，例如 "work/main")
type RefName string

func (n RefName) String() string { return string(n) }

// WorkingPrefix 是自动推进 (auto-update) 命名空间的前缀。
// 针对该命名空间下引用的路径修改，会自动把引用推进到新的根 Hash。
const WorkingPrefix = "work/"

// IsWorking 判断引用是否在自动推进的 working 命名空间下
func (n RefName) IsWorking() bool {
	return len(n) > len(WorkingPrefix) && string(n[:len(WorkingPrefix)]) == WorkingPrefix
}

// Root 是路径查找的起点：要么是一个字面 Hash，要么是一个 Ref 名字。
// 解析逻辑见 refs.Manager.ResolveRoot。
type Root string

func (r Root) String() string { return string(r) }
