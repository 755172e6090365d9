package meta

import (
	"time"

	"gorm.io/datatypes"
)

// RefLog 是引用变更日志 (reflog)：每次引用指针移动都记一行。
// 引用文件本身只有“当前指向”，历史入口全靠这张表；
// 并发覆盖 (last-write-wins) 丢掉的那个根也能在这里找回来。
type RefLog struct {
	ID uint `gorm:"primaryKey"`

	// RefName 例如 "work/main"
	RefName string `gorm:"index;type:varchar(255);not null"`

	// OldHash 变更前的指向；首次创建为空
	OldHash string `gorm:"type:char(64)"`

	// NewHash 变更后的指向；删除引用时为空
	NewHash string `gorm:"type:char(64)"`

	// Detail 记录触发变更的操作 (写入路径、操作类型等)，任意 JSON
	Detail datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
}

// TableName 强制指定表名
func (RefLog) TableName() string {
	return "ref_logs"
}
