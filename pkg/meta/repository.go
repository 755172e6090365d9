package meta

import (
	"context"
	"encoding/json"
	"fmt"

	"vaultfs/pkg/types"
)

// Repository 封装所有对元数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordChange 追加一条引用变更记录。
// detail 是任意操作上下文 (op/path 等)；它只用于审计展示，不参与任何语义。
func (r *Repository) RecordChange(ctx context.Context, name types.RefName, oldHash, newHash types.Hash, detail map[string]any) error {
	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal reflog detail: %w", err)
		}
	}

	entry := RefLog{
		RefName: string(name),
		OldHash: string(oldHash),
		NewHash: string(newHash),
		Detail:  detailJSON,
	}
	if err := r.db.GetConn().WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record ref change: %w", err)
	}
	return nil
}

// History 查询一个引用的变更历史 (最新在前)。name 为空时返回所有引用的记录。
func (r *Repository) History(ctx context.Context, name types.RefName, limit int) ([]RefLog, error) {
	if limit <= 0 {
		limit = 50
	}

	q := r.db.GetConn().WithContext(ctx).Order("id DESC").Limit(limit)
	if name != "" {
		q = q.Where("ref_name = ?", string(name))
	}

	var logs []RefLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to query reflog: %w", err)
	}
	return logs, nil
}
