package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
)

// LoginHistoryRepository 登录审计数据访问接口（只追加）
type LoginHistoryRepository interface {
	Create(ctx context.Context, entry *model.LoginHistory) error
	List(ctx context.Context, userID string, offset, limit int) ([]model.LoginHistory, int64, error)
}

type loginHistoryRepo struct {
	db *gorm.DB
}

// NewLoginHistoryRepo 创建 LoginHistoryRepository 实例
func NewLoginHistoryRepo(db *gorm.DB) LoginHistoryRepository {
	return &loginHistoryRepo{db: db}
}

func (r *loginHistoryRepo) Create(ctx context.Context, entry *model.LoginHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *loginHistoryRepo) List(ctx context.Context, userID string, offset, limit int) ([]model.LoginHistory, int64, error) {
	var entries []model.LoginHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LoginHistory{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
