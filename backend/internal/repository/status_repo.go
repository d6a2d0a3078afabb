package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
)

// StatusRepository 状态查找表数据访问接口
type StatusRepository interface {
	// GetOrCreate 按名查找状态行，不存在则创建
	GetOrCreate(ctx context.Context, name string) (*model.Status, error)
	GetByName(ctx context.Context, name string) (*model.Status, error)
	List(ctx context.Context) ([]model.Status, error)
}

type statusRepo struct {
	db *gorm.DB
}

// NewStatusRepo 创建 StatusRepository 实例
func NewStatusRepo(db *gorm.DB) StatusRepository {
	return &statusRepo{db: db}
}

func (r *statusRepo) GetOrCreate(ctx context.Context, name string) (*model.Status, error) {
	var status model.Status
	err := r.db.WithContext(ctx).
		Where(model.Status{Name: name}).
		FirstOrCreate(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepo) GetByName(ctx context.Context, name string) (*model.Status, error) {
	var status model.Status
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepo) List(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	if err := r.db.WithContext(ctx).Order("created_at").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}
