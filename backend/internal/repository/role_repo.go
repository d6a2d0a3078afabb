package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
)

// RoleRepository 角色查找表数据访问接口
type RoleRepository interface {
	GetByName(ctx context.Context, roleName string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
}

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepo 创建 RoleRepository 实例
func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) GetByName(ctx context.Context, roleName string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("role_name = ?", roleName).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Order("role_name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
