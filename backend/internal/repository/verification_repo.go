package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
)

// VerificationRepository 邮箱验证码数据访问接口
type VerificationRepository interface {
	Create(ctx context.Context, verification *model.EmailVerification) error
	// GetLatestByUserID 返回该用户最近一次生成的验证码
	GetLatestByUserID(ctx context.Context, userID string) (*model.EmailVerification, error)
	MarkUsed(ctx context.Context, verificationID string) error
}

type verificationRepo struct {
	db *gorm.DB
}

// NewVerificationRepo 创建 VerificationRepository 实例
func NewVerificationRepo(db *gorm.DB) VerificationRepository {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) Create(ctx context.Context, verification *model.EmailVerification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

func (r *verificationRepo) GetLatestByUserID(ctx context.Context, userID string) (*model.EmailVerification, error) {
	var v model.EmailVerification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepo) MarkUsed(ctx context.Context, verificationID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.EmailVerification{}).
		Where("verification_id = ?", verificationID).
		Update("used_at", now).Error
}
