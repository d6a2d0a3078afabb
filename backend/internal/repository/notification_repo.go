package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	CreateAll(ctx context.Context, notifications []*model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	// ListForUser 返回定向给该用户的行，以及面向其角色的广播行
	ListForUser(ctx context.Context, userID, roleName string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllReadForUser(ctx context.Context, userID, roleName string) error
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateAll(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(notifications).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Preload("Issue").
		Where("notification_id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListForUser(ctx context.Context, userID, roleName string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? OR (recipient_id IS NULL AND recipient_role = ?)", userID, roleName)

	if unreadOnly {
		db = db.Where("is_read = FALSE")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Issue").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepo) MarkAllReadForUser(ctx context.Context, userID, roleName string) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? OR (recipient_id IS NULL AND recipient_role = ?)", userID, roleName).
		Update("is_read", true).Error
}
