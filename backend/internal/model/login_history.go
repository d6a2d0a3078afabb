package model

import "time"

// LoginHistory 登录审计表 — 对应 login_history（只追加，从不更新）
type LoginHistory struct {
	LoginID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"login_id"`
	UserID    string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	IPAddress string    `gorm:"type:varchar(45)"                               json:"ip_address"`
	UserAgent string    `gorm:"type:text"                                      json:"user_agent,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (LoginHistory) TableName() string { return "login_history" }
