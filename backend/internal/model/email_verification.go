package model

import "time"

// EmailVerification 邮箱验证码表 — 对应 email_verifications
// 注册时生成 6 位数字码，30 分钟内有效，使用后记录 used_at
type EmailVerification struct {
	VerificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"verification_id"`
	UserID         string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Code           string     `gorm:"type:char(6);not null"                          json:"-"`
	ExpiresAt      time.Time  `gorm:"not null"                                       json:"expires_at"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (EmailVerification) TableName() string { return "email_verifications" }

// Expired 判断验证码是否已过期
func (v *EmailVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// Used 判断验证码是否已被使用
func (v *EmailVerification) Used() bool {
	return v.UsedAt != nil
}
