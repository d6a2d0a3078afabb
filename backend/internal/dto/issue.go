package dto

// ── 工单模块 DTO ──

// CreateIssueRequest 学生提交工单请求
// 描述长度与标题敏感词在 Service 层校验
type CreateIssueRequest struct {
	Title       string `json:"title"         binding:"required,max=255"`
	Description string `json:"description"   binding:"required"`
	College     string `json:"college"       binding:"required,max=100"`
	Program     string `json:"program"       binding:"required,max=100"`
	YearOfStudy string `json:"year_of_study" binding:"required,oneof=1 2 3 4"`
	Semester    string `json:"semester"      binding:"required,oneof=1 2 3"`
	CourseUnit  string `json:"course_unit"   binding:"required,max=100"`
	CourseCode  string `json:"course_code"   binding:"required,max=20"`
	Category    string `json:"category"      binding:"omitempty,oneof=Academic Discipline Financial Other"`
	Priority    string `json:"priority"      binding:"omitempty,oneof=Low Medium High Urgent"`
}

// AssignIssueRequest 管理员指派工单请求
type AssignIssueRequest struct {
	LecturerID string `json:"lecturer_id" binding:"required,uuid"`
}

// UpdateIssueStatusRequest 受理人更新工单状态请求
// 状态名大小写不敏感，Service 层归一化到规范形式
type UpdateIssueStatusRequest struct {
	Status          string `json:"status"           binding:"required,max=50"`
	ResolutionNotes string `json:"resolution_notes" binding:"omitempty,max=2000"`
}

// IssueListRequest 工单筛选查询参数
type IssueListRequest struct {
	PaginationRequest
	Status     string `form:"status"      binding:"omitempty,max=50"`
	Priority   string `form:"priority"    binding:"omitempty,oneof=Low Medium High Urgent"`
	Category   string `form:"category"    binding:"omitempty,oneof=Academic Discipline Financial Other"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
}

// ── 响应 ──

// IssueResponse 工单响应
type IssueResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	College         string     `json:"college"`
	Program         string     `json:"program"`
	YearOfStudy     string     `json:"year_of_study"`
	Semester        string     `json:"semester"`
	CourseUnit      string     `json:"course_unit"`
	CourseCode      string     `json:"course_code"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status,omitempty"`
	Student         *UserBrief `json:"student,omitempty"`
	AssignedTo      *UserBrief `json:"assigned_to,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// StatusCount 按状态聚合计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// AssigneeCount 按受理人聚合计数
type AssigneeCount struct {
	AssigneeID string `json:"assignee_id"`
	Username   string `json:"username"`
	Count      int64  `json:"count"`
}

// StatisticsResponse 管理员统计响应
type StatisticsResponse struct {
	Total      int64           `json:"total"`
	ByStatus   []StatusCount   `json:"by_status"`
	ByAssignee []AssigneeCount `json:"by_assignee"`
}
