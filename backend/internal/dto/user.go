package dto

// ── 用户目录模块 DTO ──

// UserListRequest 用户列表查询参数（按角色的目录端点共用）
type UserListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// LoginHistoryListRequest 登录历史查询参数
type LoginHistoryListRequest struct {
	PaginationRequest
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// LoginHistoryResponse 登录历史响应
type LoginHistoryResponse struct {
	ID        string     `json:"id"`
	User      *UserBrief `json:"user,omitempty"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent,omitempty"`
	CreatedAt string     `json:"created_at"`
}

// StatusResponse 状态查找表响应
type StatusResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
