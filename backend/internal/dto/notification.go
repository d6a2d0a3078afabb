package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID            string `json:"id"`
	IssueID       string `json:"issue_id"`
	IssueTitle    string `json:"issue_title,omitempty"`
	RecipientRole string `json:"recipient_role"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	IsRead        bool   `json:"is_read"`
	CreatedAt     string `json:"created_at"`
}
