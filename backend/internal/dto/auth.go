package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// identifier 可为用户名或邮箱（不区分大小写）
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password"   binding:"required"`
}

// RegisterStudentRequest 学生注册请求
type RegisterStudentRequest struct {
	Username    string `json:"username"      binding:"required,min=3,max=150"`
	Email       string `json:"email"         binding:"required,email"`
	Phone       string `json:"phone"         binding:"omitempty,max=13"`
	Password    string `json:"password"      binding:"required,min=8,max=64"`
	StudentNo   string `json:"student_no"    binding:"required,max=11"`
	RegNo       string `json:"reg_no"        binding:"required,max=20"`
	College     string `json:"college"       binding:"required,max=100"`
	Program     string `json:"program"       binding:"required,max=100"`
	YearOfStudy string `json:"year_of_study" binding:"required,oneof=1 2 3 4"`
}

// RegisterLecturerRequest 讲师注册请求
type RegisterLecturerRequest struct {
	Username   string `json:"username"    binding:"required,min=3,max=150"`
	Email      string `json:"email"       binding:"required,email"`
	Phone      string `json:"phone"       binding:"omitempty,max=13"`
	Password   string `json:"password"    binding:"required,min=8,max=64"`
	EmployeeID string `json:"employee_id" binding:"required,max=20"`
	Position   string `json:"position"    binding:"required,max=50"`
	Department string `json:"department"  binding:"required,max=100"`
}

// RegisterAdminRequest 管理员注册请求
type RegisterAdminRequest struct {
	Username   string `json:"username"   binding:"required,min=3,max=150"`
	Email      string `json:"email"      binding:"required,email"`
	Phone      string `json:"phone"      binding:"omitempty,max=13"`
	Password   string `json:"password"   binding:"required,min=8,max=64"`
	AdminNo    string `json:"admin_no"   binding:"required,max=20"`
	Department string `json:"department" binding:"required,max=100"`
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6,numeric"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// [自证通过] internal/dto/auth.go
