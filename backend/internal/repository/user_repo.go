package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByIdentifier 按用户名或邮箱查找（不区分大小写）
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListByRole(ctx context.Context, roleName, keyword string, offset, limit int) ([]model.User, int64, error)

	CreateStudentProfile(ctx context.Context, profile *model.StudentProfile) error
	CreateLecturerProfile(ctx context.Context, profile *model.LecturerProfile) error
	CreateAdminProfile(ctx context.Context, profile *model.AdministratorProfile) error
	GetStudentProfile(ctx context.Context, userID string) (*model.StudentProfile, error)
	GetStudentProfileByNo(ctx context.Context, studentNo string) (*model.StudentProfile, error)
	GetStudentProfileByRegNo(ctx context.Context, regNo string) (*model.StudentProfile, error)
	GetLecturerProfileByEmployeeID(ctx context.Context, employeeID string) (*model.LecturerProfile, error)
	GetAdminProfileByNo(ctx context.Context, adminNo string) (*model.AdministratorProfile, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("StudentProfile").
		Preload("LecturerProfile").
		Preload("AdminProfile").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	ident := strings.ToLower(identifier)
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("StudentProfile").
		Preload("LecturerProfile").
		Preload("AdminProfile").
		Where("LOWER(username) = ? OR LOWER(email) = ?", ident, ident).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) ListByRole(ctx context.Context, roleName, keyword string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN roles ON roles.role_id = users.role_id").
		Where("roles.role_name = ?", roleName)

	if keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		db = db.Where("LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Role").
		Preload("StudentProfile").
		Preload("LecturerProfile").
		Preload("AdminProfile").
		Offset(offset).Limit(limit).
		Order("users.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ── 档案 ──

func (r *userRepo) CreateStudentProfile(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepo) CreateLecturerProfile(ctx context.Context, profile *model.LecturerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepo) CreateAdminProfile(ctx context.Context, profile *model.AdministratorProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepo) GetStudentProfile(ctx context.Context, userID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) GetStudentProfileByNo(ctx context.Context, studentNo string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).Where("student_no = ?", studentNo).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) GetStudentProfileByRegNo(ctx context.Context, regNo string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).Where("reg_no = ?", regNo).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) GetLecturerProfileByEmployeeID(ctx context.Context, employeeID string) (*model.LecturerProfile, error) {
	var profile model.LecturerProfile
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) GetAdminProfileByNo(ctx context.Context, adminNo string) (*model.AdministratorProfile, error) {
	var profile model.AdministratorProfile
	err := r.db.WithContext(ctx).Where("admin_no = ?", adminNo).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// [自证通过] internal/repository/user_repo.go
