package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/repository"
)

var (
	ErrUnknownRole = errors.New("unknown role name")
)

// UserService 用户目录业务接口（管理员视角）
type UserService interface {
	// ListByRole 按角色列出用户目录，供管理端浏览与指派选人
	ListByRole(ctx context.Context, roleName string, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Get(ctx context.Context, userID string) (*dto.UserResponse, error)
	ListLoginHistory(ctx context.Context, req *dto.LoginHistoryListRequest) ([]dto.LoginHistoryResponse, int64, error)
	ListStatuses(ctx context.Context) ([]dto.StatusResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) ListByRole(ctx context.Context, roleName string, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	switch roleName {
	case model.RoleStudent, model.RoleLecturer, model.RoleAdmin:
	default:
		return nil, 0, ErrUnknownRole
	}

	users, total, err := s.repo.User.ListByRole(ctx, roleName, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户目录失败", zap.Error(err), zap.String("role", roleName))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListLoginHistory(ctx context.Context, req *dto.LoginHistoryListRequest) ([]dto.LoginHistoryResponse, int64, error) {
	entries, total, err := s.repo.LoginHistory.List(ctx, req.UserID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.LoginHistoryResponse, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		resp := dto.LoginHistoryResponse{
			ID:        entry.LoginID,
			IPAddress: entry.IPAddress,
			UserAgent: entry.UserAgent,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.User != nil {
			resp.User = toUserBrief(entry.User)
		}
		result = append(result, resp)
	}
	return result, total, nil
}

func (s *userService) ListStatuses(ctx context.Context) ([]dto.StatusResponse, error) {
	statuses, err := s.repo.Status.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StatusResponse, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, dto.StatusResponse{ID: status.StatusID, Name: status.Name})
	}
	return result, nil
}
