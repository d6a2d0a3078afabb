package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/service"
	pkgerrors "github.com/emmanuelwilliam/AITS-group-E/backend/pkg/errors"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/response"
)

// IssueHandler 工单模块 HTTP 处理器
type IssueHandler struct {
	issueSvc service.IssueService
}

// NewIssueHandler 创建 IssueHandler
func NewIssueHandler(issueSvc service.IssueService) *IssueHandler {
	return &IssueHandler{issueSvc: issueSvc}
}

// Create 学生提交工单
// POST /api/v1/issues
func (h *IssueHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.issueSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotStudent):
			response.Forbidden(c, 12002, "only students can submit issues")
		case errors.Is(err, service.ErrDescriptionTooShort):
			response.BadRequest(c, 12007, "description must be at least 20 characters")
		case errors.Is(err, service.ErrProhibitedTitle):
			response.BadRequest(c, 12008, "title contains prohibited words")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// ListMine 学生查看自己的工单
// GET /api/v1/issues/mine
func (h *IssueHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.issueSvc.ListOwn(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// List 带筛选的工单列表（管理员全量，讲师限定本人受理）
// GET /api/v1/issues?status=&priority=&category=&assigned_to=&page=&page_size=
func (h *IssueHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.IssueListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.issueSvc.List(c.Request.Context(), userID, role, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownStatus) {
			response.BadRequest(c, 12006, "unknown status value")
			return
		}
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 查看单个工单
// GET /api/v1/issues/:id
func (h *IssueHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.issueSvc.Get(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIssueNotFound):
			response.NotFound(c, 12001, "issue not found")
		case errors.Is(err, service.ErrIssueForbidden):
			response.Forbidden(c, 12003, "issue does not belong to you")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Assign 管理员指派工单给讲师
// PUT /api/v1/issues/:id/assign
func (h *IssueHandler) Assign(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.issueSvc.Assign(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handleMutationError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateStatus 受理讲师更新工单状态
// PUT /api/v1/issues/:id/status
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.issueSvc.UpdateStatus(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handleMutationError(c, err)
		return
	}
	response.OK(c, result)
}

// Statistics 管理员统计视图
// GET /api/v1/issues/statistics
func (h *IssueHandler) Statistics(c *gin.Context) {
	result, err := h.issueSvc.Statistics(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

func (h *IssueHandler) handleMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIssueNotFound):
		response.NotFound(c, 12001, "issue not found")
	case errors.Is(err, service.ErrNotAdmin):
		response.Forbidden(c, 10003, "administrator role required")
	case errors.Is(err, service.ErrNotAssignee):
		response.Forbidden(c, 12005, "only the assigned lecturer may update this issue")
	case errors.Is(err, service.ErrLecturerNotFound):
		response.NotFound(c, 12009, "lecturer not found")
	case errors.Is(err, service.ErrUnknownStatus):
		response.BadRequest(c, 12006, "unknown status value")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13001, "user not found")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12010, "issue was modified by another operation, please retry")
	default:
		response.InternalError(c)
	}
}
