package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/service"
	pkgerrors "github.com/emmanuelwilliam/AITS-group-E/backend/pkg/errors"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/jwt"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.RegisterResponse
	registerErr    error
	verifyErr      error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	currentResult  *dto.UserResponse
	currentErr     error
	changePassErr  error
}

func (m *mockAuthService) RegisterStudent(_ context.Context, _ *dto.RegisterStudentRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) RegisterLecturer(_ context.Context, _ *dto.RegisterLecturerRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) RegisterAdmin(_ context.Context, _ *dto.RegisterAdminRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) VerifyEmail(_ context.Context, _ *dto.VerifyEmailRequest) error {
	return m.verifyErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest, _, _ string) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock IssueService ──

type mockIssueService struct {
	createResult *dto.IssueResponse
	createErr    error
	assignResult *dto.IssueResponse
	assignErr    error
	updateResult *dto.IssueResponse
	updateErr    error
	getResult    *dto.IssueResponse
	getErr       error
	listOwn      []dto.IssueResponse
	listOwnErr   error
	listResult   []dto.IssueResponse
	listTotal    int64
	listErr      error
	statsResult  *dto.StatisticsResponse
	statsErr     error
}

func (m *mockIssueService) Create(_ context.Context, _ string, _ *dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockIssueService) Assign(_ context.Context, _, _ string, _ *dto.AssignIssueRequest) (*dto.IssueResponse, error) {
	return m.assignResult, m.assignErr
}
func (m *mockIssueService) UpdateStatus(_ context.Context, _, _ string, _ *dto.UpdateIssueStatusRequest) (*dto.IssueResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockIssueService) Get(_ context.Context, _, _, _ string) (*dto.IssueResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockIssueService) ListOwn(_ context.Context, _ string) ([]dto.IssueResponse, error) {
	return m.listOwn, m.listOwnErr
}
func (m *mockIssueService) List(_ context.Context, _, _ string, _ *dto.IssueListRequest) ([]dto.IssueResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockIssueService) Statistics(_ context.Context) (*dto.StatisticsResponse, error) {
	return m.statsResult, m.statsErr
}

// ── Mock NotificationService ──

type mockNotificationService struct {
	listResult     []dto.NotificationResponse
	listTotal      int64
	listErr        error
	markReadErr    error
	markAllReadErr error
}

func (m *mockNotificationService) IssueCreated(_ context.Context, _ *model.Issue, _ *model.User) {}
func (m *mockNotificationService) IssueAssigned(_ context.Context, _ *model.Issue, _, _ *model.User, _ string) {
}
func (m *mockNotificationService) IssueStatusChanged(_ context.Context, _ *model.Issue, _ *model.User, _, _ string) {
}
func (m *mockNotificationService) ListForUser(_ context.Context, _, _ string, _ *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockNotificationService) MarkRead(_ context.Context, _, _, _ string) error {
	return m.markReadErr
}
func (m *mockNotificationService) MarkAllRead(_ context.Context, _, _ string) error {
	return m.markAllReadErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportStatistics(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// withIdentity 模拟 JWT 中间件注入身份
func withIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Identifier: "alice",
		Password:   "password123",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Identifier: "alice",
		Password:   "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InactiveAccount(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrAccountInactive}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Identifier: "alice",
		Password:   "password123",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAuthHandler_Login_MissingBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected code 10001, got %d", resp.Code)
	}
}

func TestAuthHandler_RegisterStudent_EmailTaken(t *testing.T) {
	mock := &mockAuthService{registerErr: service.ErrEmailTaken}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/register/student", h.RegisterStudent)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register/student", jsonBody(dto.RegisterStudentRequest{
		Username:    "alice",
		Email:       "alice@students.mak.ac.ug",
		Password:    "password123",
		StudentNo:   "2400721001",
		RegNo:       "24/U/21001/PS",
		College:     "COCIS",
		Program:     "BSc Computer Science",
		YearOfStudy: "2",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11004 {
		t.Errorf("expected code 11004, got %d", resp.Code)
	}
}

func TestAuthHandler_VerifyEmail_ExpiredCode(t *testing.T) {
	mock := &mockAuthService{verifyErr: service.ErrCodeExpired}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/verify-email", h.VerifyEmail)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/verify-email", jsonBody(dto.VerifyEmailRequest{
		Email: "alice@students.mak.ac.ug",
		Code:  "123456",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11010 {
		t.Errorf("expected code 11010, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// IssueHandler Tests
// ═══════════════════════════════════════════════════════════

func issueCreateBody() io.Reader {
	return jsonBody(dto.CreateIssueRequest{
		Title:       "Missing coursework marks",
		Description: "My coursework marks for CSC2100 are missing from the portal despite timely submission.",
		College:     "COCIS",
		Program:     "BSc Computer Science",
		YearOfStudy: "2",
		Semester:    "1",
		CourseUnit:  "Data Structures",
		CourseCode:  "CSC2100",
	})
}

func TestIssueHandler_Create_Success(t *testing.T) {
	mock := &mockIssueService{
		createResult: &dto.IssueResponse{ID: "issue-1", Status: model.StatusOpen},
	}
	h := NewIssueHandler(mock)

	r := gin.New()
	r.POST("/issues", withIdentity("user-1", model.RoleStudent), h.Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/issues", issueCreateBody())
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestIssueHandler_Create_Unauthenticated(t *testing.T) {
	h := NewIssueHandler(&mockIssueService{})

	r := gin.New()
	r.POST("/issues", h.Create) // 未注入身份

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/issues", issueCreateBody())
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestIssueHandler_Create_ShortDescription(t *testing.T) {
	mock := &mockIssueService{createErr: service.ErrDescriptionTooShort}
	h := NewIssueHandler(mock)

	r := gin.New()
	r.POST("/issues", withIdentity("user-1", model.RoleStudent), h.Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/issues", issueCreateBody())
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12007 {
		t.Errorf("expected code 12007, got %d", resp.Code)
	}
}

func TestIssueHandler_Assign_OptimisticLockConflict(t *testing.T) {
	mock := &mockIssueService{assignErr: pkgerrors.ErrOptimisticLock}
	h := NewIssueHandler(mock)

	r := gin.New()
	r.PUT("/issues/:id/assign", withIdentity("admin-1", model.RoleAdmin), h.Assign)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/issues/issue-1/assign", jsonBody(dto.AssignIssueRequest{
		LecturerID: "7a3b73a0-3f0e-4a3b-8a5e-9a4f3a1b2c3d",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12010 {
		t.Errorf("expected code 12010, got %d", resp.Code)
	}
}

func TestIssueHandler_UpdateStatus_NotAssignee(t *testing.T) {
	mock := &mockIssueService{updateErr: service.ErrNotAssignee}
	h := NewIssueHandler(mock)

	r := gin.New()
	r.PUT("/issues/:id/status", withIdentity("lect-1", model.RoleLecturer), h.UpdateStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/issues/issue-1/status", jsonBody(dto.UpdateIssueStatusRequest{
		Status: model.StatusInProgress,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12005 {
		t.Errorf("expected code 12005, got %d", resp.Code)
	}
}

func TestIssueHandler_Get_NotFound(t *testing.T) {
	mock := &mockIssueService{getErr: service.ErrIssueNotFound}
	h := NewIssueHandler(mock)

	r := gin.New()
	r.GET("/issues/:id", withIdentity("user-1", model.RoleStudent), h.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/issues/no-such-issue", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestIssueHandler_List_Paginated(t *testing.T) {
	mock := &mockIssueService{
		listResult: []dto.IssueResponse{{ID: "issue-1"}, {ID: "issue-2"}},
		listTotal:  2,
	}
	h := NewIssueHandler(mock)

	r := gin.New()
	r.GET("/issues", withIdentity("admin-1", model.RoleAdmin), h.List)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/issues?page=1&page_size=20", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Pagination response.Pagination `json:"pagination"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Data.Pagination.Total)
	}
}

// ═══════════════════════════════════════════════════════════
// NotificationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestNotificationHandler_List(t *testing.T) {
	mock := &mockNotificationService{
		listResult: []dto.NotificationResponse{{ID: "notif-1", Message: "Your issue is now Assigned"}},
		listTotal:  1,
	}
	h := NewNotificationHandler(mock)

	r := gin.New()
	r.GET("/notifications", withIdentity("user-1", model.RoleStudent), h.List)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/notifications?unread_only=true", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestNotificationHandler_MarkRead_Forbidden(t *testing.T) {
	mock := &mockNotificationService{markReadErr: service.ErrNotificationForbidden}
	h := NewNotificationHandler(mock)

	r := gin.New()
	r.PUT("/notifications/:id/read", withIdentity("user-1", model.RoleStudent), h.MarkRead)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/notifications/notif-1/read", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14002 {
		t.Errorf("expected code 14002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportStatistics_Headers(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel-bytes"),
		filename: "issue_statistics_20260830.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/issues/statistics/export", h.ExportStatistics)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/issues/statistics/export", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("expected xlsx content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Errorf("expected attachment disposition, got %s", cd)
	}
}

func TestExportHandler_ExportStatistics_Empty(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoIssues}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/issues/statistics/export", h.ExportStatistics)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/issues/statistics/export", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
