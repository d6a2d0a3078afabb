package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/repository"
)

// ── 工单模块业务错误 ──

var (
	ErrIssueNotFound       = errors.New("issue not found")
	ErrNotStudent          = errors.New("only students can submit issues")
	ErrNotAdmin            = errors.New("only administrators may perform this action")
	ErrNotAssignee         = errors.New("only the assigned lecturer may update this issue")
	ErrLecturerNotFound    = errors.New("lecturer not found")
	ErrUnknownStatus       = errors.New("unknown status value")
	ErrDescriptionTooShort = errors.New("description must be at least 20 characters")
	ErrProhibitedTitle     = errors.New("title contains prohibited words")
	ErrIssueForbidden      = errors.New("issue does not belong to caller")
)

// prohibitedTitleWords 标题敏感词（整词、大小写不敏感）
var prohibitedTitleWords = []string{
	"stupid", "liar", "advertisement", "fake",
}

// canonicalStatuses 工单状态机接受的全部状态名
var canonicalStatuses = []string{
	model.StatusOpen,
	model.StatusAssigned,
	model.StatusInProgress,
	model.StatusPendingInformation,
	model.StatusResolved,
	model.StatusClosed,
}

// IssueService 工单业务接口
type IssueService interface {
	Create(ctx context.Context, studentID string, req *dto.CreateIssueRequest) (*dto.IssueResponse, error)
	Assign(ctx context.Context, adminID, issueID string, req *dto.AssignIssueRequest) (*dto.IssueResponse, error)
	UpdateStatus(ctx context.Context, lecturerID, issueID string, req *dto.UpdateIssueStatusRequest) (*dto.IssueResponse, error)
	Get(ctx context.Context, callerID, callerRole, issueID string) (*dto.IssueResponse, error)
	ListOwn(ctx context.Context, studentID string) ([]dto.IssueResponse, error)
	List(ctx context.Context, callerID, callerRole string, req *dto.IssueListRequest) ([]dto.IssueResponse, int64, error)
	Statistics(ctx context.Context) (*dto.StatisticsResponse, error)
}

type issueService struct {
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
}

// NewIssueService 创建 IssueService 实例
func NewIssueService(repo *repository.Repository, notification NotificationService, logger *zap.Logger) IssueService {
	return &issueService{repo: repo, notification: notification, logger: logger}
}

// normalizeStatus 把请求里的状态名归一化到规范形式（大小写不敏感），
// 不在规范集合内返回 ErrUnknownStatus
func normalizeStatus(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	for _, canonical := range canonicalStatuses {
		if strings.EqualFold(trimmed, canonical) {
			return canonical, nil
		}
	}
	return "", ErrUnknownStatus
}

// containsProhibitedWord 整词匹配标题敏感词
func containsProhibitedWord(title string) bool {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, field := range fields {
		for _, word := range prohibitedTitleWords {
			if field == word {
				return true
			}
		}
	}
	return false
}

// Create 学生提交工单：写入 Open 状态的工单行并扇出创建通知
func (s *issueService) Create(ctx context.Context, studentID string, req *dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if student.RoleName() != model.RoleStudent || student.StudentProfile == nil {
		return nil, ErrNotStudent
	}

	if len(strings.TrimSpace(req.Description)) < 20 {
		return nil, ErrDescriptionTooShort
	}
	if containsProhibitedWord(req.Title) {
		return nil, ErrProhibitedTitle
	}

	category := req.Category
	if category == "" {
		category = model.CategoryAcademic
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	openStatus, err := s.repo.Status.GetOrCreate(ctx, model.StatusOpen)
	if err != nil {
		s.logger.Error("获取 Open 状态行失败", zap.Error(err))
		return nil, err
	}

	issue := &model.Issue{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		College:     req.College,
		Program:     req.Program,
		YearOfStudy: req.YearOfStudy,
		Semester:    req.Semester,
		CourseUnit:  req.CourseUnit,
		CourseCode:  req.CourseCode,
		Category:    category,
		Priority:    priority,
		StatusID:    &openStatus.StatusID,
		StudentID:   student.UserID,
	}
	if err := s.repo.Issue.Create(ctx, issue); err != nil {
		s.logger.Error("创建工单失败", zap.Error(err), zap.String("student_id", studentID))
		return nil, err
	}
	issue.Status = openStatus
	issue.Student = student

	s.logger.Info("工单已创建",
		zap.String("issue_id", issue.IssueID),
		zap.String("student_id", studentID),
		zap.String("priority", priority),
	)

	// 通知与邮件在工单落库后进行，失败不影响本次请求结果
	s.notification.IssueCreated(ctx, issue, student)

	resp := toIssueResponse(issue)
	return &resp, nil
}

// Assign 管理员把 Open 工单指派给讲师，状态切到 Assigned
func (s *issueService) Assign(ctx context.Context, adminID, issueID string, req *dto.AssignIssueRequest) (*dto.IssueResponse, error) {
	admin, err := s.repo.User.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if admin.RoleName() != model.RoleAdmin {
		return nil, ErrNotAdmin
	}

	issue, err := s.repo.Issue.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	lecturer, err := s.repo.User.GetByID(ctx, req.LecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLecturerNotFound
		}
		return nil, err
	}
	if lecturer.RoleName() != model.RoleLecturer {
		return nil, ErrLecturerNotFound
	}

	prevStatus := ""
	if issue.Status != nil {
		prevStatus = issue.Status.Name
	}

	assignedStatus, err := s.repo.Status.GetOrCreate(ctx, model.StatusAssigned)
	if err != nil {
		return nil, err
	}

	issue.StatusID = &assignedStatus.StatusID
	issue.AssignedToID = &lecturer.UserID
	if err := s.repo.Issue.UpdateWithVersion(ctx, issue); err != nil {
		s.logger.Warn("指派工单失败", zap.Error(err), zap.String("issue_id", issueID))
		return nil, err
	}
	issue.Status = assignedStatus
	issue.AssignedTo = lecturer

	s.logger.Info("工单已指派",
		zap.String("issue_id", issueID),
		zap.String("lecturer_id", lecturer.UserID),
		zap.String("admin_id", adminID),
	)

	if issue.Student == nil {
		student, err := s.repo.User.GetByID(ctx, issue.StudentID)
		if err != nil {
			s.logger.Error("查询工单学生失败", zap.Error(err), zap.String("issue_id", issueID))
		} else {
			issue.Student = student
		}
	}
	if issue.Student != nil {
		s.notification.IssueAssigned(ctx, issue, lecturer, issue.Student, prevStatus)
	}

	resp := toIssueResponse(issue)
	return &resp, nil
}

// UpdateStatus 受理讲师推进工单状态；只有被指派者本人可操作
func (s *issueService) UpdateStatus(ctx context.Context, lecturerID, issueID string, req *dto.UpdateIssueStatusRequest) (*dto.IssueResponse, error) {
	statusName, err := normalizeStatus(req.Status)
	if err != nil {
		return nil, err
	}

	issue, err := s.repo.Issue.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	if issue.AssignedToID == nil || *issue.AssignedToID != lecturerID {
		return nil, ErrNotAssignee
	}

	status, err := s.repo.Status.GetOrCreate(ctx, statusName)
	if err != nil {
		return nil, err
	}

	issue.StatusID = &status.StatusID
	if req.ResolutionNotes != "" {
		issue.ResolutionNotes = req.ResolutionNotes
	}
	if err := s.repo.Issue.UpdateWithVersion(ctx, issue); err != nil {
		s.logger.Warn("更新工单状态失败", zap.Error(err), zap.String("issue_id", issueID))
		return nil, err
	}
	issue.Status = status

	s.logger.Info("工单状态已更新",
		zap.String("issue_id", issueID),
		zap.String("status", statusName),
		zap.String("lecturer_id", lecturerID),
	)

	if issue.Student == nil {
		student, err := s.repo.User.GetByID(ctx, issue.StudentID)
		if err != nil {
			s.logger.Error("查询工单学生失败", zap.Error(err), zap.String("issue_id", issueID))
		} else {
			issue.Student = student
		}
	}
	if issue.Student != nil {
		s.notification.IssueStatusChanged(ctx, issue, issue.Student, statusName, req.ResolutionNotes)
	}

	resp := toIssueResponse(issue)
	return &resp, nil
}

// Get 查询单个工单；学生只能看自己的，讲师只能看指派给自己的
func (s *issueService) Get(ctx context.Context, callerID, callerRole, issueID string) (*dto.IssueResponse, error) {
	issue, err := s.repo.Issue.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	switch callerRole {
	case model.RoleStudent:
		if issue.StudentID != callerID {
			return nil, ErrIssueForbidden
		}
	case model.RoleLecturer:
		if issue.AssignedToID == nil || *issue.AssignedToID != callerID {
			return nil, ErrIssueForbidden
		}
	}

	resp := toIssueResponse(issue)
	return &resp, nil
}

// ListOwn 学生按时间倒序列出自己的工单
func (s *issueService) ListOwn(ctx context.Context, studentID string) ([]dto.IssueResponse, error) {
	issues, err := s.repo.Issue.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		result = append(result, toIssueResponse(&issues[i]))
	}
	return result, nil
}

// List 带筛选的分页列表；讲师视角强制只看指派给自己的工单
func (s *issueService) List(ctx context.Context, callerID, callerRole string, req *dto.IssueListRequest) ([]dto.IssueResponse, int64, error) {
	filters := &repository.IssueFilters{
		Priority:   req.Priority,
		Category:   req.Category,
		AssignedTo: req.AssignedTo,
	}
	if req.Status != "" {
		statusName, err := normalizeStatus(req.Status)
		if err != nil {
			return nil, 0, err
		}
		filters.StatusName = statusName
	}
	if callerRole == model.RoleLecturer {
		filters.AssignedTo = callerID
	}

	issues, total, err := s.repo.Issue.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		result = append(result, toIssueResponse(&issues[i]))
	}
	return result, total, nil
}

// Statistics 管理员统计视图：总量、按状态、按受理人
func (s *issueService) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	total, err := s.repo.Issue.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.Issue.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byAssignee, err := s.repo.Issue.CountByAssignee(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.StatisticsResponse{
		Total:      total,
		ByStatus:   make([]dto.StatusCount, 0, len(byStatus)),
		ByAssignee: make([]dto.AssigneeCount, 0, len(byAssignee)),
	}
	for _, row := range byStatus {
		resp.ByStatus = append(resp.ByStatus, dto.StatusCount{Status: row.StatusName, Count: row.Count})
	}
	for _, row := range byAssignee {
		resp.ByAssignee = append(resp.ByAssignee, dto.AssigneeCount{
			AssigneeID: row.AssigneeID,
			Username:   row.Username,
			Count:      row.Count,
		})
	}
	return resp, nil
}

func toIssueResponse(issue *model.Issue) dto.IssueResponse {
	resp := dto.IssueResponse{
		ID:              issue.IssueID,
		Title:           issue.Title,
		Description:     issue.Description,
		College:         issue.College,
		Program:         issue.Program,
		YearOfStudy:     issue.YearOfStudy,
		Semester:        issue.Semester,
		CourseUnit:      issue.CourseUnit,
		CourseCode:      issue.CourseCode,
		Category:        issue.Category,
		Priority:        issue.Priority,
		ResolutionNotes: issue.ResolutionNotes,
		CreatedAt:       issue.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       issue.UpdatedAt.Format(time.RFC3339),
	}
	if issue.Status != nil {
		resp.Status = issue.Status.Name
	}
	if issue.Student != nil {
		resp.Student = toUserBrief(issue.Student)
	}
	if issue.AssignedTo != nil {
		resp.AssignedTo = toUserBrief(issue.AssignedTo)
	}
	return resp
}

func toUserBrief(u *model.User) *dto.UserBrief {
	return &dto.UserBrief{
		ID:       u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.RoleName(),
	}
}
