package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/dto"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/repository"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/mailer"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrNotificationForbidden = errors.New("notification does not belong to caller")
)

// NotificationService 通知业务接口
//
// 设计说明：
//   - 每个工单事件为每个逻辑接收方写恰好一行通知，面向整个角色的
//     广播（如"所有管理员"）写单行 recipient_id 为空的广播行
//   - 通知行在触发请求的事务提交后写入；邮件随后同步发送，
//     发送失败仅记日志，绝不回滚已提交的业务写入（至多尽力投递）
type NotificationService interface {
	// IssueCreated 工单创建事件：管理员广播行 + 学生行，共 2 行、2 封邮件
	IssueCreated(ctx context.Context, issue *model.Issue, student *model.User)
	// IssueAssigned 工单指派事件：讲师行 + 学生行，共 2 行、2 封邮件
	IssueAssigned(ctx context.Context, issue *model.Issue, lecturer, student *model.User, prevStatus string)
	// IssueStatusChanged 状态变更事件：学生行 + 学生邮件；
	// 状态为 Resolved/Closed 时追加管理员广播行与每位管理员一封邮件
	IssueStatusChanged(ctx context.Context, issue *model.Issue, student *model.User, statusName, notes string)

	ListForUser(ctx context.Context, userID, roleName string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, userID, roleName, notificationID string) error
	MarkAllRead(ctx context.Context, userID, roleName string) error
}

type notificationService struct {
	repo   *repository.Repository
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, mail mailer.Mailer, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, mail: mail, logger: logger}
}

// severityForStatus 状态名到通知级别的固定映射
func severityForStatus(statusName string) string {
	switch strings.ToLower(statusName) {
	case "resolved":
		return model.NotificationSuccess
	case "pending information":
		return model.NotificationWarning
	default:
		return model.NotificationInfo
	}
}

// isTerminalStatus Resolved/Closed 视为终态（大小写不敏感）
func isTerminalStatus(statusName string) bool {
	lower := strings.ToLower(statusName)
	return lower == "resolved" || lower == "closed"
}

// ────────────────────── 事件扇出 ──────────────────────

func (s *notificationService) IssueCreated(ctx context.Context, issue *model.Issue, student *model.User) {
	rows := []*model.Notification{
		{
			IssueID:       issue.IssueID,
			RecipientRole: model.RoleAdmin,
			Message:       fmt.Sprintf("New issue submitted: %q by %s", issue.Title, student.Username),
			Type:          model.NotificationInfo,
		},
		{
			IssueID:       issue.IssueID,
			RecipientRole: model.RoleStudent,
			RecipientID:   &student.UserID,
			Message:       fmt.Sprintf("Your issue %q has been submitted and is now Open", issue.Title),
			Type:          model.NotificationInfo,
		},
	}
	if err := s.repo.Notification.CreateAll(ctx, rows); err != nil {
		s.logger.Error("写入工单创建通知失败", zap.Error(err), zap.String("issue_id", issue.IssueID))
		return
	}

	s.send(ctx, &mailer.Message{
		To:      []string{student.Email},
		Subject: "AITS: issue submitted",
		Body: fmt.Sprintf("Dear %s,\n\nYour issue %q has been received and logged with status Open. "+
			"You will be notified when it is assigned.\n\nAITS", student.Username, issue.Title),
	})
	s.sendToAdmins(ctx, "AITS: new issue submitted",
		fmt.Sprintf("A new issue %q (category %s, priority %s) was submitted by %s and awaits assignment.",
			issue.Title, issue.Category, issue.Priority, student.Username))
}

func (s *notificationService) IssueAssigned(ctx context.Context, issue *model.Issue, lecturer, student *model.User, prevStatus string) {
	rows := []*model.Notification{
		{
			IssueID:       issue.IssueID,
			RecipientRole: model.RoleLecturer,
			RecipientID:   &lecturer.UserID,
			Message:       fmt.Sprintf("Issue %q has been assigned to you", issue.Title),
			Type:          model.NotificationInfo,
		},
		{
			IssueID:       issue.IssueID,
			RecipientRole: model.RoleStudent,
			RecipientID:   &student.UserID,
			Message:       fmt.Sprintf("Your issue %q has been assigned to %s", issue.Title, lecturer.Username),
			Type:          model.NotificationInfo,
		},
	}
	if err := s.repo.Notification.CreateAll(ctx, rows); err != nil {
		s.logger.Error("写入工单指派通知失败", zap.Error(err), zap.String("issue_id", issue.IssueID))
		return
	}

	s.send(ctx, &mailer.Message{
		To:      []string{lecturer.Email},
		Subject: "AITS: issue assigned to you",
		Body: fmt.Sprintf("Dear %s,\n\nThe issue %q (previously %s) has been assigned to you. "+
			"Please review it and update its status.\n\nAITS", lecturer.Username, issue.Title, prevStatus),
	})
	s.send(ctx, &mailer.Message{
		To:      []string{student.Email},
		Subject: "AITS: your issue was assigned",
		Body: fmt.Sprintf("Dear %s,\n\nYour issue %q has been assigned to %s for handling.\n\nAITS",
			student.Username, issue.Title, lecturer.Username),
	})
}

func (s *notificationService) IssueStatusChanged(ctx context.Context, issue *model.Issue, student *model.User, statusName, notes string) {
	msg := fmt.Sprintf("Your issue %q is now %s", issue.Title, statusName)
	if notes != "" {
		msg += ": " + notes
	}

	rows := []*model.Notification{
		{
			IssueID:       issue.IssueID,
			RecipientRole: model.RoleStudent,
			RecipientID:   &student.UserID,
			Message:       msg,
			Type:          severityForStatus(statusName),
		},
	}
	if isTerminalStatus(statusName) {
		rows = append(rows, &model.Notification{
			IssueID:       issue.IssueID,
			RecipientRole: model.RoleAdmin,
			Message:       fmt.Sprintf("Issue %q has been marked %s", issue.Title, statusName),
			Type:          model.NotificationInfo,
		})
	}
	if err := s.repo.Notification.CreateAll(ctx, rows); err != nil {
		s.logger.Error("写入状态变更通知失败", zap.Error(err), zap.String("issue_id", issue.IssueID))
		return
	}

	body := fmt.Sprintf("Dear %s,\n\nThe status of your issue %q has changed to %s.", student.Username, issue.Title, statusName)
	if notes != "" {
		body += "\n\nNotes: " + notes
	}
	body += "\n\nAITS"
	s.send(ctx, &mailer.Message{
		To:      []string{student.Email},
		Subject: "AITS: issue status updated",
		Body:    body,
	})

	if isTerminalStatus(statusName) {
		// 终态时给每位管理员单独发一封
		admins, _, err := s.repo.User.ListByRole(ctx, model.RoleAdmin, "", 0, 1000)
		if err != nil {
			s.logger.Error("查询管理员列表失败", zap.Error(err))
			return
		}
		for _, admin := range admins {
			s.send(ctx, &mailer.Message{
				To:      []string{admin.Email},
				Subject: "AITS: issue " + strings.ToLower(statusName),
				Body: fmt.Sprintf("Dear %s,\n\nThe issue %q has been marked %s by its assignee.\n\nAITS",
					admin.Username, issue.Title, statusName),
			})
		}
	}
}

// send 同步发送单封邮件，失败仅记日志
func (s *notificationService) send(_ context.Context, msg *mailer.Message) {
	if err := s.mail.Send(msg); err != nil {
		s.logger.Error("邮件发送失败（业务写入不回滚）",
			zap.Error(err),
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
		)
	}
}

// sendToAdmins 给全部管理员邮箱发送一封邮件
func (s *notificationService) sendToAdmins(ctx context.Context, subject, body string) {
	admins, _, err := s.repo.User.ListByRole(ctx, model.RoleAdmin, "", 0, 1000)
	if err != nil {
		s.logger.Error("查询管理员列表失败", zap.Error(err))
		return
	}
	if len(admins) == 0 {
		return
	}
	to := make([]string, 0, len(admins))
	for _, admin := range admins {
		to = append(to, admin.Email)
	}
	s.send(ctx, &mailer.Message{To: to, Subject: subject, Body: body})
}

// ────────────────────── 查询与已读 ──────────────────────

func (s *notificationService) ListForUser(ctx context.Context, userID, roleName string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListForUser(
		ctx, userID, roleName, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, toNotificationResponse(&notifications[i]))
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, roleName, notificationID string) error {
	n, err := s.repo.Notification.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	// 定向行只能被接收者标记；广播行只能被对应角色标记
	if n.RecipientID != nil {
		if *n.RecipientID != userID {
			return ErrNotificationForbidden
		}
	} else if n.RecipientRole != roleName {
		return ErrNotificationForbidden
	}

	return s.repo.Notification.MarkRead(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID, roleName string) error {
	return s.repo.Notification.MarkAllReadForUser(ctx, userID, roleName)
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:            n.NotificationID,
		IssueID:       n.IssueID,
		RecipientRole: n.RecipientRole,
		Message:       n.Message,
		Type:          n.Type,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if n.Issue != nil {
		resp.IssueTitle = n.Issue.Title
	}
	return resp
}
