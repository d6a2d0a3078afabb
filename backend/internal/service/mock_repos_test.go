package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/repository"
	pkgerrors "github.com/emmanuelwilliam/AITS-group-E/backend/pkg/errors"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/mailer"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users            map[string]*model.User // key: user_id
	studentProfiles  map[string]*model.StudentProfile
	lecturerProfiles map[string]*model.LecturerProfile
	adminProfiles    map[string]*model.AdministratorProfile
	seq              int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:            make(map[string]*model.User),
		studentProfiles:  make(map[string]*model.StudentProfile),
		lecturerProfiles: make(map[string]*model.LecturerProfile),
		adminProfiles:    make(map[string]*model.AdministratorProfile),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

// attach 按 mock 内部存储挂上档案关联（模拟 Preload）
func (m *mockUserRepo) attach(u *model.User) *model.User {
	if p, ok := m.studentProfiles[u.UserID]; ok {
		u.StudentProfile = p
	}
	if p, ok := m.lecturerProfiles[u.UserID]; ok {
		u.LecturerProfile = p
	}
	if p, ok := m.adminProfiles[u.UserID]; ok {
		u.AdminProfile = p
	}
	return u
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return m.attach(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	ident := strings.ToLower(identifier)
	for _, u := range m.users {
		if strings.ToLower(u.Username) == ident || strings.ToLower(u.Email) == ident {
			return m.attach(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return m.attach(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return m.attach(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, roleName, keyword string, offset, limit int) ([]model.User, int64, error) {
	var ids []string
	for id, u := range m.users {
		if u.RoleName() != roleName {
			continue
		}
		if keyword != "" {
			kw := strings.ToLower(keyword)
			if !strings.Contains(strings.ToLower(u.Username), kw) &&
				!strings.Contains(strings.ToLower(u.Email), kw) {
				continue
			}
		}
		ids = append(ids, id)
	}
	sort.Strings(ids) // map 遍历无序，测试需要确定顺序

	var all []model.User
	for _, id := range ids {
		all = append(all, *m.attach(m.users[id]))
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) CreateStudentProfile(_ context.Context, profile *model.StudentProfile) error {
	m.studentProfiles[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) CreateLecturerProfile(_ context.Context, profile *model.LecturerProfile) error {
	m.lecturerProfiles[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) CreateAdminProfile(_ context.Context, profile *model.AdministratorProfile) error {
	m.adminProfiles[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) GetStudentProfile(_ context.Context, userID string) (*model.StudentProfile, error) {
	if p, ok := m.studentProfiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetStudentProfileByNo(_ context.Context, studentNo string) (*model.StudentProfile, error) {
	for _, p := range m.studentProfiles {
		if p.StudentNo == studentNo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetStudentProfileByRegNo(_ context.Context, regNo string) (*model.StudentProfile, error) {
	for _, p := range m.studentProfiles {
		if p.RegNo == regNo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetLecturerProfileByEmployeeID(_ context.Context, employeeID string) (*model.LecturerProfile, error) {
	for _, p := range m.lecturerProfiles {
		if p.EmployeeID == employeeID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetAdminProfileByNo(_ context.Context, adminNo string) (*model.AdministratorProfile, error) {
	for _, p := range m.adminProfiles {
		if p.AdminNo == adminNo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RoleRepository ──

type mockRoleRepo struct {
	roles map[string]*model.Role
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{
		roles: map[string]*model.Role{
			model.RoleStudent:  {RoleID: "role-student", RoleName: model.RoleStudent},
			model.RoleLecturer: {RoleID: "role-lecturer", RoleName: model.RoleLecturer},
			model.RoleAdmin:    {RoleID: "role-admin", RoleName: model.RoleAdmin},
		},
	}
}

func (m *mockRoleRepo) GetByName(_ context.Context, roleName string) (*model.Role, error) {
	if r, ok := m.roles[roleName]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) List(_ context.Context) ([]model.Role, error) {
	var result []model.Role
	for _, r := range m.roles {
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock StatusRepository ──

type mockStatusRepo struct {
	statuses map[string]*model.Status // key: name
	seq      int
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{statuses: make(map[string]*model.Status)}
}

func (m *mockStatusRepo) GetOrCreate(_ context.Context, name string) (*model.Status, error) {
	if s, ok := m.statuses[name]; ok {
		return s, nil
	}
	m.seq++
	s := &model.Status{StatusID: fmt.Sprintf("status-%d", m.seq), Name: name}
	m.statuses[name] = s
	return s, nil
}

func (m *mockStatusRepo) GetByName(_ context.Context, name string) (*model.Status, error) {
	if s, ok := m.statuses[name]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStatusRepo) List(_ context.Context) ([]model.Status, error) {
	var names []string
	for name := range m.statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	var result []model.Status
	for _, name := range names {
		result = append(result, *m.statuses[name])
	}
	return result, nil
}

// ── Mock IssueRepository ──

// mockIssueRepo 持有 user/status mock 的引用以模拟 Preload
type mockIssueRepo struct {
	issues   map[string]*model.Issue
	userRepo *mockUserRepo
	statuses *mockStatusRepo
	seq      int

	// conflictOnce 为真时下一次 UpdateWithVersion 模拟并发冲突
	conflictOnce bool
}

func newMockIssueRepo(userRepo *mockUserRepo, statuses *mockStatusRepo) *mockIssueRepo {
	return &mockIssueRepo{
		issues:   make(map[string]*model.Issue),
		userRepo: userRepo,
		statuses: statuses,
	}
}

func (m *mockIssueRepo) Create(_ context.Context, issue *model.Issue) error {
	if issue.IssueID == "" {
		m.seq++
		issue.IssueID = fmt.Sprintf("issue-%d", m.seq)
	}
	if issue.Version == 0 {
		issue.Version = 1
	}
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	m.issues[issue.IssueID] = issue
	return nil
}

func (m *mockIssueRepo) attach(issue *model.Issue) *model.Issue {
	copied := *issue
	if copied.StatusID != nil {
		for _, s := range m.statuses.statuses {
			if s.StatusID == *copied.StatusID {
				copied.Status = s
			}
		}
	}
	if u, ok := m.userRepo.users[copied.StudentID]; ok {
		copied.Student = m.userRepo.attach(u)
	}
	if copied.AssignedToID != nil {
		if u, ok := m.userRepo.users[*copied.AssignedToID]; ok {
			copied.AssignedTo = m.userRepo.attach(u)
		}
	}
	return &copied
}

func (m *mockIssueRepo) GetByID(_ context.Context, id string) (*model.Issue, error) {
	if issue, ok := m.issues[id]; ok {
		return m.attach(issue), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIssueRepo) UpdateWithVersion(_ context.Context, issue *model.Issue) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.issues[issue.IssueID]
	if !ok || stored.Version != issue.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.StatusID = issue.StatusID
	stored.AssignedToID = issue.AssignedToID
	stored.ResolutionNotes = issue.ResolutionNotes
	stored.Version++
	stored.UpdatedAt = time.Now()
	issue.Version = stored.Version
	return nil
}

func (m *mockIssueRepo) ListByStudent(_ context.Context, studentID string) ([]model.Issue, error) {
	var result []model.Issue
	for _, issue := range m.issues {
		if issue.StudentID == studentID {
			result = append(result, *m.attach(issue))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockIssueRepo) List(_ context.Context, filters *repository.IssueFilters, offset, limit int) ([]model.Issue, int64, error) {
	var all []model.Issue
	for _, issue := range m.issues {
		attached := m.attach(issue)
		if filters != nil {
			if filters.StatusName != "" && (attached.Status == nil || attached.Status.Name != filters.StatusName) {
				continue
			}
			if filters.Priority != "" && attached.Priority != filters.Priority {
				continue
			}
			if filters.Category != "" && attached.Category != filters.Category {
				continue
			}
			if filters.AssignedTo != "" && (attached.AssignedToID == nil || *attached.AssignedToID != filters.AssignedTo) {
				continue
			}
		}
		all = append(all, *attached)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IssueID < all[j].IssueID })

	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockIssueRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.issues)), nil
}

func (m *mockIssueRepo) CountByStatus(_ context.Context) ([]repository.StatusCountRow, error) {
	counts := make(map[string]int64)
	for _, issue := range m.issues {
		name := ""
		if attached := m.attach(issue); attached.Status != nil {
			name = attached.Status.Name
		}
		counts[name]++
	}
	var names []string
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	var rows []repository.StatusCountRow
	for _, name := range names {
		rows = append(rows, repository.StatusCountRow{StatusName: name, Count: counts[name]})
	}
	return rows, nil
}

func (m *mockIssueRepo) CountByAssignee(_ context.Context) ([]repository.AssigneeCountRow, error) {
	counts := make(map[string]int64)
	for _, issue := range m.issues {
		if issue.AssignedToID != nil {
			counts[*issue.AssignedToID]++
		}
	}
	var ids []string
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var rows []repository.AssigneeCountRow
	for _, id := range ids {
		username := ""
		if u, ok := m.userRepo.users[id]; ok {
			username = u.Username
		}
		rows = append(rows, repository.AssigneeCountRow{AssigneeID: id, Username: username, Count: counts[id]})
	}
	return rows, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) CreateAll(_ context.Context, notifications []*model.Notification) error {
	for _, n := range notifications {
		if n.NotificationID == "" {
			m.seq++
			n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
		}
		n.CreatedAt = time.Now()
		m.notifications = append(m.notifications, n)
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	for _, n := range m.notifications {
		if n.NotificationID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// matches 通知可见性规则：定向行匹配接收者，广播行匹配角色
func (m *mockNotificationRepo) matches(n *model.Notification, userID, roleName string) bool {
	if n.RecipientID != nil {
		return *n.RecipientID == userID
	}
	return n.RecipientRole == roleName
}

func (m *mockNotificationRepo) ListForUser(_ context.Context, userID, roleName string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if !m.matches(n, userID, roleName) {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	for _, n := range m.notifications {
		if n.NotificationID == id {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllReadForUser(_ context.Context, userID, roleName string) error {
	for _, n := range m.notifications {
		if m.matches(n, userID, roleName) {
			n.IsRead = true
		}
	}
	return nil
}

// ── Mock LoginHistoryRepository ──

type mockLoginHistoryRepo struct {
	entries []*model.LoginHistory
	seq     int
}

func newMockLoginHistoryRepo() *mockLoginHistoryRepo {
	return &mockLoginHistoryRepo{}
}

func (m *mockLoginHistoryRepo) Create(_ context.Context, entry *model.LoginHistory) error {
	m.seq++
	entry.LoginID = fmt.Sprintf("login-%d", m.seq)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLoginHistoryRepo) List(_ context.Context, userID string, offset, limit int) ([]model.LoginHistory, int64, error) {
	var all []model.LoginHistory
	for _, e := range m.entries {
		if userID != "" && e.UserID != userID {
			continue
		}
		all = append(all, *e)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock VerificationRepository ──

type mockVerificationRepo struct {
	verifications []*model.EmailVerification
	seq           int
}

func newMockVerificationRepo() *mockVerificationRepo {
	return &mockVerificationRepo{}
}

func (m *mockVerificationRepo) Create(_ context.Context, verification *model.EmailVerification) error {
	m.seq++
	verification.VerificationID = fmt.Sprintf("verify-%d", m.seq)
	verification.CreatedAt = time.Now()
	m.verifications = append(m.verifications, verification)
	return nil
}

func (m *mockVerificationRepo) GetLatestByUserID(_ context.Context, userID string) (*model.EmailVerification, error) {
	for i := len(m.verifications) - 1; i >= 0; i-- {
		if m.verifications[i].UserID == userID {
			return m.verifications[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVerificationRepo) MarkUsed(_ context.Context, verificationID string) error {
	for _, v := range m.verifications {
		if v.VerificationID == verificationID {
			now := time.Now()
			v.UsedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock Mailer ──

// mockMailer 记录发送过的邮件，可配置为固定失败
type mockMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func newMockMailer() *mockMailer {
	return &mockMailer{}
}

func (m *mockMailer) Send(msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, *msg)
	return nil
}

// sentTo 返回发给某地址的邮件数
func (m *mockMailer) sentTo(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, msg := range m.sent {
		for _, to := range msg.To {
			if to == addr {
				count++
			}
		}
	}
	return count
}
