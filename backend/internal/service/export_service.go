package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoIssues     = errors.New("no issues to export")
	ErrExportGenerateFail = errors.New("failed to generate excel file")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 一期仅实现管理端工单统计导出为 Excel (.xlsx)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：Summary（总量 + 按状态）与 Workload（按受理人）两个 Sheet
type ExportService interface {
	// ExportStatistics 导出工单统计为 Excel
	ExportStatistics(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportStatistics(ctx context.Context) (*bytes.Buffer, string, error) {
	total, err := s.repo.Issue.Count(ctx)
	if err != nil {
		s.logger.Error("统计工单总量失败", zap.Error(err))
		return nil, "", err
	}
	if total == 0 {
		return nil, "", ErrExportNoIssues
	}

	byStatus, err := s.repo.Issue.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("按状态统计失败", zap.Error(err))
		return nil, "", err
	}
	byAssignee, err := s.repo.Issue.CountByAssignee(ctx)
	if err != nil {
		s.logger.Error("按受理人统计失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet 1: Summary ──
	summarySheet := "Summary"
	idx, _ := f.NewSheet(summarySheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "B", 12)

	f.SetCellValue(summarySheet, "A1", "Issue Statistics")
	f.MergeCell(summarySheet, "A1", "B1")
	f.SetCellStyle(summarySheet, "A1", "A1", headerStyle)

	f.SetCellValue(summarySheet, cell("A", 2), "Total issues")
	f.SetCellValue(summarySheet, cell("B", 2), total)

	f.SetCellValue(summarySheet, cell("A", 4), "Status")
	f.SetCellValue(summarySheet, cell("B", 4), "Count")
	f.SetCellStyle(summarySheet, cell("A", 4), cell("B", 4), headerStyle)

	row := 5
	for _, sc := range byStatus {
		name := sc.StatusName
		if name == "" {
			name = "(none)"
		}
		f.SetCellValue(summarySheet, cell("A", row), name)
		f.SetCellValue(summarySheet, cell("B", row), sc.Count)
		row++
	}

	// ── Sheet 2: Workload ──
	workloadSheet := "Workload"
	f.NewSheet(workloadSheet)

	f.SetColWidth(workloadSheet, "A", "A", 24)
	f.SetColWidth(workloadSheet, "B", "B", 40)
	f.SetColWidth(workloadSheet, "C", "C", 12)

	f.SetCellValue(workloadSheet, cell("A", 1), "Lecturer")
	f.SetCellValue(workloadSheet, cell("B", 1), "User ID")
	f.SetCellValue(workloadSheet, cell("C", 1), "Assigned issues")
	f.SetCellStyle(workloadSheet, cell("A", 1), cell("C", 1), headerStyle)

	row = 2
	for _, ac := range byAssignee {
		f.SetCellValue(workloadSheet, cell("A", row), ac.Username)
		f.SetCellValue(workloadSheet, cell("B", row), ac.AssigneeID)
		f.SetCellValue(workloadSheet, cell("C", row), ac.Count)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("issue_statistics_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
