package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/service"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStatistics 导出工单统计 Excel
// GET /api/v1/issues/statistics/export
func (h *ExportHandler) ExportStatistics(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportStatistics(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoIssues):
			response.NotFound(c, 15001, "no issues to export")
		default:
			response.InternalError(c)
		}
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
