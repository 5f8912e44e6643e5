package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ums-obe/backend/internal/service"
	"ums-obe/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCLO 导出 CLO 报表
// GET /api/v1/schedules/:id/reports/clo/export
func (h *ExportHandler) ExportCLO(c *gin.Context) {
	h.export(c, h.exportSvc.ExportCLOReport)
}

// ExportPLO 导出 PLO 报表
// GET /api/v1/schedules/:id/reports/plo/export
func (h *ExportHandler) ExportPLO(c *gin.Context) {
	h.export(c, h.exportSvc.ExportPLOReport)
}

func (h *ExportHandler) export(c *gin.Context, fn func(context.Context, string) (*bytes.Buffer, string, error)) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	buf, filename, err := fn(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, filename, buf)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 23001, "生成 Excel 文件失败")
	default:
		handleReportError(c, err)
	}
}
