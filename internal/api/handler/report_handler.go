package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ums-obe/backend/internal/service"
	"ums-obe/backend/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Full 完整报表（CLO、总评、PLO）
// GET /api/v1/schedules/:id/reports/full
func (h *ReportHandler) Full(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	report, err := h.reportSvc.Full(c.Request.Context(), id)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// CLO CLO 明细报表
// GET /api/v1/schedules/:id/reports/clo
func (h *ReportHandler) CLO(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	list, err := h.reportSvc.CLOReport(c.Request.Context(), id)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// PLO PLO 报表
// GET /api/v1/schedules/:id/reports/plo
func (h *ReportHandler) PLO(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	list, err := h.reportSvc.PLOReport(c.Request.Context(), id)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Summary 课程总评
// GET /api/v1/schedules/:id/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.reportSvc.Summary(c.Request.Context(), id)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, summary)
}

// handleReportError 报表与导出共用
func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 20001, "开课记录不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20002, "课程不存在")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
