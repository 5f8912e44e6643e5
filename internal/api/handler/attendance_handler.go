package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/service"
	apperrors "ums-obe/backend/pkg/errors"
	"ums-obe/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// GetSheet 某日考勤表，date 缺省为当天
// GET /api/v1/schedules/:id/attendance?date=2026-03-02
func (h *AttendanceHandler) GetSheet(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	sheet, err := h.attendanceSvc.GetSheet(c.Request.Context(), id, date)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, sheet)
}

// Submit 提交考勤
// POST /api/v1/schedules/:id/attendance
func (h *AttendanceHandler) Submit(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitAttendanceRequest
	if !BindJSON(c, &req) {
		return
	}

	sheet, err := h.attendanceSvc.Submit(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, sheet)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.Validation(c, 24002, err)
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 24001, "开课记录不存在")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
