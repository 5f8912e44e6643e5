package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/service"
	"ums-obe/backend/internal/weightsetup"
	apperrors "ums-obe/backend/pkg/errors"
	"ums-obe/backend/pkg/response"
)

// WeightHandler 权重配置模块 HTTP 处理器
type WeightHandler struct {
	weightSvc service.WeightService
}

// NewWeightHandler 创建 WeightHandler
func NewWeightHandler(weightSvc service.WeightService) *WeightHandler {
	return &WeightHandler{weightSvc: weightSvc}
}

// OpenSession 打开课程权重配置会话
// POST /api/v1/courses/:id/weight-sessions
func (h *WeightHandler) OpenSession(c *gin.Context) {
	courseID, ok := MustParam(c, "id")
	if !ok {
		return
	}

	view, err := h.weightSvc.OpenSession(c.Request.Context(), courseID)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.Created(c, view)
}

// GetSession 获取会话视图
// GET /api/v1/weight-sessions/:sid
func (h *WeightHandler) GetSession(c *gin.Context) {
	sid, ok := MustParam(c, "sid")
	if !ok {
		return
	}

	view, err := h.weightSvc.GetSession(c.Request.Context(), sid)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, view)
}

// AddRow 新增权重行
// POST /api/v1/weight-sessions/:sid/rows
func (h *WeightHandler) AddRow(c *gin.Context) {
	sid, ok := MustParam(c, "sid")
	if !ok {
		return
	}
	var req dto.AddWeightRowRequest
	if !BindJSON(c, &req) {
		return
	}

	view, err := h.weightSvc.AddRow(c.Request.Context(), sid, &req)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, view)
}

// SelectPLO 为行选择 PLO
// PUT /api/v1/weight-sessions/:sid/rows/:rid/plo
func (h *WeightHandler) SelectPLO(c *gin.Context) {
	sid, rid, ok := sessionRow(c)
	if !ok {
		return
	}
	var req dto.SelectPLORequest
	if !BindJSON(c, &req) {
		return
	}

	view, err := h.weightSvc.SelectPLO(c.Request.Context(), sid, rid, &req)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, view)
}

// SelectAssessment 为行选择考核项
// PUT /api/v1/weight-sessions/:sid/rows/:rid/assessment
func (h *WeightHandler) SelectAssessment(c *gin.Context) {
	sid, rid, ok := sessionRow(c)
	if !ok {
		return
	}
	var req dto.SelectAssessmentRequest
	if !BindJSON(c, &req) {
		return
	}

	view, err := h.weightSvc.SelectAssessment(c.Request.Context(), sid, rid, &req)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, view)
}

// SetPercent 修改行百分比
// PUT /api/v1/weight-sessions/:sid/rows/:rid/weight
func (h *WeightHandler) SetPercent(c *gin.Context) {
	sid, rid, ok := sessionRow(c)
	if !ok {
		return
	}
	var req dto.SetPercentRequest
	if !BindJSON(c, &req) {
		return
	}

	view, err := h.weightSvc.SetPercent(c.Request.Context(), sid, rid, &req)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, view)
}

// RemoveRow 移除行
// DELETE /api/v1/weight-sessions/:sid/rows/:rid
func (h *WeightHandler) RemoveRow(c *gin.Context) {
	sid, rid, ok := sessionRow(c)
	if !ok {
		return
	}

	view, err := h.weightSvc.RemoveRow(c.Request.Context(), sid, rid)
	if err != nil {
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, view)
}

// Submit 提交权重；首次调用只返回 409 要求确认
// POST /api/v1/weight-sessions/:sid/submit
func (h *WeightHandler) Submit(c *gin.Context) {
	sid, ok := MustParam(c, "sid")
	if !ok {
		return
	}

	result, err := h.weightSvc.Submit(c.Request.Context(), sid)
	if err != nil {
		if errors.Is(err, service.ErrWeightSubmitFailed) {
			_ = c.Error(err)
			response.ErrorWithData(c, http.StatusInternalServerError, 21010, service.ErrWeightSubmitFailed.Error(), result)
			return
		}
		h.handleWeightError(c, err)
		return
	}

	response.OK(c, result)
}

func sessionRow(c *gin.Context) (string, string, bool) {
	sid, ok := MustParam(c, "sid")
	if !ok {
		return "", "", false
	}
	rid, ok := MustParam(c, "rid")
	if !ok {
		return "", "", false
	}
	return sid, rid, true
}

func (h *WeightHandler) handleWeightError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.Validation(c, 21009, err)
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 21001, "课程不存在")
	case errors.Is(err, weightsetup.ErrSessionNotFound):
		response.NotFound(c, 21002, "权重配置会话不存在或已过期")
	case errors.Is(err, weightsetup.ErrRowNotFound):
		response.NotFound(c, 21003, "权重行不存在")
	case errors.Is(err, weightsetup.ErrRowLocked):
		response.Conflict(c, 21004, "权重行已锁定，不可修改")
	case errors.Is(err, weightsetup.ErrPLORequired):
		response.BadRequest(c, 21005, "请先选择 PLO")
	case errors.Is(err, weightsetup.ErrPairingTaken):
		response.Conflict(c, 21006, "同一 CLO 下该 PLO 与考核项的组合已存在")
	case errors.Is(err, weightsetup.ErrUnknownOption):
		response.BadRequest(c, 21007, "无效的选项")
	case errors.Is(err, weightsetup.ErrConfirmationRequired):
		response.Conflict(c, 21008, "提交后将无法再修改，请再次提交以确认")
	case errors.Is(err, weightsetup.ErrSubmitInProgress):
		response.Conflict(c, 21011, "权重配置正在提交，请稍候")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
