package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/service"
	apperrors "ums-obe/backend/pkg/errors"
	"ums-obe/backend/pkg/response"
)

// ScoreHandler 成绩录入模块 HTTP 处理器
type ScoreHandler struct {
	scoreSvc service.ScoreService
}

// NewScoreHandler 创建 ScoreHandler
func NewScoreHandler(scoreSvc service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreSvc: scoreSvc}
}

// Sheet 成绩录入表
// GET /api/v1/schedules/:id/scores
func (h *ScoreHandler) Sheet(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	sheet, err := h.scoreSvc.Sheet(c.Request.Context(), id)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, sheet)
}

// Upsert 录入或修改单个成绩
// PUT /api/v1/scores
func (h *ScoreHandler) Upsert(c *gin.Context) {
	var req dto.UpsertScoreRequest
	if !BindJSON(c, &req) {
		return
	}

	score, err := h.scoreSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, score)
}

// Autosave 输入过程中的自动保存，合并后延迟落库
// POST /api/v1/scores/autosave
func (h *ScoreHandler) Autosave(c *gin.Context) {
	var req dto.UpsertScoreRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.scoreSvc.Autosave(c.Request.Context(), &req); err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.Accepted(c)
}

func (h *ScoreHandler) handleScoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.Validation(c, 22005, err)
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 22001, "开课记录不存在")
	case errors.Is(err, service.ErrWeightNotFound):
		response.NotFound(c, 22002, "权重不存在")
	case errors.Is(err, service.ErrWeightDetached):
		response.Conflict(c, 22003, "权重已从课程解绑，不能再录入成绩")
	case errors.Is(err, service.ErrScoreLocked):
		response.Conflict(c, 22004, "成绩录入已超过可修改期限")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
