package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/service"
	apperrors "ums-obe/backend/pkg/errors"
	"ums-obe/backend/pkg/response"
)

// EvaluationHandler 课程评价模块 HTTP 处理器
type EvaluationHandler struct {
	evaluationSvc service.EvaluationService
}

// NewEvaluationHandler 创建 EvaluationHandler
func NewEvaluationHandler(evaluationSvc service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationSvc: evaluationSvc}
}

// ListQuestions 评价题目
// GET /api/v1/evaluation/questions
func (h *EvaluationHandler) ListQuestions(c *gin.Context) {
	questions, err := h.evaluationSvc.ListQuestions(c.Request.Context())
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": questions})
}

// Submit 学生提交评价
// POST /api/v1/schedules/:id/evaluation
func (h *EvaluationHandler) Submit(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitEvaluationRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.evaluationSvc.Submit(c.Request.Context(), id, &req); err != nil {
		h.handleEvaluationError(c, err)
		return
	}

	response.Created(c, nil)
}

// Summary 评价汇总
// GET /api/v1/schedules/:id/evaluation/summary
func (h *EvaluationHandler) Summary(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.evaluationSvc.Summary(c.Request.Context(), id)
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}

	response.OK(c, summary)
}

func (h *EvaluationHandler) handleEvaluationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.Validation(c, 25004, err)
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 25001, "开课记录不存在")
	case errors.Is(err, service.ErrEvaluationAlreadySubmitted):
		response.Conflict(c, 25002, "该学生已提交过本课程评价")
	case errors.Is(err, service.ErrEvaluationConflict):
		response.Conflict(c, 25003, "评价提交冲突，请稍后重试")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
