package dto

import "ums-obe/backend/internal/weightsetup"

// ── 权重配置模块 DTO ──

// AddWeightRowRequest 新增权重行
type AddWeightRowRequest struct {
	CLOID string `json:"clo_id" binding:"required"`
}

// SelectPLORequest 选择 PLO
type SelectPLORequest struct {
	PLOID string `json:"plo_id" binding:"required"`
}

// SelectAssessmentRequest 选择考核项
type SelectAssessmentRequest struct {
	AssessmentID string `json:"assessment_id" binding:"required"`
}

// SetPercentRequest 修改百分比
type SetPercentRequest struct {
	Percent *int `json:"percent" binding:"required,min=0,max=100"`
}

// WeightRowResponse 权重行及其可选项
type WeightRowResponse struct {
	ID                string               `json:"id"`
	Persisted         bool                 `json:"persisted"`
	CLOID             string               `json:"clo_id"`
	PLOID             string               `json:"plo_id"`
	AssessmentID      string               `json:"assessment_id"`
	Percent           int                  `json:"percent"`
	State             string               `json:"state"`
	PLOOptions        []weightsetup.Option `json:"plo_options"`
	AssessmentOptions []weightsetup.Option `json:"assessment_options"`
}

// WeightSessionResponse 会话视图
type WeightSessionResponse struct {
	SessionID     string               `json:"session_id"`
	CourseID      string               `json:"course_id"`
	CLOs          []weightsetup.Option `json:"clos"`
	Rows          []WeightRowResponse  `json:"rows"`
	Total         int                  `json:"total"`
	Armed         bool                 `json:"armed"`
	PendingDetach []string             `json:"pending_detach"`
}

// SubmitWeightsResponse 提交结果
type SubmitWeightsResponse struct {
	CourseID string   `json:"course_id"`
	Created  []string `json:"created"`
	Detached []string `json:"detached"`
}
