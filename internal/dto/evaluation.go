package dto

// ── 课程评价模块 DTO ──

// QuestionResponse 评价题目
type QuestionResponse struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Choices  []string `json:"choices"`
	Required bool     `json:"required"`
}

// SubmitEvaluationRequest 学生提交评价；Answers 为题目 ID → 答案
type SubmitEvaluationRequest struct {
	StudentID string              `json:"student_id" binding:"required"`
	Answers   map[string][]string `json:"answers"    binding:"required"`
}

// ChoiceStat 选项统计
type ChoiceStat struct {
	Choice  string `json:"choice"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// QuestionSummary 单题汇总：选择题给出选项占比，文字题给出展开后的答案列表
type QuestionSummary struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Type    string       `json:"type"`
	Choices []ChoiceStat `json:"choices,omitempty"`
	Answers []string     `json:"answers,omitempty"`
}

// EvaluationSummaryResponse 评价汇总
type EvaluationSummaryResponse struct {
	ScheduleID     string            `json:"schedule_id"`
	CompletedCount int               `json:"completed_count"`
	Questions      []QuestionSummary `json:"questions"`
}
