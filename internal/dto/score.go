package dto

// ── 成绩模块 DTO ──

// UpsertScoreRequest 录入/修改成绩；Value 为空表示清空输入，自动保存时跳过
type UpsertScoreRequest struct {
	StudentID string   `json:"student_id" binding:"required"`
	WeightID  string   `json:"weight_id"  binding:"required"`
	Value     *float64 `json:"value"`
}

// ScoreResponse 成绩
type ScoreResponse struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	WeightID  string  `json:"weight_id"`
	Value     float64 `json:"value"`
	Locked    bool    `json:"locked"`
	CreatedAt string  `json:"created_at"`
}

// ScoreColumn 成绩表列（一个权重一列）
type ScoreColumn struct {
	WeightID   string `json:"weight_id"`
	Assessment string `json:"assessment"`
	CLONumber  int    `json:"clo_number"`
	PLONumber  int    `json:"plo_number"`
	Percent    int    `json:"percent"`
}

// ScoreCell 成绩表单元格
type ScoreCell struct {
	WeightID string   `json:"weight_id"`
	Value    *float64 `json:"value"`
	Locked   bool     `json:"locked"`
}

// ScoreSheetRow 成绩表一行
type ScoreSheetRow struct {
	StudentID string      `json:"student_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Cells     []ScoreCell `json:"cells"`
}

// ScoreSheetResponse 成绩录入表
type ScoreSheetResponse struct {
	ScheduleID string          `json:"schedule_id"`
	Columns    []ScoreColumn   `json:"columns"`
	Rows       []ScoreSheetRow `json:"rows"`
}
