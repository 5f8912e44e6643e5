package model

import (
	"strings"

	"gorm.io/datatypes"
)

// 问卷题型
const (
	QuestionText     = "text"
	QuestionMCQ      = "mcq"
	QuestionCheckbox = "checkbox"
)

// EvaluationQuestion 课程评价题目 — 对应 evaluation_questions
type EvaluationQuestion struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Label    string `gorm:"type:text;not null"                             json:"label"`
	Type     string `gorm:"type:varchar(10);not null"                      json:"type"`
	Choices  string `gorm:"type:text;not null;default:''"                  json:"choices"` // 每行一个选项
	Required bool   `gorm:"not null;default:false"                         json:"required"`
	Position int    `gorm:"not null;default:0"                             json:"position"`
	BaseModel
}

// TableName 指定表名
func (EvaluationQuestion) TableName() string { return "evaluation_questions" }

// ChoiceList 拆分选项，忽略空行
func (q EvaluationQuestion) ChoiceList() []string {
	var out []string
	for _, line := range strings.Split(q.Choices, "\n") {
		if c := strings.TrimSpace(line); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Tallies 题目 ID → 答案 → 次数
type Tallies map[string]map[string]int

// EvaluationResult 每次开课一条评价汇总 — 对应 evaluation_results
type EvaluationResult struct {
	ID         string                       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID string                       `gorm:"type:uuid;not null;uniqueIndex"                 json:"schedule_id"`
	Tallies    datatypes.JSONType[Tallies]  `gorm:"type:jsonb;not null"                            json:"tallies"`
	Completed  datatypes.JSONSlice[string]  `gorm:"type:jsonb;not null"                            json:"completed"`
	VersionedModel
}

// TableName 指定表名
func (EvaluationResult) TableName() string { return "evaluation_results" }

// HasCompleted 学生是否已提交
func (r *EvaluationResult) HasCompleted(studentID string) bool {
	for _, id := range r.Completed {
		if id == studentID {
			return true
		}
	}
	return false
}
