package model

// 成果类型
const (
	OutcomeKindCLO = "CLO"
	OutcomeKindPLO = "PLO"
)

// Outcome 学习成果表 — 对应 outcomes
// CLO 归属课程；PLO 归属专业，ProgramID 为空的 PLO 为默认集合
type Outcome struct {
	ID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Kind      string  `gorm:"type:varchar(3);not null"                       json:"kind"`
	Number    int     `gorm:"not null"                                       json:"number"`
	Statement string  `gorm:"type:text;not null;default:''"                  json:"statement"`
	CourseID  *string `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	ProgramID *string `gorm:"type:uuid"                                      json:"program_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Outcome) TableName() string { return "outcomes" }

// Assessment 考核项表 — 对应 assessments
type Assessment struct {
	ID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	BaseModel
}

// TableName 指定表名
func (Assessment) TableName() string { return "assessments" }
