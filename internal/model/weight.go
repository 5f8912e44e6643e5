package model

// Weight 权重表 — 对应 weights
// 创建后不再修改，仅可通过将 CourseID 置空从课程解绑
type Weight struct {
	ID           string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID     *string     `gorm:"type:uuid;index"                                json:"course_id"`
	CLOID        string      `gorm:"column:clo_id;type:uuid;not null"               json:"clo_id"`
	PLOID        *string     `gorm:"column:plo_id;type:uuid"                        json:"plo_id"`
	AssessmentID string      `gorm:"type:uuid;not null"                             json:"assessment_id"`
	Weight       int         `gorm:"column:weight;not null"                         json:"weight"`
	CLO          *Outcome    `gorm:"foreignKey:CLOID"                               json:"clo,omitempty"`
	PLO          *Outcome    `gorm:"foreignKey:PLOID"                               json:"plo,omitempty"`
	Assessment   *Assessment `gorm:"foreignKey:AssessmentID"                        json:"assessment,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Weight) TableName() string { return "weights" }
