package model

// Schedule 开课表 — 对应 schedules（某课程面向某班级的一次授课）
type Schedule struct {
	ID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID string  `gorm:"type:uuid;not null"                             json:"course_id"`
	ClassID  string  `gorm:"type:uuid;not null"                             json:"class_id"`
	Course   *Course `gorm:"foreignKey:CourseID"                            json:"course,omitempty"`
	Class    *Class  `gorm:"foreignKey:ClassID"                             json:"class,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }
