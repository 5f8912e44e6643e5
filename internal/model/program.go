package model

// Program 专业表 — 对应 programs
type Program struct {
	ID            string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string   `gorm:"type:varchar(200);not null"                     json:"name"`
	PassThreshold *float64 `gorm:"type:numeric(5,2)"                              json:"pass_threshold"` // 为空时使用全局默认值
	BaseModel
}

// TableName 指定表名
func (Program) TableName() string { return "programs" }

// Course 课程表 — 对应 courses
type Course struct {
	ID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string   `gorm:"type:varchar(200);not null"                     json:"name"`
	Credit    float64  `gorm:"type:numeric(4,1);not null;default:0"           json:"credit"`
	ProgramID *string  `gorm:"type:uuid"                                      json:"program_id"`
	Program   *Program `gorm:"foreignKey:ProgramID"                           json:"program,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
