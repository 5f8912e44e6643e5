package model

// Student 学生表 — 对应 students
type Student struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code      string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	Name      string `gorm:"type:varchar(200);not null"                     json:"name"`
	KhmerName string `gorm:"type:varchar(200);not null;default:''"          json:"khmer_name"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// DisplayName 优先显示高棉语姓名
func (s Student) DisplayName() string {
	if s.KhmerName != "" {
		return s.KhmerName
	}
	return s.Name
}

// Class 班级表 — 对应 classes
type Class struct {
	ID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Students []Student `gorm:"many2many:class_students"                       json:"students,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
