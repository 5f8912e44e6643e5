package model

import "time"

// 考勤状态
const (
	AttendanceAbsent     = "A"
	AttendanceLate       = "L"
	AttendancePresent    = "P"
	AttendancePermission = "E"
)

// Attendance 考勤表 — 对应 attendances
type Attendance struct {
	ID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID string    `gorm:"type:uuid;not null"                             json:"schedule_id"`
	StudentID  string    `gorm:"type:uuid;not null"                             json:"student_id"`
	Date       time.Time `gorm:"type:date;not null"                             json:"date"`
	Status     string    `gorm:"type:char(1);not null"                          json:"status"`
	BaseModel
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }
