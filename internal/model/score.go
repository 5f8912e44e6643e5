package model

import "time"

// Score 成绩表 — 对应 scores
// (student_id, weight_id) 唯一，重复提交原地覆盖
type Score struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID string    `gorm:"type:uuid;not null"                             json:"student_id"`
	WeightID  string    `gorm:"type:uuid;not null"                             json:"weight_id"`
	CourseID  string    `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Value     float64   `gorm:"type:numeric(5,2);not null"                     json:"value"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Score) TableName() string { return "scores" }

// LockedAt 成绩在创建满 window 后锁定；window ≤ 0 表示不锁定
func (s Score) LockedAt(now time.Time, window time.Duration) bool {
	if window <= 0 || s.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(s.CreatedAt) > window
}
