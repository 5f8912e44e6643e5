package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	ListByScheduleDate(ctx context.Context, scheduleID string, date time.Time) ([]model.Attendance, error)
	Create(ctx context.Context, a *model.Attendance) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListByScheduleDate(ctx context.Context, scheduleID string, date time.Time) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND date = ?", scheduleID, date.Format("2006-01-02")).
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}
