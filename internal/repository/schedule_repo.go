package repository

import (
	"context"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
)

// ScheduleRepository 开课与学生名单数据访问接口
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ListStudents(ctx context.Context, classID string) ([]model.Student, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

// GetByID 预加载课程、专业与班级
func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Program").
		Preload("Class").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStudents 班级学生，按学号排序
func (r *scheduleRepo) ListStudents(ctx context.Context, classID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN class_students cs ON cs.student_id = students.id").
		Where("cs.class_id = ?", classID).
		Order("students.code ASC").
		Find(&students).Error
	return students, err
}
