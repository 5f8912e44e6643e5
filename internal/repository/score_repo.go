package repository

import (
	"context"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
)

// ScoreRepository 成绩数据访问接口
type ScoreRepository interface {
	ListByCourse(ctx context.Context, courseID string, studentIDs []string) ([]model.Score, error)
	GetByStudentWeight(ctx context.Context, studentID, weightID string) (*model.Score, error)
	Create(ctx context.Context, s *model.Score) error
	UpdateValue(ctx context.Context, id string, value float64) error
}

type scoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo 创建 ScoreRepository 实例
func NewScoreRepo(db *gorm.DB) ScoreRepository {
	return &scoreRepo{db: db}
}

// ListByCourse 课程成绩；studentIDs 为空时返回全部
func (r *scoreRepo) ListByCourse(ctx context.Context, courseID string, studentIDs []string) ([]model.Score, error) {
	var scores []model.Score
	q := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if len(studentIDs) > 0 {
		q = q.Where("student_id IN ?", studentIDs)
	}
	err := q.Order("created_at ASC").Find(&scores).Error
	return scores, err
}

func (r *scoreRepo) GetByStudentWeight(ctx context.Context, studentID, weightID string) (*model.Score, error) {
	var s model.Score
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND weight_id = ?", studentID, weightID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scoreRepo) Create(ctx context.Context, s *model.Score) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// UpdateValue 原地覆盖分值，created_at 不变
func (r *scoreRepo) UpdateValue(ctx context.Context, id string, value float64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Score{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
