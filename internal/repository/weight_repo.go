package repository

import (
	"context"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
)

// WeightRepository 权重数据访问接口
type WeightRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]model.Weight, error)
	GetByID(ctx context.Context, id string) (*model.Weight, error)
	Create(ctx context.Context, w *model.Weight) error
	Detach(ctx context.Context, id string) error
}

type weightRepo struct {
	db *gorm.DB
}

// NewWeightRepo 创建 WeightRepository 实例
func NewWeightRepo(db *gorm.DB) WeightRepository {
	return &weightRepo{db: db}
}

// ListByCourse 课程当前绑定的权重，预加载 CLO/PLO/考核项，按创建顺序
func (r *weightRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Weight, error) {
	var weights []model.Weight
	err := r.db.WithContext(ctx).
		Preload("CLO").
		Preload("PLO").
		Preload("Assessment").
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&weights).Error
	return weights, err
}

func (r *weightRepo) GetByID(ctx context.Context, id string) (*model.Weight, error) {
	var w model.Weight
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *weightRepo) Create(ctx context.Context, w *model.Weight) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// Detach 将权重从课程解绑（course_id 置空），历史成绩保留
func (r *weightRepo) Detach(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Weight{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"course_id":  nil,
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
