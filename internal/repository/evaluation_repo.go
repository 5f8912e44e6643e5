package repository

import (
	"context"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
	pkgerrors "ums-obe/backend/pkg/errors"
)

// EvaluationRepository 课程评价数据访问接口
type EvaluationRepository interface {
	ListQuestions(ctx context.Context) ([]model.EvaluationQuestion, error)
	GetResult(ctx context.Context, scheduleID string) (*model.EvaluationResult, error)
	CreateResult(ctx context.Context, result *model.EvaluationResult) error
	UpdateResult(ctx context.Context, result *model.EvaluationResult) error
}

type evaluationRepo struct {
	db *gorm.DB
}

// NewEvaluationRepo 创建 EvaluationRepository 实例
func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) ListQuestions(ctx context.Context) ([]model.EvaluationQuestion, error) {
	var list []model.EvaluationQuestion
	err := r.db.WithContext(ctx).
		Order("position ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *evaluationRepo) GetResult(ctx context.Context, scheduleID string) (*model.EvaluationResult, error) {
	var result model.EvaluationResult
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *evaluationRepo) CreateResult(ctx context.Context, result *model.EvaluationResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// UpdateResult 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *evaluationRepo) UpdateResult(ctx context.Context, result *model.EvaluationResult) error {
	res := r.db.WithContext(ctx).
		Model(&model.EvaluationResult{}).
		Where("id = ? AND version = ?", result.ID, result.Version).
		Updates(map[string]interface{}{
			"tallies":    result.Tallies,
			"completed":  result.Completed,
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	result.Version++
	return nil
}
