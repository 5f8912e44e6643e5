package repository

import (
	"context"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
)

// OutcomeRepository 学习成果与考核项数据访问接口
type OutcomeRepository interface {
	ListCLOsByCourse(ctx context.Context, courseID string) ([]model.Outcome, error)
	ListPLOs(ctx context.Context, programID *string) ([]model.Outcome, error)
	ListAssessments(ctx context.Context) ([]model.Assessment, error)
}

type outcomeRepo struct {
	db *gorm.DB
}

// NewOutcomeRepo 创建 OutcomeRepository 实例
func NewOutcomeRepo(db *gorm.DB) OutcomeRepository {
	return &outcomeRepo{db: db}
}

func (r *outcomeRepo) ListCLOsByCourse(ctx context.Context, courseID string) ([]model.Outcome, error) {
	var clos []model.Outcome
	err := r.db.WithContext(ctx).
		Where("kind = ? AND course_id = ?", model.OutcomeKindCLO, courseID).
		Order("number ASC").
		Find(&clos).Error
	return clos, err
}

// ListPLOs 优先返回专业专属的 PLO；专业没有 PLO 时回退到默认集合（program_id 为空）
func (r *outcomeRepo) ListPLOs(ctx context.Context, programID *string) ([]model.Outcome, error) {
	var plos []model.Outcome
	if programID != nil {
		err := r.db.WithContext(ctx).
			Where("kind = ? AND program_id = ?", model.OutcomeKindPLO, *programID).
			Order("number ASC").
			Find(&plos).Error
		if err != nil {
			return nil, err
		}
		if len(plos) > 0 {
			return plos, nil
		}
	}

	err := r.db.WithContext(ctx).
		Where("kind = ? AND program_id IS NULL", model.OutcomeKindPLO).
		Order("number ASC").
		Find(&plos).Error
	return plos, err
}

func (r *outcomeRepo) ListAssessments(ctx context.Context) ([]model.Assessment, error) {
	var list []model.Assessment
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&list).Error
	return list, err
}
