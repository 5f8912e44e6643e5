package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ums-obe/backend/config"
	"ums-obe/backend/internal/autosave"
	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/grading"
	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
	apperrors "ums-obe/backend/pkg/errors"
)

// ── 成绩模块业务错误 ──

var (
	ErrWeightNotFound = errors.New("权重不存在")
	ErrWeightDetached = errors.New("权重已从课程解绑，不能再录入成绩")
	ErrScoreLocked    = errors.New("成绩录入已超过可修改期限")
)

// ScoreService 成绩录入业务接口
//
// 设计说明：
//   - (学生, 权重) 至多一条成绩，重复提交原地覆盖，created_at 保持不变
//   - 自动保存按 (学生, 权重) 去抖，只写入静默窗口内的最后一次输入
//   - 任何写入后清除该课程的报表缓存
type ScoreService interface {
	Upsert(ctx context.Context, req *dto.UpsertScoreRequest) (*dto.ScoreResponse, error)
	Autosave(ctx context.Context, req *dto.UpsertScoreRequest) error
	Sheet(ctx context.Context, scheduleID string) (*dto.ScoreSheetResponse, error)
	// Close 立即写入所有尚未落库的自动保存
	Close()
}

type scoreService struct {
	repo     *repository.Repository
	grading  *config.GradingConfig
	debounce *autosave.Debouncer
	cache    *reportCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewScoreService 创建 ScoreService 实例
func NewScoreService(
	repo *repository.Repository,
	gradingCfg *config.GradingConfig,
	debounce *autosave.Debouncer,
	cache *reportCache,
	logger *zap.Logger,
) ScoreService {
	return &scoreService{
		repo:     repo,
		grading:  gradingCfg,
		debounce: debounce,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// ────── Upsert ──────

func (s *scoreService) Upsert(ctx context.Context, req *dto.UpsertScoreRequest) (*dto.ScoreResponse, error) {
	if req.Value == nil {
		return nil, apperrors.Invalid("value", "分值不能为空")
	}
	value := *req.Value

	// 1. 权重必须存在且仍绑定在课程上
	weight, err := s.repo.Weight.GetByID(ctx, req.WeightID)
	if err != nil {
		return nil, mapNotFound(err, ErrWeightNotFound)
	}
	if weight.CourseID == nil {
		return nil, ErrWeightDetached
	}

	// 2. 校验分值（写入之前）
	if err := grading.ValidateScore(weight.Weight, value, s.grading.CapScoresAtWeight); err != nil {
		return nil, err
	}

	// 3. 查找已有成绩
	existing, err := s.repo.Score.GetByStudentWeight(ctx, req.StudentID, req.WeightID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询成绩失败",
			zap.String("student_id", req.StudentID),
			zap.String("weight_id", req.WeightID),
			zap.Error(err),
		)
		return nil, err
	}

	now := s.now()
	if existing == nil {
		score := &model.Score{
			StudentID: req.StudentID,
			WeightID:  req.WeightID,
			CourseID:  *weight.CourseID,
			Value:     value,
		}
		err := s.repo.Score.Create(ctx, score)
		if err == nil {
			s.cache.invalidate(ctx, score.CourseID)
			return s.toResponse(score, now), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("创建成绩失败", zap.String("student_id", req.StudentID), zap.Error(err))
			return nil, err
		}

		// 并发的首次录入已先写入，改为覆盖
		existing, err = s.repo.Score.GetByStudentWeight(ctx, req.StudentID, req.WeightID)
		if err != nil {
			s.logger.Error("重新查询成绩失败",
				zap.String("student_id", req.StudentID),
				zap.String("weight_id", req.WeightID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if existing.LockedAt(now, s.grading.ScoreEditWindow) {
		return nil, ErrScoreLocked
	}
	if existing.Value == value {
		return s.toResponse(existing, now), nil
	}

	if err := s.repo.Score.UpdateValue(ctx, existing.ID, value); err != nil {
		s.logger.Error("更新成绩失败", zap.String("score_id", existing.ID), zap.Error(err))
		return nil, err
	}
	existing.Value = value
	s.cache.invalidate(ctx, existing.CourseID)
	return s.toResponse(existing, now), nil
}

// ────── Autosave ──────

// Autosave 仅做范围校验后排队，真正的写入在静默窗口结束后执行
func (s *scoreService) Autosave(_ context.Context, req *dto.UpsertScoreRequest) error {
	if req.Value == nil {
		return nil
	}
	if err := grading.ValidateScore(grading.FullWeight, *req.Value, false); err != nil {
		return err
	}

	pending := *req
	key := req.StudentID + ":" + req.WeightID
	s.debounce.Trigger(key, func() {
		if _, err := s.Upsert(context.Background(), &pending); err != nil {
			s.logger.Warn("自动保存成绩失败",
				zap.String("student_id", pending.StudentID),
				zap.String("weight_id", pending.WeightID),
				zap.Error(err),
			)
		}
	})
	return nil
}

// ────── Sheet ──────

// Sheet 成绩录入表：列按考核项分组，组内按 CLO、PLO 编号排序
func (s *scoreService) Sheet(ctx context.Context, scheduleID string) (*dto.ScoreSheetResponse, error) {
	snap, err := loadSnapshot(ctx, s.repo, scheduleID)
	if err != nil {
		return nil, err
	}

	columns := sheetColumns(snap.weights)

	scores := make(map[string]model.Score, len(snap.scores))
	for _, sc := range snap.scores {
		key := sc.StudentID + ":" + sc.WeightID
		if _, ok := scores[key]; !ok {
			scores[key] = sc
		}
	}

	now := s.now()
	resp := &dto.ScoreSheetResponse{
		ScheduleID: scheduleID,
		Columns:    columns,
		Rows:       make([]dto.ScoreSheetRow, 0, len(snap.students)),
	}
	for _, st := range snap.students {
		row := dto.ScoreSheetRow{
			StudentID: st.ID,
			Code:      st.Code,
			Name:      st.DisplayName(),
			Cells:     make([]dto.ScoreCell, 0, len(columns)),
		}
		for _, col := range columns {
			cell := dto.ScoreCell{WeightID: col.WeightID}
			if sc, ok := scores[st.ID+":"+col.WeightID]; ok {
				v := sc.Value
				cell.Value = &v
				cell.Locked = sc.LockedAt(now, s.grading.ScoreEditWindow)
			}
			row.Cells = append(row.Cells, cell)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// ────── Close ──────

func (s *scoreService) Close() {
	s.debounce.Flush()
}

// ── 辅助函数 ──

func (s *scoreService) toResponse(sc *model.Score, now time.Time) *dto.ScoreResponse {
	return &dto.ScoreResponse{
		ID:        sc.ID,
		StudentID: sc.StudentID,
		WeightID:  sc.WeightID,
		Value:     sc.Value,
		Locked:    sc.LockedAt(now, s.grading.ScoreEditWindow),
		CreatedAt: sc.CreatedAt.Format(time.RFC3339),
	}
}

func sheetColumns(weights []model.Weight) []dto.ScoreColumn {
	gw := make([]grading.Weight, len(weights))
	for i, w := range weights {
		gw[i] = toGradingWeight(w)
	}

	columns := make([]dto.ScoreColumn, 0, len(weights))
	for _, a := range grading.GroupByAssessment(gw) {
		ws := append([]grading.Weight(nil), a.Weights...)
		sort.SliceStable(ws, func(i, j int) bool {
			if ws[i].CLO.Number != ws[j].CLO.Number {
				return ws[i].CLO.Number < ws[j].CLO.Number
			}
			return ws[i].PLO.Number < ws[j].PLO.Number
		})
		for _, w := range ws {
			columns = append(columns, dto.ScoreColumn{
				WeightID:   w.ID,
				Assessment: a.Assessment.Name,
				CLONumber:  w.CLO.Number,
				PLONumber:  w.PLO.Number,
				Percent:    w.Percent,
			})
		}
	}
	return columns
}
