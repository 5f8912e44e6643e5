package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ums-obe/backend/config"
	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/grading"
	"ums-obe/backend/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrScheduleNotFound = errors.New("开课记录不存在")
	ErrCourseNotFound   = errors.New("课程不存在")
)

// ReportService 成果达成度报表业务接口
//
// 每次请求基于最新快照调用 grading 引擎重新计算；
// Redis 可用时缓存渲染结果，成绩或权重变动时按课程清除。
type ReportService interface {
	Full(ctx context.Context, scheduleID string) (*dto.ReportResponse, error)
	CLOReport(ctx context.Context, scheduleID string) ([]dto.CLOReportResponse, error)
	PLOReport(ctx context.Context, scheduleID string) ([]dto.PLOReportResponse, error)
	Summary(ctx context.Context, scheduleID string) (*dto.SummaryResponse, error)
}

type reportService struct {
	repo    *repository.Repository
	grading *config.GradingConfig
	cache   *reportCache
	logger  *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, gradingCfg *config.GradingConfig, cache *reportCache, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, grading: gradingCfg, cache: cache, logger: logger}
}

// ────── Full ──────

func (s *reportService) Full(ctx context.Context, scheduleID string) (*dto.ReportResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, mapNotFound(err, ErrScheduleNotFound)
	}
	if cached, ok := s.cache.get(ctx, schedule.CourseID, scheduleID); ok {
		return cached, nil
	}

	snap, err := loadSnapshot(ctx, s.repo, scheduleID)
	if err != nil {
		if !errors.Is(err, ErrScheduleNotFound) && !errors.Is(err, ErrCourseNotFound) {
			s.logger.Error("加载报表快照失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
		return nil, err
	}

	threshold := snap.passThreshold(s.grading.DefaultPassThreshold)
	input := snap.gradingInput(threshold)
	report := grading.Aggregate(input)
	if !report.Gradable {
		s.logger.Warn("课程权重总和不为 100，报表仅供参考",
			zap.String("course_id", snap.course.ID),
			zap.Int("total", grading.Capacity(input.Weights)),
		)
	}

	resp := dto.NewReportResponse(snap.info(threshold), report)
	s.cache.set(ctx, snap.course.ID, scheduleID, resp)
	return resp, nil
}

// ────── CLOReport ──────

func (s *reportService) CLOReport(ctx context.Context, scheduleID string) ([]dto.CLOReportResponse, error) {
	full, err := s.Full(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return full.CLOs, nil
}

// ────── PLOReport ──────

func (s *reportService) PLOReport(ctx context.Context, scheduleID string) ([]dto.PLOReportResponse, error) {
	full, err := s.Full(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return full.PLOs, nil
}

// ────── Summary ──────

func (s *reportService) Summary(ctx context.Context, scheduleID string) (*dto.SummaryResponse, error) {
	full, err := s.Full(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return &full.Summary, nil
}
