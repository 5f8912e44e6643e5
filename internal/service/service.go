package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ums-obe/backend/config"
	"ums-obe/backend/internal/autosave"
	"ums-obe/backend/internal/repository"
	"ums-obe/backend/internal/weightsetup"
	"ums-obe/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Report     ReportService
	Weight     WeightService
	Score      ScoreService
	Export     ExportService
	Attendance AttendanceService
	Evaluation EvaluationService

	// Sessions 权重配置会话表，由 main 定期清理
	Sessions *weightsetup.Registry
}

// NewService 创建 Service 聚合；rdb 为 nil 时报表不走缓存
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var store ReportCache
	if rdb != nil {
		store = rdb
	}
	cache := newReportCache(store, cfg.Redis.ReportTTL, logger)
	sessions := weightsetup.NewRegistry(cfg.Grading.WeightSessionTTL)
	report := NewReportService(repo, &cfg.Grading, cache, logger)

	return &Service{
		Report:     report,
		Weight:     NewWeightService(repo, sessions, cache, logger),
		Score:      NewScoreService(repo, &cfg.Grading, autosave.New(cfg.Grading.AutosaveDebounce), cache, logger),
		Export:     NewExportService(report, &cfg.Export, logger),
		Attendance: NewAttendanceService(repo, logger),
		Evaluation: NewEvaluationService(repo, logger),
		Sessions:   sessions,
	}
}

// mapNotFound 将 gorm.ErrRecordNotFound 转为模块哨兵错误
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
