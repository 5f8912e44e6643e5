package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/pkg/redis"
)

// ReportCache 报表缓存存储（*redis.Client 实现该接口）
type ReportCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// reportCache 缓存读写失败只记录日志，不影响主流程；store 为 nil 时全部跳过
type reportCache struct {
	store  ReportCache
	ttl    time.Duration
	logger *zap.Logger
}

func newReportCache(store ReportCache, ttl time.Duration, logger *zap.Logger) *reportCache {
	return &reportCache{store: store, ttl: ttl, logger: logger}
}

func coursePrefix(courseID string) string {
	return fmt.Sprintf("report:course:%s:", courseID)
}

func reportKey(courseID, scheduleID string) string {
	return coursePrefix(courseID) + "schedule:" + scheduleID
}

func (c *reportCache) get(ctx context.Context, courseID, scheduleID string) (*dto.ReportResponse, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	b, err := c.store.GetBytes(ctx, reportKey(courseID, scheduleID))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn("读取报表缓存失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
		return nil, false
	}
	var resp dto.ReportResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		c.logger.Warn("报表缓存反序列化失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (c *reportCache) set(ctx context.Context, courseID, scheduleID string, resp *dto.ReportResponse) {
	if c == nil || c.store == nil || c.ttl <= 0 {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.store.SetBytes(ctx, reportKey(courseID, scheduleID), b, c.ttl); err != nil {
		c.logger.Warn("写入报表缓存失败", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
}

// invalidate 成绩或权重变动后清除该课程全部开课的报表缓存
func (c *reportCache) invalidate(ctx context.Context, courseID string) {
	if c == nil || c.store == nil {
		return
	}
	n, err := c.store.DeleteByPrefix(ctx, coursePrefix(courseID))
	if err != nil {
		c.logger.Warn("清除报表缓存失败", zap.String("course_id", courseID), zap.Error(err))
		return
	}
	if n > 0 {
		c.logger.Debug("报表缓存已清除", zap.String("course_id", courseID), zap.Int("keys", n))
	}
}
