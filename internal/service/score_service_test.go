package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"ums-obe/backend/config"
	"ums-obe/backend/internal/autosave"
	"ums-obe/backend/internal/dto"
	apperrors "ums-obe/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestScoreService(f *fixture, cfg *config.GradingConfig, window time.Duration) (ScoreService, *fakeReportCache) {
	if cfg == nil {
		cfg = &config.GradingConfig{ScoreEditWindow: 720 * time.Hour}
	}
	store := newFakeReportCache()
	cache := newReportCache(store, time.Minute, zap.NewNop())
	svc := NewScoreService(f.repo, cfg, autosave.New(window), cache, zap.NewNop())
	return svc, store
}

func floatPtr(v float64) *float64 { return &v }

// ── Upsert 测试 ──

func TestScoreService_Upsert_Create(t *testing.T) {
	f := newFixture()
	svc, store := setupTestScoreService(f, nil, time.Hour)

	resp, err := svc.Upsert(context.Background(), &dto.UpsertScoreRequest{
		StudentID: "s1", WeightID: "w1", Value: floatPtr(15),
	})
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}
	if resp.Value != 15 || resp.Locked {
		t.Errorf("期望 value=15 且未锁定，实际: %+v", resp)
	}
	if f.scores.creates != 1 {
		t.Errorf("期望创建 1 条，实际: %d", f.scores.creates)
	}
	if store.deletes != 1 {
		t.Errorf("写入后期望清除缓存，实际: %d", store.deletes)
	}
}

func TestScoreService_Upsert_UpdateInPlace(t *testing.T) {
	f := newFixture()
	f.scores.put("s1", "w1", f.course.ID, 10, time.Now().Add(-24*time.Hour))
	svc, _ := setupTestScoreService(f, nil, time.Hour)

	resp, err := svc.Upsert(context.Background(), &dto.UpsertScoreRequest{
		StudentID: "s1", WeightID: "w1", Value: floatPtr(18),
	})
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}
	if resp.ID != "sc-1" || resp.Value != 18 {
		t.Errorf("期望原地更新 sc-1 为 18，实际: %+v", resp)
	}
	if f.scores.creates != 0 || f.scores.updates != 1 {
		t.Errorf("期望 0 创建 1 更新，实际: %d/%d", f.scores.creates, f.scores.updates)
	}
}

func TestScoreService_Upsert_ConcurrentFirstEntryOverwrites(t *testing.T) {
	f := newFixture()
	f.scores.put("s1", "w1", f.course.ID, 10, time.Now())
	f.scores.staleLookups = 1
	svc, _ := setupTestScoreService(f, nil, time.Hour)

	resp, err := svc.Upsert(context.Background(), &dto.UpsertScoreRequest{
		StudentID: "s1", WeightID: "w1", Value: floatPtr(18),
	})
	if err != nil {
		t.Fatalf("唯一键冲突时应改为覆盖: %v", err)
	}
	if resp.ID != "sc-1" || resp.Value != 18 {
		t.Errorf("期望覆盖 sc-1 为 18，实际: %+v", resp)
	}
	got, _ := f.scores.GetByStudentWeight(context.Background(), "s1", "w1")
	if got == nil || got.Value != 18 {
		t.Errorf("期望存储值为 18，实际: %+v", got)
	}
	if f.scores.creates != 0 || f.scores.updates != 1 {
		t.Errorf("期望 0 创建 1 更新，实际: %d/%d", f.scores.creates, f.scores.updates)
	}
}

func TestScoreService_Upsert_SameValueNoop(t *testing.T) {
	f := newFixture()
	f.scores.put("s1", "w1", f.course.ID, 10, time.Now())
	svc, store := setupTestScoreService(f, nil, time.Hour)

	if _, err := svc.Upsert(context.Background(), &dto.UpsertScoreRequest{
		StudentID: "s1", WeightID: "w1", Value: floatPtr(10),
	}); err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}
	if f.scores.writes() != 0 || store.deletes != 0 {
		t.Errorf("相同分值不应写入，实际写入 %d 次", f.scores.writes())
	}
}

func TestScoreService_Upsert_Locked(t *testing.T) {
	f := newFixture()
	f.scores.put("s1", "w1", f.course.ID, 10, time.Now().Add(-31*24*time.Hour))
	svc, _ := setupTestScoreService(f, nil, time.Hour)

	_, err := svc.Upsert(context.Background(), &dto.UpsertScoreRequest{
		StudentID: "s1", WeightID: "w1", Value: floatPtr(12),
	})
	if !errors.Is(err, ErrScoreLocked) {
		t.Errorf("期望 ErrScoreLocked，实际: %v", err)
	}
}

func TestScoreService_Upsert_Validation(t *testing.T) {
	f := newFixture()
	capped := &config.GradingConfig{ScoreEditWindow: 720 * time.Hour, CapScoresAtWeight: true}

	tests := []struct {
		name  string
		cfg   *config.GradingConfig
		value *float64
	}{
		{"空值", nil, nil},
		{"负数", nil, floatPtr(-1)},
		{"超过 100", nil, floatPtr(101)},
		{"超过权重上限", capped, floatPtr(25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestScoreService(f, tt.cfg, time.Hour)
			_, err := svc.Upsert(context.Background(), &dto.UpsertScoreRequest{
				StudentID: "s1", WeightID: "w1", Value: tt.value,
			})
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("期望校验失败，实际: %v", err)
			}
		})
	}
	if f.scores.writes() != 0 {
		t.Errorf("校验失败不应写入，实际: %d", f.scores.writes())
	}
}

func TestScoreService_Upsert_WeightErrors(t *testing.T) {
	f := newFixture()
	f.weights.weights["w3"].CourseID = nil
	svc, _ := setupTestScoreService(f, nil, time.Hour)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, &dto.UpsertScoreRequest{StudentID: "s1", WeightID: "missing", Value: floatPtr(1)})
	if !errors.Is(err, ErrWeightNotFound) {
		t.Errorf("期望 ErrWeightNotFound，实际: %v", err)
	}
	_, err = svc.Upsert(ctx, &dto.UpsertScoreRequest{StudentID: "s1", WeightID: "w3", Value: floatPtr(1)})
	if !errors.Is(err, ErrWeightDetached) {
		t.Errorf("期望 ErrWeightDetached，实际: %v", err)
	}
}

// ── Autosave 测试 ──

func TestScoreService_Autosave_FlushWritesLastValue(t *testing.T) {
	f := newFixture()
	svc, _ := setupTestScoreService(f, nil, time.Hour)
	ctx := context.Background()

	for _, v := range []float64{1, 2, 3} {
		if err := svc.Autosave(ctx, &dto.UpsertScoreRequest{StudentID: "s1", WeightID: "w1", Value: floatPtr(v)}); err != nil {
			t.Fatalf("Autosave 应成功: %v", err)
		}
	}
	if f.scores.writes() != 0 {
		t.Fatalf("窗口结束前不应写入，实际: %d", f.scores.writes())
	}

	svc.Close()

	if f.scores.writes() != 1 {
		t.Fatalf("期望只写入 1 次，实际: %d", f.scores.writes())
	}
	got, _ := f.scores.GetByStudentWeight(ctx, "s1", "w1")
	if got == nil || got.Value != 3 {
		t.Errorf("期望写入最后一次的值 3，实际: %+v", got)
	}
}

func TestScoreService_Autosave_Debounced(t *testing.T) {
	f := newFixture()
	svc, _ := setupTestScoreService(f, nil, 50*time.Millisecond)
	ctx := context.Background()

	for _, v := range []float64{4, 5, 6} {
		_ = svc.Autosave(ctx, &dto.UpsertScoreRequest{StudentID: "s2", WeightID: "w2", Value: floatPtr(v)})
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.scores.writes() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if f.scores.writes() != 1 {
		t.Fatalf("期望只写入 1 次，实际: %d", f.scores.writes())
	}
	got, _ := f.scores.GetByStudentWeight(ctx, "s2", "w2")
	if got == nil || got.Value != 6 {
		t.Errorf("期望写入 6，实际: %+v", got)
	}
}

func TestScoreService_Autosave_NilValueSkipped(t *testing.T) {
	f := newFixture()
	svc, _ := setupTestScoreService(f, nil, time.Hour)

	if err := svc.Autosave(context.Background(), &dto.UpsertScoreRequest{StudentID: "s1", WeightID: "w1"}); err != nil {
		t.Fatalf("空值应被跳过: %v", err)
	}
	svc.Close()
	if f.scores.writes() != 0 {
		t.Errorf("空值不应写入，实际: %d", f.scores.writes())
	}
}

// ── Sheet 测试 ──

func TestScoreService_Sheet(t *testing.T) {
	f := newFixture()
	f.scores.put("s1", "w1", f.course.ID, 15, time.Now())
	f.scores.put("s1", "w3", f.course.ID, 50, time.Now().Add(-40*24*time.Hour))
	svc, _ := setupTestScoreService(f, nil, time.Hour)

	sheet, err := svc.Sheet(context.Background(), "sch-1")
	if err != nil {
		t.Fatalf("Sheet 应成功: %v", err)
	}
	if len(sheet.Columns) != 3 {
		t.Fatalf("期望 3 列，实际: %d", len(sheet.Columns))
	}
	// Midterm 在前，Final 内按 CLO 编号
	wantOrder := []string{"w1", "w2", "w3"}
	for i, col := range sheet.Columns {
		if col.WeightID != wantOrder[i] {
			t.Errorf("第 %d 列期望 %s，实际: %s", i, wantOrder[i], col.WeightID)
		}
	}
	if len(sheet.Rows) != 3 {
		t.Fatalf("期望 3 行，实际: %d", len(sheet.Rows))
	}

	cells := sheet.Rows[0].Cells
	if cells[0].Value == nil || *cells[0].Value != 15 || cells[0].Locked {
		t.Errorf("期望 s1/w1 = 15 未锁定，实际: %+v", cells[0])
	}
	if cells[1].Value != nil {
		t.Errorf("期望 s1/w2 为空，实际: %v", *cells[1].Value)
	}
	if !cells[2].Locked {
		t.Error("超过 30 天的成绩期望锁定")
	}
}
