package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/grading"
	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
	apperrors "ums-obe/backend/pkg/errors"
)

// ── 课程评价模块业务错误 ──

var (
	ErrEvaluationAlreadySubmitted = errors.New("该学生已提交过本课程评价")
	ErrEvaluationConflict         = errors.New("评价提交冲突，请稍后重试")
)

// maxEvaluationRetries 乐观锁冲突时的最大重试次数
const maxEvaluationRetries = 3

// EvaluationService 课程评价业务接口
//
// 每次开课只保存一条汇总：题目 → 答案 → 次数，以及已提交学生列表；
// 不保存单个学生的答卷。
type EvaluationService interface {
	ListQuestions(ctx context.Context) ([]dto.QuestionResponse, error)
	Submit(ctx context.Context, scheduleID string, req *dto.SubmitEvaluationRequest) error
	Summary(ctx context.Context, scheduleID string) (*dto.EvaluationSummaryResponse, error)
}

type evaluationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEvaluationService 创建 EvaluationService 实例
func NewEvaluationService(repo *repository.Repository, logger *zap.Logger) EvaluationService {
	return &evaluationService{repo: repo, logger: logger}
}

// ────── ListQuestions ──────

func (s *evaluationService) ListQuestions(ctx context.Context) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.Evaluation.ListQuestions(ctx)
	if err != nil {
		s.logger.Error("查询评价题目失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		choices := q.ChoiceList()
		if choices == nil {
			choices = []string{}
		}
		out = append(out, dto.QuestionResponse{
			ID:       q.ID,
			Label:    q.Label,
			Type:     q.Type,
			Choices:  choices,
			Required: q.Required,
		})
	}
	return out, nil
}

// ────── Submit ──────

func (s *evaluationService) Submit(ctx context.Context, scheduleID string, req *dto.SubmitEvaluationRequest) error {
	if _, err := s.repo.Schedule.GetByID(ctx, scheduleID); err != nil {
		return mapNotFound(err, ErrScheduleNotFound)
	}

	questions, err := s.repo.Evaluation.ListQuestions(ctx)
	if err != nil {
		s.logger.Error("查询评价题目失败", zap.Error(err))
		return err
	}

	// 1. 校验全部答案，任何写入之前
	answers, err := normalizeAnswers(questions, req.Answers)
	if err != nil {
		return err
	}

	// 2. 读-改-写，版本冲突时重试
	for attempt := 1; attempt <= maxEvaluationRetries; attempt++ {
		err = s.apply(ctx, scheduleID, req.StudentID, answers)
		if !errors.Is(err, apperrors.ErrOptimisticLock) {
			break
		}
		s.logger.Warn("评价汇总版本冲突，重试",
			zap.String("schedule_id", scheduleID),
			zap.Int("attempt", attempt),
		)
	}
	if errors.Is(err, apperrors.ErrOptimisticLock) {
		return ErrEvaluationConflict
	}
	if err != nil {
		return err
	}

	s.logger.Info("课程评价已提交",
		zap.String("schedule_id", scheduleID),
		zap.String("student_id", req.StudentID),
	)
	return nil
}

func (s *evaluationService) apply(ctx context.Context, scheduleID, studentID string, answers map[string][]string) error {
	result, err := s.repo.Evaluation.GetResult(ctx, scheduleID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询评价汇总失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return err
	}

	if result == nil {
		result = &model.EvaluationResult{
			ScheduleID: scheduleID,
			Tallies:    datatypes.NewJSONType(addTallies(nil, answers)),
			Completed:  datatypes.JSONSlice[string]{studentID},
		}
		if err := s.repo.Evaluation.CreateResult(ctx, result); err != nil {
			// 并发下另一请求先创建了汇总，按冲突重试
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrOptimisticLock
			}
			s.logger.Error("创建评价汇总失败", zap.String("schedule_id", scheduleID), zap.Error(err))
			return err
		}
		return nil
	}

	if result.HasCompleted(studentID) {
		return ErrEvaluationAlreadySubmitted
	}
	result.Tallies = datatypes.NewJSONType(addTallies(result.Tallies.Data(), answers))
	result.Completed = append(result.Completed, studentID)
	return s.repo.Evaluation.UpdateResult(ctx, result)
}

// ────── Summary ──────

func (s *evaluationService) Summary(ctx context.Context, scheduleID string) (*dto.EvaluationSummaryResponse, error) {
	if _, err := s.repo.Schedule.GetByID(ctx, scheduleID); err != nil {
		return nil, mapNotFound(err, ErrScheduleNotFound)
	}

	questions, err := s.repo.Evaluation.ListQuestions(ctx)
	if err != nil {
		s.logger.Error("查询评价题目失败", zap.Error(err))
		return nil, err
	}

	var tallies model.Tallies
	resp := &dto.EvaluationSummaryResponse{
		ScheduleID: scheduleID,
		Questions:  make([]dto.QuestionSummary, 0, len(questions)),
	}
	result, err := s.repo.Evaluation.GetResult(ctx, scheduleID)
	switch {
	case err == nil:
		tallies = result.Tallies.Data()
		resp.CompletedCount = len(result.Completed)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("查询评价汇总失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	for _, q := range questions {
		qs := dto.QuestionSummary{ID: q.ID, Label: q.Label, Type: q.Type}
		counts := tallies[q.ID]
		if q.Type == model.QuestionText {
			qs.Answers = expandAnswers(counts)
		} else {
			qs.Choices = choiceStats(q.ChoiceList(), counts)
		}
		resp.Questions = append(resp.Questions, qs)
	}
	return resp, nil
}

// ── 辅助函数 ──

// normalizeAnswers 去除空白答案并按题型校验
func normalizeAnswers(questions []model.EvaluationQuestion, raw map[string][]string) (map[string][]string, error) {
	out := make(map[string][]string, len(questions))
	var flds []apperrors.FieldError

	for _, q := range questions {
		var vals []string
		for _, v := range raw[q.ID] {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			if q.Required {
				flds = append(flds, apperrors.FieldError{Field: q.ID, Error: "必答题未作答"})
			}
			continue
		}

		switch q.Type {
		case model.QuestionText:
			if len(vals) > 1 {
				flds = append(flds, apperrors.FieldError{Field: q.ID, Error: "文字题只能有一个答案"})
				continue
			}
		case model.QuestionMCQ, model.QuestionCheckbox:
			if q.Type == model.QuestionMCQ && len(vals) > 1 {
				flds = append(flds, apperrors.FieldError{Field: q.ID, Error: "单选题只能选择一项"})
				continue
			}
			if bad := unknownChoice(q.ChoiceList(), vals); bad != "" {
				flds = append(flds, apperrors.FieldError{Field: q.ID, Error: "选项不存在: " + bad})
				continue
			}
			if q.Type == model.QuestionCheckbox {
				vals = uniqueAnswers(vals)
			}
		}
		out[q.ID] = vals
	}

	if len(flds) > 0 {
		return nil, apperrors.NewValidationError(nil, flds...)
	}
	return out, nil
}

// uniqueAnswers 多选题同一选项只计一次，保持勾选顺序
func uniqueAnswers(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := vals[:0]
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func unknownChoice(choices, vals []string) string {
	allowed := make(map[string]bool, len(choices))
	for _, c := range choices {
		allowed[c] = true
	}
	for _, v := range vals {
		if !allowed[v] {
			return v
		}
	}
	return ""
}

// addTallies 在现有计数上累加，返回新的计数表
func addTallies(base model.Tallies, answers map[string][]string) model.Tallies {
	out := make(model.Tallies, len(base)+len(answers))
	for qid, counts := range base {
		cp := make(map[string]int, len(counts))
		for k, v := range counts {
			cp[k] = v
		}
		out[qid] = cp
	}
	for qid, vals := range answers {
		if out[qid] == nil {
			out[qid] = make(map[string]int)
		}
		for _, v := range vals {
			out[qid][v]++
		}
	}
	return out
}

// choiceStats 选项占比：按题目选项顺序，未列出的历史答案追加在后
func choiceStats(choices []string, counts map[string]int) []dto.ChoiceStat {
	total := 0
	for _, n := range counts {
		total += n
	}

	order := append([]string(nil), choices...)
	listed := make(map[string]bool, len(choices))
	for _, c := range choices {
		listed[c] = true
	}
	var extra []string
	for k := range counts {
		if !listed[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	stats := make([]dto.ChoiceStat, 0, len(order))
	for _, c := range order {
		st := dto.ChoiceStat{Choice: c, Count: counts[c]}
		if total > 0 {
			st.Percent = grading.RoundHalfUp(float64(st.Count) / float64(total) * 100)
		}
		stats = append(stats, st)
	}
	return stats
}

// expandAnswers 文字题答案按次数展开，按文本排序
func expandAnswers(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		for i := 0; i < counts[k]; i++ {
			out = append(out, k)
		}
	}
	return out
}
