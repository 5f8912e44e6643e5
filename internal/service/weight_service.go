package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
	"ums-obe/backend/internal/weightsetup"
	apperrors "ums-obe/backend/pkg/errors"
)

// ── 权重配置模块业务错误 ──

var (
	ErrWeightSubmitFailed = errors.New("权重提交中断，已完成的改动保留，请重新提交剩余部分")
)

// WeightService 课程权重配置业务接口
//
// 设计说明：
//   - 配置过程在内存会话中完成（weightsetup.Session），提交前不写库
//   - 提交顺序：先逐条解绑被移除的已有权重，再逐条创建新权重
//   - 中途失败不回滚，已完成部分在会话中标记，重新提交只处理剩余部分
type WeightService interface {
	OpenSession(ctx context.Context, courseID string) (*dto.WeightSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.WeightSessionResponse, error)
	AddRow(ctx context.Context, sessionID string, req *dto.AddWeightRowRequest) (*dto.WeightSessionResponse, error)
	SelectPLO(ctx context.Context, sessionID, rowID string, req *dto.SelectPLORequest) (*dto.WeightSessionResponse, error)
	SelectAssessment(ctx context.Context, sessionID, rowID string, req *dto.SelectAssessmentRequest) (*dto.WeightSessionResponse, error)
	SetPercent(ctx context.Context, sessionID, rowID string, req *dto.SetPercentRequest) (*dto.WeightSessionResponse, error)
	RemoveRow(ctx context.Context, sessionID, rowID string) (*dto.WeightSessionResponse, error)
	Submit(ctx context.Context, sessionID string) (*dto.SubmitWeightsResponse, error)
}

type weightService struct {
	repo     *repository.Repository
	sessions *weightsetup.Registry
	cache    *reportCache
	logger   *zap.Logger
}

// NewWeightService 创建 WeightService 实例
func NewWeightService(repo *repository.Repository, sessions *weightsetup.Registry, cache *reportCache, logger *zap.Logger) WeightService {
	return &weightService{repo: repo, sessions: sessions, cache: cache, logger: logger}
}

// ────── OpenSession ──────

func (s *weightService) OpenSession(ctx context.Context, courseID string) (*dto.WeightSessionResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	clos, err := s.repo.Outcome.ListCLOsByCourse(ctx, course.ID)
	if err != nil {
		s.logger.Error("查询课程 CLO 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	plos, err := s.repo.Outcome.ListPLOs(ctx, course.ProgramID)
	if err != nil {
		s.logger.Error("查询 PLO 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	assessments, err := s.repo.Outcome.ListAssessments(ctx)
	if err != nil {
		s.logger.Error("查询考核项失败", zap.Error(err))
		return nil, err
	}
	weights, err := s.repo.Weight.ListByCourse(ctx, course.ID)
	if err != nil {
		s.logger.Error("查询课程权重失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	catalog := weightsetup.Catalog{
		CLOs:        outcomeOptions("CLO", clos),
		PLOs:        outcomeOptions("PLO", plos),
		Assessments: make([]weightsetup.Option, 0, len(assessments)),
	}
	for _, a := range assessments {
		catalog.Assessments = append(catalog.Assessments, weightsetup.Option{ID: a.ID, Label: a.Name})
	}

	existing := make([]weightsetup.Row, 0, len(weights))
	for _, w := range weights {
		row := weightsetup.Row{
			ID:           w.ID,
			CLOID:        w.CLOID,
			AssessmentID: w.AssessmentID,
			Percent:      w.Weight,
		}
		if w.PLOID != nil {
			row.PLOID = *w.PLOID
		}
		existing = append(existing, row)
	}

	sess := weightsetup.NewSession(course.ID, existing, catalog)
	s.sessions.Put(sess)

	s.logger.Info("打开权重配置会话",
		zap.String("session_id", sess.ID),
		zap.String("course_id", course.ID),
		zap.Int("existing", len(existing)),
	)
	return s.view(sess)
}

// ────── GetSession ──────

func (s *weightService) GetSession(_ context.Context, sessionID string) (*dto.WeightSessionResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess)
}

// ────── 行操作 ──────

func (s *weightService) AddRow(_ context.Context, sessionID string, req *dto.AddWeightRowRequest) (*dto.WeightSessionResponse, error) {
	return s.mutate(sessionID, func(sess *weightsetup.Session) error {
		_, err := sess.AddRow(req.CLOID)
		return err
	})
}

func (s *weightService) SelectPLO(_ context.Context, sessionID, rowID string, req *dto.SelectPLORequest) (*dto.WeightSessionResponse, error) {
	return s.mutate(sessionID, func(sess *weightsetup.Session) error {
		_, err := sess.SelectPLO(rowID, req.PLOID)
		return err
	})
}

func (s *weightService) SelectAssessment(_ context.Context, sessionID, rowID string, req *dto.SelectAssessmentRequest) (*dto.WeightSessionResponse, error) {
	return s.mutate(sessionID, func(sess *weightsetup.Session) error {
		_, err := sess.SelectAssessment(rowID, req.AssessmentID)
		return err
	})
}

func (s *weightService) SetPercent(_ context.Context, sessionID, rowID string, req *dto.SetPercentRequest) (*dto.WeightSessionResponse, error) {
	return s.mutate(sessionID, func(sess *weightsetup.Session) error {
		if req.Percent == nil {
			return apperrors.Invalid("percent", "百分比不能为空")
		}
		_, err := sess.SetPercent(rowID, *req.Percent)
		return err
	})
}

func (s *weightService) RemoveRow(_ context.Context, sessionID, rowID string) (*dto.WeightSessionResponse, error) {
	return s.mutate(sessionID, func(sess *weightsetup.Session) error {
		return sess.Remove(rowID)
	})
}

// ────── Submit ──────

func (s *weightService) Submit(ctx context.Context, sessionID string) (*dto.SubmitWeightsResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	changes, err := sess.Submit()
	if err != nil {
		return nil, err
	}
	defer sess.FinishSubmit()

	resp := &dto.SubmitWeightsResponse{
		CourseID: changes.CourseID,
		Created:  []string{},
		Detached: []string{},
	}
	// 任一写入发生后都需要清除报表缓存
	defer func() {
		if len(resp.Created) > 0 || len(resp.Detached) > 0 {
			s.cache.invalidate(ctx, changes.CourseID)
		}
	}()

	// 1. 解绑被移除的已有权重
	for _, id := range changes.Detach {
		if err := s.repo.Weight.Detach(ctx, id); err != nil {
			s.logger.Error("解绑权重失败",
				zap.String("course_id", changes.CourseID),
				zap.String("weight_id", id),
				zap.Error(err),
			)
			return resp, fmt.Errorf("%w: %v", ErrWeightSubmitFailed, err)
		}
		sess.MarkDetached(id)
		resp.Detached = append(resp.Detached, id)
	}

	// 2. 逐条创建新权重，每条拿到 ID 后再处理下一条
	courseID := changes.CourseID
	for _, row := range changes.Create {
		w := &model.Weight{
			CourseID:     &courseID,
			CLOID:        row.CLOID,
			AssessmentID: row.AssessmentID,
			Weight:       row.Percent,
		}
		if row.PLOID != "" {
			ploID := row.PLOID
			w.PLOID = &ploID
		}
		if err := s.repo.Weight.Create(ctx, w); err != nil {
			s.logger.Error("创建权重失败",
				zap.String("course_id", courseID),
				zap.String("row_id", row.ID),
				zap.Error(err),
			)
			return resp, fmt.Errorf("%w: %v", ErrWeightSubmitFailed, err)
		}
		if err := sess.MarkCreated(row.ID, w.ID); err != nil {
			return resp, err
		}
		resp.Created = append(resp.Created, w.ID)
	}

	s.sessions.Close(sessionID)
	s.logger.Info("权重配置已提交",
		zap.String("course_id", courseID),
		zap.Int("created", len(resp.Created)),
		zap.Int("detached", len(resp.Detached)),
	)
	return resp, nil
}

// ── 辅助函数 ──

func (s *weightService) mutate(sessionID string, fn func(*weightsetup.Session) error) (*dto.WeightSessionResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	return s.view(sess)
}

func (s *weightService) view(sess *weightsetup.Session) (*dto.WeightSessionResponse, error) {
	rows := sess.Rows()
	resp := &dto.WeightSessionResponse{
		SessionID:     sess.ID,
		CourseID:      sess.CourseID,
		CLOs:          sess.Catalog().CLOs,
		Rows:          make([]dto.WeightRowResponse, 0, len(rows)),
		Total:         sess.Total(),
		Armed:         sess.Armed(),
		PendingDetach: sess.PendingDetach(),
	}
	for _, r := range rows {
		plos, err := sess.PLOOptions(r.ID)
		if err != nil {
			return nil, err
		}
		assessments, err := sess.AssessmentOptions(r.ID)
		if err != nil {
			return nil, err
		}
		resp.Rows = append(resp.Rows, dto.WeightRowResponse{
			ID:                r.ID,
			Persisted:         r.Persisted,
			CLOID:             r.CLOID,
			PLOID:             r.PLOID,
			AssessmentID:      r.AssessmentID,
			Percent:           r.Percent,
			State:             r.State().String(),
			PLOOptions:        plos,
			AssessmentOptions: assessments,
		})
	}
	return resp, nil
}

func outcomeOptions(prefix string, outcomes []model.Outcome) []weightsetup.Option {
	opts := make([]weightsetup.Option, 0, len(outcomes))
	for _, o := range outcomes {
		opts = append(opts, weightsetup.Option{
			ID:     o.ID,
			Label:  fmt.Sprintf("%s %d", prefix, o.Number),
			Number: o.Number,
		})
	}
	return opts
}
