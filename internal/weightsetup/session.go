// Package weightsetup 课程权重配置会话
//
// 会话在内存中累积一门课程的权重改动（新增行、移除行、选择 PLO/考核项、修改百分比），
// 提交时先校验总和，再经过两次确认，最后产出一份待执行的变更清单。
package weightsetup

import (
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ums-obe/backend/internal/grading"
	apperrors "ums-obe/backend/pkg/errors"
)

// DefaultPercent 新增行的默认百分比
const DefaultPercent = 10

var (
	ErrRowNotFound          = errors.New("权重行不存在")
	ErrRowLocked            = errors.New("权重行已锁定，不可修改")
	ErrPLORequired          = errors.New("请先选择 PLO")
	ErrPairingTaken         = errors.New("同一 CLO 下该 PLO 与考核项的组合已存在")
	ErrUnknownOption        = errors.New("无效的选项")
	ErrRowIncomplete        = errors.New("存在未选择考核项的权重行")
	ErrConfirmationRequired = errors.New("提交后将无法再修改，请再次提交以确认")
	ErrSubmitInProgress     = errors.New("权重配置正在提交，请稍候")
)

var validate = validator.New()

// ── 行状态 ──

// State 行的配置状态
type State int

const (
	Unconfigured State = iota
	PartiallyConfigured
	Locked
)

func (s State) String() string {
	switch s {
	case PartiallyConfigured:
		return "partial"
	case Locked:
		return "locked"
	default:
		return "unconfigured"
	}
}

// Row 权重行；Persisted 为 false 时 ID 为临时 ID
type Row struct {
	ID           string `json:"id"`
	Persisted    bool   `json:"persisted"`
	CLOID        string `json:"clo_id"        validate:"required"`
	PLOID        string `json:"plo_id"`
	AssessmentID string `json:"assessment_id"`
	Percent      int    `json:"percent"       validate:"gte=0,lte=100"`
}

// State 已持久化的行、或 PLO 与考核项均已选定的行处于锁定状态
func (r Row) State() State {
	switch {
	case r.Persisted, r.PLOID != "" && r.AssessmentID != "":
		return Locked
	case r.PLOID != "":
		return PartiallyConfigured
	default:
		return Unconfigured
	}
}

// Option 下拉选项
type Option struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Number int    `json:"number,omitempty"`
}

// Catalog 会话可选的 CLO / PLO / 考核项
type Catalog struct {
	CLOs        []Option
	PLOs        []Option
	Assessments []Option
}

// PendingChanges 提交时产出的变更清单：先解绑，再逐条创建
type PendingChanges struct {
	CourseID string
	Create   []Row
	Detach   []string
}

// ── 会话 ──

// Session 单门课程的权重配置会话，方法并发安全
type Session struct {
	mu sync.Mutex

	ID       string
	CourseID string

	catalog   Catalog
	rows      []*Row
	detach    []string
	armed     bool
	// submitting 变更清单已交出、尚未 FinishSubmit
	submitting bool
	touchedAt  time.Time
}

// NewSession 以已持久化的权重作为初始行创建会话
func NewSession(courseID string, existing []Row, catalog Catalog) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		catalog:   catalog,
		touchedAt: time.Now(),
	}
	for _, r := range existing {
		row := r
		row.Persisted = true
		s.rows = append(s.rows, &row)
	}
	return s
}

// AddRow 为指定 CLO 新增一行，默认 10%
func (s *Session) AddRow(cloID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasOption(s.catalog.CLOs, cloID) {
		return Row{}, ErrUnknownOption
	}
	r := &Row{ID: uuid.NewString(), CLOID: cloID, Percent: DefaultPercent}
	s.rows = append(s.rows, r)
	s.touch()
	return *r, nil
}

// Remove 移除一行；已持久化的行记入待解绑列表
func (s *Session) Remove(rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(rowID)
	if i < 0 {
		return ErrRowNotFound
	}
	if s.rows[i].Persisted {
		s.detach = append(s.detach, s.rows[i].ID)
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	s.touch()
	return nil
}

// SelectPLO 为未锁定的行选择 PLO
func (s *Session) SelectPLO(rowID, ploID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.editable(rowID)
	if err != nil {
		return Row{}, err
	}
	if !hasOption(s.catalog.PLOs, ploID) {
		return Row{}, ErrUnknownOption
	}
	if r.AssessmentID != "" && s.pairingTaken(r, ploID, r.AssessmentID) {
		return Row{}, ErrPairingTaken
	}
	r.PLOID = ploID
	s.touch()
	return *r, nil
}

// SelectAssessment 为已选 PLO 的行选择考核项；选定后该行锁定
func (s *Session) SelectAssessment(rowID, assessmentID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.editable(rowID)
	if err != nil {
		return Row{}, err
	}
	if r.PLOID == "" {
		return Row{}, ErrPLORequired
	}
	if !hasOption(s.catalog.Assessments, assessmentID) {
		return Row{}, ErrUnknownOption
	}
	if s.pairingTaken(r, r.PLOID, assessmentID) {
		return Row{}, ErrPairingTaken
	}
	r.AssessmentID = assessmentID
	s.touch()
	return *r, nil
}

// SetPercent 修改未锁定行的百分比
func (s *Session) SetPercent(rowID string, percent int) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.editable(rowID)
	if err != nil {
		return Row{}, err
	}
	next := *r
	next.Percent = percent
	if err := validate.Struct(next); err != nil {
		return Row{}, apperrors.FromValidator(err)
	}
	r.Percent = percent
	s.touch()
	return *r, nil
}

// PLOOptions 某行可选的 PLO：已选考核项时排除会与同 CLO 兄弟行重复的组合
func (s *Session) PLOOptions(rowID string) ([]Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(rowID)
	if i < 0 {
		return nil, ErrRowNotFound
	}
	r := s.rows[i]
	if r.AssessmentID == "" {
		return append([]Option(nil), s.catalog.PLOs...), nil
	}
	out := make([]Option, 0, len(s.catalog.PLOs))
	for _, o := range s.catalog.PLOs {
		if !s.pairingTaken(r, o.ID, r.AssessmentID) {
			out = append(out, o)
		}
	}
	return out, nil
}

// AssessmentOptions 某行可选的考核项：未选 PLO 时为空；排除同 CLO 同 PLO 兄弟行已用的考核项
func (s *Session) AssessmentOptions(rowID string) ([]Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(rowID)
	if i < 0 {
		return nil, ErrRowNotFound
	}
	r := s.rows[i]
	if r.PLOID == "" {
		return []Option{}, nil
	}
	out := make([]Option, 0, len(s.catalog.Assessments))
	for _, o := range s.catalog.Assessments {
		if !s.pairingTaken(r, r.PLOID, o.ID) {
			out = append(out, o)
		}
	}
	return out, nil
}

// Rows 当前全部行的快照
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = *r
	}
	return out
}

// Catalog 会话的可选项
func (s *Session) Catalog() Catalog { return s.catalog }

// Total 当前百分比总和
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

// Armed 是否已完成第一次提交确认
func (s *Session) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// PendingDetach 待解绑的已持久化权重 ID
func (s *Session) PendingDetach() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.detach...)
}

// Submit 提交
//
// 总和不为 100 时直接返回校验错误，不改变确认状态；
// 第一次有效提交仅置位确认状态并返回 ErrConfirmationRequired；
// 之后的提交返回变更清单，并在 FinishSubmit 之前拒绝新的提交。
func (s *Session) Submit() (*PendingChanges, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return nil, ErrSubmitInProgress
	}

	percents := make([]int, len(s.rows))
	for i, r := range s.rows {
		percents[i] = r.Percent
	}
	if err := grading.ValidateWeightTotal(percents); err != nil {
		return nil, err
	}

	var create []Row
	for _, r := range s.rows {
		if r.Persisted {
			continue
		}
		if r.AssessmentID == "" {
			return nil, apperrors.NewValidationError(ErrRowIncomplete,
				apperrors.FieldError{Field: "assessment_id", Error: r.ID})
		}
		create = append(create, *r)
	}

	if !s.armed {
		s.armed = true
		s.touch()
		return nil, ErrConfirmationRequired
	}

	s.submitting = true
	s.touch()
	return &PendingChanges{
		CourseID: s.CourseID,
		Create:   create,
		Detach:   append([]string(nil), s.detach...),
	}, nil
}

// FinishSubmit 变更清单执行结束（无论成败），允许再次提交
func (s *Session) FinishSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// MarkDetached 解绑成功后从待解绑列表移除
func (s *Session) MarkDetached(weightID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.detach {
		if id == weightID {
			s.detach = append(s.detach[:i], s.detach[i+1:]...)
			return
		}
	}
}

// MarkCreated 用持久化后的 ID 替换临时行
func (s *Session) MarkCreated(tempID, weightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(tempID)
	if i < 0 {
		return ErrRowNotFound
	}
	s.rows[i].ID = weightID
	s.rows[i].Persisted = true
	return nil
}

// ── 内部辅助 ──

func (s *Session) total() int {
	total := 0
	for _, r := range s.rows {
		total += r.Percent
	}
	return total
}

func (s *Session) indexOf(rowID string) int {
	for i, r := range s.rows {
		if r.ID == rowID {
			return i
		}
	}
	return -1
}

func (s *Session) editable(rowID string) (*Row, error) {
	i := s.indexOf(rowID)
	if i < 0 {
		return nil, ErrRowNotFound
	}
	r := s.rows[i]
	if r.State() == Locked {
		return nil, ErrRowLocked
	}
	return r, nil
}

// pairingTaken 同 CLO 下是否有其他行已使用 (ploID, assessmentID) 组合
func (s *Session) pairingTaken(self *Row, ploID, assessmentID string) bool {
	for _, o := range s.rows {
		if o == self || o.CLOID != self.CLOID {
			continue
		}
		if o.PLOID == ploID && o.AssessmentID == assessmentID {
			return true
		}
	}
	return false
}

func (s *Session) touch() { s.touchedAt = time.Now() }

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
