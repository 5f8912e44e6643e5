package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
	"ums-obe/backend/pkg/redis"
	apperrors "ums-obe/backend/pkg/errors"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock OutcomeRepository ──

type mockOutcomeRepo struct {
	outcomes    []model.Outcome
	assessments []model.Assessment
}

func (m *mockOutcomeRepo) ListCLOsByCourse(_ context.Context, courseID string) ([]model.Outcome, error) {
	var out []model.Outcome
	for _, o := range m.outcomes {
		if o.Kind == model.OutcomeKindCLO && o.CourseID != nil && *o.CourseID == courseID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOutcomeRepo) ListPLOs(_ context.Context, programID *string) ([]model.Outcome, error) {
	var specific, defaults []model.Outcome
	for _, o := range m.outcomes {
		if o.Kind != model.OutcomeKindPLO {
			continue
		}
		switch {
		case o.ProgramID == nil:
			defaults = append(defaults, o)
		case programID != nil && *o.ProgramID == *programID:
			specific = append(specific, o)
		}
	}
	if len(specific) > 0 {
		return specific, nil
	}
	return defaults, nil
}

func (m *mockOutcomeRepo) ListAssessments(_ context.Context) ([]model.Assessment, error) {
	return m.assessments, nil
}

// ── Mock WeightRepository ──

type mockWeightRepo struct {
	mu      sync.Mutex
	weights map[string]*model.Weight
	order   []string
	calls   []string
	seq     int

	// failCreate 非 nil 时 Create 返回该错误
	failCreate error
	failDetach error
	// beforeCreate 非 nil 时在 Create 写入前调用（不持锁）
	beforeCreate func()
}

func (m *mockWeightRepo) ListByCourse(_ context.Context, courseID string) ([]model.Weight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Weight
	for _, id := range m.order {
		w := m.weights[id]
		if w.CourseID != nil && *w.CourseID == courseID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *mockWeightRepo) GetByID(_ context.Context, id string) (*model.Weight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.weights[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeightRepo) Create(_ context.Context, w *model.Weight) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate != nil {
		return m.failCreate
	}
	m.seq++
	w.ID = fmt.Sprintf("w-new-%d", m.seq)
	cp := *w
	m.weights[w.ID] = &cp
	m.order = append(m.order, w.ID)
	m.calls = append(m.calls, "create:"+w.ID)
	return nil
}

func (m *mockWeightRepo) Detach(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDetach != nil {
		return m.failDetach
	}
	w, ok := m.weights[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.CourseID = nil
	m.calls = append(m.calls, "detach:"+id)
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	students  map[string][]model.Student // classID → students
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListStudents(_ context.Context, classID string) ([]model.Student, error) {
	return m.students[classID], nil
}

// ── Mock ScoreRepository ──

type mockScoreRepo struct {
	mu      sync.Mutex
	scores  map[string]*model.Score
	order   []string
	seq     int
	creates int
	updates int
	now     time.Time

	// staleLookups 次查询返回不存在，模拟并发的首次录入
	staleLookups int
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{scores: make(map[string]*model.Score), now: time.Now()}
}

func (m *mockScoreRepo) ListByCourse(_ context.Context, courseID string, studentIDs []string) ([]model.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		allowed[id] = true
	}
	var out []model.Score
	for _, id := range m.order {
		s := m.scores[id]
		if s.CourseID != courseID {
			continue
		}
		if len(studentIDs) > 0 && !allowed[s.StudentID] {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockScoreRepo) GetByStudentWeight(_ context.Context, studentID, weightID string) (*model.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.staleLookups > 0 {
		m.staleLookups--
		return nil, gorm.ErrRecordNotFound
	}
	if s := m.find(studentID, weightID); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScoreRepo) find(studentID, weightID string) *model.Score {
	for _, id := range m.order {
		s := m.scores[id]
		if s.StudentID == studentID && s.WeightID == weightID {
			return s
		}
	}
	return nil
}

func (m *mockScoreRepo) Create(_ context.Context, s *model.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.find(s.StudentID, s.WeightID) != nil {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	s.ID = fmt.Sprintf("sc-%d", m.seq)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now
	}
	cp := *s
	m.scores[s.ID] = &cp
	m.order = append(m.order, s.ID)
	m.creates++
	return nil
}

func (m *mockScoreRepo) UpdateValue(_ context.Context, id string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Value = value
	m.updates++
	return nil
}

// put 直接写入一条成绩（测试准备数据用）
func (m *mockScoreRepo) put(studentID, weightID, courseID string, value float64, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := fmt.Sprintf("sc-%d", m.seq)
	m.scores[id] = &model.Score{
		ID:        id,
		StudentID: studentID,
		WeightID:  weightID,
		CourseID:  courseID,
		Value:     value,
		CreatedAt: createdAt,
	}
	m.order = append(m.order, id)
}

func (m *mockScoreRepo) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates + m.updates
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []*model.Attendance
	seq     int
	creates int
	updates int
}

func (m *mockAttendanceRepo) ListByScheduleDate(_ context.Context, scheduleID string, date time.Time) ([]model.Attendance, error) {
	var out []model.Attendance
	for _, r := range m.records {
		if r.ScheduleID == scheduleID && r.Date.Equal(date) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	m.seq++
	a.ID = fmt.Sprintf("att-%d", m.seq)
	cp := *a
	m.records = append(m.records, &cp)
	m.creates++
	return nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, id, status string) error {
	for _, r := range m.records {
		if r.ID == id {
			r.Status = status
			m.updates++
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock EvaluationRepository ──

type mockEvaluationRepo struct {
	questions []model.EvaluationQuestion
	results   map[string]*model.EvaluationResult
	seq       int

	// conflicts UpdateResult 先返回若干次乐观锁冲突
	conflicts int
}

func (m *mockEvaluationRepo) ListQuestions(_ context.Context) ([]model.EvaluationQuestion, error) {
	return m.questions, nil
}

func (m *mockEvaluationRepo) GetResult(_ context.Context, scheduleID string) (*model.EvaluationResult, error) {
	if r, ok := m.results[scheduleID]; ok {
		cp := *r
		cp.Completed = append(cp.Completed[:0:0], r.Completed...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEvaluationRepo) CreateResult(_ context.Context, r *model.EvaluationResult) error {
	if _, ok := m.results[r.ScheduleID]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	r.ID = fmt.Sprintf("er-%d", m.seq)
	cp := *r
	m.results[r.ScheduleID] = &cp
	return nil
}

func (m *mockEvaluationRepo) UpdateResult(_ context.Context, r *model.EvaluationResult) error {
	if m.conflicts > 0 {
		m.conflicts--
		return apperrors.ErrOptimisticLock
	}
	cur, ok := m.results[r.ScheduleID]
	if !ok || cur.Version != r.Version {
		return apperrors.ErrOptimisticLock
	}
	r.Version++
	cp := *r
	m.results[r.ScheduleID] = &cp
	return nil
}

// ── Fake 报表缓存 ──

type fakeReportCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	hits    int
	deletes int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{data: make(map[string][]byte)}
}

func (f *fakeReportCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	f.hits++
	return b, nil
}

func (f *fakeReportCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeReportCache) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
			n++
		}
	}
	f.deletes++
	return n, nil
}

// ── 测试数据 ──

// fixture 一门 3 学分课程：
//
//	w1: CLO 1 / PLO 1 / Midterm 20
//	w2: CLO 1 / PLO 1 / Final   20
//	w3: CLO 2 / PLO 2 / Final   60
//
// 班级 class-1 三名学生 s1, s2, s3；开课 sch-1。
type fixture struct {
	repo       *repository.Repository
	program    *model.Program
	course     *model.Course
	courses    *mockCourseRepo
	outcomes   *mockOutcomeRepo
	weights    *mockWeightRepo
	schedules  *mockScheduleRepo
	scores     *mockScoreRepo
	attendance *mockAttendanceRepo
	evaluation *mockEvaluationRepo
}

func strPtr(s string) *string { return &s }

func newFixture() *fixture {
	program := &model.Program{ID: "prog-1", Name: "Computer Science"}
	course := &model.Course{ID: "course-1", Name: "Data Structures", Credit: 3, ProgramID: strPtr(program.ID), Program: program}

	clo1 := model.Outcome{ID: "clo-1", Kind: model.OutcomeKindCLO, Number: 1, Statement: "Analyse", CourseID: strPtr(course.ID)}
	clo2 := model.Outcome{ID: "clo-2", Kind: model.OutcomeKindCLO, Number: 2, Statement: "Implement", CourseID: strPtr(course.ID)}
	plo1 := model.Outcome{ID: "plo-1", Kind: model.OutcomeKindPLO, Number: 1, Statement: "Knowledge"}
	plo2 := model.Outcome{ID: "plo-2", Kind: model.OutcomeKindPLO, Number: 2, Statement: "Skills"}
	mid := model.Assessment{ID: "as-mid", Name: "Midterm"}
	final := model.Assessment{ID: "as-final", Name: "Final"}
	quiz := model.Assessment{ID: "as-quiz", Name: "Quiz"}

	weight := func(id string, clo, plo model.Outcome, a model.Assessment, pct int) *model.Weight {
		return &model.Weight{
			ID:           id,
			CourseID:     strPtr(course.ID),
			CLOID:        clo.ID,
			PLOID:        strPtr(plo.ID),
			AssessmentID: a.ID,
			Weight:       pct,
			CLO:          &clo,
			PLO:          &plo,
			Assessment:   &a,
		}
	}
	weights := &mockWeightRepo{
		weights: map[string]*model.Weight{
			"w1": weight("w1", clo1, plo1, mid, 20),
			"w2": weight("w2", clo1, plo1, final, 20),
			"w3": weight("w3", clo2, plo2, final, 60),
		},
		order: []string{"w1", "w2", "w3"},
	}

	class := &model.Class{ID: "class-1", Name: "CS-A"}
	schedules := &mockScheduleRepo{
		schedules: map[string]*model.Schedule{
			"sch-1": {ID: "sch-1", CourseID: course.ID, ClassID: class.ID, Course: course, Class: class},
		},
		students: map[string][]model.Student{
			class.ID: {
				{ID: "s1", Code: "ST001", Name: "Sok Dara"},
				{ID: "s2", Code: "ST002", Name: "Chan Lina", KhmerName: "ចាន់ លីណា"},
				{ID: "s3", Code: "ST003", Name: "Kim Visal"},
			},
		},
	}

	f := &fixture{
		program:    program,
		course:     course,
		courses:    &mockCourseRepo{courses: map[string]*model.Course{course.ID: course}},
		outcomes:   &mockOutcomeRepo{outcomes: []model.Outcome{clo1, clo2, plo1, plo2}, assessments: []model.Assessment{mid, final, quiz}},
		weights:    weights,
		schedules:  schedules,
		scores:     newMockScoreRepo(),
		attendance: &mockAttendanceRepo{},
		evaluation: &mockEvaluationRepo{results: make(map[string]*model.EvaluationResult)},
	}
	f.repo = &repository.Repository{
		Course:     f.courses,
		Outcome:    f.outcomes,
		Weight:     f.weights,
		Schedule:   f.schedules,
		Score:      f.scores,
		Attendance: f.attendance,
		Evaluation: f.evaluation,
	}
	return f
}

var errWriteFailed = errors.New("写入失败")
