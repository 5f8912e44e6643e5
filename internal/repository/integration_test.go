//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
	"ums-obe/backend/pkg/database"
	pkgerrors "ums-obe/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=ums_obe_test sslmode=disable TimeZone=Asia/Phnom_Penh"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type testData struct {
	course     *model.Course
	clo        *model.Outcome
	plo        *model.Outcome
	assessment *model.Assessment
	student    *model.Student
	schedule   *model.Schedule
}

// setupTestData 创建一门课程及其 CLO/PLO/考核项/班级/学生/开课，返回清理函数
func setupTestData(t *testing.T) (*testData, func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()
	db := testDB.WithContext(ctx)

	course := &model.Course{Name: fmt.Sprintf("测试课程-%d", suffix), Credit: 3}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	clo := &model.Outcome{Kind: model.OutcomeKindCLO, Number: 1, Statement: "Analyse", CourseID: &course.ID}
	plo := &model.Outcome{Kind: model.OutcomeKindPLO, Number: 1, Statement: "Knowledge"}
	for _, o := range []*model.Outcome{clo, plo} {
		if err := db.Create(o).Error; err != nil {
			t.Fatalf("创建学习成果失败: %v", err)
		}
	}
	assessment := &model.Assessment{Name: fmt.Sprintf("Midterm-%d", suffix)}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("创建考核项失败: %v", err)
	}
	student := &model.Student{Code: fmt.Sprintf("ST%d", suffix), Name: "Sok Dara"}
	class := &model.Class{Name: "CS-A", Students: []model.Student{*student}}
	if err := db.Create(class).Error; err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}
	student = &class.Students[0]
	schedule := &model.Schedule{CourseID: course.ID, ClassID: class.ID}
	if err := db.Create(schedule).Error; err != nil {
		t.Fatalf("创建开课记录失败: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM evaluation_results WHERE schedule_id = ?", schedule.ID)
		testDB.Exec("DELETE FROM attendances WHERE schedule_id = ?", schedule.ID)
		testDB.Exec("DELETE FROM scores WHERE course_id = ?", course.ID)
		testDB.Exec("DELETE FROM weights WHERE clo_id = ?", clo.ID)
		testDB.Exec("DELETE FROM schedules WHERE id = ?", schedule.ID)
		testDB.Exec("DELETE FROM classes WHERE id = ?", class.ID)
		testDB.Exec("DELETE FROM students WHERE id = ?", student.ID)
		testDB.Exec("DELETE FROM assessments WHERE id = ?", assessment.ID)
		testDB.Exec("DELETE FROM outcomes WHERE id IN ?", []string{clo.ID, plo.ID})
		testDB.Exec("DELETE FROM courses WHERE id = ?", course.ID)
	}
	return &testData{
		course:     course,
		clo:        clo,
		plo:        plo,
		assessment: assessment,
		student:    student,
		schedule:   schedule,
	}, cleanup
}

func newWeight(d *testData, percent int) *model.Weight {
	return &model.Weight{
		CourseID:     &d.course.ID,
		CLOID:        d.clo.ID,
		PLOID:        &d.plo.ID,
		AssessmentID: d.assessment.ID,
		Weight:       percent,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Weight Detach
// ═══════════════════════════════════════════════════════════

func TestWeightRepo_DetachKeepsScores(t *testing.T) {
	d, cleanup := setupTestData(t)
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	w := newWeight(d, 100)
	if err := repo.Weight.Create(ctx, w); err != nil {
		t.Fatalf("创建权重失败: %v", err)
	}
	if err := repo.Score.Create(ctx, &model.Score{StudentID: d.student.ID, WeightID: w.ID, CourseID: d.course.ID, Value: 40}); err != nil {
		t.Fatalf("创建成绩失败: %v", err)
	}

	list, err := repo.Weight.ListByCourse(ctx, d.course.ID)
	if err != nil || len(list) != 1 || list[0].Assessment == nil {
		t.Fatalf("期望 1 条预加载考核项的权重，实际: %v %+v", err, list)
	}

	if err := repo.Weight.Detach(ctx, w.ID); err != nil {
		t.Fatalf("解绑失败: %v", err)
	}
	list, _ = repo.Weight.ListByCourse(ctx, d.course.ID)
	if len(list) != 0 {
		t.Errorf("解绑后课程不应再有权重，实际: %d", len(list))
	}

	got, err := repo.Weight.GetByID(ctx, w.ID)
	if err != nil || got.CourseID != nil {
		t.Errorf("期望权重保留且 course_id 为空，实际: %v %+v", err, got)
	}
	scores, _ := repo.Score.ListByCourse(ctx, d.course.ID, nil)
	if len(scores) != 1 {
		t.Errorf("历史成绩应保留，实际: %d", len(scores))
	}

	if err := repo.Weight.Detach(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Score Uniqueness
// ═══════════════════════════════════════════════════════════

func TestScoreRepo_UniqueStudentWeight(t *testing.T) {
	d, cleanup := setupTestData(t)
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	w := newWeight(d, 100)
	if err := repo.Weight.Create(ctx, w); err != nil {
		t.Fatalf("创建权重失败: %v", err)
	}
	first := &model.Score{StudentID: d.student.ID, WeightID: w.ID, CourseID: d.course.ID, Value: 10}
	if err := repo.Score.Create(ctx, first); err != nil {
		t.Fatalf("创建成绩失败: %v", err)
	}

	err := repo.Score.Create(ctx, &model.Score{StudentID: d.student.ID, WeightID: w.ID, CourseID: d.course.ID, Value: 20})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("期望 ErrDuplicatedKey，实际: %v", err)
	}

	if err := repo.Score.UpdateValue(ctx, first.ID, 35.5); err != nil {
		t.Fatalf("更新成绩失败: %v", err)
	}
	got, err := repo.Score.GetByStudentWeight(ctx, d.student.ID, w.ID)
	if err != nil || got.Value != 35.5 {
		t.Errorf("期望 35.5，实际: %v %+v", err, got)
	}
	if got.ID != first.ID {
		t.Errorf("期望原地更新 %s，实际: %s", first.ID, got.ID)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Evaluation Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestEvaluationRepo_OptimisticLock(t *testing.T) {
	d, cleanup := setupTestData(t)
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	result := &model.EvaluationResult{
		ScheduleID: d.schedule.ID,
		Tallies:    datatypes.NewJSONType(model.Tallies{"q1": {"Good": 1}}),
		Completed:  datatypes.JSONSlice[string]{d.student.ID},
	}
	if err := repo.Evaluation.CreateResult(ctx, result); err != nil {
		t.Fatalf("创建评价结果失败: %v", err)
	}

	a, _ := repo.Evaluation.GetResult(ctx, d.schedule.ID)
	b, _ := repo.Evaluation.GetResult(ctx, d.schedule.ID)

	a.Completed = append(a.Completed, "other")
	if err := repo.Evaluation.UpdateResult(ctx, a); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}
	if err := repo.Evaluation.UpdateResult(ctx, b); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("过期版本期望 ErrOptimisticLock，实际: %v", err)
	}

	got, _ := repo.Evaluation.GetResult(ctx, d.schedule.ID)
	if !got.HasCompleted(d.student.ID) || len(got.Completed) != 2 {
		t.Errorf("期望 2 名完成者，实际: %v", got.Completed)
	}
	if got.Tallies.Data()["q1"]["Good"] != 1 {
		t.Errorf("tallies 应保持不变，实际: %v", got.Tallies.Data())
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Attendance & Schedule
// ═══════════════════════════════════════════════════════════

func TestAttendanceRepo_ByDate(t *testing.T) {
	d, cleanup := setupTestData(t)
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec := &model.Attendance{ScheduleID: d.schedule.ID, StudentID: d.student.ID, Date: day, Status: model.AttendanceAbsent}
	if err := repo.Attendance.Create(ctx, rec); err != nil {
		t.Fatalf("创建考勤失败: %v", err)
	}
	if err := repo.Attendance.UpdateStatus(ctx, rec.ID, model.AttendanceLate); err != nil {
		t.Fatalf("更新考勤失败: %v", err)
	}

	list, err := repo.Attendance.ListByScheduleDate(ctx, d.schedule.ID, day)
	if err != nil || len(list) != 1 || list[0].Status != model.AttendanceLate {
		t.Errorf("期望 1 条 L 记录，实际: %v %+v", err, list)
	}
	other, _ := repo.Attendance.ListByScheduleDate(ctx, d.schedule.ID, day.AddDate(0, 0, 1))
	if len(other) != 0 {
		t.Errorf("其他日期不应有记录，实际: %d", len(other))
	}

	students, err := repo.Schedule.ListStudents(ctx, d.schedule.ClassID)
	if err != nil || len(students) != 1 || students[0].ID != d.student.ID {
		t.Errorf("期望班级 1 名学生，实际: %v %+v", err, students)
	}
}
