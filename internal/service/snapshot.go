package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/grading"
	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
)

// courseSnapshot 一次开课的只读快照：课程、权重、学生、成绩
type courseSnapshot struct {
	schedule *model.Schedule
	course   *model.Course
	weights  []model.Weight
	students []model.Student
	scores   []model.Score
}

func loadSnapshot(ctx context.Context, repo *repository.Repository, scheduleID string) (*courseSnapshot, error) {
	schedule, err := repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	course := schedule.Course
	if course == nil {
		course, err = repo.Course.GetByID(ctx, schedule.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
	}

	weights, err := repo.Weight.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	students, err := repo.Schedule.ListStudents(ctx, schedule.ClassID)
	if err != nil {
		return nil, err
	}

	var scores []model.Score
	if len(students) > 0 {
		ids := make([]string, len(students))
		for i, st := range students {
			ids[i] = st.ID
		}
		scores, err = repo.Score.ListByCourse(ctx, course.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	return &courseSnapshot{
		schedule: schedule,
		course:   course,
		weights:  weights,
		students: students,
		scores:   scores,
	}, nil
}

// passThreshold 专业及格线，未设置时使用默认值
func (s *courseSnapshot) passThreshold(fallback float64) float64 {
	if s.course.Program != nil && s.course.Program.PassThreshold != nil {
		return *s.course.Program.PassThreshold
	}
	return fallback
}

func (s *courseSnapshot) info(threshold float64) dto.ScheduleInfo {
	info := dto.ScheduleInfo{
		ID:            s.schedule.ID,
		CourseID:      s.course.ID,
		CourseName:    s.course.Name,
		Credit:        s.course.Credit,
		PassThreshold: threshold,
	}
	if s.schedule.Class != nil {
		info.ClassName = s.schedule.Class.Name
	}
	return info
}

// gradingInput 转换为引擎输入；缺少 PLO 的权重以零成果代替
func (s *courseSnapshot) gradingInput(threshold float64) grading.Input {
	weights := make([]grading.Weight, len(s.weights))
	for i, w := range s.weights {
		weights[i] = toGradingWeight(w)
	}

	byStudent := make(map[string][]grading.Score, len(s.students))
	for _, sc := range s.scores {
		byStudent[sc.StudentID] = append(byStudent[sc.StudentID], grading.Score{
			ID:        sc.ID,
			WeightID:  sc.WeightID,
			StudentID: sc.StudentID,
			Value:     sc.Value,
			CreatedAt: sc.CreatedAt,
		})
	}

	students := make([]grading.Student, len(s.students))
	for i, st := range s.students {
		students[i] = grading.Student{
			ID:     st.ID,
			Code:   st.Code,
			Name:   st.DisplayName(),
			Scores: byStudent[st.ID],
		}
	}

	return grading.Input{
		Students:      students,
		Weights:       weights,
		PassThreshold: threshold,
		Credit:        s.course.Credit,
	}
}

func toGradingWeight(w model.Weight) grading.Weight {
	gw := grading.Weight{
		ID:      w.ID,
		CLO:     toGradingOutcome(w.CLO),
		PLO:     toGradingOutcome(w.PLO),
		Percent: w.Weight,
	}
	if w.CLO == nil {
		gw.CLO = grading.Outcome{ID: w.CLOID}
	}
	if w.Assessment != nil {
		gw.Assessment = grading.Assessment{ID: w.Assessment.ID, Name: w.Assessment.Name}
	} else {
		gw.Assessment = grading.Assessment{ID: w.AssessmentID}
	}
	return gw
}

// toGradingOutcome 缺失的成果替换为零成果
func toGradingOutcome(o *model.Outcome) grading.Outcome {
	var g *grading.Outcome
	if o != nil {
		g = &grading.Outcome{ID: o.ID, Number: o.Number, Statement: o.Statement}
	}
	return grading.OutcomeOrZero(g)
}
