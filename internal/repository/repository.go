package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Course     CourseRepository
	Outcome    OutcomeRepository
	Weight     WeightRepository
	Schedule   ScheduleRepository
	Score      ScoreRepository
	Attendance AttendanceRepository
	Evaluation EvaluationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Course:     NewCourseRepo(db),
		Outcome:    NewOutcomeRepo(db),
		Weight:     NewWeightRepo(db),
		Schedule:   NewScheduleRepo(db),
		Score:      NewScoreRepo(db),
		Attendance: NewAttendanceRepo(db),
		Evaluation: NewEvaluationRepo(db),
	}
}
