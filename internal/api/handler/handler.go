package handler

import "ums-obe/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Report     *ReportHandler
	Export     *ExportHandler
	Weight     *WeightHandler
	Score      *ScoreHandler
	Attendance *AttendanceHandler
	Evaluation *EvaluationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export),
		Weight:     NewWeightHandler(svc.Weight),
		Score:      NewScoreHandler(svc.Score),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Evaluation: NewEvaluationHandler(svc.Evaluation),
	}
}
