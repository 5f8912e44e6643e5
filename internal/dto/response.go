package dto

import "ums-obe/backend/internal/grading"

// ── 报表模块响应 ──

// OutcomeResponse 学习成果
type OutcomeResponse struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Statement string `json:"statement"`
}

// NewOutcomeResponse 从引擎类型转换
func NewOutcomeResponse(o grading.Outcome) OutcomeResponse {
	return OutcomeResponse{ID: o.ID, Number: o.Number, Statement: o.Statement}
}

// ScheduleInfo 报表抬头信息
type ScheduleInfo struct {
	ID            string  `json:"id"`
	CourseID      string  `json:"course_id"`
	CourseName    string  `json:"course_name"`
	ClassName     string  `json:"class_name"`
	Credit        float64 `json:"credit"`
	PassThreshold float64 `json:"pass_threshold"`
}

// AssessmentColumn CLO 报表中的考核项子桶列
type AssessmentColumn struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// CLOReportResponse 单个 CLO 明细
type CLOReportResponse struct {
	Outcome     OutcomeResponse    `json:"outcome"`
	Capacity    int                `json:"capacity"`
	Assessments []AssessmentColumn `json:"assessments"`
	Rows        []grading.CLORow   `json:"rows"`
	Stats       grading.Stats      `json:"stats"`
	Achieved    bool               `json:"achieved"`
}

// OutcomeColumn 总评表中的 CLO 列
type OutcomeColumn struct {
	Outcome  OutcomeResponse `json:"outcome"`
	Capacity int             `json:"capacity"`
}

// SummaryResponse 课程总评
type SummaryResponse struct {
	CLOs     []OutcomeColumn      `json:"clos"`
	Capacity int                  `json:"capacity"`
	Rows     []grading.SummaryRow `json:"rows"`
	Stats    grading.Stats        `json:"stats"`
}

// PLOColumn PLO 报表中的 CLO 列
type PLOColumn struct {
	Outcome      OutcomeResponse `json:"outcome"`
	Capacity     int             `json:"capacity"`
	CreditWeight float64         `json:"credit_weight"`
}

// PLOReportResponse 单个 PLO 报表
type PLOReportResponse struct {
	Outcome      OutcomeResponse  `json:"outcome"`
	Capacity     int              `json:"capacity"`
	CreditWeight float64          `json:"credit_weight"`
	CLOs         []PLOColumn      `json:"clos"`
	Rows         []grading.PLORow `json:"rows"`
	Stats        grading.Stats    `json:"stats"`
	Achieved     bool             `json:"achieved"`
}

// ReportResponse 完整报表
type ReportResponse struct {
	Schedule ScheduleInfo        `json:"schedule"`
	Gradable bool                `json:"gradable"`
	CLOs     []CLOReportResponse `json:"clos"`
	Summary  SummaryResponse     `json:"summary"`
	PLOs     []PLOReportResponse `json:"plos"`
}

// NewReportResponse 将引擎输出转换为响应结构
func NewReportResponse(info ScheduleInfo, rep grading.Report) *ReportResponse {
	resp := &ReportResponse{
		Schedule: info,
		Gradable: rep.Gradable,
		CLOs:     make([]CLOReportResponse, 0, len(rep.CLOs)),
		PLOs:     make([]PLOReportResponse, 0, len(rep.PLOs)),
	}

	for _, c := range rep.CLOs {
		cols := make([]AssessmentColumn, 0, len(c.Assessments))
		for _, a := range c.Assessments {
			cols = append(cols, AssessmentColumn{ID: a.Assessment.ID, Name: a.Assessment.Name, Capacity: a.Capacity})
		}
		resp.CLOs = append(resp.CLOs, CLOReportResponse{
			Outcome:     NewOutcomeResponse(c.Outcome),
			Capacity:    c.Capacity,
			Assessments: cols,
			Rows:        c.Rows,
			Stats:       c.Stats,
			Achieved:    c.Achieved,
		})
	}

	summary := SummaryResponse{
		CLOs:     make([]OutcomeColumn, 0, len(rep.Summary.CLOs)),
		Capacity: rep.Summary.Capacity,
		Rows:     rep.Summary.Rows,
		Stats:    rep.Summary.Stats,
	}
	for _, c := range rep.Summary.CLOs {
		summary.CLOs = append(summary.CLOs, OutcomeColumn{Outcome: NewOutcomeResponse(c.Outcome), Capacity: c.Capacity})
	}
	resp.Summary = summary

	for _, p := range rep.PLOs {
		cols := make([]PLOColumn, 0, len(p.CLOs))
		for _, c := range p.CLOs {
			cols = append(cols, PLOColumn{
				Outcome:      NewOutcomeResponse(c.Outcome),
				Capacity:     c.Capacity,
				CreditWeight: c.CreditWeight,
			})
		}
		resp.PLOs = append(resp.PLOs, PLOReportResponse{
			Outcome:      NewOutcomeResponse(p.Outcome),
			Capacity:     p.Capacity,
			CreditWeight: p.CreditWeight,
			CLOs:         cols,
			Rows:         p.Rows,
			Stats:        p.Stats,
			Achieved:     p.Achieved,
		})
	}
	return resp
}
