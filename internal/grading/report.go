package grading

// ── CLO 明细报表 ──

// GroupScore 学生在某考核项子桶上的得分
type GroupScore struct {
	Raw  float64 `json:"raw"`
	Pass bool    `json:"pass"`
}

// CLORow CLO 报表中的一行
type CLORow struct {
	Student    StudentRef   `json:"student"`
	Groups     []GroupScore `json:"groups"`
	Total      float64      `json:"total"`
	Percentage float64      `json:"percentage"`
	Grade      string       `json:"grade"`
	Pass       bool         `json:"pass"`
}

// CLOReport 单个 CLO 的明细报表
type CLOReport struct {
	Outcome     Outcome
	Capacity    int
	Assessments []AssessmentGroup
	Rows        []CLORow
	Stats       Stats
	Achieved    bool
}

// BuildCLOReports 为每个 CLO 生成明细报表（按 CLO 编号排序）
func BuildCLOReports(in Input) []CLOReport {
	indexes := studentIndexes(in.Students)
	groups := GroupByCLO(in.Weights)

	reports := make([]CLOReport, 0, len(groups))
	for _, g := range groups {
		assessments := GroupByAssessment(g.Weights)
		rows := make([]CLORow, 0, len(in.Students))
		passes := make([]bool, 0, len(in.Students))

		for i, st := range in.Students {
			ix := indexes[i]
			row := CLORow{Student: st.Ref(), Groups: make([]GroupScore, 0, len(assessments))}
			for _, a := range assessments {
				raw := ix.sum(a.Weights)
				row.Groups = append(row.Groups, GroupScore{Raw: raw, Pass: GroupPass(raw, a.Capacity)})
				row.Total += raw
			}
			row.Percentage = Percentage(row.Total, g.Capacity)
			row.Grade = LetterGrade(row.Percentage)
			row.Pass = IsPass(row.Percentage, in.PassThreshold)

			rows = append(rows, row)
			passes = append(passes, row.Pass)
		}

		stats := CohortStats(passes)
		reports = append(reports, CLOReport{
			Outcome:     g.Outcome,
			Capacity:    g.Capacity,
			Assessments: assessments,
			Rows:        rows,
			Stats:       stats,
			Achieved:    stats.Achieved(in.PassThreshold),
		})
	}
	return reports
}

// ── 课程总评 ──

// SummaryRow 总评表中的一行
type SummaryRow struct {
	Student   StudentRef `json:"student"`
	CLOScores []float64  `json:"clo_scores"`
	Total     float64    `json:"total"`
	Grade     string     `json:"grade"`
	Pass      bool       `json:"pass"`
}

// Summary 课程总评：每个学生各 CLO 原始分与总分
type Summary struct {
	CLOs     []OutcomeGroup
	Capacity int
	Rows     []SummaryRow
	Stats    Stats
}

// BuildSummary 生成课程总评
//
// 总分满分为 100，等级与通过判定都直接使用总分本身，
// 阈值按绝对分数比较，而非百分比。
func BuildSummary(in Input) Summary {
	indexes := studentIndexes(in.Students)
	clos := GroupByCLO(in.Weights)

	rows := make([]SummaryRow, 0, len(in.Students))
	passes := make([]bool, 0, len(in.Students))
	for i, st := range in.Students {
		ix := indexes[i]
		row := SummaryRow{Student: st.Ref(), CLOScores: make([]float64, 0, len(clos))}
		for _, c := range clos {
			raw := ix.sum(c.Weights)
			row.CLOScores = append(row.CLOScores, raw)
			row.Total += raw
		}
		row.Grade = LetterGrade(row.Total)
		row.Pass = IsPassAbsolute(row.Total, in.PassThreshold)

		rows = append(rows, row)
		passes = append(passes, row.Pass)
	}

	return Summary{
		CLOs:     clos,
		Capacity: Capacity(in.Weights),
		Rows:     rows,
		Stats:    CohortStats(passes),
	}
}

// ── PLO 报表 ──

// PLOColumn PLO 报表中的 CLO 列
type PLOColumn struct {
	Outcome      Outcome
	Capacity     int
	CreditWeight float64 // capacity × credit / 100
}

// PLORow PLO 报表中的一行
type PLORow struct {
	Student    StudentRef `json:"student"`
	CLOScores  []float64  `json:"clo_scores"`
	Total      float64    `json:"total"`
	Percentage float64    `json:"percentage"`
	Grade      string     `json:"grade"`
	Pass       bool       `json:"pass"`
}

// PLOReport 单个 PLO 的报表
type PLOReport struct {
	Outcome      Outcome
	Capacity     int
	CreditWeight float64
	CLOs         []PLOColumn
	Rows         []PLORow
	Stats        Stats
	Achieved     bool
}

// BuildPLOReports 为每个 PLO 生成报表（按 PLO 编号排序）
func BuildPLOReports(in Input) []PLOReport {
	indexes := studentIndexes(in.Students)
	groups := GroupByPLO(in.Weights)

	reports := make([]PLOReport, 0, len(groups))
	for _, g := range groups {
		cols := make([]PLOColumn, 0, len(g.CLOs))
		for _, c := range g.CLOs {
			cols = append(cols, PLOColumn{
				Outcome:      c.Outcome,
				Capacity:     c.Capacity,
				CreditWeight: CreditWeight(c.Capacity, in.Credit),
			})
		}

		rows := make([]PLORow, 0, len(in.Students))
		passes := make([]bool, 0, len(in.Students))
		for i, st := range in.Students {
			ix := indexes[i]
			row := PLORow{Student: st.Ref(), CLOScores: make([]float64, 0, len(g.CLOs))}
			for _, c := range g.CLOs {
				raw := ix.sum(c.Weights)
				row.CLOScores = append(row.CLOScores, raw)
				row.Total += raw
			}
			row.Percentage = Percentage(row.Total, g.Capacity)
			row.Grade = LetterGrade(row.Percentage)
			row.Pass = IsPass(row.Percentage, in.PassThreshold)

			rows = append(rows, row)
			passes = append(passes, row.Pass)
		}

		stats := CohortStats(passes)
		reports = append(reports, PLOReport{
			Outcome:      g.Outcome,
			Capacity:     g.Capacity,
			CreditWeight: CreditWeight(g.Capacity, in.Credit),
			CLOs:         cols,
			Rows:         rows,
			Stats:        stats,
			Achieved:     stats.Achieved(in.PassThreshold),
		})
	}
	return reports
}

// CreditWeight 学分加权贡献
func CreditWeight(capacity int, credit float64) float64 {
	return float64(capacity) * credit / 100
}

// ── 聚合 ──

// Report 三类报表的合集
type Report struct {
	CLOs     []CLOReport
	Summary  Summary
	PLOs     []PLOReport
	Gradable bool
}

// Aggregate 一次性计算全部报表
func Aggregate(in Input) Report {
	return Report{
		CLOs:     BuildCLOReports(in),
		Summary:  BuildSummary(in),
		PLOs:     BuildPLOReports(in),
		Gradable: Gradable(in.Weights),
	}
}

func studentIndexes(students []Student) []scoreIndex {
	out := make([]scoreIndex, len(students))
	for i, s := range students {
		out[i] = indexScores(s)
	}
	return out
}
