package grading

import "testing"

func TestBuildCLOReports_SingleStudentScenario(t *testing.T) {
	in := Input{
		Weights: []Weight{
			{ID: "wA", CLO: clo1, Assessment: midterm, Percent: 20},
			{ID: "wB", CLO: clo1, Assessment: final, Percent: 20},
		},
		Students: []Student{
			{ID: "s1", Code: "e20200001", Name: "Sok", Scores: []Score{score("wA", 15), score("wB", 10)}},
		},
		PassThreshold: 50,
	}

	reports := BuildCLOReports(in)
	if len(reports) != 1 {
		t.Fatalf("期望 1 份 CLO 报表，实际: %d", len(reports))
	}
	r := reports[0]
	if r.Capacity != 40 {
		t.Errorf("期望容量 40，实际: %d", r.Capacity)
	}
	row := r.Rows[0]
	if !approx(row.Total, 25) {
		t.Errorf("期望原始分 25，实际: %v", row.Total)
	}
	if !approx(row.Percentage, 62.5) {
		t.Errorf("期望 62.5%%，实际: %v", row.Percentage)
	}
	if row.Grade != "C" {
		t.Errorf("期望等级 C，实际: %s", row.Grade)
	}
	if !row.Pass {
		t.Error("62.5 ≥ 50 应通过")
	}
	if len(row.Groups) != 2 || !row.Groups[0].Pass || !row.Groups[1].Pass {
		t.Errorf("两个子桶均达到一半容量，应通过: %+v", row.Groups)
	}
	if r.Stats.PassCount != 1 || r.Stats.PassPercentage != 100 || !r.Achieved {
		t.Errorf("统计错误: %+v achieved=%v", r.Stats, r.Achieved)
	}
}

func TestAggregate_StudentWithoutScores(t *testing.T) {
	in := Input{
		Weights: []Weight{
			{ID: "w1", CLO: clo1, PLO: plo1, Assessment: midterm, Percent: 30},
			{ID: "w2", CLO: clo2, PLO: plo1, Assessment: final, Percent: 30},
			{ID: "w3", CLO: clo3, PLO: plo2, Assessment: quiz, Percent: 40},
		},
		Students:      []Student{{ID: "s1", Name: "Dara"}},
		PassThreshold: 50,
		Credit:        3,
	}

	rep := Aggregate(in)
	if !rep.Gradable {
		t.Error("权重总和 100 应可评分")
	}
	if len(rep.CLOs) != 3 {
		t.Fatalf("期望 3 份 CLO 报表，实际: %d", len(rep.CLOs))
	}
	for _, r := range rep.CLOs {
		row := r.Rows[0]
		if row.Total != 0 || row.Percentage != 0 || row.Pass || row.Grade != "F" {
			t.Errorf("无成绩学生期望 0/F/未通过，实际: %+v", row)
		}
	}
	sum := rep.Summary.Rows[0]
	if sum.Total != 0 || sum.Pass || len(sum.CLOScores) != 3 {
		t.Errorf("总评期望 0 分未通过，实际: %+v", sum)
	}
	if rep.Summary.Stats.FailCount != 1 {
		t.Errorf("期望 1 人未通过，实际: %+v", rep.Summary.Stats)
	}
}

func TestBuildSummary_AbsoluteThreshold(t *testing.T) {
	in := Input{
		Weights: []Weight{
			{ID: "w1", CLO: clo1, Assessment: midterm, Percent: 40},
			{ID: "w2", CLO: clo2, Assessment: final, Percent: 60},
		},
		Students: []Student{
			{ID: "s1", Scores: []Score{score("w1", 30), score("w2", 30)}},
			{ID: "s2", Scores: []Score{score("w1", 20), score("w2", 10)}},
		},
		PassThreshold: 50,
	}

	s := BuildSummary(in)
	if s.Capacity != 100 || len(s.CLOs) != 2 {
		t.Fatalf("期望容量 100 且 2 个 CLO，实际: %d / %d", s.Capacity, len(s.CLOs))
	}
	if !approx(s.Rows[0].Total, 60) || !s.Rows[0].Pass || s.Rows[0].Grade != "C" {
		t.Errorf("s1 期望 60/C/通过，实际: %+v", s.Rows[0])
	}
	if !approx(s.Rows[1].Total, 30) || s.Rows[1].Pass || s.Rows[1].Grade != "F" {
		t.Errorf("s2 期望 30/F/未通过，实际: %+v", s.Rows[1])
	}
	if s.Stats.PassCount+s.Stats.FailCount != s.Stats.Total {
		t.Errorf("通过+未通过 应等于总人数: %+v", s.Stats)
	}
}

func TestBuildPLOReports_CreditWeight(t *testing.T) {
	in := Input{
		Weights: []Weight{
			{ID: "w1", CLO: clo1, PLO: plo1, Assessment: midterm, Percent: 20},
			{ID: "w2", CLO: clo2, PLO: plo1, Assessment: final, Percent: 30},
			{ID: "w3", CLO: clo1, PLO: plo1, Assessment: quiz, Percent: 10},
		},
		Students: []Student{
			{ID: "s1", Scores: []Score{score("w1", 20), score("w2", 15), score("w3", 10)}},
		},
		PassThreshold: 70,
		Credit:        3,
	}

	reps := BuildPLOReports(in)
	if len(reps) != 1 {
		t.Fatalf("期望 1 份 PLO 报表，实际: %d", len(reps))
	}
	r := reps[0]
	if r.Capacity != 60 {
		t.Errorf("期望 PLO 容量 60，实际: %d", r.Capacity)
	}
	if len(r.CLOs) != 2 || r.CLOs[0].Capacity != 30 || !approx(r.CLOs[0].CreditWeight, 0.9) {
		t.Errorf("clo-1 期望容量 30、学分权重 0.9，实际: %+v", r.CLOs)
	}
	if !approx(r.CreditWeight, 1.8) {
		t.Errorf("期望 PLO 学分权重 1.8，实际: %v", r.CreditWeight)
	}
	row := r.Rows[0]
	if !approx(row.Total, 45) || !approx(row.Percentage, 75) || row.Grade != "B" || !row.Pass {
		t.Errorf("期望 45 / 75%% / B / 通过，实际: %+v", row)
	}
}

func TestAggregate_EmptyRoster(t *testing.T) {
	in := Input{
		Weights:       []Weight{{ID: "w1", CLO: clo1, Assessment: midterm, Percent: 100}},
		PassThreshold: 50,
	}
	rep := Aggregate(in)
	st := rep.CLOs[0].Stats
	if st.Total != 0 || st.PassPercentage != 0 || st.FailPercentage != 0 {
		t.Errorf("空名单期望统计全 0，实际: %+v", st)
	}
	if rep.CLOs[0].Achieved {
		t.Error("空名单不应判定为达成")
	}
}

func TestAggregate_NotGradable(t *testing.T) {
	in := Input{Weights: []Weight{{ID: "w1", CLO: clo1, Assessment: midterm, Percent: 90}}}
	if Aggregate(in).Gradable {
		t.Error("权重总和 90 不应可评分")
	}
}
