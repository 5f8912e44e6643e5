package grading

import "math"

// ── 成绩索引 ──

// scoreIndex 权重 ID → 分值；同一权重若出现多条，取第一条
type scoreIndex map[string]float64

func indexScores(s Student) scoreIndex {
	ix := make(scoreIndex, len(s.Scores))
	for _, sc := range s.Scores {
		if _, ok := ix[sc.WeightID]; ok {
			continue
		}
		ix[sc.WeightID] = sc.Value
	}
	return ix
}

func (ix scoreIndex) sum(weights []Weight) float64 {
	var total float64
	for _, w := range weights {
		total += ix[w.ID]
	}
	return total
}

// RawScore 学生在一组权重上的原始得分，未录入的成绩按 0 计
func RawScore(s Student, weights []Weight) float64 {
	return indexScores(s).sum(weights)
}

// ── 判定规则 ──

// Percentage raw / capacity × 100；capacity 为 0 时返回 0
func Percentage(raw float64, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return raw / float64(capacity) * 100
}

// IsPass 百分比口径：pct ≥ threshold
func IsPass(pct, threshold float64) bool {
	return pct >= threshold
}

// IsPassAbsolute 课程总评口径：原始总分（满分 100）直接与阈值比较
func IsPassAbsolute(total, threshold float64) bool {
	return total >= threshold
}

// GroupPass CLO 内考核项子桶的及格线固定为容量的一半
func GroupPass(raw float64, capacity int) bool {
	return raw >= float64(capacity)/2
}

// gradeBands 等级区间，按顺序首个命中者生效
var gradeBands = []struct {
	min   float64
	grade string
}{
	{85, "A"},
	{80, "B+"},
	{70, "B"},
	{65, "C+"},
	{50, "C"},
	{45, "D"},
	{40, "E"},
}

// LetterGrade 百分比 → 等级
func LetterGrade(pct float64) string {
	for _, b := range gradeBands {
		if pct >= b.min {
			return b.grade
		}
	}
	return "F"
}

// RoundHalfUp 四舍五入到整数（.5 向上）
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ── 群体统计 ──

// Stats 通过/未通过人数与百分比
type Stats struct {
	Total          int `json:"total"`
	PassCount      int `json:"pass_count"`
	FailCount      int `json:"fail_count"`
	PassPercentage int `json:"pass_percentage"`
	FailPercentage int `json:"fail_percentage"`
}

// CohortStats 由每个学生的通过判定汇总统计；人数为 0 时百分比为 0
func CohortStats(passes []bool) Stats {
	st := Stats{Total: len(passes)}
	for _, p := range passes {
		if p {
			st.PassCount++
		}
	}
	st.FailCount = st.Total - st.PassCount
	if st.Total > 0 {
		st.PassPercentage = RoundHalfUp(float64(st.PassCount) / float64(st.Total) * 100)
		st.FailPercentage = RoundHalfUp(float64(st.FailCount) / float64(st.Total) * 100)
	}
	return st
}

// Achieved 群体通过率是否达到阈值
func (s Stats) Achieved(threshold float64) bool {
	return float64(s.PassPercentage) >= threshold
}
