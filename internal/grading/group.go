package grading

import "sort"

// OutcomeGroup 按成果分组后的权重桶，Capacity 为桶内权重百分比之和
type OutcomeGroup struct {
	Outcome  Outcome
	Weights  []Weight
	Capacity int
}

// WeightIDs 桶内权重 ID（保持首次出现顺序）
func (g OutcomeGroup) WeightIDs() []string {
	ids := make([]string, len(g.Weights))
	for i, w := range g.Weights {
		ids[i] = w.ID
	}
	return ids
}

// PLOGroup PLO 桶：内部再按 CLO 细分
type PLOGroup struct {
	Outcome  Outcome
	CLOs     []OutcomeGroup
	Capacity int
}

// AssessmentGroup CLO 内按考核项细分的子桶
type AssessmentGroup struct {
	Assessment Assessment
	Weights    []Weight
	Capacity   int
}

// GroupByCLO 按 CLO 分组，桶按成果编号升序，桶内保持权重出现顺序
func GroupByCLO(weights []Weight) []OutcomeGroup {
	return groupBy(weights, func(w Weight) Outcome { return w.CLO })
}

// GroupByPLO 按 PLO 分组，并在每个 PLO 内按 CLO 细分
//
// 缺少 PLO 的权重落入零成果桶。
func GroupByPLO(weights []Weight) []PLOGroup {
	buckets := groupBy(weights, func(w Weight) Outcome { return w.PLO })
	result := make([]PLOGroup, 0, len(buckets))
	for _, b := range buckets {
		clos := GroupByCLO(b.Weights)
		capacity := 0
		for _, c := range clos {
			capacity += c.Capacity
		}
		result = append(result, PLOGroup{
			Outcome:  b.Outcome,
			CLOs:     clos,
			Capacity: capacity,
		})
	}
	return result
}

// GroupByAssessment 按考核项分组，保持首次出现顺序
func GroupByAssessment(weights []Weight) []AssessmentGroup {
	index := make(map[string]int)
	var groups []AssessmentGroup
	for _, w := range weights {
		i, ok := index[w.Assessment.ID]
		if !ok {
			i = len(groups)
			index[w.Assessment.ID] = i
			groups = append(groups, AssessmentGroup{Assessment: w.Assessment})
		}
		groups[i].Weights = append(groups[i].Weights, w)
		groups[i].Capacity += w.Percent
	}
	return groups
}

// Capacity 权重百分比之和
func Capacity(weights []Weight) int {
	total := 0
	for _, w := range weights {
		total += w.Percent
	}
	return total
}

func groupBy(weights []Weight, key func(Weight) Outcome) []OutcomeGroup {
	index := make(map[string]int)
	var groups []OutcomeGroup
	for _, w := range weights {
		o := key(w)
		i, ok := index[o.ID]
		if !ok {
			i = len(groups)
			index[o.ID] = i
			groups = append(groups, OutcomeGroup{Outcome: o})
		}
		groups[i].Weights = append(groups[i].Weights, w)
		groups[i].Capacity += w.Percent
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Outcome.Number < groups[j].Outcome.Number
	})
	return groups
}
