package grading

import (
	apperrors "ums-obe/backend/pkg/errors"
)

// FullWeight 一门课程全部权重之和必须等于该值
const FullWeight = 100

// ValidateWeightTotal 权重总和必须恰好为 100
func ValidateWeightTotal(percents []int) error {
	total := 0
	for _, p := range percents {
		total += p
	}
	if total != FullWeight {
		return apperrors.Invalid("weight", "权重总和必须为 %d，当前为 %d", FullWeight, total)
	}
	return nil
}

// ValidateScore 分值需在 0..100 之间；capped 为 true 时不得超过权重百分比
func ValidateScore(percent int, value float64, capped bool) error {
	if value < 0 || value > FullWeight {
		return apperrors.Invalid("value", "分值必须在 0-%d 之间", FullWeight)
	}
	if capped && value > float64(percent) {
		return apperrors.Invalid("value", "分值 %.2f 超过权重上限 %d", value, percent)
	}
	return nil
}

// Gradable 权重总和为 100 时课程可评分
func Gradable(weights []Weight) bool {
	return Capacity(weights) == FullWeight
}
