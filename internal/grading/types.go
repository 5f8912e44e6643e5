// Package grading 学习成果（CLO/PLO）达成度计算引擎
//
// 纯计算：输入为学生、权重与成绩的快照，输出为报表结构体。
// 不做任何 I/O，不持有缓存，每次调用均重新计算。
package grading

import "time"

// Outcome 学习成果（CLO 或 PLO）
//
// 零值即"零成果"占位：权重缺少 PLO 时在数据装载阶段以零值代替，
// 分组时作为普通桶处理，不产生错误。
type Outcome struct {
	ID        string
	Number    int
	Statement string
}

// IsZero 是否为零成果占位
func (o Outcome) IsZero() bool { return o.ID == "" }

// OutcomeOrZero 指针为空时返回零成果
func OutcomeOrZero(o *Outcome) Outcome {
	if o == nil {
		return Outcome{}
	}
	return *o
}

// Assessment 考核项（期中、作业、期末等）
type Assessment struct {
	ID   string
	Name string
}

// Weight 权重：某考核项对某 CLO（可选 PLO）的百分比贡献
type Weight struct {
	ID         string
	Assessment Assessment
	CLO        Outcome
	PLO        Outcome
	Percent    int
}

// Score 学生在某权重上的得分，Value 以分数点计（0..Percent）
type Score struct {
	ID        string
	WeightID  string
	StudentID string
	Value     float64
	CreatedAt time.Time
}

// Student 学生及其全部成绩
type Student struct {
	ID     string
	Code   string
	Name   string
	Scores []Score
}

// StudentRef 报表行中的学生信息
type StudentRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Ref 去掉成绩后的学生信息
func (s Student) Ref() StudentRef {
	return StudentRef{ID: s.ID, Code: s.Code, Name: s.Name}
}

// Input 一次计算所需的完整快照
type Input struct {
	Students      []Student
	Weights       []Weight
	PassThreshold float64 // 0..100
	Credit        float64
}
