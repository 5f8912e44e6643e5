package dto

// ── 考勤模块 DTO ──

// AttendanceEntry 单个学生的考勤
type AttendanceEntry struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status"     binding:"required,oneof=A L P E"`
}

// SubmitAttendanceRequest 提交考勤；MarkAll 非空时对全部未锁定行统一设置
type SubmitAttendanceRequest struct {
	Date    string            `json:"date"     binding:"required"` // "2026-03-02"
	MarkAll string            `json:"mark_all" binding:"omitempty,oneof=A L P E"`
	Entries []AttendanceEntry `json:"entries"  binding:"dive"`
}

// AttendanceRow 考勤表一行
type AttendanceRow struct {
	StudentID string `json:"student_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	RecordID  string `json:"record_id,omitempty"`
	Status    string `json:"status"`
	Locked    bool   `json:"locked"`
}

// AttendanceSheetResponse 某日考勤表
type AttendanceSheetResponse struct {
	ScheduleID string          `json:"schedule_id"`
	Date       string          `json:"date"`
	Rows       []AttendanceRow `json:"rows"`
}
