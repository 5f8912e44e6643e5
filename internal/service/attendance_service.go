package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ums-obe/backend/internal/dto"
	"ums-obe/backend/internal/model"
	"ums-obe/backend/internal/repository"
	apperrors "ums-obe/backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// AttendanceService 考勤业务接口
//
// 设计说明：
//   - 无记录的学生视为缺勤且未锁定
//   - 记录状态不为缺勤(A)时锁定，之后不再修改
//   - 提交时处理全部未锁定学生：无记录则创建，状态有变化则更新
type AttendanceService interface {
	GetSheet(ctx context.Context, scheduleID, date string) (*dto.AttendanceSheetResponse, error)
	Submit(ctx context.Context, scheduleID string, req *dto.SubmitAttendanceRequest) (*dto.AttendanceSheetResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ── 状态规则 ──

// NextStatus 点击切换：A → L → P → A；其他状态回到 A
func NextStatus(status string) string {
	switch status {
	case model.AttendanceAbsent:
		return model.AttendanceLate
	case model.AttendanceLate:
		return model.AttendancePresent
	default:
		return model.AttendanceAbsent
	}
}

// AttendanceLocked 已保存且非缺勤的记录锁定
func AttendanceLocked(recordID, status string) bool {
	return recordID != "" && status != model.AttendanceAbsent
}

// MarkAll 将全部未锁定行设置为 status
func MarkAll(rows []dto.AttendanceRow, status string) {
	for i := range rows {
		if !rows[i].Locked {
			rows[i].Status = status
		}
	}
}

// ────── GetSheet ──────

func (s *attendanceService) GetSheet(ctx context.Context, scheduleID, date string) (*dto.AttendanceSheetResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	sheet, _, err := s.load(ctx, scheduleID, day)
	return sheet, err
}

// ────── Submit ──────

func (s *attendanceService) Submit(ctx context.Context, scheduleID string, req *dto.SubmitAttendanceRequest) (*dto.AttendanceSheetResponse, error) {
	day, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	sheet, saved, err := s.load(ctx, scheduleID, day)
	if err != nil {
		return nil, err
	}

	// 1. 先整体设置，再应用逐个学生的状态
	if req.MarkAll != "" {
		MarkAll(sheet.Rows, req.MarkAll)
	}
	entries := make(map[string]string, len(req.Entries))
	for _, e := range req.Entries {
		entries[e.StudentID] = e.Status
	}

	// 2. 逐个处理未锁定的学生
	created, updated := 0, 0
	for i := range sheet.Rows {
		row := &sheet.Rows[i]
		if row.Locked {
			continue
		}
		if st, ok := entries[row.StudentID]; ok {
			row.Status = st
		}

		if row.RecordID == "" {
			rec := &model.Attendance{
				ScheduleID: scheduleID,
				StudentID:  row.StudentID,
				Date:       day,
				Status:     row.Status,
			}
			if err := s.repo.Attendance.Create(ctx, rec); err != nil {
				s.logger.Error("创建考勤记录失败",
					zap.String("schedule_id", scheduleID),
					zap.String("student_id", row.StudentID),
					zap.Error(err),
				)
				return nil, err
			}
			row.RecordID = rec.ID
			created++
		} else if saved[row.StudentID] != row.Status {
			if err := s.repo.Attendance.UpdateStatus(ctx, row.RecordID, row.Status); err != nil {
				s.logger.Error("更新考勤记录失败", zap.String("record_id", row.RecordID), zap.Error(err))
				return nil, err
			}
			updated++
		}
		row.Locked = AttendanceLocked(row.RecordID, row.Status)
	}

	s.logger.Info("考勤已提交",
		zap.String("schedule_id", scheduleID),
		zap.String("date", sheet.Date),
		zap.Int("created", created),
		zap.Int("updated", updated),
	)
	return sheet, nil
}

// load 组装考勤表，同时返回已保存的状态（学生 ID → 状态）
func (s *attendanceService) load(ctx context.Context, scheduleID string, day time.Time) (*dto.AttendanceSheetResponse, map[string]string, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrScheduleNotFound)
	}

	students, err := s.repo.Schedule.ListStudents(ctx, schedule.ClassID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.String("class_id", schedule.ClassID), zap.Error(err))
		return nil, nil, err
	}
	records, err := s.repo.Attendance.ListByScheduleDate(ctx, scheduleID, day)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, nil, err
	}

	byStudent := make(map[string]model.Attendance, len(records))
	saved := make(map[string]string, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
		saved[r.StudentID] = r.Status
	}

	sheet := &dto.AttendanceSheetResponse{
		ScheduleID: scheduleID,
		Date:       day.Format(dateLayout),
		Rows:       make([]dto.AttendanceRow, 0, len(students)),
	}
	for _, st := range students {
		row := dto.AttendanceRow{
			StudentID: st.ID,
			Code:      st.Code,
			Name:      st.DisplayName(),
			Status:    model.AttendanceAbsent,
		}
		if rec, ok := byStudent[st.ID]; ok {
			row.RecordID = rec.ID
			row.Status = rec.Status
			row.Locked = AttendanceLocked(rec.ID, rec.Status)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, saved, nil
}

func parseDate(date string) (time.Time, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, apperrors.Invalid("date", "日期格式应为 YYYY-MM-DD")
	}
	return day, nil
}
