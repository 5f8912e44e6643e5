package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ums-obe/backend/config"
	"ums-obe/backend/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 报表导出业务接口
//
// 设计说明：
//   - 导出内容与 ReportService 计算结果一致，不单独计算
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 工作簿结构：首个 Sheet 为总览，其后每个成果一个 Sheet
type ExportService interface {
	ExportCLOReport(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error)
	ExportPLOReport(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	reports ReportService
	printer *message.Printer
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例；locale 无法解析时使用英文
func NewExportService(reports ReportService, exportCfg *config.ExportConfig, logger *zap.Logger) ExportService {
	tag := language.English
	if exportCfg != nil && exportCfg.Locale != "" {
		if parsed, err := language.Parse(exportCfg.Locale); err == nil {
			tag = parsed
		} else {
			logger.Warn("导出 locale 无效，使用英文", zap.String("locale", exportCfg.Locale))
		}
	}
	return &exportService{reports: reports, printer: message.NewPrinter(tag), logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCLOReport — CLO 报表
// ═══════════════════════════════════════════════════════════
//
// Sheet "Summary"：学号 | 姓名 | CLO 1 (cap) ... | Total | Grade | Pass
// Sheet "CLO n"：  学号 | 姓名 | 考核项 (cap) ... | Total | % | Grade | Pass

func (s *exportService) ExportCLOReport(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error) {
	rep, err := s.reports.Full(ctx, scheduleID)
	if err != nil {
		return nil, "", err
	}

	w := s.newWorkbook()
	defer w.f.Close()

	// 1. 总览
	sum := rep.Summary
	headers := []string{"Code", "Name"}
	for _, c := range sum.CLOs {
		headers = append(headers, fmt.Sprintf("%s (%d)", outcomeLabel("CLO", c.Outcome.Number), c.Capacity))
	}
	headers = append(headers, fmt.Sprintf("Total (%d)", sum.Capacity), "Grade", "Pass")

	sh := w.sheet("Summary", s.title(rep, "Course Summary"), headers)
	for _, r := range sum.Rows {
		vals := []interface{}{r.Student.Code, r.Student.Name}
		for _, v := range r.CLOScores {
			vals = append(vals, v)
		}
		vals = append(vals, r.Total, r.Grade, passLabel(r.Pass))
		sh.row(vals...)
	}
	sh.stats(s.printer, sum.Stats.PassCount, sum.Stats.FailCount, sum.Stats.PassPercentage, sum.Stats.FailPercentage)

	// 2. 每个 CLO 一个 Sheet
	for _, c := range rep.CLOs {
		label := outcomeLabel("CLO", c.Outcome.Number)
		headers := []string{"Code", "Name"}
		for _, a := range c.Assessments {
			headers = append(headers, fmt.Sprintf("%s (%d)", a.Name, a.Capacity))
		}
		headers = append(headers, fmt.Sprintf("Total (%d)", c.Capacity), "%", "Grade", "Pass")

		sh := w.sheet(label, s.title(rep, label+" "+c.Outcome.Statement), headers)
		for _, r := range c.Rows {
			vals := []interface{}{r.Student.Code, r.Student.Name}
			for _, g := range r.Groups {
				vals = append(vals, g.Raw)
			}
			vals = append(vals, r.Total, s.percent(r.Percentage), r.Grade, passLabel(r.Pass))
			sh.row(vals...)
		}
		sh.stats(s.printer, c.Stats.PassCount, c.Stats.FailCount, c.Stats.PassPercentage, c.Stats.FailPercentage)
		sh.line("Achieved", passLabel(c.Achieved))
	}

	return s.finish(w, "CLO", rep)
}

// ═══════════════════════════════════════════════════════════
// ExportPLOReport — PLO 报表
// ═══════════════════════════════════════════════════════════
//
// Sheet "Summary"：PLO | Capacity | Credit weight | Pass % | Achieved
// Sheet "PLO n"：  学号 | 姓名 | CLO k (cap / credit) ... | Total | % | Grade | Pass

func (s *exportService) ExportPLOReport(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error) {
	rep, err := s.reports.Full(ctx, scheduleID)
	if err != nil {
		return nil, "", err
	}

	w := s.newWorkbook()
	defer w.f.Close()

	sh := w.sheet("Summary", s.title(rep, "PLO Summary"),
		[]string{"PLO", "Statement", "Capacity", "Credit weight", "Pass %", "Achieved"})
	for _, p := range rep.PLOs {
		sh.row(
			outcomeLabel("PLO", p.Outcome.Number),
			p.Outcome.Statement,
			p.Capacity,
			s.printer.Sprintf("%.2f", p.CreditWeight),
			s.printer.Sprintf("%d%%", p.Stats.PassPercentage),
			passLabel(p.Achieved),
		)
	}

	for _, p := range rep.PLOs {
		label := outcomeLabel("PLO", p.Outcome.Number)
		headers := []string{"Code", "Name"}
		for _, c := range p.CLOs {
			headers = append(headers, s.printer.Sprintf("%s (%d / %.2f)",
				outcomeLabel("CLO", c.Outcome.Number), c.Capacity, c.CreditWeight))
		}
		headers = append(headers, fmt.Sprintf("Total (%d)", p.Capacity), "%", "Grade", "Pass")

		sh := w.sheet(label, s.title(rep, label+" "+p.Outcome.Statement), headers)
		for _, r := range p.Rows {
			vals := []interface{}{r.Student.Code, r.Student.Name}
			for _, v := range r.CLOScores {
				vals = append(vals, v)
			}
			vals = append(vals, r.Total, s.percent(r.Percentage), r.Grade, passLabel(r.Pass))
			sh.row(vals...)
		}
		sh.stats(s.printer, p.Stats.PassCount, p.Stats.FailCount, p.Stats.PassPercentage, p.Stats.FailPercentage)
		sh.line("Achieved", passLabel(p.Achieved))
	}

	return s.finish(w, "PLO", rep)
}

// ── 工作簿构建 ──

type workbook struct {
	f           *excelize.File
	headerStyle int
	first       bool
}

type sheetWriter struct {
	f    *excelize.File
	name string
	next int
}

func (s *exportService) newWorkbook() *workbook {
	f := excelize.NewFile()
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return &workbook{f: f, headerStyle: style, first: true}
}

// sheet 新建 Sheet 并写入标题行与表头；第一个 Sheet 复用默认的 Sheet1
func (w *workbook) sheet(name, title string, headers []string) *sheetWriter {
	name = sheetName(name)
	if w.first {
		w.f.SetSheetName("Sheet1", name)
		w.first = false
	} else {
		w.f.NewSheet(name)
	}

	last := colName(len(headers) - 1)
	w.f.SetCellValue(name, "A1", title)
	w.f.MergeCell(name, "A1", cell(last, 1))
	w.f.SetCellStyle(name, "A1", "A1", w.headerStyle)

	for i, h := range headers {
		w.f.SetCellValue(name, cell(colName(i), 2), h)
	}
	w.f.SetCellStyle(name, "A2", cell(last, 2), w.headerStyle)
	w.f.SetColWidth(name, "A", "A", 14)
	w.f.SetColWidth(name, "B", "B", 28)
	if len(headers) > 2 {
		w.f.SetColWidth(name, "C", last, 14)
	}

	return &sheetWriter{f: w.f, name: name, next: 3}
}

func (sw *sheetWriter) row(vals ...interface{}) {
	for i, v := range vals {
		sw.f.SetCellValue(sw.name, cell(colName(i), sw.next), v)
	}
	sw.next++
}

func (sw *sheetWriter) line(label string, value interface{}) {
	sw.row(label, value)
}

// stats 表尾统计：空一行后写通过/未通过人数与百分比
func (sw *sheetWriter) stats(p *message.Printer, pass, fail, passPct, failPct int) {
	sw.next++
	sw.line("Pass", p.Sprintf("%d (%d%%)", pass, passPct))
	sw.line("Fail", p.Sprintf("%d (%d%%)", fail, failPct))
}

func (s *exportService) finish(w *workbook, kind string, rep *dto.ReportResponse) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	if err := w.f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败",
			zap.String("schedule_id", rep.Schedule.ID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return nil, "", ErrExportGenerateFail
	}
	filename := fmt.Sprintf("%s_Report_%s.xlsx", kind, fileSafe(rep.Schedule.CourseName))
	return buf, filename, nil
}

func (s *exportService) title(rep *dto.ReportResponse, subject string) string {
	parts := []string{rep.Schedule.CourseName}
	if rep.Schedule.ClassName != "" {
		parts = append(parts, rep.Schedule.ClassName)
	}
	parts = append(parts, strings.TrimSpace(subject))
	return strings.Join(parts, " | ")
}

func (s *exportService) percent(v float64) string {
	return s.printer.Sprintf("%.2f%%", v)
}

// ── 辅助函数 ──

// outcomeLabel 编号为 0 的零成果显示为 "-"
func outcomeLabel(prefix string, number int) string {
	if number == 0 {
		return prefix + " -"
	}
	return fmt.Sprintf("%s %d", prefix, number)
}

func passLabel(ok bool) string {
	if ok {
		return "Yes"
	}
	return "No"
}

// sheetName Excel 的 Sheet 名不超过 31 字符且不得包含 []:*?/\
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

func fileSafe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "course"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return -1
		}
		return r
	}, name)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
