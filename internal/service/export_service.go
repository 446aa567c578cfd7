package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── export errors ──

var (
	ErrExportNoSlots      = errors.New("timetable has no slots to export")
	ErrExportGenerateFail = errors.New("failed to generate the Excel file")
)

// Sheet names of the export workbook.
const (
	WeekSheet  = "Week"
	SlotsSheet = "Slots"
)

// ExportService renders timetables as spreadsheets and calendar feeds.
//
// The workbook has two sheets:
//   - "Week": one row per distinct time range, one column per weekday, each
//     cell listing the slots held then
//   - "Slots": one row per slot with every field, for re-import or filtering
type ExportService interface {
	ExportWeek(ctx context.Context, id timetable.TimetableID) (*bytes.Buffer, string, error)
	ExportCalendar(ctx context.Context, id timetable.TimetableID, tz string) (*bytes.Buffer, string, error)
}

type exportService struct {
	gw        gateway.Gateway
	defaultTZ string
	logger    *zap.Logger
}

// NewExportService creates an ExportService. defaultTZ applies to calendar
// feeds requested without a time zone.
func NewExportService(gw gateway.Gateway, defaultTZ string, logger *zap.Logger) ExportService {
	if defaultTZ == "" {
		defaultTZ = "UTC"
	}
	return &exportService{gw: gw, defaultTZ: defaultTZ, logger: logger}
}

func (s *exportService) ExportWeek(ctx context.Context, id timetable.TimetableID) (*bytes.Buffer, string, error) {
	t, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(t.Slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(WeekSheet)
	if err != nil {
		return nil, "", s.fail(err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", s.fail(err)
	}
	if err := writeWeekSheet(f, t); err != nil {
		return nil, "", s.fail(err)
	}
	if _, err := f.NewSheet(SlotsSheet); err != nil {
		return nil, "", s.fail(err)
	}
	if err := writeSlotsSheet(f, t); err != nil {
		return nil, "", s.fail(err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.fail(err)
	}
	return buf, exportFilename(t), nil
}

func (s *exportService) fail(err error) error {
	s.logger.Error("write timetable workbook failed", zap.Error(err))
	return fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
}

// ── week sheet ──

type timeRange struct{ start, end string }

func writeWeekSheet(f *excelize.File, t *timetable.Timetable) error {
	week := t.Week()

	seen := make(map[timeRange]bool)
	var ranges []timeRange
	for _, s := range t.Slots {
		r := timeRange{s.StartTime, s.EndTime}
		if !seen[r] {
			seen[r] = true
			ranges = append(ranges, r)
		}
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].end < ranges[j].end
	})

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	lastCol := colName(7)
	if err := f.SetColWidth(WeekSheet, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(WeekSheet, "B", lastCol, 26); err != nil {
		return err
	}

	// title
	if err := f.SetCellValue(WeekSheet, "A1", t.DisplayName()); err != nil {
		return err
	}
	if err := f.MergeCell(WeekSheet, "A1", cell(lastCol, 1)); err != nil {
		return err
	}
	if err := f.SetCellValue(WeekSheet, "A2", fmt.Sprintf("%s to %s, %s", t.StartDate, t.EndDate, t.State)); err != nil {
		return err
	}

	// header
	row := 3
	if err := f.SetCellValue(WeekSheet, cell("A", row), "Time"); err != nil {
		return err
	}
	for d := 0; d < 7; d++ {
		if err := f.SetCellValue(WeekSheet, cell(colName(d+1), row), timetable.DayName(d)); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(WeekSheet, "A1", cell(lastCol, 1), headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(WeekSheet, cell("A", row), cell(lastCol, row), headerStyle); err != nil {
		return err
	}

	// body
	for _, r := range ranges {
		row++
		if err := f.SetCellValue(WeekSheet, cell("A", row), r.start+"-"+r.end); err != nil {
			return err
		}
		for d := 0; d < 7; d++ {
			var lines []string
			for _, s := range week[d] {
				if s.StartTime == r.start && s.EndTime == r.end {
					lines = append(lines, weekCellText(s))
				}
			}
			if len(lines) == 0 {
				continue
			}
			if err := f.SetCellValue(WeekSheet, cell(colName(d+1), row), strings.Join(lines, "\n")); err != nil {
				return err
			}
		}
	}
	if row > 3 {
		if err := f.SetCellStyle(WeekSheet, "B4", cell(lastCol, row), cellStyle); err != nil {
			return err
		}
	}
	return nil
}

func weekCellText(s timetable.Slot) string {
	parts := []string{refName(s.Subject, "Unassigned")}
	if s.Faculty != nil {
		parts = append(parts, refName(s.Faculty, ""))
	}
	if s.Classroom != nil {
		parts = append(parts, refName(s.Classroom, ""))
	}
	text := strings.Join(parts, " / ")
	if s.SessionType != "" && s.SessionType != timetable.SessionLecture {
		text += " (" + string(s.SessionType) + ")"
	}
	return text
}

// ── slots sheet ──

var slotColumns = []string{"Day", "Start", "End", "Duration (min)", "Type", "Subject", "Faculty", "Classroom", "Topic"}

func writeSlotsSheet(f *excelize.File, t *timetable.Timetable) error {
	for i, h := range slotColumns {
		if err := f.SetCellValue(SlotsSheet, cell(colName(i), 1), h); err != nil {
			return err
		}
	}
	row := 1
	for d, slots := range t.Week() {
		for _, s := range slots {
			row++
			values := []interface{}{
				timetable.DayName(d),
				s.StartTime,
				s.EndTime,
				int(s.Duration().Minutes()),
				string(s.SessionType),
				refName(s.Subject, ""),
				refName(s.Faculty, ""),
				refName(s.Classroom, ""),
				s.Topic,
			}
			if err := f.SetSheetRow(SlotsSheet, cell("A", row), &values); err != nil {
				return err
			}
		}
	}
	return f.AutoFilter(SlotsSheet, "A1:"+cell(colName(len(slotColumns)-1), row), nil)
}

// ── helpers ──

func refName(r *timetable.Ref, fallback string) string {
	if r == nil {
		return fallback
	}
	if r.Name != "" {
		return r.Name
	}
	if r.ID != 0 {
		return fmt.Sprintf("#%d", r.ID)
	}
	return fallback
}

func exportFilename(t *timetable.Timetable) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, t.DisplayName())
	return fmt.Sprintf("timetable_%s.xlsx", name)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
