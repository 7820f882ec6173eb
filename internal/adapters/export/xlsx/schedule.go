// Package xlsx は週間シフト表を Excel ファイルとして書き出します。
package xlsx

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/xuri/excelize/v2"
)

// SheetName は出力するシート名です。
const SheetName = "Schedule"

// WeekSchedule は 1 週間分の出力対象です。
type WeekSchedule struct {
	WeekStart time.Time
	Employees []*employee.Employee
	Shifts    []*shift.Shift
}

// WriteWeek は社員を行、日曜から土曜を列とするシフト表を w に書き出します。
// セルは HH:MM-HH:MM 形式で、同日に複数ある場合は改行で連結し、休暇のプレースホルダは VAC と表示します。
func WriteWeek(w io.Writer, cal *calendar.Calendar, schedule WeekSchedule) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	weekStart := calendar.WeekStart(schedule.WeekStart)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = weekStart.AddDate(0, 0, i)
	}

	header := []any{"Employee"}
	for _, day := range days {
		header = append(header, day.Format("Mon 01/02"))
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	rows := buildRows(cal, days, schedule)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, 0, len(row.cells)+1)
		values = append(values, row.name)
		for _, c := range row.cells {
			values = append(values, c)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+2, err)
		}
	}

	if err := applyStyles(f, len(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write file: %w", err)
	}
	return nil
}

type scheduleRow struct {
	employeeID string
	name       string
	cells      []string
}

func buildRows(cal *calendar.Calendar, days []time.Time, schedule WeekSchedule) []*scheduleRow {
	byEmployee := make(map[string]*scheduleRow, len(schedule.Employees))
	for _, e := range schedule.Employees {
		byEmployee[e.ID] = &scheduleRow{employeeID: e.ID, name: e.DisplayName, cells: make([]string, len(days))}
	}

	dayIndex := make(map[time.Time]int, len(days))
	for i, day := range days {
		dayIndex[day] = i
	}

	shifts := append([]*shift.Shift(nil), schedule.Shifts...)
	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].StartAt.Before(shifts[j].StartAt)
	})

	for _, s := range shifts {
		if s.Status == shift.StatusCancelled {
			continue
		}
		idx, ok := dayIndex[cal.DateOf(s.StartAt)]
		if !ok {
			continue
		}
		row, ok := byEmployee[s.EmployeeID]
		if !ok {
			row = &scheduleRow{employeeID: s.EmployeeID, name: s.EmployeeID, cells: make([]string, len(days))}
			byEmployee[s.EmployeeID] = row
		}
		label := cellLabel(cal, s)
		if row.cells[idx] == "" {
			row.cells[idx] = label
		} else {
			row.cells[idx] = row.cells[idx] + "\n" + label
		}
	}

	rows := make([]*scheduleRow, 0, len(byEmployee))
	for _, row := range byEmployee {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !strings.EqualFold(rows[i].name, rows[j].name) {
			return strings.ToLower(rows[i].name) < strings.ToLower(rows[j].name)
		}
		return rows[i].employeeID < rows[j].employeeID
	})
	return rows
}

func cellLabel(cal *calendar.Calendar, s *shift.Shift) string {
	if s.IsVacation() {
		return shift.VacationNote
	}
	startMinute, endMinute, ok := cal.DailySpan(s.StartAt, s.EndAt)
	if !ok {
		endMinute = cal.MinuteOfDay(s.EndAt)
	}
	return calendar.FormatTimeOfDay(startMinute) + "-" + calendar.FormatTimeOfDay(endMinute)
}

func applyStyles(f *excelize.File, rowCount int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("xlsx: apply header style: %w", err)
	}

	if rowCount > 0 {
		bodyStyle, err := f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return fmt.Errorf("xlsx: body style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(8, rowCount+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "B2", last, bodyStyle); err != nil {
			return fmt.Errorf("xlsx: apply body style: %w", err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 24); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "H", 14); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx: freeze header: %w", err)
	}
	return nil
}
