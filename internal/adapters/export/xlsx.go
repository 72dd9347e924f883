package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"sgc/internal/domain/report"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	reportSheet  = "Attendance"
	summarySheet = "Summary"
)

var headers = []any{"Name", "Department", "Role", "Year", "Working Days", "Present", "Absent", "Attendance %", "Absent Dates"}

// Filename returns the download name for a month's workbook.
func Filename(month string) string {
	return fmt.Sprintf("attendance-%s.xlsx", month)
}

// WriteMonthly renders a monthly report as an xlsx workbook to w.
// Rows below the threshold are highlighted.
// POST: the workbook has an Attendance sheet with one row per report row and a Summary sheet
func WriteMonthly(w io.Writer, m report.Monthly) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(reportSheet, "A1", &headers); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	flagged, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FDE2E1"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(reportSheet, "A1", "I1", bold); err != nil {
		return err
	}

	for i, row := range m.Rows {
		line := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, line)
		values := []any{
			row.Name,
			row.Department,
			row.Role,
			row.AcademicYear,
			row.WorkingDays,
			row.Present,
			row.Absent,
			report.Label(row),
			strings.Join(row.AbsentDates, ", "),
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", line, err)
		}
		if row.BelowThreshold {
			last, _ := excelize.CoordinatesToCellName(len(headers), line)
			if err := f.SetCellStyle(reportSheet, cell, last, flagged); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(reportSheet, "A", "C", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(reportSheet, "I", "I", 48); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"Month", report.MonthLabel(m.Month)},
		{"Working Days", m.WorkingDays},
		{"Members", len(m.Rows)},
		{"Below Threshold", len(m.BelowThreshold())},
	}
	for i, pair := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &pair); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 18); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
