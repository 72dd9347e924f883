package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"sgc/internal/domain/attendance"
	"sgc/internal/domain/member"
	"sgc/internal/domain/report"
)

func TestWriteMonthly(t *testing.T) {
	roster := []member.Member{
		{ID: "a", Name: "Asha", Department: "CSE", Role: member.RoleMember, AcademicYear: member.YearIV},
		{ID: "b", Name: "Bala", Department: "ECE", Role: member.RoleTrainee, AcademicYear: member.YearII},
	}
	records := []attendance.Record{
		{MemberID: "a", Date: "2024-05-01", IsPresent: true},
		{MemberID: "a", Date: "2024-05-02", IsPresent: true},
		{MemberID: "b", Date: "2024-05-02", IsPresent: true},
	}
	m := report.BuildMonthly("2024-05", records, roster, report.DefaultOptions())

	var buf bytes.Buffer
	if err := WriteMonthly(&buf, m); err != nil {
		t.Fatalf("WriteMonthly: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "Name" || rows[1][0] != "Asha" || rows[1][7] != "100.00%" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][7] != "50.00%" || rows[2][8] != "2024-05-01" {
		t.Errorf("second data row = %v", rows[2])
	}

	month, _ := f.GetCellValue(summarySheet, "B1")
	if month != "May 2024" {
		t.Errorf("summary month = %q", month)
	}
	flagged, _ := f.GetCellValue(summarySheet, "B4")
	if flagged != "1" {
		t.Errorf("below threshold = %q, want 1", flagged)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("2024-05"); got != "attendance-2024-05.xlsx" {
		t.Errorf("Filename = %s", got)
	}
}
