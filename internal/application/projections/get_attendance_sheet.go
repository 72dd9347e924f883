package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"sgc/internal/domain/attendance"
	"sgc/internal/domain/member"
)

// yearGroupOrder is the display order of the editor's year sections.
var yearGroupOrder = []string{member.YearIV, member.YearIII, member.YearII, member.YearI, member.YearOther}

// AttendanceSheetQuery names the date to edit. Empty means today.
type AttendanceSheetQuery struct {
	Date string
}

// SheetRow is one member's cell in the editor.
type SheetRow struct {
	Member  member.Member
	Present bool
	Marked  bool
}

// YearGroup is one academic year section of the editor.
type YearGroup struct {
	Year string
	Rows []SheetRow
}

// AttendanceSheetResult carries the editor state for one date.
type AttendanceSheetResult struct {
	Date      string
	Groups    []YearGroup
	Snapshot  map[string]bool
	Present   int
	Absent    int
	Unmarked  int
	Summary   attendance.Summary
	ShareLink string
}

// AttendanceSheetDeps holds dependencies for QueryAttendanceSheet.
type AttendanceSheetDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	Now             func() time.Time
}

// QueryAttendanceSheet loads the roster grouped by year, joined with the date's marks.
// PRE: query.Date is empty or YYYY-MM-DD
// POST: groups ordered IV, III, II, I then Other; empty groups omitted; rows sorted by name
func QueryAttendanceSheet(ctx context.Context, query AttendanceSheetQuery, deps AttendanceSheetDeps) (AttendanceSheetResult, error) {
	date := query.Date
	if date == "" {
		date = deps.Now().Format(attendance.DateLayout)
	}
	if _, err := attendance.ParseDate(date); err != nil {
		return AttendanceSheetResult{}, err
	}

	roster, err := deps.MemberStore.List(ctx)
	if err != nil {
		return AttendanceSheetResult{}, err
	}
	records, err := deps.AttendanceStore.ListByDate(ctx, date)
	if err != nil {
		return AttendanceSheetResult{}, err
	}
	marks := attendance.Marks(records)

	byYear := make(map[string][]SheetRow)
	res := AttendanceSheetResult{Date: date, Snapshot: make(map[string]bool, len(marks))}
	for _, m := range roster {
		present, marked := marks[m.ID]
		year := m.AcademicYear
		if !member.IsValidYear(year) {
			year = member.YearOther
		}
		byYear[year] = append(byYear[year], SheetRow{Member: m, Present: present, Marked: marked})
		switch {
		case !marked:
			res.Unmarked++
		case present:
			res.Present++
		default:
			res.Absent++
		}
		if marked {
			res.Snapshot[m.ID] = present
		}
	}
	for _, year := range yearGroupOrder {
		rows := byYear[year]
		if len(rows) == 0 {
			continue
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Member.Name) < strings.ToLower(rows[j].Member.Name)
		})
		res.Groups = append(res.Groups, YearGroup{Year: year, Rows: rows})
	}

	if len(res.Snapshot) > 0 {
		res.Summary = attendance.BuildSummary(date, roster, res.Snapshot)
		res.ShareLink = res.Summary.WhatsAppLink()
	}
	return res, nil
}
