package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"sgc/internal/domain/attendance"
	"sgc/internal/domain/member"
)

// DefaultThreshold is the attendance percentage below which a member is flagged.
const DefaultThreshold = 75.0

// MonthLayout is the format of a month key.
const MonthLayout = "2006-01"

// NoRecordsLabel is shown instead of a percentage when a month has no working days.
const NoRecordsLabel = "No Records"

// ErrInvalidMonth is returned for a month key that is not YYYY-MM.
var ErrInvalidMonth = errors.New("month must be YYYY-MM")

// Options controls how a monthly report is computed.
type Options struct {
	// WeekdaysOnly drops Saturday and Sunday dates from the working-day set.
	WeekdaysOnly bool
	// Threshold is the percentage below which BelowThreshold is set.
	Threshold float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

// MemberMonth is one member's aggregated attendance for one month.
// INVARIANT: Present + Absent == WorkingDays
type MemberMonth struct {
	MemberID       string
	Name           string
	Department     string
	Role           string
	AcademicYear   string
	Month          string
	WorkingDays    int
	Present        int
	Absent         int
	Percentage     float64
	AbsentDates    []string
	BelowThreshold bool
}

// ChartBar is one bar pair in the monthly chart.
type ChartBar struct {
	Name    string
	Present int
	Absent  int
}

// Monthly is the report for one month across the roster.
type Monthly struct {
	Month       string
	WorkingDays int
	Rows        []MemberMonth
	Chart       []ChartBar
}

// MonthKey returns the YYYY-MM key of a YYYY-MM-DD date.
func MonthKey(date string) string {
	if len(date) < len(MonthLayout) {
		return ""
	}
	return date[:len(MonthLayout)]
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthLabel renders a month key for display, e.g. "May 2024".
func MonthLabel(month string) string {
	t, err := ParseMonth(month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// PreviousMonth returns the key of the month before the one containing now.
func PreviousMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format(MonthLayout)
}

// Months returns the distinct month keys present in records, ascending.
func Months(records []attendance.Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if k := MonthKey(r.Date); k != "" {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WorkingDays returns the sorted distinct dates in month that carry at least
// one attendance row. With weekdaysOnly, Saturday and Sunday are excluded.
func WorkingDays(records []attendance.Record, month string, weekdaysOnly bool) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if MonthKey(r.Date) != month {
			continue
		}
		if weekdaysOnly && isWeekend(r.Date) {
			continue
		}
		seen[r.Date] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func isWeekend(date string) bool {
	t, err := attendance.ParseDate(date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// BuildMonthly aggregates one month of attendance for every roster member.
// Members without rows in the month are reported absent on every working day.
// PRE: month is a YYYY-MM key
// POST: one row per roster member, in roster order; Present + Absent == WorkingDays
func BuildMonthly(month string, records []attendance.Record, roster []member.Member, opts Options) Monthly {
	days := WorkingDays(records, month, opts.WeekdaysOnly)
	working := make(map[string]struct{}, len(days))
	for _, d := range days {
		working[d] = struct{}{}
	}

	present := make(map[string]map[string]struct{})
	for _, r := range records {
		if !r.IsPresent {
			continue
		}
		if _, ok := working[r.Date]; !ok {
			continue
		}
		if present[r.MemberID] == nil {
			present[r.MemberID] = make(map[string]struct{})
		}
		present[r.MemberID][r.Date] = struct{}{}
	}

	sorted := make([]member.Member, len(roster))
	copy(sorted, roster)
	member.SortRoster(sorted)

	report := Monthly{Month: month, WorkingDays: len(days)}
	for _, m := range sorted {
		row := aggregate(m, month, days, present[m.ID], opts.Threshold)
		report.Rows = append(report.Rows, row)
		report.Chart = append(report.Chart, ChartBar{Name: m.Name, Present: row.Present, Absent: row.Absent})
	}
	return report
}

func aggregate(m member.Member, month string, days []string, presentOn map[string]struct{}, threshold float64) MemberMonth {
	row := MemberMonth{
		MemberID:     m.ID,
		Name:         m.Name,
		Department:   m.Department,
		Role:         m.Role,
		AcademicYear: m.AcademicYear,
		Month:        month,
		WorkingDays:  len(days),
		AbsentDates:  []string{},
	}
	for _, d := range days {
		if _, ok := presentOn[d]; ok {
			row.Present++
			continue
		}
		row.AbsentDates = append(row.AbsentDates, d)
	}
	row.Absent = row.WorkingDays - row.Present
	row.Percentage = Percent(row.Present, row.WorkingDays)
	row.BelowThreshold = row.WorkingDays > 0 && row.Percentage < threshold
	return row
}

// Percent returns present/workingDays×100, or 0 when there are no working days.
func Percent(present, workingDays int) float64 {
	if workingDays == 0 {
		return 0
	}
	return float64(present) / float64(workingDays) * 100
}

// FormatPercent renders a percentage with two decimals, e.g. "66.67%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// Label renders a row's percentage, or NoRecordsLabel when the month has no working days.
func Label(m MemberMonth) string {
	if m.WorkingDays == 0 {
		return NoRecordsLabel
	}
	return FormatPercent(m.Percentage)
}

// Filter returns the rows whose name, department or role contain query, case-insensitive.
func (r Monthly) Filter(query string) []MemberMonth {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.Rows
	}
	var out []MemberMonth
	for _, row := range r.Rows {
		if strings.Contains(strings.ToLower(row.Name), q) ||
			strings.Contains(strings.ToLower(row.Department), q) ||
			strings.Contains(strings.ToLower(row.Role), q) {
			out = append(out, row)
		}
	}
	return out
}

// BelowThreshold returns the flagged rows.
func (r Monthly) BelowThreshold() []MemberMonth {
	var out []MemberMonth
	for _, row := range r.Rows {
		if row.BelowThreshold {
			out = append(out, row)
		}
	}
	return out
}

// History is one member's attendance across every recorded month.
type History struct {
	Months []MemberMonth
	Totals MemberMonth
}

// BuildMemberHistory aggregates a member's attendance for every month that has
// any attendance rows, newest first, plus overall totals.
// PRE: records covers every member so working days are computed organisation-wide
func BuildMemberHistory(m member.Member, records []attendance.Record, opts Options) History {
	var h History
	months := Months(records)
	for i := len(months) - 1; i >= 0; i-- {
		monthly := BuildMonthly(months[i], records, []member.Member{m}, opts)
		if len(monthly.Rows) == 0 || monthly.WorkingDays == 0 {
			continue
		}
		h.Months = append(h.Months, monthly.Rows[0])
	}

	h.Totals = MemberMonth{
		MemberID:     m.ID,
		Name:         m.Name,
		Department:   m.Department,
		Role:         m.Role,
		AcademicYear: m.AcademicYear,
		AbsentDates:  []string{},
	}
	for _, mm := range h.Months {
		h.Totals.WorkingDays += mm.WorkingDays
		h.Totals.Present += mm.Present
		h.Totals.Absent += mm.Absent
		h.Totals.AbsentDates = append(h.Totals.AbsentDates, mm.AbsentDates...)
	}
	sort.Strings(h.Totals.AbsentDates)
	h.Totals.Percentage = Percent(h.Totals.Present, h.Totals.WorkingDays)
	h.Totals.BelowThreshold = h.Totals.WorkingDays > 0 && h.Totals.Percentage < opts.Threshold
	return h
}
