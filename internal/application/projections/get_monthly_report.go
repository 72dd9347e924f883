package projections

import (
	"context"
	"sort"

	"sgc/internal/domain/report"
)

// MonthlyReportQuery selects a month and filters its rows. Empty Month means the latest month with records.
type MonthlyReportQuery struct {
	Month  string
	Search string
}

// MonthlyReportResult carries the report page.
type MonthlyReportResult struct {
	Months         []string // months with records, newest first
	Month          string
	MonthLabel     string
	Report         report.Monthly
	Rows           []report.MemberMonth // Report.Rows filtered by Search
	Search         string
	Threshold      float64
	BelowThreshold int
}

// MonthlyReportDeps holds dependencies for QueryMonthlyReport.
type MonthlyReportDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	Options         report.Options
}

// QueryMonthlyReport builds the monthly report for the selected month.
// PRE: query.Month is empty or YYYY-MM
// POST: with no records at all and no month selected, Month is empty and Rows is nil
func QueryMonthlyReport(ctx context.Context, query MonthlyReportQuery, deps MonthlyReportDeps) (MonthlyReportResult, error) {
	months, err := deps.AttendanceStore.ListMonths(ctx)
	if err != nil {
		return MonthlyReportResult{}, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	res := MonthlyReportResult{Months: months, Search: query.Search, Threshold: deps.Options.Threshold}
	month := query.Month
	if month == "" {
		if len(months) == 0 {
			return res, nil
		}
		month = months[0]
	}
	if _, err := report.ParseMonth(month); err != nil {
		return MonthlyReportResult{}, err
	}

	records, err := deps.AttendanceStore.ListByMonth(ctx, month)
	if err != nil {
		return MonthlyReportResult{}, err
	}
	roster, err := deps.MemberStore.List(ctx)
	if err != nil {
		return MonthlyReportResult{}, err
	}

	res.Month = month
	res.MonthLabel = report.MonthLabel(month)
	res.Report = report.BuildMonthly(month, records, roster, deps.Options)
	res.Rows = res.Report.Filter(query.Search)
	res.BelowThreshold = len(res.Report.BelowThreshold())
	return res, nil
}
