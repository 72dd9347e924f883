package attendance

import (
	"fmt"
	"net/url"
	"strings"

	"sgc/internal/domain/member"
)

// WhatsAppBaseURL is the deep-link prefix for sharing text to WhatsApp.
const WhatsAppBaseURL = "https://wa.me/?text="

// SummaryLine is one member as listed in a daily summary.
type SummaryLine struct {
	Name         string
	AcademicYear string
}

// Summary is the shareable report of one date's marks.
type Summary struct {
	Date    string
	Present []SummaryLine
	Absent  []SummaryLine
}

// BuildSummary lists the members marked on date in roster order.
// Members without a mark are left out of both lists.
func BuildSummary(date string, roster []member.Member, marks map[string]bool) Summary {
	sorted := append([]member.Member(nil), roster...)
	member.SortRoster(sorted)
	s := Summary{Date: date}
	for _, m := range sorted {
		present, marked := marks[m.ID]
		if !marked {
			continue
		}
		line := SummaryLine{Name: m.Name, AcademicYear: m.AcademicYear}
		if present {
			s.Present = append(s.Present, line)
		} else {
			s.Absent = append(s.Absent, line)
		}
	}
	return s
}

// Marks indexes records by member ID.
func Marks(records []Record) map[string]bool {
	out := make(map[string]bool, len(records))
	for _, r := range records {
		out[r.MemberID] = r.IsPresent
	}
	return out
}

// Text renders the summary as chat-formatted text.
// Empty lists render as "None".
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Attendance Report - %s*\n\n", s.Date)
	fmt.Fprintf(&b, "*Present (%d):*\n%s\n\n", len(s.Present), joinLines(s.Present))
	fmt.Fprintf(&b, "*Absent (%d):*\n%s\n\n", len(s.Absent), joinLines(s.Absent))
	b.WriteString("*Stay consistent and keep learning!*")
	return b.String()
}

// WhatsAppLink returns a wa.me deep link carrying the summary text.
func (s Summary) WhatsAppLink() string {
	return WhatsAppLink(s.Text())
}

// WhatsAppLink percent-encodes text into a wa.me share link.
// Spaces are encoded as %20 so the link matches encodeURIComponent output.
func WhatsAppLink(text string) string {
	return WhatsAppBaseURL + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func joinLines(lines []SummaryLine) string {
	if len(lines) == 0 {
		return "None"
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if l.AcademicYear == "" {
			out[i] = "- " + l.Name
			continue
		}
		out[i] = fmt.Sprintf("- %s (%s Year)", l.Name, l.AcademicYear)
	}
	return strings.Join(out, "\n")
}
