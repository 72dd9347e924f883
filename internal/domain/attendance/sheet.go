package attendance

import "sort"

// Sheet is the editor state for one date: the marks last fetched from the
// store (the snapshot) and the marks as currently edited.
// Members absent from a map are unmarked.
type Sheet struct {
	Date     string
	snapshot map[string]bool
	current  map[string]bool
}

// NewSheet starts an editing session for date from the fetched marks.
// POST: current equals snapshot; ChangeCount() == 0
func NewSheet(date string, snapshot map[string]bool) *Sheet {
	s := &Sheet{
		Date:     date,
		snapshot: make(map[string]bool, len(snapshot)),
		current:  make(map[string]bool, len(snapshot)),
	}
	for id, present := range snapshot {
		s.snapshot[id] = present
		s.current[id] = present
	}
	return s
}

// Mark sets the edited value of a member's cell.
func (s *Sheet) Mark(memberID string, present bool) {
	s.current[memberID] = present
}

// Value returns the edited value of a cell and whether it is marked.
func (s *Sheet) Value(memberID string) (present bool, marked bool) {
	present, marked = s.current[memberID]
	return present, marked
}

// IsChanged reports whether a cell differs from the snapshot.
func (s *Sheet) IsChanged(memberID string) bool {
	cur, marked := s.current[memberID]
	if !marked {
		return false
	}
	orig, had := s.snapshot[memberID]
	return !had || orig != cur
}

// Changed returns the records whose value differs from the snapshot, sorted by member ID.
// Cells that were never marked are not returned.
func (s *Sheet) Changed() []Record {
	var out []Record
	for id, present := range s.current {
		if s.IsChanged(id) {
			out = append(out, Record{MemberID: id, Date: s.Date, IsPresent: present})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out
}

// ChangeCount returns the number of changed cells.
func (s *Sheet) ChangeCount() int {
	n := 0
	for id := range s.current {
		if s.IsChanged(id) {
			n++
		}
	}
	return n
}

// Reconcile makes the edited state the new snapshot after a successful submit.
// POST: ChangeCount() == 0
func (s *Sheet) Reconcile() {
	for id, present := range s.current {
		s.snapshot[id] = present
	}
}

// Counts returns the number of present and absent marks in the edited state.
func (s *Sheet) Counts() (present, absent int) {
	for _, p := range s.current {
		if p {
			present++
		} else {
			absent++
		}
	}
	return present, absent
}
