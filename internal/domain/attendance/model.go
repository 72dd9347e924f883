package attendance

import (
	"errors"
	"time"
)

// DateLayout is the storage and wire format for attendance dates.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrEmptyMember = errors.New("attendance must be associated with a member")
	ErrInvalidDate = errors.New("attendance date must be YYYY-MM-DD")
	ErrNoChanges   = errors.New("no changes to submit")
	ErrUnknownCell = errors.New("attendance cell refers to an unknown member")
)

// Record is one member's presence on one date.
// INVARIANT: at most one Record exists per (MemberID, Date)
type Record struct {
	MemberID  string
	Date      string // YYYY-MM-DD
	IsPresent bool
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Record) Validate() error {
	if r.MemberID == "" {
		return ErrEmptyMember
	}
	if _, err := ParseDate(r.Date); err != nil {
		return err
	}
	return nil
}

// Time returns the record's date as a time at UTC midnight.
// PRE: Date is valid
func (r *Record) Time() time.Time {
	t, _ := ParseDate(r.Date)
	return t
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
