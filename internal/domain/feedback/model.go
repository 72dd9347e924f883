package feedback

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 100
	MaxMessageLength = 5000
)

// Status constants
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Type constants offered by the public form.
const (
	TypeGeneral    = "general"
	TypeSuggestion = "suggestion"
	TypeComplaint  = "complaint"
	TypeBug        = "bug"
	TypeOther      = "other"
)

// ValidStatuses lists statuses in triage order.
var ValidStatuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Types lists the form's feedback types.
var Types = []string{TypeGeneral, TypeSuggestion, TypeComplaint, TypeBug, TypeOther}

// Domain errors
var (
	ErrNotFound      = errors.New("feedback not found")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyMessage  = errors.New("message cannot be empty")
	ErrInvalidStatus = errors.New("status must be one of: pending, in-progress, resolved, rejected")

	ErrNameTooLong    = errors.New("name cannot exceed 100 characters")
	ErrMessageTooLong = errors.New("message cannot exceed 5000 characters")
)

// Feedback is a visitor submission triaged by admins.
type Feedback struct {
	ID        string
	CreatedAt time.Time
	Name      string
	Email     string
	Type      string
	Message   string
	Status    string
}

// Validate checks if the Feedback has valid data.
// PRE: Feedback struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(f.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(f.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(f.Message) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(f.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !IsValidStatus(f.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// SetStatus moves the feedback to status. Any status may follow any other.
func (f *Feedback) SetStatus(status string) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	f.Status = status
	return nil
}

// Matches reports whether any text field contains query, case-insensitive.
func (f *Feedback) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{f.Name, f.Email, f.Type, f.Message, f.Status} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether status is a known feedback status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// NormalizeType maps unknown or empty types to TypeOther.
func NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	for _, known := range Types {
		if known == t {
			return t
		}
	}
	return TypeOther
}
