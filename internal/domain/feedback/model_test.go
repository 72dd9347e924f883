package feedback_test

import (
	"strings"
	"testing"

	"sgc/internal/domain/feedback"
)

func validFeedback() feedback.Feedback {
	return feedback.Feedback{
		ID:      "f1",
		Name:    "Ravi",
		Email:   "ravi@example.com",
		Type:    feedback.TypeSuggestion,
		Message: "More weekend sessions please",
		Status:  feedback.StatusPending,
	}
}

// TestFeedbackValidation tests validation of Feedback.
func TestFeedbackValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *feedback.Feedback)
		wantErr error
	}{
		{name: "valid", mutate: func(f *feedback.Feedback) {}},
		{name: "empty name", mutate: func(f *feedback.Feedback) { f.Name = "" }, wantErr: feedback.ErrEmptyName},
		{name: "bad email", mutate: func(f *feedback.Feedback) { f.Email = "ravi" }, wantErr: feedback.ErrInvalidEmail},
		{name: "blank message", mutate: func(f *feedback.Feedback) { f.Message = " \n" }, wantErr: feedback.ErrEmptyMessage},
		{name: "unknown status", mutate: func(f *feedback.Feedback) { f.Status = "closed" }, wantErr: feedback.ErrInvalidStatus},
		{name: "5000 Tamil letters fit", mutate: func(f *feedback.Feedback) { f.Message = strings.Repeat("அ", 5000) }},
		{name: "message too long", mutate: func(f *feedback.Feedback) { f.Message = strings.Repeat("அ", 5001) }, wantErr: feedback.ErrMessageTooLong},
		{name: "multibyte name fits", mutate: func(f *feedback.Feedback) { f.Name = strings.Repeat("ñ", 100) }},
		{name: "name too long", mutate: func(f *feedback.Feedback) { f.Name = strings.Repeat("ñ", 101) }, wantErr: feedback.ErrNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFeedback()
			tt.mutate(&f)
			if err := f.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	f := validFeedback()
	for _, s := range feedback.ValidStatuses {
		if err := f.SetStatus(s); err != nil || f.Status != s {
			t.Errorf("SetStatus(%s) = %v, status %s", s, err, f.Status)
		}
	}
	if err := f.SetStatus("archived"); err != feedback.ErrInvalidStatus {
		t.Errorf("SetStatus(archived) = %v", err)
	}
	if f.Status != feedback.StatusRejected {
		t.Errorf("failed SetStatus changed status to %s", f.Status)
	}
}

func TestMatches(t *testing.T) {
	f := validFeedback()
	for _, q := range []string{"", "RAVI", "weekend", "suggestion", "example.com", "pending"} {
		if !f.Matches(q) {
			t.Errorf("Matches(%q) = false", q)
		}
	}
	if f.Matches("complaint") {
		t.Error("Matches(complaint) = true")
	}
}

func TestNormalizeType(t *testing.T) {
	if got := feedback.NormalizeType(" Bug "); got != feedback.TypeBug {
		t.Errorf("NormalizeType(Bug) = %s", got)
	}
	if got := feedback.NormalizeType("praise"); got != feedback.TypeOther {
		t.Errorf("NormalizeType(praise) = %s", got)
	}
}
