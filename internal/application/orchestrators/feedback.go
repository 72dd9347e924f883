package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"sgc/internal/domain/feedback"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
)

// FeedbackStoreForSubmit defines the store interface needed by SubmitFeedback.
type FeedbackStoreForSubmit interface {
	Save(ctx context.Context, f feedback.Feedback) error
}

// AdminLister lists members holding any of roles.
type AdminLister interface {
	ListByRoles(ctx context.Context, roles []string) ([]member.Member, error)
}

// SubmitFeedbackInput carries a visitor's submission.
type SubmitFeedbackInput struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Type    string
	Message string `validate:"required,max=5000"`
}

// SubmitFeedbackDeps holds dependencies for SubmitFeedback.
// RenderMarkdown turns the message into the HTML body of the admin notification.
type SubmitFeedbackDeps struct {
	FeedbackStore  FeedbackStoreForSubmit
	MemberStore    AdminLister
	OutboxStore    OutboxStoreForEnqueue
	RenderMarkdown func(string) string
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteSubmitFeedback records feedback and notifies every admin by email.
// POST: feedback saved with status pending; one email entry queued per admin with an email
// INVARIANT: a failure to queue a notification does not lose the feedback
func ExecuteSubmitFeedback(ctx context.Context, input SubmitFeedbackInput, deps SubmitFeedbackDeps) (feedback.Feedback, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Message = strings.TrimSpace(input.Message)
	if err := validateInput(input); err != nil {
		return feedback.Feedback{}, err
	}

	f := feedback.Feedback{
		ID:        deps.GenerateID(),
		CreatedAt: deps.Now(),
		Name:      input.Name,
		Email:     input.Email,
		Type:      feedback.NormalizeType(input.Type),
		Message:   input.Message,
		Status:    feedback.StatusPending,
	}
	if err := f.Validate(); err != nil {
		return feedback.Feedback{}, err
	}
	if err := deps.FeedbackStore.Save(ctx, f); err != nil {
		return feedback.Feedback{}, err
	}
	slog.Info("feedback_submitted", "feedback_id", f.ID, "type", f.Type)

	if err := notifyAdminsOfFeedback(ctx, f, deps); err != nil {
		slog.Error("feedback_notify_failed", "feedback_id", f.ID, "error", err.Error())
	}
	return f, nil
}

func notifyAdminsOfFeedback(ctx context.Context, f feedback.Feedback, deps SubmitFeedbackDeps) error {
	admins, err := deps.MemberStore.ListByRoles(ctx, member.AdminRoles)
	if err != nil {
		return err
	}
	body := html.EscapeString(f.Message)
	if deps.RenderMarkdown != nil {
		body = deps.RenderMarkdown(f.Message)
	}
	payload := outbox.EmailPayload{
		Subject: fmt.Sprintf("New %s feedback from %s", f.Type, f.Name),
		HTML: fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; sent %s feedback:</p>\n%s",
			html.EscapeString(f.Name), html.EscapeString(f.Email), html.EscapeString(f.Type), body),
		Text: fmt.Sprintf("%s <%s> sent %s feedback:\n\n%s", f.Name, f.Email, f.Type, f.Message),
	}
	for _, a := range admins {
		if a.Email == "" {
			continue
		}
		payload.To = a.Email
		if err := enqueue(ctx, deps.OutboxStore, deps.GenerateID(), outbox.ChannelEmail, payload, deps.Now()); err != nil {
			return err
		}
	}
	return nil
}

// FeedbackStoreForTriage defines the store interface needed by the console commands.
type FeedbackStoreForTriage interface {
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// FeedbackTriageDeps holds dependencies for the feedback console commands.
type FeedbackTriageDeps struct {
	FeedbackStore FeedbackStoreForTriage
}

// UpdateFeedbackStatusInput carries a status change.
type UpdateFeedbackStatusInput struct {
	ID     string `validate:"required"`
	Status string `validate:"required,feedbackstatus"`
}

// ExecuteUpdateFeedbackStatus moves feedback to a new status.
// POST: unknown ID yields feedback.ErrNotFound
func ExecuteUpdateFeedbackStatus(ctx context.Context, input UpdateFeedbackStatusInput, deps FeedbackTriageDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.FeedbackStore.UpdateStatus(ctx, input.ID, input.Status); err != nil {
		return err
	}
	slog.Info("feedback_status_changed", "feedback_id", input.ID, "status", input.Status)
	return nil
}

// DeleteFeedbackInput names the feedback to delete.
type DeleteFeedbackInput struct {
	ID string `validate:"required"`
}

// ExecuteDeleteFeedback permanently removes feedback.
// PRE: the caller has confirmed the deletion
func ExecuteDeleteFeedback(ctx context.Context, input DeleteFeedbackInput, deps FeedbackTriageDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.FeedbackStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("feedback_deleted", "feedback_id", input.ID)
	return nil
}
