package outbox

import (
	"encoding/json"
	"errors"
	"time"
)

// Status constants for the entry lifecycle.
const (
	StatusPending  = "pending"
	StatusRetrying = "retrying"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

// Delivery channels.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// DefaultMaxAttempts is applied when an entry does not set MaxAttempts.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrInvalidChannel = errors.New("channel must be one of: email, telegram")
	ErrEmptyPayload   = errors.New("payload is required")
	ErrNotFound       = errors.New("outbox entry not found")
)

// Entry is one queued outbound notification.
type Entry struct {
	ID              string
	Channel         string
	Payload         string // JSON; EmailPayload or TelegramPayload depending on Channel
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	NextAttemptAt   time.Time // zero means due now
	CreatedAt       time.Time
	ErrorMessage    string
}

// EmailPayload is the payload of an email entry.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// TelegramPayload is the payload of a telegram entry.
// A zero ChatID means the configured group chat.
type TelegramPayload struct {
	ChatID int64  `json:"chat_id,omitempty"`
	Text   string `json:"text"`
}

// NewEntry builds a pending entry carrying payload encoded as JSON.
// POST: Status is pending; MaxAttempts is DefaultMaxAttempts
func NewEntry(id, channel string, payload any, now time.Time) (Entry, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:          id,
		Channel:     channel,
		Payload:     string(b),
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
	}
	return e, e.Validate()
}

// Validate checks that the Entry has valid data.
// POST: MaxAttempts defaults to DefaultMaxAttempts when unset
func (e *Entry) Validate() error {
	if e.Channel != ChannelEmail && e.Channel != ChannelTelegram {
		return ErrInvalidChannel
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// DecodeEmail decodes the payload of an email entry.
func (e *Entry) DecodeEmail() (EmailPayload, error) {
	var p EmailPayload
	err := json.Unmarshal([]byte(e.Payload), &p)
	return p, err
}

// DecodeTelegram decodes the payload of a telegram entry.
func (e *Entry) DecodeTelegram() (TelegramPayload, error) {
	var p TelegramPayload
	err := json.Unmarshal([]byte(e.Payload), &p)
	return p, err
}

// CanRetry reports whether the entry may be dispatched again.
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying) && e.Attempts < e.MaxAttempts
}

// IsDue reports whether the backoff delay since the last attempt has elapsed.
func (e *Entry) IsDue(now time.Time, baseDelay, maxDelay time.Duration) bool {
	if e.Attempts == 0 || e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(baseDelay, maxDelay)))
}

// MarkAttempt records a dispatch attempt.
// POST: Attempts incremented, LastAttemptedAt = now, Status = retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry as delivered.
func (e *Entry) MarkSuccess() {
	e.Status = StatusDone
	e.ErrorMessage = ""
}

// MarkFailed records a failed attempt.
// POST: Status becomes failed once Attempts reaches MaxAttempts, otherwise stays retrying
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// ScheduleRetry sets NextAttemptAt from the backoff after a failed attempt.
// POST: a retrying entry is due at LastAttemptedAt + NextRetryDelay; other statuses clear NextAttemptAt
func (e *Entry) ScheduleRetry(baseDelay, maxDelay time.Duration) {
	if e.Status != StatusRetrying {
		e.NextAttemptAt = time.Time{}
		return
	}
	e.NextAttemptAt = e.LastAttemptedAt.Add(e.NextRetryDelay(baseDelay, maxDelay))
}

// NextRetryDelay returns 2^(Attempts-1) × baseDelay, capped at maxDelay.
func (e *Entry) NextRetryDelay(baseDelay, maxDelay time.Duration) time.Duration {
	n := e.Attempts - 1
	if n < 0 {
		n = 0
	}
	if n > 20 {
		return maxDelay
	}
	delay := baseDelay * (1 << n)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
