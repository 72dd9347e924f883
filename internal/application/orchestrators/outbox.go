package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sgc/internal/adapters/email"
	"sgc/internal/adapters/telegram"
	domain "sgc/internal/domain/outbox"
)

// OutboxStore defines the store interface needed by the outbox processor.
type OutboxStore interface {
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)
}

// OutboxStoreForEnqueue is the write side used by commands that notify someone.
type OutboxStoreForEnqueue interface {
	Save(ctx context.Context, e domain.Entry) error
}

// Dispatcher delivers one entry's payload on its channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, entry domain.Entry) error
}

// OutboxProcessor delivers queued notifications with exponential backoff.
type OutboxProcessor struct {
	store       OutboxStore
	dispatchers map[string]Dispatcher
	baseDelay   time.Duration
	maxDelay    time.Duration
	batchSize   int
	now         func() time.Time
}

// NewOutboxProcessor creates a processor for the given channel dispatchers.
func NewOutboxProcessor(store OutboxStore, dispatchers map[string]Dispatcher) *OutboxProcessor {
	return &OutboxProcessor{
		store:       store,
		dispatchers: dispatchers,
		baseDelay:   30 * time.Second,
		maxDelay:    1 * time.Hour,
		batchSize:   10,
		now:         time.Now,
	}
}

// ProcessPending delivers the oldest due entries.
// PRE: Context is valid
// POST: each due entry is attempted once and saved with its new status
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.now(), p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}
	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "channel", entry.Channel, "error", err.Error())
		}
	}
	return nil
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	now := p.now()
	if !entry.IsDue(now, p.baseDelay, p.maxDelay) || !entry.CanRetry() {
		return nil
	}

	entry.MarkAttempt(now)
	dispatcher, ok := p.dispatchers[entry.Channel]
	if !ok {
		entry.MaxAttempts = entry.Attempts
		entry.MarkFailed(fmt.Errorf("no dispatcher registered for channel: %s", entry.Channel))
		return p.store.Save(ctx, entry)
	}

	if err := dispatcher.Dispatch(ctx, entry); err != nil {
		entry.MarkFailed(err)
		entry.ScheduleRetry(p.baseDelay, p.maxDelay)
		slog.Warn("outbox_dispatch_failed", "entry_id", entry.ID, "channel", entry.Channel, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess()
		entry.ScheduleRetry(p.baseDelay, p.maxDelay)
		slog.Info("outbox_dispatched", "entry_id", entry.ID, "channel", entry.Channel, "attempt", entry.Attempts)
	}
	return p.store.Save(ctx, entry)
}

// EmailDispatcher sends email entries through an email.Sender.
type EmailDispatcher struct {
	Sender email.Sender
}

// Dispatch implements Dispatcher.
// PRE: entry.Payload decodes as outbox.EmailPayload
func (d EmailDispatcher) Dispatch(ctx context.Context, entry domain.Entry) error {
	p, err := entry.DecodeEmail()
	if err != nil {
		return fmt.Errorf("decode email payload: %w", err)
	}
	id, err := d.Sender.Send(ctx, email.Message{
		To:      []string{p.To},
		Subject: p.Subject,
		HTML:    p.HTML,
		Text:    p.Text,
	})
	if err != nil {
		return err
	}
	slog.Debug("outbox_email_sent", "entry_id", entry.ID, "message_id", id)
	return nil
}

// TelegramDispatcher posts telegram entries through a telegram.Sender.
type TelegramDispatcher struct {
	Sender telegram.Sender
}

// Dispatch implements Dispatcher.
// PRE: entry.Payload decodes as outbox.TelegramPayload
func (d TelegramDispatcher) Dispatch(ctx context.Context, entry domain.Entry) error {
	p, err := entry.DecodeTelegram()
	if err != nil {
		return fmt.Errorf("decode telegram payload: %w", err)
	}
	return d.Sender.Send(ctx, p.ChatID, p.Text)
}

// enqueue stores a pending notification for the background worker.
func enqueue(ctx context.Context, store OutboxStoreForEnqueue, id, channel string, payload any, now time.Time) error {
	entry, err := domain.NewEntry(id, channel, payload, now)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, entry); err != nil {
		return fmt.Errorf("enqueue %s: %w", channel, err)
	}
	slog.Info("outbox_enqueued", "entry_id", id, "channel", channel)
	return nil
}

// StartBackgroundWorker periodically delivers pending outbox entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				if err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_worker_error", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_worker_stopped")
				return
			}
		}
	}()
}
