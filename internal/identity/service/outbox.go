package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
)

// Dispatcher delivers one email. Implementations wrap an SMTP relay or
// provider API; tests substitute a recorder.
type Dispatcher interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// OutboxService drains Pending outbox rows on an interval. Rows are
// marked Sent on delivery; failures bump the attempt counter until the
// row flips to Failed at MaxAttempts.
type OutboxService struct {
	Store       store.Store
	Dispatcher  Dispatcher
	Logger      *slog.Logger
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int

	cancel context.CancelFunc
	done   chan struct{}
}

const (
	defaultOutboxInterval    = 15 * time.Second
	defaultOutboxBatchSize   = 50
	defaultOutboxMaxAttempts = 5
)

// Start launches the drain loop. Call Stop to shut it down.
func (s *OutboxService) Start() {
	if s.Interval <= 0 {
		s.Interval = defaultOutboxInterval
	}
	if s.BatchSize <= 0 {
		s.BatchSize = defaultOutboxBatchSize
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaultOutboxMaxAttempts
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Drain(ctx); err != nil {
					s.Logger.Error("outbox drain failed", slog.Any("error", err))
				}
			}
		}
	}()

	s.Logger.Info("outbox dispatcher started", slog.Duration("interval", s.Interval))
}

// Stop cancels the loop and waits for the in-flight drain to finish.
func (s *OutboxService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.Logger.Info("outbox dispatcher stopped")
}

// Drain delivers one batch of Pending rows. Exported so tests and
// cron-style deployments can pump the outbox without the loop.
func (s *OutboxService) Drain(ctx context.Context) error {
	pending, err := s.Store.Outbox().ListPendingEmails(ctx, s.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range pending {
		if err := s.deliver(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

func (s *OutboxService) deliver(ctx context.Context, msg domain.EmailMessage) error {
	if err := s.Dispatcher.Send(ctx, msg.Recipient, msg.Subject, msg.Body); err != nil {
		s.Logger.Warn("email delivery failed",
			slog.String("email_id", msg.ID),
			slog.Int("attempts", msg.Attempts+1),
			slog.Any("error", err),
		)
		return s.Store.Outbox().MarkEmailFailed(ctx, msg.ID, s.MaxAttempts)
	}
	return s.Store.Outbox().MarkEmailSent(ctx, msg.ID, time.Now().UTC())
}
