package notify

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ===============================
// Asynq
// ===============================

// AsynqSender enqueues notifications for the delivery workers.
type AsynqSender struct {
	client *asynq.Client
	queue  string
}

func NewAsynqSender(opt asynq.RedisClientOpt) *AsynqSender {
	return &AsynqSender{
		client: asynq.NewClient(opt),
		queue:  "notifications",
	}
}

func (s *AsynqSender) Send(ctx context.Context, n Notification) error {
	task, err := NewNotifyTask(n)
	if err != nil {
		return fmt.Errorf("build task: %w", err)
	}

	if _, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue),
		asynq.MaxRetry(5),
	); err != nil {
		return fmt.Errorf("enqueue %s: %w", n.Event, err)
	}
	return nil
}

func (s *AsynqSender) Close() error {
	return s.client.Close()
}

// ===============================
// Log
// ===============================

// LogSender only logs. Used when no Redis is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info("notification",
		zap.String("event", string(n.Event)),
		zap.String("user_id", n.UserID),
		zap.String("booking_uid", n.BookingUID),
		zap.String("date", n.Date),
		zap.String("time", n.Time),
	)
	return nil
}
