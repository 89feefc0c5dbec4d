package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const jobTimeout = 2 * time.Minute

type ReminderRunner interface {
	Execute(ctx context.Context) (int, error)
}

type LedgerRunner interface {
	Execute(ctx context.Context, date string) (int, error)
}

// Scheduler runs the periodic booking jobs. Either runner may be nil,
// in which case its job is not registered.
type Scheduler struct {
	cron     *cron.Cron
	log      *zap.Logger
	reminder ReminderRunner
	ledger   LedgerRunner
	now      func() time.Time
}

func NewScheduler(
	reminder ReminderRunner,
	ledger LedgerRunner,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(timezone.Location(timezone.DefaultTimezone))),
		log:      log,
		reminder: reminder,
		ledger:   ledger,
		now:      time.Now,
	}
}

// Register adds the jobs with their cron expressions.
func (s *Scheduler) Register(reminderExpr, ledgerExpr string) error {
	if s.reminder != nil {
		if _, err := s.cron.AddFunc(reminderExpr, s.runReminders); err != nil {
			return err
		}
	}
	if s.ledger != nil {
		if _, err := s.cron.AddFunc(ledgerExpr, s.runLedger); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("job scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("job scheduler stop timed out")
	}
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.reminder.Execute(ctx)
	if err != nil {
		s.log.Error("reminder job failed", zap.Error(err))
		return
	}
	if sent > 0 {
		s.log.Info("reminders sent", zap.Int("count", sent))
	}
}

func (s *Scheduler) runLedger() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	date := PreviousDay(s.now())
	n, err := s.ledger.Execute(ctx, date)
	if err != nil {
		s.log.Error("ledger export failed", zap.String("date", date), zap.Error(err))
		return
	}
	s.log.Info("ledger exported", zap.String("date", date), zap.Int("bookings", n))
}

// PreviousDay is the calendar day before now in the default timezone.
func PreviousDay(now time.Time) string {
	local := now.In(timezone.Location(timezone.DefaultTimezone))
	return local.AddDate(0, 0, -1).Format(timezone.DateLayout)
}
