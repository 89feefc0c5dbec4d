package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// SendReminders notifies customers whose confirmed booking starts in
// [now+lead, now+lead+window). Run it every window.
type SendReminders struct {
	repo     domain.Repository
	dir      domain.Directory
	notifier Notifier
	lead     time.Duration
	window   time.Duration
	now      Clock
}

func NewSendReminders(
	repo domain.Repository,
	dir domain.Directory,
	notifier Notifier,
	lead time.Duration,
	window time.Duration,
) *SendReminders {
	return &SendReminders{
		repo:     repo,
		dir:      dir,
		notifier: notifier,
		lead:     lead,
		window:   window,
		now:      time.Now,
	}
}

func (uc *SendReminders) WithClock(now Clock) *SendReminders {
	uc.now = now
	return uc
}

func (uc *SendReminders) Execute(ctx context.Context) (int, error) {
	now := uc.now().UTC()
	from := now.Add(uc.lead)
	to := from.Add(uc.window)

	// booking dates are provider-local; a day either side covers every zone
	list, err := uc.repo.ListBookings(ctx, domain.ListFilter{
		FromDate: from.AddDate(0, 0, -1).Format(timezone.DateLayout),
		ToDate:   to.AddDate(0, 0, 1).Format(timezone.DateLayout),
		Statuses: []domain.Status{domain.StatusConfirmed},
	})
	if err != nil {
		return 0, err
	}

	zones := map[string]*time.Location{}
	sent := 0

	for i := range list {
		b := &list[i]

		loc, err := uc.locationFor(ctx, zones, b.AssigneeID)
		if err != nil {
			logger.L().Warn("reminder skipped: provider unresolved",
				zap.String("booking_id", b.ID),
				zap.String("provider_id", b.AssigneeID),
				zap.Error(err),
			)
			continue
		}

		startsAt, err := startOf(b, loc)
		if err != nil {
			continue
		}
		if startsAt.Before(from) || !startsAt.Before(to) {
			continue
		}

		uc.notifier.Notify(ctx, notificationFor(b, b.CustomerID, notify.EventReminder, ""))
		sent++
	}

	return sent, nil
}

func (uc *SendReminders) locationFor(
	ctx context.Context,
	cache map[string]*time.Location,
	providerID string,
) (*time.Location, error) {

	if loc, ok := cache[providerID]; ok {
		return loc, nil
	}

	p, err := uc.dir.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	var shop *models.Shop
	if p.ShopID != nil && !timezone.IsValid(p.Timezone) {
		if s, err := uc.dir.GetShop(ctx, *p.ShopID); err == nil {
			shop = s
		}
	}

	loc := timezone.Location(domain.TimezoneFor(p, shop))
	cache[providerID] = loc
	return loc, nil
}

func startOf(b *models.Booking, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(timezone.DateLayout, b.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(b.StartMinute) * time.Minute), nil
}
