package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type AvailabilityInput struct {
	ProviderID string
	Date       string
	ServiceID  string
}

// GetAvailability composes schedule, occupancy and slot generation.
// Results are advisory; Reserve re-checks at commit.
type GetAvailability struct {
	repo domain.Repository
	dir  domain.Directory
	step int
	now  Clock
}

func NewGetAvailability(
	repo domain.Repository,
	dir domain.Directory,
	step int,
) *GetAvailability {
	if step <= 0 {
		step = domain.DefaultStepMinutes
	}
	return &GetAvailability{
		repo: repo,
		dir:  dir,
		step: step,
		now:  time.Now,
	}
}

func (uc *GetAvailability) WithClock(now Clock) *GetAvailability {
	uc.now = now
	return uc
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*dto.AvailabilityDTO, error) {

	provider, err := uc.dir.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.Active {
		return nil, httperr.NotFound("provider_not_found")
	}

	// without a service the grid step doubles as the span
	duration := uc.step
	if in.ServiceID != "" {
		service, err := uc.dir.GetService(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if err := checkServiceOffered(service, provider); err != nil {
			return nil, err
		}
		duration = service.DurationMinutes
	}

	sched, shop, err := domain.ScheduleFor(ctx, uc.dir, provider)
	if err != nil {
		return nil, err
	}

	tz := domain.TimezoneFor(provider, shop)
	date, err := timezone.ParseDate(tz, in.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date")
	}
	dateKey := date.Format(timezone.DateLayout)
	day := domain.WeekdayOf(date)

	window, err := sched.ForDay(day)
	if err != nil {
		return nil, err
	}

	out := &dto.AvailabilityDTO{
		ProviderID:      provider.ID,
		Date:            dateKey,
		Weekday:         string(day),
		Open:            !window.IsClosed(),
		DurationMinutes: duration,
		StepMinutes:     uc.step,
		Slots:           []domain.TimeSlot{},
	}

	now := uc.now().In(timezone.Location(tz))
	if window.IsClosed() || dateKey < now.Format(timezone.DateLayout) {
		return out, nil
	}

	spans, err := uc.repo.ListActiveSpans(ctx, provider.ID, dateKey)
	if err != nil {
		return nil, err
	}

	for _, s := range domain.GenerateSlots(window, duration, uc.step, domain.NewOccupancy(spans)) {
		if isPast(dateKey, s.MinuteOfDay(), now) {
			continue
		}
		out.Slots = append(out.Slots, s)
	}

	return out, nil
}
