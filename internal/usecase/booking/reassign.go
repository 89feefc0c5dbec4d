package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type ReassignInput struct {
	BookingID     string
	NewProviderID string
	Time          string
}

type ReassignBooking struct {
	repo     domain.Repository
	dir      domain.Directory
	audit    Auditor
	notifier Notifier
	step     int
	now      Clock
}

func NewReassignBooking(
	repo domain.Repository,
	dir domain.Directory,
	audit Auditor,
	notifier Notifier,
	step int,
) *ReassignBooking {
	if step <= 0 {
		step = domain.DefaultStepMinutes
	}
	return &ReassignBooking{
		repo:     repo,
		dir:      dir,
		audit:    audit,
		notifier: notifier,
		step:     step,
		now:      time.Now,
	}
}

func (uc *ReassignBooking) WithClock(now Clock) *ReassignBooking {
	uc.now = now
	return uc
}

func (uc *ReassignBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	in ReassignInput,
) (*dto.BookingDTO, error) {

	start, err := domain.ParseHHMM(in.Time)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1. Booking and ownership
	// --------------------------------------------------
	b, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleShopOwner || b.ShopID == nil {
		return nil, httperr.Forbidden("not_shop_owner")
	}
	shop, err := uc.dir.GetShop(ctx, *b.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != actor.ID {
		return nil, httperr.Forbidden("not_shop_owner")
	}

	from := domain.Status(b.Status)
	if err := domain.Authorize(from, domain.StatusReassigned, []domain.Party{domain.PartyShopOwner}); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. New provider
	// --------------------------------------------------
	provider, err := uc.dir.GetProvider(ctx, in.NewProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.Active || provider.ShopID == nil || *provider.ShopID != shop.ID {
		return nil, httperr.Forbidden("provider_not_in_shop")
	}

	// --------------------------------------------------
	// 3. New provider's window on the booking date
	// --------------------------------------------------
	sched, provShop, err := domain.ScheduleFor(ctx, uc.dir, provider)
	if err != nil {
		return nil, err
	}

	tz := domain.TimezoneFor(provider, provShop)
	date, err := timezone.ParseDate(tz, b.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date")
	}

	now := uc.now().In(timezone.Location(tz))
	if isPast(b.Date, start, now) {
		return nil, httperr.Validation("slot_in_past")
	}

	window, err := sched.ForDay(domain.WeekdayOf(date))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckCandidate(window, start, b.DurationMinutes, uc.step); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Atomic hand-off
	// --------------------------------------------------
	previous := b.EffectiveProviderID()

	moved := *b
	domain.Reassign(&moved, provider.ID, domain.NewSpan(start, b.DurationMinutes), now)

	if err := uc.repo.Reassign(ctx, &moved, from); err != nil {
		if httperr.Is(err, httperr.KindSlotUnavailable) {
			uc.audit.Dispatch(auditEvent(b, actor.ID, "booking_conflict", map[string]any{
				"provider_id": provider.ID,
				"date":        b.Date,
				"time":        in.Time,
			}))
		}
		return nil, err
	}

	uc.audit.Dispatch(auditEvent(&moved, actor.ID, "booking_reassigned", map[string]any{
		"from_provider": previous,
		"to_provider":   provider.ID,
		"time":          in.Time,
	}))
	uc.notifier.Notify(ctx, notificationFor(&moved, provider.ID, notify.EventReassigned, ""))

	out := dto.NewBookingDTO(&moved, domain.PartyShopOwner)
	return &out, nil
}
