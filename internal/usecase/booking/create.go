package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ProviderID string
	ServiceID  string
	Date       string
	Time       string
	PayOnline  bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	dir      domain.Directory
	audit    Auditor
	notifier Notifier
	step     int
	now      Clock
}

func NewCreateBooking(
	repo domain.Repository,
	dir domain.Directory,
	audit Auditor,
	notifier Notifier,
	step int,
) *CreateBooking {
	if step <= 0 {
		step = domain.DefaultStepMinutes
	}
	return &CreateBooking{
		repo:     repo,
		dir:      dir,
		audit:    audit,
		notifier: notifier,
		step:     step,
		now:      time.Now,
	}
}

func (uc *CreateBooking) WithClock(now Clock) *CreateBooking {
	uc.now = now
	return uc
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	in CreateBookingInput,
) (*dto.BookingDTO, error) {

	// --------------------------------------------------
	// 1. Actor and input shape
	// --------------------------------------------------
	if err := domain.CanCreate(actor); err != nil {
		return nil, err
	}

	start, err := domain.ParseHHMM(in.Time)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Provider and service
	// --------------------------------------------------
	provider, err := uc.dir.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.Active {
		return nil, httperr.NotFound("provider_not_found")
	}

	service, err := uc.dir.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := checkServiceOffered(service, provider); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Date in the provider's zone
	// --------------------------------------------------
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

	now := uc.now().In(timezone.Location(tz))
	if isPast(dateKey, start, now) {
		return nil, httperr.Validation("slot_in_past")
	}

	// --------------------------------------------------
	// 4. Window and grid
	// --------------------------------------------------
	window, err := sched.ForDay(domain.WeekdayOf(date))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckCandidate(window, start, service.DurationMinutes, uc.step); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Atomic reserve
	// --------------------------------------------------
	span := domain.NewSpan(start, service.DurationMinutes)

	paymentStatus := domain.PaymentNone
	if in.PayOnline {
		paymentStatus = domain.PaymentAwaiting
	}

	b := &models.Booking{
		ID:              uuid.NewString(),
		UID:             domain.NewUID(),
		CustomerID:      actor.ID,
		ProviderID:      provider.ID,
		ShopID:          provider.ShopID,
		AssigneeID:      provider.ID,
		ServiceID:       service.ID,
		ServiceName:     service.Name,
		ServiceType:     service.Type,
		Price:           service.Price,
		DurationMinutes: service.DurationMinutes,
		Date:            dateKey,
		StartMinute:     span.Start,
		EndMinute:       span.End,
		Status:          string(domain.InitialStatus()),
		PaymentStatus:   paymentStatus,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.repo.Reserve(ctx, b); err != nil {
		if httperr.Is(err, httperr.KindSlotUnavailable) {
			uc.audit.Dispatch(auditEvent(b, actor.ID, "booking_conflict", map[string]any{
				"provider_id": provider.ID,
				"date":        dateKey,
				"time":        in.Time,
			}))
		}
		return nil, err
	}

	// --------------------------------------------------
	// 6. Side effects
	// --------------------------------------------------
	uc.audit.Dispatch(auditEvent(b, actor.ID, "booking_created", nil))
	uc.notifier.Notify(ctx, notificationFor(b, b.AssigneeID, notify.EventRequested, ""))

	out := dto.NewBookingDTO(b, domain.PartyCustomer)
	return &out, nil
}
