package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

type RateInput struct {
	BookingID string
	Rating    int
	Comment   string
}

// RateBooking records the customer's review. Any status may be rated.
type RateBooking struct {
	repo  domain.Repository
	audit Auditor
	now   Clock
}

func NewRateBooking(repo domain.Repository, audit Auditor) *RateBooking {
	return &RateBooking{repo: repo, audit: audit, now: time.Now}
}

func (uc *RateBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	in RateInput,
) (*dto.BookingDTO, error) {

	b, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	if actor.ID == "" || actor.ID != b.CustomerID {
		return nil, httperr.Forbidden("not_booking_customer")
	}

	now := uc.now()
	if err := domain.Rate(b, in.Rating, in.Comment, now); err != nil {
		return nil, err
	}
	b.UpdatedAt = now

	if err := uc.repo.SaveReview(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(auditEvent(b, actor.ID, "booking_reviewed", map[string]any{
		"rating": in.Rating,
	}))

	out := dto.NewBookingDTO(b, domain.PartyCustomer)
	return &out, nil
}
