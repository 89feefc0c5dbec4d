package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

const systemActor = "system"

type ConfirmPaidInput struct {
	BookingID string
	PaymentID string
}

// ConfirmPaidBooking reacts to a completed payment. A pending booking
// awaiting payment is confirmed; a repeated event is a no-op.
type ConfirmPaidBooking struct {
	repo     domain.Repository
	audit    Auditor
	notifier Notifier
	now      Clock
}

func NewConfirmPaidBooking(
	repo domain.Repository,
	audit Auditor,
	notifier Notifier,
) *ConfirmPaidBooking {
	return &ConfirmPaidBooking{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		now:      time.Now,
	}
}

func (uc *ConfirmPaidBooking) Execute(
	ctx context.Context,
	in ConfirmPaidInput,
) (*dto.BookingDTO, error) {

	b, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	switch b.PaymentStatus {
	case domain.PaymentPaid:
		out := dto.NewBookingDTO(b, domain.PartySystem)
		return &out, nil
	case domain.PaymentAwaiting:
	default:
		return nil, httperr.Validation("payment_not_expected")
	}

	now := uc.now()
	from := domain.Status(b.Status)

	b.PaymentStatus = domain.PaymentPaid
	b.PaymentReference = in.PaymentID
	b.UpdatedAt = now

	confirm := false
	if from == domain.StatusPending {
		domain.Apply(b, domain.StatusConfirmed, "", now)
		confirm = true
	}

	if err := uc.repo.UpdateStatus(ctx, b, from); err != nil {
		return nil, err
	}

	// a payment after the booking ended is kept and flagged
	paidAction := "booking_paid"
	if from.IsTerminal() {
		paidAction = "booking_paid_after_close"
		logger.L().Warn("payment received for closed booking",
			zap.String("booking_id", b.ID),
			zap.String("status", string(from)),
			zap.String("payment_id", in.PaymentID),
		)
	}

	uc.audit.Dispatch(auditEvent(b, systemActor, paidAction, map[string]any{
		"payment_id": in.PaymentID,
		"status":     from,
	}))

	if confirm {
		uc.audit.Dispatch(auditEvent(b, systemActor, "booking_confirmed", map[string]any{
			"from": from,
			"to":   domain.StatusConfirmed,
			"as":   domain.PartySystem,
		}))
		uc.notifier.Notify(ctx, notificationFor(b, b.CustomerID, notify.EventConfirmed, ""))
	}

	out := dto.NewBookingDTO(b, domain.PartySystem)
	return &out, nil
}
