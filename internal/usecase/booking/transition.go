package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

type TransitionInput struct {
	BookingID string
	To        domain.Status
	Reason    string
}

// auditActions and notifyEvents are keyed by target status.
var auditActions = map[domain.Status]string{
	domain.StatusConfirmed: "booking_confirmed",
	domain.StatusRejected:  "booking_rejected",
	domain.StatusCancelled: "booking_cancelled",
	domain.StatusCompleted: "booking_completed",
	domain.StatusNoShow:    "booking_no_show",
}

var notifyEvents = map[domain.Status]notify.Event{
	domain.StatusConfirmed: notify.EventConfirmed,
	domain.StatusCompleted: notify.EventCompleted,
	domain.StatusCancelled: notify.EventCancelled,
}

type TransitionBooking struct {
	repo     domain.Repository
	dir      domain.Directory
	audit    Auditor
	notifier Notifier
	now      Clock
}

func NewTransitionBooking(
	repo domain.Repository,
	dir domain.Directory,
	audit Auditor,
	notifier Notifier,
) *TransitionBooking {
	return &TransitionBooking{
		repo:     repo,
		dir:      dir,
		audit:    audit,
		notifier: notifier,
		now:      time.Now,
	}
}

func (uc *TransitionBooking) WithClock(now Clock) *TransitionBooking {
	uc.now = now
	return uc
}

func (uc *TransitionBooking) Accept(ctx context.Context, actor domain.Actor, id string) (*dto.BookingDTO, error) {
	return uc.Execute(ctx, actor, TransitionInput{BookingID: id, To: domain.StatusConfirmed})
}

func (uc *TransitionBooking) Reject(ctx context.Context, actor domain.Actor, id, reason string) (*dto.BookingDTO, error) {
	return uc.Execute(ctx, actor, TransitionInput{BookingID: id, To: domain.StatusRejected, Reason: reason})
}

func (uc *TransitionBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	in TransitionInput,
) (*dto.BookingDTO, error) {

	if in.To == domain.StatusReassigned {
		return nil, httperr.Validation("reassign_requires_provider")
	}

	b, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	parties, err := partiesFor(ctx, uc.dir, actor, b)
	if err != nil {
		return nil, err
	}

	from := domain.Status(b.Status)
	if err := domain.Authorize(from, in.To, parties); err != nil {
		return nil, err
	}

	domain.Apply(b, in.To, in.Reason, uc.now())

	if err := uc.repo.UpdateStatus(ctx, b, from); err != nil {
		return nil, err
	}

	viewer := domain.ViewerOf(parties)

	uc.audit.Dispatch(auditEvent(b, actor.ID, auditActions[in.To], map[string]any{
		"from":   from,
		"to":     in.To,
		"as":     viewer,
		"reason": in.Reason,
	}))

	if ev, ok := notifyEvents[in.To]; ok {
		uc.notifier.Notify(ctx, notificationFor(b, counterparty(b, viewer), ev, in.Reason))
	}

	out := dto.NewBookingDTO(b, viewer)
	return &out, nil
}
