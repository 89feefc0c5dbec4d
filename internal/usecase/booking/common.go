package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// Auditor is satisfied by *audit.Dispatcher.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// Notifier is satisfied by *notify.Dispatcher. Notify must not block
// and must not report delivery errors.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

type Clock func() time.Time

// ======================================================
// Helpers shared by the use cases
// ======================================================

// partiesFor resolves how actor relates to b, loading the shop only when
// the actor could be its owner.
func partiesFor(
	ctx context.Context,
	dir domain.Directory,
	actor domain.Actor,
	b *models.Booking,
) ([]domain.Party, error) {

	ownerID := ""
	if actor.Role == domain.RoleShopOwner && b.ShopID != nil {
		shop, err := dir.GetShop(ctx, *b.ShopID)
		switch {
		case err == nil:
			ownerID = shop.OwnerID
		case !httperr.Is(err, httperr.KindNotFound):
			return nil, err
		}
	}
	return domain.PartiesOf(actor, b, ownerID), nil
}

func checkServiceOffered(s *models.Service, p *models.Provider) error {
	if !s.Active {
		return httperr.Validation("service_inactive")
	}
	if s.DurationMinutes <= 0 {
		return httperr.Validation("invalid_duration")
	}
	if s.ProviderID != nil && *s.ProviderID != p.ID {
		return httperr.Validation("service_not_offered")
	}
	if s.ProviderID == nil && s.ShopID != nil {
		if p.ShopID == nil || *p.ShopID != *s.ShopID {
			return httperr.Validation("service_not_offered")
		}
	}
	return nil
}

// isPast reports whether date at minute has already started at now.
// now must be in the provider's zone.
func isPast(date string, minute int, now time.Time) bool {
	today := now.Format(timezone.DateLayout)
	if date != today {
		return date < today
	}
	return minute <= timezone.MinuteOfDay(now)
}

// counterparty is who hears about a change made by viewer.
func counterparty(b *models.Booking, viewer domain.Party) string {
	if viewer == domain.PartyCustomer {
		return b.EffectiveProviderID()
	}
	return b.CustomerID
}

func notificationFor(b *models.Booking, userID string, ev notify.Event, reason string) notify.Notification {
	return notify.Notification{
		UserID:     userID,
		BookingID:  b.ID,
		BookingUID: b.UID,
		Event:      ev,
		Date:       b.Date,
		Time:       domain.FormatHHMM(b.StartMinute),
		Reason:     reason,
	}
}

func auditEvent(b *models.Booking, actorID, action string, meta any) audit.Event {
	return audit.Event{
		ShopID:   b.ShopID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "booking",
		EntityID: b.ID,
		Metadata: meta,
	}
}
