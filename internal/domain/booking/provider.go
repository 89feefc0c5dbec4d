package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ===============================
// Provider variants
// ===============================

type ProviderKind string

const (
	KindEmployedBarber  ProviderKind = "employedBarber"
	KindFreelanceBarber ProviderKind = "freelanceBarber"
	KindFreelancer      ProviderKind = "freelancer"
	KindShopOwner       ProviderKind = "shopOwner"
)

func (k ProviderKind) Valid() bool {
	switch k {
	case KindEmployedBarber, KindFreelanceBarber, KindFreelancer, KindShopOwner:
		return true
	}
	return false
}

// UsesShopHours reports whether the variant is booked against its
// shop's opening hours instead of a personal schedule.
func (k ProviderKind) UsesShopHours() bool {
	return k == KindShopOwner
}

// ScheduleFor returns the weekly schedule p is booked against, plus its
// shop when it has one.
func ScheduleFor(
	ctx context.Context,
	dir Directory,
	p *models.Provider,
) (WeeklySchedule, *models.Shop, error) {

	kind := ProviderKind(p.Kind)
	if !kind.Valid() {
		return nil, nil, httperr.Validation("invalid_provider_kind")
	}

	var shop *models.Shop
	if p.ShopID != nil && *p.ShopID != "" {
		s, err := dir.GetShop(ctx, *p.ShopID)
		if err != nil {
			return nil, nil, err
		}
		shop = s
	}

	if kind.UsesShopHours() {
		if shop == nil {
			return nil, nil, httperr.NotFound("shop_not_found")
		}
		hours, err := DecodeShopHours(shop.OpeningHours)
		if err != nil {
			return nil, nil, err
		}
		return hours, shop, nil
	}

	personal, err := DecodePersonalSchedule(p.Schedule)
	if err != nil {
		return nil, nil, err
	}
	return personal, shop, nil
}

// ResolveWindow is the provider's working window on date's weekday.
func ResolveWindow(
	ctx context.Context,
	dir Directory,
	p *models.Provider,
	date time.Time,
) (Window, error) {

	sched, _, err := ScheduleFor(ctx, dir, p)
	if err != nil {
		return Closed, err
	}
	return sched.ForDay(WeekdayOf(date))
}

// TimezoneFor picks the provider's zone, then its shop's, then the default.
func TimezoneFor(p *models.Provider, shop *models.Shop) string {
	if p != nil && timezone.IsValid(p.Timezone) {
		return p.Timezone
	}
	if shop != nil && timezone.IsValid(shop.Timezone) {
		return shop.Timezone
	}
	return timezone.DefaultTimezone
}
