package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// scopeFor limits a listing to what actor may see: own bookings for a
// customer, own agenda for a provider, the whole shop for its owner.
func scopeFor(
	ctx context.Context,
	dir domain.Directory,
	actor domain.Actor,
) (domain.ListFilter, domain.Party, error) {

	switch actor.Role {
	case domain.RoleCustomer:
		return domain.ListFilter{CustomerID: actor.ID}, domain.PartyCustomer, nil

	case domain.RoleBarber, domain.RoleFreelancer:
		return domain.ListFilter{AssigneeID: actor.ID}, domain.PartyProvider, nil

	case domain.RoleShopOwner:
		if actor.ShopID == "" {
			return domain.ListFilter{AssigneeID: actor.ID}, domain.PartyProvider, nil
		}
		shop, err := dir.GetShop(ctx, actor.ShopID)
		if err != nil {
			return domain.ListFilter{}, "", err
		}
		if shop.OwnerID != actor.ID {
			return domain.ListFilter{}, "", httperr.Forbidden("not_shop_owner")
		}
		return domain.ListFilter{ShopID: shop.ID}, domain.PartyShopOwner, nil

	case domain.RoleAdmin:
		return domain.ListFilter{}, domain.PartyAdmin, nil
	}

	return domain.ListFilter{}, "", httperr.Forbidden("unknown_role")
}

// ======================================================
// By date
// ======================================================

type ListBookingsByDate struct {
	repo domain.Repository
	dir  domain.Directory
}

func NewListBookingsByDate(repo domain.Repository, dir domain.Directory) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo, dir: dir}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	actor domain.Actor,
	date string,
) ([]dto.BookingDTO, error) {

	if _, err := time.Parse(timezone.DateLayout, date); err != nil {
		return nil, httperr.Validation("invalid_date")
	}

	f, viewer, err := scopeFor(ctx, uc.dir, actor)
	if err != nil {
		return nil, err
	}
	f.FromDate = date
	f.ToDate = date

	list, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	return dto.NewBookingDTOs(list, viewer), nil
}

// ======================================================
// By month
// ======================================================

type ListBookingsByMonth struct {
	repo domain.Repository
	dir  domain.Directory
}

func NewListBookingsByMonth(repo domain.Repository, dir domain.Directory) *ListBookingsByMonth {
	return &ListBookingsByMonth{repo: repo, dir: dir}
}

func (uc *ListBookingsByMonth) Execute(
	ctx context.Context,
	actor domain.Actor,
	year int,
	month int,
) ([]dto.BookingDTO, error) {

	if year < 1970 || month < 1 || month > 12 {
		return nil, httperr.Validation("invalid_month")
	}

	f, viewer, err := scopeFor(ctx, uc.dir, actor)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	f.FromDate = start.Format(timezone.DateLayout)
	f.ToDate = end.Format(timezone.DateLayout)

	list, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	return dto.NewBookingDTOs(list, viewer), nil
}
