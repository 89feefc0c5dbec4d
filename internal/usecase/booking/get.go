package booking

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

type GetBooking struct {
	repo domain.Repository
	dir  domain.Directory
}

func NewGetBooking(repo domain.Repository, dir domain.Directory) *GetBooking {
	return &GetBooking{repo: repo, dir: dir}
}

func (uc *GetBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	id string,
) (*dto.BookingDTO, error) {

	b, err := uc.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	parties, err := partiesFor(ctx, uc.dir, actor, b)
	if err != nil {
		return nil, err
	}

	viewer := domain.ViewerOf(parties)
	if viewer == "" && domain.IsFormerProvider(actor, b) {
		viewer = domain.PartyProvider
	}
	if viewer == "" {
		return nil, httperr.Forbidden("not_a_party")
	}

	out := dto.NewBookingDTO(b, viewer)
	return &out, nil
}
