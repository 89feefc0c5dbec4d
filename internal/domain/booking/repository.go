package booking

import (
	"context"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ListFilter narrows ListBookings. Empty fields are ignored; dates are
// inclusive YYYY-MM-DD bounds.
type ListFilter struct {
	CustomerID string
	AssigneeID string
	ShopID     string
	FromDate   string
	ToDate     string
	Statuses   []Status
}

type Repository interface {
	// -------- Reserve (atomic) --------

	// Reserve inserts b only if no active booking of b.AssigneeID on
	// b.Date overlaps it. Fails with slot_unavailable otherwise.
	Reserve(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Read --------
	GetBooking(
		ctx context.Context,
		id string,
	) (*models.Booking, error)

	ListActiveSpans(
		ctx context.Context,
		assigneeID string,
		date string,
	) ([]Span, error)

	ListBookings(
		ctx context.Context,
		f ListFilter,
	) ([]models.Booking, error)

	// -------- State change (compare-and-set on from) --------
	UpdateStatus(
		ctx context.Context,
		b *models.Booking,
		from Status,
	) error

	// Reassign persists a reassigned b after re-checking the new
	// assignee's occupancy, all in one transaction.
	Reassign(
		ctx context.Context,
		b *models.Booking,
		from Status,
	) error

	SaveReview(
		ctx context.Context,
		b *models.Booking,
	) error
}

// Directory is the read-only view of providers, shops and services.
type Directory interface {
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	GetShop(ctx context.Context, id string) (*models.Shop, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
}
