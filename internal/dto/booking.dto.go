package dto

import (
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type ServiceSnapshotDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
}

type ReviewDTO struct {
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// BookingDTO is a booking as one particular viewer sees it.
type BookingDTO struct {
	ID                   string  `json:"id"`
	UID                  string  `json:"uid"`
	CustomerID           string  `json:"customer_id"`
	ProviderID           string  `json:"provider_id"`
	ShopID               *string `json:"shop_id,omitempty"`
	ReassignedProviderID *string `json:"reassigned_provider_id,omitempty"`

	Service ServiceSnapshotDTO `json:"service"`

	Date    string    `json:"date"`
	Time    TimeOfDay `json:"time"`
	EndTime TimeOfDay `json:"end_time"`

	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	RejectionReason    string `json:"rejection_reason,omitempty"`
	PaymentStatus      string `json:"payment_status"`

	Review *ReviewDTO `json:"review,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBookingDTO(b *models.Booking, viewer domain.Party) BookingDTO {
	status := domain.DisplayStatus(domain.Status(b.Status), viewer)

	out := BookingDTO{
		ID:                   b.ID,
		UID:                  b.UID,
		CustomerID:           b.CustomerID,
		ProviderID:           b.ProviderID,
		ShopID:               b.ShopID,
		ReassignedProviderID: b.ReassignedProviderID,
		Service: ServiceSnapshotDTO{
			ID:              b.ServiceID,
			Name:            b.ServiceName,
			Type:            b.ServiceType,
			Price:           b.Price,
			DurationMinutes: b.DurationMinutes,
		},
		Date:               b.Date,
		Time:               timeOfDay(b.StartMinute),
		EndTime:            timeOfDay(b.EndMinute),
		Status:             string(status),
		CancellationReason: b.CancellationReason,
		PaymentStatus:      b.PaymentStatus,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// the reason would give away an aliased rejection
	if status == domain.Status(b.Status) {
		out.RejectionReason = b.RejectionReason
	}

	if b.Rating != nil {
		r := &ReviewDTO{Rating: *b.Rating, Comment: b.ReviewComment}
		if b.ReviewedAt != nil {
			r.ReviewedAt = *b.ReviewedAt
		}
		out.Review = r
	}

	return out
}

func NewBookingDTOs(list []models.Booking, viewer domain.Party) []BookingDTO {
	out := make([]BookingDTO, 0, len(list))
	for i := range list {
		out = append(out, NewBookingDTO(&list[i], viewer))
	}
	return out
}

func timeOfDay(minute int) TimeOfDay {
	return TimeOfDay{Hour: minute / 60, Minute: minute % 60}
}

// AvailabilityDTO is the answer to an available-slots query.
type AvailabilityDTO struct {
	ProviderID      string            `json:"provider_id"`
	Date            string            `json:"date"`
	Weekday         string            `json:"weekday"`
	Open            bool              `json:"open"`
	DurationMinutes int               `json:"duration_minutes"`
	StepMinutes     int               `json:"step_minutes"`
	Slots           []domain.TimeSlot `json:"slots"`
}
