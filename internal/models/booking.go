package models

import "time"

type Booking struct {
	ID  string `gorm:"primaryKey;size:36" json:"id"`
	UID string `gorm:"size:12;uniqueIndex;not null" json:"uid"`

	CustomerID           string  `gorm:"size:64;not null;index" json:"customer_id"`
	ProviderID           string  `gorm:"size:64;not null;index" json:"provider_id"`
	ShopID               *string `gorm:"size:64;index" json:"shop_id,omitempty"`
	ReassignedProviderID *string `gorm:"size:64;index" json:"reassigned_provider_id,omitempty"`

	// AssigneeID is the provider currently accountable for the booking.
	AssigneeID string `gorm:"size:64;not null;index:idx_bookings_assignee_date" json:"-"`

	ServiceID       string  `gorm:"size:64;not null" json:"service_id"`
	ServiceName     string  `gorm:"size:100" json:"service_name"`
	ServiceType     string  `gorm:"size:20" json:"service_type"`
	Price           float64 `json:"price"`
	DurationMinutes int     `gorm:"not null" json:"duration_minutes"`

	Date        string `gorm:"size:10;not null;index:idx_bookings_assignee_date" json:"date"`
	StartMinute int    `gorm:"not null" json:"start_minute"`
	EndMinute   int    `gorm:"not null" json:"end_minute"`

	Status             string `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	CancellationReason string `gorm:"size:255" json:"cancellation_reason,omitempty"`
	RejectionReason    string `gorm:"size:255" json:"rejection_reason,omitempty"`

	PaymentStatus    string `gorm:"size:20;default:'none'" json:"payment_status"`
	PaymentReference string `gorm:"size:64" json:"payment_reference,omitempty"`

	Rating        *int       `json:"rating,omitempty"`
	ReviewComment string     `gorm:"size:500" json:"review_comment,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`

	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	ReassignedAt *time.Time `json:"reassigned_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveProviderID is the reassigned provider when there is one,
// otherwise the original provider.
func (b *Booking) EffectiveProviderID() string {
	if b.ReassignedProviderID != nil && *b.ReassignedProviderID != "" {
		return *b.ReassignedProviderID
	}
	return b.ProviderID
}
