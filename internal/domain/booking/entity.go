package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// NewUID returns an 8-character uppercase code customers can share.
func NewUID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}

func SpanOf(b *models.Booking) Span {
	return Span{Start: b.StartMinute, End: b.EndMinute}
}

// Apply moves b to status to and stamps the matching timestamp.
// Authorization is the caller's job.
func Apply(b *models.Booking, to Status, reason string, now time.Time) {
	b.Status = string(to)
	b.UpdatedAt = now

	switch to {
	case StatusConfirmed:
		b.ConfirmedAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	case StatusCancelled:
		b.CancelledAt = &now
		b.CancellationReason = strings.TrimSpace(reason)
	case StatusRejected:
		b.RejectedAt = &now
		b.RejectionReason = strings.TrimSpace(reason)
	}
}

// Reassign hands b to providerID at span. The original ProviderID is kept.
func Reassign(b *models.Booking, providerID string, span Span, now time.Time) {
	id := providerID
	b.ReassignedProviderID = &id
	b.AssigneeID = providerID
	b.StartMinute = span.Start
	b.EndMinute = span.End
	b.Status = string(StatusReassigned)
	b.ReassignedAt = &now
	b.UpdatedAt = now
}

func Rate(b *models.Booking, rating int, comment string, now time.Time) error {
	if rating < 1 || rating > 5 {
		return httperr.Validation("invalid_rating")
	}
	if b.Rating != nil {
		return httperr.Validation("already_rated")
	}

	r := rating
	b.Rating = &r
	b.ReviewComment = strings.TrimSpace(comment)
	b.ReviewedAt = &now
	return nil
}
