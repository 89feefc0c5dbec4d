package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*BookingGormRepository)(nil)

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Reserve
// --------------------------------------------------

func (r *BookingGormRepository) Reserve(
	ctx context.Context,
	b *models.Booking,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProvider(tx, b.AssigneeID); err != nil {
			return err
		}
		if err := assertFree(tx, b.AssigneeID, b.Date, domain.SpanOf(b), ""); err != nil {
			return err
		}
		return tx.Create(b).Error
	})

	return mapWriteError(err)
}

// lockProvider serializes writers for one provider. Row locks only
// exist on Postgres; elsewhere the transaction itself is the guard.
func lockProvider(tx *gorm.DB, providerID string) error {
	q := tx.Model(&models.Provider{}).Select("id").Where("id = ?", providerID)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p models.Provider
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("provider_not_found")
		}
		return err
	}
	return nil
}

func assertFree(
	tx *gorm.DB,
	assigneeID string,
	date string,
	span domain.Span,
	excludeID string,
) error {

	q := tx.Model(&models.Booking{}).
		Where("assignee_id = ? AND date = ? AND status IN ?", assigneeID, date, domain.ActiveStatusValues()).
		Where("start_minute < ? AND end_minute > ?", span.End, span.Start)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return httperr.SlotUnavailable("slot_unavailable")
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case httperr.KindOf(err) != "":
		return err
	case httperr.IsExclusionConflict(err):
		return httperr.SlotUnavailable("slot_unavailable")
	default:
		return httperr.Upstream("storage_failure", err)
	}
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("booking_not_found")
		}
		return nil, httperr.Upstream("storage_failure", err)
	}
	return &b, nil
}

func (r *BookingGormRepository) ListActiveSpans(
	ctx context.Context,
	assigneeID string,
	date string,
) ([]domain.Span, error) {

	var rows []models.Booking
	if err := r.db.WithContext(ctx).
		Select("start_minute", "end_minute").
		Where("assignee_id = ? AND date = ? AND status IN ?", assigneeID, date, domain.ActiveStatusValues()).
		Order("start_minute ASC").
		Find(&rows).Error; err != nil {
		return nil, httperr.Upstream("storage_failure", err)
	}

	spans := make([]domain.Span, 0, len(rows))
	for _, row := range rows {
		spans = append(spans, domain.SpanOf(&row))
	}
	return spans, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).Model(&models.Booking{})

	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.AssigneeID != "" {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.ShopID != "" {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.FromDate != "" {
		q = q.Where("date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		q = q.Where("date <= ?", f.ToDate)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}

	var out []models.Booking
	if err := q.Order("date ASC, start_minute ASC").Find(&out).Error; err != nil {
		return nil, httperr.Upstream("storage_failure", err)
	}
	return out, nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (r *BookingGormRepository) UpdateStatus(
	ctx context.Context,
	b *models.Booking,
	from domain.Status,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, string(from)).
		Updates(map[string]any{
			"status":              b.Status,
			"cancellation_reason": b.CancellationReason,
			"rejection_reason":    b.RejectionReason,
			"payment_status":      b.PaymentStatus,
			"payment_reference":   b.PaymentReference,
			"confirmed_at":        b.ConfirmedAt,
			"completed_at":        b.CompletedAt,
			"cancelled_at":        b.CancelledAt,
			"rejected_at":         b.RejectedAt,
			"updated_at":          b.UpdatedAt,
		})

	if res.Error != nil {
		return httperr.Upstream("storage_failure", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.InvalidTransition("status_changed")
	}
	return nil
}

func (r *BookingGormRepository) Reassign(
	ctx context.Context,
	b *models.Booking,
	from domain.Status,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProvider(tx, b.AssigneeID); err != nil {
			return err
		}
		if err := assertFree(tx, b.AssigneeID, b.Date, domain.SpanOf(b), b.ID); err != nil {
			return err
		}

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", b.ID, string(from)).
			Updates(map[string]any{
				"status":                 b.Status,
				"reassigned_provider_id": b.ReassignedProviderID,
				"assignee_id":            b.AssigneeID,
				"start_minute":           b.StartMinute,
				"end_minute":             b.EndMinute,
				"reassigned_at":          b.ReassignedAt,
				"updated_at":             b.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.InvalidTransition("status_changed")
		}
		return nil
	})

	return mapWriteError(err)
}

func (r *BookingGormRepository) SaveReview(
	ctx context.Context,
	b *models.Booking,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND rating IS NULL", b.ID).
		Updates(map[string]any{
			"rating":         b.Rating,
			"review_comment": b.ReviewComment,
			"reviewed_at":    b.ReviewedAt,
			"updated_at":     b.UpdatedAt,
		})

	if res.Error != nil {
		return httperr.Upstream("storage_failure", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.Validation("already_rated")
	}
	return nil
}
