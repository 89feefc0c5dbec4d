package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// Uploader stores one object. Satisfied by storage.S3Uploader.
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

type LedgerEntry struct {
	ID            string  `json:"id"`
	UID           string  `json:"uid"`
	CustomerID    string  `json:"customer_id"`
	ProviderID    string  `json:"provider_id"`
	AssigneeID    string  `json:"assignee_id"`
	ShopID        string  `json:"shop_id,omitempty"`
	ServiceID     string  `json:"service_id"`
	ServiceName   string  `json:"service_name"`
	Price         float64 `json:"price"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Duration      int     `json:"duration_minutes"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
}

// ExportLedger writes every booking of one day as NDJSON.
type ExportLedger struct {
	repo     domain.Repository
	uploader Uploader
}

func NewExportLedger(repo domain.Repository, uploader Uploader) *ExportLedger {
	return &ExportLedger{repo: repo, uploader: uploader}
}

func LedgerKey(date string) string {
	return fmt.Sprintf("ledger/%s/%s/%s.ndjson", date[0:4], date[5:7], date)
}

func (uc *ExportLedger) Execute(ctx context.Context, date string) (int, error) {
	if _, err := time.Parse(timezone.DateLayout, date); err != nil {
		return 0, httperr.Validation("invalid_date")
	}

	list, err := uc.repo.ListBookings(ctx, domain.ListFilter{FromDate: date, ToDate: date})
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, b := range list {
		entry := LedgerEntry{
			ID:            b.ID,
			UID:           b.UID,
			CustomerID:    b.CustomerID,
			ProviderID:    b.ProviderID,
			AssigneeID:    b.AssigneeID,
			ServiceID:     b.ServiceID,
			ServiceName:   b.ServiceName,
			Price:         b.Price,
			Date:          b.Date,
			Time:          domain.FormatHHMM(b.StartMinute),
			Duration:      b.DurationMinutes,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
		}
		if b.ShopID != nil {
			entry.ShopID = *b.ShopID
		}
		if err := enc.Encode(entry); err != nil {
			return 0, err
		}
	}

	if err := uc.uploader.Put(ctx, LedgerKey(date), buf.Bytes(), "application/x-ndjson"); err != nil {
		return 0, httperr.Upstream("ledger_upload_failed", err)
	}
	return len(list), nil
}
