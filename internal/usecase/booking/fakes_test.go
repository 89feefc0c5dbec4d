package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// ======================================================
// Repository
// ======================================================

type memRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

var _ domain.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[string]models.Booking{}}
}

func (r *memRepo) conflicts(b *models.Booking, excludeID string) bool {
	for id, other := range r.bookings {
		if id == excludeID || other.AssigneeID != b.AssigneeID || other.Date != b.Date {
			continue
		}
		if !domain.Status(other.Status).IsActive() {
			continue
		}
		if domain.SpanOf(&other).Overlaps(domain.SpanOf(b)) {
			return true
		}
	}
	return false
}

func (r *memRepo) Reserve(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(b, "") {
		return httperr.SlotUnavailable("slot_unavailable")
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, httperr.NotFound("booking_not_found")
	}
	return &b, nil
}

func (r *memRepo) ListActiveSpans(_ context.Context, assigneeID, date string) ([]domain.Span, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var spans []domain.Span
	for _, b := range r.bookings {
		if b.AssigneeID == assigneeID && b.Date == date && domain.Status(b.Status).IsActive() {
			spans = append(spans, domain.SpanOf(&b))
		}
	}
	return spans, nil
}

func (r *memRepo) ListBookings(_ context.Context, f domain.ListFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.AssigneeID != "" && b.AssigneeID != f.AssigneeID {
			continue
		}
		if f.ShopID != "" && (b.ShopID == nil || *b.ShopID != f.ShopID) {
			continue
		}
		if f.FromDate != "" && b.Date < f.FromDate {
			continue
		}
		if f.ToDate != "" && b.Date > f.ToDate {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				if string(s) == b.Status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartMinute < out[j].StartMinute
	})
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, b *models.Booking, from domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.bookings[b.ID]
	if !ok || cur.Status != string(from) {
		return httperr.InvalidTransition("status_changed")
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) Reassign(_ context.Context, b *models.Booking, from domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(b, b.ID) {
		return httperr.SlotUnavailable("slot_unavailable")
	}
	cur, ok := r.bookings[b.ID]
	if !ok || cur.Status != string(from) {
		return httperr.InvalidTransition("status_changed")
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) SaveReview(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.bookings[b.ID]
	if !ok {
		return httperr.NotFound("booking_not_found")
	}
	if cur.Rating != nil {
		return httperr.Validation("already_rated")
	}
	cur.Rating = b.Rating
	cur.ReviewComment = b.ReviewComment
	cur.ReviewedAt = b.ReviewedAt
	r.bookings[b.ID] = cur
	return nil
}

// ======================================================
// Directory
// ======================================================

type memDirectory struct {
	providers map[string]*models.Provider
	shops     map[string]*models.Shop
	services  map[string]*models.Service
}

func (d *memDirectory) GetProvider(_ context.Context, id string) (*models.Provider, error) {
	if p, ok := d.providers[id]; ok {
		return p, nil
	}
	return nil, httperr.NotFound("provider_not_found")
}

func (d *memDirectory) GetShop(_ context.Context, id string) (*models.Shop, error) {
	if s, ok := d.shops[id]; ok {
		return s, nil
	}
	return nil, httperr.NotFound("shop_not_found")
}

func (d *memDirectory) GetService(_ context.Context, id string) (*models.Service, error) {
	if s, ok := d.services[id]; ok {
		return s, nil
	}
	return nil, httperr.NotFound("service_not_found")
}

// ======================================================
// Side effects
// ======================================================

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) all() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// ======================================================
// Fixture
// ======================================================

const (
	shopID   = "shop-1"
	ownerID  = "owner-1"
	barberA  = "barber-a"
	barberB  = "barber-b"
	customer = "cust-1"
	svc30    = "svc-30"
	svc45    = "svc-45"

	// a Monday
	bookingDate = "2030-01-07"
)

var (
	customerActor = domain.Actor{ID: customer, Role: domain.RoleCustomer}
	ownerActor    = domain.Actor{ID: ownerID, Role: domain.RoleShopOwner, ShopID: shopID}
	barberAActor  = domain.Actor{ID: barberA, Role: domain.RoleBarber, ShopID: shopID}
	barberBActor  = domain.Actor{ID: barberB, Role: domain.RoleBarber, ShopID: shopID}
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// beforeBookingDay is well before bookingDate in every zone.
var beforeBookingDay = fixedClock(time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC))

type fixture struct {
	repo     *memRepo
	dir      *memDirectory
	auditor  *recordingAuditor
	notifier *recordingNotifier
}

func newFixture() *fixture {
	shop := shopID
	morning := datatypes.JSON(`{"monday": {"from": "09:00", "to": "12:00", "status": "available"}}`)

	return &fixture{
		repo: newMemRepo(),
		dir: &memDirectory{
			providers: map[string]*models.Provider{
				barberA: {ID: barberA, Kind: string(domain.KindEmployedBarber), ShopID: &shop, Active: true, Timezone: "UTC", Schedule: morning},
				barberB: {ID: barberB, Kind: string(domain.KindEmployedBarber), ShopID: &shop, Active: true, Timezone: "UTC", Schedule: morning},
				ownerID: {ID: ownerID, Kind: string(domain.KindShopOwner), ShopID: &shop, Active: true},
				"free-1": {ID: "free-1", Kind: string(domain.KindFreelancer), Active: true, Timezone: "UTC", Schedule: morning},
			},
			shops: map[string]*models.Shop{
				shopID: {
					ID:           shopID,
					OwnerID:      ownerID,
					Name:         "Corte Fino",
					Timezone:     "UTC",
					OpeningHours: datatypes.JSON(`[{"day": "monday", "isOpen": true, "openTime": "13:00", "closeTime": "15:00"}]`),
				},
			},
			services: map[string]*models.Service{
				svc30: {ID: svc30, ShopID: &shop, Name: "Corte", Type: "shopBased", DurationMinutes: 30, Price: 40, Active: true},
				svc45: {ID: svc45, ShopID: &shop, Name: "Corte e barba", Type: "shopBased", DurationMinutes: 45, Price: 60, Active: true},
			},
		},
		auditor:  &recordingAuditor{},
		notifier: &recordingNotifier{},
	}
}

func (f *fixture) create() *CreateBooking {
	return NewCreateBooking(f.repo, f.dir, f.auditor, f.notifier, 30).WithClock(beforeBookingDay)
}

func (f *fixture) transition() *TransitionBooking {
	return NewTransitionBooking(f.repo, f.dir, f.auditor, f.notifier).WithClock(beforeBookingDay)
}

func (f *fixture) reassign() *ReassignBooking {
	return NewReassignBooking(f.repo, f.dir, f.auditor, f.notifier, 30).WithClock(beforeBookingDay)
}

func (f *fixture) availability() *GetAvailability {
	return NewGetAvailability(f.repo, f.dir, 30).WithClock(beforeBookingDay)
}

// seed stores a booking directly, bypassing create.
func (f *fixture) seed(id, provider, hhmm string, duration int, status domain.Status) *models.Booking {
	start, _ := domain.ParseHHMM(hhmm)
	shop := shopID
	b := models.Booking{
		ID:              id,
		UID:             domain.NewUID(),
		CustomerID:      "cust-seed",
		ProviderID:      provider,
		AssigneeID:      provider,
		ShopID:          &shop,
		ServiceID:       svc30,
		DurationMinutes: duration,
		Date:            bookingDate,
		StartMinute:     start,
		EndMinute:       start + duration,
		Status:          string(status),
		PaymentStatus:   domain.PaymentNone,
	}
	f.repo.bookings[id] = b
	return &b
}
