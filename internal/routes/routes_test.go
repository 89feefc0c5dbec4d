package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	database "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/idempotency"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

const (
	testSecret = "test-secret"
	monday     = "2030-01-07"
)

// ======================================================
// FAKES
// ======================================================

// syncAuditor writes audit rows inline so tests can read them back.
type syncAuditor struct {
	w *audit.Logger
}

func (a syncAuditor) Dispatch(ev audit.Event) {
	_ = a.w.Write(context.Background(), ev)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, ev notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, ev)
}

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func (s *memIdempotency) Begin(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.keys[key]
	if !ok {
		s.keys[key] = ""
		return "", true, nil
	}
	if v == "" {
		return "", false, idempotency.ErrInProgress
	}
	return v, false, nil
}

func (s *memIdempotency) Commit(_ context.Context, key, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = result
	return nil
}

func (s *memIdempotency) Abort(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

type fakeGateway struct {
	payments map[string]*payment.Payment
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := g.payments[id]
	if !ok {
		return nil, errors.New("payment not found upstream")
	}
	return p, nil
}

// ======================================================
// FIXTURE
// ======================================================

type server struct {
	t        *testing.T
	engine   *gin.Engine
	db       *gorm.DB
	notifier *recordingNotifier
	gateway  *fakeGateway
}

var registerOnce sync.Once

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registerOnce.Do(func() {
		if err := validators.Register(); err != nil {
			t.Fatalf("validators: %v", err)
		}
	})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	seed(t, db)

	s := &server{
		t:        t,
		db:       db,
		notifier: &recordingNotifier{},
		gateway:  &fakeGateway{payments: map[string]*payment.Payment{}},
	}

	s.engine = gin.New()
	RegisterRoutes(s.engine, Deps{
		DB: db,
		Config: &config.Config{
			JWTSecret:          testSecret,
			SlotStepMinutes:    30,
			RateLimitPerMinute: 6000,
		},
		Audit:       syncAuditor{w: audit.New(db)},
		Notifier:    s.notifier,
		Idempotency: &memIdempotency{keys: map[string]string{}},
		Payments:    s.gateway,
	})
	return s
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	shopID := "shop-1"
	schedule := datatypes.JSON(`{"monday":{"from":"09:00","to":"12:00","status":"available"}}`)

	rows := []any{
		&models.Shop{ID: shopID, OwnerID: "owner-1", Name: "Shop", Timezone: "UTC"},
		&models.Provider{ID: "barber-a", Kind: "employedBarber", ShopID: &shopID, Active: true, Timezone: "UTC", Schedule: schedule},
		&models.Provider{ID: "barber-b", Kind: "employedBarber", ShopID: &shopID, Active: true, Timezone: "UTC", Schedule: schedule},
		&models.Service{ID: "svc-30", ShopID: &shopID, Name: "Cut", Type: "shopBased", DurationMinutes: 30, Price: 50, Active: true},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
}

func token(t *testing.T, sub, role, shopID string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "role": role}
	if shopID != "" {
		claims["shopId"] = shopID
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func (s *server) do(method, path, tok string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Kind string `json:"kind"`
	Code string `json:"error_code"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if got := decode[errorBody](t, w).Code; got != code {
		t.Fatalf("expected code %s, got %s", code, got)
	}
}

func (s *server) createBooking(tok, hhmm string, payOnline bool) dto.BookingDTO {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/bookings", tok, map[string]any{
		"providerId": "barber-a",
		"serviceId":  "svc-30",
		"date":       monday,
		"time":       hhmm,
		"payOnline":  payOnline,
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("create %s: expected 201, got %d: %s", hhmm, w.Code, w.Body.String())
	}
	return decode[dto.BookingDTO](s.t, w)
}

// ======================================================
// TESTS
// ======================================================

func TestHealth(t *testing.T) {
	s := newServer(t)
	if w := s.do(http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBookingFlow_CreateAvailabilityAccept(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	barber := token(t, "barber-a", "barber", "shop-1")

	slotsPath := "/api/providers/barber-a/available-slots?date=" + monday + "&service_id=svc-30"

	before := decode[dto.AvailabilityDTO](t, s.do(http.MethodGet, slotsPath, "", nil))
	if !before.Open || len(before.Slots) != 6 {
		t.Fatalf("expected 6 open slots, got %+v", before)
	}

	created := s.createBooking(customer, "09:00", false)
	if created.Status != "pending" || created.Time.Hour != 9 || created.EndTime.Minute != 30 {
		t.Fatalf("unexpected booking: %+v", created)
	}

	after := decode[dto.AvailabilityDTO](t, s.do(http.MethodGet, slotsPath, "", nil))
	if len(after.Slots) != 5 || after.Slots[0].Hour != 9 || after.Slots[0].Minute != 30 {
		t.Fatalf("booked slot still offered: %+v", after.Slots)
	}

	// same window again
	w := s.do(http.MethodPost, "/api/bookings", customer, map[string]any{
		"providerId": "barber-a", "serviceId": "svc-30", "date": monday, "time": "09:00",
	})
	expectError(t, w, http.StatusConflict, "slot_unavailable")

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/accept", barber, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", w.Code, w.Body.String())
	}

	got := decode[dto.BookingDTO](t, s.do(http.MethodGet, "/api/bookings/"+created.ID, customer, nil))
	if got.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", got.Status)
	}

	list := decode[struct {
		Data  []dto.BookingDTO `json:"data"`
		Total int              `json:"total"`
	}](t, s.do(http.MethodGet, "/api/bookings?date="+monday, barber, nil))
	if list.Total != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("unexpected agenda: %+v", list)
	}
}

func TestCreate_ValidationAndAuth(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")

	w := s.do(http.MethodPost, "/api/bookings", "", map[string]any{})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/bookings", customer, map[string]any{
		"providerId": "barber-a", "serviceId": "svc-30", "date": monday, "time": "9am",
	})
	expectError(t, w, http.StatusBadRequest, "invalid_time_format")

	w = s.do(http.MethodPost, "/api/bookings", customer, map[string]any{
		"providerId": "barber-a", "serviceId": "svc-30", "date": "07/01/2030", "time": "09:00",
	})
	expectError(t, w, http.StatusBadRequest, "invalid_date")

	w = s.do(http.MethodPost, "/api/bookings", customer, map[string]any{
		"providerId": "barber-a", "serviceId": "svc-30", "date": monday, "time": "13:00",
	})
	expectError(t, w, http.StatusConflict, "outside_working_hours")

	barber := token(t, "barber-a", "barber", "shop-1")
	w = s.do(http.MethodPost, "/api/bookings", barber, map[string]any{
		"providerId": "barber-b", "serviceId": "svc-30", "date": monday, "time": "09:00",
	})
	expectError(t, w, http.StatusForbidden, "only_customers_can_book")
}

func TestCreate_IdempotencyKeyReplays(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	body := map[string]any{
		"providerId": "barber-a", "serviceId": "svc-30", "date": monday, "time": "10:00",
	}

	first := s.do(http.MethodPost, "/api/bookings", customer, body, "Idempotency-Key", "k-1")
	second := s.do(http.MethodPost, "/api/bookings", customer, body, "Idempotency-Key", "k-1")

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201 twice, got %d and %d: %s", first.Code, second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("second response is not marked as replay")
	}
	a := decode[dto.BookingDTO](t, first)
	b := decode[dto.BookingDTO](t, second)
	if a.ID != b.ID {
		t.Fatalf("replay produced a new booking: %s vs %s", a.ID, b.ID)
	}

	var count int64
	s.db.Model(&models.Booking{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one stored booking, got %d", count)
	}
}

func TestReject_IsHiddenFromCustomer(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	barber := token(t, "barber-a", "barber", "shop-1")

	created := s.createBooking(customer, "09:30", false)

	w := s.do(http.MethodPost, "/api/bookings/"+created.ID+"/reject", barber, map[string]any{"reason": "sick"})
	if w.Code != http.StatusOK {
		t.Fatalf("reject: %d %s", w.Code, w.Body.String())
	}
	if got := decode[dto.BookingDTO](t, w); got.Status != "rejected" || got.RejectionReason != "sick" {
		t.Fatalf("provider view: %+v", got)
	}

	seen := decode[dto.BookingDTO](t, s.do(http.MethodGet, "/api/bookings/"+created.ID, customer, nil))
	if seen.Status != "pending" || seen.RejectionReason != "" {
		t.Fatalf("customer must see pending without reason, got %+v", seen)
	}

	// rejected is terminal
	w = s.do(http.MethodPatch, "/api/bookings/"+created.ID+"/status", barber, map[string]any{"status": "confirmed"})
	expectError(t, w, http.StatusConflict, "invalid_transition")
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	created := s.createBooking(customer, "11:00", false)

	w := s.do(http.MethodPatch, "/api/bookings/"+created.ID+"/status", customer, map[string]any{"status": "paused"})
	expectError(t, w, http.StatusBadRequest, "invalid_status")

	w = s.do(http.MethodPatch, "/api/bookings/"+created.ID+"/status", customer, map[string]any{
		"status": "cancelled", "reason": "  travel  ",
	})
	if got := decode[dto.BookingDTO](t, w); w.Code != http.StatusOK || got.CancellationReason != "travel" {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
}

func TestReassign_AcceptsHourMinuteObject(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	owner := token(t, "owner-1", "shopOwner", "shop-1")
	barberB := token(t, "barber-b", "barber", "shop-1")

	created := s.createBooking(customer, "09:00", false)

	w := s.do(http.MethodPost, "/api/bookings/"+created.ID+"/reassign", owner, map[string]any{
		"newProviderId": "barber-b",
		"time":          map[string]int{"hour": 10, "minute": 30},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reassign: %d %s", w.Code, w.Body.String())
	}
	got := decode[dto.BookingDTO](t, w)
	if got.Status != "reassigned" || got.ReassignedProviderID == nil || *got.ReassignedProviderID != "barber-b" {
		t.Fatalf("unexpected reassigned booking: %+v", got)
	}
	if got.ProviderID != "barber-a" || got.Time.Hour != 10 || got.Time.Minute != 30 {
		t.Fatalf("original provider or new time lost: %+v", got)
	}

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/accept", barberB, nil)
	if got := decode[dto.BookingDTO](t, w); w.Code != http.StatusOK || got.Status != "confirmed" {
		t.Fatalf("new provider accept: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/reassign", customer, map[string]any{
		"newProviderId": "barber-a", "time": "11:00",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer reassign: expected 403, got %d", w.Code)
	}
}

func TestCreate_AcceptsHourMinuteObject(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")

	body := func(tm any) map[string]any {
		return map[string]any{
			"providerId": "barber-a",
			"serviceId":  "svc-30",
			"date":       monday,
			"time":       tm,
		}
	}

	w := s.do(http.MethodPost, "/api/bookings", customer, body(map[string]int{"hour": 10, "minute": 30}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	if got := decode[dto.BookingDTO](t, w); got.Time.Hour != 10 || got.Time.Minute != 30 || got.EndTime.Hour != 11 {
		t.Fatalf("unexpected booking time: %+v", got)
	}

	w = s.do(http.MethodPost, "/api/bookings", customer, body(map[string]int{"hour": 25, "minute": 0}))
	expectError(t, w, http.StatusBadRequest, "invalid_time_format")

	w = s.do(http.MethodPost, "/api/bookings", customer, body(map[string]int{"hour": 9}))
	expectError(t, w, http.StatusBadRequest, "invalid_request")
}

func TestReview_Once(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	created := s.createBooking(customer, "09:00", false)

	path := "/api/bookings/" + created.ID + "/review"
	w := s.do(http.MethodPost, path, customer, map[string]any{"rating": 5, "comment": "great"})
	if got := decode[dto.BookingDTO](t, w); w.Code != http.StatusOK || got.Review == nil || got.Review.Rating != 5 {
		t.Fatalf("review: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, path, customer, map[string]any{"rating": 4})
	expectError(t, w, http.StatusBadRequest, "already_rated")
}

func TestPaymentWebhook_ConfirmsAwaitingBooking(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	created := s.createBooking(customer, "10:00", true)
	if created.PaymentStatus != "awaiting" {
		t.Fatalf("expected awaiting payment, got %s", created.PaymentStatus)
	}

	s.gateway.payments["111"] = &payment.Payment{ID: "111", Status: "approved", ExternalReference: created.ID}
	s.gateway.payments["222"] = &payment.Payment{ID: "222", Status: "rejected", ExternalReference: created.ID}
	s.gateway.payments["333"] = &payment.Payment{ID: "333", Status: "approved", ExternalReference: "missing"}

	hook := func(id string) *httptest.ResponseRecorder {
		return s.do(http.MethodPost, "/api/webhooks/payments", "", map[string]any{
			"type": "payment", "data": map[string]string{"id": id},
		})
	}

	if w := hook("222"); w.Code != http.StatusOK {
		t.Fatalf("rejected payment: %d", w.Code)
	}
	if w := hook("333"); w.Code != http.StatusOK {
		t.Fatalf("unknown booking must be ignored, got %d", w.Code)
	}
	if w := hook("999"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("gateway failure must be retryable, got %d", w.Code)
	}
	if w := hook("111"); w.Code != http.StatusOK {
		t.Fatalf("approved payment: %d %s", w.Code, w.Body.String())
	}

	got := decode[dto.BookingDTO](t, s.do(http.MethodGet, "/api/bookings/"+created.ID, customer, nil))
	if got.Status != "confirmed" || got.PaymentStatus != "paid" {
		t.Fatalf("expected confirmed and paid, got %s/%s", got.Status, got.PaymentStatus)
	}

	// redelivery is a no-op
	if w := hook("111"); w.Code != http.StatusOK {
		t.Fatalf("redelivery: %d", w.Code)
	}
}

func TestAuditLogs_ScopedToShopOwner(t *testing.T) {
	s := newServer(t)
	customer := token(t, "cust-1", "customer", "")
	owner := token(t, "owner-1", "shopOwner", "shop-1")

	created := s.createBooking(customer, "09:00", false)

	w := s.do(http.MethodGet, "/api/shops/shop-1/audit-logs?action=booking_created", owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit logs: %d %s", w.Code, w.Body.String())
	}
	body := decode[struct {
		Total int64             `json:"total"`
		Logs  []models.AuditLog `json:"logs"`
	}](t, w)
	if body.Total != 1 || body.Logs[0].EntityID != created.ID {
		t.Fatalf("unexpected audit logs: %+v", body)
	}

	w = s.do(http.MethodGet, "/api/shops/shop-1/audit-logs", customer, nil)
	expectError(t, w, http.StatusForbidden, "not_shop_owner")

	w = s.do(http.MethodGet, "/api/shops/nope/audit-logs", owner, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown shop, got %d", w.Code)
	}
}
