package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/idempotency"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// Deps are the process-wide singletons built in main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Audit    ucBooking.Auditor
	Notifier ucBooking.Notifier

	// Optional. Nil disables idempotent create and the payment webhook.
	Idempotency idempotency.Store
	Payments    payment.Gateway
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	cfg := deps.Config

	// ======================================================
	// INFRA
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(deps.DB)
	directory := infraRepo.NewDirectoryGormRepository(deps.DB)

	// ======================================================
	// USE CASES
	// ======================================================
	createUC := ucBooking.NewCreateBooking(
		bookingRepo,
		directory,
		deps.Audit,
		deps.Notifier,
		cfg.SlotStepMinutes,
	)

	getUC := ucBooking.NewGetBooking(bookingRepo, directory)
	listByDateUC := ucBooking.NewListBookingsByDate(bookingRepo, directory)
	listByMonthUC := ucBooking.NewListBookingsByMonth(bookingRepo, directory)

	transitionUC := ucBooking.NewTransitionBooking(
		bookingRepo,
		directory,
		deps.Audit,
		deps.Notifier,
	)

	reassignUC := ucBooking.NewReassignBooking(
		bookingRepo,
		directory,
		deps.Audit,
		deps.Notifier,
		cfg.SlotStepMinutes,
	)

	rateUC := ucBooking.NewRateBooking(bookingRepo, deps.Audit)

	availabilityUC := ucBooking.NewGetAvailability(
		bookingRepo,
		directory,
		cfg.SlotStepMinutes,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(
		createUC,
		getUC,
		listByDateUC,
		listByMonthUC,
		transitionUC,
		reassignUC,
		rateUC,
		deps.Idempotency,
	)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(deps.DB, directory)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET(
			"/providers/:id/available-slots",
			limiter.Middleware(),
			availabilityHandler.AvailableSlots,
		)

		if deps.Payments != nil {
			confirmPaidUC := ucBooking.NewConfirmPaidBooking(
				bookingRepo,
				deps.Audit,
				deps.Notifier,
			)
			webhookHandler := handlers.NewPaymentWebhookHandler(deps.Payments, confirmPaidUC)
			api.POST("/webhooks/payments", limiter.Middleware(), webhookHandler.Handle)
		}

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings", bookingHandler.ListByDate)
			secured.GET("/bookings/month", bookingHandler.ListByMonth)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
			secured.POST("/bookings/:id/accept", bookingHandler.Accept)
			secured.POST("/bookings/:id/reject", bookingHandler.Reject)
			secured.POST("/bookings/:id/reassign", bookingHandler.Reassign)
			secured.POST("/bookings/:id/review", bookingHandler.Review)

			secured.GET("/shops/:id/audit-logs", auditLogsHandler.List)
		}
	}
}
