package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/idempotency"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

const idempotencyHeader = "Idempotency-Key"

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create     *ucBooking.CreateBooking
	get        *ucBooking.GetBooking
	listDate   *ucBooking.ListBookingsByDate
	listMonth  *ucBooking.ListBookingsByMonth
	transition *ucBooking.TransitionBooking
	reassign   *ucBooking.ReassignBooking
	rate       *ucBooking.RateBooking

	// idem is optional; without it Idempotency-Key is ignored.
	idem idempotency.Store
}

func NewBookingHandler(
	create *ucBooking.CreateBooking,
	get *ucBooking.GetBooking,
	listDate *ucBooking.ListBookingsByDate,
	listMonth *ucBooking.ListBookingsByMonth,
	transition *ucBooking.TransitionBooking,
	reassign *ucBooking.ReassignBooking,
	rate *ucBooking.RateBooking,
	idem idempotency.Store,
) *BookingHandler {
	return &BookingHandler{
		create:     create,
		get:        get,
		listDate:   listDate,
		listMonth:  listMonth,
		transition: transition,
		reassign:   reassign,
		rate:       rate,
		idem:       idem,
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	in := ucBooking.CreateBookingInput{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       string(req.Time),
		PayOnline:  req.PayOnline,
	}

	clientKey := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if clientKey == "" || h.idem == nil {
		out, err := h.create.Execute(c.Request.Context(), actor, in)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		httpresp.Created(c, out)
		return
	}

	h.createOnce(c, actor, idempotency.Key(actor.ID, clientKey), in)
}

// createOnce runs create at most once per key. A replay returns the
// booking the first request produced.
func (h *BookingHandler) createOnce(
	c *gin.Context,
	actor domain.Actor,
	key string,
	in ucBooking.CreateBookingInput,
) {
	ctx := c.Request.Context()

	bookingID, started, err := h.idem.Begin(ctx, key)
	if err != nil {
		if errors.Is(err, idempotency.ErrInProgress) {
			httperr.Write(c, http.StatusConflict, "request_in_progress", "A request with this key is still running.")
			return
		}
		httperr.Respond(c, httperr.Upstream("idempotency_unavailable", err))
		return
	}

	if !started {
		out, err := h.get.Execute(ctx, actor, bookingID)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		c.Header("Idempotent-Replay", "true")
		httpresp.Created(c, out)
		return
	}

	out, err := h.create.Execute(ctx, actor, in)
	if err != nil {
		if abortErr := h.idem.Abort(ctx, key); abortErr != nil {
			logger.L().Warn("idempotency abort failed", zap.String("key", key), zap.Error(abortErr))
		}
		httperr.Respond(c, err)
		return
	}

	if err := h.idem.Commit(ctx, key, out.ID); err != nil {
		logger.L().Warn("idempotency commit failed", zap.String("key", key), zap.Error(err))
	}
	httpresp.Created(c, out)
}

// ======================================================
// READ
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	out, err := h.get.Execute(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}

func (h *BookingHandler) ListByDate(c *gin.Context) {
	out, err := h.listDate.Execute(c.Request.Context(), middleware.ActorFrom(c), c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	out, err := h.listMonth.Execute(c.Request.Context(), middleware.ActorFrom(c), year, month)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	to, ok := domain.ParseStatus(req.Status)
	if !ok {
		httperr.Respond(c, httperr.Validation("invalid_status"))
		return
	}

	h.respond(c, func() (*dto.BookingDTO, error) {
		return h.transition.Execute(c.Request.Context(), middleware.ActorFrom(c), ucBooking.TransitionInput{
			BookingID: c.Param("id"),
			To:        to,
			Reason:    req.Reason,
		})
	})
}

func (h *BookingHandler) Accept(c *gin.Context) {
	h.respond(c, func() (*dto.BookingDTO, error) {
		return h.transition.Accept(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	})
}

func (h *BookingHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	h.respond(c, func() (*dto.BookingDTO, error) {
		return h.transition.Reject(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	})
}

func (h *BookingHandler) Reassign(c *gin.Context) {
	var req ReassignRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respond(c, func() (*dto.BookingDTO, error) {
		return h.reassign.Execute(c.Request.Context(), middleware.ActorFrom(c), ucBooking.ReassignInput{
			BookingID:     c.Param("id"),
			NewProviderID: req.NewProviderID,
			Time:          string(req.Time),
		})
	})
}

func (h *BookingHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respond(c, func() (*dto.BookingDTO, error) {
		return h.rate.Execute(c.Request.Context(), middleware.ActorFrom(c), ucBooking.RateInput{
			BookingID: c.Param("id"),
			Rating:    req.Rating,
			Comment:   req.Comment,
		})
	})
}

func (h *BookingHandler) respond(c *gin.Context, run func() (*dto.BookingDTO, error)) {
	out, err := run()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}
