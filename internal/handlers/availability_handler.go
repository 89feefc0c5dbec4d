package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

type AvailabilityHandler struct {
	availability *ucBooking.GetAvailability
}

func NewAvailabilityHandler(availability *ucBooking.GetAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// AvailableSlots is public. The list is advisory and may be stale by the
// time a booking is created.
func (h *AvailabilityHandler) AvailableSlots(c *gin.Context) {
	out, err := h.availability.Execute(c.Request.Context(), ucBooking.AvailabilityInput{
		ProviderID: c.Param("id"),
		Date:       c.Query("date"),
		ServiceID:  c.Query("service_id"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}
