package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ProviderID string    `json:"providerId" binding:"required"`
	ServiceID  string    `json:"serviceId" binding:"required"`
	Date       string    `json:"date" binding:"required,isodate"`
	Time       TimeValue `json:"time" binding:"required,hhmm"`
	PayOnline  bool      `json:"payOnline"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type ReassignRequest struct {
	NewProviderID string    `json:"newProviderId" binding:"required"`
	Time          TimeValue `json:"time"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// TimeValue accepts "HH:MM" or {"hour": h, "minute": m} and keeps the
// HH:MM text. Range checks happen when the text is parsed.
type TimeValue string

func (t *TimeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TimeValue(s)
		return nil
	}

	var hm struct {
		Hour   *int `json:"hour"`
		Minute *int `json:"minute"`
	}
	if err := json.Unmarshal(data, &hm); err != nil {
		return err
	}
	if hm.Hour == nil || hm.Minute == nil {
		return fmt.Errorf("time object needs hour and minute")
	}
	*t = TimeValue(fmt.Sprintf("%02d:%02d", *hm.Hour, *hm.Minute))
	return nil
}

// bindJSON binds the body and writes a validation error on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.Respond(c, httperr.Validation(validators.CodeFor(err)))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for bodies that may be absent.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	httperr.Respond(c, httperr.Validation(validators.CodeFor(err)))
	return false
}
