package validators

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// tagCodes maps a failed tag to the error code returned to clients.
var tagCodes = map[string]string{
	"hhmm":     "invalid_time_format",
	"isodate":  "invalid_date",
	"required": "missing_field",
	"min":      "out_of_range",
	"max":      "out_of_range",
}

// Register adds the booking tags to gin's validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", isHHMM); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", isISODate)
}

func isHHMM(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := domain.ParseHHMM(s)
	return err == nil
}

func isISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(timezone.DateLayout, s)
	return err == nil
}

// CodeFor returns the client error code for a binding failure.
func CodeFor(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if code, ok := tagCodes[verrs[0].Tag()]; ok {
			return code
		}
	}
	return "invalid_request"
}
