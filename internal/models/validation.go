package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients can map errors onto form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "kwphone", func(fl validator.FieldLevel) bool {
		return helpers.ValidWhatsAppNumber(fl.Field().String())
	})
	mustRegister(v, "area", func(fl validator.FieldLevel) bool {
		return helpers.IsArea(fl.Field().String())
	})
	mustRegister(v, "cartype", func(fl validator.FieldLevel) bool {
		return helpers.IsCarType(fl.Field().String())
	})
	mustRegister(v, "timeslot", func(fl validator.FieldLevel) bool {
		return helpers.IsTimeSlot(fl.Field().String())
	})
	mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
		_, ok := helpers.ParseClock(fl.Field().String())
		return ok
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// FieldMessage turns a validator failure into a short message for the client.
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "latitude and longitude must be provided together"
	case "kwphone":
		return "must be a Kuwaiti mobile number starting with 5, 6 or 9"
	case "area":
		return "is not a supported area"
	case "cartype":
		return "is not a supported car type"
	case "timeslot":
		return "must be one of the hourly slots from 08:00 AM to 06:00 PM"
	case "clock":
		return "must be a time such as 14:30 or 02:30 PM"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}
