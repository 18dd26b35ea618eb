package http

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"interviewdesk/internal/domain"
)

var validatorsOnce sync.Once

// registerValidators adds the hhmm and isodate tags to gin's validator.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseTimeOfDay(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(domain.DateLayout, fl.Field().String())
			return err == nil
		})
	})
}

// bindingMessage turns validator output into one line a caller can act on.
func bindingMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request body"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "hhmm":
		return fe.Field() + " must be HH:MM"
	case "isodate":
		return fe.Field() + " must be YYYY-MM-DD"
	default:
		return fe.Field() + " is invalid"
	}
}

// fieldName reports fields by their wire name.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
