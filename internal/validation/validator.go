// Package validation wraps a shared go-playground validator with the custom
// tags used by request payloads: latlng, budget and clock.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule, addressed by its JSON path.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestError collects every failed rule of one payload.
type RequestError struct {
	Fields []FieldError
}

func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		mustRegister("latlng", validLatLng)
		mustRegister("budget", validBudget)
		mustRegister("clock", validClock)
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s and returns a *RequestError describing every failure.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &RequestError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must have at most %s entries or characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries or characters", field, fe.Param())
	case "latlng":
		return fmt.Sprintf("%s must be [latitude, longitude] within valid ranges", field)
	case "budget":
		return fmt.Sprintf("%s must be a price tier from $ to $$$$", field)
	case "clock":
		return fmt.Sprintf("%s must be a time of day in HH:MM format", field)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

func validLatLng(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().([]float64)
	if !ok || len(v) != 2 {
		return false
	}
	lat, lon := v[0], v[1]
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func validBudget(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) >= 1 && len(s) <= 4 && strings.Trim(s, "$") == ""
}

func validClock(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}
