package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cybersite/internal/models"
	"cybersite/internal/templates"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

type validity interface {
	IsValid() bool
}

// enum builds a validation func for a string enum type with an IsValid method.
func enum[T ~string](fl playgroundvalidator.FieldLevel) bool {
	v, ok := any(T(fl.Field().String())).(validity)
	return ok && v.IsValid()
}

var customTags = map[string]playgroundvalidator.Func{
	"appointment_type":   enum[models.AppointmentType],
	"appointment_status": enum[models.AppointmentStatus],
	"campaign_status":    enum[models.CampaignStatus],
	"campaign_type":      enum[models.CampaignType],
	"event_type":         enum[models.EventType],
	"event_status":       enum[models.EventStatus],
	"publish_status":     enum[models.PublishStatus],
	"resource_type":      enum[models.ResourceType],
	"testimonial_status": enum[models.TestimonialStatus],
	"testimonial_source": enum[models.TestimonialSource],
	"subscriber_status":  enum[models.SubscriberStatus],
	"user_role":          validateUserRole,
	"campaign_template":  validateCampaignTemplate,
}

// New returns the validator with the custom tags and cross-field rules registered.
func New() *CustomValidator {
	v := playgroundvalidator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %s: %v", tag, err))
		}
	}

	v.RegisterStructValidation(validateCampaign, models.Campaign{})
	v.RegisterStructValidation(validateEvent, models.Event{})

	return &CustomValidator{validator: v}
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	return New()
}

func validateUserRole(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidUserRole(models.UserRole(fl.Field().String()))
}

func validateCampaignTemplate(fl playgroundvalidator.FieldLevel) bool {
	_, ok := templates.Get(fl.Field().String())
	return ok
}

func validateCampaign(sl playgroundvalidator.StructLevel) {
	c := sl.Current().Interface().(models.Campaign)
	if c.Type == models.CampaignTypeMonthly && c.RecurringDay == nil {
		sl.ReportError(c.RecurringDay, "recurringDay", "RecurringDay", "required_monthly", "")
	}
	if c.Status == models.CampaignStatusScheduled && c.ScheduledAt == nil {
		sl.ReportError(c.ScheduledAt, "scheduledAt", "ScheduledAt", "required_scheduled", "")
	}
}

func validateEvent(sl playgroundvalidator.StructLevel) {
	e := sl.Current().Interface().(models.Event)
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		sl.ReportError(e.EndsAt, "endsAt", "EndsAt", "after_start", "")
	}
	if e.Capacity != nil && e.RegisteredCount > *e.Capacity {
		sl.ReportError(e.RegisteredCount, "registeredCount", "RegisteredCount", "capacity", "")
	}
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Fields renders one message per invalid field, keyed by its JSON name.
func (ve ValidationErrors) Fields() map[string]string {
	errMap := make(map[string]string, len(ve))
	for _, err := range ve {
		field := err.Field()
		param := err.Param()

		switch err.Tag() {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "url":
			errMap[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "eqfield":
			errMap[field] = fmt.Sprintf("%s must match %s", field, param)
		case "timezone":
			errMap[field] = fmt.Sprintf("%s must be an IANA time zone", field)
		case "required_monthly":
			errMap[field] = fmt.Sprintf("%s is required for monthly campaigns", field)
		case "required_scheduled":
			errMap[field] = fmt.Sprintf("%s is required for scheduled campaigns", field)
		case "after_start":
			errMap[field] = fmt.Sprintf("%s must not be before startsAt", field)
		case "user_role":
			errMap[field] = fmt.Sprintf("%s must be one of SUPER_ADMIN, ADMIN, EDITOR", field)
		case "campaign_template":
			errMap[field] = fmt.Sprintf("%s is not a known template", field)
		default:
			if _, ok := customTags[err.Tag()]; ok {
				errMap[field] = fmt.Sprintf("%s has an invalid value %q", field, fmt.Sprint(err.Value()))
				continue
			}
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, err.Tag())
		}
	}
	return errMap
}
