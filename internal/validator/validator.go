package validator

import (
	"strings"
	"sync"

	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRequest validates a request struct against its `validate` tags and
// returns a validation-marked error naming the offending fields.
func ValidateRequest(req interface{}) error {
	if req == nil {
		return ierr.NewError("request cannot be nil").
			Mark(ierr.ErrValidation)
	}

	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation)
	}

	fields := make([]string, 0, len(validationErrors))
	details := make(map[string]interface{}, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		fields = append(fields, field)
		details[field] = fe.Tag()
	}

	return ierr.NewErrorf("invalid value for fields: %s", strings.Join(fields, ", ")).
		WithHint("Please check the request payload").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
