package session

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"hifztrack/internal/api"
)

// ValidationError aggregates every reason a submission was rejected.
// User-correctable; never retried or queued.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, ", ")
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate, trans, nil
}

// Validate checks a submission against the contract: page number in 1..604,
// rating one of the recognized values, notes at most 500 characters. Pure;
// no network, no side effects.
func (s *Service) Validate(submission api.Submission) error {
	err := s.validate.Struct(submission)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate.Struct > %w", err)
	}

	reasons := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		reasons = append(reasons, fieldError.Translate(s.translator))
	}
	return &ValidationError{Reasons: reasons}
}
