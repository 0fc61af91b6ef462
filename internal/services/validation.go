package services

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/storefront-be/internal/apperr"
)

// validationError converts ozzo validation errors into an apperr validation failure.
func validationError(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperr.Validation(verrs.Error())
	}
	return apperr.Validation(err.Error())
}

func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len(s) > n {
			return errors.New("is too long")
		}
		return nil
	}
}

func equalsString(want, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(msg)
		}
		return nil
	}
}

func noBlankItems(value interface{}) error {
	items, _ := value.([]string)
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return errors.New("must not contain blank entries")
		}
	}
	return nil
}

func noSurroundingSpace(value interface{}) error {
	s, _ := value.(string)
	if s != strings.TrimSpace(s) {
		return errors.New("must not start or end with whitespace")
	}
	return nil
}
