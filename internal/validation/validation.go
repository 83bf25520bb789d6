// Package validation holds the field rules checked before any interaction, rating
// or endorsement operation touches the store.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MaxMessageLength = 1024
	MaxCommentLength = 1024
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// InteractionInput is the user-supplied part of an interaction request.
type InteractionInput struct {
	Message *string `validate:"omitempty,max=1024"`
}

// RatingInput is the user-supplied part of a rating.
type RatingInput struct {
	Rating  int     `validate:"min=-5,max=5"`
	Comment *string `validate:"omitempty,max=1024"`
}

// EndorsementInput is the user-supplied part of an endorsement.
type EndorsementInput struct {
	Confidence float64 `validate:"gte=0,lte=1"`
}

// Struct validates v and flattens validator errors into one readable message.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func ValidateMessage(message *string) error {
	return Struct(InteractionInput{Message: message})
}

func ValidateRating(rating int, comment *string) error {
	return Struct(RatingInput{Rating: rating, Comment: comment})
}

func ValidateConfidence(confidence float64) error {
	return Struct(EndorsementInput{Confidence: confidence})
}

// ValidatePage checks list paging arguments and applies the default and ceiling to limit.
func ValidatePage(skip, limit, defaultLimit, maxLimit int) (int, error) {
	if skip < 0 {
		return 0, errors.New("skip must be at least 0")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}
