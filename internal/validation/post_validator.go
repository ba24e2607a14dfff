package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tweetpulse/pkg/contracts/domain"
)

// PostValidator applies the struct tags on domain.Post
type PostValidator struct {
	validate *validator.Validate
}

// NewPostValidator creates a validator for loaded posts
func NewPostValidator() *PostValidator {
	return &PostValidator{validate: validator.New()}
}

// Validate checks a single post. row is the 1-based data row used in messages.
func (v *PostValidator) Validate(row int, post domain.Post) error {
	if post.Timestamp.IsZero() {
		return fmt.Errorf("row %d: timestamp is missing", row)
	}

	if err := v.validate.Struct(post); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("row %d: %s", row, describe(fieldErrs))
		}
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return strings.Join(parts, "; ")
}
