package weather

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	locationInput = regexp.MustCompile(`^.*[a-zA-Z]+.*$`)
	validate      = validator.New()
)

// IsValidLocationInput reports whether text looks like a place name, i.e.
// it contains at least one letter.
func IsValidLocationInput(text string) bool {
	return locationInput.MatchString(text)
}

// Validate checks that every request parameter is present and that Units is
// one the provider understands.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
