package domain

import (
	"fmt"
	"regexp"
)

// Validation constants
const (
	MaxIdentityLength = 128
	DefaultPageSize   = 20
	MaxPageSize       = 100
)

var identityRegex = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// ValidateIdentity validates a participant identity (for example an 0x address).
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: identity cannot be empty", ErrInvalidIdentity)
	}

	if len(identity) > MaxIdentityLength {
		return fmt.Errorf("%w: identity exceeds %d characters", ErrInvalidIdentity, MaxIdentityLength)
	}

	if !identityRegex.MatchString(identity) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidIdentity, identity)
	}

	return nil
}

// ValidateAmount validates an energy or value quantity.
func ValidateAmount(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
