package validate

import (
	"fmt"
	"strconv"
)

// NonEmpty checks that a required string field has a value.
func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MaxLen rejects values that exceed the byte limit. Nil pointers pass.
func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Days parses a day-count query parameter. An absent value yields the
// default; zero or negative counts are rejected.
func Days(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("days must be a positive integer")
	}
	return n, nil
}
