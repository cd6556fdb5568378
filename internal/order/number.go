package order

import (
	"fmt"
	"time"
)

// orderNumberTag prefixes every HealClinics order number.
const orderNumberTag = "HC"

// NumberPrefix returns the day prefix of an order number, e.g. "HC20260828".
func NumberPrefix(t time.Time) string {
	return fmt.Sprintf("%s%04d%02d%02d", orderNumberTag, t.Year(), int(t.Month()), t.Day())
}

// FormatNumber appends the 4-digit zero-padded daily sequence to the day prefix.
func FormatNumber(t time.Time, sequence int) string {
	return fmt.Sprintf("%s%04d", NumberPrefix(t), sequence)
}
