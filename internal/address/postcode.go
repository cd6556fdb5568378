package address

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPostcode = errors.New("invalid dutch postcode")

// Dutch postcodes: four digits (first nonzero) followed by two letters.
var postcodePattern = regexp.MustCompile(`^[1-9][0-9]{3}[A-Z]{2}$`)

// CanonicalizePostcode validates a Dutch postcode and formats it as "DDDD LL".
// Case and internal whitespace are ignored on input.
func CanonicalizePostcode(postcode string) (string, error) {
	compact := strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
	if !postcodePattern.MatchString(compact) {
		return "", ErrInvalidPostcode
	}
	return compact[:4] + " " + compact[4:], nil
}

// CompactPostcode returns the canonical postcode without the internal space,
// the form the PDOK directory expects.
func CompactPostcode(postcode string) (string, error) {
	canonical, err := CanonicalizePostcode(postcode)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(canonical, " ", ""), nil
}
