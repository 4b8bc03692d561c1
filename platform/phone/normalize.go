// Package phone normalises client contact numbers.
// It belongs to the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when neither a dialling code nor a leading + is given.
const DefaultRegion = "IN"

// NormalizeE164 formats a number to E.164 using countryCode (a dialling code
// such as "+91" or "91", or empty). If the number cannot be parsed into a
// valid number the trimmed input is returned unchanged.
func NormalizeE164(countryCode, input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	candidate := trimmed
	region := DefaultRegion
	if cc := strings.TrimPrefix(strings.TrimSpace(countryCode), "+"); cc != "" && !strings.HasPrefix(trimmed, "+") {
		candidate = "+" + cc + strings.TrimLeft(trimmed, "0")
		region = ""
	}

	number, err := phonenumbers.Parse(candidate, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Valid reports whether the number parses to a valid number.
func Valid(countryCode, input string) bool {
	return strings.HasPrefix(NormalizeE164(countryCode, input), "+")
}
