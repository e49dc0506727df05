// Package phone formats phone numbers for storage and duplicate matching.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion applies when the caller passes no region.
const DefaultRegion = "US"

// Parse returns the E.164 form of input. Numbers without a country prefix are
// read in region. ok is false when the input is not a valid number.
func Parse(input, region string) (e164 string, ok bool) {
	if region == "" {
		region = DefaultRegion
	}
	number, err := phonenumbers.Parse(strings.TrimSpace(input), strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}

// NormalizeE164 is Parse that falls back to the trimmed input, so free text
// answers survive unchanged.
func NormalizeE164(input, region string) string {
	if e164, ok := Parse(input, region); ok {
		return e164
	}
	return strings.TrimSpace(input)
}
