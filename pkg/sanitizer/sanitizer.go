package sanitizer

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for phone numbers written without a country code.
const DefaultRegion = "US"

// Normalizer is implemented by request types that clean their own fields.
type Normalizer interface {
	Normalize()
}

// Text trims s and collapses every run of whitespace into one space.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Phone formats a valid number as E.164.
func Phone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Slice applies normalize to every item, dropping empty values and
// duplicates while keeping order.
func Slice(items []string, normalize func(string) string) []string {
	if items == nil {
		return nil
	}

	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		normalized := normalize(item)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result
}

// TextPtr normalizes *s in place when set.
func TextPtr(s *string) {
	if s != nil {
		*s = Text(*s)
	}
}
