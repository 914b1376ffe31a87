package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds category names and node IDs.
const maxIdentifierLength = 256

// ValidateIdentifier validates a category name or node ID.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - No leading or trailing whitespace
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s %q contains invalid control characters", kind, id)
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s %q has leading or trailing whitespace", kind, id)
	}
	return nil
}

// keyRegex matches shape and behavior keys: lowercase words joined by
// underscores or dashes.
var keyRegex = regexp.MustCompile(`^[a-z][a-z0-9]*([_-][a-z0-9]+)*$`)

// ValidateKey validates a shape or behavior key. The empty key is allowed and
// selects the neutral default.
func ValidateKey(code Code, key string) error {
	if key == "" {
		return nil
	}
	if !keyRegex.MatchString(key) {
		return New(code, "invalid key %q (want lowercase words joined by _ or -)", key)
	}
	return nil
}

// ValidateSector validates a sector's angular bounds in degrees. A zero sector
// (start == end == 0) is valid and means "divide the disk evenly".
func ValidateSector(start, end float64) error {
	for _, v := range []float64{start, end} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidSector, "sector bounds must be finite")
		}
	}
	if start == 0 && end == 0 {
		return nil
	}
	span := end - start
	if span <= 0 {
		span += 360
	}
	if span <= 0 || span > 360 {
		return New(ErrCodeInvalidSector, "sector [%v, %v) spans %v degrees (want (0, 360])", start, end, span)
	}
	return nil
}
