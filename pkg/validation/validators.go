// Package validation holds the pure form-validation helpers used by the
// wizard and run-config forms. Validators return a human-readable error
// or nil; they never panic on odd input.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ValidateNumber checks a form value against a numeric range. The value
// may be a string (raw form input), any Go numeric type, or nil.
// When optional is true an empty value passes; otherwise it yields a
// "<label>" is required error. The integer flag rejects fractional
// input, but only for string input: native numbers are assumed to have
// been produced by a numeric field already.
func ValidateNumber(value interface{}, min, max float64, integer bool, optional bool, label string) error {
	empty := false
	var num float64
	isString := false

	switch v := value.(type) {
	case nil:
		empty = true
	case string:
		isString = true
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			empty = true
			break
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("%q must be a number", label)
		}
		num = parsed
	case float64:
		num = v
	case float32:
		num = float64(v)
	case int:
		num = float64(v)
	case int64:
		num = float64(v)
	default:
		return fmt.Errorf("%q must be a number", label)
	}

	if empty {
		if optional {
			return nil
		}
		return fmt.Errorf("%q is required", label)
	}

	if integer && isString && num != math.Trunc(num) {
		return fmt.Errorf("%q must be an integer", label)
	}
	if num < min {
		return fmt.Errorf("%q must be greater than or equal to %v", label, min)
	}
	if num > max {
		return fmt.Errorf("%q must be less than or equal to %v", label, max)
	}
	return nil
}

const filenameForbiddenChars = `/\:*?"<>|`

// ValidateFilename checks a user-supplied name destined for a file-safe
// identifier.
func ValidateFilename(name string, minLength, maxLength int) error {
	if len(name) < minLength {
		return fmt.Errorf("must be at least %d characters long", minLength)
	}
	if len(name) > maxLength {
		return fmt.Errorf("must be at most %d characters long", maxLength)
	}
	if strings.ContainsAny(name, filenameForbiddenChars) {
		return fmt.Errorf("cannot contain any of the following characters: %s", filenameForbiddenChars)
	}
	if strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return fmt.Errorf("cannot start or end with an underscore")
	}
	if strings.Contains(name, "__") {
		return fmt.Errorf("cannot contain consecutive underscores")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("cannot start or end with whitespace")
	}
	if strings.Contains(name, "  ") {
		return fmt.Errorf("cannot contain consecutive spaces")
	}
	return nil
}

// ToolNameValidator enforces snake_case tool identifiers: lowercase
// letters, digits and single underscores, starting with a letter, at
// most 64 characters.
func ToolNameValidator(name string) error {
	if name == "" {
		return fmt.Errorf("Tool name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("Must be at most 64 characters")
	}
	if strings.Contains(name, "__") {
		return fmt.Errorf("Cannot contain consecutive underscores")
	}
	if strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return fmt.Errorf("Cannot start or end with an underscore")
	}
	first := rune(name[0])
	if !unicode.IsLower(first) || first > unicode.MaxASCII {
		return fmt.Errorf("Must start with a lowercase letter")
	}
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			continue
		}
		return fmt.Errorf("Can only contain lowercase letters, numbers, and underscores")
	}
	return nil
}
