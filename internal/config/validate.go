package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// validValues maps known keys to their allowed values.
// An empty slice means any string is accepted, subject to the
// type-specific checks in Validate.
var validValues = map[string][]string{
	KeyIDPrefix:        {},
	KeyIDLength:        {},
	KeyIDFormat:        {"short", "uuid"},
	KeyDefaultPriority: {"1", "2", "3", "4", "5"},
	KeyStateFile:       {},
	KeyLogLevel:        {"debug", "info", "warn", "error", "fatal"},
	KeyLogFormat:       {"text", "json", "logfmt"},
	KeyOutputColor:     {"auto", "always", "never"},
}

// IsKnownKey reports whether key is one tasktree reads.
func IsKnownKey(key string) bool {
	_, ok := validValues[key]
	return ok
}

// KnownKeys returns the known keys in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(validValues))
	for k := range validValues {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidateValue checks a single key/value pair.
func ValidateValue(key, val string) error {
	allowed, known := validValues[key]
	if !known {
		return nil
	}
	if len(allowed) > 0 {
		if !slices.Contains(allowed, val) {
			return fmt.Errorf("%s: invalid value %q (allowed: %s)",
				key, val, strings.Join(allowed, ", "))
		}
		return nil
	}

	// Keys with no enumerated values have type-specific checks.
	switch key {
	case KeyIDLength:
		n, err := strconv.Atoi(val)
		if err != nil || n < 3 || n > 8 {
			return fmt.Errorf("%s: must be an integer between 3 and 8, got %q", key, val)
		}
	case KeyStateFile:
		if val == "" || strings.HasSuffix(val, string(filepath.Separator)) {
			return fmt.Errorf("%s: must name a file, got %q", key, val)
		}
	case KeyIDPrefix:
		if strings.ContainsAny(val, " \t/") {
			return fmt.Errorf("%s: must not contain whitespace or slashes, got %q", key, val)
		}
	}
	return nil
}

// Validate checks all values in s for known keys. It returns an error
// describing every invalid value found, or nil if all values are valid.
func Validate(s Store) error {
	all := s.All()
	var errs []string

	for _, key := range KnownKeys() {
		val, ok := all[key]
		if !ok {
			continue
		}
		if err := ValidateValue(key, val); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}
