package utils

import "strings"

func Float64Ptr(f float64) *float64 {
	return &f
}

func StringPtr(s string) *string {
	return &s
}

// TrimmedPtr trims s and returns nil when nothing is left.
func TrimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringOr returns the trimmed value of s, or fallback when it is blank.
func StringOr(s *string, fallback string) string {
	if v := TrimmedPtr(s); v != nil {
		return *v
	}
	return fallback
}
