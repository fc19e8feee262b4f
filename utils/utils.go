// Package utils provides utility functions for the application.
package utils

import "time"

// UTCNow is the clock every job timestamp is taken from
func UTCNow() time.Time {
	return time.Now().UTC()
}

func ToPtr[T any](v T) *T {
	return &v
}

// Deref returns the pointed value or the zero value of T
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// TotalPages returns the number of pages needed for total items at perPage items per page
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
