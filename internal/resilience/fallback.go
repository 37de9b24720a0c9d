// Package resilience provides ordered failover across interchangeable
// provider backends. Every backend gets exactly one attempt per request, in
// registration order; there is no health tracking between requests, so a
// backend that failed on the previous message is still tried on the next one.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every entry in a [FallbackGroup] fails. It
// wraps the error of the last entry tried.
var ErrAllFailed = errors.New("all providers failed")

// fallbackEntry pairs a provider value with its display name.
type fallbackEntry[T any] struct {
	name  string
	value T
}

// FallbackGroup wraps a primary and zero or more fallback instances of the
// same provider type. When the primary fails the next fallback is tried in
// registration order.
//
// Registration (AddFallback) must finish before the first Execute call; after
// that the group is safe for concurrent use.
type FallbackGroup[T any] struct {
	entries []fallbackEntry[T]
}

// NewFallbackGroup creates a [FallbackGroup] with primary as the first entry.
// Additional fallbacks are registered via [FallbackGroup.AddFallback].
func NewFallbackGroup[T any](primary T, primaryName string) *FallbackGroup[T] {
	return &FallbackGroup[T]{
		entries: []fallbackEntry[T]{{name: primaryName, value: primary}},
	}
}

// AddFallback appends a fallback provider. Fallbacks are tried in the order
// they are added, after the primary.
func (fg *FallbackGroup[T]) AddFallback(name string, fallback T) {
	fg.entries = append(fg.entries, fallbackEntry[T]{name: name, value: fallback})
}

// Len returns the number of registered entries.
func (fg *FallbackGroup[T]) Len() int { return len(fg.entries) }

// Execute tries fn against each entry in order until one succeeds. Returns
// [ErrAllFailed] wrapped with the last entry's error if every entry fails.
func (fg *FallbackGroup[T]) Execute(fn func(T) error) error {
	var lastErr error
	for i := range fg.entries {
		entry := &fg.entries[i]
		err := fn(entry.value)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("provider failed, trying next",
			"provider", entry.name, "error", err)
	}
	return fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}

// ExecuteWithResult tries fn against each entry in the group until one
// succeeds, returning both the result value and error. This is a
// package-level function because Go does not support method-level type
// parameters.
func ExecuteWithResult[T any, R any](fg *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range fg.entries {
		entry := &fg.entries[i]
		result, err := fn(entry.value)
		if err == nil {
			return result, nil
		}
		lastErr = err
		slog.Warn("provider failed, trying next",
			"provider", entry.name, "error", err)
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
