// Package analyzer computes the summary statistics reported for a parsed
// access log. Every function reads the store and never modifies it.
package analyzer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sdko-org/loganalyzer/internal/models"
	"github.com/sdko-org/loganalyzer/internal/parser"
)

var (
	// ErrNoRecords is returned when the store holds no parsed records.
	ErrNoRecords = errors.New("no log records to analyze")
	// ErrMalformedRequest is wrapped by FormatError.
	ErrMalformedRequest = errors.New("malformed request line")
)

// FormatError reports a request line that has no path token.
type FormatError struct {
	Request string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q has no path", ErrMalformedRequest, e.Request)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformedRequest
}

// CountRequestsPerIP returns one row per distinct IP, ordered by IP.
func CountRequestsPerIP(store *parser.Store) []models.IPCount {
	counts := make(map[string]int)
	for _, rec := range store.Records {
		counts[rec.IP]++
	}

	rows := make([]models.IPCount, 0, len(counts))
	for ip, n := range counts {
		rows = append(rows, models.IPCount{IP: ip, Requests: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].IP < rows[j].IP
	})
	return rows
}

// MostFrequentEndpoint finds the request line seen most often and returns its
// path. Request lines are compared whole, so the same path under two methods
// counts as two endpoints. When counts tie, the request line that sorts first
// wins.
func MostFrequentEndpoint(store *parser.Store) (models.EndpointResult, error) {
	if store.Len() == 0 {
		return models.EndpointResult{}, ErrNoRecords
	}

	counts := make(map[string]int)
	for _, rec := range store.Records {
		counts[rec.Request]++
	}

	requests := make([]string, 0, len(counts))
	for req := range counts {
		requests = append(requests, req)
	}
	sort.Strings(requests)

	top := requests[0]
	for _, req := range requests[1:] {
		if counts[req] > counts[top] {
			top = req
		}
	}

	fields := strings.Fields(top)
	if len(fields) < 2 {
		return models.EndpointResult{}, &FormatError{Request: top}
	}

	return models.EndpointResult{Endpoint: fields[1], Count: counts[top]}, nil
}

// SuspiciousActivity counts, per IP, the records whose status equals
// statusCode or whose message equals message, and returns the IPs with more
// than threshold such records. Rows are ordered by count, highest first.
func SuspiciousActivity(store *parser.Store, threshold, statusCode int, message string) []models.SuspiciousIP {
	failed := make(map[string]int)
	for _, rec := range store.Records {
		if rec.Status == statusCode || (rec.Message != nil && *rec.Message == message) {
			failed[rec.IP]++
		}
	}

	rows := make([]models.SuspiciousIP, 0)
	for ip, n := range failed {
		if n > threshold {
			rows = append(rows, models.SuspiciousIP{IP: ip, FailedAttempts: n})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FailedAttempts == rows[j].FailedAttempts {
			return rows[i].IP < rows[j].IP
		}
		return rows[i].FailedAttempts > rows[j].FailedAttempts
	})
	return rows
}
