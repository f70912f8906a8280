package analyzer

import (
	"github.com/sdko-org/loganalyzer/internal/models"
	"github.com/sdko-org/loganalyzer/internal/parser"
)

// Options selects what counts as a failed attempt.
type Options struct {
	Threshold    int
	MatchStatus  int
	MatchMessage string
}

// Summary bundles the three statistics of one run.
type Summary struct {
	RequestsPerIP []models.IPCount
	TopEndpoint   models.EndpointResult
	Suspicious    []models.SuspiciousIP
}

// Analyze runs every aggregator over store.
func Analyze(store *parser.Store, opts Options) (*Summary, error) {
	top, err := MostFrequentEndpoint(store)
	if err != nil {
		return nil, err
	}

	return &Summary{
		RequestsPerIP: CountRequestsPerIP(store),
		TopEndpoint:   top,
		Suspicious:    SuspiciousActivity(store, opts.Threshold, opts.MatchStatus, opts.MatchMessage),
	}, nil
}
