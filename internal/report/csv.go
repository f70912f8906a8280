package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sdko-org/loganalyzer/internal/analyzer"
	"github.com/sdko-org/loganalyzer/internal/models"
)

const (
	MetricRequestsPerIP = "Number of Requests per IP"
	MetricTopEndpoint   = "Most Frequent Endpoint"
	MetricSuspicious    = "Suspicious Activity"
)

// WriteCSV writes the Metric,Details header followed by exactly three rows.
func WriteCSV(w io.Writer, s *analyzer.Summary) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Metric", "Details"},
		{MetricRequestsPerIP, ipCountDetails(s.RequestsPerIP)},
		{MetricTopEndpoint, EndpointLine(s.TopEndpoint)},
		{MetricSuspicious, suspiciousDetails(s.Suspicious)},
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// SaveCSV writes the summary to path, replacing any existing file.
func SaveCSV(path string, s *analyzer.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func ipCountDetails(rows []models.IPCount) string {
	entries := make([]string, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, recordLiteral(ColumnIP, row.IP, ColumnRequests, row.Requests))
	}
	return "[" + strings.Join(entries, ", ") + "]"
}

func suspiciousDetails(rows []models.SuspiciousIP) string {
	entries := make([]string, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, recordLiteral(ColumnIP, row.IP, ColumnFailedAuth, row.FailedAttempts))
	}
	return "[" + strings.Join(entries, ", ") + "]"
}

// recordLiteral renders {'<keyCol>': '<key>', '<countCol>': <n>}.
func recordLiteral(keyCol, key, countCol string, n int) string {
	return "{" + quote(keyCol) + ": " + quote(key) + ", " + quote(countCol) + ": " + strconv.Itoa(n) + "}"
}

// quote uses single quotes unless the text contains one and no double quote.
func quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
	}
	r := strings.NewReplacer(`\`, `\\`, "'", `\'`)
	return "'" + r.Replace(s) + "'"
}
