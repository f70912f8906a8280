package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdko-org/loganalyzer/internal/analyzer"
	"github.com/sdko-org/loganalyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *analyzer.Summary {
	return &analyzer.Summary{
		RequestsPerIP: []models.IPCount{
			{IP: "192.168.1.1", Requests: 2},
			{IP: "192.168.1.2", Requests: 1},
		},
		TopEndpoint: models.EndpointResult{Endpoint: "/login", Count: 2},
		Suspicious:  []models.SuspiciousIP{{IP: "192.168.1.1", FailedAttempts: 2}},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteIPCounts(&buf, sampleSummary().RequestsPerIP)
	out := buf.String()

	assert.Contains(t, out, "IP")
	assert.Contains(t, out, "Number of requests")
	assert.Contains(t, out, "192.168.1.1")
	assert.Contains(t, out, "192.168.1.2")
	assert.True(t, strings.HasPrefix(out, "+"), "grid border expected, got:\n%s", out)

	// header, two rows, and a border line around each
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 7)

	for _, line := range lines {
		assert.NotContains(t, line, "| 0 ", "unexpected index column")
	}

	assert.Regexp(t, `^\+-+\+-+\+$`, lines[0])
	assert.Regexp(t, `^\+=+\+=+\+$`, lines[2], "header rule should use '='")
	assert.Regexp(t, `^\+-+\+-+\+$`, lines[4])
	assert.Regexp(t, `^\+-+\+-+\+$`, lines[6])
}

func TestWriteTable_HeaderRuleKeepsWidths(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []string{"IP", "Number of requests"}, [][]string{{"10.0.0.1", "3"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, len(lines[0]), len(lines[2]))
	assert.Equal(t, strings.ReplaceAll(lines[0], "-", "="), lines[2])
	assert.Equal(t, lines[0], lines[4])
}

func TestWriteSuspicious_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteSuspicious(&buf, nil)
	assert.Contains(t, buf.String(), "Failed login attempts")
	assert.NotContains(t, buf.String(), ".")
}

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	WriteConsole(&buf, sampleSummary())
	out := buf.String()

	ipIdx := strings.Index(out, "Number of Requests from each IP")
	epIdx := strings.Index(out, "Most frequently accessed endpoint\n/login (Accessed 2 times)")
	susIdx := strings.Index(out, "Suspicious IPs")

	require.NotEqual(t, -1, ipIdx)
	require.NotEqual(t, -1, epIdx)
	require.NotEqual(t, -1, susIdx)
	assert.Less(t, ipIdx, epIdx)
	assert.Less(t, epIdx, susIdx)
	assert.Contains(t, out[susIdx:], "Failed login attempts")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSummary()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Metric", "Details"}, records[0])
	assert.Equal(t, []string{
		MetricRequestsPerIP,
		"[{'IP': '192.168.1.1', 'Number of requests': 2}, {'IP': '192.168.1.2', 'Number of requests': 1}]",
	}, records[1])
	assert.Equal(t, []string{MetricTopEndpoint, "/login (Accessed 2 times)"}, records[2])
	assert.Equal(t, []string{
		MetricSuspicious,
		"[{'IP': '192.168.1.1', 'Failed login attempts': 2}]",
	}, records[3])
}

func TestWriteCSV_EmptyTables(t *testing.T) {
	var buf bytes.Buffer
	s := &analyzer.Summary{TopEndpoint: models.EndpointResult{Endpoint: "/", Count: 1}}
	require.NoError(t, WriteCSV(&buf, s))
	assert.Equal(t, "Metric,Details\nNumber of Requests per IP,[]\nMost Frequent Endpoint,/ (Accessed 1 times)\nSuspicious Activity,[]\n", buf.String())
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_analysis_output.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than nothing\n"), 0644))

	require.NoError(t, SaveCSV(path, sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Metric,Details\n"))
	assert.NotContains(t, string(data), "stale")

	err = SaveCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), sampleSummary())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, quote("plain"))
	assert.Equal(t, `"it's"`, quote("it's"))
	assert.Equal(t, `'both \' and "'`, quote(`both ' and "`))
	assert.Equal(t, `'back\\slash'`, quote(`back\slash`))
}
