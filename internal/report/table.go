// Package report renders analysis results for the console and for the CSV
// summary file.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sdko-org/loganalyzer/internal/analyzer"
	"github.com/sdko-org/loganalyzer/internal/models"
)

// Column names shared by the console tables and the CSV details cells.
const (
	ColumnIP         = "IP"
	ColumnRequests   = "Number of requests"
	ColumnFailedAuth = "Failed login attempts"
)

// WriteTable draws rows as a bordered grid under headers. The rule below the
// header is drawn with '=' and every other rule with '-'. No index column is
// added.
func WriteTable(w io.Writer, headers []string, rows [][]string) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.AppendBulk(rows)
	table.Render()

	lines := strings.SplitAfter(buf.String(), "\n")
	// top border, header row, then the header rule
	if len(lines) > 2 {
		lines[2] = strings.ReplaceAll(lines[2], "-", "=")
	}
	io.WriteString(w, strings.Join(lines, ""))
}

// WriteIPCounts prints the per-IP request table.
func WriteIPCounts(w io.Writer, rows []models.IPCount) {
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{row.IP, strconv.Itoa(row.Requests)})
	}
	WriteTable(w, []string{ColumnIP, ColumnRequests}, cells)
}

// WriteSuspicious prints the suspicious-IP table. With no rows only the header
// is drawn.
func WriteSuspicious(w io.Writer, rows []models.SuspiciousIP) {
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{row.IP, strconv.Itoa(row.FailedAttempts)})
	}
	WriteTable(w, []string{ColumnIP, ColumnFailedAuth}, cells)
}

// EndpointLine formats the most frequent endpoint the way both outputs show it.
func EndpointLine(top models.EndpointResult) string {
	return fmt.Sprintf("%s (Accessed %d times)", top.Endpoint, top.Count)
}

// WriteConsole prints the three report sections in order.
func WriteConsole(w io.Writer, s *analyzer.Summary) {
	fmt.Fprintln(w, "\nNumber of Requests from each IP")
	WriteIPCounts(w, s.RequestsPerIP)

	fmt.Fprintf(w, "\nMost frequently accessed endpoint\n%s\n", EndpointLine(s.TopEndpoint))

	fmt.Fprintln(w, "\nSuspicious IPs")
	WriteSuspicious(w, s.Suspicious)
}
