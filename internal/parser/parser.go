// Package parser turns access log lines into records and collects them into
// an in-memory store.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sdko-org/loganalyzer/internal/models"
)

// linePattern matches `<ip> - - [<timestamp>] "<request>" <status> <size> <message>`.
// Only the start of the line is anchored, so anything after the size field
// ends up in the message group.
var linePattern = regexp.MustCompile(`^(\S+) - - \[(.*?)\] "(.*?)" (\d{3}) (\d+|-) ?(.*)?`)

// ParseLine extracts a record from a single log line. The second return value
// is false when the line does not have the expected shape.
func ParseLine(line string) (models.LogRecord, bool) {
	m := linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.LogRecord{}, false
	}

	// \d{3} guarantees a valid integer
	status, _ := strconv.Atoi(m[4])

	rec := models.LogRecord{
		IP:        m[1],
		Timestamp: m[2],
		Request:   m[3],
		Status:    status,
	}

	if isDigits(m[5]) {
		if size, err := strconv.Atoi(m[5]); err == nil {
			rec.Size = &size
		}
	}

	if msg := strings.TrimSpace(m[6]); msg != "" {
		rec.Message = &msg
	}

	return rec, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
