package models

// LogRecord is one parsed access log line. Size and Message are nil when the
// source line carried a placeholder or nothing at all.
type LogRecord struct {
	IP        string
	Timestamp string
	Request   string
	Status    int
	Size      *int
	Message   *string
}

// IPCount is a row of the per-IP request table.
type IPCount struct {
	IP       string
	Requests int
}

// EndpointResult names the most requested path and how often it was hit.
type EndpointResult struct {
	Endpoint string
	Count    int
}

// SuspiciousIP is a row of the failed-attempt table.
type SuspiciousIP struct {
	IP             string
	FailedAttempts int
}
