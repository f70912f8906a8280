package models

import (
	"time"
)

type AnalysisRun struct {
	RunID           string    `gorm:"primaryKey;type:varchar(36);not null"`
	InputPath       string    `gorm:"type:text;not null"`
	RecordCount     int       `gorm:"not null"`
	DroppedLines    int       `gorm:"not null"`
	TopEndpoint     string    `gorm:"type:text"`
	TopEndpointHits int       `gorm:"not null"`
	SuspiciousCount int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"index;not null"`
}

type AccessLog struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	RunID     string  `gorm:"type:varchar(36);not null;index"`
	IP        string  `gorm:"type:varchar(255);not null;index"`
	Timestamp string  `gorm:"type:varchar(64);not null"`
	Request   string  `gorm:"type:text;not null"`
	Status    int     `gorm:"not null;index"`
	Size      *int    `gorm:"type:integer"`
	Message   *string `gorm:"type:text"`
}

// NewAccessLog maps a parsed record onto its archive row for the given run.
func NewAccessLog(runID string, rec LogRecord) AccessLog {
	return AccessLog{
		RunID:     runID,
		IP:        rec.IP,
		Timestamp: rec.Timestamp,
		Request:   rec.Request,
		Status:    rec.Status,
		Size:      rec.Size,
		Message:   rec.Message,
	}
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

func (AccessLog) TableName() string {
	return "access_logs"
}
