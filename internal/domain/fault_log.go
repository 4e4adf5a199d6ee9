package domain

import (
	"errors"
	"time"
)

var ErrActionRequired = errors.New("action name is required")

// FaultLog records a classified failure. Detail holds the low-level error
// text, which is kept for operators and never returned to clients.
type FaultLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActionName string    `json:"action_name" gorm:"size:200;not null;index"`
	StatusCode int       `json:"status_code" gorm:"not null;index"`
	Message    string    `json:"message" gorm:"size:500;not null"`
	Kind       string    `json:"kind" gorm:"size:50;not null"`
	Detail     string    `json:"detail" gorm:"type:text"`
	RequestID  string    `json:"request_id" gorm:"size:100;index"`
	LogTime    time.Time `json:"log_time" gorm:"not null;index"`
	CreateOn   time.Time `json:"create_on" gorm:"not null"`
}

// NewFaultLog creates a FaultLog entry
func NewFaultLog(action string, statusCode int, message, kind, detail, requestID string, logTime time.Time) (*FaultLog, error) {
	if action == "" {
		return nil, ErrActionRequired
	}
	if logTime.IsZero() {
		logTime = time.Now().UTC()
	}

	return &FaultLog{
		ActionName: action,
		StatusCode: statusCode,
		Message:    message,
		Kind:       kind,
		Detail:     detail,
		RequestID:  requestID,
		LogTime:    logTime.UTC(),
		CreateOn:   time.Now().UTC(),
	}, nil
}

// TableName returns the table name for GORM
func (FaultLog) TableName() string {
	return "logs"
}
