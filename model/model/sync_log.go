package model

import (
	"time"
	"unicode/utf8"

	"github.com/jinzhu/gorm/dialects/postgres"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusError   = "error"
)

const MaxSyncLogErrorMessageLength = 1000

// SyncLog is the append only audit trail of ingestion attempts.
type SyncLog struct {
	ID           string          `gorm:"primary_key:true;type:uuid" json:"id"`
	Source       string          `gorm:"not null" json:"source"`
	Status       string          `gorm:"not null" json:"status"`
	RecordsCount int             `json:"records_count"`
	ErrorMessage *string         `json:"error_message"`
	Metadata     *postgres.Jsonb `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_log"
}

// TruncateErrorMessage limits the message to MaxSyncLogErrorMessageLength runes.
func TruncateErrorMessage(message string) string {
	if utf8.RuneCountInString(message) <= MaxSyncLogErrorMessageLength {
		return message
	}
	runes := []rune(message)
	return string(runes[:MaxSyncLogErrorMessageLength-3]) + "..."
}

// GetSyncStatus is success without errors, error when nothing went through
// and partial otherwise.
func GetSyncStatus(recordsCount, errorsCount int) string {
	if errorsCount == 0 {
		return SyncStatusSuccess
	}
	if recordsCount == 0 {
		return SyncStatusError
	}
	return SyncStatusPartial
}

// GetConnectionStatusForSync maps a sync status to the service health.
func GetConnectionStatusForSync(syncStatus string) string {
	if syncStatus == SyncStatusError {
		return ConnectionStatusError
	}
	return ConnectionStatusConnected
}
