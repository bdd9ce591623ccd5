package model

import (
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

const (
	ConnectionStatusConnected    = "connected"
	ConnectionStatusDisconnected = "disconnected"
	ConnectionStatusError        = "error"
)

// Services tracked on connection_status and api_credentials.
const (
	ServiceDataslayer   = "dataslayer"
	ServiceGoogleDrive  = "google_drive"
	ServiceGoogleSheets = "google_sheets"
)

type ConnectionStatus struct {
	ServiceName  string          `gorm:"primary_key:true;auto_increment:false" json:"service_name"`
	Status       string          `gorm:"not null" json:"status"`
	LastCheckAt  time.Time       `json:"last_check_at"`
	ErrorMessage *string         `json:"error_message"`
	Metadata     *postgres.Jsonb `json:"metadata"`
}

func (ConnectionStatus) TableName() string {
	return "connection_status"
}

func (cs *ConnectionStatus) IsConnected() bool {
	return cs != nil && cs.Status == ConnectionStatusConnected
}

func IsValidConnectionStatus(status string) bool {
	return status == ConnectionStatusConnected ||
		status == ConnectionStatusDisconnected ||
		status == ConnectionStatusError
}
