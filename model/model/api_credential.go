package model

import (
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

// APICredential holds the shared secret of an inbound integration.
// Managed outside this service, only last_sync_at is written here.
type APICredential struct {
	ID               string          `gorm:"primary_key:true;type:uuid" json:"id"`
	ServiceName      string          `gorm:"not null" json:"service_name"`
	APIKey           string          `json:"-"`
	IsActive         bool            `json:"is_active"`
	AdditionalConfig *postgres.Jsonb `json:"additional_config"`
	LastSyncAt       *time.Time      `json:"last_sync_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (APICredential) TableName() string {
	return "api_credentials"
}

const AdditionalConfigFolderID = "folder_id"
