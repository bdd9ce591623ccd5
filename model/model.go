package model

import (
	"time"

	"pulse/model/model"
)

// Model - Interface of all methods to be implemented by the stores.
// Methods return the http status of the operation as error code.
type Model interface {
	// marketing_data
	CreateMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string)
	UpsertAggregatedMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string)
	GetAggregatedMarketingData(source string) (*model.MarketingData, int)
	GetMarketingData(source, metricType string, limit int) ([]model.MarketingData, int)

	// api_credentials
	GetActiveAPICredential(serviceName string) (*model.APICredential, int)
	UpdateAPICredentialLastSyncAt(serviceName string, lastSyncAt time.Time) int

	// connection_status
	UpsertConnectionStatus(status *model.ConnectionStatus) int
	GetConnectionStatus(serviceName string) (*model.ConnectionStatus, int)

	// sync_log
	CreateSyncLog(syncLog *model.SyncLog) int
	GetSyncLogs(source string, limit int) ([]model.SyncLog, int)
}
