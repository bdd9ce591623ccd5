package ingest

import (
	"net/http"

	"pulse/model/model"
	"pulse/model/store"
	U "pulse/util"

	log "github.com/sirupsen/logrus"
)

// SyncOutcome is the audit of one ingestion attempt.
type SyncOutcome struct {
	// Service - connection_status row to update.
	Service string
	// Source - sync_log source. Defaults to Service.
	Source       string
	Status       string
	RecordsCount int
	ErrorMessage string

	SyncLogMetadata map[string]interface{}
	// ConnectionMetadata - nil keeps the metadata of the last check.
	ConnectionMetadata map[string]interface{}

	UpdateCredentialLastSync bool
}

// RecordSyncOutcome appends the sync log entry and refreshes the connection
// status of the service. Audit writes are best effort and only logged on failure.
func RecordSyncOutcome(outcome *SyncOutcome) {
	source := outcome.Source
	if source == "" {
		source = outcome.Service
	}

	logCtx := log.WithFields(log.Fields{"service_name": outcome.Service, "source": source,
		"status": outcome.Status})

	var errorMessage *string
	if outcome.ErrorMessage != "" {
		message := model.TruncateErrorMessage(outcome.ErrorMessage)
		errorMessage = &message
	}

	syncLog := &model.SyncLog{
		Source:       source,
		Status:       outcome.Status,
		RecordsCount: outcome.RecordsCount,
		ErrorMessage: errorMessage,
	}
	if outcome.SyncLogMetadata != nil {
		metadata, err := U.EncodeToPostgresJsonb(outcome.SyncLogMetadata)
		if err != nil {
			logCtx.WithError(err).Error("Failed to encode sync log metadata.")
		}
		syncLog.Metadata = metadata
	}
	if status := store.GetStore().CreateSyncLog(syncLog); status != http.StatusCreated {
		logCtx.WithField("err_code", status).Error("Failed to create sync log.")
	}

	connectionStatus := &model.ConnectionStatus{
		ServiceName: outcome.Service,
		Status:      model.GetConnectionStatusForSync(outcome.Status),
		LastCheckAt: U.TimeNowUTC(),
	}
	if connectionStatus.Status == model.ConnectionStatusError {
		connectionStatus.ErrorMessage = errorMessage
	}
	if outcome.ConnectionMetadata != nil {
		metadata, err := U.EncodeToPostgresJsonb(outcome.ConnectionMetadata)
		if err != nil {
			logCtx.WithError(err).Error("Failed to encode connection status metadata.")
		}
		connectionStatus.Metadata = metadata
	}
	if status := store.GetStore().UpsertConnectionStatus(connectionStatus); status != http.StatusOK {
		logCtx.WithField("err_code", status).Error("Failed to upsert connection status.")
	}

	if outcome.UpdateCredentialLastSync && outcome.Status != model.SyncStatusError {
		status := store.GetStore().UpdateAPICredentialLastSyncAt(outcome.Service, U.TimeNowUTC())
		if status != http.StatusAccepted {
			logCtx.WithField("err_code", status).Warn("Failed to update api credential last_sync_at.")
		}
	}
}
