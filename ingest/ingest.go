package ingest

import (
	"context"
	"net/http"

	C "pulse/config"
	"pulse/integration/dataslayer"
	"pulse/metrics"
	"pulse/model/model"
	"pulse/model/store"
	U "pulse/util"

	cacheRedis "pulse/cache/redis"

	log "github.com/sirupsen/logrus"
)

type WebhookResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	RecordID string `json:"record_id"`
}

const messageWebhookStored = "Data received and stored"

// Authenticate checks the supplied key against the active credential of the service.
func Authenticate(serviceName, apiKey string) error {
	if apiKey == "" {
		return model.NewAuthenticationError("API key is required")
	}

	credential, status := store.GetStore().GetActiveAPICredential(serviceName)
	if status != http.StatusFound {
		log.WithFields(log.Fields{"service_name": serviceName, "status": status}).
			Warn("No active api credential for service.")
		return model.NewAuthenticationError("Invalid API credentials")
	}

	if credential.APIKey != apiKey {
		return model.NewAuthenticationError("Invalid API key")
	}
	return nil
}

// IngestWebhook runs a pushed payload through authentication, validation,
// normalization and persistence. Authentication and validation failures
// leave no trace in the store. Every later failure is audited.
func IngestWebhook(ctx context.Context, serviceName string, body []byte) (*WebhookResponse, error) {
	metrics.Increment(metrics.IncrWebhookRequestCount)

	apiKey, err := dataslayer.DecodeAPIKey(body)
	if err != nil {
		return nil, err
	}

	if err := Authenticate(serviceName, apiKey); err != nil {
		metrics.Increment(metrics.IncrWebhookAuthFailureCount)
		return nil, err
	}

	payload, err := dataslayer.DecodePayload(body)
	if err != nil {
		return nil, err
	}

	if err := dataslayer.ValidatePayload(body); err != nil {
		return nil, err
	}

	record := dataslayer.Normalize(payload)
	if record.MetricType == model.MetricTypeAggregated {
		return nil, model.NewValidationError("Invalid payload", "metric_type aggregated is reserved")
	}

	logCtx := log.WithFields(log.Fields{"service_name": serviceName, "source": record.Source,
		"metric_type": record.MetricType})

	if err := ctx.Err(); err != nil {
		failure := model.NewUpstreamError(http.StatusGatewayTimeout, "Request timed out", err.Error())
		RecordSyncOutcome(&SyncOutcome{Service: serviceName, Source: record.Source,
			Status: model.SyncStatusError, ErrorMessage: failure.Error()})
		return nil, failure
	}

	marketingData, err := PersistRecord(record)
	if err != nil {
		logCtx.WithError(err).Error("Failed to persist webhook record.")
		RecordSyncOutcome(&SyncOutcome{Service: serviceName, Source: record.Source,
			Status: model.SyncStatusError, ErrorMessage: errorDetails(err)})
		return nil, err
	}

	RecordSyncOutcome(&SyncOutcome{
		Service:      serviceName,
		Source:       record.Source,
		Status:       model.SyncStatusSuccess,
		RecordsCount: 1,
		ConnectionMetadata: map[string]interface{}{
			"last_sync":      U.TimeNowUTC(),
			"records_synced": 1,
		},
		UpdateCredentialLastSync: true,
	})

	logCtx.WithField("record_id", marketingData.ID).Info("Stored webhook record.")
	return &WebhookResponse{Success: true, Message: messageWebhookStored, RecordID: marketingData.ID}, nil
}

// PersistRecord appends one raw record.
func PersistRecord(record *model.NormalizedRecord) (*model.MarketingData, error) {
	data, err := U.EncodeToPostgresJsonb(record.Data)
	if err != nil {
		metrics.Increment(metrics.CountMarketingRecordsFailed)
		return nil, model.NewPersistenceError("Failed to insert data", err.Error())
	}

	marketingData, status, errMsg := store.GetStore().CreateMarketingData(&model.MarketingData{
		Source:         record.Source,
		MetricType:     record.MetricType,
		Data:           data,
		DateRangeStart: record.DateRangeStart,
		DateRangeEnd:   record.DateRangeEnd,
	})
	if status != http.StatusCreated {
		metrics.Increment(metrics.CountMarketingRecordsFailed)
		if errMsg == "" {
			errMsg = http.StatusText(status)
		}
		return nil, model.NewPersistenceError("Failed to insert data", errMsg)
	}

	metrics.Increment(metrics.CountMarketingRecordsPersisted)
	return marketingData, nil
}

// PersistAggregate replaces the aggregated record of the summary's source
// and drops its cached copy.
func PersistAggregate(summary *model.AggregatedSummary) error {
	data, err := U.EncodeToPostgresJsonb(summary.Data)
	if err != nil {
		return model.NewPersistenceError("Failed to upsert aggregated data", err.Error())
	}

	_, status, errMsg := store.GetStore().UpsertAggregatedMarketingData(&model.MarketingData{
		Source:         summary.Source,
		MetricType:     model.MetricTypeAggregated,
		Data:           data,
		DateRangeStart: summary.DateRangeStart,
		DateRangeEnd:   summary.DateRangeEnd,
	})
	if status != http.StatusOK {
		if errMsg == "" {
			errMsg = http.StatusText(status)
		}
		return model.NewPersistenceError("Failed to upsert aggregated data", errMsg)
	}

	metrics.Increment(metrics.IncrAggregatedRecordsUpserted)
	invalidateAggregatedCache(summary.Source)
	return nil
}

func invalidateAggregatedCache(source string) {
	if !C.IsCacheEnabled() {
		return
	}

	key, err := model.GetAggregatedMarketingDataCacheKey(source)
	if err != nil {
		log.WithError(err).WithField("source", source).Error("Invalid aggregated cache key.")
		return
	}

	if err := cacheRedis.Del(key); err != nil {
		log.WithError(err).WithField("source", source).Warn("Failed to invalidate aggregated cache.")
	}
}

// errorDetails is the underlying cause text stored in the audit trail.
func errorDetails(err error) string {
	if ingestErr, ok := model.AsIngestError(err); ok && ingestErr.Details != "" {
		return ingestErr.Details
	}
	return err.Error()
}
