package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"pulse/model/model"
	"pulse/model/store"
	"pulse/model/store/memory"
	U "pulse/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingInsertStore struct {
	*memory.Memory
}

func (s *failingInsertStore) CreateMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string) {
	return nil, http.StatusInternalServerError, "connection refused"
}

func setupMemoryStore(t *testing.T) *memory.Memory {
	memoryStore := memory.New()
	store.SetStore(memoryStore)
	t.Cleanup(func() { store.SetStore(nil) })
	return memoryStore
}

func seedCredential(t *testing.T, memoryStore *memory.Memory, serviceName, apiKey string, active bool) {
	_, status := memoryStore.CreateAPICredential(&model.APICredential{ServiceName: serviceName, APIKey: apiKey, IsActive: active})
	require.Equal(t, http.StatusCreated, status)
}

func webhookBody(t *testing.T, fields map[string]interface{}) []byte {
	body, err := json.Marshal(fields)
	require.NoError(t, err)
	return body
}

func TestAuthenticate(t *testing.T) {
	memoryStore := setupMemoryStore(t)

	err := Authenticate(model.ServiceDataslayer, "")
	require.Error(t, err)
	assert.Equal(t, "API key is required", err.Error())

	err = Authenticate(model.ServiceDataslayer, "secret")
	assert.Equal(t, "Invalid API credentials", err.Error())

	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", true)
	assert.NoError(t, Authenticate(model.ServiceDataslayer, "secret"))

	err = Authenticate(model.ServiceDataslayer, "wrong")
	assert.Equal(t, "Invalid API key", err.Error())
	assert.Equal(t, http.StatusUnauthorized, model.ErrorStatus(err))
}

func TestIngestWebhookInactiveCredential(t *testing.T) {
	memoryStore := setupMemoryStore(t)
	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", false)

	body := webhookBody(t, map[string]interface{}{"source": "google_ads", "metric_type": "campaign_performance",
		"data": map[string]interface{}{"clicks": 1}, "api_key": "secret"})
	_, err := IngestWebhook(context.Background(), model.ServiceDataslayer, body)
	require.Error(t, err)
	assert.True(t, model.IsErrorKind(err, model.ErrorKindAuthentication))

	// No side effects.
	_, status := memoryStore.GetSyncLogs("", 0)
	assert.Equal(t, http.StatusNotFound, status)
	_, status = memoryStore.GetConnectionStatus(model.ServiceDataslayer)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIngestWebhookMissingKeyBeforeValidation(t *testing.T) {
	setupMemoryStore(t)

	_, err := IngestWebhook(context.Background(), model.ServiceDataslayer, []byte(`{"source":"google_ads"}`))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, model.ErrorStatus(err))
	assert.Equal(t, "API key is required", err.Error())

	_, err = IngestWebhook(context.Background(), model.ServiceDataslayer, []byte(`{"metric_type":5,"data":{}}`))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, model.ErrorStatus(err))
}

func TestIngestWebhookValidation(t *testing.T) {
	memoryStore := setupMemoryStore(t)
	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", true)

	testCases := map[string]map[string]interface{}{
		"MissingData":       {"metric_type": "campaign_performance", "api_key": "secret"},
		"MissingMetricType": {"data": map[string]interface{}{}, "api_key": "secret"},
		"ReservedAggregated": {"metric_type": "aggregated", "data": map[string]interface{}{},
			"api_key": "secret"},
		"ReservedAggregatedInData": {"source": "google_ads", "metric_type": "campaign_performance",
			"data": map[string]interface{}{"metric_type": "aggregated"}, "api_key": "secret"},
		"MistypedMetricType": {"metric_type": 5, "data": map[string]interface{}{}, "api_key": "secret"},
	}
	for name, fields := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := IngestWebhook(context.Background(), model.ServiceDataslayer, webhookBody(t, fields))
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, model.ErrorStatus(err))
		})
	}

	_, status := memoryStore.GetSyncLogs("", 0)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIngestWebhookRedeliveryDuplicates(t *testing.T) {
	memoryStore := setupMemoryStore(t)
	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", true)

	body := webhookBody(t, map[string]interface{}{
		"source":           "google_ads",
		"metric_type":      "campaign_performance",
		"data":             map[string]interface{}{"campaign_name": "Brand", "clicks": 0, "impressions": 100},
		"date_range_start": "2024-01-01",
		"api_key":          "secret",
	})

	first, err := IngestWebhook(context.Background(), model.ServiceDataslayer, body)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, "Data received and stored", first.Message)

	second, err := IngestWebhook(context.Background(), model.ServiceDataslayer, body)
	require.NoError(t, err)
	assert.NotEqual(t, first.RecordID, second.RecordID)

	records, status := memoryStore.GetMarketingData(model.SourceGoogleAds, model.MetricTypeCampaignPerformance, 0)
	require.Equal(t, http.StatusFound, status)
	require.Len(t, records, 2)

	data, err := U.DecodePostgresJsonb(records[0].Data)
	require.NoError(t, err)
	assert.Equal(t, "0", data["ctr"])
	assert.Equal(t, "0", data["cpc"])
	assert.Equal(t, "0", data["conversion_rate"])
	assert.Equal(t, "2024-01-01", U.FormatDate(records[0].DateRangeStart))

	logs, status := memoryStore.GetSyncLogs(model.SourceGoogleAds, 0)
	require.Equal(t, http.StatusFound, status)
	require.Len(t, logs, 2)
	assert.Equal(t, model.SyncStatusSuccess, logs[0].Status)
	assert.Equal(t, 1, logs[0].RecordsCount)

	connectionStatus, status := memoryStore.GetConnectionStatus(model.ServiceDataslayer)
	require.Equal(t, http.StatusFound, status)
	assert.True(t, connectionStatus.IsConnected())
	assert.Nil(t, connectionStatus.ErrorMessage)
	metadata, err := U.DecodePostgresJsonb(connectionStatus.Metadata)
	require.NoError(t, err)
	assert.Equal(t, float64(1), metadata["records_synced"])

	credential, _ := memoryStore.GetActiveAPICredential(model.ServiceDataslayer)
	assert.NotNil(t, credential.LastSyncAt)
}

func TestIngestWebhookUnknownSourcePassThrough(t *testing.T) {
	memoryStore := setupMemoryStore(t)
	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", true)

	body := webhookBody(t, map[string]interface{}{"metric_type": "kpi_summary",
		"data": map[string]interface{}{"custom": "value"}, "api_key": "secret"})
	_, err := IngestWebhook(context.Background(), model.ServiceDataslayer, body)
	require.NoError(t, err)

	records, status := memoryStore.GetMarketingData(model.SourceDataslayer, model.MetricTypeKPISummary, 0)
	require.Equal(t, http.StatusFound, status)
	data, _ := U.DecodePostgresJsonb(records[0].Data)
	assert.Equal(t, map[string]interface{}{"custom": "value"}, data)
}

func TestIngestWebhookPersistenceFailureIsAudited(t *testing.T) {
	memoryStore := memory.New()
	store.SetStore(&failingInsertStore{Memory: memoryStore})
	t.Cleanup(func() { store.SetStore(nil) })
	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", true)

	body := webhookBody(t, map[string]interface{}{"source": "linkedin_ads", "metric_type": "campaign_performance",
		"data": map[string]interface{}{"clicks": 3}, "api_key": "secret"})
	_, err := IngestWebhook(context.Background(), model.ServiceDataslayer, body)
	require.Error(t, err)
	assert.True(t, model.IsErrorKind(err, model.ErrorKindPersistence))
	assert.Equal(t, http.StatusInternalServerError, model.ErrorStatus(err))

	logs, status := memoryStore.GetSyncLogs(model.SourceLinkedInAds, 0)
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, model.SyncStatusError, logs[0].Status)
	assert.Equal(t, 0, logs[0].RecordsCount)
	assert.Equal(t, "connection refused", *logs[0].ErrorMessage)

	connectionStatus, status := memoryStore.GetConnectionStatus(model.ServiceDataslayer)
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, model.ConnectionStatusError, connectionStatus.Status)
	assert.Equal(t, "connection refused", *connectionStatus.ErrorMessage)

	credential, _ := memoryStore.GetActiveAPICredential(model.ServiceDataslayer)
	assert.Nil(t, credential.LastSyncAt)
}

func TestIngestWebhookCancelledContext(t *testing.T) {
	memoryStore := setupMemoryStore(t)
	seedCredential(t, memoryStore, model.ServiceDataslayer, "secret", true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := webhookBody(t, map[string]interface{}{"metric_type": "kpi_summary",
		"data": map[string]interface{}{}, "api_key": "secret"})
	_, err := IngestWebhook(ctx, model.ServiceDataslayer, body)
	require.Error(t, err)
	assert.Equal(t, http.StatusGatewayTimeout, model.ErrorStatus(err))

	logs, status := memoryStore.GetSyncLogs(model.SourceDataslayer, 0)
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, model.SyncStatusError, logs[0].Status)
}

func TestPersistAggregateKeepsSingleRow(t *testing.T) {
	memoryStore := setupMemoryStore(t)

	for i := 0; i < 3; i++ {
		summary := model.AggregateGoogleAds([]model.GoogleAdsRow{{Impressions: int64(100 * (i + 1)), Clicks: 10}})
		require.NoError(t, PersistAggregate(summary))
	}

	records, status := memoryStore.GetMarketingData(model.SourceGoogleAds, model.MetricTypeAggregated, 0)
	require.Equal(t, http.StatusFound, status)
	assert.Len(t, records, 1)

	view, ok := model.DecodeAggregatedView(model.SourceGoogleAds, records[0].Data).(*model.GoogleAdsData)
	require.True(t, ok)
	assert.Equal(t, int64(300), view.Impressions)
}
