package task

import (
	"context"
	"net/http"
	"testing"

	"pulse/model/model"
	U "pulse/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	values map[string][][]string
	errs   map[string]error
}

func (f *fakeSheets) GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	if err, exists := f.errs[readRange]; exists {
		return nil, err
	}
	return f.values[readRange], nil
}

func TestDataRows(t *testing.T) {
	rows := dataRows([][]string{
		{"// Paste GA4 export below"},
		{},
		{"", "orphan"},
		{"2024-01-01", "desktop"},
	})
	assert.Equal(t, [][]string{{"2024-01-01", "desktop"}}, rows)
}

func TestSheetsSyncRun(t *testing.T) {
	memoryStore := setupStore(t, nil)
	sheetsSync := &SheetsSync{Sheets: &fakeSheets{
		values: map[string][][]string{
			"GA4_Traffic!A2:J": {
				{"// instructions"},
				{"2024-01-01", "desktop", "100", "80", "20", "300", "40", "120"},
				{"2024-01-02", "mobile", "50", "40", "10", "100", "50", "90"},
			},
			"Google_Ads!A2:J": {
				{"2024-01-01", "Brand", "2000", "80", "8", "160"},
			},
		},
		errs: map[string]error{
			"Search_Console!A2:H": model.NewUpstreamError(http.StatusBadRequest, "Failed to fetch Search_Console!A2:H",
				"Unable to parse range"),
		},
	}}

	results, err := sheetsSync.Run(context.Background(), "spreadsheet")
	require.NoError(t, err)
	require.Len(t, results, len(SyncedSheetNames()))

	assert.Equal(t, SheetSyncResult{RowsProcessed: 2}, results["GA4_Traffic"])
	assert.Equal(t, SheetSyncResult{RowsProcessed: 1}, results["Google_Ads"])
	assert.Equal(t, SheetSyncResult{}, results["LinkedIn_Ads"])
	assert.Equal(t, 0, results["Search_Console"].RowsProcessed)
	assert.Contains(t, results["Search_Console"].Error, "Unable to parse range")

	traffic, status := memoryStore.GetAggregatedMarketingData(model.SourceGA4Traffic)
	require.Equal(t, http.StatusFound, status)
	view := model.DecodeAggregatedView(model.SourceGA4Traffic, traffic.Data).(*model.GA4TrafficData)
	assert.Equal(t, int64(150), view.Sessions)
	assert.Equal(t, int64(120), view.Users)
	assert.Equal(t, "25.0", view.NewUserPercent)
	assert.Equal(t, "45.0", view.BounceRate)
	assert.Equal(t, int64(105), view.AvgSessionDuration)
	assert.Equal(t, "2.67", view.PagesPerSession)
	assert.Equal(t, map[string]int64{"desktop": 67, "mobile": 33}, view.DeviceBreakdown)
	assert.Equal(t, "2024-01-01", U.FormatDate(traffic.DateRangeStart))
	assert.Equal(t, "2024-01-02", U.FormatDate(traffic.DateRangeEnd))

	_, status = memoryStore.GetAggregatedMarketingData(model.SourceLinkedInAds)
	assert.Equal(t, http.StatusNotFound, status)

	logs, status := memoryStore.GetSyncLogs(model.ServiceGoogleSheets, 0)
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, model.SyncStatusPartial, logs[0].Status)
	assert.Equal(t, 3, logs[0].RecordsCount)
	assert.Contains(t, *logs[0].ErrorMessage, "Search_Console")

	connectionStatus, _ := memoryStore.GetConnectionStatus(model.ServiceGoogleSheets)
	assert.True(t, connectionStatus.IsConnected())
}

func TestSheetsSyncRerunKeepsOneAggregatedRow(t *testing.T) {
	memoryStore := setupStore(t, nil)
	values := map[string][][]string{
		"LinkedIn_Ads!A2:I": {{"2024-01-01", "Leads", "4000", "100", "10", "500", "", "7"}},
	}
	sheetsSync := &SheetsSync{Sheets: &fakeSheets{values: values}}

	_, err := sheetsSync.Run(context.Background(), "spreadsheet")
	require.NoError(t, err)
	values["LinkedIn_Ads!A2:I"] = append(values["LinkedIn_Ads!A2:I"],
		[]string{"2024-01-02", "Leads", "1000", "50", "5", "100", "", "3"})
	_, err = sheetsSync.Run(context.Background(), "spreadsheet")
	require.NoError(t, err)

	records, status := memoryStore.GetMarketingData(model.SourceLinkedInAds, model.MetricTypeAggregated, 0)
	require.Equal(t, http.StatusFound, status)
	require.Len(t, records, 1)
	view := model.DecodeAggregatedView(model.SourceLinkedInAds, records[0].Data).(*model.LinkedInAdsData)
	assert.Equal(t, int64(5000), view.Impressions)
	assert.Equal(t, int64(10), view.Leads)

	logs, _ := memoryStore.GetSyncLogs(model.ServiceGoogleSheets, 0)
	assert.Equal(t, model.SyncStatusSuccess, logs[0].Status)
}

func TestSheetsSyncInstructionRowsResetAggregate(t *testing.T) {
	memoryStore := setupStore(t, nil)
	values := map[string][][]string{
		"Google_Ads!A2:J": {{"2024-01-01", "Brand", "2000", "80", "8", "160"}},
	}
	sheetsSync := &SheetsSync{Sheets: &fakeSheets{values: values}}

	_, err := sheetsSync.Run(context.Background(), "spreadsheet")
	require.NoError(t, err)

	values["Google_Ads!A2:J"] = [][]string{{"// Paste Google Ads export below"}}
	results, err := sheetsSync.Run(context.Background(), "spreadsheet")
	require.NoError(t, err)
	assert.Equal(t, SheetSyncResult{}, results["Google_Ads"])

	records, status := memoryStore.GetMarketingData(model.SourceGoogleAds, model.MetricTypeAggregated, 0)
	require.Equal(t, http.StatusFound, status)
	require.Len(t, records, 1)
	view := model.DecodeAggregatedView(model.SourceGoogleAds, records[0].Data).(*model.GoogleAdsData)
	assert.Equal(t, int64(0), view.Impressions)
	assert.Equal(t, "0", view.CPC)
	assert.Empty(t, view.Campaigns)
}

func TestSheetsSyncAllSheetsFail(t *testing.T) {
	memoryStore := setupStore(t, nil)
	errs := map[string]error{}
	for _, sheet := range syncedSheets {
		errs[sheet.Range] = model.NewUpstreamError(http.StatusForbidden, "Failed to fetch "+sheet.Range, "API key not valid")
	}

	results, err := (&SheetsSync{Sheets: &fakeSheets{errs: errs}}).Run(context.Background(), "spreadsheet")
	require.NoError(t, err)
	for _, result := range results {
		assert.NotEmpty(t, result.Error)
	}

	connectionStatus, _ := memoryStore.GetConnectionStatus(model.ServiceGoogleSheets)
	assert.Equal(t, model.ConnectionStatusError, connectionStatus.Status)
}

func TestSheetsSyncMissingSpreadsheet(t *testing.T) {
	setupStore(t, nil)
	_, err := (&SheetsSync{Sheets: &fakeSheets{}}).Run(context.Background(), "")
	assert.True(t, model.IsErrorKind(err, model.ErrorKindValidation))
}
