package task

import (
	"context"
	"strings"
	"time"

	C "pulse/config"
	"pulse/ingest"
	"pulse/metrics"
	"pulse/model/model"
	U "pulse/util"

	log "github.com/sirupsen/logrus"
)

// SheetRangeFetcher reads the cell values of a spreadsheet range.
type SheetRangeFetcher interface {
	GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

type SheetSyncResult struct {
	RowsProcessed int    `json:"rowsProcessed"`
	Error         string `json:"error,omitempty"`
}

type sheetAggregator func(rows [][]string) *model.AggregatedSummary

type syncedSheet struct {
	Name      string
	Range     string
	Aggregate sheetAggregator
}

// Sheets are synced in this order. Each range skips the header row.
var syncedSheets = []syncedSheet{
	{"GA4_Traffic", "GA4_Traffic!A2:J", func(rows [][]string) *model.AggregatedSummary {
		typed := make([]model.GA4TrafficRow, 0, len(rows))
		for _, row := range rows {
			typed = append(typed, model.GA4TrafficRowFromCells(row))
		}
		return model.AggregateGA4Traffic(typed)
	}},
	{"GA4_Conversions", "GA4_Conversions!A2:G", func(rows [][]string) *model.AggregatedSummary {
		typed := make([]model.GA4ConversionRow, 0, len(rows))
		for _, row := range rows {
			typed = append(typed, model.GA4ConversionRowFromCells(row))
		}
		return model.AggregateGA4Conversions(typed)
	}},
	{"Search_Console", "Search_Console!A2:H", func(rows [][]string) *model.AggregatedSummary {
		typed := make([]model.SearchConsoleRow, 0, len(rows))
		for _, row := range rows {
			typed = append(typed, model.SearchConsoleRowFromCells(row))
		}
		return model.AggregateSearchConsole(typed)
	}},
	{"Google_Ads", "Google_Ads!A2:J", func(rows [][]string) *model.AggregatedSummary {
		typed := make([]model.GoogleAdsRow, 0, len(rows))
		for _, row := range rows {
			typed = append(typed, model.GoogleAdsRowFromCells(row))
		}
		return model.AggregateGoogleAds(typed)
	}},
	{"LinkedIn_Ads", "LinkedIn_Ads!A2:I", func(rows [][]string) *model.AggregatedSummary {
		typed := make([]model.LinkedInAdsRow, 0, len(rows))
		for _, row := range rows {
			typed = append(typed, model.LinkedInAdsRowFromCells(row))
		}
		return model.AggregateLinkedInAds(typed)
	}},
}

// SyncedSheetNames lists the sheets read by a sync.
func SyncedSheetNames() []string {
	names := make([]string, 0, len(syncedSheets))
	for _, sheet := range syncedSheets {
		names = append(names, sheet.Name)
	}
	return names
}

// SheetsSync recomputes the aggregated record of every sheet backed source.
type SheetsSync struct {
	Sheets SheetRangeFetcher
	// CallTimeout - per sheet fetch. Defaults to the configured timeout.
	CallTimeout time.Duration
}

// dataRows drops instruction rows, which are empty in the first cell or
// start with //.
func dataRows(rows [][]string) [][]string {
	filtered := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" || strings.HasPrefix(row[0], "//") {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func (s *SheetsSync) syncSheet(ctx context.Context, spreadsheetID string, sheet syncedSheet) SheetSyncResult {
	timeout := s.CallTimeout
	if timeout <= 0 {
		timeout = C.GetExternalCallTimeout()
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := s.Sheets.GetValues(callCtx, spreadsheetID, sheet.Range)
	if err != nil {
		return SheetSyncResult{Error: err.Error()}
	}

	// An empty range leaves the stored aggregate alone. Instruction rows
	// alone reset it to zeros.
	if len(rows) == 0 {
		return SheetSyncResult{}
	}
	rows = dataRows(rows)

	if err := ingest.PersistAggregate(sheet.Aggregate(rows)); err != nil {
		return SheetSyncResult{RowsProcessed: len(rows), Error: err.Error()}
	}
	return SheetSyncResult{RowsProcessed: len(rows)}
}

// Run syncs every sheet. A failing sheet is reported in its result and the
// others go on.
func (s *SheetsSync) Run(ctx context.Context, spreadsheetID string) (map[string]SheetSyncResult, error) {
	if spreadsheetID == "" {
		return nil, model.NewValidationError("Missing configuration",
			"GOOGLE_API_KEY and GOOGLE_SPREADSHEET_ID must be set")
	}

	startTime := time.Now()
	defer metrics.RecordLatencySince(metrics.LatencySheetsSync, startTime)

	results := make(map[string]SheetSyncResult, len(syncedSheets))
	rowsProcessed := 0
	failedSheets := make([]string, 0)
	for _, sheet := range syncedSheets {
		result := s.syncSheet(ctx, spreadsheetID, sheet)
		if result.Error != "" {
			log.WithField("sheet", sheet.Name).WithField("error", result.Error).
				Error("Failed to sync sheet.")
			failedSheets = append(failedSheets, sheet.Name+": "+result.Error)
		}
		rowsProcessed += result.RowsProcessed
		results[sheet.Name] = result
	}

	syncStatus := model.SyncStatusSuccess
	if len(failedSheets) == len(syncedSheets) {
		syncStatus = model.SyncStatusError
	} else if len(failedSheets) > 0 {
		syncStatus = model.SyncStatusPartial
	}

	ingest.RecordSyncOutcome(&ingest.SyncOutcome{
		Service:      model.ServiceGoogleSheets,
		Status:       syncStatus,
		RecordsCount: rowsProcessed,
		ErrorMessage: joinErrors(failedSheets, model.MaxSyncLogJoinedErrors),
		SyncLogMetadata: map[string]interface{}{
			"spreadsheet_id": spreadsheetID,
		},
		ConnectionMetadata: map[string]interface{}{
			"last_sync": U.TimeNowUTC(),
			"results":   results,
		},
	})

	return results, nil
}
