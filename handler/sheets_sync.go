package handler

import (
	"context"
	"net/http"

	C "pulse/config"
	googleSheets "pulse/integration/google_sheets"
	"pulse/model/model"
	"pulse/task"

	"github.com/gin-gonic/gin"
)

// NewSheetRangeFetcher builds the Sheets client. Replaced in tests.
var NewSheetRangeFetcher = func(ctx context.Context, apiKey string) (task.SheetRangeFetcher, error) {
	client, err := googleSheets.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GoogleSheetsSyncHandler recomputes the aggregated record of every sheet
// backed source from the configured spreadsheet.
func GoogleSheetsSyncHandler(c *gin.Context) {
	logCtx := requestLogCtx(c).WithField("service_name", model.ServiceGoogleSheets)

	var apiKey, spreadsheetID string
	if config := C.GetConfig(); config != nil {
		apiKey, spreadsheetID = config.GoogleSheetsAPIKey, config.GoogleSpreadsheetID
	}
	if apiKey == "" || spreadsheetID == "" {
		abortWithError(c, logCtx, model.NewValidationError("Missing configuration",
			"GOOGLE_API_KEY and GOOGLE_SPREADSHEET_ID must be set"))
		return
	}

	sheets, err := NewSheetRangeFetcher(c.Request.Context(), apiKey)
	if err != nil {
		abortWithError(c, logCtx, err)
		return
	}

	sheetsSync := &task.SheetsSync{Sheets: sheets, CallTimeout: C.GetExternalCallTimeout()}
	results, err := sheetsSync.Run(c.Request.Context(), spreadsheetID)
	if err != nil {
		abortWithError(c, logCtx, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}
