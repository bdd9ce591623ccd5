package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ROUTE_VERSION_V1 = "/v1"

// InitAppRoutes registers the ingestion and read routes. Preflight requests
// carrying an Origin are answered by the cors middleware, the OPTIONS routes
// answer the rest.
func InitAppRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	r.GET("/status", StatusHandler)

	v1 := r.Group(ROUTE_VERSION_V1)

	v1.OPTIONS("/webhooks/dataslayer", PreflightHandler)
	v1.POST("/webhooks/dataslayer", DataslayerWebhookHandler)

	v1.OPTIONS("/imports/google_drive", PreflightHandler)
	v1.POST("/imports/google_drive", GoogleDriveImportHandler)

	v1.OPTIONS("/sync/google_sheets", PreflightHandler)
	v1.POST("/sync/google_sheets", GoogleSheetsSyncHandler)

	v1.GET("/marketing_data/:source", GetAggregatedMarketingDataHandler)
	v1.GET("/marketing_data/:source/records", GetMarketingDataRecordsHandler)
	v1.GET("/connection_status/:service_name", GetConnectionStatusHandler)
	v1.GET("/sync_logs", GetSyncLogsHandler)
}

func PreflightHandler(c *gin.Context) {
	c.AbortWithStatus(http.StatusOK)
}

func StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
