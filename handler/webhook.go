package handler

import (
	"net/http"

	"pulse/ingest"
	"pulse/model/model"

	"github.com/gin-gonic/gin"
)

// DataslayerWebhookHandler stores one marketing record pushed by the
// reporting vendor.
func DataslayerWebhookHandler(c *gin.Context) {
	logCtx := requestLogCtx(c).WithField("service_name", model.ServiceDataslayer)

	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, logCtx, model.NewValidationError("Invalid request body", err.Error()))
		return
	}

	response, err := ingest.IngestWebhook(c.Request.Context(), model.ServiceDataslayer, body)
	if err != nil {
		abortWithError(c, logCtx, err)
		return
	}

	logCtx.WithField("record_id", response.RecordID).Info("Stored webhook record.")
	c.JSON(http.StatusOK, response)
}
