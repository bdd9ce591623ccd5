package handler

import (
	"net/http"

	mid "pulse/middleware"
	"pulse/model/model"
	U "pulse/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func requestLogCtx(c *gin.Context) *log.Entry {
	return log.WithField("req_id", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID))
}

// abortWithError responds with the status of err. Authentication failures
// carry no details.
func abortWithError(c *gin.Context, logCtx *log.Entry, err error) {
	ingestErr, ok := model.AsIngestError(err)
	if !ok {
		logCtx.WithError(err).Error("Request failed with unexpected error.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}

	logCtx = logCtx.WithFields(log.Fields{"kind": ingestErr.Kind, "status": ingestErr.Status})
	if ingestErr.Status >= http.StatusInternalServerError {
		logCtx.WithError(err).Error("Request failed.")
	} else {
		logCtx.WithError(err).Warn("Request rejected.")
	}

	response := gin.H{"error": ingestErr.Message}
	if ingestErr.Kind != model.ErrorKindAuthentication &&
		(ingestErr.Details != "" || ingestErr.Status >= http.StatusInternalServerError) {
		response["details"] = ingestErr.Details
	}
	c.AbortWithStatusJSON(ingestErr.Status, response)
}
