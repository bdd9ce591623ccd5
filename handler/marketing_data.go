package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	cacheRedis "pulse/cache/redis"
	C "pulse/config"
	"pulse/model/model"
	"pulse/model/store"
	U "pulse/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type AggregatedMarketingDataResponse struct {
	Source         string      `json:"source"`
	MetricType     string      `json:"metric_type"`
	Data           interface{} `json:"data"`
	DateRangeStart string      `json:"date_range_start,omitempty"`
	DateRangeEnd   string      `json:"date_range_end,omitempty"`
	SyncedAt       time.Time   `json:"synced_at"`
}

type ConnectionStatusResponse struct {
	*model.ConnectionStatus
	IsConnected bool `json:"is_connected"`
}

func parseLimit(c *gin.Context) (int, bool) {
	limitParam := c.Query("limit")
	if limitParam == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}

func getCachedAggregatedResponse(logCtx *log.Entry, source string) ([]byte, bool) {
	if !C.IsCacheEnabled() {
		return nil, false
	}

	key, err := model.GetAggregatedMarketingDataCacheKey(source)
	if err != nil {
		return nil, false
	}

	cached, err := cacheRedis.Get(key)
	if err != nil {
		if !cacheRedis.IsNotFound(err) {
			logCtx.WithError(err).Warn("Failed to read aggregated cache.")
		}
		return nil, false
	}
	return []byte(cached), true
}

func setCachedAggregatedResponse(logCtx *log.Entry, source string, response []byte) {
	if !C.IsCacheEnabled() {
		return
	}

	key, err := model.GetAggregatedMarketingDataCacheKey(source)
	if err != nil {
		return
	}

	if err := cacheRedis.Set(key, string(response), C.GetCacheExpiryInSecs()); err != nil {
		logCtx.WithError(err).Warn("Failed to cache aggregated response.")
	}
}

// GetAggregatedMarketingDataHandler returns the aggregated record of the
// source decoded into its typed view.
func GetAggregatedMarketingDataHandler(c *gin.Context) {
	source := c.Param("source")
	logCtx := requestLogCtx(c).WithField("source", source)

	if cached, exists := getCachedAggregatedResponse(logCtx, source); exists {
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	aggregated, status := store.GetStore().GetAggregatedMarketingData(source)
	if status == http.StatusNotFound {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No aggregated data found for source"})
		return
	}
	if status != http.StatusFound {
		c.AbortWithStatusJSON(status, gin.H{"error": "Failed to get aggregated data"})
		return
	}

	response, err := json.Marshal(&AggregatedMarketingDataResponse{
		Source:         aggregated.Source,
		MetricType:     aggregated.MetricType,
		Data:           model.DecodeAggregatedView(source, aggregated.Data),
		DateRangeStart: U.FormatDate(aggregated.DateRangeStart),
		DateRangeEnd:   U.FormatDate(aggregated.DateRangeEnd),
		SyncedAt:       aggregated.SyncedAt,
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to encode aggregated data.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode aggregated data"})
		return
	}

	setCachedAggregatedResponse(logCtx, source, response)
	c.Data(http.StatusOK, "application/json; charset=utf-8", response)
}

// GetMarketingDataRecordsHandler lists the raw records of the source,
// newest first, optionally of one metric_type.
func GetMarketingDataRecordsHandler(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	records, status := store.GetStore().GetMarketingData(c.Param("source"), c.Query("metric_type"), limit)
	if status != http.StatusFound && status != http.StatusNotFound {
		c.AbortWithStatusJSON(status, gin.H{"error": "Failed to get marketing data"})
		return
	}
	if records == nil {
		records = []model.MarketingData{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func GetConnectionStatusHandler(c *gin.Context) {
	connectionStatus, status := store.GetStore().GetConnectionStatus(c.Param("service_name"))
	if status == http.StatusNotFound {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Connection status not found"})
		return
	}
	if status != http.StatusFound {
		c.AbortWithStatusJSON(status, gin.H{"error": "Failed to get connection status"})
		return
	}

	c.JSON(http.StatusOK, &ConnectionStatusResponse{
		ConnectionStatus: connectionStatus,
		IsConnected:      connectionStatus.IsConnected(),
	})
}

// GetSyncLogsHandler lists the audit trail, newest first. An empty source
// lists every source.
func GetSyncLogsHandler(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	syncLogs, status := store.GetStore().GetSyncLogs(c.Query("source"), limit)
	if status != http.StatusFound && status != http.StatusNotFound {
		c.AbortWithStatusJSON(status, gin.H{"error": "Failed to get sync logs"})
		return
	}
	if syncLogs == nil {
		syncLogs = []model.SyncLog{}
	}
	c.JSON(http.StatusOK, gin.H{"sync_logs": syncLogs})
}
