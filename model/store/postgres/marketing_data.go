package postgres

import (
	"net/http"

	C "pulse/config"
	"pulse/model/model"
	U "pulse/util"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

const upsertAggregatedMarketingDataQuery = "INSERT INTO marketing_data" +
	" " + "(id, source, metric_type, data, date_range_start, date_range_end, synced_at, created_at)" +
	" " + "VALUES (?, ?, ?, ?, ?, ?, ?, ?)" +
	" " + "ON CONFLICT (source, metric_type) WHERE metric_type = 'aggregated'" +
	" " + "DO UPDATE SET data = EXCLUDED.data, date_range_start = EXCLUDED.date_range_start," +
	" " + "date_range_end = EXCLUDED.date_range_end, synced_at = EXCLUDED.synced_at" +
	" " + "RETURNING *"

func validateMarketingData(doc *model.MarketingData) (int, string) {
	if doc == nil || doc.Source == "" || doc.MetricType == "" {
		return http.StatusBadRequest, "source and metric_type are required"
	}
	if doc.Data == nil {
		return http.StatusBadRequest, "data is required"
	}
	return http.StatusOK, ""
}

// CreateMarketingData appends a raw record. No dedup is done on purpose of
// redelivered payloads.
func (pg *Postgres) CreateMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string) {
	if status, errMsg := validateMarketingData(doc); status != http.StatusOK {
		return nil, status, errMsg
	}

	logCtx := log.WithFields(log.Fields{"source": doc.Source, "metric_type": doc.MetricType})

	db := C.GetServices().Db
	doc.ID = U.GetUUID()
	now := gorm.NowFunc()
	doc.SyncedAt = now
	doc.CreatedAt = now

	if err := db.Create(doc).Error; err != nil {
		if isUniqueViolationError(err) {
			logCtx.WithError(err).Warn("Aggregated marketing data already exists.")
			return nil, http.StatusConflict, err.Error()
		}
		logCtx.WithError(err).Error("Failed to create marketing data.")
		return nil, http.StatusInternalServerError, err.Error()
	}

	return doc, http.StatusCreated, ""
}

// UpsertAggregatedMarketingData replaces the aggregated record of the source.
func (pg *Postgres) UpsertAggregatedMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string) {
	if status, errMsg := validateMarketingData(doc); status != http.StatusOK {
		return nil, status, errMsg
	}
	if doc.MetricType != model.MetricTypeAggregated {
		return nil, http.StatusBadRequest, "metric_type must be aggregated"
	}

	logCtx := log.WithField("source", doc.Source)

	db := C.GetServices().Db
	now := gorm.NowFunc()
	var upserted model.MarketingData
	err := db.Raw(upsertAggregatedMarketingDataQuery, U.GetUUID(), doc.Source, doc.MetricType, doc.Data,
		doc.DateRangeStart, doc.DateRangeEnd, now, now).Scan(&upserted).Error
	if err != nil {
		logCtx.WithError(err).Error("Failed to upsert aggregated marketing data.")
		return nil, http.StatusInternalServerError, err.Error()
	}

	return &upserted, http.StatusOK, ""
}

func (pg *Postgres) GetAggregatedMarketingData(source string) (*model.MarketingData, int) {
	if source == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var doc model.MarketingData
	err := db.Where("source = ? AND metric_type = ?", source, model.MetricTypeAggregated).
		Order("synced_at DESC").First(&doc).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithError(err).WithField("source", source).Error("Failed to get aggregated marketing data.")
		return nil, http.StatusInternalServerError
	}

	return &doc, http.StatusFound
}

// GetMarketingData lists the latest records of a source, optionally of one metric type.
func (pg *Postgres) GetMarketingData(source, metricType string, limit int) ([]model.MarketingData, int) {
	if source == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	query := db.Where("source = ?", source)
	if metricType != "" {
		query = query.Where("metric_type = ?", metricType)
	}

	docs := make([]model.MarketingData, 0)
	if err := query.Order("created_at DESC").Limit(sanitizeLimit(limit)).Find(&docs).Error; err != nil {
		log.WithError(err).WithField("source", source).Error("Failed to get marketing data.")
		return nil, http.StatusInternalServerError
	}

	if len(docs) == 0 {
		return docs, http.StatusNotFound
	}
	return docs, http.StatusFound
}
