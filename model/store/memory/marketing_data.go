package memory

import (
	"net/http"

	"pulse/model/model"
	U "pulse/util"

	log "github.com/sirupsen/logrus"
)

func validateMarketingData(doc *model.MarketingData) (int, string) {
	if doc == nil || doc.Source == "" || doc.MetricType == "" {
		return http.StatusBadRequest, "source and metric_type are required"
	}
	if doc.Data == nil {
		return http.StatusBadRequest, "data is required"
	}
	return http.StatusOK, ""
}

func (m *Memory) aggregatedIndex(source string) int {
	for i := range m.marketingData {
		if m.marketingData[i].Source == source && m.marketingData[i].MetricType == model.MetricTypeAggregated {
			return i
		}
	}
	return -1
}

func (m *Memory) CreateMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string) {
	if status, errMsg := validateMarketingData(doc); status != http.StatusOK {
		return nil, status, errMsg
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if doc.MetricType == model.MetricTypeAggregated && m.aggregatedIndex(doc.Source) >= 0 {
		log.WithField("source", doc.Source).Warn("Aggregated marketing data already exists.")
		return nil, http.StatusConflict, "aggregated record already exists for source"
	}

	now := m.now()
	doc.ID = U.GetUUID()
	doc.SyncedAt = now
	doc.CreatedAt = now
	m.marketingData = append(m.marketingData, copyMarketingData(*doc))

	return doc, http.StatusCreated, ""
}

func (m *Memory) UpsertAggregatedMarketingData(doc *model.MarketingData) (*model.MarketingData, int, string) {
	if status, errMsg := validateMarketingData(doc); status != http.StatusOK {
		return nil, status, errMsg
	}
	if doc.MetricType != model.MetricTypeAggregated {
		return nil, http.StatusBadRequest, "metric_type must be aggregated"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if index := m.aggregatedIndex(doc.Source); index >= 0 {
		existing := &m.marketingData[index]
		existing.Data = copyJsonb(doc.Data)
		existing.DateRangeStart = copyTime(doc.DateRangeStart)
		existing.DateRangeEnd = copyTime(doc.DateRangeEnd)
		existing.SyncedAt = now
		upserted := copyMarketingData(*existing)
		return &upserted, http.StatusOK, ""
	}

	created := copyMarketingData(*doc)
	created.ID = U.GetUUID()
	created.SyncedAt = now
	created.CreatedAt = now
	m.marketingData = append(m.marketingData, created)

	upserted := copyMarketingData(created)
	return &upserted, http.StatusOK, ""
}

func (m *Memory) GetAggregatedMarketingData(source string) (*model.MarketingData, int) {
	if source == "" {
		return nil, http.StatusBadRequest
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	index := m.aggregatedIndex(source)
	if index < 0 {
		return nil, http.StatusNotFound
	}
	doc := copyMarketingData(m.marketingData[index])
	return &doc, http.StatusFound
}

func (m *Memory) GetMarketingData(source, metricType string, limit int) ([]model.MarketingData, int) {
	if source == "" {
		return nil, http.StatusBadRequest
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = sanitizeLimit(limit)
	docs := make([]model.MarketingData, 0)
	for i := len(m.marketingData) - 1; i >= 0 && len(docs) < limit; i-- {
		doc := m.marketingData[i]
		if doc.Source != source || (metricType != "" && doc.MetricType != metricType) {
			continue
		}
		docs = append(docs, copyMarketingData(doc))
	}

	if len(docs) == 0 {
		return docs, http.StatusNotFound
	}
	return docs, http.StatusFound
}
