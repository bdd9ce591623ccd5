package memory

import (
	"encoding/json"
	"sync"
	"time"

	"pulse/model/model"
	U "pulse/util"

	"github.com/jinzhu/gorm/dialects/postgres"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Memory implements model.Model in process. It backs the development
// profile and tests, with the same status codes as the relational store.
// Rows are kept in insertion order.
type Memory struct {
	mu sync.RWMutex

	marketingData    []model.MarketingData
	apiCredentials   []model.APICredential
	connectionStatus map[string]model.ConnectionStatus
	syncLogs         []model.SyncLog

	lastTimestamp time.Time
}

func New() *Memory {
	return &Memory{connectionStatus: make(map[string]model.ConnectionStatus)}
}

// now returns strictly increasing timestamps. Callers hold the write lock.
func (m *Memory) now() time.Time {
	t := U.TimeNowUTC()
	if !t.After(m.lastTimestamp) {
		t = m.lastTimestamp.Add(time.Microsecond)
	}
	m.lastTimestamp = t
	return t
}

func sanitizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func copyJsonb(src *postgres.Jsonb) *postgres.Jsonb {
	if src == nil {
		return nil
	}
	raw := make(json.RawMessage, len(src.RawMessage))
	copy(raw, src.RawMessage)
	return &postgres.Jsonb{RawMessage: raw}
}

func copyTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	t := *src
	return &t
}

func copyString(src *string) *string {
	if src == nil {
		return nil
	}
	s := *src
	return &s
}

func copyMarketingData(doc model.MarketingData) model.MarketingData {
	doc.Data = copyJsonb(doc.Data)
	doc.DateRangeStart = copyTime(doc.DateRangeStart)
	doc.DateRangeEnd = copyTime(doc.DateRangeEnd)
	return doc
}

func copyAPICredential(credential model.APICredential) model.APICredential {
	credential.AdditionalConfig = copyJsonb(credential.AdditionalConfig)
	credential.LastSyncAt = copyTime(credential.LastSyncAt)
	return credential
}

func copyConnectionStatus(status model.ConnectionStatus) model.ConnectionStatus {
	status.ErrorMessage = copyString(status.ErrorMessage)
	status.Metadata = copyJsonb(status.Metadata)
	return status
}

func copySyncLog(syncLog model.SyncLog) model.SyncLog {
	syncLog.ErrorMessage = copyString(syncLog.ErrorMessage)
	syncLog.Metadata = copyJsonb(syncLog.Metadata)
	return syncLog
}
