package memory

import (
	"net/http"

	"pulse/model/model"
	U "pulse/util"
)

func (m *Memory) CreateSyncLog(syncLog *model.SyncLog) int {
	if syncLog == nil || syncLog.Source == "" || syncLog.Status == "" {
		return http.StatusBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	syncLog.ID = U.GetUUID()
	syncLog.CreatedAt = m.now()
	if syncLog.ErrorMessage != nil {
		truncated := model.TruncateErrorMessage(*syncLog.ErrorMessage)
		syncLog.ErrorMessage = &truncated
	}
	m.syncLogs = append(m.syncLogs, copySyncLog(*syncLog))

	return http.StatusCreated
}

func (m *Memory) GetSyncLogs(source string, limit int) ([]model.SyncLog, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = sanitizeLimit(limit)
	syncLogs := make([]model.SyncLog, 0)
	for i := len(m.syncLogs) - 1; i >= 0 && len(syncLogs) < limit; i-- {
		if source != "" && m.syncLogs[i].Source != source {
			continue
		}
		syncLogs = append(syncLogs, copySyncLog(m.syncLogs[i]))
	}

	if len(syncLogs) == 0 {
		return syncLogs, http.StatusNotFound
	}
	return syncLogs, http.StatusFound
}
