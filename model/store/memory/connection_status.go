package memory

import (
	"net/http"

	"pulse/model/model"
)

func (m *Memory) UpsertConnectionStatus(status *model.ConnectionStatus) int {
	if status == nil || status.ServiceName == "" || !model.IsValidConnectionStatus(status.Status) {
		return http.StatusBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if status.LastCheckAt.IsZero() {
		status.LastCheckAt = m.now()
	}

	upserted := copyConnectionStatus(*status)
	if existing, exists := m.connectionStatus[status.ServiceName]; exists && upserted.Metadata == nil {
		upserted.Metadata = existing.Metadata
	}
	m.connectionStatus[status.ServiceName] = upserted

	return http.StatusOK
}

func (m *Memory) GetConnectionStatus(serviceName string) (*model.ConnectionStatus, int) {
	if serviceName == "" {
		return nil, http.StatusBadRequest
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	existing, exists := m.connectionStatus[serviceName]
	if !exists {
		return nil, http.StatusNotFound
	}
	status := copyConnectionStatus(existing)
	return &status, http.StatusFound
}
