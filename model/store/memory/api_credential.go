package memory

import (
	"net/http"
	"time"

	"pulse/model/model"
	U "pulse/util"
)

// CreateAPICredential seeds a credential. Credentials are managed outside
// the pipeline, so only the in-process store exposes this.
func (m *Memory) CreateAPICredential(credential *model.APICredential) (*model.APICredential, int) {
	if credential == nil || credential.ServiceName == "" || credential.APIKey == "" {
		return nil, http.StatusBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	credential.ID = U.GetUUID()
	credential.CreatedAt = now
	credential.UpdatedAt = now
	m.apiCredentials = append(m.apiCredentials, copyAPICredential(*credential))

	return credential, http.StatusCreated
}

// GetActiveAPICredential returns the most recently updated active credential.
func (m *Memory) GetActiveAPICredential(serviceName string) (*model.APICredential, int) {
	if serviceName == "" {
		return nil, http.StatusBadRequest
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *model.APICredential
	for i := range m.apiCredentials {
		credential := &m.apiCredentials[i]
		if credential.ServiceName != serviceName || !credential.IsActive {
			continue
		}
		if found == nil || !credential.UpdatedAt.Before(found.UpdatedAt) {
			found = credential
		}
	}

	if found == nil {
		return nil, http.StatusNotFound
	}
	credential := copyAPICredential(*found)
	return &credential, http.StatusFound
}

func (m *Memory) UpdateAPICredentialLastSyncAt(serviceName string, lastSyncAt time.Time) int {
	if serviceName == "" {
		return http.StatusBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	updated := false
	now := m.now()
	for i := range m.apiCredentials {
		if m.apiCredentials[i].ServiceName != serviceName {
			continue
		}
		t := lastSyncAt
		m.apiCredentials[i].LastSyncAt = &t
		m.apiCredentials[i].UpdatedAt = now
		updated = true
	}

	if !updated {
		return http.StatusNotFound
	}
	return http.StatusAccepted
}
