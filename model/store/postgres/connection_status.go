package postgres

import (
	"net/http"

	C "pulse/config"
	"pulse/model/model"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// Metadata of a previous check is kept when the new one has none.
const upsertConnectionStatusQuery = "INSERT INTO connection_status" +
	" " + "(service_name, status, last_check_at, error_message, metadata) VALUES (?, ?, ?, ?, ?)" +
	" " + "ON CONFLICT (service_name) DO UPDATE SET status = EXCLUDED.status," +
	" " + "last_check_at = EXCLUDED.last_check_at, error_message = EXCLUDED.error_message," +
	" " + "metadata = COALESCE(EXCLUDED.metadata, connection_status.metadata)"

func (pg *Postgres) UpsertConnectionStatus(status *model.ConnectionStatus) int {
	if status == nil || status.ServiceName == "" || !model.IsValidConnectionStatus(status.Status) {
		return http.StatusBadRequest
	}

	if status.LastCheckAt.IsZero() {
		status.LastCheckAt = gorm.NowFunc()
	}

	db := C.GetServices().Db
	err := db.Exec(upsertConnectionStatusQuery, status.ServiceName, status.Status,
		status.LastCheckAt, status.ErrorMessage, status.Metadata).Error
	if err != nil {
		log.WithError(err).WithField("service_name", status.ServiceName).
			Error("Failed to upsert connection status.")
		return http.StatusInternalServerError
	}

	return http.StatusOK
}

func (pg *Postgres) GetConnectionStatus(serviceName string) (*model.ConnectionStatus, int) {
	if serviceName == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var status model.ConnectionStatus
	if err := db.Where("service_name = ?", serviceName).First(&status).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithError(err).WithField("service_name", serviceName).Error("Failed to get connection status.")
		return nil, http.StatusInternalServerError
	}

	return &status, http.StatusFound
}
