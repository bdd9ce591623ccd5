package postgres

import (
	"net/http"
	"time"

	C "pulse/config"
	"pulse/model/model"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

func (pg *Postgres) GetActiveAPICredential(serviceName string) (*model.APICredential, int) {
	if serviceName == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var credential model.APICredential
	err := db.Where("service_name = ? AND is_active = ?", serviceName, true).
		Order("updated_at DESC").First(&credential).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithError(err).WithField("service_name", serviceName).Error("Failed to get api credential.")
		return nil, http.StatusInternalServerError
	}

	return &credential, http.StatusFound
}

func (pg *Postgres) UpdateAPICredentialLastSyncAt(serviceName string, lastSyncAt time.Time) int {
	if serviceName == "" {
		return http.StatusBadRequest
	}

	db := C.GetServices().Db
	result := db.Model(&model.APICredential{}).Where("service_name = ?", serviceName).
		Updates(map[string]interface{}{"last_sync_at": lastSyncAt, "updated_at": gorm.NowFunc()})
	if result.Error != nil {
		log.WithError(result.Error).WithField("service_name", serviceName).
			Error("Failed to update api credential last_sync_at.")
		return http.StatusInternalServerError
	}

	if result.RowsAffected == 0 {
		return http.StatusNotFound
	}
	return http.StatusAccepted
}
