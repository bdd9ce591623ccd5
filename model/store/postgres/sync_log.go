package postgres

import (
	"net/http"

	C "pulse/config"
	"pulse/model/model"
	U "pulse/util"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

func (pg *Postgres) CreateSyncLog(syncLog *model.SyncLog) int {
	if syncLog == nil || syncLog.Source == "" || syncLog.Status == "" {
		return http.StatusBadRequest
	}

	syncLog.ID = U.GetUUID()
	syncLog.CreatedAt = gorm.NowFunc()
	if syncLog.ErrorMessage != nil {
		truncated := model.TruncateErrorMessage(*syncLog.ErrorMessage)
		syncLog.ErrorMessage = &truncated
	}

	db := C.GetServices().Db
	if err := db.Create(syncLog).Error; err != nil {
		log.WithError(err).WithFields(log.Fields{"source": syncLog.Source, "status": syncLog.Status}).
			Error("Failed to create sync log.")
		return http.StatusInternalServerError
	}

	return http.StatusCreated
}

// GetSyncLogs lists the newest entries first. Empty source lists every source.
func (pg *Postgres) GetSyncLogs(source string, limit int) ([]model.SyncLog, int) {
	db := C.GetServices().Db

	query := db.Order("created_at DESC").Limit(sanitizeLimit(limit))
	if source != "" {
		query = query.Where("source = ?", source)
	}

	syncLogs := make([]model.SyncLog, 0)
	if err := query.Find(&syncLogs).Error; err != nil {
		log.WithError(err).WithField("source", source).Error("Failed to get sync logs.")
		return nil, http.StatusInternalServerError
	}

	if len(syncLogs) == 0 {
		return syncLogs, http.StatusNotFound
	}
	return syncLogs, http.StatusFound
}
