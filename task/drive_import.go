package task

import (
	"context"
	"strconv"
	"strings"
	"time"

	C "pulse/config"
	"pulse/filestore"
	"pulse/ingest"
	"pulse/metrics"
	"pulse/model/model"
	U "pulse/util"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	errMsgFailedToDownload = "Failed to download file"
	errMsgNoValidRecords   = "No valid records found"
)

// DriveFileSource is the file store the importer pulls CSV exports from.
type DriveFileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]model.DriveFile, error)
	GetFile(ctx context.Context, fileID string) (*model.DriveFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// DriveImporter imports CSV exports as raw marketing records.
type DriveImporter struct {
	Files DriveFileSource
	// Archive - optional store of the downloaded files.
	Archive filestore.FileManager
	// Parallelism - files of a folder imported at a time. Defaults to 1.
	Parallelism int
	// CallTimeout - per vendor call. Defaults to the configured timeout.
	CallTimeout time.Duration
}

func NewDriveImporter(files DriveFileSource) *DriveImporter {
	return &DriveImporter{
		Files:       files,
		Archive:     GetArchiveFileManager(),
		Parallelism: C.GetImportFileParallelism(),
		CallTimeout: C.GetExternalCallTimeout(),
	}
}

func (d *DriveImporter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.CallTimeout
	if timeout <= 0 {
		timeout = C.GetExternalCallTimeout()
	}
	return context.WithTimeout(ctx, timeout)
}

func (d *DriveImporter) listFiles(ctx context.Context, folderID string) ([]model.DriveFile, error) {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	return d.Files.ListFiles(callCtx, folderID)
}

func (d *DriveImporter) getFile(ctx context.Context, fileID string) (*model.DriveFile, error) {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	return d.Files.GetFile(callCtx, fileID)
}

func (d *DriveImporter) download(ctx context.Context, fileID string) ([]byte, error) {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	return d.Files.Download(callCtx, fileID)
}

func (d *DriveImporter) archive(fileID string, content []byte) {
	if d.Archive == nil {
		return
	}

	dir, fileName, err := ArchiveRawFile(d.Archive, model.ServiceGoogleDrive, fileID, content)
	if err != nil {
		log.WithError(err).WithField("file_id", fileID).Error("Failed to archive raw import file.")
		return
	}
	log.WithFields(log.Fields{"file_id": fileID, "dir": dir, "file_name": fileName}).
		Debug("Archived raw import file.")
}

// ListFiles lists the CSV files directly under the folder.
func (d *DriveImporter) ListFiles(ctx context.Context, folderID string) ([]model.DriveFile, error) {
	if folderID == "" {
		return nil, model.NewValidationError("Folder ID is required", "")
	}
	return d.listFiles(ctx, folderID)
}

// ImportFile imports every valid row of one CSV file. Row failures are
// collected and do not stop the import.
func (d *DriveImporter) ImportFile(ctx context.Context, fileID string) (*model.ImportResult, error) {
	if fileID == "" {
		return nil, model.NewValidationError("File ID is required", "")
	}

	startTime := time.Now()
	defer metrics.RecordLatencySince(metrics.LatencyDriveImportFile, startTime)

	logCtx := log.WithField("file_id", fileID)

	file, err := d.getFile(ctx, fileID)
	if err != nil {
		d.recordImportFailure(err, map[string]interface{}{"file_id": fileID})
		return nil, err
	}

	content, err := d.download(ctx, fileID)
	if err != nil {
		d.recordImportFailure(err, map[string]interface{}{"file_id": fileID, "file_name": file.Name})
		return nil, err
	}
	d.archive(fileID, content)

	headers, records := U.ParseCSVWithHeaders(string(content))
	if len(records) == 0 {
		return nil, model.NewValidationError(errMsgNoValidRecords+" in CSV", file.Name)
	}

	metricType := model.DetectMetricType(file.Name, headers)
	imported, rowErrors := importRecords(ctx, records, metricType)
	logCtx.WithFields(log.Fields{"file_name": file.Name, "metric_type": metricType,
		"imported": imported, "failed": len(rowErrors)}).Info("Imported drive file.")

	syncStatus := model.GetSyncStatus(imported, len(rowErrors))
	ingest.RecordSyncOutcome(&ingest.SyncOutcome{
		Service:      model.ServiceGoogleDrive,
		Status:       syncStatus,
		RecordsCount: imported,
		ErrorMessage: joinErrors(rowErrors, model.MaxSyncLogJoinedErrors),
		SyncLogMetadata: map[string]interface{}{
			"file_name":     file.Name,
			"file_id":       fileID,
			"metric_type":   metricType,
			"total_records": len(records),
			"errors_count":  len(rowErrors),
		},
		ConnectionMetadata: map[string]interface{}{
			"last_import":      file.Name,
			"records_imported": imported,
		},
		UpdateCredentialLastSync: true,
	})

	return &model.ImportResult{
		FileName:        file.Name,
		RecordsImported: imported,
		Errors:          model.CapErrors(rowErrors, model.MaxImportFileErrors),
	}, nil
}

// ImportFolder imports every CSV file of the folder and returns one result
// per file in listing order plus the total of imported rows. A file which
// cannot be downloaded or parsed does not stop the others.
func (d *DriveImporter) ImportFolder(ctx context.Context, folderID string) ([]model.ImportResult, int, error) {
	files, err := d.ListFiles(ctx, folderID)
	if err != nil {
		if !model.IsErrorKind(err, model.ErrorKindValidation) {
			d.recordImportFailure(err, map[string]interface{}{"folder_id": folderID})
		}
		return nil, 0, err
	}

	parallelism := d.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	results := make([]model.ImportResult, len(files))
	var group errgroup.Group
	group.SetLimit(parallelism)
	for i := range files {
		index := i
		group.Go(func() error {
			results[index] = d.importFolderFile(ctx, files[index])
			return nil
		})
	}
	group.Wait()

	totalImported := 0
	allErrors := make([]string, 0)
	for _, result := range results {
		totalImported += result.RecordsImported
		for _, errMsg := range result.Errors {
			allErrors = append(allErrors, result.FileName+": "+errMsg)
		}
	}

	syncStatus := model.SyncStatusSuccess
	if totalImported == 0 && len(files) > 0 {
		syncStatus = model.SyncStatusError
	}

	ingest.RecordSyncOutcome(&ingest.SyncOutcome{
		Service:      model.ServiceGoogleDrive,
		Status:       syncStatus,
		RecordsCount: totalImported,
		ErrorMessage: joinErrors(allErrors, model.MaxSyncLogJoinedErrors),
		SyncLogMetadata: map[string]interface{}{
			"folder_id":       folderID,
			"files_processed": len(files),
			"results":         results,
		},
		ConnectionMetadata: map[string]interface{}{
			"last_bulk_import": U.TimeNowUTC(),
			"files_processed":  len(files),
			"records_imported": totalImported,
		},
		UpdateCredentialLastSync: true,
	})

	return results, totalImported, nil
}

func (d *DriveImporter) importFolderFile(ctx context.Context, file model.DriveFile) model.ImportResult {
	startTime := time.Now()
	defer metrics.RecordLatencySince(metrics.LatencyDriveImportFile, startTime)

	logCtx := log.WithFields(log.Fields{"file_id": file.ID, "file_name": file.Name})

	content, err := d.download(ctx, file.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to download drive file.")
		return model.ImportResult{FileName: file.Name, Errors: []string{errMsgFailedToDownload}}
	}
	d.archive(file.ID, content)

	headers, records := U.ParseCSVWithHeaders(string(content))
	if len(records) == 0 {
		return model.ImportResult{FileName: file.Name, Errors: []string{errMsgNoValidRecords}}
	}

	metricType := model.DetectMetricType(file.Name, headers)
	imported, rowErrors := importRecords(ctx, records, metricType)
	logCtx.WithFields(log.Fields{"metric_type": metricType, "imported": imported,
		"failed": len(rowErrors)}).Info("Imported drive file.")

	return model.ImportResult{
		FileName:        file.Name,
		RecordsImported: imported,
		Errors:          model.CapErrors(rowErrors, model.MaxImportFolderFileErrors),
	}
}

// importRecords inserts one raw record per row. Rows left when the context
// is done are reported as a single failure.
func importRecords(ctx context.Context, records []map[string]interface{}, metricType string) (int, []string) {
	imported := 0
	rowErrors := make([]string, 0)
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			rowErrors = append(rowErrors, model.NewRowLevelError(i+1, "import cancelled: "+err.Error()).Error())
			break
		}

		_, err := ingest.PersistRecord(&model.NormalizedRecord{
			Source:         model.SourceMarketingCloud,
			MetricType:     metricType,
			Data:           record,
			DateRangeStart: recordDate(record, "date_range_start"),
			DateRangeEnd:   recordDate(record, "date_range_end"),
		})
		if err != nil {
			rowErrors = append(rowErrors, model.NewRowLevelError(i+1, errorDetails(err)).Error())
			continue
		}
		imported++
	}

	metrics.CountInt(metrics.CountImportRowsImported, int64(imported))
	metrics.CountInt(metrics.CountImportRowsFailed, int64(len(rowErrors)))
	return imported, rowErrors
}

// recordDate reads the bound column, falling back to the row date.
// Numeric dates like 20240301 are coerced by the parser and read back here.
func recordDate(record map[string]interface{}, key string) *time.Time {
	for _, column := range []string{key, "date"} {
		value := record[column]
		if number, isNumber := value.(float64); isNumber {
			value = strconv.FormatFloat(number, 'f', -1, 64)
		}
		if date := U.ParseDateOrNil(value); date != nil {
			return date
		}
	}
	return nil
}

// recordImportFailure audits an import which failed before any row was read.
func (d *DriveImporter) recordImportFailure(err error, metadata map[string]interface{}) {
	ingest.RecordSyncOutcome(&ingest.SyncOutcome{
		Service:         model.ServiceGoogleDrive,
		Status:          model.SyncStatusError,
		ErrorMessage:    err.Error(),
		SyncLogMetadata: metadata,
	})
}

func joinErrors(errs []string, max int) string {
	return strings.Join(model.CapErrors(errs, max), "; ")
}

func errorDetails(err error) string {
	if ingestErr, ok := model.AsIngestError(err); ok && ingestErr.Details != "" {
		return ingestErr.Details
	}
	return err.Error()
}
