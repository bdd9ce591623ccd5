package task

import (
	"bytes"

	C "pulse/config"
	"pulse/filestore"
	serviceDisk "pulse/services/disk"
	serviceGCS "pulse/services/gcstorage"
	U "pulse/util"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// GetArchiveFileManager returns the configured archive store of raw
// imports. GCS wins over disk. Nil means archiving is disabled.
func GetArchiveFileManager() filestore.FileManager {
	config := C.GetConfig()
	if config == nil {
		return nil
	}

	if config.ArchiveBucket != "" {
		driver, err := serviceGCS.New(config.ArchiveBucket)
		if err != nil {
			log.WithError(err).WithField("bucket", config.ArchiveBucket).
				Error("Failed to init gcs archive. Archiving disabled.")
			return nil
		}
		return driver
	}

	if config.ArchiveDir != "" {
		return serviceDisk.New(config.ArchiveDir)
	}
	return nil
}

// ArchiveRawFile stores the snappy framed content of a downloaded file and
// returns the dir and name it was written to.
func ArchiveRawFile(fileManager filestore.FileManager, service, fileID string, content []byte) (string, string, error) {
	var buffer bytes.Buffer
	writer := snappy.NewBufferedWriter(&buffer)
	if _, err := writer.Write(content); err != nil {
		return "", "", errors.Wrap(err, "failed to compress raw file")
	}
	if err := writer.Close(); err != nil {
		return "", "", errors.Wrap(err, "failed to compress raw file")
	}

	dir, fileName := fileManager.GetRawImportFilePathAndName(service, fileID, U.TimeNowUTC())
	if err := fileManager.Create(dir, fileName, &buffer); err != nil {
		return "", "", errors.Wrap(err, "failed to write raw file archive")
	}
	return dir, fileName, nil
}
