package filestore

import (
	"io"
	"time"
)

type FileManager interface {
	Create(dir, fileName string, reader io.Reader) error
	Get(dir, fileName string) (io.ReadCloser, error)
	GetRawImportFilePathAndName(service, fileID string, importedAt time.Time) (string, string)
}
