package disk

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"pulse/filestore"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

type DiskDriver struct {
	// Analogus to bucket name. Every dir is relative to it.
	baseDir string
}

func New(baseDir string) *DiskDriver {
	return &DiskDriver{baseDir: baseDir}
}

func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (dd *DiskDriver) Create(dir, fileName string, reader io.Reader) error {
	path := filepath.Join(dd.baseDir, dir)
	if err := MkdirAll(path); err != nil {
		log.WithError(err).WithField("path", path).Error("Failed to create dir.")
		return err
	}

	file, err := os.Create(filepath.Join(path, fileName))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// Get opens a file in read only mode.
// Caller should take care of closing the returned io.ReadCloser.
func (dd *DiskDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	path := filepath.Join(dd.baseDir, dir, fileName)
	log.WithField("path", path).Debug("DiskDriver opening file.")
	return os.OpenFile(path, os.O_RDONLY, 0444)
}

func (dd *DiskDriver) GetBucketName() string {
	return dd.baseDir
}

func (dd *DiskDriver) GetRawImportFilePathAndName(service, fileID string, importedAt time.Time) (string, string) {
	return filestore.RawImportDir(service, importedAt), filestore.RawImportFileName(fileID)
}
