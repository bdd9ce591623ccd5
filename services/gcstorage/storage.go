package gcstorage

import (
	"context"
	"io"
	"path"
	"time"

	"pulse/filestore"

	"cloud.google.com/go/storage"
)

const contentTypeSnappyFramed = "application/x-snappy-framed"

var _ filestore.FileManager = (*GCSDriver)(nil)

// GCSDriver archives raw import files on a Cloud Storage bucket.
type GCSDriver struct {
	client     *storage.Client
	BucketName string
}

func New(bucketName string) (*GCSDriver, error) {
	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, err
	}
	return &GCSDriver{BucketName: bucketName, client: client}, nil
}

func (d *GCSDriver) object(dir, fileName string) *storage.ObjectHandle {
	return d.client.Bucket(d.BucketName).Object(objectName(dir, fileName))
}

func objectName(dir, fileName string) string {
	return path.Join(dir, fileName)
}

func (d *GCSDriver) Create(dir, fileName string, reader io.Reader) error {
	writer := d.object(dir, fileName).NewWriter(context.Background())
	writer.ContentType = contentTypeSnappyFramed
	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func (d *GCSDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	return d.object(dir, fileName).NewReader(context.Background())
}

func (d *GCSDriver) GetRawImportFilePathAndName(service, fileID string, importedAt time.Time) (string, string) {
	return filestore.RawImportDir(service, importedAt), filestore.RawImportFileName(fileID)
}
