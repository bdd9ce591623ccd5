package filestore

import (
	"fmt"
	"time"

	U "pulse/util"
)

const RawImportFileExtension = ".csv.snappy"

// RawImportDir groups archived imports by service and import day,
// i.e raw_imports/google_drive/20240301/.
func RawImportDir(service string, importedAt time.Time) string {
	return fmt.Sprintf("raw_imports/%s/%s/", service, importedAt.UTC().Format("20060102"))
}

// RawImportFileName is unique per import of the same file.
func RawImportFileName(fileID string) string {
	return fmt.Sprintf("%s_%s%s", fileID, U.GetSortableID(), RawImportFileExtension)
}
