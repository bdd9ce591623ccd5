package model

const (
	MaxImportFileErrors       = 10
	MaxImportFolderFileErrors = 5
	MaxSyncLogJoinedErrors    = 5
)

// DriveFile is a csv file listed from a Drive folder.
type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime"`
}

type ImportResult struct {
	FileName        string   `json:"fileName"`
	RecordsImported int      `json:"recordsImported"`
	Errors          []string `json:"errors"`
}

func CapErrors(errs []string, max int) []string {
	if len(errs) <= max {
		return errs
	}
	return errs[:max]
}
