package google_drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pulse/model/model"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	MimeTypeCSV = "text/csv"

	fileFields     = "id,name,mimeType,modifiedTime"
	fileListFields = "nextPageToken,files(" + fileFields + ")"
)

// Client reads CSV exports from Google Drive on behalf of a user access token.
type Client struct {
	service *drive.Service
}

// NewClient builds a Drive client authorised by the bearer access token.
// Additional options are appended, mostly for pointing at a test endpoint.
func NewClient(ctx context.Context, accessToken string, opts ...option.ClientOption) (*Client, error) {
	if accessToken == "" {
		return nil, model.NewValidationError("Google Drive access token is required", "")
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	clientOpts := append([]option.ClientOption{option.WithTokenSource(tokenSource)}, opts...)
	service, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create google drive service")
	}
	return &Client{service: service}, nil
}

// csvFolderQuery lists non-trashed CSV files directly under the folder.
func csvFolderQuery(folderID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(folderID)
	return fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", escaped, MimeTypeCSV)
}

func toDriveFile(file *drive.File) model.DriveFile {
	return model.DriveFile{
		ID:           file.Id,
		Name:         file.Name,
		MimeType:     file.MimeType,
		ModifiedTime: file.ModifiedTime,
	}
}

// ListFiles returns the CSV files of the folder, following pagination.
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]model.DriveFile, error) {
	files := make([]model.DriveFile, 0)
	err := c.service.Files.List().
		Q(csvFolderQuery(folderID)).
		Fields(fileListFields).
		Pages(ctx, func(page *drive.FileList) error {
			for _, file := range page.Files {
				files = append(files, toDriveFile(file))
			}
			return nil
		})
	if err != nil {
		log.WithError(err).WithField("folder_id", folderID).Error("Failed to list google drive files.")
		return nil, upstreamError(err, "Google Drive API error")
	}

	return files, nil
}

func (c *Client) GetFile(ctx context.Context, fileID string) (*model.DriveFile, error) {
	file, err := c.service.Files.Get(fileID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		log.WithError(err).WithField("file_id", fileID).Error("Failed to get google drive file metadata.")
		return nil, upstreamError(err, "Failed to get file metadata")
	}

	driveFile := toDriveFile(file)
	return &driveFile, nil
}

// Download returns the raw content of the file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		log.WithError(err).WithField("file_id", fileID).Error("Failed to download google drive file.")
		return nil, upstreamError(err, "Failed to download file")
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(err, "Failed to download file")
	}
	return content, nil
}

// upstreamError keeps the vendor status and error text. Errors without a
// vendor status, like timeouts, are a bad gateway or gateway timeout.
func upstreamError(err error, message string) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		details := apiErr.Message
		if details == "" {
			details = strings.TrimSpace(apiErr.Body)
		}
		return model.NewUpstreamError(apiErr.Code, message, details)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewUpstreamError(http.StatusGatewayTimeout, message, err.Error())
	}
	return model.NewUpstreamError(http.StatusBadGateway, message, err.Error())
}
