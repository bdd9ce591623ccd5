package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"pulse/ingest"
	googleDrive "pulse/integration/google_drive"
	"pulse/model/model"
	"pulse/task"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	DriveActionListFiles    = "list_files"
	DriveActionImportFile   = "import_file"
	DriveActionImportFolder = "import_folder"
)

type DriveImportPayload struct {
	Action      string `json:"action"`
	FolderID    string `json:"folderId"`
	AccessToken string `json:"accessToken"`
	FileID      string `json:"fileId"`
	APIKey      string `json:"apiKey"`
}

func isValidDriveAction(action string) bool {
	return action == DriveActionListFiles ||
		action == DriveActionImportFile ||
		action == DriveActionImportFolder
}

// NewDriveFileSource builds the Drive client of a request. Replaced in tests.
var NewDriveFileSource = func(ctx context.Context, accessToken string) (task.DriveFileSource, error) {
	client, err := googleDrive.NewClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GoogleDriveImportHandler lists or imports CSV exports of a Drive folder
// with the caller's access token.
func GoogleDriveImportHandler(c *gin.Context) {
	logCtx := requestLogCtx(c).WithField("service_name", model.ServiceGoogleDrive)

	var payload DriveImportPayload
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
		abortWithError(c, logCtx, model.NewValidationError("Invalid request body", err.Error()))
		return
	}
	logCtx = logCtx.WithFields(log.Fields{"action": payload.Action,
		"folder_id": payload.FolderID, "file_id": payload.FileID})

	// The key is optional here. A supplied key must be valid.
	if payload.APIKey != "" {
		if err := ingest.Authenticate(model.ServiceGoogleDrive, payload.APIKey); err != nil {
			abortWithError(c, logCtx, err)
			return
		}
	}

	if payload.AccessToken == "" {
		abortWithError(c, logCtx, model.NewValidationError("Google Drive access token is required", ""))
		return
	}

	if !isValidDriveAction(payload.Action) {
		abortWithError(c, logCtx, model.NewValidationError("Invalid action", payload.Action))
		return
	}

	files, err := NewDriveFileSource(c.Request.Context(), payload.AccessToken)
	if err != nil {
		abortWithError(c, logCtx, err)
		return
	}
	importer := task.NewDriveImporter(files)

	switch payload.Action {
	case DriveActionListFiles:
		driveFiles, err := importer.ListFiles(c.Request.Context(), payload.FolderID)
		if err != nil {
			abortWithError(c, logCtx, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": driveFiles})

	case DriveActionImportFile:
		result, err := importer.ImportFile(c.Request.Context(), payload.FileID)
		if err != nil {
			abortWithError(c, logCtx, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "result": result})

	case DriveActionImportFolder:
		results, totalImported, err := importer.ImportFolder(c.Request.Context(), payload.FolderID)
		if err != nil {
			abortWithError(c, logCtx, err)
			return
		}
		logCtx.WithField("total_imported", totalImported).Info("Imported drive folder.")
		c.JSON(http.StatusOK, gin.H{"success": true, "results": results, "totalImported": totalImported})
	}
}
