package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// GoogleEnv holds the google credentials batch jobs read from the environment.
type GoogleEnv struct {
	APIKey           string `envconfig:"GOOGLE_API_KEY"`
	SpreadsheetID    string `envconfig:"GOOGLE_SPREADSHEET_ID"`
	DriveAccessToken string `envconfig:"GOOGLE_DRIVE_ACCESS_TOKEN"`
	DriveFolderID    string `envconfig:"GOOGLE_DRIVE_FOLDER_ID"`
}

// LoadGoogleEnv loads the optional env files (".env" when none given) and
// then reads GoogleEnv from the process environment. Already set variables
// are never overridden by the files.
func LoadGoogleEnv(envFiles ...string) (*GoogleEnv, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.WithField("files", envFiles).Debug("No env file found. Using process environment.")
	}

	var env GoogleEnv
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}
	return &env, nil
}
