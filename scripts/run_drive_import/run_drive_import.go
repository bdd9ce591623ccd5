package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	C "pulse/config"
	googleDrive "pulse/integration/google_drive"
	"pulse/metrics"
	"pulse/model/model"
	"pulse/model/store"
	"pulse/task"
	U "pulse/util"

	log "github.com/sirupsen/logrus"
)

// getConfiguredFolderID reads folder_id of the active google_drive credential.
func getConfiguredFolderID() string {
	credential, status := store.GetStore().GetActiveAPICredential(model.ServiceGoogleDrive)
	if status != http.StatusFound || credential.AdditionalConfig == nil {
		return ""
	}

	additionalConfig, err := U.DecodePostgresJsonb(credential.AdditionalConfig)
	if err != nil {
		log.WithError(err).Warn("Failed to decode google_drive additional config.")
		return ""
	}

	folderID, _ := additionalConfig[model.AdditionalConfigFolderID].(string)
	return folderID
}

// go run run_drive_import.go --env=development --env_file=.env --folder_id=<drive_folder_id>
func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	dbHost := flag.String("db_host", C.PostgresDefaultDBParams.Host, "")
	dbPort := flag.Int("db_port", C.PostgresDefaultDBParams.Port, "")
	dbUser := flag.String("db_user", C.PostgresDefaultDBParams.User, "")
	dbName := flag.String("db_name", C.PostgresDefaultDBParams.Name, "")
	dbPass := flag.String("db_pass", C.PostgresDefaultDBParams.Password, "")

	sentryDSN := flag.String("sentry_dsn", "", "Sentry DSN")
	archiveBucket := flag.String("archive_bucket", "", "")
	archiveDir := flag.String("archive_dir", "", "")
	externalCallTimeout := flag.Int("external_call_timeout_in_secs", 30, "")
	importFileParallelism := flag.Int("import_file_parallelism", 4, "")
	gcpProjectID := flag.String("gcp_project_id", "", "")
	gcpProjectLocation := flag.String("gcp_project_location", "", "")

	envFile := flag.String("env_file", "", "Optional env file with GOOGLE_DRIVE_ACCESS_TOKEN.")
	folderIDFlag := flag.String("folder_id", "", "Overrides the configured folder.")
	flag.Parse()

	appName := "run_drive_import"
	config := &C.Configuration{
		AppName: appName,
		Env:     *env,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
			AppName:  appName,
		},
		SentryDSN:                 *sentryDSN,
		ArchiveBucket:             *archiveBucket,
		ArchiveDir:                *archiveDir,
		ExternalCallTimeoutInSecs: *externalCallTimeout,
		ImportFileParallelism:     *importFileParallelism,
	}
	C.InitConf(config)
	C.InitSentryLogging(config.SentryDSN, config.AppName)
	defer C.SafeFlushSentryHook()

	if err := C.InitDB(*config); err != nil {
		log.WithError(err).Fatal("Failed to initialize db.")
	}

	exporter := metrics.InitMetrics(config.Env, appName, *gcpProjectID, *gcpProjectLocation)
	defer metrics.StopMetrics(exporter)

	envFiles := []string{}
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	googleEnv, err := C.LoadGoogleEnv(envFiles...)
	if err != nil {
		log.WithError(err).Fatal("Failed to load google env.")
	}

	// Flag, then credential config, then env.
	folderID := *folderIDFlag
	if folderID == "" {
		folderID = getConfiguredFolderID()
	}
	if folderID == "" {
		folderID = googleEnv.DriveFolderID
	}
	if folderID == "" {
		log.Fatal("No drive folder configured.")
	}

	ctx := context.Background()
	files, err := googleDrive.NewClient(ctx, googleEnv.DriveAccessToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to create drive client.")
	}

	results, totalImported, err := task.NewDriveImporter(files).ImportFolder(ctx, folderID)
	if err != nil {
		log.WithError(err).WithField("folder_id", folderID).Error("Drive import failed.")
		C.SafeFlushSentryHook()
		os.Exit(1)
	}

	for _, result := range results {
		log.WithFields(log.Fields{"file_name": result.FileName,
			"records_imported": result.RecordsImported, "errors": result.Errors}).Info("Imported file.")
	}
	log.WithFields(log.Fields{"folder_id": folderID, "files": len(results),
		"total_imported": totalImported}).Info("Drive import completed.")
}
