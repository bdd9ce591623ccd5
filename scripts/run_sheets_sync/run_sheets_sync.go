package main

import (
	"context"
	"flag"
	"os"

	C "pulse/config"
	googleSheets "pulse/integration/google_sheets"
	"pulse/metrics"
	"pulse/task"

	log "github.com/sirupsen/logrus"
)

// go run run_sheets_sync.go --env=development --env_file=.env
func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	dbHost := flag.String("db_host", C.PostgresDefaultDBParams.Host, "")
	dbPort := flag.Int("db_port", C.PostgresDefaultDBParams.Port, "")
	dbUser := flag.String("db_user", C.PostgresDefaultDBParams.User, "")
	dbName := flag.String("db_name", C.PostgresDefaultDBParams.Name, "")
	dbPass := flag.String("db_pass", C.PostgresDefaultDBParams.Password, "")

	redisHost := flag.String("redis_host", "localhost", "")
	redisPort := flag.Int("redis_port", 6379, "")

	sentryDSN := flag.String("sentry_dsn", "", "Sentry DSN")
	externalCallTimeout := flag.Int("external_call_timeout_in_secs", 30, "")
	gcpProjectID := flag.String("gcp_project_id", "", "")
	gcpProjectLocation := flag.String("gcp_project_location", "", "")

	envFile := flag.String("env_file", "", "Optional env file with GOOGLE_API_KEY and GOOGLE_SPREADSHEET_ID.")
	spreadsheetID := flag.String("spreadsheet_id", "", "Overrides GOOGLE_SPREADSHEET_ID.")
	flag.Parse()

	appName := "run_sheets_sync"
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
		ExternalCallTimeoutInSecs: *externalCallTimeout,
	}
	C.InitConf(config)
	C.InitSentryLogging(config.SentryDSN, config.AppName)
	defer C.SafeFlushSentryHook()

	if err := C.InitDB(*config); err != nil {
		log.WithError(err).Fatal("Failed to initialize db.")
	}
	C.InitRedis(*redisHost, *redisPort)

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
	if *spreadsheetID != "" {
		googleEnv.SpreadsheetID = *spreadsheetID
	}
	if googleEnv.APIKey == "" || googleEnv.SpreadsheetID == "" {
		log.Fatal("Missing configuration. GOOGLE_API_KEY and GOOGLE_SPREADSHEET_ID must be set.")
	}

	ctx := context.Background()
	sheets, err := googleSheets.NewClient(ctx, googleEnv.APIKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to create sheets client.")
	}

	sheetsSync := &task.SheetsSync{Sheets: sheets, CallTimeout: C.GetExternalCallTimeout()}
	results, err := sheetsSync.Run(ctx, googleEnv.SpreadsheetID)
	if err != nil {
		log.WithError(err).Error("Sheets sync failed.")
		C.SafeFlushSentryHook()
		os.Exit(1)
	}

	failures := 0
	for _, sheetName := range task.SyncedSheetNames() {
		result := results[sheetName]
		logCtx := log.WithField("sheet", sheetName).WithField("rows_processed", result.RowsProcessed)
		if result.Error != "" {
			failures++
			logCtx.WithField("error", result.Error).Warn("Sheet sync failed.")
			continue
		}
		logCtx.Info("Sheet synced.")
	}
	log.WithField("failed_sheets", failures).Info("Sheets sync completed.")
}
