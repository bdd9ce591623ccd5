package main

import (
	"flag"
	"net/http"
	"strconv"
	"strings"

	C "pulse/config"
	H "pulse/handler"
	"pulse/metrics"
	mid "pulse/middleware"
	"pulse/model/model"
	"pulse/model/store"
	"pulse/model/store/memory"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// seedCredentials creates the "<service_name>:<api_key>" pairs on the memory
// datastore, for local runs without postgres.
func seedCredentials(seed string) {
	if seed == "" {
		return
	}

	memoryStore, isMemory := store.GetStore().(*memory.Memory)
	if !isMemory {
		log.Warn("Credential seeding is supported only on memory datastore. Skipped.")
		return
	}

	for _, pair := range strings.Split(seed, ",") {
		serviceAndKey := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(serviceAndKey) != 2 {
			log.WithField("pair", pair).Error("Invalid credential seed. Expected <service_name>:<api_key>.")
			continue
		}

		_, status := memoryStore.CreateAPICredential(&model.APICredential{
			ServiceName: serviceAndKey[0],
			APIKey:      serviceAndKey[1],
			IsActive:    true,
		})
		if status != http.StatusCreated {
			log.WithField("service_name", serviceAndKey[0]).Error("Failed to seed api credential.")
		}
	}
}

// ./app --env=development --api_http_port=8080 --primary_datastore=memory --seed_credentials=dataslayer:dev_key
func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	port := flag.Int("api_http_port", 8080, "")
	primaryDatastore := flag.String("primary_datastore", C.DatastoreTypePostgres, "postgres or memory")

	dbHost := flag.String("db_host", C.PostgresDefaultDBParams.Host, "")
	dbPort := flag.Int("db_port", C.PostgresDefaultDBParams.Port, "")
	dbUser := flag.String("db_user", C.PostgresDefaultDBParams.User, "")
	dbName := flag.String("db_name", C.PostgresDefaultDBParams.Name, "")
	dbPass := flag.String("db_pass", C.PostgresDefaultDBParams.Password, "")

	redisHost := flag.String("redis_host", "localhost", "")
	redisPort := flag.Int("redis_port", 6379, "")
	cacheExpiryInSecs := flag.Int("cache_expiry_in_secs", 5*60, "Expiry of cached aggregated data.")

	sentryDSN := flag.String("sentry_dsn", "", "Sentry DSN")

	archiveBucket := flag.String("archive_bucket", "", "Bucket for raw import files. Takes precedence over archive_dir.")
	archiveDir := flag.String("archive_dir", "", "Local dir for raw import files.")

	externalCallTimeout := flag.Int("external_call_timeout_in_secs", 30, "Timeout of vendor api calls.")
	importFileParallelism := flag.Int("import_file_parallelism", 1, "Files of a folder imported at a time.")

	gcpProjectID := flag.String("gcp_project_id", "", "Project for metrics export.")
	gcpProjectLocation := flag.String("gcp_project_location", "", "")

	sheetsAPIKey := flag.String("google_sheets_api_key", "", "")
	spreadsheetID := flag.String("google_spreadsheet_id", "", "")

	seed := flag.String("seed_credentials", "", "Comma separated <service_name>:<api_key>. Memory datastore only.")
	flag.Parse()

	appName := "pulse_app_server"
	config := &C.Configuration{
		AppName:          appName,
		Env:              *env,
		Port:             *port,
		PrimaryDatastore: *primaryDatastore,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
			AppName:  appName,
		},
		RedisHost:                 *redisHost,
		RedisPort:                 *redisPort,
		CacheExpiryInSecs:         *cacheExpiryInSecs,
		SentryDSN:                 *sentryDSN,
		ArchiveBucket:             *archiveBucket,
		ArchiveDir:                *archiveDir,
		ExternalCallTimeoutInSecs: *externalCallTimeout,
		ImportFileParallelism:     *importFileParallelism,
		GCPProjectID:              *gcpProjectID,
		GCPProjectLocation:        *gcpProjectLocation,
		GoogleSheetsAPIKey:        *sheetsAPIKey,
		GoogleSpreadsheetID:       *spreadsheetID,
	}

	// Initialize configs and connections.
	err := C.Init(config)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize.")
		return
	}
	seedCredentials(*seed)

	exporter := metrics.InitMetrics(config.Env, config.AppName, config.GCPProjectID, config.GCPProjectLocation)
	defer metrics.StopMetrics(exporter)

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	defer C.SafeFlushSentryHook()

	r := gin.New()
	r.Use(mid.CustomCors())
	r.Use(mid.RequestIdGenerator())
	r.Use(mid.Logger())
	r.Use(mid.Recovery())

	H.InitAppRoutes(r)
	if err := r.Run(":" + strconv.Itoa(C.GetConfig().Port)); err != nil {
		log.WithError(err).Error("Server stopped.")
	}
}
