package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/getsentry/sentry-go"
	"github.com/gomodule/redigo/redis"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"
)

const DEVELOPMENT = "development"

const (
	DatastoreTypePostgres = "postgres"
	DatastoreTypeMemory   = "memory"
)

const (
	defaultExternalCallTimeoutInSecs = 30
	defaultCacheExpiryInSecs         = 5 * 60
	defaultImportFileParallelism     = 1
)

var PostgresDefaultDBParams = DBConf{
	Host:     "localhost",
	Port:     5432,
	User:     "pulse",
	Name:     "pulse",
	Password: "pulse",
}

type DBConf struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Name     string `json:"name"`
	Password string `json:"password"`
	AppName  string `json:"app_name"`
}

type Configuration struct {
	AppName          string `json:"app_name"`
	Env              string `json:"env"`
	Port             int    `json:"port"`
	PrimaryDatastore string `json:"primary_datastore"`
	DBInfo           DBConf `json:"db"`
	RedisHost        string `json:"redis_host"`
	RedisPort        int    `json:"redis_port"`
	SentryDSN        string `json:"sentry_dsn"`

	// Raw CSV archival. Bucket takes precedence over dir.
	ArchiveBucket string `json:"archive_bucket"`
	ArchiveDir    string `json:"archive_dir"`

	ExternalCallTimeoutInSecs int `json:"external_call_timeout_in_secs"`
	ImportFileParallelism     int `json:"import_file_parallelism"`
	CacheExpiryInSecs         int `json:"cache_expiry_in_secs"`

	GCPProjectID       string `json:"gcp_project_id"`
	GCPProjectLocation string `json:"gcp_project_location"`

	GoogleSheetsAPIKey  string `json:"google_sheets_api_key"`
	GoogleSpreadsheetID string `json:"google_spreadsheet_id"`
}

type Services struct {
	Db         *gorm.DB
	Redis      *redis.Pool
	SentryHook *logrus_sentry.SentryHook
}

var configuration *Configuration
var services *Services

func initLogging() {
	log.SetFormatter(&log.JSONFormatter{})

	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

// InitConf sets the configuration and logging without opening any connection.
func InitConf(c *Configuration) {
	if c == nil {
		log.Fatal("Nil configuration.")
	}

	if c.PrimaryDatastore == "" {
		c.PrimaryDatastore = DatastoreTypePostgres
	}

	configuration = c
	services = &Services{}
	initLogging()
}

// InitDB opens the primary datastore connection. No-op for the memory datastore.
func InitDB(config Configuration) error {
	if config.PrimaryDatastore == DatastoreTypeMemory {
		log.Info("Using memory datastore. Skipped db initialization.")
		return nil
	}

	if services == nil {
		services = &Services{}
	}

	db, err := gorm.Open("postgres",
		fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=disable application_name=%s",
			config.DBInfo.Host,
			config.DBInfo.Port,
			config.DBInfo.User,
			config.DBInfo.Name,
			config.DBInfo.Password,
			config.DBInfo.AppName,
		))
	if err != nil {
		log.WithError(err).Error("Failed Db Initialization")
		return err
	}

	// Connection Pooling and Logging.
	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(50)
	if IsDevelopment() {
		db.LogMode(true)
	}

	services.Db = db
	log.Info("Db Service initialized")
	return nil
}

func InitRedis(host string, port int) {
	if host == "" || port == 0 {
		log.WithField("host", host).WithField("port", port).
			Warn("Invalid redis host or port. Cache disabled.")
		return
	}

	if services == nil {
		services = &Services{}
	}

	services.Redis = &redis.Pool{
		MaxActive:   100,
		MaxIdle:     20,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
		},
	}
	log.Info("Redis Service initialized")
}

// InitSentryLogging ships error level logs to sentry. No-op when dsn is empty.
func InitSentryLogging(sentryDSN, appName string) {
	if sentryDSN == "" {
		return
	}

	if services == nil {
		services = &Services{}
	}

	hook, err := logrus_sentry.NewWithTagsSentryHook(sentryDSN,
		map[string]string{"app_name": appName},
		[]log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel})
	if err != nil {
		log.WithError(err).Error("Failed to initialize sentry hook.")
		return
	}
	hook.StacktraceConfiguration.Enable = true
	if configuration != nil {
		hook.SetEnvironment(configuration.Env)
	}

	log.AddHook(hook)
	services.SentryHook = hook

	// Client used for reporting recovered panics.
	clientOptions := sentry.ClientOptions{Dsn: sentryDSN, ServerName: appName}
	if configuration != nil {
		clientOptions.Environment = configuration.Env
	}
	if err := sentry.Init(clientOptions); err != nil {
		log.WithError(err).Error("Failed to initialize sentry client.")
	}
}

// IsSentryEnabled tells whether panics and errors are reported.
func IsSentryEnabled() bool {
	return services != nil && services.SentryHook != nil
}

// SafeFlushSentryHook flushes buffered sentry events, if the hook was initialized.
func SafeFlushSentryHook() {
	if !IsSentryEnabled() {
		return
	}
	services.SentryHook.Flush()
	sentry.Flush(2 * time.Second)
}

// Init initializes configuration and every connection the server depends on.
func Init(config *Configuration) error {
	if config == nil {
		return errors.New("nil configuration")
	}

	InitConf(config)
	InitSentryLogging(config.SentryDSN, config.AppName)

	if err := InitDB(*config); err != nil {
		return err
	}

	InitRedis(config.RedisHost, config.RedisPort)
	return nil
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}

func IsDevelopment() bool {
	if configuration == nil {
		return false
	}
	return strings.Compare(configuration.Env, DEVELOPMENT) == 0
}

func IsMemoryDatastore() bool {
	return configuration != nil && configuration.PrimaryDatastore == DatastoreTypeMemory
}

func IsCacheEnabled() bool {
	return services != nil && services.Redis != nil
}

// GetCacheRedisConnection returns a pooled connection. Caller must close it.
func GetCacheRedisConnection() redis.Conn {
	return services.Redis.Get()
}

func GetCacheExpiryInSecs() float64 {
	if configuration == nil || configuration.CacheExpiryInSecs <= 0 {
		return defaultCacheExpiryInSecs
	}
	return float64(configuration.CacheExpiryInSecs)
}

// GetExternalCallTimeout is applied to every vendor api call and file download.
func GetExternalCallTimeout() time.Duration {
	if configuration == nil || configuration.ExternalCallTimeoutInSecs <= 0 {
		return defaultExternalCallTimeoutInSecs * time.Second
	}
	return time.Duration(configuration.ExternalCallTimeoutInSecs) * time.Second
}

func GetImportFileParallelism() int {
	if configuration == nil || configuration.ImportFileParallelism <= 0 {
		return defaultImportFileParallelism
	}
	return configuration.ImportFileParallelism
}
