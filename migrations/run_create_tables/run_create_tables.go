package main

// go run run_create_tables.go --env=development --db_host=localhost --db_port=5432

import (
	"flag"

	C "pulse/config"

	log "github.com/sirupsen/logrus"
)

type migration struct {
	Name  string
	Query string
}

var migrations = []migration{
	{"create marketing_data table", `CREATE TABLE IF NOT EXISTS marketing_data (
		id uuid PRIMARY KEY,
		source text NOT NULL,
		metric_type text NOT NULL,
		data jsonb NOT NULL,
		date_range_start date,
		date_range_end date,
		synced_at timestamp with time zone NOT NULL DEFAULT now(),
		created_at timestamp with time zone NOT NULL DEFAULT now()
	);`},
	// At most one aggregated row per source. Raw rows are never deduplicated.
	{"create marketing_data aggregated unique index", `CREATE UNIQUE INDEX IF NOT EXISTS
		marketing_data_source_aggregated_unique_idx ON marketing_data(source, metric_type)
		WHERE metric_type = 'aggregated';`},
	{"create marketing_data source index", `CREATE INDEX IF NOT EXISTS
		marketing_data_source_created_at_idx ON marketing_data(source, created_at DESC);`},

	{"create connection_status table", `CREATE TABLE IF NOT EXISTS connection_status (
		service_name text PRIMARY KEY,
		status text NOT NULL CHECK (status IN ('connected', 'disconnected', 'error')),
		last_check_at timestamp with time zone NOT NULL DEFAULT now(),
		error_message text,
		metadata jsonb
	);`},

	{"create api_credentials table", `CREATE TABLE IF NOT EXISTS api_credentials (
		id uuid PRIMARY KEY,
		service_name text NOT NULL,
		api_key text NOT NULL,
		is_active boolean NOT NULL DEFAULT true,
		additional_config jsonb,
		last_sync_at timestamp with time zone,
		created_at timestamp with time zone NOT NULL DEFAULT now(),
		updated_at timestamp with time zone NOT NULL DEFAULT now()
	);`},
	{"create api_credentials service index", `CREATE INDEX IF NOT EXISTS
		api_credentials_service_name_idx ON api_credentials(service_name, is_active);`},

	{"create sync_log table", `CREATE TABLE IF NOT EXISTS sync_log (
		id uuid PRIMARY KEY,
		source text NOT NULL,
		status text NOT NULL CHECK (status IN ('success', 'partial', 'error')),
		records_count integer NOT NULL DEFAULT 0,
		error_message text,
		metadata jsonb,
		created_at timestamp with time zone NOT NULL DEFAULT now()
	);`},
	{"create sync_log source index", `CREATE INDEX IF NOT EXISTS
		sync_log_source_created_at_idx ON sync_log(source, created_at DESC);`},
}

func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	dbHost := flag.String("db_host", C.PostgresDefaultDBParams.Host, "")
	dbPort := flag.Int("db_port", C.PostgresDefaultDBParams.Port, "")
	dbUser := flag.String("db_user", C.PostgresDefaultDBParams.User, "")
	dbName := flag.String("db_name", C.PostgresDefaultDBParams.Name, "")
	dbPass := flag.String("db_pass", C.PostgresDefaultDBParams.Password, "")
	flag.Parse()

	config := &C.Configuration{
		AppName: "run_create_tables",
		Env:     *env,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
			AppName:  "run_create_tables",
		},
	}
	C.InitConf(config)
	if err := C.InitDB(*config); err != nil {
		log.WithError(err).Fatal("Failed to initialize db.")
	}

	db := C.GetServices().Db
	defer db.Close()

	failures := 0
	for _, m := range migrations {
		if err := db.Exec(m.Query).Error; err != nil {
			failures++
			log.WithError(err).WithField("migration", m.Name).Error("Migration failed.")
			continue
		}
		log.WithField("migration", m.Name).Info("Migration applied.")
	}

	if failures > 0 {
		log.WithField("failures", failures).Fatal("Failed to create tables.")
	}
	log.Info("Created tables.")
}
