package postgres

import (
	"net/http"
	"testing"
	"time"

	C "pulse/config"
	"pulse/model/model"
	U "pulse/util"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDBEnv points the store tests at a database migrated with
// migrations/run_create_tables. Tests are skipped when PULSE_TEST_DB_HOST
// is not set.
type testDBEnv struct {
	Host     string `envconfig:"PULSE_TEST_DB_HOST"`
	Port     int    `envconfig:"PULSE_TEST_DB_PORT" default:"5432"`
	User     string `envconfig:"PULSE_TEST_DB_USER" default:"postgres"`
	Name     string `envconfig:"PULSE_TEST_DB_NAME" default:"pulse_test"`
	Password string `envconfig:"PULSE_TEST_DB_PASSWORD"`
}

func setupTestDB(t *testing.T) *Postgres {
	var env testDBEnv
	require.NoError(t, envconfig.Process("", &env))
	if env.Host == "" {
		t.Skip("PULSE_TEST_DB_HOST not set. Skipping postgres store test.")
	}

	config := &C.Configuration{
		AppName:          "pulse_test",
		PrimaryDatastore: C.DatastoreTypePostgres,
		DBInfo: C.DBConf{
			Host:     env.Host,
			Port:     env.Port,
			User:     env.User,
			Name:     env.Name,
			Password: env.Password,
			AppName:  "pulse_test",
		},
	}
	C.InitConf(config)
	if err := C.InitDB(*config); err != nil {
		t.Skipf("Postgres not reachable: %v", err)
	}
	t.Cleanup(func() { C.GetServices().Db.Close() })
	return GetStore()
}

func aggregatedDoc(t *testing.T, source string, data map[string]interface{}, start string) *model.MarketingData {
	jsonb, err := U.EncodeToPostgresJsonb(data)
	require.NoError(t, err)
	return &model.MarketingData{
		Source:         source,
		MetricType:     model.MetricTypeAggregated,
		Data:           jsonb,
		DateRangeStart: U.ParseDateOrNil(start),
	}
}

func TestUpsertAggregatedMarketingData(t *testing.T) {
	pg := setupTestDB(t)

	source := "test_source_" + U.GetSortableID()
	t.Cleanup(func() {
		C.GetServices().Db.Exec("DELETE FROM marketing_data WHERE source = ?", source)
	})

	first, status, errMsg := pg.UpsertAggregatedMarketingData(aggregatedDoc(t, source,
		map[string]interface{}{"clicks": 1}, "2024-01-01"))
	require.Equal(t, http.StatusOK, status, errMsg)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, source, first.Source)

	second, status, errMsg := pg.UpsertAggregatedMarketingData(aggregatedDoc(t, source,
		map[string]interface{}{"clicks": 2}, "2024-02-01"))
	require.Equal(t, http.StatusOK, status, errMsg)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.SyncedAt.Before(first.SyncedAt))

	records, status := pg.GetMarketingData(source, model.MetricTypeAggregated, 0)
	require.Equal(t, http.StatusFound, status)
	require.Len(t, records, 1)

	data, err := U.DecodePostgresJsonb(records[0].Data)
	require.NoError(t, err)
	assert.Equal(t, float64(2), data["clicks"])
	require.NotNil(t, records[0].DateRangeStart)
	assert.Equal(t, "2024-02-01", records[0].DateRangeStart.Format("2006-01-02"))

	// Raw records of the source are appended next to the aggregated row.
	raw := aggregatedDoc(t, source, map[string]interface{}{"clicks": 3}, "")
	raw.MetricType = model.MetricTypeCampaignPerformance
	_, status, errMsg = pg.CreateMarketingData(raw)
	require.Equal(t, http.StatusCreated, status, errMsg)

	aggregated, status := pg.GetAggregatedMarketingData(source)
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, first.ID, aggregated.ID)
	assert.WithinDuration(t, time.Now(), aggregated.SyncedAt, time.Hour)
}

func TestCreateMarketingDataRejectsSecondAggregatedRow(t *testing.T) {
	pg := setupTestDB(t)

	source := "test_source_" + U.GetSortableID()
	t.Cleanup(func() {
		C.GetServices().Db.Exec("DELETE FROM marketing_data WHERE source = ?", source)
	})

	_, status, errMsg := pg.UpsertAggregatedMarketingData(aggregatedDoc(t, source,
		map[string]interface{}{"clicks": 1}, ""))
	require.Equal(t, http.StatusOK, status, errMsg)

	_, status, _ = pg.CreateMarketingData(aggregatedDoc(t, source, map[string]interface{}{"clicks": 1}, ""))
	assert.Equal(t, http.StatusConflict, status)
}
