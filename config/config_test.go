package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGoogleEnv(t *testing.T) {
	t.Run("FromProcessEnvironment", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "key-1")
		t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-1")

		env, err := LoadGoogleEnv(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "key-1", env.APIKey)
		assert.Equal(t, "sheet-1", env.SpreadsheetID)
	})

	t.Run("FromEnvFile", func(t *testing.T) {
		t.Setenv("GOOGLE_DRIVE_FOLDER_ID", "")
		os.Unsetenv("GOOGLE_DRIVE_FOLDER_ID")
		t.Setenv("GOOGLE_API_KEY", "from-process")

		path := filepath.Join(t.TempDir(), "google.env")
		content := "GOOGLE_DRIVE_FOLDER_ID=folder-9\nGOOGLE_API_KEY=from-file\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		env, err := LoadGoogleEnv(path)
		require.NoError(t, err)
		assert.Equal(t, "folder-9", env.DriveFolderID)
		// process environment wins over the file.
		assert.Equal(t, "from-process", env.APIKey)
	})
}

func TestConfigDefaults(t *testing.T) {
	InitConf(&Configuration{Env: DEVELOPMENT})

	assert.True(t, IsDevelopment())
	assert.Equal(t, DatastoreTypePostgres, GetConfig().PrimaryDatastore)
	assert.Equal(t, 30*time.Second, GetExternalCallTimeout())
	assert.Equal(t, 1, GetImportFileParallelism())
	assert.Equal(t, float64(300), GetCacheExpiryInSecs())
	assert.False(t, IsCacheEnabled())

	// No dsn, no reporting.
	InitSentryLogging("", "pulse_test")
	assert.False(t, IsSentryEnabled())
	assert.NotPanics(t, SafeFlushSentryHook)

	InitConf(&Configuration{
		Env:                       "production",
		PrimaryDatastore:          DatastoreTypeMemory,
		ExternalCallTimeoutInSecs: 5,
		ImportFileParallelism:     4,
	})
	assert.False(t, IsDevelopment())
	assert.True(t, IsMemoryDatastore())
	assert.Equal(t, 5*time.Second, GetExternalCallTimeout())
	assert.Equal(t, 4, GetImportFileParallelism())
	assert.NoError(t, InitDB(*GetConfig()))
}
