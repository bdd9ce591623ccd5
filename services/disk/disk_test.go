package disk

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	driver := New(t.TempDir())

	dir, fileName := driver.GetRawImportFilePathAndName("google_drive", "file1", time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "raw_imports/google_drive/20240301/", dir)
	assert.True(t, strings.HasPrefix(fileName, "file1_"))
	assert.True(t, strings.HasSuffix(fileName, ".csv.snappy"))

	require.NoError(t, driver.Create(dir, fileName, strings.NewReader("content")))

	reader, err := driver.Get(dir, fileName)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	_, err = driver.Get(dir, "missing")
	assert.Error(t, err)
}

func TestRawImportFileNamesAreUnique(t *testing.T) {
	driver := New(t.TempDir())
	now := time.Now()
	_, first := driver.GetRawImportFilePathAndName("google_drive", "f", now)
	_, second := driver.GetRawImportFilePathAndName("google_drive", "f", now)
	assert.NotEqual(t, first, second)
}
