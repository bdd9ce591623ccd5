package task

import (
	"testing"

	C "pulse/config"
	serviceDisk "pulse/services/disk"

	"github.com/stretchr/testify/assert"
)

func TestGetArchiveFileManager(t *testing.T) {
	t.Cleanup(func() { C.InitConf(&C.Configuration{}) })

	C.InitConf(&C.Configuration{})
	assert.Nil(t, GetArchiveFileManager())

	archiveDir := t.TempDir()
	C.InitConf(&C.Configuration{ArchiveDir: archiveDir})
	driver, isDisk := GetArchiveFileManager().(*serviceDisk.DiskDriver)
	assert.True(t, isDisk)
	assert.Equal(t, archiveDir, driver.GetBucketName())
}
