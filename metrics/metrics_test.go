package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
)

func sumForMetric(t *testing.T, metricName string) float64 {
	rows, err := view.RetrieveData(countIntViewName)
	require.NoError(t, err)
	for _, row := range rows {
		for _, tag := range row.Tags {
			if tag.Key == MetricNameTag && tag.Value == metricName {
				return row.Data.(*view.SumData).Value
			}
		}
	}
	return 0
}

func TestCountInt(t *testing.T) {
	require.NoError(t, RegisterViews())
	// Registering twice is a no-op.
	require.NoError(t, RegisterViews())

	before := sumForMetric(t, CountImportRowsImported)
	CountInt(CountImportRowsImported, 3)
	Increment(CountImportRowsImported)
	CountInt(CountImportRowsImported, 0)
	assert.Equal(t, before+4, sumForMetric(t, CountImportRowsImported))
}

func TestRecordLatency(t *testing.T) {
	require.NoError(t, RegisterViews())
	RecordLatencySince(LatencySheetsSync, time.Now().Add(-150*time.Millisecond))

	rows, err := view.RetrieveData(latencyViewName)
	require.NoError(t, err)
	found := false
	for _, row := range rows {
		for _, tag := range row.Tags {
			if tag.Value == LatencySheetsSync {
				found = true
				assert.GreaterOrEqual(t, row.Data.(*view.DistributionData).Count, int64(1))
			}
		}
	}
	assert.True(t, found)
}

func TestInitMetricsSkippedInDevelopment(t *testing.T) {
	assert.Nil(t, InitMetrics("development", "pulse", "project", "us-central1"))
	assert.Nil(t, InitMetrics("production", "pulse", "", "us-central1"))
	StopMetrics(nil)
}
