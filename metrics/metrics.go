package metrics

import (
	"context"
	"sync"
	"time"

	"contrib.go.opencensus.io/exporter/stackdriver"
	log "github.com/sirupsen/logrus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Metric names are prefixed with their kind: Incr, Count or Latency.
const (
	IncrWebhookRequestCount     = "webhook_request_count"
	IncrWebhookAuthFailureCount = "webhook_auth_failure_count"

	CountMarketingRecordsPersisted = "marketing_records_persisted_count"
	CountMarketingRecordsFailed    = "marketing_records_failed_count"

	CountImportRowsImported = "import_rows_imported_count"
	CountImportRowsFailed   = "import_rows_failed_count"
	LatencyDriveImportFile  = "drive_import_file_latency"

	IncrAggregatedRecordsUpserted = "aggregated_records_upserted_count"
	LatencySheetsSync             = "sheets_sync_latency"
)

const (
	countIntViewName = "count_int_view"
	latencyViewName  = "latency_view"

	exportInterval = time.Minute
	exportTimeout  = 30 * time.Second
)

// MetricNameTag carries the metric name on every measurement.
var MetricNameTag, _ = tag.NewKey("metric_name")

var (
	latencyMeasure  = stats.Float64("pipeline_latency", "Pipeline step latency in milliseconds", stats.UnitMilliseconds)
	countIntMeasure = stats.Int64("pipeline_count", "Items processed by a pipeline step", stats.UnitDimensionless)

	pipelineViews = []*view.View{
		{
			Name:        latencyViewName,
			Measure:     latencyMeasure,
			Description: "Distribution of pipeline step latencies",
			// Stackdriver ignores the buckets but refuses a distribution without them.
			Aggregation: view.Distribution(0, 250, 500, 1000, 2500, 5000, 10000, 30000),
			TagKeys:     []tag.Key{MetricNameTag},
		},
		{
			Name:        countIntViewName,
			Measure:     countIntMeasure,
			Description: "Sum of items processed by pipeline steps",
			Aggregation: view.Sum(),
			TagKeys:     []tag.Key{MetricNameTag},
		},
	}

	registerViewsOnce sync.Once
	registerViewsErr  error
)

func RegisterViews() error {
	registerViewsOnce.Do(func() {
		registerViewsErr = view.Register(pipelineViews...)
	})
	return registerViewsErr
}

// pipelineResource is exported as a stackdriver generic_task.
type pipelineResource struct {
	projectID string
	location  string
	env       string
	appName   string
}

func (r *pipelineResource) MonitoredResource() (string, map[string]string) {
	return "generic_task", map[string]string{
		"project_id": r.projectID,
		"location":   r.location,
		"namespace":  r.env,
		"job":        r.appName,
		"task_id":    r.appName,
	}
}

// InitMetrics starts exporting to stackdriver. Returns nil on development
// or without a GCP project, measurements are then only kept in process.
func InitMetrics(env, appName, projectID, projectLocation string) *stackdriver.Exporter {
	if env == "development" || projectID == "" {
		return nil
	}
	logCtx := log.WithFields(log.Fields{"app_name": appName, "project_id": projectID})

	if err := RegisterViews(); err != nil {
		logCtx.WithError(err).Error("Failed to register metric views.")
		return nil
	}

	exporter, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:         projectID,
		MetricPrefix:      "custom.googleapis.com/" + appName + "/",
		ReportingInterval: exportInterval,
		MonitoredResource: &pipelineResource{projectID: projectID, location: projectLocation,
			env: env, appName: appName},
		Context: context.Background(),
		Timeout: exportTimeout,
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to create metrics exporter.")
		return nil
	}
	view.SetReportingPeriod(exportInterval)

	if err := exporter.StartMetricsExporter(); err != nil {
		logCtx.WithError(err).Error("Failed to start metrics exporter.")
		return nil
	}
	logCtx.Info("Metrics exporter started.")
	return exporter
}

// StopMetrics flushes and stops the exporter started by InitMetrics.
func StopMetrics(exporter *stackdriver.Exporter) {
	if exporter == nil {
		return
	}
	exporter.StopMetricsExporter()
	exporter.Flush()
}

func record(metricName string, measurement stats.Measurement) {
	ctx, err := tag.New(context.Background(), tag.Upsert(MetricNameTag, metricName))
	if err != nil {
		log.WithError(err).WithField("metric_name", metricName).Error("Failed to tag metric.")
		return
	}
	stats.Record(ctx, measurement)
}

func Increment(metricName string) {
	CountInt(metricName, 1)
}

// CountInt adds count to the metric. Zero counts are not recorded.
func CountInt(metricName string, count int64) {
	if count == 0 {
		return
	}
	record(metricName, countIntMeasure.M(count))
}

// RecordLatency records latency in milliseconds.
func RecordLatency(metricName string, latency float64) {
	record(metricName, latencyMeasure.M(latency))
}

func RecordLatencySince(metricName string, start time.Time) {
	RecordLatency(metricName, float64(time.Since(start).Milliseconds()))
}
