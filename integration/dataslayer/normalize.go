package dataslayer

import (
	"strings"
	"time"

	"pulse/model/model"
	U "pulse/util"
)

type normalizerFunc func(raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord

var normalizers = map[string]normalizerFunc{
	model.SourceGoogleAds:                normalizeGoogleAds,
	model.SourceLinkedInAds:              normalizeLinkedInAds,
	model.SourceMarketingCloud:           normalizeMarketingCloud,
	model.SourceSalesforceMarketingCloud: normalizeMarketingCloud,
	model.SourceSEO:                      normalizeSEO,
	model.SourceGoogleSearchConsole:      normalizeSEO,
	model.SourceWebsiteTraffic:           normalizeWebsiteTraffic,
	model.SourceGoogleAnalytics:          normalizeWebsiteTraffic,
}

// HasNormalizer tells whether the source is mapped to the canonical shape.
func HasNormalizer(source string) bool {
	_, exists := normalizers[strings.ToLower(strings.TrimSpace(source))]
	return exists
}

// Normalize maps the payload to the canonical record. Unknown sources are
// passed through unchanged.
func Normalize(payload *Payload) *model.NormalizedRecord {
	source := payload.GetSource()
	raw := payload.Data
	if raw == nil {
		raw = map[string]interface{}{}
	}

	if normalize, exists := normalizers[strings.ToLower(source)]; exists {
		return normalize(raw, payload)
	}

	return &model.NormalizedRecord{
		Source:         source,
		MetricType:     payload.MetricType,
		Data:           raw,
		DateRangeStart: U.ParseDateOrNil(payload.DateRangeStart),
		DateRangeEnd:   U.ParseDateOrNil(payload.DateRangeEnd),
	}
}

// isFalsy follows the loose truthiness vendors rely on: absent, null,
// false, zero and empty string are all "missing".
func isFalsy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	}
	return false
}

func valueOrZero(raw map[string]interface{}, key string) interface{} {
	if value := raw[key]; !isFalsy(value) {
		return value
	}
	return 0
}

func ratio(raw map[string]interface{}, numeratorKey, denominatorKey string, scale float64) string {
	return U.NonZeroRatioString(U.ToFloat64(raw[numeratorKey]), U.ToFloat64(raw[denominatorKey]), scale, 2)
}

func setIfPresent(data, raw map[string]interface{}, key string) {
	if value, exists := raw[key]; exists {
		data[key] = value
	}
}

func metricTypeOrDefault(raw map[string]interface{}, defaultMetricType string) string {
	if metricType, ok := raw["metric_type"].(string); ok && metricType != "" {
		return metricType
	}
	return defaultMetricType
}

func dateRange(raw map[string]interface{}, fallback *Payload) (*time.Time, *time.Time) {
	start := U.ParseDateOrNil(raw["date_range_start"])
	if start == nil {
		start = U.ParseDateOrNil(fallback.DateRangeStart)
	}
	end := U.ParseDateOrNil(raw["date_range_end"])
	if end == nil {
		end = U.ParseDateOrNil(fallback.DateRangeEnd)
	}
	return start, end
}

func newRecord(source, defaultMetricType string, data, raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord {
	start, end := dateRange(raw, fallback)
	return &model.NormalizedRecord{
		Source:         source,
		MetricType:     metricTypeOrDefault(raw, defaultMetricType),
		Data:           data,
		DateRangeStart: start,
		DateRangeEnd:   end,
	}
}

func normalizeGoogleAds(raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord {
	data := map[string]interface{}{
		"impressions":     valueOrZero(raw, "impressions"),
		"clicks":          valueOrZero(raw, "clicks"),
		"conversions":     valueOrZero(raw, "conversions"),
		"cost":            valueOrZero(raw, "cost"),
		"ctr":             ratio(raw, "clicks", "impressions", 100),
		"cpc":             ratio(raw, "cost", "clicks", 1),
		"conversion_rate": ratio(raw, "conversions", "clicks", 100),
	}
	setIfPresent(data, raw, "campaign_name")

	return newRecord(model.SourceGoogleAds, model.MetricTypeCampaignPerformance, data, raw, fallback)
}

func normalizeLinkedInAds(raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord {
	data := map[string]interface{}{
		"impressions":     valueOrZero(raw, "impressions"),
		"clicks":          valueOrZero(raw, "clicks"),
		"conversions":     valueOrZero(raw, "conversions"),
		"spend":           valueOrZero(raw, "spend"),
		"engagement_rate": valueOrZero(raw, "engagement_rate"),
		"leads":           valueOrZero(raw, "leads"),
		"ctr":             ratio(raw, "clicks", "impressions", 100),
	}
	setIfPresent(data, raw, "campaign_name")

	return newRecord(model.SourceLinkedInAds, model.MetricTypeCampaignPerformance, data, raw, fallback)
}

func normalizeMarketingCloud(raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord {
	data := map[string]interface{}{
		"sends":        valueOrZero(raw, "sends"),
		"opens":        valueOrZero(raw, "opens"),
		"clicks":       valueOrZero(raw, "clicks"),
		"bounces":      valueOrZero(raw, "bounces"),
		"unsubscribes": valueOrZero(raw, "unsubscribes"),
		"open_rate":    ratio(raw, "opens", "sends", 100),
		"click_rate":   ratio(raw, "clicks", "opens", 100),
		"bounce_rate":  ratio(raw, "bounces", "sends", 100),
	}
	setIfPresent(data, raw, "email_name")

	return newRecord(model.SourceMarketingCloud, model.MetricTypeEmailPerformance, data, raw, fallback)
}

func normalizeSEO(raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord {
	data := map[string]interface{}{
		"impressions":      valueOrZero(raw, "impressions"),
		"clicks":           valueOrZero(raw, "clicks"),
		"average_position": valueOrZero(raw, "average_position"),
		"ctr":              ratio(raw, "clicks", "impressions", 100),
	}
	setIfPresent(data, raw, "page_url")

	return newRecord(model.SourceSEO, model.MetricTypeOrganicPerformance, data, raw, fallback)
}

func normalizeWebsiteTraffic(raw map[string]interface{}, fallback *Payload) *model.NormalizedRecord {
	data := map[string]interface{}{
		"sessions":             valueOrZero(raw, "sessions"),
		"users":                valueOrZero(raw, "users"),
		"page_views":           valueOrZero(raw, "page_views"),
		"bounce_rate":          valueOrZero(raw, "bounce_rate"),
		"avg_session_duration": valueOrZero(raw, "avg_session_duration"),
		"pages_per_session":    ratio(raw, "page_views", "sessions", 1),
	}

	return newRecord(model.SourceWebsiteTraffic, model.MetricTypePageViews, data, raw, fallback)
}
