package model

import (
	"strings"
)

type metricTypeRule struct {
	keywords []string
	resolve  func(fileName string, headers []string) string
}

func resolveTo(metricType string) func(string, []string) string {
	return func(string, []string) string { return metricType }
}

func resolveEmailMetricType(fileName string, headers []string) string {
	if strings.Contains(fileName, "trend") || anyHeaderContains(headers, "month") {
		return MetricTypeEmailTrends
	}
	return MetricTypeKPISummary
}

// Evaluated in order against the lowercased file name. First match wins.
var metricTypeFileNameRules = []metricTypeRule{
	{keywords: []string{"email", "marketing_cloud"}, resolve: resolveEmailMetricType},
	{keywords: []string{"attribution", "utm"}, resolve: resolveTo(MetricTypeGA4Attribution)},
	{keywords: []string{"kpi", "summary"}, resolve: resolveTo(MetricTypeKPISummary)},
	{keywords: []string{"campaign"}, resolve: resolveTo(MetricTypeCampaignPerformance)},
}

var emailHeaderKeywords = []string{"open_rate", "ctr", "ctor"}

// DetectMetricType classifies an imported file by its name and then by its
// normalized column headers. Falls back to kpi_summary.
func DetectMetricType(fileName string, headers []string) string {
	fileNameLower := strings.ToLower(fileName)

	for _, rule := range metricTypeFileNameRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(fileNameLower, keyword) {
				return rule.resolve(fileNameLower, headers)
			}
		}
	}

	for _, keyword := range emailHeaderKeywords {
		if anyHeaderContains(headers, keyword) {
			return MetricTypeEmailTrends
		}
	}

	if anyHeaderContains(headers, "revenue") && anyHeaderContains(headers, "conversion") {
		return MetricTypeGA4Attribution
	}

	return MetricTypeKPISummary
}

func anyHeaderContains(headers []string, keyword string) bool {
	for _, header := range headers {
		if strings.Contains(header, keyword) {
			return true
		}
	}
	return false
}
