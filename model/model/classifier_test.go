package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMetricType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		headers  []string
		want     string
	}{
		{"EmailTrendInName", "Email_Trends_2024.csv", []string{"sends"}, MetricTypeEmailTrends},
		{"EmailMonthHeader", "email_export.csv", []string{"month", "sends"}, MetricTypeEmailTrends},
		{"EmailWithoutTrend", "Email Overview.csv", []string{"sends", "opens"}, MetricTypeKPISummary},
		{"MarketingCloudName", "marketing_cloud_weekly.csv", []string{"week"}, MetricTypeKPISummary},
		{"Attribution", "GA4 Attribution.csv", []string{"channel"}, MetricTypeGA4Attribution},
		{"UTM", "utm_sources.csv", []string{"source"}, MetricTypeGA4Attribution},
		{"KPI", "q1_kpi.csv", []string{"metric"}, MetricTypeKPISummary},
		{"Summary", "Monthly Summary.csv", []string{"open_rate"}, MetricTypeKPISummary},
		{"Campaign", "Campaign-Report.csv", []string{"open_rate"}, MetricTypeCampaignPerformance},
		{"NameBeforeHeaders", "email_campaign.csv", []string{"ctr"}, MetricTypeKPISummary},
		{"HeaderOpenRate", "export.csv", []string{"date", "open_rate"}, MetricTypeEmailTrends},
		{"HeaderCTR", "export.csv", []string{"email_ctr"}, MetricTypeEmailTrends},
		{"HeaderCTOR", "export.csv", []string{"ctor"}, MetricTypeEmailTrends},
		{"RevenueAndConversion", "export.csv", []string{"channel", "revenue", "conversions"}, MetricTypeGA4Attribution},
		{"SingleRevenueConversionColumn", "export.csv", []string{"date", "conversion_revenue"}, MetricTypeGA4Attribution},
		{"OnlyRevenue", "export.csv", []string{"revenue"}, MetricTypeKPISummary},
		{"Fallback", "data.csv", []string{"a", "b"}, MetricTypeKPISummary},
		{"NoHeaders", "data.csv", nil, MetricTypeKPISummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMetricType(tt.fileName, tt.headers))
		})
	}
}
