package model

import (
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

// Sources.
const (
	SourceGoogleAds                = "google_ads"
	SourceLinkedInAds              = "linkedin_ads"
	SourceMarketingCloud           = "marketing_cloud"
	SourceSalesforceMarketingCloud = "salesforce_marketing_cloud"
	SourceSEO                      = "seo"
	SourceGoogleSearchConsole      = "google_search_console"
	SourceWebsiteTraffic           = "website_traffic"
	SourceGoogleAnalytics          = "google_analytics"
	SourceGA4Traffic               = "ga4_traffic"
	SourceGA4Conversions           = "ga4_conversions"
	SourceSearchConsole            = "search_console"
	SourceDataslayer               = "dataslayer"
)

// Metric types.
const (
	MetricTypeAggregated          = "aggregated"
	MetricTypeEmailTrends         = "email_trends"
	MetricTypeGA4Attribution      = "ga4_attribution"
	MetricTypeKPISummary          = "kpi_summary"
	MetricTypeCampaignPerformance = "campaign_performance"
	MetricTypeEmailPerformance    = "email_performance"
	MetricTypeOrganicPerformance  = "organic_performance"
	MetricTypePageViews           = "page_views"
)

// MarketingData is the canonical record. Raw records are append only,
// aggregated records are kept at one row per source.
type MarketingData struct {
	ID             string          `gorm:"primary_key:true;type:uuid" json:"id"`
	Source         string          `gorm:"not null" json:"source"`
	MetricType     string          `gorm:"not null" json:"metric_type"`
	Data           *postgres.Jsonb `json:"data"`
	DateRangeStart *time.Time      `gorm:"type:date" json:"date_range_start"`
	DateRangeEnd   *time.Time      `gorm:"type:date" json:"date_range_end"`
	SyncedAt       time.Time       `json:"synced_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (MarketingData) TableName() string {
	return "marketing_data"
}

// NormalizedRecord is a record ready to be persisted as MarketingData.
type NormalizedRecord struct {
	Source         string                 `json:"source"`
	MetricType     string                 `json:"metric_type"`
	Data           map[string]interface{} `json:"data"`
	DateRangeStart *time.Time             `json:"date_range_start"`
	DateRangeEnd   *time.Time             `json:"date_range_end"`
}
