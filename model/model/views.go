package model

import (
	"encoding/json"

	"github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"
)

// Typed views of aggregated records. Every field has an explicit default so
// consumers never deal with missing keys.

type GA4TrafficData struct {
	Sessions           int64            `json:"sessions"`
	Users              int64            `json:"users"`
	NewUsers           int64            `json:"newUsers"`
	NewUserPercent     string           `json:"newUserPercent"`
	PageViews          int64            `json:"pageViews"`
	BounceRate         string           `json:"bounceRate"`
	AvgSessionDuration int64            `json:"avgSessionDuration"`
	PagesPerSession    string           `json:"pagesPerSession"`
	DeviceBreakdown    map[string]int64 `json:"deviceBreakdown"`
}

type ChannelMetrics struct {
	Sessions    int64   `json:"sessions"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

type GA4ConversionsData struct {
	Conversions      int64                     `json:"conversions"`
	Revenue          float64                   `json:"revenue"`
	Purchases        int64                     `json:"purchases"`
	ChannelBreakdown map[string]ChannelMetrics `json:"channelBreakdown"`
}

type QueryMetrics struct {
	Query       string `json:"query"`
	Clicks      int64  `json:"clicks"`
	Impressions int64  `json:"impressions"`
	Position    string `json:"position"`
}

type PageMetrics struct {
	Page        string `json:"page"`
	Clicks      int64  `json:"clicks"`
	Impressions int64  `json:"impressions"`
}

type SearchConsoleData struct {
	Clicks      int64          `json:"clicks"`
	Impressions int64          `json:"impressions"`
	CTR         string         `json:"ctr"`
	AvgPosition string         `json:"avgPosition"`
	TopQueries  []QueryMetrics `json:"topQueries"`
	TopPages    []PageMetrics  `json:"topPages"`
}

type AdsCampaignMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Cost        float64 `json:"cost"`
}

type GoogleAdsData struct {
	Impressions       int64                         `json:"impressions"`
	Clicks            int64                         `json:"clicks"`
	Conversions       int64                         `json:"conversions"`
	Cost              float64                       `json:"cost"`
	CTR               string                        `json:"ctr"`
	CPC               string                        `json:"cpc"`
	ConversionRate    string                        `json:"conversionRate"`
	CostPerConversion string                        `json:"costPerConversion"`
	Campaigns         map[string]AdsCampaignMetrics `json:"campaigns"`
}

type LinkedInCampaignMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Leads       int64   `json:"leads"`
}

type LinkedInAdsData struct {
	Impressions       int64                              `json:"impressions"`
	Clicks            int64                              `json:"clicks"`
	Conversions       int64                              `json:"conversions"`
	Spend             float64                            `json:"spend"`
	Leads             int64                              `json:"leads"`
	CTR               string                             `json:"ctr"`
	CPC               string                             `json:"cpc"`
	CostPerConversion string                             `json:"costPerConversion"`
	Campaigns         map[string]LinkedInCampaignMetrics `json:"campaigns"`
}

func NewGA4TrafficData() *GA4TrafficData {
	return &GA4TrafficData{
		NewUserPercent:  "0",
		BounceRate:      "0",
		PagesPerSession: "0",
		DeviceBreakdown: map[string]int64{},
	}
}

func NewGA4ConversionsData() *GA4ConversionsData {
	return &GA4ConversionsData{ChannelBreakdown: map[string]ChannelMetrics{}}
}

func NewSearchConsoleData() *SearchConsoleData {
	return &SearchConsoleData{
		CTR:         "0",
		AvgPosition: "0",
		TopQueries:  []QueryMetrics{},
		TopPages:    []PageMetrics{},
	}
}

func NewGoogleAdsData() *GoogleAdsData {
	return &GoogleAdsData{
		CTR:               "0",
		CPC:               "0",
		ConversionRate:    "0",
		CostPerConversion: "0",
		Campaigns:         map[string]AdsCampaignMetrics{},
	}
}

func NewLinkedInAdsData() *LinkedInAdsData {
	return &LinkedInAdsData{
		CTR:               "0",
		CPC:               "0",
		CostPerConversion: "0",
		Campaigns:         map[string]LinkedInCampaignMetrics{},
	}
}

var aggregatedViewBySource = map[string]func() interface{}{
	SourceGA4Traffic:     func() interface{} { return NewGA4TrafficData() },
	SourceGA4Conversions: func() interface{} { return NewGA4ConversionsData() },
	SourceSearchConsole:  func() interface{} { return NewSearchConsoleData() },
	SourceGoogleAds:      func() interface{} { return NewGoogleAdsData() },
	SourceLinkedInAds:    func() interface{} { return NewLinkedInAdsData() },
}

func HasAggregatedView(source string) bool {
	_, exists := aggregatedViewBySource[source]
	return exists
}

// DecodeAggregatedView decodes the stored payload onto the typed view of the
// source, keeping defaults for missing or mistyped fields. Sources without
// a view get the raw map.
func DecodeAggregatedView(source string, data *postgres.Jsonb) interface{} {
	newView, exists := aggregatedViewBySource[source]
	if !exists {
		raw := map[string]interface{}{}
		if data != nil {
			if err := json.Unmarshal(data.RawMessage, &raw); err != nil || raw == nil {
				raw = map[string]interface{}{}
			}
		}
		return raw
	}

	view := newView()
	if data == nil || len(data.RawMessage) == 0 {
		return view
	}

	// Type mismatches leave the default in place and decoding continues.
	if err := json.Unmarshal(data.RawMessage, view); err != nil {
		if _, isTypeErr := err.(*json.UnmarshalTypeError); !isTypeErr {
			log.WithError(err).WithField("source", source).
				Error("Failed to decode aggregated record. Using defaults.")
			return newView()
		}
	}
	return view
}
