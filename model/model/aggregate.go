package model

import (
	"sort"
	"time"

	U "pulse/util"
)

const (
	defaultDeviceCategory = "unknown"
	defaultChannel        = "Direct"
	defaultCampaign       = "Unknown"
	topSearchConsoleLimit = 10
)

// AggregatedSummary is the single roll-up of a source, stored with
// metric_type aggregated.
type AggregatedSummary struct {
	Source         string
	Data           interface{}
	DateRangeStart *time.Time
	DateRangeEnd   *time.Time
}

func cell(cells []string, index int) string {
	if index < len(cells) {
		return cells[index]
	}
	return ""
}

func cellOrDefault(cells []string, index int, defaultValue string) string {
	if value := cell(cells, index); value != "" {
		return value
	}
	return defaultValue
}

// dateBounds uses the first and last row in input order, not sorted.
func dateBounds(count int, dateAt func(i int) string) (*time.Time, *time.Time) {
	if count == 0 {
		return nil, nil
	}
	return U.ParseDateOrNil(dateAt(0)), U.ParseDateOrNil(dateAt(count - 1))
}

type GA4TrafficRow struct {
	Date               string
	DeviceCategory     string
	Sessions           int64
	Users              int64
	NewUsers           int64
	PageViews          int64
	BounceRate         float64
	AvgSessionDuration float64
}

// GA4TrafficRowFromCells reads date, device_category, sessions, total_users,
// new_users, page_views, bounce_rate, avg_session_duration.
func GA4TrafficRowFromCells(cells []string) GA4TrafficRow {
	return GA4TrafficRow{
		Date:               cell(cells, 0),
		DeviceCategory:     cell(cells, 1),
		Sessions:           U.ParseIntPrefix(cell(cells, 2)),
		Users:              U.ParseIntPrefix(cell(cells, 3)),
		NewUsers:           U.ParseIntPrefix(cell(cells, 4)),
		PageViews:          U.ParseIntPrefix(cell(cells, 5)),
		BounceRate:         U.ParseFloatPrefix(cell(cells, 6)),
		AvgSessionDuration: U.ParseFloatPrefix(cell(cells, 7)),
	}
}

// AggregateGA4Traffic sums counts, takes the unweighted mean of bounce rate
// and session duration across rows and the per-device share of sessions.
func AggregateGA4Traffic(rows []GA4TrafficRow) *AggregatedSummary {
	data := NewGA4TrafficData()

	var bounceRateSum, sessionDurationSum float64
	deviceSessions := make(map[string]int64)
	for _, row := range rows {
		data.Sessions += row.Sessions
		data.Users += row.Users
		data.NewUsers += row.NewUsers
		data.PageViews += row.PageViews
		bounceRateSum += row.BounceRate
		sessionDurationSum += row.AvgSessionDuration

		device := row.DeviceCategory
		if device == "" {
			device = defaultDeviceCategory
		}
		deviceSessions[device] += row.Sessions
	}

	var totalDeviceSessions int64
	for _, sessions := range deviceSessions {
		totalDeviceSessions += sessions
	}
	// Each share is rounded on its own, the sum may differ from 100.
	for device, sessions := range deviceSessions {
		if totalDeviceSessions > 0 {
			data.DeviceBreakdown[device] = U.RoundHalfUp(float64(sessions) / float64(totalDeviceSessions) * 100)
		} else {
			data.DeviceBreakdown[device] = 0
		}
	}

	dataPoints := float64(len(rows))
	data.NewUserPercent = U.RatioString(float64(data.NewUsers), float64(data.Users), 100, 1)
	data.BounceRate = U.RatioString(bounceRateSum, dataPoints, 1, 1)
	if dataPoints > 0 {
		data.AvgSessionDuration = U.RoundHalfUp(sessionDurationSum / dataPoints)
	}
	data.PagesPerSession = U.RatioString(float64(data.PageViews), float64(data.Sessions), 1, 2)

	start, end := dateBounds(len(rows), func(i int) string { return rows[i].Date })
	return &AggregatedSummary{Source: SourceGA4Traffic, Data: data, DateRangeStart: start, DateRangeEnd: end}
}

type GA4ConversionRow struct {
	Date        string
	Channel     string
	Sessions    int64
	Conversions int64
	Revenue     float64
	Purchases   int64
}

// GA4ConversionRowFromCells reads date, channel, sessions, conversions,
// revenue, purchases.
func GA4ConversionRowFromCells(cells []string) GA4ConversionRow {
	return GA4ConversionRow{
		Date:        cell(cells, 0),
		Channel:     cell(cells, 1),
		Sessions:    U.ParseIntPrefix(cell(cells, 2)),
		Conversions: U.ParseIntPrefix(cell(cells, 3)),
		Revenue:     U.ParseFloatPrefix(cell(cells, 4)),
		Purchases:   U.ParseIntPrefix(cell(cells, 5)),
	}
}

func AggregateGA4Conversions(rows []GA4ConversionRow) *AggregatedSummary {
	data := NewGA4ConversionsData()

	for _, row := range rows {
		data.Conversions += row.Conversions
		data.Revenue += row.Revenue
		data.Purchases += row.Purchases

		channel := row.Channel
		if channel == "" {
			channel = defaultChannel
		}
		metrics := data.ChannelBreakdown[channel]
		metrics.Sessions += row.Sessions
		metrics.Conversions += row.Conversions
		metrics.Revenue += row.Revenue
		data.ChannelBreakdown[channel] = metrics
	}

	start, end := dateBounds(len(rows), func(i int) string { return rows[i].Date })
	return &AggregatedSummary{Source: SourceGA4Conversions, Data: data, DateRangeStart: start, DateRangeEnd: end}
}

type SearchConsoleRow struct {
	Date        string
	Query       string
	Page        string
	Clicks      int64
	Impressions int64
	Position    float64
}

// SearchConsoleRowFromCells reads date, query, page, clicks, impressions,
// ctr (ignored, recomputed) and position.
func SearchConsoleRowFromCells(cells []string) SearchConsoleRow {
	return SearchConsoleRow{
		Date:        cell(cells, 0),
		Query:       cell(cells, 1),
		Page:        cell(cells, 2),
		Clicks:      U.ParseIntPrefix(cell(cells, 3)),
		Impressions: U.ParseIntPrefix(cell(cells, 4)),
		Position:    U.ParseFloatPrefix(cell(cells, 6)),
	}
}

type queryAccumulator struct {
	clicks      int64
	impressions int64
	positionSum float64
	count       int
}

// AggregateSearchConsole also builds the top 10 queries and pages by
// clicks. A query position is the mean over its occurrences.
func AggregateSearchConsole(rows []SearchConsoleRow) *AggregatedSummary {
	data := NewSearchConsoleData()

	var positionSum float64
	queries := make(map[string]*queryAccumulator)
	queryOrder := make([]string, 0)
	pages := make(map[string]*PageMetrics)
	pageOrder := make([]string, 0)

	for _, row := range rows {
		data.Clicks += row.Clicks
		data.Impressions += row.Impressions
		positionSum += row.Position

		if row.Query != "" {
			acc, exists := queries[row.Query]
			if !exists {
				acc = &queryAccumulator{}
				queries[row.Query] = acc
				queryOrder = append(queryOrder, row.Query)
			}
			acc.clicks += row.Clicks
			acc.impressions += row.Impressions
			acc.positionSum += row.Position
			acc.count++
		}

		if row.Page != "" {
			page, exists := pages[row.Page]
			if !exists {
				page = &PageMetrics{Page: row.Page}
				pages[row.Page] = page
				pageOrder = append(pageOrder, row.Page)
			}
			page.Clicks += row.Clicks
			page.Impressions += row.Impressions
		}
	}

	topQueries := make([]QueryMetrics, 0, len(queryOrder))
	for _, query := range queryOrder {
		acc := queries[query]
		topQueries = append(topQueries, QueryMetrics{
			Query:       query,
			Clicks:      acc.clicks,
			Impressions: acc.impressions,
			Position:    U.RatioString(acc.positionSum, float64(acc.count), 1, 1),
		})
	}
	sort.SliceStable(topQueries, func(i, j int) bool { return topQueries[i].Clicks > topQueries[j].Clicks })
	if len(topQueries) > topSearchConsoleLimit {
		topQueries = topQueries[:topSearchConsoleLimit]
	}

	topPages := make([]PageMetrics, 0, len(pageOrder))
	for _, page := range pageOrder {
		topPages = append(topPages, *pages[page])
	}
	sort.SliceStable(topPages, func(i, j int) bool { return topPages[i].Clicks > topPages[j].Clicks })
	if len(topPages) > topSearchConsoleLimit {
		topPages = topPages[:topSearchConsoleLimit]
	}

	data.CTR = U.RatioString(float64(data.Clicks), float64(data.Impressions), 100, 2)
	data.AvgPosition = U.RatioString(positionSum, float64(len(rows)), 1, 1)
	data.TopQueries = topQueries
	data.TopPages = topPages

	start, end := dateBounds(len(rows), func(i int) string { return rows[i].Date })
	return &AggregatedSummary{Source: SourceSearchConsole, Data: data, DateRangeStart: start, DateRangeEnd: end}
}

type GoogleAdsRow struct {
	Date        string
	Campaign    string
	Impressions int64
	Clicks      int64
	Conversions int64
	Cost        float64
}

// GoogleAdsRowFromCells reads date, campaign, impressions, clicks,
// conversions, cost. Vendor computed rates are ignored.
func GoogleAdsRowFromCells(cells []string) GoogleAdsRow {
	return GoogleAdsRow{
		Date:        cell(cells, 0),
		Campaign:    cellOrDefault(cells, 1, defaultCampaign),
		Impressions: U.ParseIntPrefix(cell(cells, 2)),
		Clicks:      U.ParseIntPrefix(cell(cells, 3)),
		Conversions: U.ParseIntPrefix(cell(cells, 4)),
		Cost:        U.ParseFloatPrefix(cell(cells, 5)),
	}
}

func AggregateGoogleAds(rows []GoogleAdsRow) *AggregatedSummary {
	data := NewGoogleAdsData()

	for _, row := range rows {
		data.Impressions += row.Impressions
		data.Clicks += row.Clicks
		data.Conversions += row.Conversions
		data.Cost += row.Cost

		campaign := row.Campaign
		if campaign == "" {
			campaign = defaultCampaign
		}
		metrics := data.Campaigns[campaign]
		metrics.Impressions += row.Impressions
		metrics.Clicks += row.Clicks
		metrics.Conversions += row.Conversions
		metrics.Cost += row.Cost
		data.Campaigns[campaign] = metrics
	}

	data.CTR = U.RatioString(float64(data.Clicks), float64(data.Impressions), 100, 2)
	data.CPC = U.RatioString(data.Cost, float64(data.Clicks), 1, 2)
	data.ConversionRate = U.RatioString(float64(data.Conversions), float64(data.Clicks), 100, 2)
	data.CostPerConversion = U.RatioString(data.Cost, float64(data.Conversions), 1, 2)

	start, end := dateBounds(len(rows), func(i int) string { return rows[i].Date })
	return &AggregatedSummary{Source: SourceGoogleAds, Data: data, DateRangeStart: start, DateRangeEnd: end}
}

type LinkedInAdsRow struct {
	Date        string
	Campaign    string
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       float64
	Leads       int64
}

// LinkedInAdsRowFromCells reads date, campaign, impressions, clicks,
// conversions, spend and leads from the eighth column.
func LinkedInAdsRowFromCells(cells []string) LinkedInAdsRow {
	return LinkedInAdsRow{
		Date:        cell(cells, 0),
		Campaign:    cellOrDefault(cells, 1, defaultCampaign),
		Impressions: U.ParseIntPrefix(cell(cells, 2)),
		Clicks:      U.ParseIntPrefix(cell(cells, 3)),
		Conversions: U.ParseIntPrefix(cell(cells, 4)),
		Spend:       U.ParseFloatPrefix(cell(cells, 5)),
		Leads:       U.ParseIntPrefix(cell(cells, 7)),
	}
}

func AggregateLinkedInAds(rows []LinkedInAdsRow) *AggregatedSummary {
	data := NewLinkedInAdsData()

	for _, row := range rows {
		data.Impressions += row.Impressions
		data.Clicks += row.Clicks
		data.Conversions += row.Conversions
		data.Spend += row.Spend
		data.Leads += row.Leads

		campaign := row.Campaign
		if campaign == "" {
			campaign = defaultCampaign
		}
		metrics := data.Campaigns[campaign]
		metrics.Impressions += row.Impressions
		metrics.Clicks += row.Clicks
		metrics.Conversions += row.Conversions
		metrics.Spend += row.Spend
		metrics.Leads += row.Leads
		data.Campaigns[campaign] = metrics
	}

	data.CTR = U.RatioString(float64(data.Clicks), float64(data.Impressions), 100, 2)
	data.CPC = U.RatioString(data.Spend, float64(data.Clicks), 1, 2)
	data.CostPerConversion = U.RatioString(data.Spend, float64(data.Conversions), 1, 2)

	start, end := dateBounds(len(rows), func(i int) string { return rows[i].Date })
	return &AggregatedSummary{Source: SourceLinkedInAds, Data: data, DateRangeStart: start, DateRangeEnd: end}
}
