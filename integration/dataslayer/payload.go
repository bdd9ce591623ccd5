package dataslayer

import (
	"encoding/json"
	"strings"

	"pulse/model/model"
)

// Payload is the body pushed by the Dataslayer webhook.
type Payload struct {
	Source         string                 `json:"source"`
	MetricType     string                 `json:"metric_type"`
	Data           map[string]interface{} `json:"data"`
	DateRangeStart string                 `json:"date_range_start"`
	DateRangeEnd   string                 `json:"date_range_end"`
	APIKey         string                 `json:"api_key"`
}

// DecodeAPIKey reads only the api_key of the body, so that callers can
// authenticate before the rest of the payload is typed. A non string key
// counts as missing.
func DecodeAPIKey(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", model.NewValidationError("Invalid JSON payload", err.Error())
	}

	var apiKey string
	if rawKey, exists := fields["api_key"]; exists {
		if err := json.Unmarshal(rawKey, &apiKey); err != nil {
			return "", nil
		}
	}
	return apiKey, nil
}

// DecodePayload decodes the request body. Anything other than a JSON object
// is a validation error.
func DecodePayload(body []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, model.NewValidationError("Invalid JSON payload", err.Error())
	}
	return &payload, nil
}

// GetSource returns the declared source, defaulting to dataslayer.
func (p *Payload) GetSource() string {
	source := strings.TrimSpace(p.Source)
	if source == "" {
		return model.SourceDataslayer
	}
	return source
}
