package google_sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pulse/model/model"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client reads value ranges of a spreadsheet using an API key.
type Client struct {
	service *sheets.Service
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, model.NewValidationError("Google Sheets API key is required", "")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create google sheets service")
	}
	return &Client{service: service}, nil
}

// GetValues returns the formatted cell values of the range. Missing trailing
// cells are left out of a row, as the API does.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		log.WithError(err).WithField("range", readRange).Error("Unable to retrieve data from sheet.")
		return nil, upstreamError(err, fmt.Sprintf("Failed to fetch %s", readRange))
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i := range values {
			if values[i] != nil {
				row[i] = fmt.Sprint(values[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func upstreamError(err error, message string) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		details := apiErr.Message
		if details == "" {
			details = strings.TrimSpace(apiErr.Body)
		}
		return model.NewUpstreamError(apiErr.Code, message, details)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewUpstreamError(http.StatusGatewayTimeout, message, err.Error())
	}
	return model.NewUpstreamError(http.StatusBadGateway, message, err.Error())
}
