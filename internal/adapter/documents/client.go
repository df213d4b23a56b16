// Package documents talks to the document-generation service.
package documents

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client implements usecase.DocumentGenerator over HTTP.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

type generateRequest struct {
	InvestmentID string `json:"investment_id"`
	AmendmentID  string `json:"amendment_id,omitempty"`
}

type generateResponse struct {
	Affected int `json:"affected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new Client. Only transport errors and 5xx responses
// are retried; a 4xx means the request itself is wrong.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(100*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{http: rc, logger: logger}
}

// GenerateForMotive asks the service to render the documents registered for
// motive and returns how many it produced.
func (c *Client) GenerateForMotive(ctx context.Context, motive, investmentID, amendmentID string) (int, error) {
	var out generateResponse
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("motive", motive).
		SetBody(generateRequest{InvestmentID: investmentID, AmendmentID: amendmentID}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/motives/{motive}/documents")
	if err != nil {
		return 0, fmt.Errorf("document service request: %w", err)
	}

	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return 0, fmt.Errorf("document service returned %d: %s", resp.StatusCode(), msg)
	}

	c.logger.Debug().
		Str("motive", motive).
		Str("investment_id", investmentID).
		Str("amendment_id", amendmentID).
		Int("affected", out.Affected).
		Dur("took", resp.Time()).
		Msg("documents generated")

	return out.Affected, nil
}

// LogGenerator stands in for the document service in local setups. It logs
// the request and reports one document.
type LogGenerator struct {
	logger zerolog.Logger
}

// NewLogGenerator creates a new LogGenerator.
func NewLogGenerator(logger zerolog.Logger) *LogGenerator {
	return &LogGenerator{logger: logger}
}

// GenerateForMotive logs and reports a single generated document.
func (g *LogGenerator) GenerateForMotive(_ context.Context, motive, investmentID, amendmentID string) (int, error) {
	g.logger.Info().
		Str("motive", motive).
		Str("investment_id", investmentID).
		Str("amendment_id", amendmentID).
		Msg("document generation skipped, no document service configured")
	return 1, nil
}
