package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// apiClient is a thin wrapper around the goinvest HTTP API.
type apiClient struct {
	http *resty.Client
}

type clientOptions struct {
	BaseURL        string
	Timeout        time.Duration
	Actor          string
	Token          string
	IdempotencyKey string
}

type apiError struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newAPIClient(opts clientOptions) *apiClient {
	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if opts.Actor != "" {
		c.SetHeader("X-Actor-ID", opts.Actor)
	}
	if opts.Token != "" {
		c.SetAuthToken(opts.Token)
	}
	if opts.IdempotencyKey != "" {
		c.SetHeader("Idempotency-Key", opts.IdempotencyKey)
	}

	return &apiClient{http: c}
}

// do sends the request and returns the raw JSON body of a 2xx response.
func (c *apiClient) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
			if e.Message != "" {
				return nil, fmt.Errorf("%s (%d): %s: %s", e.Kind, resp.StatusCode(), e.Error, e.Message)
			}
			return nil, fmt.Errorf("%s (%d): %s", e.Kind, resp.StatusCode(), e.Error)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
	}

	return resp.Body(), nil
}
