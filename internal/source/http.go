package source

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

type httpSource struct {
	httpClient *resty.Client
	url        string
}

// NewHTTPSource fetches the catalog document from url.
func NewHTTPSource(url string, timeout time.Duration, retries int) Source {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json, application/javascript;q=0.9, */*;q=0.5")

	return &httpSource{
		httpClient: client,
		url:        url,
	}
}

func (s *httpSource) Load(ctx context.Context) (*Payload, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch catalog: HTTP %d %s", resp.StatusCode(), resp.Status())
	}

	payload, err := Decode([]byte(resp.String()))
	if err != nil {
		return nil, err
	}

	log.Infof("🌐 Fetched %d products from %s", len(payload.Products), s.url)
	return payload, nil
}

// Close releases the underlying HTTP client.
func (s *httpSource) Close() error {
	return s.httpClient.Close()
}
