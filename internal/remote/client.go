// Package remote is the client for the public TLE API.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mariavieira99/Satellites/internal/filter"
	"github.com/mariavieira99/Satellites/internal/metrics"
	"github.com/mariavieira99/Satellites/internal/satellite"
)

// DefaultBaseURL is the public TLE API root.
const DefaultBaseURL = "https://tle.ivanstanojevic.me/api/"

// DefaultTimeout bounds every remote request.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps a response body; a full collection page is a few KB.
const maxBodyBytes = 4 << 20

// ErrNotFound is returned by ByID when the API has no record for the id.
var ErrNotFound = errors.New("satellite not found")

// Client retrieves TLE records from the remote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given API root. A zero timeout selects
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type member struct {
	ID          string `json:"@id"`
	Type        string `json:"@type"`
	SatelliteID int    `json:"satelliteId"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Offset      string `json:"offset"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
}

func (m member) record() satellite.RemoteRecord {
	date := m.Date
	if date == "" {
		date = m.Offset
	}
	return satellite.RemoteRecord{
		ID:          m.ID,
		SatelliteID: m.SatelliteID,
		Name:        m.Name,
		Date:        date,
		Line1:       m.Line1,
		Line2:       m.Line2,
		Type:        m.Type,
	}
}

type collection struct {
	TotalItems int      `json:"totalItems"`
	Member     []member `json:"member"`
}

// Collection fetches one page of the TLE collection matching params.
func (c *Client) Collection(ctx context.Context, params filter.QueryParameters) ([]satellite.RemoteRecord, error) {
	endpoint, err := url.JoinPath(c.baseURL, "tle")
	if err != nil {
		return nil, fmt.Errorf("building collection url: %w", err)
	}
	endpoint += "?" + params.Values().Encode()

	var body collection
	if err := c.getJSON(ctx, "collection", endpoint, &body); err != nil {
		return nil, err
	}

	records := make([]satellite.RemoteRecord, 0, len(body.Member))
	for _, m := range body.Member {
		records = append(records, m.record())
	}

	c.logger.Debug("collection fetched",
		"component", "remote",
		"returned", len(records),
		"total_items", body.TotalItems,
		"sort", params.Sort,
	)
	return records, nil
}

// ByID fetches a single record. It returns ErrNotFound on a 404.
func (c *Client) ByID(ctx context.Context, id int) (satellite.RemoteRecord, error) {
	endpoint, err := url.JoinPath(c.baseURL, "tle", strconv.Itoa(id))
	if err != nil {
		return satellite.RemoteRecord{}, fmt.Errorf("building record url: %w", err)
	}

	var m member
	if err := c.getJSON(ctx, "record", endpoint, &m); err != nil {
		return satellite.RemoteRecord{}, err
	}
	if m.SatelliteID == 0 && m.Line2 == "" {
		return satellite.RemoteRecord{}, fmt.Errorf("record %d: empty payload", id)
	}
	return m.record(), nil
}

func (c *Client) getJSON(ctx context.Context, endpointLabel, endpoint string, v any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = "not_found"
		case err != nil:
			outcome = "error"
		}
		metrics.ObserveRemoteRequest(endpointLabel, outcome, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", endpointLabel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, endpoint)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return fmt.Errorf("response body exceeds %d byte limit", maxBodyBytes)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", endpointLabel, err)
	}
	return nil
}
