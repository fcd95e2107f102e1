package telemetry

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
	"sync"
	"time"
)

// Endpoints are the NOAA SWPC product URLs the client polls
type Endpoints struct {
	Plasma string `toml:"plasma"`
	Kp     string `toml:"kp"`
	Xray   string `toml:"xray"`
}

// DefaultEndpoints returns the public SWPC services
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Plasma: "https://services.swpc.noaa.gov/products/solar-wind/plasma-5-minute.json",
		Kp:     "https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json",
		Xray:   "https://services.swpc.noaa.gov/json/goes/primary/xrays-6-hour.json",
	}
}

// ErrAllSourcesFailed means no product could be fetched this tick
var ErrAllSourcesFailed = errors.New("all telemetry sources failed")

// Client fetches live space-weather readings. When a direct request fails it
// retries once through the configured proxy prefix; products that still fail
// keep their previous values, so a partial outage degrades rather than
// blanks the dashboard.
type Client struct {
	http        *http.Client
	endpoints   Endpoints
	proxyPrefix string // e.g. "https://corsproxy.io/?url="; empty disables fallback
	logger      *slog.Logger

	mu   sync.Mutex
	last Snapshot
}

// NewClient creates a telemetry client. A nil logger discards logs.
func NewClient(endpoints Endpoints, proxyPrefix string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:        &http.Client{Timeout: 15 * time.Second},
		endpoints:   endpoints,
		proxyPrefix: proxyPrefix,
		logger:      logger,
	}
}

// Fetch retrieves the latest snapshot. Fields from products that failed carry
// the previous reading; ErrAllSourcesFailed is returned only when nothing
// could be fetched at all.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	snap := c.last
	c.mu.Unlock()
	snap.TakenAt = time.Now().UTC()

	failures := 0

	if speed, density, err := c.fetchPlasma(ctx); err != nil {
		c.logger.Warn("plasma fetch failed", "error", err)
		failures++
	} else {
		snap.WindSpeed = speed
		snap.WindDensity = density
	}

	if kp, err := c.fetchKp(ctx); err != nil {
		c.logger.Warn("kp fetch failed", "error", err)
		failures++
	} else {
		snap.KpIndex = kp
	}

	if flux, err := c.fetchXray(ctx); err != nil {
		c.logger.Warn("xray fetch failed", "error", err)
		failures++
	} else {
		snap.FlareFlux = flux
		snap.FlareClass = ClassFromFlux(flux)
	}

	if failures == 3 {
		return snap, ErrAllSourcesFailed
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()
	return snap, nil
}

// get fetches a URL, falling back to the proxy prefix when the direct
// request fails
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	body, directErr := c.getOnce(ctx, target)
	if directErr == nil {
		return body, nil
	}
	if c.proxyPrefix == "" {
		return nil, directErr
	}

	c.logger.Debug("direct fetch failed, trying proxy", "url", target, "error", directErr)
	body, proxyErr := c.getOnce(ctx, c.proxyPrefix+url.QueryEscape(target))
	if proxyErr != nil {
		return nil, fmt.Errorf("direct: %v; proxy: %w", directErr, proxyErr)
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// fetchPlasma reads the 5-minute solar-wind product: rows of
// [time_tag, density, speed, temperature] strings, first row is the header
func (c *Client) fetchPlasma(ctx context.Context) (speed, density float64, err error) {
	body, err := c.get(ctx, c.endpoints.Plasma)
	if err != nil {
		return 0, 0, err
	}

	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode plasma: %w", err)
	}

	// Walk backward past trailing rows with null readings
	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) < 3 {
			continue
		}
		d, okD := cellFloat(row[1])
		s, okS := cellFloat(row[2])
		if okD && okS {
			return s, d, nil
		}
	}
	return 0, 0, errors.New("plasma: no usable rows")
}

// fetchKp reads the planetary K-index product and returns the latest value
func (c *Client) fetchKp(ctx context.Context) (float64, error) {
	body, err := c.get(ctx, c.endpoints.Kp)
	if err != nil {
		return 0, err
	}

	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode kp: %w", err)
	}

	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) < 2 {
			continue
		}
		if kp, ok := cellFloat(row[1]); ok {
			return kp, nil
		}
	}
	return 0, errors.New("kp: no usable rows")
}

// xrayReading is one GOES X-ray flux record
type xrayReading struct {
	TimeTag string  `json:"time_tag"`
	Flux    float64 `json:"flux"`
	Energy  string  `json:"energy"`
}

// fetchXray reads the GOES X-ray product and returns the latest long-band
// (0.1–0.8 nm) flux
func (c *Client) fetchXray(ctx context.Context) (float64, error) {
	body, err := c.get(ctx, c.endpoints.Xray)
	if err != nil {
		return 0, err
	}

	var readings []xrayReading
	if err := json.Unmarshal(body, &readings); err != nil {
		return 0, fmt.Errorf("decode xray: %w", err)
	}

	for i := len(readings) - 1; i >= 0; i-- {
		if readings[i].Energy == "0.1-0.8nm" && readings[i].Flux > 0 {
			return readings[i].Flux, nil
		}
	}
	return 0, errors.New("xray: no usable readings")
}

// cellFloat coerces a product cell (string or number, possibly null) to a
// float
func cellFloat(cell any) (float64, bool) {
	switch v := cell.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case float64:
		return v, true
	default:
		return 0, false
	}
}
