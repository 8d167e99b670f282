// Package geocode resolves coordinates to cities through an external
// reverse-geocoding service, with rate limiting and bounded retries.
package geocode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "gpx-cities/1.0 (github.com/velotrace/gpx-cities)"
	defaultTimeout   = 10 * time.Second
)

// Place is a successful reverse-geocoding result.
type Place struct {
	Name  string
	State string
	Lat   float64
	Lon   float64
}

// RateLimitError indicates the service rejected a request for quota
// reasons. Transient; callers should back off harder than usual.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "geocoding service rate limit exceeded"
}

// ServerError indicates a 5xx response. Transient.
type ServerError struct {
	Status string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("geocoding service error: %s", e.Status)
}

type Client struct {
	baseURL   string
	userAgent string
	hc        *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.hc.Timeout = d
	}
}

func NewClient(opt ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		hc:        &http.Client{Timeout: defaultTimeout},
	}
	for _, f := range opt {
		f(c)
	}
	return c
}

// Reverse asks the service for the place at a coordinate. A nil Place
// with nil error means the service answered but found no city there.
func (c *Client) Reverse(lat, lon float64) (*Place, error) {
	u := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.6f&lon=%.6f&accept-language=en", c.baseURL, lat, lon)
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %v", u, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting %s: %w", u, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{}
	case resp.StatusCode >= 500:
		return nil, &ServerError{Status: resp.Status}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status fetching %s: %s", u, resp.Status)
	}
	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding response from %s: %v", u, err)
	}
	return body.place(), nil
}

type reverseResponse struct {
	Error       string `json:"error"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Hamlet       string `json:"hamlet"`
		Municipality string `json:"municipality"`
		State        string `json:"state"`
	} `json:"address"`
}

// place extracts the most city-like component of the response, falling
// back through progressively smaller place types the way Nominatim
// addresses are structured. Rural responses often carry no settlement
// component at all; the last resort is the first display_name segment,
// which callers vet with report.LikelyCity before trusting.
func (r *reverseResponse) place() *Place {
	if r.Error != "" {
		return nil
	}
	name := ""
	for _, candidate := range []string{
		r.Address.City,
		r.Address.Town,
		r.Address.Village,
		r.Address.Hamlet,
		r.Address.Municipality,
	} {
		if candidate != "" {
			name = candidate
			break
		}
	}
	if name == "" {
		name = strings.TrimSpace(r.DisplayName)
		if i := strings.Index(name, ","); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
	}
	if name == "" {
		return nil
	}
	p := &Place{Name: name, State: stateCode(r.Address.State)}
	if lat, err := strconv.ParseFloat(r.Lat, 64); err == nil {
		p.Lat = lat
	}
	if lon, err := strconv.ParseFloat(r.Lon, 64); err == nil {
		p.Lon = lon
	}
	return p
}
