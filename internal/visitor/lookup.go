package visitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrLookup wraps every failure of the IP lookup service.
var ErrLookup = errors.New("ip lookup failed")

// Info is what the lookup service returns about an address.
type Info struct {
	IP          string `json:"ip"`
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	Org         string `json:"org"`

	// ipapi reports quota and reserved-range errors in a 200 body.
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client queries an ipapi.co compatible service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Lookup fetches details for ip. Private, loopback or empty addresses query
// the caller's own address instead.
func (c *Client) Lookup(ctx context.Context, ip string) (*Info, error) {
	endpoint := c.BaseURL + "/json/"
	if public(ip) {
		endpoint = c.BaseURL + "/" + url.PathEscape(ip) + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rest-portfolio")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookup, resp.StatusCode)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLookup, err)
	}
	if info.Error {
		return nil, fmt.Errorf("%w: %s", ErrLookup, info.Reason)
	}
	return &info, nil
}

func public(ip string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast())
}

// Connection status labels.
const (
	StatusConnected = "Conectado"
	StatusError     = "Error"
)

// Report is the visitor panel of the page.
type Report struct {
	Browser  string `json:"browser"`
	OS       string `json:"os"`
	Timezone string `json:"timezone"`
	IP       string `json:"ip"`
	Location string `json:"location"`
	ISP      string `json:"isp"`
	Status   string `json:"status"`
}

// NewReport fills the visitor panel. A lookup error marks every network
// field as "Error"; missing fields fall back to "N/A" or "?".
func NewReport(userAgent, timezone string, info *Info, lookupErr error) Report {
	r := Report{
		Browser:  DetectBrowser(userAgent),
		OS:       DetectOS(userAgent),
		Timezone: orDefault(timezone, "N/A"),
	}
	if lookupErr != nil || info == nil {
		r.IP, r.Location, r.ISP = StatusError, StatusError, StatusError
		r.Status = StatusError
		return r
	}
	r.IP = orDefault(info.IP, "N/A")
	r.Location = orDefault(info.City, "?") + ", " + orDefault(info.CountryName, "?")
	r.ISP = orDefault(info.Org, "N/A")
	r.Status = StatusConnected
	return r
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
