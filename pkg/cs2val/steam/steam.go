package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

const (
	// DefaultBaseURL is the Steam community host serving inventories.
	DefaultBaseURL = "https://steamcommunity.com"

	appID     = 730 // CS2
	contextID = 2
	pageCount = 100

	requestTimeout = 25 * time.Second
)

// Client fetches a full CS2 inventory through cursor pagination. Fetch
// failures are treated as durable (privacy settings, bad account id) and are
// never retried.
type Client struct {
	http    *resty.Client
	baseURL string
	log     *logrus.Logger
}

type Options struct {
	BaseURL string // defaults to DefaultBaseURL
	Logger  *logrus.Logger
}

func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	hc := resty.New()
	hc.SetTimeout(requestTimeout)
	hc.SetHeader("User-Agent", "cs2val/1.1")
	return &Client{http: hc, baseURL: baseURL, log: log}
}

// inventoryPage is one page of the inventory response, decoded at the API
// boundary. Assets and descriptions are parallel collections correlated by
// classid+instanceid.
type inventoryPage struct {
	Assets       []assetRef    `json:"assets"`
	Descriptions []description `json:"descriptions"`
	MoreItems    int           `json:"more_items"`
	LastAssetID  string        `json:"last_assetid"`
}

type assetRef struct {
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
}

type description struct {
	ClassID        string `json:"classid"`
	InstanceID     string `json:"instanceid"`
	MarketHashName string `json:"market_hash_name"`
	MarketName     string `json:"market_name"`
	Marketable     int    `json:"marketable"`
}

// Inventory returns every nameable asset the account owns. Pagination stops
// when the service reports no more items, or when it claims more items but
// supplies no cursor (a malformed continuation would otherwise loop forever).
func (c *Client) Inventory(ctx context.Context, steamID64 string) ([]types.Asset, error) {
	addr := fmt.Sprintf("%s/inventory/%s/%d/%d", c.baseURL, steamID64, appID, contextID)

	var assets []types.Asset
	start := ""
	for {
		req := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"l":     "english",
				"count": strconv.Itoa(pageCount),
			})
		if start != "" {
			req.SetQueryParam("start_assetid", start)
		}
		resp, err := req.Get(addr)
		if err != nil {
			return nil, &types.TransportError{Op: "inventory", Err: err}
		}
		c.log.WithFields(logrus.Fields{"url": resp.Request.URL, "status": resp.StatusCode()}).Debug("steam GET")

		if resp.StatusCode() == http.StatusForbidden {
			return nil, &types.AccessError{Op: "inventory", Err: errors.New("inventory is private or not accessible")}
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, &types.TransportError{Op: "inventory", Err: fmt.Errorf("unexpected status %s", resp.Status())}
		}

		var page inventoryPage
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, &types.TransportError{Op: "inventory", Err: fmt.Errorf("decode page: %w", err)}
		}
		assets = append(assets, page.merge()...)

		if page.MoreItems != 1 || page.LastAssetID == "" {
			break
		}
		start = page.LastAssetID
	}
	return assets, nil
}

// merge correlates ownership entries with their descriptions. Entries with
// no matching description or no usable name cannot be priced and are
// silently dropped.
func (p inventoryPage) merge() []types.Asset {
	descs := make(map[string]description, len(p.Descriptions))
	for _, d := range p.Descriptions {
		descs[d.ClassID+"_"+d.InstanceID] = d
	}
	out := make([]types.Asset, 0, len(p.Assets))
	for _, a := range p.Assets {
		d, ok := descs[a.ClassID+"_"+a.InstanceID]
		if !ok {
			continue
		}
		name := strings.TrimSpace(d.MarketHashName)
		if name == "" {
			name = strings.TrimSpace(d.MarketName)
		}
		if name == "" {
			continue
		}
		out = append(out, types.Asset{Name: name, Marketable: d.Marketable != 0})
	}
	return out
}

var steamID64Pattern = regexp.MustCompile(`<steamID64>(\d+)</steamID64>`)

// ResolveVanity turns a vanity profile name into a SteamID64. Strings that
// already look like a SteamID64 (16+ digits) pass through untouched.
func (c *Client) ResolveVanity(ctx context.Context, vanity string) (string, error) {
	v := strings.Trim(strings.TrimSpace(vanity), "/")
	if len(v) >= 16 && isDigits(v) {
		return v, nil
	}
	addr := fmt.Sprintf("%s/id/%s/?xml=1", c.baseURL, url.PathEscape(v))
	resp, err := c.http.R().SetContext(ctx).Get(addr)
	if err != nil {
		return "", &types.TransportError{Op: "resolve vanity", Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &types.TransportError{Op: "resolve vanity", Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}
	m := steamID64Pattern.FindSubmatch(resp.Body())
	if m == nil {
		return "", fmt.Errorf("could not resolve vanity %q: provide --steamid", v)
	}
	return string(m[1]), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
