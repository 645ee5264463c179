// Package supabase implements the remote ports over a PostgREST endpoint
// (the REST interface of a Supabase project).
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"hissab/internal/core"
	"hissab/internal/remote"
)

const (
	tableItems     = "items"
	tablePurchases = "purchases"
)

// Config holds the connection settings of the PostgREST endpoint.
type Config struct {
	// URL is the project URL, e.g. https://xyz.supabase.co
	URL string
	// APIKey is sent both as apikey and as bearer token.
	APIKey string
	// Timeout bounds every call, retries included (default: 10s).
	Timeout time.Duration
	// RetryMax is the number of retries on transport errors and 5xx (default: 2).
	RetryMax int
	// RetryWaitMin is the first backoff step (default: 200ms).
	RetryWaitMin time.Duration
	// HTTPClient overrides the underlying transport client.
	HTTPClient *http.Client
}

type Client struct {
	baseURL *url.URL
	apiKey  string
	timeout time.Duration
	http    *retryablehttp.Client
}

var _ remote.Backend = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid supabase url scheme '%s': must be 'http' or 'https'", base.Scheme)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = 200 * time.Millisecond
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = 10 * cfg.RetryWaitMin
	rc.Logger = slog.Default().With("component", "supabase")
	// Hand the last response back so status and body can be classified
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.HTTPClient != nil {
		rc.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    rc,
	}, nil
}

// ListItems implements remote.ItemStore
func (c *Client) ListItems(ctx context.Context) ([]core.Item, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.asc")

	var items []core.Item
	if err := c.do(ctx, "list items", http.MethodGet, tableItems, q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem implements remote.ItemStore
func (c *Client) CreateItem(ctx context.Context, name string, price core.Money) (core.Item, error) {
	body := struct {
		Name         string     `json:"name"`
		CurrentPrice core.Money `json:"current_price"`
	}{name, price}

	var rows []core.Item
	if err := c.do(ctx, "create item", http.MethodPost, tableItems, nil, body, &rows); err != nil {
		return core.Item{}, err
	}
	if len(rows) == 0 {
		return core.Item{}, fmt.Errorf("create item: empty representation")
	}
	return rows[0], nil
}

// UpdateItem implements remote.ItemStore
func (c *Client) UpdateItem(ctx context.Context, id string, patch core.ItemPatch) (core.Item, error) {
	var rows []core.Item
	if err := c.do(ctx, "update item", http.MethodPatch, tableItems, byID(id), patch, &rows); err != nil {
		return core.Item{}, err
	}
	if len(rows) == 0 {
		return core.Item{}, fmt.Errorf("update item %s: %w", id, remote.ErrNotFound)
	}
	return rows[0], nil
}

// DeleteItem implements remote.ItemStore
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, "delete item", http.MethodDelete, tableItems, byID(id), nil, nil)
}

// InsertPurchase implements remote.PurchaseStore
func (c *Client) InsertPurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	var rows []core.Purchase
	if err := c.do(ctx, "insert purchase", http.MethodPost, tablePurchases, nil, p, &rows); err != nil {
		return core.Purchase{}, err
	}
	if len(rows) == 0 {
		return p, nil
	}
	return rows[0], nil
}

// UpdatePurchase implements remote.PurchaseStore
func (c *Client) UpdatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	body := struct {
		ItemID    string     `json:"item_id"`
		ItemName  string     `json:"item_name"`
		Quantity  int        `json:"quantity"`
		UnitPrice core.Money `json:"unit_price"`
		Total     core.Money `json:"total"`
		Date      core.Date  `json:"date"`
	}{p.ItemID, p.ItemName, p.Quantity, p.UnitPrice, p.Total, p.Date}

	var rows []core.Purchase
	if err := c.do(ctx, "update purchase", http.MethodPatch, tablePurchases, byID(p.ID), body, &rows); err != nil {
		return core.Purchase{}, err
	}
	if len(rows) == 0 {
		return core.Purchase{}, fmt.Errorf("update purchase %s: %w", p.ID, remote.ErrNotFound)
	}
	return rows[0], nil
}

// DeletePurchase implements remote.PurchaseStore
func (c *Client) DeletePurchase(ctx context.Context, id string) error {
	return c.do(ctx, "delete purchase", http.MethodDelete, tablePurchases, byID(id), nil, nil)
}

// ListPurchases implements remote.PurchaseStore
func (c *Client) ListPurchases(ctx context.Context, r core.DateRange) ([]core.Purchase, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Add("date", "gte."+r.From.String())
	q.Add("date", "lte."+r.To.String())
	q.Set("order", "date.desc")

	var rows []core.Purchase
	if err := c.do(ctx, "list purchases", http.MethodGet, tablePurchases, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping implements remote.Pinger. Any answer below 500 counts as reachable;
// pings are not retried.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint("", nil), nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	c.setHeaders(req.Header)

	resp, err := c.http.HTTPClient.Do(req)
	if err != nil {
		return remote.Unavailable("ping", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return remote.Unavailable("ping", fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, table string, query url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal body: %w", op, err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.endpoint(table, query), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	c.setHeaders(req.Header)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil && resp == nil {
		return remote.Unavailable(op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.Unavailable(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 300 {
		return classify(op, resp.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) endpoint(table string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/rest/v1/" + table
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) setHeaders(h http.Header) {
	h.Set("apikey", c.apiKey)
	h.Set("Authorization", "Bearer "+c.apiKey)
	h.Set("Accept", "application/json")
}

func byID(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

// classify turns a non-2xx PostgREST answer into a remote error. Server side
// failures and throttling are transient; everything else is a rejection.
func classify(op string, status int, payload []byte) error {
	rerr := &remote.Error{Status: status}
	if gjson.ValidBytes(payload) {
		res := gjson.GetManyBytes(payload, "message", "code", "details", "hint")
		rerr.Message = res[0].String()
		rerr.Code = res[1].String()
		if rerr.Message == "" {
			rerr.Message = res[2].String()
		}
		if hint := res[3].String(); hint != "" {
			rerr.Message += " (" + hint + ")"
		}
	}
	if rerr.Message == "" {
		rerr.Message = strings.TrimSpace(string(payload))
	}
	if rerr.Message == "" {
		rerr.Message = http.StatusText(status)
	}

	if status >= 500 || status == http.StatusTooManyRequests {
		return remote.Unavailable(op, rerr)
	}
	return fmt.Errorf("%s: %w", op, rerr)
}
