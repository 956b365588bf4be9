// Package hfhub loads dataset splits from the Hugging Face dataset viewer API
// (https://datasets-server.huggingface.co). Rows are fetched page by page and
// returned in row order as a dataset.Dataset.
package hfhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/kiteco/livebench/kite-golib/dataset"
	"github.com/kiteco/livebench/kite-golib/diskcache"
	"github.com/kiteco/livebench/kite-golib/envutil"
	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/kitelog"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public dataset viewer
	DefaultEndpoint = "https://datasets-server.huggingface.co"
	// MaxPageSize is the largest page the rows endpoint serves
	MaxPageSize = 100

	userAgent = "kite-livebench/1.0"
)

// ErrSplitNotFound is returned when no config of a dataset has the requested split
var ErrSplitNotFound = errors.New("split not found")

// ErrAmbiguousConfig is returned when more than one config of a dataset has the requested split
var ErrAmbiguousConfig = errors.New("split found in several configs")

// StatusError is returned for non-200 responses
type StatusError struct {
	URL     string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Code, e.Message)
	}
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Client talks to the dataset viewer. The zero value uses DefaultEndpoint with no token and
// http.DefaultClient, and does no caching, pacing or logging.
type Client struct {
	Endpoint   string
	Token      string
	HTTPClient *http.Client
	// Cache, if set, stores raw page bodies keyed by request URL
	Cache *diskcache.Cache
	// Limiter, if set, paces requests that go to the network
	Limiter *rate.Limiter
	// Logger receives one line per fetched page
	Logger   kitelog.Interface
	PageSize int
}

// NewClient returns a Client configured from HF_ENDPOINT and HF_TOKEN (or HUGGING_FACE_HUB_TOKEN).
func NewClient() *Client {
	return &Client{
		Endpoint: envutil.GetenvDefault("HF_ENDPOINT", DefaultEndpoint),
		Token:    envutil.GetenvFirst("HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"),
	}
}

// Split names one split of one config of a dataset
type Split struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

type splitsResponse struct {
	Splits []Split `json:"splits"`
}

type pageRow struct {
	RowIdx         int         `json:"row_idx"`
	Row            dataset.Row `json:"row"`
	TruncatedCells []string    `json:"truncated_cells"`
}

type rowsResponse struct {
	Rows         []pageRow `json:"rows"`
	NumRowsTotal int       `json:"num_rows_total"`
	Partial      bool      `json:"partial"`
}

func (r rowsResponse) truncated() bool {
	for _, row := range r.Rows {
		if len(row.TruncatedCells) > 0 {
			return true
		}
	}
	return false
}

// Splits lists the (config, split) pairs of a dataset.
func (c *Client) Splits(ctx context.Context, name string) ([]Split, error) {
	var resp splitsResponse
	if _, err := c.get(ctx, "splits", url.Values{"dataset": {name}}, &resp, false); err != nil {
		return nil, err
	}
	return resp.Splits, nil
}

// LoadSplit loads every row of the given split. The split must exist in exactly one config of the
// dataset; use LoadRows to pick a config explicitly.
func (c *Client) LoadSplit(ctx context.Context, name, split string) (*dataset.Dataset, error) {
	splits, err := c.Splits(ctx, name)
	if err != nil {
		return nil, errors.WrapfWithStack(err, "error listing splits of %s", name)
	}

	var configs []string
	for _, s := range splits {
		if s.Split == split {
			configs = append(configs, s.Config)
		}
	}

	switch len(configs) {
	case 0:
		return nil, errors.WrapfWithStack(ErrSplitNotFound, "dataset %s has no %q split", name, split)
	case 1:
		return c.LoadRows(ctx, name, configs[0], split)
	default:
		return nil, errors.WrapfWithStack(ErrAmbiguousConfig, "dataset %s has a %q split in configs %s",
			name, split, strings.Join(configs, ", "))
	}
}

// LoadRows pages through a (config, split) pair until num_rows_total rows have been read.
func (c *Client) LoadRows(ctx context.Context, name, config, split string) (*dataset.Dataset, error) {
	log := kitelog.OrDiscard(c.Logger)
	pageSize := c.pageSize()
	size := pageSize

	var rows []dataset.Row
	total := -1
	for total < 0 || len(rows) < total {
		offset := len(rows)
		params := url.Values{
			"dataset": {name},
			"config":  {config},
			"split":   {split},
			"offset":  {fmt.Sprint(offset)},
			"length":  {fmt.Sprint(size)},
		}

		var page rowsResponse
		cached, err := c.get(ctx, "rows", params, &page, true)
		if err != nil {
			return nil, errors.WrapfWithStack(err, "error fetching rows %d-%d of %s", offset, offset+size, name)
		}

		if page.truncated() {
			if size == 1 {
				return nil, errors.ErrorfWithStack("row %d of %s has truncated cells", offset, name)
			}
			size = (size + 1) / 2
			log.Printf("page at offset %d of %s was truncated, retrying with %d rows", offset, name, size)
			continue
		}

		if total < 0 {
			total = page.NumRowsTotal
			if page.Partial {
				log.Printf("warning: %s/%s/%s is only partially indexed, reading %d rows", name, config, split, total)
			}
		}

		if len(page.Rows) == 0 && offset < total {
			return nil, errors.ErrorfWithStack("empty page at offset %d of %s (expected %d rows)", offset, name, total)
		}

		for i, r := range page.Rows {
			if r.RowIdx != offset+i {
				return nil, errors.ErrorfWithStack("%s: expected row %d, got row %d", name, offset+i, r.RowIdx)
			}
			if r.Row == nil {
				r.Row = dataset.Row{}
			}
			rows = append(rows, r.Row)
		}

		log.Printf("fetched rows %d-%d of %d from %s (cached=%t)", offset, len(rows), total, name, cached)
		size = pageSize
	}

	return dataset.New(name, rows), nil
}

func (c *Client) pageSize() int {
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return c.PageSize
}

func (c *Client) endpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return strings.TrimRight(c.Endpoint, "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// get fetches path?params and decodes the JSON body into out. When cacheable is set and a
// Cache is configured, bodies are served from and stored in the cache; a body is only stored
// if it decodes and is not a truncated rows page.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}, cacheable bool) (cached bool, err error) {
	u := fmt.Sprintf("%s/%s?%s", c.endpoint(), path, params.Encode())
	useCache := cacheable && c.Cache != nil

	if useCache {
		if body, err := c.Cache.Get([]byte(u)); err == nil {
			if err := decode(body, out); err == nil {
				return true, nil
			}
		}
	}

	body, err := c.fetch(ctx, u)
	if err != nil {
		return false, err
	}
	if err := decode(body, out); err != nil {
		return false, errors.Errorf("error decoding response from %s: %v", u, err)
	}

	if useCache {
		if page, ok := out.(*rowsResponse); !ok || !page.truncated() {
			if err := c.Cache.Put([]byte(u), body); err != nil {
				kitelog.OrDiscard(c.Logger).Printf("error caching %s: %v", u, err)
			}
		}
	}
	return false, nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("error reading response from %s: %v", u, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, Code: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func decode(body []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(out)
}

// errorMessage pulls the "error" field out of an error body, falling back to the raw text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
