package hfhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kiteco/livebench/kite-golib/diskcache"
	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeViewer serves /splits and /rows for a single dataset. Every config lists the same splits and
// serves the same rows; configs defaults to just "default".
type fakeViewer struct {
	name    string
	configs []string
	splits  []string
	rows    []map[string]interface{}
	// pages longer than this are served with truncated cells; zero disables truncation
	truncateAbove int
	token         string
	rowRequests   int32
}

func (f *fakeViewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"bad token"}`)
		return
	}
	q := r.URL.Query()
	if q.Get("dataset") != f.name {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"The dataset does not exist."}`)
		return
	}

	switch r.URL.Path {
	case "/splits":
		configs := f.configs
		if len(configs) == 0 {
			configs = []string{"default"}
		}
		var splits []Split
		for _, c := range configs {
			for _, s := range f.splits {
				splits = append(splits, Split{Dataset: f.name, Config: c, Split: s})
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"splits": splits})
	case "/rows":
		atomic.AddInt32(&f.rowRequests, 1)
		offset, _ := strconv.Atoi(q.Get("offset"))
		length, _ := strconv.Atoi(q.Get("length"))
		var page []map[string]interface{}
		for i := offset; i < offset+length && i < len(f.rows); i++ {
			truncated := []string{}
			if f.truncateAbove > 0 && length > f.truncateAbove {
				truncated = []string{"turns"}
			}
			page = append(page, map[string]interface{}{
				"row_idx":         i,
				"row":             f.rows[i],
				"truncated_cells": truncated,
			})
		}
		if page == nil {
			page = []map[string]interface{}{}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"rows":           page,
			"num_rows_total": len(f.rows),
			"partial":        false,
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func makeRows(n int) []map[string]interface{} {
	var rows []map[string]interface{}
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]interface{}{
			"question_id": fmt.Sprintf("q%d", i),
			"turns":       []string{fmt.Sprintf("turn %d", i)},
		})
	}
	return rows
}

func newTestClient(srv *httptest.Server) *Client {
	return &Client{Endpoint: srv.URL, HTTPClient: srv.Client()}
}

func TestLoadSplit_Paging(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"train", "test"}, rows: makeRows(7)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := newTestClient(srv)
	c.PageSize = 3

	ds, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	assert.Equal(t, "org/ds", ds.Name())
	require.Equal(t, 7, ds.Len())
	for i := 0; i < 7; i++ {
		assert.Equal(t, fmt.Sprintf("q%d", i), ds.Row(i)["question_id"])
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&fake.rowRequests))
}

func TestLoadSplit_Empty(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ds, err := newTestClient(srv).LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestLoadSplit_NoSuchSplit(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"train"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := newTestClient(srv).LoadSplit(context.Background(), "org/ds", "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSplitNotFound))
}

func TestLoadSplit_SeveralConfigs(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", configs: []string{"easy", "hard"}, splits: []string{"test"}, rows: makeRows(2)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousConfig))
	assert.Contains(t, err.Error(), "easy, hard")
	assert.EqualValues(t, 0, atomic.LoadInt32(&fake.rowRequests))

	// naming the config still works
	ds, err := c.LoadRows(context.Background(), "org/ds", "hard", "test")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoadSplit_NoSuchDataset(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := newTestClient(srv).LoadSplit(context.Background(), "org/missing", "test")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "The dataset does not exist.", se.Message)
}

func TestLoadSplit_Token(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}, rows: makeRows(2), token: "secret"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.LoadSplit(context.Background(), "org/ds", "test")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)

	c.Token = "secret"
	ds, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoadSplit_TruncatedPagesShrink(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}, rows: makeRows(5), truncateAbove: 2}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := newTestClient(srv)
	c.PageSize = 8

	ds, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	require.Equal(t, 5, ds.Len())
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("q%d", i), ds.Row(i)["question_id"])
	}
}

// withRows serves body for /rows and defers everything else to fake.
func withRows(fake *fakeViewer, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rows" {
			fmt.Fprint(w, body)
			return
		}
		fake.ServeHTTP(w, r)
	})
}

func TestLoadSplit_TruncatedSingleRow(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}}
	srv := httptest.NewServer(withRows(fake,
		`{"rows":[{"row_idx":0,"row":{"a":1},"truncated_cells":["a"]}],"num_rows_total":3}`))
	defer srv.Close()

	_, err := newTestClient(srv).LoadSplit(context.Background(), "org/ds", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestLoadSplit_Cache(t *testing.T) {
	dir, err := ioutil.TempDir("", "hfhub")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cache, err := diskcache.Open(dir, diskcache.Options{})
	require.NoError(t, err)

	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}, rows: makeRows(4)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := newTestClient(srv)
	c.Cache = cache
	c.PageSize = 2

	first, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fake.rowRequests))

	second, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fake.rowRequests))
	assert.Equal(t, first.Rows(), second.Rows())
}

func TestLoadSplit_NumbersKeepTheirText(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}}
	srv := httptest.NewServer(withRows(fake,
		`{"rows":[{"row_idx":0,"row":{"id":12345678901234567890},"truncated_cells":[]}],"num_rows_total":1}`))
	defer srv.Close()

	ds, err := newTestClient(srv).LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, json.Number("12345678901234567890"), ds.Row(0)["id"])
}

func TestLoadSplit_Limiter(t *testing.T) {
	fake := &fakeViewer{name: "org/ds", splits: []string{"test"}, rows: makeRows(3)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := newTestClient(srv)
	c.PageSize = 1
	c.Limiter = rate.NewLimiter(rate.Inf, 1)

	ds, err := c.LoadSplit(context.Background(), "org/ds", "test")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	// a limiter that never refills cannot serve a second request before the deadline
	c.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = c.LoadSplit(ctx, "org/ds", "test")
	assert.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&fake.rowRequests))
}

func TestStatusError(t *testing.T) {
	err := &StatusError{URL: "http://x/rows", Code: 500, Message: "boom"}
	assert.Equal(t, "GET http://x/rows: status 500: boom", err.Error())
	err.Message = ""
	assert.Equal(t, "GET http://x/rows: status 500", err.Error())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", errorMessage([]byte(`{"error":"nope"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("  plain text\n")))
}
