package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/raphaelgruber/datagen/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHub serves /splits and /rows for a train split of n rows.
func fakeHub(t *testing.T, n int, auth *string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/splits", func(w http.ResponseWriter, r *http.Request) {
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		assert.Equal(t, "org/ds", r.URL.Query().Get("dataset"))
		fmt.Fprint(w, `{"splits":[
			{"dataset":"org/ds","config":"default","split":"test"},
			{"dataset":"org/ds","config":"default","split":"train"}]}`)
	})
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "default", q.Get("config"))
		assert.Equal(t, "train", q.Get("split"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		length, _ := strconv.Atoi(q.Get("length"))

		type rowEntry struct {
			RowIdx int            `json:"row_idx"`
			Row    map[string]any `json:"row"`
		}
		resp := map[string]any{
			"features": []map[string]any{
				{"feature_idx": 0, "name": "question"},
				{"feature_idx": 1, "name": "answer"},
			},
			"num_rows_total": n,
		}
		var rows []rowEntry
		for i := offset; i < offset+length && i < n; i++ {
			rows = append(rows, rowEntry{RowIdx: i, Row: map[string]any{
				"answer":   i * 10,
				"question": fmt.Sprintf("q%d", i),
			}})
		}
		resp["rows"] = rows
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadSplitPaginates(t *testing.T) {
	srv := fakeHub(t, 5, nil)
	c := NewClient(srv.URL+"/", "").WithPageSize(2)

	rows, err := c.LoadSplit(context.Background(), "org/ds", "train")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	for i, row := range rows {
		assert.Equal(t, i, row.Index)
		require.Len(t, row.Fields, 2)
		assert.Equal(t, "question", row.Fields[0].Name)
		assert.Equal(t, "answer", row.Fields[1].Name)
		assert.Equal(t, fmt.Sprintf("q%d", i), row.Fields[0].ValueString())
		assert.Equal(t, strconv.Itoa(i*10), row.Fields[1].ValueString())
	}
}

func TestLoadSplitRecordsPages(t *testing.T) {
	srv := fakeHub(t, 5, nil)
	collector := metrics.NewCollector()
	c := NewClient(srv.URL, "").WithPageSize(2).WithMetrics(collector)

	_, err := c.LoadSplit(context.Background(), "org/ds", "train")
	require.NoError(t, err)

	snaps := collector.Snapshot()
	require.Len(t, snaps, 1)
	assert.Equal(t, metrics.OpHubPage, snaps[0].Name)
	assert.Equal(t, int64(3), snaps[0].Count)
}

func TestLoadSplitSendsToken(t *testing.T) {
	var auth string
	srv := fakeHub(t, 1, &auth)

	_, err := NewClient(srv.URL, "hf_secret").LoadSplit(context.Background(), "org/ds", "train")
	require.NoError(t, err)
	assert.Equal(t, "Bearer hf_secret", auth)
}

func TestLoadSplitEmpty(t *testing.T) {
	srv := fakeHub(t, 0, nil)

	rows, err := NewClient(srv.URL, "").LoadSplit(context.Background(), "org/ds", "train")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadSplitMissingSplit(t *testing.T) {
	srv := fakeHub(t, 3, nil)

	_, err := NewClient(srv.URL, "").LoadSplit(context.Background(), "org/ds", "validation")
	assert.ErrorIs(t, err, ErrSplitNotFound)
}

func TestLoadSplitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"The dataset does not exist."}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").LoadSplit(context.Background(), "org/missing", "train")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestToRowAppendsUndeclaredCells(t *testing.T) {
	row := toRow(7, []string{"b"}, map[string]json.RawMessage{
		"b": json.RawMessage(`"bee"`),
		"z": json.RawMessage(`1`),
		"a": json.RawMessage(`2`),
	})

	require.Len(t, row.Fields, 3)
	assert.Equal(t, 7, row.Index)
	assert.Equal(t, []string{"b", "a", "z"}, []string{row.Fields[0].Name, row.Fields[1].Name, row.Fields[2].Name})
}

func TestLoadSplitMarksTruncatedRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/splits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"splits":[{"dataset":"org/ds","config":"default","split":"train"}]}`)
	})
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"features":[{"feature_idx":0,"name":"text"},{"feature_idx":1,"name":"id"}],
			"rows":[
				{"row_idx":0,"row":{"text":"short","id":1},"truncated_cells":[]},
				{"row_idx":1,"row":{"text":"first 100 bytes of a much longer d","id":2},"truncated_cells":["text"]}
			],
			"num_rows_total":2,
			"partial":true}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rows, err := NewClient(srv.URL, "").LoadSplit(context.Background(), "org/ds", "train")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Empty(t, rows[0].Truncated)
	assert.Equal(t, []string{"text"}, rows[1].Truncated)
	assert.Contains(t, logs.String(), "dataset row has truncated cells")
	assert.Contains(t, logs.String(), "dataset split is only partially available")
}
