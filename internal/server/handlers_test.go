package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/askql/internal/dataset"
	"github.com/leapstack-labs/askql/internal/engine"
	"github.com/leapstack-labs/askql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts.UTC()
}

func testServer(t *testing.T, data *dataset.Table) *Server {
	t.Helper()
	return New(Config{
		Engine:     engine.New(engine.Config{Dataset: data}),
		Port:       0,
		DateColumn: "date",
		Logger:     testutil.NewTestLogger(t),
	})
}

func salesTable(t *testing.T) *dataset.Table {
	t.Helper()
	tab, err := dataset.New([]string{"date", "region", "sales"}, [][]any{
		{date("2023-01-15"), "East", 100.0},
		{date("2023-07-01"), "West", 50.0},
	})
	require.NoError(t, err)
	return tab
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, testServer(t, salesTable(t)), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestHandleAsk_Success(t *testing.T) {
	rec := doRequest(t, testServer(t, salesTable(t)), http.MethodPost, "/ask",
		`{"query": "total sales by region"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
		Code    string `json:"generated_code"`
		Query   string `json:"query"`
		Result  struct {
			Kind string           `json:"kind"`
			Rows []map[string]any `json:"rows"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, `result = df.groupby("region").sum("sales")`, resp.Code)
	assert.Equal(t, "total sales by region", resp.Query)
	assert.Equal(t, "table", resp.Result.Kind)
	require.Len(t, resp.Result.Rows, 2)
}

func TestHandleAsk_BadBody(t *testing.T) {
	rec := doRequest(t, testServer(t, salesTable(t)), http.MethodPost, "/ask", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "invalid request body"}`, rec.Body.String())
}

func TestHandleAsk_EmptyQuery(t *testing.T) {
	for _, body := range []string{`{}`, `{"query": ""}`, `{"query": "   "}`} {
		rec := doRequest(t, testServer(t, salesTable(t)), http.MethodPost, "/ask", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		assert.JSONEq(t, `{"error": "no query provided"}`, rec.Body.String())
	}
}

func TestHandleAsk_NoDataset(t *testing.T) {
	rec := doRequest(t, testServer(t, nil), http.MethodPost, "/ask", `{"query": "total sales"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "no dataset loaded"}`, rec.Body.String())
}

func TestHandleDataInfo(t *testing.T) {
	rec := doRequest(t, testServer(t, salesTable(t)), http.MethodGet, "/data-info", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var info dataset.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))

	assert.Equal(t, []string{"date", "region", "sales"}, info.Columns)
	assert.Equal(t, 2, info.RowCount)
	assert.Equal(t, []string{"East", "West"}, info.Categorical["region"])
	require.NotNil(t, info.DateRange)
	assert.Equal(t, "2023-01-15", info.DateRange.Start)
	assert.Equal(t, "2023-07-01", info.DateRange.End)
}

func TestHandleDataInfo_NoDataset(t *testing.T) {
	rec := doRequest(t, testServer(t, nil), http.MethodGet, "/data-info", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "no dataset loaded"}`, rec.Body.String())
}
