package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quillcheck/pkg/metrics"
	"quillcheck/pkg/report"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rep report.Report
	err error
	got []report.Request
}

func (f *fakeSource) FetchReport(ctx context.Context, req report.Request) (report.Report, error) {
	f.got = append(f.got, req)
	return f.rep, f.err
}

func newTestServer(ds report.DataSource) *Server {
	d := report.NewDispatcher(ds, zerolog.Nop(), time.Second)
	return NewServer(Options{
		Dispatcher: d,
		Metrics:    metrics.New(),
		Logger:     zerolog.Nop(),
		Version:    "test",
	})
}

func postCheck(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req, _ := http.NewRequest("POST", "/api/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(nil)

	req, _ := http.NewRequest("GET", "/api/status", nil)
	rr := httptest.NewRecorder()

	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "test", resp["version"])
	assert.Contains(t, resp, "chains")
}

func TestHandleChains(t *testing.T) {
	s := newTestServer(nil)

	req, _ := http.NewRequest("GET", "/api/chains", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rows []chainRow
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, "ETH", rows[0].Symbol)
	assert.Equal(t, "42", rows[0].AddressLength)
	assert.Equal(t, "SOL", rows[4].Symbol)
	assert.True(t, rows[4].Native)
	assert.Equal(t, int64(501), rows[4].ChainID)
}

func TestHandleCheck_Report(t *testing.T) {
	ds := &fakeSource{rep: report.Report{Critical: 1, Risky: 2, Medium: 3, Neutral: 4}}
	s := newTestServer(ds)

	rr, resp := postCheck(t, s, `{"symbol":"BSC","address":"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "reporting_fungible", resp["mode"])
	assert.Equal(t, float64(56), resp["chain_id"])
	rows, ok := resp["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 4)

	require.Len(t, ds.got, 1)
	assert.Equal(t, int64(56), ds.got[0].ChainID)
	assert.False(t, ds.got[0].Native)
}

func TestHandleCheck_Native(t *testing.T) {
	ds := &fakeSource{}
	s := newTestServer(ds)

	rr, resp := postCheck(t, s, `{"symbol":"SOL","address":"So11111111111111111111111111111111111111112"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "reporting_native", resp["mode"])
	require.Len(t, ds.got, 1)
	assert.True(t, ds.got[0].Native)
}

func TestHandleCheck_Flags(t *testing.T) {
	ds := &fakeSource{}
	s := newTestServer(ds)

	tests := []struct {
		name    string
		body    string
		invalid bool
		noChain bool
	}{
		{"no chain", `{"address":"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"}`, false, true},
		{"short address", `{"symbol":"ETH","address":"0x1234"}`, true, false},
		{"empty address", `{"symbol":"POL","address":""}`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := postCheck(t, s, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Equal(t, "selecting", resp["mode"])
			sel, ok := resp["selection"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.invalid, sel["invalid_address"])
			assert.Equal(t, tt.noChain, sel["no_chain_selected"])
		})
	}
	assert.Empty(t, ds.got)
}

func TestHandleCheck_FetchError(t *testing.T) {
	s := newTestServer(&fakeSource{err: errors.New("upstream down")})

	rr, resp := postCheck(t, s, `{"symbol":"ETH","address":"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "upstream down", resp["error"])
}

func TestHandleCheck_Malformed(t *testing.T) {
	s := newTestServer(nil)
	rr, _ := postCheck(t, s, `{"symbol":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeSource{})
	postCheck(t, s, `{"symbol":"ETH","address":"short"}`)

	req, _ := http.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "quillcheck_submits_total")
}

func TestHandleWS(t *testing.T) {
	s := newTestServer(&fakeSource{rep: report.Report{Risky: 3}})
	server := httptest.NewServer(s.mux)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.listenToDispatcher(ctx)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	// Read initial state
	var msg map[string]interface{}
	err = ws.ReadJSON(&msg)
	require.NoError(t, err)
	assert.Equal(t, "initial", msg["type"])

	// Give the dispatcher listener time to subscribe.
	time.Sleep(50 * time.Millisecond)
	seq := s.opts.Dispatcher.Dispatch(report.Request{ChainID: 1, Address: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", Symbol: "ETH"})

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev report.Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, seq, ev.Seq)
	assert.Equal(t, report.EventReportLoaded, ev.Type)
	assert.Equal(t, 3, ev.Report.Risky)
}

func TestHandleCheckBroadcastsToWS(t *testing.T) {
	s := newTestServer(&fakeSource{rep: report.Report{Critical: 2}})
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.listenToDispatcher(ctx)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	var msg map[string]interface{}
	require.NoError(t, ws.ReadJSON(&msg))
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Post(server.URL+"/api/check", "application/json",
		strings.NewReader(`{"symbol":"ETH","address":"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev report.Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, report.EventReportLoaded, ev.Type)
	assert.Equal(t, int64(1), ev.Request.ChainID)
	assert.Equal(t, 2, ev.Report.Critical)
}
