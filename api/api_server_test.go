package api_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/merakilife/cmd/report"
	"github.com/martinsuchenak/merakilife/cmd/server"
	"github.com/martinsuchenak/merakilife/internal/api"
	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/mcp"
)

const eolPage = `<html><body><table>
<tr><th>Product</th><th>Announcement</th><th>End-of-Sale Date</th><th>End-of-Support Date</th><th>Upgrade Path</th></tr>
<tr><td>MR18</td><td>Oct 26, 2016</td><td>Feb 14, 2017</td><td>Mar 1, 2022</td><td><a href="/MR/MR33">MR33</a></td></tr>
<tr><td>MX64, MX64W</td><td>Jan 25, 2090</td><td>Jul 26, 2095</td><td>Jul 26, 2099</td><td><a href="https://documentation.meraki.com/MX/MX67">MX67</a></td></tr>
<tr><td>MS220-8P-HW</td><td>Jan 9, 2018</td><td>Jul 29, 2018</td><td>Jul 29, 2025</td><td></td></tr>
</table></body></html>`

// fakeMeraki serves organizations and a two-page inventory for org 100.
// Org 300 always answers 403.
func fakeMeraki(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /organizations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"100","name":"Acme"},{"id":"200","name":"Globex"},{"id":"300","name":"Initech"}]`)
	})
	mux.HandleFunc("GET /organizations/100/inventory/devices", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("startingAfter") == "" {
			next := "http://" + r.Host + "/organizations/100/inventory/devices?perPage=1000&startingAfter=Q2"
			w.Header().Set("Link", "<"+next+">; rel=next")
			fmt.Fprint(w, `[
				{"serial":"Q1","model":"MR18","networkId":"N_1"},
				{"serial":"Q2","model":"MR18","networkId":"N_1"}]`)
			return
		}
		fmt.Fprint(w, `[
			{"serial":"Q3","model":"MR18","networkId":null},
			{"serial":"Q4","model":"MX64","networkId":"N_2"},
			{"serial":"Q5","model":"MR46","networkId":"N_2"}]`)
	})
	mux.HandleFunc("GET /organizations/200/inventory/devices", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"serial":"Z1","model":"MR46","networkId":"N_9"}]`)
	})
	mux.HandleFunc("GET /organizations/300/inventory/devices", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["Forbidden"]}`, http.StatusForbidden)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fakeEOL(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, eolPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestServer is the full HTTP stack wired to fake upstreams
type TestServer struct {
	server *httptest.Server
	token  string
}

// NewTestServer creates a new test server. An empty token disables auth.
func NewTestServer(t *testing.T, token string) *TestServer {
	t.Helper()

	cfg := &config.Config{
		APIKey:       "test-key",
		BaseURL:      fakeMeraki(t).URL,
		PerPage:      1000,
		MaxRetries:   1,
		Timeout:      5 * time.Second,
		CatalogURL:   fakeEOL(t).URL + "/eol",
		Concurrency:  2,
		APIAuthToken: token,
	}
	service := report.NewService(cfg, "test")

	handler := server.NewHandler(&server.ServerConfig{
		Config:     cfg,
		MCPServer:  mcp.NewServer(service, "", "test"),
		APIHandler: api.NewHandler(service, "test"),
	})

	ts := &TestServer{server: httptest.NewServer(handler), token: token}
	t.Cleanup(ts.Close)
	return ts
}

// Close stops the test server
func (ts *TestServer) Close() {
	if ts.server != nil {
		ts.server.Close()
	}
}

// URL returns the base URL of the test server
func (ts *TestServer) URL() string {
	return ts.server.URL
}

// Do sends a request with the server's token, if any
func (ts *TestServer) Do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL()+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
