package meraki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", PerPage: 2, UserAgent: "merakilife/test"})
	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{PerPage: 5000, MaxRetries: -1})

	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultPerPage, c.cfg.PerPage)
	assert.Equal(t, 0, c.cfg.MaxRetries)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestNewClient_MaxRetries(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"Unset uses default", 0, DefaultMaxRetries},
		{"Negative disables", -1, 0},
		{"Explicit kept", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(Config{MaxRetries: tt.in}).cfg.MaxRetries)
		})
	}
}

func TestDevices_ZeroConfigRetriesRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	_, err := c.FetchDevices(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
}

func TestDevices_RetriesDisabled(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", MaxRetries: -1})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	_, err := c.FetchDevices(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestDevices_FollowsLinkHeaders(t *testing.T) {
	pages := map[string]string{
		"":   `[{"serial":"Q1","model":"MX64","networkId":"N_1"},{"serial":"Q2","model":"MX64","networkId":null}]`,
		"p2": `[{"serial":"Q3","model":"MR36","networkId":"N_2"},{"serial":"Q4","model":"MR36","networkId":""}]`,
		"p3": `[{"serial":"Q5","model":"MS120-8","networkId":"N_1"}]`,
	}
	next := map[string]string{"": "p2", "p2": "p3"}

	var requests atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/organizations/123/inventory/devices", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "merakilife/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "2", r.URL.Query().Get("perPage"))

		cursor := r.URL.Query().Get("startingAfter")
		if n, ok := next[cursor]; ok {
			link := fmt.Sprintf("<%s/organizations/123/inventory/devices?perPage=2&startingAfter=%s>; rel=next", "http://"+r.Host, n)
			w.Header().Add("Link", "<http://"+r.Host+"/organizations/123/inventory/devices?perPage=2>; rel=first, "+link)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, pages[cursor])
	}))

	devices, err := c.FetchDevices(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, int32(3), requests.Load())
	require.Len(t, devices, 5)

	var active []string
	for _, d := range devices {
		if d.Active() {
			active = append(active, d.Serial)
		}
	}
	assert.Equal(t, []string{"Q1", "Q3", "Q5"}, active)
	assert.Equal(t, "N_1", devices[0].NetworkID)
}

func TestDevices_StopsWhenConsumerStops(t *testing.T) {
	var requests atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Link", "<"+r.URL.Path+"?startingAfter=x"+fmt.Sprint(requests.Load())+">; rel=next")
		fmt.Fprint(w, `[{"serial":"Q1","model":"MX64","networkId":"N_1"}]`)
	}))

	for range c.Devices(context.Background(), "123") {
		break
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestDevices_RetriesRateLimit(t *testing.T) {
	var requests atomic.Int32
	c, waits := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[{"serial":"Q1","model":"MX64","networkId":"N_1"}]`)
	}))

	devices, err := c.FetchDevices(context.Background(), "123")
	require.NoError(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *waits)
}

func TestDevices_RetryBudgetExhausted(t *testing.T) {
	var requests atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.FetchDevices(context.Background(), "123")
	require.Error(t, err)
	assert.Equal(t, int32(DefaultMaxRetries+1), requests.Load())
}

func TestDevices_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"Unauthorized", http.StatusUnauthorized, model.ErrUnauthorized},
		{"Forbidden", http.StatusForbidden, model.ErrUnauthorized},
		{"Not found", http.StatusNotFound, model.ErrNotFound},
		{"Server error", http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"errors":["nope"]}`, tt.status)
			}))

			_, err := c.FetchDevices(context.Background(), "123")

			var fetchErr *model.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, "inventory", fetchErr.Source)
			assert.Equal(t, "123", fetchErr.OrganizationID)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			} else {
				assert.Contains(t, err.Error(), "500")
			}
		})
	}
}

func TestDevices_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"}`)
	}))

	_, err := c.FetchDevices(context.Background(), "123")
	assert.True(t, model.IsFetchError(err))
}

func TestOrganizations(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations", r.URL.Path)
		fmt.Fprint(w, `[{"id":"1","name":"Acme"},{"id":"2","name":"Globex"}]`)
	}))

	orgs, err := c.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Organization{{ID: "1", Name: "Acme"}, {ID: "2", Name: "Globex"}}, orgs)
}

func TestOrganizations_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Organizations(context.Background())

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "organizations", fetchErr.Source)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestNextLink(t *testing.T) {
	base, _ := url.Parse("https://api.meraki.com/api/v1/organizations/1/inventory/devices")

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"No header", nil, ""},
		{"Absolute next", []string{`<https://n1.meraki.com/api/v1/x?startingAfter=Q1>; rel=next`}, "https://n1.meraki.com/api/v1/x?startingAfter=Q1"},
		{"Quoted rel", []string{`<https://a/b?c=1>; rel="next"`}, "https://a/b?c=1"},
		{"Relative target", []string{`</api/v1/x?startingAfter=Q2>; rel=next`}, "https://api.meraki.com/api/v1/x?startingAfter=Q2"},
		{"Only first and last", []string{`<https://a/1>; rel=first, <https://a/9>; rel=last`}, ""},
		{"Multiple values", []string{`<https://a/1>; rel=first`, `<https://a/2>; rel=next`}, "https://a/2"},
		{"Combined rel list", []string{`<https://a/3>; rel="prev next"`}, "https://a/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.values, base))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Equal(t, time.Duration(0), retryAfter("0"))
	assert.Equal(t, defaultRetryAfter, retryAfter(""))
	assert.Equal(t, defaultRetryAfter, retryAfter("soon"))
}
