package eol

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeProductKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MX64", "MX64"},
		{" mx64w ", "MX64W"},
		{"MX64, MX64W", "MX64"},
		{"MS220-8P-HW", "MS220-8P"},
		{"MS220-8P-HW-EU", "MS220-8P"},
		{"MR18 (with mount)", "MR18"},
		{"", ""},
		{" , ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProductKey(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Jan 25, 2022", day(2022, time.January, 25)},
		{"January 25, 2022", day(2022, time.January, 25)},
		{"2022-01-25", day(2022, time.January, 25)},
		{"Jan. 9, 2018", day(2018, time.January, 9)},
		{"Mar 1, 2022*", day(2022, time.March, 1)},
		{"TBD", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseDate(tt.in)), "ParseDate(%q) = %v", tt.in, ParseDate(tt.in))
		})
	}
}

func parseFixture(t *testing.T) []model.Announcement {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", "eol_page.html"))
	require.NoError(t, err)
	defer f.Close()

	base, _ := url.Parse("https://documentation.meraki.com/General_Administration/Other_Topics/EOL")
	records, err := ParseTable(f, base)
	require.NoError(t, err)
	return records
}

func TestParseTable(t *testing.T) {
	records := parseFixture(t)

	var models []string
	for _, r := range records {
		models = append(models, r.Model)
	}
	assert.Equal(t, []string{"MX64", "MX64W", "MS220-8P", "MR18", "Z1"}, models)

	mx64 := records[0]
	assert.Equal(t, "MX64", mx64.Product)
	assert.True(t, day(2022, time.January, 25).Equal(mx64.AnnouncementDate))
	assert.True(t, day(2022, time.July, 26).Equal(mx64.EndOfSale))
	assert.True(t, day(2027, time.July, 26).Equal(mx64.EndOfSupport))
	assert.Equal(t,
		"https://documentation.meraki.com/MX/MX_Overview_and_Specifications/MX67_Datasheet; https://documentation.meraki.com/MX/MX68",
		mx64.UpgradePathURL)

	// multi-SKU rows share everything but the product
	assert.Equal(t, "MX64W", records[1].Product)
	assert.Equal(t, mx64.UpgradePathURL, records[1].UpgradePathURL)
	assert.True(t, mx64.EndOfSupport.Equal(records[1].EndOfSupport))

	ms := records[2]
	assert.Equal(t, "MS220-8P-HW", ms.Product)
	assert.True(t, day(2018, time.January, 9).Equal(ms.AnnouncementDate))

	mr18 := records[3]
	assert.Equal(t, []string{"https://documentation.meraki.com/MR/MR33"}, mr18.UpgradePathLinks())
	assert.True(t, day(2022, time.March, 1).Equal(mr18.EndOfSupport))

	z1 := records[4]
	assert.True(t, z1.AnnouncementDate.IsZero())
	assert.True(t, z1.EndOfSupport.IsZero())
	assert.Empty(t, z1.UpgradePathURL)
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		page string
		want error
	}{
		{"No table", `<html><body><p>moved</p></body></html>`, ErrNoTable},
		{"No product column", `<table><tr><th>Model</th><th>Date</th></tr><tr><td>MX64</td><td>x</td></tr></table>`, ErrNoProductColumn},
		{"Only blank products", `<table><tr><th>Product</th></tr><tr><td> </td></tr></table>`, ErrNoRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.page), nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScraper_Announcements(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("testdata", "eol_page.html"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "merakilife/test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	s := NewScraper(srv.URL + "/eol")
	s.UserAgent = "merakilife/test"

	records, err := s.Announcements(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.True(t, strings.HasPrefix(records[0].UpgradePathURL, srv.URL+"/MX/"))
}

func TestScraper_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewScraper(srv.URL).Announcements(context.Background())

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "catalog", fetchErr.Source)
	assert.Contains(t, err.Error(), "503")
}

func TestFileSource(t *testing.T) {
	s := &FileSource{Path: filepath.Join("testdata", "catalog.json")}

	records, err := s.Announcements(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "MX64", records[0].Model)
	assert.Equal(t, "https://documentation.meraki.com/MX/MX67", records[0].UpgradePathURL)
	assert.True(t, day(2027, time.July, 26).Equal(records[0].EndOfSupport))

	assert.Equal(t, "MR18", records[1].Model)
	assert.Equal(t, "MR18-HW", records[1].Product)
	assert.True(t, day(2022, time.March, 1).Equal(records[1].EndOfSupport))
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	for _, path := range []string{filepath.Join(dir, "missing.json"), bad} {
		_, err := (&FileSource{Path: path}).Announcements(context.Background())
		assert.True(t, model.IsFetchError(err), "expected FetchError for %s, got %v", path, err)
	}
}
