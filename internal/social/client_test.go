package social

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsent/internal/config"
)

func testConfig(baseURL string) config.SocialConfig {
	cfg := config.Default().Social
	cfg.BaseURL = baseURL
	cfg.BearerToken = "test-token"
	cfg.MaxPages = 3
	cfg.RequestInterval = time.Microsecond
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(id string, likes int, text string) string {
	return fmt.Sprintf(`{"id":%q,"author_id":"u1","text":%q,"created_at":"2025-08-12T09:30:00.000Z",
		"public_metrics":{"like_count":%d,"retweet_count":2,"reply_count":1,"quote_count":0}}`, id, text, likes)
}

func window() (time.Time, time.Time) {
	end := time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)
	return end.Add(-24 * time.Hour), end
}

func TestFetchWindow_FollowsNextToken(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		token := r.URL.Query().Get("next_token")
		tokens = append(tokens, token)
		switch token {
		case "":
			fmt.Fprintf(w, `{"data":[%s],"meta":{"next_token":"t2"}}`, postJSON("1", 5, "first"))
		case "t2":
			fmt.Fprintf(w, `{"data":[%s],"meta":{}}`, postJSON("2", 3, "second"))
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())
	start, end := window()

	posts, err := client.FetchWindow(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "t2"}, tokens)
	require.Len(t, posts, 2)
	assert.Equal(t, "2025-08-12", posts[0].Date)
	assert.Equal(t, 5, posts[0].Likes)
}

func TestFetchWindow_PageBudget(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"data":[%s],"meta":{"next_token":"more"}}`, postJSON(fmt.Sprint(calls), 1, "x"))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxPages = 2
	client := NewClient(cfg, testLogger())
	start, end := window()

	posts, err := client.FetchWindow(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "pagination stops at the page budget")
	assert.Len(t, posts, 2)
}

func TestFetchWindow_MinLikesFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[%s,%s],"meta":{}}`, postJSON("1", 1, "low"), postJSON("2", 10, "high"))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MinLikes = 5
	client := NewClient(cfg, testLogger())
	start, end := window()

	posts, err := client.FetchWindow(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, posts, 1)
	assert.Equal(t, "2", posts[0].ID)
}

func TestFetchWindow_TruncatesText(t *testing.T) {
	long := strings.Repeat("é", 150)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[%s],"meta":{}}`, postJSON("1", 1, long))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())
	start, end := window()

	posts, err := client.FetchWindow(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, posts, 1)
	assert.Equal(t, 100, len([]rune(posts[0].Text)), "truncation counts runes, not bytes")
}

func TestFetchWindow_HTTPErrorAbandonsWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"title":"Unsupported Authentication"}`)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())
	start, end := window()

	posts, err := client.FetchWindow(context.Background(), start, end)
	require.NoError(t, err, "an upstream error abandons the window, it does not fail the run")
	assert.Empty(t, posts)
}

func TestCollectDays_SkipsWindowTooCloseToNow(t *testing.T) {
	var windows []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		windows = append(windows, r.URL.Query().Get("end_time"))
		fmt.Fprint(w, `{"data":[],"meta":{}}`)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())
	now := time.Date(2025, 8, 13, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	_, err := client.CollectDays(context.Background(), 3)
	require.NoError(t, err)

	// i=0 window ends exactly at now and is skipped
	assert.Equal(t, []string{
		"2025-08-12T12:00:00Z",
		"2025-08-11T12:00:00Z",
	}, windows)
}
