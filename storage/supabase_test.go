package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cian-feed/utils"
)

func testSource(t *testing.T, handler http.Handler) *SupabaseSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src, err := NewSupabaseSource(srv.URL, "test-key", utils.RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Logger:      zerolog.Nop(),
	}, zerolog.Nop())
	require.NoError(t, err)
	return src
}

func TestNewSupabaseSourceRequiresCredentials(t *testing.T) {
	_, err := NewSupabaseSource("", "", utils.RetryConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSupabaseFetchListings(t *testing.T) {
	src := testSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/objects", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"external_id": "apt-1", "status": "published", "rooms": 2},
			{"external_id": "apt-2", "status": "draft"}
		]`))
	}))

	listings, err := src.FetchListings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "apt-1", listings[0].ExternalID.String())
	assert.True(t, listings[0].IsPublished())
	assert.False(t, listings[1].IsPublished())
	assert.Equal(t, 2, listings[0].Rooms.Or(0))
}

func TestSupabaseFetchAgents(t *testing.T) {
	src := testSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/agents", r.URL.Path)
		assert.Equal(t, "in.(7,9)", r.URL.Query().Get("id"))

		_, _ = w.Write([]byte(`[{"id": 7, "first_name": "Анна", "phone": "89991234567"}]`))
	}))

	agents, err := src.FetchAgents(context.Background(), []string{"7", "9"})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Contains(t, agents, "7")
	assert.Equal(t, "Анна", agents["7"].FirstName.String())
}

func TestSupabaseFetchAgentsEmptyIDSet(t *testing.T) {
	src := testSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty id set")
	}))

	agents, err := src.FetchAgents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestSupabaseCountListings(t *testing.T) {
	src := testSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "0-24/3573")
		_, _ = w.Write([]byte(`[]`))
	}))

	count, err := src.CountListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3573, count)
}

func TestSupabaseRetriesOnServerError(t *testing.T) {
	var calls int
	src := testSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := src.FetchListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestParseContentRangeTotal(t *testing.T) {
	tests := []struct {
		header string
		want   int
	}{
		{"0-24/3573", 3573},
		{"*/0", 0},
		{"", 0},
		{"garbage", 0},
		{"0-9/x", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseContentRangeTotal(tt.header), "header=%q", tt.header)
	}
}
