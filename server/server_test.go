package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cian-feed/feed"
	"cian-feed/models"
)

// fakeSource is an in-memory ListingSource for handler tests.
type fakeSource struct {
	listings []*models.ListingRecord
	agents   map[string]*models.AgentRecord
	fetchErr error
}

func (f *fakeSource) FetchListings(ctx context.Context) ([]*models.ListingRecord, error) {
	return f.listings, f.fetchErr
}

func (f *fakeSource) FetchAgents(ctx context.Context, ids []string) (map[string]*models.AgentRecord, error) {
	out := make(map[string]*models.AgentRecord)
	for _, id := range ids {
		if a, ok := f.agents[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeSource) CountListings(ctx context.Context) (int, error) {
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	return len(f.listings), nil
}

func (f *fakeSource) Close() error { return nil }

func testServer(t *testing.T, src *fakeSource) http.Handler {
	t.Helper()
	return New(src, feed.MustLoadVocabulary(), zerolog.Nop()).Router()
}

func published(externalID string) *models.ListingRecord {
	return &models.ListingRecord{
		ExternalID: models.FlexString{Value: externalID, Valid: true},
		Status:     models.NewFlex("published"),
	}
}

func TestFeedEndpoint(t *testing.T) {
	src := &fakeSource{listings: []*models.ListingRecord{
		published("apt-1"),
		{ExternalID: models.FlexString{Value: "apt-2", Valid: true}, Status: models.NewFlex("draft")},
	}}

	rec := httptest.NewRecorder()
	testServer(t, src).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	body := rec.Body.String()
	assert.Contains(t, body, "<ExternalId>apt-1</ExternalId>")
	assert.NotContains(t, body, "apt-2", "unpublished listings must be filtered out")
}

func TestFeedEndpointEmptyStore(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t, &fakeSource{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	want := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<Feed>\n" +
		"  <Feed_Version>2</Feed_Version>\n" +
		"</Feed>\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestFeedEndpointAttachesAgents(t *testing.T) {
	listing := published("apt-1")
	listing.AgentID = models.FlexString{Value: "7", Valid: true}

	src := &fakeSource{
		listings: []*models.ListingRecord{listing},
		agents: map[string]*models.AgentRecord{
			"7": {
				Name:  models.FlexString{Value: "Анна", Valid: true},
				Phone: models.NewFlex("89991234567"),
			},
		},
	}

	rec := httptest.NewRecorder()
	testServer(t, src).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<Contacts>")
	assert.Contains(t, body, "<Name>Анна</Name>")
	assert.Contains(t, body, "<Number>9991234567</Number>")
}

func TestFeedEndpointUpstreamFailure(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("connection refused")}

	rec := httptest.NewRecorder()
	testServer(t, src).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused", "internal details must not leak")
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t, &fakeSource{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCountEndpoint(t *testing.T) {
	src := &fakeSource{listings: []*models.ListingRecord{
		published("a"),
		published("b"),
		{ExternalID: models.FlexString{Value: "c", Valid: true}, Status: models.NewFlex("draft")},
	}}

	rec := httptest.NewRecorder()
	testServer(t, src).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/count", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":3,"published":2}`, rec.Body.String())
}
