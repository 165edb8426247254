package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(serverURL, "test-api-key", 5*time.Second)
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_SendsAuthHeader(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Auth-Token")
		w.Write([]byte(`{"count":0,"competitions":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchCompetitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-api-key", gotToken)
}

func TestClient_FetchCompetitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions", r.URL.Path)
		w.Write([]byte(`{
			"count": 2,
			"competitions": [
				{"id": 2021, "name": "Premier League", "code": "PL", "type": "LEAGUE",
				 "area": {"id": 2072, "name": "England"},
				 "currentSeason": {"id": 1564, "startDate": "2025-08-15", "endDate": "2026-05-24"}},
				{"id": 2014, "name": "Primera Division", "code": "PD", "type": "LEAGUE",
				 "area": {"id": 2224, "name": "Spain"}}
			]
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	comps, err := c.FetchCompetitions(context.Background())
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, 2021, comps[0].ID)
	assert.Equal(t, "Premier League", comps[0].Name)
	require.NotNil(t, comps[0].CurrentSeason)
	assert.Equal(t, 1564, comps[0].CurrentSeason.ID)
	assert.Nil(t, comps[1].CurrentSeason)
}

func TestClient_FetchStandingsTotalTableOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions/2021/standings", r.URL.Path)
		w.Write([]byte(`{
			"season": {"id": 1564, "startDate": "2025-08-15", "endDate": "2026-05-24"},
			"standings": [
				{"stage": "REGULAR_SEASON", "type": "HOME", "table": [
					{"position": 1, "team": {"id": 64, "name": "Liverpool"}, "playedGames": 10, "points": 28}
				]},
				{"stage": "REGULAR_SEASON", "type": "TOTAL", "table": [
					{"position": 1, "team": {"id": 65, "name": "Manchester City"}, "playedGames": 20,
					 "won": 15, "draw": 3, "lost": 2, "points": 48,
					 "goalsFor": 50, "goalsAgainst": 20, "goalDifference": 30}
				]}
			]
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	snapshot, err := c.FetchStandings(context.Background(), 2021)
	require.NoError(t, err)
	assert.Equal(t, 2021, snapshot.CompetitionID)
	require.NotNil(t, snapshot.Season)
	assert.Equal(t, 1564, snapshot.Season.ID)
	require.Len(t, snapshot.Table, 1, "Only the TOTAL table should be kept")
	assert.Equal(t, 65, snapshot.Table[0].Team.ID)
	assert.Equal(t, 48, snapshot.Table[0].Points)
}

func TestClient_FetchMatchesWithOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FINISHED", r.URL.Query().Get("status"))
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("dateFrom"))
		w.Write([]byte(`{"matches": [
			{"id": 500001, "utcDate": "2026-01-02T15:00:00Z", "status": "FINISHED",
			 "matchday": 20, "stage": "REGULAR_SEASON",
			 "homeTeam": {"id": 64, "name": "Liverpool"},
			 "awayTeam": {"id": 65, "name": "Manchester City"},
			 "score": {"winner": "HOME_TEAM", "fullTime": {"home": 2, "away": 1}}}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	matches, err := c.FetchMatches(context.Background(), 2021, &MatchOptions{
		Status:   "FINISHED",
		DateFrom: "2026-01-01",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 500001, matches[0].ID)
	assert.Equal(t, "FINISHED", matches[0].Status)
	require.NotNil(t, matches[0].Score.FullTime.Home)
	assert.Equal(t, 2, *matches[0].Score.FullTime.Home)
}

func TestClient_RateLimitedThenSucceeds(t *testing.T) {
	var calls int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"count":0,"teams":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchTeams(context.Background(), 2021)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "A 429 should be retried")
}

func TestClient_TransientExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchTeams(context.Background(), 2021)
	require.Error(t, err)
	assert.True(t, IsTransient(err), "Exhausted retries should surface as transient")
}

func TestClient_AuthFailureIsPermanent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchTeams(context.Background(), 2021)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls, "Auth failures must not be retried")
}

func TestClient_NotFoundIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchStandings(context.Background(), 99999)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestClient_MalformedPayloadIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchCompetitions(context.Background())
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

// memCache is a map-backed Cache for tests
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

func TestClient_CompetitionsServedFromCache(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"count":1,"competitions":[{"id":2021,"name":"Premier League"}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-api-key", 5*time.Second,
		WithCache(&memCache{}, time.Hour))
	c.retryDelay = time.Millisecond

	_, err := c.FetchCompetitions(context.Background())
	require.NoError(t, err)
	comps, err := c.FetchCompetitions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "The second fetch should hit the cache")
	require.Len(t, comps, 1)
	assert.Equal(t, 2021, comps[0].ID)
}
