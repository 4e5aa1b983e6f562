package coosto

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != "club" || r.URL.Query().Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data": {"sessionid": "sess-42"}}`))
	})
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func requireSession(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sessionid") != "sess-42" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func TestNewClient_LogsIn(t *testing.T) {
	server := newTestServer(t, nil)

	client, err := NewClient(context.Background(), server.URL, "club", "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess-42", client.sessionID)
}

func TestNewClient_BadCredentials(t *testing.T) {
	server := newTestServer(t, nil)

	_, err := NewClient(context.Background(), server.URL, "club", "wrong")
	assert.ErrorContains(t, err, "check credentials")
}

func TestNewClient_EmptySessionID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := NewClient(context.Background(), server.URL, "club", "secret")
	assert.ErrorContains(t, err, "no session id")
}

func TestSavedQueries(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/savedqueries/get_all/": requireSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": [{"name": "club mentions", "id": 7}, {"name": "rivals", "id": 8}]}`))
		}),
	})

	client, err := NewClient(context.Background(), server.URL, "club", "secret")
	require.NoError(t, err)

	queries, err := client.SavedQueries(context.Background())
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, SavedQuery{Name: "club mentions", ID: 7}, queries[0])
}

func TestTrendingTopics_UnwrapsNestedData(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/query/trending": requireSession(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "7", r.URL.Query().Get("qid"))
			w.Write([]byte(`{"data": [[{"topic": "derby", "score": 0.9}, {"topic": "transfer", "score": 0.4}]]}`))
		}),
	})

	client, err := NewClient(context.Background(), server.URL, "club", "secret")
	require.NoError(t, err)

	topics, err := client.TrendingTopics(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "derby", topics[0].Topic)
	assert.Equal(t, 0.9, topics[0].Score)
}

func TestSentimentDays(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/query/days": requireSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": [[
				{"time": 1756598400, "freq": 12, "sent": 0.5, "sentp": 0.6, "sentn": 0.1, "sent0": 0.3}
			]]}`))
		}),
	})

	client, err := NewClient(context.Background(), server.URL, "club", "secret")
	require.NoError(t, err)

	days, err := client.SentimentDays(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, int64(1756598400), days[0].Time)
	assert.Equal(t, 12, days[0].Frequency)
	assert.Equal(t, 0.5, days[0].Overall)
}

func TestAuthors_EmptyData(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/query/authors": requireSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": []}`))
		}),
	})

	client, err := NewClient(context.Background(), server.URL, "club", "secret")
	require.NoError(t, err)

	authors, err := client.Authors(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, authors)
}
