package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", "test-cx", WithEndpoint(server.URL))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		client, err := NewClient("key", "cx")
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient("", "cx")
		assert.Equal(t, ErrAPIKeyRequired, err)
	})

	t.Run("missing engine id", func(t *testing.T) {
		_, err := NewClient("key", "  ")
		assert.Equal(t, ErrEngineIDRequired, err)
	})
}

func TestSearch_FormatsResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		assert.Equal(t, "diabetes symptoms", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("num"))

		w.Write([]byte(`{"items": [
			{"title": "Diabetes - WHO", "snippet": "Early symptoms include thirst.", "link": "https://who.int/diabetes"},
			{"title": "Diabetes basics", "snippet": "A chronic condition.", "link": "https://cdc.gov/diabetes"}
		]}`))
	})

	result := client.Search(context.Background(), "diabetes symptoms", 2)

	expected := "Diabetes - WHO\nEarly symptoms include thirst.\nhttps://who.int/diabetes\n\n" +
		"Diabetes basics\nA chronic condition.\nhttps://cdc.gov/diabetes"
	assert.Equal(t, expected, result)
}

func TestSearch_TruncatesToRequestedCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"title": "A", "snippet": "a", "link": "la"},
			{"title": "B", "snippet": "b", "link": "lb"},
			{"title": "C", "snippet": "c", "link": "lc"}
		]}`))
	})

	result := client.Search(context.Background(), "q", 1)
	assert.Equal(t, "A\na\nla", result)
}

func TestSearch_NoItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	assert.Empty(t, client.Search(context.Background(), "q", 3))
}

func TestSearch_DegradesToEmpty(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		assert.Empty(t, client.Search(context.Background(), "q", 3))
	})

	t.Run("malformed json", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [`))
		})
		assert.Empty(t, client.Search(context.Background(), "q", 3))
	})

	t.Run("unreachable server", func(t *testing.T) {
		client, err := NewClient("key", "cx", WithEndpoint("http://127.0.0.1:1"))
		require.NoError(t, err)
		assert.Empty(t, client.Search(context.Background(), "q", 3))
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": []}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Empty(t, client.Search(ctx, "q", 3))
	})
}

func TestSearch_DefaultNumResults(t *testing.T) {
	t.Run("built-in default", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "3", r.URL.Query().Get("num"))
			w.Write([]byte(`{"items": []}`))
		})
		client.Search(context.Background(), "q", 0)
	})

	t.Run("configured default", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "5", r.URL.Query().Get("num"))
			w.Write([]byte(`{"items": []}`))
		}))
		t.Cleanup(server.Close)

		client, err := NewClient("key", "cx", WithEndpoint(server.URL), WithNumResults(5))
		require.NoError(t, err)
		client.Search(context.Background(), "q", 0)
	})
}
