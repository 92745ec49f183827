package intelligence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.IntelligenceConfig{
		BaseURL:        baseURL,
		TimeoutSeconds: 2,
		DefaultTopK:    5,
	}, zap.NewNop())
}

func TestSuggestTeam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assign", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 42, req["ticket_id"])
		assert.Equal(t, 5, req["top_k"])

		json.NewEncoder(w).Encode(TeamSuggestion{
			TicketID:         42,
			AssignedTeamID:   "IT_SUPPORT",
			AssignedTeamName: "IT Support",
			Reasoning:        "keyword match",
		})
	}))
	defer srv.Close()

	suggestion, err := newTestClient(srv.URL).SuggestTeam(context.Background(), 42, 5)
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "IT_SUPPORT", suggestion.AssignedTeamID)
}

func TestRemoteFailureDegradesToNil(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		suggestion, err := newTestClient(srv.URL).SuggestTeam(context.Background(), 1, 5)
		assert.NoError(t, err)
		assert.Nil(t, suggestion)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		solution, err := newTestClient(srv.URL).SuggestSolution(context.Background(), 1, 5)
		assert.NoError(t, err)
		assert.Nil(t, solution)
	})

	t.Run("unreachable host", func(t *testing.T) {
		results, err := newTestClient("http://127.0.0.1:1").FindSimilar(context.Background(), 1, 5)
		assert.NoError(t, err)
		assert.Nil(t, results)
	})
}

func TestFindSimilar(t *testing.T) {
	title := "printer jam"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/similar", r.URL.Path)
		json.NewEncoder(w).Encode(similarResponse{Results: []SimilarTicket{
			{TicketID: 9, Score: 0.91, Title: &title},
		}})
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL).FindSimilar(context.Background(), 42, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].TicketID)
	assert.InDelta(t, 0.91, results[0].Score, 0.001)
}

func TestNotifyEndpoints(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req["recipient"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx := context.Background()
	assert.True(t, client.NotifyTicketAssignedUser(ctx, 1, "alice@example.com", "Alice"))
	assert.True(t, client.NotifyTicketResolved(ctx, 1, "alice@example.com", "Alice"))
	assert.True(t, client.NotifyTicketCanceled(ctx, 1, "alice@example.com", "Alice"))

	assert.Equal(t, []string{
		"/notify/ticket-assigned/user",
		"/notify/ticket-resolved",
		"/notify/ticket-canceled",
	}, paths)
}

func TestIndexTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickets", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ok := newTestClient(srv.URL).IndexTicket(context.Background(), IndexTicketRequest{TicketID: 1})
	assert.True(t, ok)
}
