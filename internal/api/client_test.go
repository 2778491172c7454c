package api

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihwang125/NewsToText/internal/models"
	"github.com/ihwang125/NewsToText/internal/session"
	"github.com/ihwang125/NewsToText/internal/testutil"
	"github.com/ihwang125/NewsToText/pkg/keystore"
	"github.com/ihwang125/NewsToText/pkg/utils"
)

func testRetryConfig() utils.RetryConfig {
	return utils.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// setupClient builds a client against a fake server with a real session
// store over a file keystore, resolved and unauthenticated.
func setupClient(t *testing.T) (*Client, *testutil.APIServer, *session.Store, keystore.Store) {
	t.Helper()

	server := testutil.NewAPIServer(t)
	keys := testutil.NewTestFileStore(t)
	sessions := session.New(keys)
	require.NoError(t, sessions.ResolveInitial(context.Background()))

	client := New(server.URL(), sessions, 2*time.Second, testRetryConfig())
	return client, server, sessions, keys
}

func authenticate(t *testing.T, sessions *session.Store) {
	t.Helper()
	require.NoError(t, sessions.Set(context.Background(), testutil.TestUser(), testutil.TestToken))
}

func TestBearerInjection(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticated requests carry the current token", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondJSON(http.MethodGet, "/alerts", http.StatusOK, []models.Alert{})

		_, err := client.ListAlerts(ctx)
		require.NoError(t, err)

		reqs := server.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "Bearer "+testutil.TestToken, reqs[0].Authorization)
		assert.NotEmpty(t, reqs[0].RequestID)
	})

	t.Run("unauthenticated requests carry no credential", func(t *testing.T) {
		client, server, _, _ := setupClient(t)
		server.RespondJSON(http.MethodPost, "/auth/login", http.StatusOK, models.AuthResponse{
			User:  testutil.TestUser(),
			Token: testutil.TestToken,
		})

		_, err := client.Login(ctx, models.UserLoginRequest{Email: "a@b.c", Password: "pw"})
		require.NoError(t, err)

		reqs := server.Requests()
		require.Len(t, reqs, 1)
		assert.Empty(t, reqs[0].Authorization)
	})
}

func TestAuthFailurePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("401 clears the session, erases persisted keys, and navigates once", func(t *testing.T) {
		client, server, sessions, keys := setupClient(t)
		authenticate(t, sessions)
		server.RespondError(http.MethodGet, "/alerts", http.StatusUnauthorized, "token expired")

		var navigations int
		client.OnAuthFailure(func() { navigations++ })

		_, err := client.ListAlerts(ctx)
		assert.True(t, IsAuth(err))

		assert.Equal(t, session.StatusUnauthenticated, sessions.Status())
		assert.Equal(t, 1, navigations)

		_, keyErr := keys.Get(ctx, keystore.KeyToken)
		assert.ErrorIs(t, keyErr, keystore.ErrKeyNotFound)
		_, keyErr = keys.Get(ctx, keystore.KeyUser)
		assert.ErrorIs(t, keyErr, keystore.ErrKeyNotFound)
	})

	t.Run("second 401 from another endpoint does not navigate again", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondError(http.MethodGet, "/alerts", http.StatusUnauthorized, "token expired")
		server.RespondError(http.MethodGet, "/alerts/history", http.StatusUnauthorized, "token expired")

		var navigations int
		client.OnAuthFailure(func() { navigations++ })

		_, err := client.ListAlerts(ctx)
		assert.True(t, IsAuth(err))
		_, err = client.AlertHistory(ctx)
		assert.True(t, IsAuth(err))

		assert.Equal(t, 1, navigations)
	})

	t.Run("N concurrent 401s collapse to one clear and one navigation", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondError(http.MethodGet, "/alerts", http.StatusUnauthorized, "token expired")

		var navigations atomic.Int32
		client.OnAuthFailure(func() { navigations.Add(1) })

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := client.ListAlerts(ctx)
				assert.True(t, IsAuth(err))
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), navigations.Load())
		assert.Equal(t, session.StatusUnauthenticated, sessions.Status())
	})

	t.Run("401 while already unauthenticated stays quiet", func(t *testing.T) {
		client, server, _, _ := setupClient(t)
		server.RespondError(http.MethodGet, "/alerts", http.StatusUnauthorized, "missing token")

		var navigations int
		client.OnAuthFailure(func() { navigations++ })

		_, err := client.ListAlerts(ctx)
		assert.True(t, IsAuth(err))
		assert.Equal(t, 0, navigations)
	})
}

func TestErrorClassification(t *testing.T) {
	ctx := context.Background()

	t.Run("404 preserves the server message", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondError(http.MethodDelete, "/alerts/7", http.StatusNotFound, "alert not found")

		err := client.DeleteAlert(ctx, 7)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, "alert not found", Message(err))
	})

	t.Run("5xx without a message falls back per operation", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondJSON(http.MethodPost, "/alerts", http.StatusInternalServerError, nil)

		_, err := client.CreateAlert(ctx, models.AlertCreateRequest{Topic: "T", Keywords: []string{"k"}, Frequency: models.FrequencyDaily})
		assert.True(t, IsServer(err))
		assert.Equal(t, "Failed to create alert", Message(err))
	})

	t.Run("5xx with a message preserves it", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondError(http.MethodPost, "/alerts", http.StatusBadRequest, "invalid frequency")

		_, err := client.CreateAlert(ctx, models.AlertCreateRequest{Topic: "T", Keywords: []string{"k"}, Frequency: "weekly"})
		assert.True(t, IsServer(err))
		assert.Equal(t, "invalid frequency", Message(err))
	})

	t.Run("malformed success body is a server failure", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.Handle(http.MethodGet, "/alerts", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{not json"))
		})

		_, err := client.ListAlerts(ctx)
		assert.True(t, IsServer(err))
	})

	t.Run("unreachable server is a network failure", func(t *testing.T) {
		keys := testutil.NewTestFileStore(t)
		sessions := session.New(keys)
		require.NoError(t, sessions.ResolveInitial(ctx))

		client := New("http://127.0.0.1:1", sessions, 200*time.Millisecond, testRetryConfig())

		_, err := client.ListAlerts(ctx)
		assert.True(t, IsNetwork(err))
		assert.Equal(t, "Failed to fetch alerts", Message(err))
		assert.Equal(t, session.StatusUnauthenticated, sessions.Status())
	})
}

func TestRetryBehavior(t *testing.T) {
	ctx := context.Background()

	// abortFirst kills the connection on the first attempt so the client
	// sees a transport error, then delegates to ok.
	abortFirst := func(t *testing.T, ok http.HandlerFunc) http.HandlerFunc {
		var calls atomic.Int32
		return func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				hj, isHijacker := w.(http.Hijacker)
				require.True(t, isHijacker)
				conn, _, err := hj.Hijack()
				require.NoError(t, err)
				_ = conn.Close()
				return
			}
			ok(w, r)
		}
	}

	t.Run("GET retries transport failures", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.Handle(http.MethodGet, "/alerts", abortFirst(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("[]"))
		}))

		alerts, err := client.ListAlerts(ctx)
		require.NoError(t, err)
		assert.Empty(t, alerts)
		assert.Equal(t, 2, server.RequestCount(http.MethodGet, "/alerts"))
	})

	t.Run("mutations are never retried", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.Handle(http.MethodPost, "/alerts", abortFirst(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		_, err := client.CreateAlert(ctx, models.AlertCreateRequest{Topic: "T", Keywords: []string{"k"}, Frequency: models.FrequencyDaily})
		assert.True(t, IsNetwork(err))
		assert.Equal(t, 1, server.RequestCount(http.MethodPost, "/alerts"))
	})

	t.Run("GET does not retry a received 5xx", func(t *testing.T) {
		client, server, sessions, _ := setupClient(t)
		authenticate(t, sessions)
		server.RespondError(http.MethodGet, "/alerts", http.StatusInternalServerError, "boom")

		_, err := client.ListAlerts(ctx)
		assert.True(t, IsServer(err))
		assert.Equal(t, 1, server.RequestCount(http.MethodGet, "/alerts"))
	})
}

// TestLoginThen401Scenario walks the full session lifecycle: login
// persists the session, a later 401 tears it down exactly once even with
// a second in-flight request failing the same way.
func TestLoginThen401Scenario(t *testing.T) {
	ctx := context.Background()
	client, server, sessions, keys := setupClient(t)

	server.RespondJSON(http.MethodPost, "/auth/login", http.StatusOK, models.AuthResponse{
		User:  testutil.TestUser(),
		Token: testutil.TestToken,
	})
	server.RespondError(http.MethodGet, "/alerts", http.StatusUnauthorized, "token expired")
	server.RespondError(http.MethodGet, "/alerts/history", http.StatusUnauthorized, "token expired")

	var navigations atomic.Int32
	client.OnAuthFailure(func() { navigations.Add(1) })

	// Login and persist
	resp, err := client.Login(ctx, models.UserLoginRequest{Email: "test@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, sessions.Set(ctx, resp.User, resp.Token))
	assert.Equal(t, session.StatusAuthenticated, sessions.Status())

	persisted, err := keys.Get(ctx, keystore.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, testutil.TestToken, persisted)

	// Two requests race into 401
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, listErr := client.ListAlerts(ctx)
		assert.True(t, IsAuth(listErr))
	}()
	go func() {
		defer wg.Done()
		_, histErr := client.AlertHistory(ctx)
		assert.True(t, IsAuth(histErr))
	}()
	wg.Wait()

	assert.Equal(t, session.StatusUnauthenticated, sessions.Status())
	assert.Equal(t, int32(1), navigations.Load())

	_, err = keys.Get(ctx, keystore.KeyToken)
	assert.ErrorIs(t, err, keystore.ErrKeyNotFound)
	_, err = keys.Get(ctx, keystore.KeyUser)
	assert.ErrorIs(t, err, keystore.ErrKeyNotFound)
}
