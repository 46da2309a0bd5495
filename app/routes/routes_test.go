package routes

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postboard/app/client"
	"postboard/app/controllers"
	"postboard/app/page"
	"postboard/app/repositories"
	"postboard/app/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) *httptest.Server {
	store, err := repositories.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service := services.NewStoreService(store.Users, store.Posts, store.Comments)
	fixture, err := services.DefaultFixture()
	require.NoError(t, err)
	_, err = service.Seed(fixture)
	require.NoError(t, err)

	server := httptest.NewServer(SetupStoreRoutes(controllers.NewStoreController(service, nil), zap.NewNop()))
	t.Cleanup(server.Close)
	return server
}

func TestStoreRoutes(t *testing.T) {
	server := setupStore(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"users", "/users", http.StatusOK},
		{"user", "/users/1", http.StatusOK},
		{"posts by user", "/posts?userId=1", http.StatusOK},
		{"post", "/posts/2", http.StatusOK},
		{"comments", "/comments?postId=1", http.StatusOK},
		{"missing user", "/users/77", http.StatusNotFound},
		{"unknown route", "/albums", http.StatusNotFound},
		{"non-numeric id", "/users/abc", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

// The client pointed at the badger-backed store sees the same shapes it
// would see from the remote one.
func TestClientAgainstStore(t *testing.T) {
	server := setupStore(t)
	c := client.New(server.URL)
	ctx := context.Background()

	users, ok := c.FetchUsers(ctx).Get()
	require.True(t, ok)
	require.Len(t, users, 3)

	posts, ok := c.FetchPostsByUser(ctx, 1).Get()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, []int{posts[0].ID, posts[1].ID})

	user, ok := c.FetchUser(ctx, 2).Get()
	require.True(t, ok)
	assert.Equal(t, "Deckow-Crist", user.Company.Name)

	assert.True(t, c.FetchUser(ctx, 77).IsNone())

	comments, ok := c.FetchPostComments(ctx, 11).Get()
	require.True(t, ok)
	assert.Len(t, comments, 3)
}

func TestPageRoutes(t *testing.T) {
	store := setupStore(t)
	reg := prometheus.NewRegistry()
	source := client.New(store.URL, client.WithMetrics(client.NewMetrics(reg)))

	session, err := page.NewSession(source, page.Options{Title: "Employee Posts"}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, session.Initialize(context.Background()))

	server := httptest.NewServer(SetupPageRoutes(controllers.NewPageController(session, nil), reg, nil))
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `<option value="3">Clementine Bauch</option>`)

	req, _ := http.NewRequest("POST", server.URL+"/select", strings.NewReader("user_id=2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var result controllers.EventResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.True(t, result.Handled)
	assert.Contains(t, result.Main, "Author: Ervin Howell with Deckow-Crist")
	assert.Contains(t, result.Main, "Post ID: 11")

	resp, err = http.Get(server.URL + "/api/page")
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/api/nothing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	metrics, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(metrics), `postboard_remote_requests_total{kind="users",outcome="ok"} 1`)
}

func TestStartServerShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, addr, http.NotFoundHandler(), nil)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
