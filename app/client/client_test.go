package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const usersJSON = `[
	{"id": 1, "name": "Leanne Graham", "email": "Sincere@april.biz", "company": {"name": "Romaguera-Crona"}},
	{"id": 2, "name": "Ervin Howell", "email": "Shanna@melissa.tv", "company": {"name": "Deckow-Crist"}}
]`

type storeStub struct {
	hits int32
	srv  *httptest.Server
}

func newStoreStub(t *testing.T, routes map[string]string) *storeStub {
	t.Helper()
	s := &storeStub{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		body, ok := routes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *storeStub) requests() int {
	return int(atomic.LoadInt32(&s.hits))
}

func TestFetchUsers(t *testing.T) {
	stub := newStoreStub(t, map[string]string{"/users": usersJSON})
	c := New(stub.srv.URL)

	users, ok := c.FetchUsers(context.Background()).Get()
	require.True(t, ok)
	require.Len(t, users, 2)
	assert.Equal(t, "Leanne Graham", users[0].Name)
	assert.Equal(t, "Deckow-Crist", users[1].Company.Name)
	assert.Equal(t, 1, stub.requests())
}

func TestFetchPostsByUser(t *testing.T) {
	stub := newStoreStub(t, map[string]string{
		"/posts?userId=1": `[{"userId":1,"id":1,"title":"sunt aut","body":"quia"},{"userId":1,"id":2,"title":"qui est","body":"est rerum"}]`,
		"/posts?userId=9": `[]`,
	})
	c := New(stub.srv.URL + "/")

	t.Run("filtered by owner", func(t *testing.T) {
		posts, ok := c.FetchPostsByUser(context.Background(), 1).Get()
		require.True(t, ok)
		assert.Equal(t, []int{1, 2}, []int{posts[0].ID, posts[1].ID})
	})

	t.Run("empty list is present", func(t *testing.T) {
		posts, ok := c.FetchPostsByUser(context.Background(), 9).Get()
		assert.True(t, ok)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("invalid id issues no request", func(t *testing.T) {
		before := stub.requests()
		assert.True(t, c.FetchPostsByUser(context.Background(), 0).IsNone())
		assert.True(t, c.FetchPostsByUser(context.Background(), -3).IsNone())
		assert.Equal(t, before, stub.requests())
	})
}

func TestFetchUser(t *testing.T) {
	stub := newStoreStub(t, map[string]string{
		"/users/1": `{"id": 1, "name": "Leanne Graham", "company": {"name": "Romaguera-Crona"}}`,
		"/users/5": `{"id": 0, "name": ""}`,
	})
	c := New(stub.srv.URL)

	user, ok := c.FetchUser(context.Background(), 1).Get()
	require.True(t, ok)
	assert.Equal(t, "Author: Leanne Graham with Romaguera-Crona", user.Byline())

	assert.True(t, c.FetchUser(context.Background(), 5).IsNone(), "invalid record")
	assert.True(t, c.FetchUser(context.Background(), 404).IsNone(), "missing record")
	assert.True(t, c.FetchUser(context.Background(), 0).IsNone())
	assert.Equal(t, 3, stub.requests())
}

func TestFetchPostComments(t *testing.T) {
	stub := newStoreStub(t, map[string]string{
		"/comments?postId=1": `[{"postId":1,"id":1,"name":"id labore","email":"Eliseo@gardner.biz","body":"laudantium"}]`,
		"/comments?postId=2": `{"not": "a list"}`,
	})
	c := New(stub.srv.URL)

	comments, ok := c.FetchPostComments(context.Background(), 1).Get()
	require.True(t, ok)
	assert.Equal(t, "Eliseo@gardner.biz", comments[0].Email)

	assert.True(t, c.FetchPostComments(context.Background(), 2).IsNone(), "malformed body")
	assert.True(t, c.FetchPostComments(context.Background(), 0).IsNone())
	assert.Equal(t, 2, stub.requests())
}

func TestFailuresAreLoggedAndCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := New(srv.URL, WithLogger(zap.New(core)), WithMetrics(metrics))

	assert.True(t, c.FetchUsers(context.Background()).IsNone())
	assert.True(t, c.FetchPostComments(context.Background(), 3).IsNone())

	entries := logs.FilterMessage("remote fetch failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, KindUsers, entries[0].ContextMap()["kind"])
	assert.EqualValues(t, 500, entries[0].ContextMap()["status"])
	assert.EqualValues(t, 3, entries[1].ContextMap()["id"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(KindUsers, "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(KindComments, "status")))
}

func TestTransportErrorIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	assert.True(t, c.FetchUsers(context.Background()).IsNone())
	assert.True(t, c.FetchUser(context.Background(), 1).IsNone())
}
