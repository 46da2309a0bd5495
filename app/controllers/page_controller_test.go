package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	clientmock "postboard/app/client/mock"
	"postboard/app/page"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageRouter(t *testing.T) *mux.Router {
	session, err := page.NewSession(clientmock.Fixture(), page.Options{Title: "Employee Posts"}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, session.Initialize(context.Background()))

	pc := NewPageController(session, nil)
	router := mux.NewRouter()
	router.HandleFunc("/", pc.Index).Methods("GET")
	router.HandleFunc("/select", pc.Select).Methods("POST")
	router.HandleFunc("/posts/{id:[0-9]+}/toggle", pc.Toggle).Methods("POST")
	router.HandleFunc("/api/page", pc.State).Methods("GET")
	router.HandleFunc("/ws", pc.Socket).Methods("GET")
	return router
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPageControllerIndex(t *testing.T) {
	router := newPageRouter(t)

	w := get(t, router, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<title>Employee Posts</title>")
	assert.Contains(t, body, `<option value="1">Leanne Graham</option>`)
	assert.Contains(t, body, "<main></main>")
}

func TestPageControllerSelectAndToggle(t *testing.T) {
	router := newPageRouter(t)

	w := postForm(t, router, "/select", url.Values{"user_id": {"1"}}, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var result EventResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.Handled)
	assert.False(t, result.SelectDisabled)
	assert.Contains(t, result.Main, "Author: Leanne Graham with Romaguera-Crona")

	w = postForm(t, router, "/posts/1/toggle", nil, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.Handled)
	assert.Contains(t, result.Main, `<button data-post-id="1">Hide Comments</button>`)

	w = get(t, router, "/api/page")
	require.Equal(t, http.StatusOK, w.Code)
	var state page.State
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, result.Main, state.Main)
}

func TestPageControllerFormRedirects(t *testing.T) {
	router := newPageRouter(t)

	w := postForm(t, router, "/select", url.Values{"user_id": {"2"}}, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = get(t, router, "/")
	assert.Contains(t, w.Body.String(), "Select an Employee to display their posts.")
}

func TestPageControllerUnknownToggle(t *testing.T) {
	router := newPageRouter(t)

	w := postForm(t, router, "/posts/7/toggle", nil, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var result EventResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.False(t, result.Handled)
	assert.Empty(t, result.Main)
}

func TestPageControllerSocket(t *testing.T) {
	server := httptest.NewServer(newPageRouter(t))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(SocketMessage{Event: "change", Value: "1"}))

	// The selector is reported disabled before the posts arrive.
	var pending page.State
	require.NoError(t, conn.ReadJSON(&pending))
	assert.True(t, pending.SelectDisabled)
	assert.Empty(t, pending.Main)

	var pushed page.State
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.False(t, pushed.SelectDisabled)
	assert.Equal(t, 2, strings.Count(pushed.Main, "<button data-post-id="))

	var result EventResult
	require.NoError(t, conn.ReadJSON(&result))
	assert.True(t, result.Handled)
	assert.Equal(t, pushed.Main, result.Main)

	require.NoError(t, conn.WriteJSON(SocketMessage{Event: "click", PostID: 2}))
	require.NoError(t, conn.ReadJSON(&pushed))
	require.NoError(t, conn.ReadJSON(&result))
	assert.True(t, result.Handled)
	assert.Contains(t, result.Main, `<section data-post-id="2" class="comments">`)

	require.NoError(t, conn.WriteJSON(SocketMessage{Event: "scroll"}))
	var failure map[string]string
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Equal(t, `unknown event "scroll"`, failure["error"])
}

func TestPageControllerSocketMirrorsOtherClients(t *testing.T) {
	router := newPageRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	// A round trip guarantees the handler has subscribed.
	require.NoError(t, conn.WriteJSON(SocketMessage{Event: "noop"}))
	var failure map[string]string
	require.NoError(t, conn.ReadJSON(&failure))

	w := postForm(t, router, "/select", url.Values{"user_id": {"1"}}, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var state page.State
	for !strings.Contains(state.Main, "Author: Leanne Graham") {
		require.NoError(t, conn.ReadJSON(&state))
	}
	assert.False(t, state.SelectDisabled)
}
