package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"postboard/app/middleware"
	"postboard/app/page"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	socketWriteTimeout = 10 * time.Second
	socketReadLimit    = 4096
)

// Session is the live page the controller drives.
type Session interface {
	Select(ctx context.Context, value string) bool
	Click(ctx context.Context, postID int) bool
	Snapshot() (page.State, error)
	Render(w io.Writer) error
	Observe(fn func(page.State)) (cancel func())
}

// EventResult answers a dispatched event with the resulting page state.
type EventResult struct {
	page.State
	Handled bool `json:"handled"`
}

// SocketMessage is an event sent by the browser over the websocket.
type SocketMessage struct {
	Event  string `json:"event"`
	Value  string `json:"value,omitempty"`
	PostID int    `json:"post_id,omitempty"`
}

// PageController handles HTTP requests for the live page
type PageController struct {
	session  Session
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewPageController creates a new PageController
func NewPageController(session Session, log *zap.Logger) *PageController {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageController{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Index renders the whole page
func (pc *PageController) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pc.session.Render(&buf); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// Select dispatches a change of the user selector
func (pc *PageController) Select(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pc.respondError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	handled := pc.session.Select(r.Context(), r.FormValue("user_id"))
	pc.respond(w, r, handled)
}

// Toggle dispatches a click on the comment toggle of a post
func (pc *PageController) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pc.respondError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}
	handled := pc.session.Click(r.Context(), id)
	pc.respond(w, r, handled)
}

// State returns the mirrored page state
func (pc *PageController) State(w http.ResponseWriter, r *http.Request) {
	state, err := pc.session.Snapshot()
	if err != nil {
		sendError(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSON(w, state)
}

// Socket upgrades to a websocket, pushes every state the page publishes and
// answers every event with an EventResult
func (pc *PageController) Socket(w http.ResponseWriter, r *http.Request) {
	conn, err := pc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		pc.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(socketReadLimit)

	log := pc.log.With(zap.String("request_id", middleware.GetRequestID(r.Context())))

	var writeMutex sync.Mutex
	send := func(v interface{}) error {
		writeMutex.Lock()
		defer writeMutex.Unlock()
		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		return conn.WriteJSON(v)
	}
	cancel := pc.session.Observe(func(state page.State) {
		if err := send(state); err != nil {
			log.Debug("websocket push failed", zap.Error(err))
		}
	})
	defer cancel()

	ctx := r.Context()
	for {
		var msg SocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var reply interface{}
		switch msg.Event {
		case "change":
			reply = pc.result(pc.session.Select(ctx, msg.Value))
		case "click":
			reply = pc.result(pc.session.Click(ctx, msg.PostID))
		default:
			reply = map[string]string{"error": "unknown event " + strconv.Quote(msg.Event)}
		}

		if err := send(reply); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (pc *PageController) result(handled bool) interface{} {
	state, err := pc.session.Snapshot()
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return EventResult{State: state, Handled: handled}
}

func (pc *PageController) respond(w http.ResponseWriter, r *http.Request, handled bool) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	state, err := pc.session.Snapshot()
	if err != nil {
		sendError(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSON(w, EventResult{State: state, Handled: handled})
}

func (pc *PageController) respondError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		sendError(w, message, status)
		return
	}
	http.Error(w, message, status)
}
