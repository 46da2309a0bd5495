package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"postboard/app/assemble"
	"postboard/app/client"
	"postboard/app/dom"
	"postboard/app/views"

	"go.uber.org/zap"
)

// Options configures a Session.
type Options struct {
	Title       string
	SocketPath  string
	Parallelism int
}

// State is the part of the page a connected browser mirrors.
type State struct {
	Main           string `json:"main"`
	SelectDisabled bool   `json:"select_disabled"`
}

// Session owns one live page. Events mutate the page one at a time. A change
// event arriving while an earlier one is still being handled is dropped, the
// same way the disabled selector drops it; every other event waits its turn.
type Session struct {
	mutex      sync.Mutex
	refreshing atomic.Bool
	state      atomic.Pointer[State]

	obsMutex  sync.Mutex
	observers map[int]func(State)
	nextObs   int

	doc  *dom.Document
	orch *Orchestrator
	log  *zap.Logger
}

// NewSession parses the layout and wires the assemblers over source.
func NewSession(source client.Source, opts Options, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "Posts"
	}
	markup, err := views.Layout(views.LayoutData{Title: opts.Title, SocketPath: opts.SocketPath})
	if err != nil {
		return nil, fmt.Errorf("failed to render layout: %w", err)
	}
	doc, err := dom.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, err
	}

	sections := assemble.NewSections(source, log)
	posts := assemble.NewPosts(source, sections, opts.Parallelism, log)
	s := &Session{
		observers: make(map[int]func(State)),
		doc:       doc,
		orch:      NewOrchestrator(doc, source, posts, sections, log),
		log:       log,
	}
	s.state.Store(&State{})
	return s, nil
}

// Initialize populates the selector. It returns the number of users listed.
func (s *Session) Initialize(ctx context.Context) int {
	s.mutex.Lock()
	users, _ := s.orch.Initialize(ctx).Get()
	state := s.capture()
	s.mutex.Unlock()

	s.publish(state)
	return len(users)
}

// Select dispatches a change event on the user selector and reports whether
// a handler ran. Observers see the selector disabled until the refresh is done.
func (s *Session) Select(ctx context.Context, value string) bool {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.log.Info("selection change dropped, refresh in flight", zap.String("value", value))
		return false
	}
	pending := *s.state.Load()
	pending.SelectDisabled = true
	s.publish(pending)

	s.mutex.Lock()
	handled := s.doc.Dispatch(ctx, s.doc.SelectMenu(), dom.Event{Type: dom.EventChange, Value: value})
	s.refreshing.Store(false)
	state := s.capture()
	s.mutex.Unlock()

	s.publish(state)
	return handled
}

// Click dispatches a click on the toggle control of postID and reports
// whether a handler ran.
func (s *Session) Click(ctx context.Context, postID int) bool {
	s.mutex.Lock()
	btn := dom.First(s.doc.Main(), dom.And(dom.Tag("button"), dom.DataAttr("post-id", strconv.Itoa(postID))))
	handled := s.doc.Dispatch(ctx, btn, dom.Event{Type: dom.EventClick})
	state := s.capture()
	s.mutex.Unlock()

	s.publish(state)
	return handled
}

// Snapshot returns the last published state without waiting for an event in
// progress.
func (s *Session) Snapshot() (State, error) {
	return *s.state.Load(), nil
}

// Observe registers fn to receive every published state and returns a
// function that unregisters it. fn must not call back into the session.
func (s *Session) Observe(fn func(State)) (cancel func()) {
	s.obsMutex.Lock()
	defer s.obsMutex.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.obsMutex.Lock()
		defer s.obsMutex.Unlock()
		delete(s.observers, id)
	}
}

// Render writes the whole page.
func (s *Session) Render(w io.Writer) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.doc.Render(w)
}

// capture renders the mirrored state. The caller holds s.mutex.
func (s *Session) capture() State {
	var sb strings.Builder
	if err := s.doc.RenderMain(&sb); err != nil {
		s.log.Error("failed to render main", zap.Error(err))
		return *s.state.Load()
	}
	_, disabled := dom.Attr(s.doc.SelectMenu(), "disabled")
	return State{Main: sb.String(), SelectDisabled: disabled || s.refreshing.Load()}
}

func (s *Session) publish(state State) {
	s.state.Store(&state)

	s.obsMutex.Lock()
	defer s.obsMutex.Unlock()
	for _, fn := range s.observers {
		fn(state)
	}
}
