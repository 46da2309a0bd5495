package dom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// SelectMenuID is the id of the user selector in the layout.
const SelectMenuID = "selectMenu"

// Event types dispatched by the page.
const (
	EventChange = "change"
	EventClick  = "click"
)

// Event is delivered to listeners. Value carries the selected value of a
// change event.
type Event struct {
	Type   string
	Target *html.Node
	Value  string
}

// Listener handles an event dispatched on the node it was bound to.
type Listener func(ctx context.Context, ev Event)

// ListenerID identifies a bound listener for removal.
type ListenerID uint64

// Page is the live page tree as seen by the orchestrator and the toggle path.
type Page interface {
	Body() *html.Node
	Main() *html.Node
	SelectMenu() *html.Node
	Query(m Matcher) *html.Node
	QueryAll(m Matcher) []*html.Node
	AddListener(n *html.Node, event string, fn Listener) ListenerID
	RemoveListener(n *html.Node, event string, id ListenerID) bool
	RemoveAllListeners(n *html.Node, event string) int
}

type binding struct {
	id ListenerID
	fn Listener
}

// Document is an in-memory page. It is not safe for concurrent use; callers
// serialise access the way a browser event loop would.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]binding
	nextID    ListenerID
}

var _ Page = (*Document)(nil)

// ErrMissingMain is returned when a layout has no <main> region.
var ErrMissingMain = errors.New("layout has no <main> element")

// Parse builds a Document from layout markup.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	d := &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]binding),
	}
	if d.Main() == nil {
		return nil, ErrMissingMain
	}
	return d, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the <body> element.
func (d *Document) Body() *html.Node { return d.Query(Tag("body")) }

// Main returns the <main> content region.
func (d *Document) Main() *html.Node { return d.Query(Tag("main")) }

// SelectMenu returns the user selector, or nil when the layout has none.
func (d *Document) SelectMenu() *html.Node { return d.Query(ID(SelectMenuID)) }

// Query returns the first element in the document matching m.
func (d *Document) Query(m Matcher) *html.Node { return First(d.root, m) }

// QueryAll returns every element in the document matching m.
func (d *Document) QueryAll(m Matcher) []*html.Node { return Find(d.root, m) }

// AddListener binds fn to event on n.
func (d *Document) AddListener(n *html.Node, event string, fn Listener) ListenerID {
	d.nextID++
	byEvent, ok := d.listeners[n]
	if !ok {
		byEvent = make(map[string][]binding)
		d.listeners[n] = byEvent
	}
	byEvent[event] = append(byEvent[event], binding{id: d.nextID, fn: fn})
	return d.nextID
}

// RemoveListener unbinds a single listener.
func (d *Document) RemoveListener(n *html.Node, event string, id ListenerID) bool {
	bound := d.listeners[n][event]
	for i, b := range bound {
		if b.id == id {
			d.listeners[n][event] = append(bound[:i:i], bound[i+1:]...)
			d.prune(n, event)
			return true
		}
	}
	return false
}

// RemoveAllListeners unbinds every listener for event on n.
func (d *Document) RemoveAllListeners(n *html.Node, event string) int {
	removed := len(d.listeners[n][event])
	if removed > 0 {
		delete(d.listeners[n], event)
		d.prune(n, event)
	}
	return removed
}

// ListenerCount reports how many listeners are bound for event on n.
func (d *Document) ListenerCount(n *html.Node, event string) int {
	return len(d.listeners[n][event])
}

func (d *Document) prune(n *html.Node, event string) {
	if len(d.listeners[n][event]) == 0 {
		delete(d.listeners[n], event)
	}
	if len(d.listeners[n]) == 0 {
		delete(d.listeners, n)
	}
}

// Dispatch delivers ev to the listeners bound on target and reports whether
// any ran. Disabled elements swallow events.
func (d *Document) Dispatch(ctx context.Context, target *html.Node, ev Event) bool {
	if target == nil {
		return false
	}
	if _, disabled := Attr(target, "disabled"); disabled {
		return false
	}
	bound := append([]binding(nil), d.listeners[target][ev.Type]...)
	ev.Target = target
	for _, b := range bound {
		b.fn(ctx, ev)
	}
	return len(bound) > 0
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// RenderMain writes the contents of <main>.
func (d *Document) RenderMain(w io.Writer) error {
	main := d.Main()
	if main == nil {
		return ErrMissingMain
	}
	return RenderInner(w, main)
}

// RenderInner writes the children of n without n itself.
func RenderInner(w io.Writer, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// OuterHTML renders n to a string, for logs and tests.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
