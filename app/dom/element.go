// Package dom is the page boundary: detached element construction, attribute
// and class helpers, predicate queries and event binding over x/net/html nodes.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is a page node.
type Node = html.Node

// Element creates a detached element node.
func Element(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewFragment creates an empty fragment. Appending a fragment moves its
// children into the parent and leaves the fragment empty.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode, Data: fragmentMarker}
}

const fragmentMarker = "#document-fragment"

// IsFragment reports whether n was created by NewFragment.
func IsFragment(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode && n.Data == fragmentMarker
}

// Append attaches child as the last child of parent, detaching it from any
// previous parent first.
func Append(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	if IsFragment(child) {
		for c := child.FirstChild; c != nil; c = child.FirstChild {
			child.RemoveChild(c)
			parent.AppendChild(c)
		}
		return
	}
	Detach(child)
	parent.AppendChild(child)
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren detaches every child of n, last first, and returns how many
// were removed.
func RemoveChildren(n *html.Node) int {
	if n == nil {
		return 0
	}
	removed := 0
	for c := n.LastChild; c != nil; c = n.LastChild {
		n.RemoveChild(c)
		removed++
	}
	return removed
}

// Children returns the element children of n in order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Data returns the data-* attribute named key ("post-id" reads data-post-id).
func Data(n *html.Node, key string) string {
	v, _ := Attr(n, "data-"+key)
	return v
}

// SetData sets the data-* attribute named key.
func SetData(n *html.Node, key, val string) {
	SetAttr(n, "data-"+key, val)
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(Text(c))
	}
	return sb.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class cls.
func HasClass(n *html.Node, cls string) bool {
	for _, c := range Classes(n) {
		if c == cls {
			return true
		}
	}
	return false
}

// AddClass appends the classes n does not already carry.
func AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	for _, cls := range classes {
		if cls != "" && !HasClass(n, cls) {
			list = append(list, cls)
			SetAttr(n, "class", strings.Join(list, " "))
		}
	}
}

// RemoveClass drops cls from the class list of n.
func RemoveClass(n *html.Node, cls string) {
	var kept []string
	for _, c := range Classes(n) {
		if c != cls {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// ToggleClass flips cls on n and reports whether it is now present.
func ToggleClass(n *html.Node, cls string) bool {
	if HasClass(n, cls) {
		RemoveClass(n, cls)
		return false
	}
	AddClass(n, cls)
	return true
}
