package dom

import "golang.org/x/net/html"

// Matcher is an element predicate.
type Matcher func(*html.Node) bool

// Tag matches elements by tag name.
func Tag(name string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

// ID matches the element whose id attribute equals id.
func ID(id string) Matcher {
	return func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	}
}

// DataAttr matches elements whose data-key attribute equals value.
func DataAttr(key, value string) Matcher {
	return func(n *html.Node) bool {
		v, ok := Attr(n, "data-"+key)
		return ok && v == value
	}
}

// HasData matches elements carrying a data-key attribute.
func HasData(key string) Matcher {
	return func(n *html.Node) bool {
		_, ok := Attr(n, "data-"+key)
		return ok
	}
}

// And matches when every matcher does.
func And(ms ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Within matches elements that have an ancestor matching m.
func Within(m Matcher) Matcher {
	return func(n *html.Node) bool {
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && m(p) {
				return true
			}
		}
		return false
	}
}

// Find returns every element below root matching m, in document order.
func Find(root *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && m(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// First returns the first element below root matching m, or nil.
func First(root *html.Node, m Matcher) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && m(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits the descendants of root depth-first until visit returns false.
func walk(root *html.Node, visit func(*html.Node) bool) bool {
	if root == nil {
		return true
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if !visit(c) || !walk(c, visit) {
			return false
		}
	}
	return true
}
