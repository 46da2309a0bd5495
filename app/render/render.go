// Package render turns records into detached display fragments. Nothing here
// performs I/O or touches the live page.
package render

import (
	"fmt"
	"strconv"

	"postboard/app/dom"
	"postboard/app/maybe"
	"postboard/app/models"
)

// Fixed copy shown on the page.
const (
	Tagline         = "Multi-layered client-server neural-net"
	PlaceholderText = "Select an Employee to display their posts."
	PlaceholderCls  = "default-text"
)

// TextNode creates a detached element. Tag defaults to "p"; the text node and
// the class attribute are omitted entirely when empty.
func TextNode(tag, text, className string) *dom.Node {
	if tag == "" {
		tag = "p"
	}
	el := dom.Element(tag)
	if text != "" {
		dom.SetText(el, text)
	}
	if className != "" {
		dom.SetAttr(el, "class", className)
	}
	return el
}

// SelectOptions creates one <option> per user in input order. Absent input
// yields absent output; an empty list yields an empty list.
func SelectOptions(users maybe.Value[[]models.User]) maybe.Value[[]*dom.Node] {
	return maybe.Map(users, func(list []models.User) []*dom.Node {
		options := make([]*dom.Node, 0, len(list))
		for _, u := range list {
			opt := TextNode("option", u.Name, "")
			dom.SetAttr(opt, "value", strconv.Itoa(u.ID))
			options = append(options, opt)
		}
		return options
	})
}

// CommentFragment creates a fragment holding one <article> per comment.
func CommentFragment(comments []models.Comment) maybe.Value[*dom.Node] {
	if len(comments) == 0 {
		return maybe.None[*dom.Node]()
	}
	frag := dom.NewFragment()
	for _, c := range comments {
		article := dom.Element("article")
		dom.Append(article, TextNode("h3", c.Name, ""))
		dom.Append(article, TextNode("p", c.Body, ""))
		dom.Append(article, TextNode("p", fmt.Sprintf("From: %s", c.Email), ""))
		dom.Append(frag, article)
	}
	return maybe.Some(frag)
}

// PostArticle creates the <article> for a post with its title, body and id
// lines. Author, toggle and comments are appended by the assembler.
func PostArticle(post models.Post) *dom.Node {
	article := dom.Element("article")
	dom.Append(article, TextNode("h2", post.Title, ""))
	dom.Append(article, TextNode("p", post.Body, ""))
	dom.Append(article, TextNode("p", fmt.Sprintf("Post ID: %d", post.ID), ""))
	return article
}

// AuthorLines creates the byline and tagline paragraphs.
func AuthorLines(author models.User) []*dom.Node {
	return []*dom.Node{
		TextNode("p", author.Byline(), ""),
		TextNode("p", Tagline, ""),
	}
}

// ToggleButton creates the collapsed-state toggle control bound to postID.
func ToggleButton(postID int) *dom.Node {
	btn := TextNode("button", ShowLabel, "")
	dom.SetData(btn, "post-id", strconv.Itoa(postID))
	return btn
}

// Toggle labels. The label is the source of truth for expansion state.
const (
	ShowLabel = "Show Comments"
	HideLabel = "Hide Comments"
)

// Placeholder creates the paragraph shown when there is nothing to list.
func Placeholder() *dom.Node {
	return TextNode("p", PlaceholderText, PlaceholderCls)
}
