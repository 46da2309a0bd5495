// Package assemble builds the post list and comment sections from remote
// records, preserving input order and isolating failures per unit of work.
package assemble

import (
	"context"
	"fmt"
	"strconv"

	"postboard/app/client"
	"postboard/app/dom"
	"postboard/app/maybe"
	"postboard/app/render"

	"go.uber.org/zap"
)

// HiddenClass collapses a comment section.
const HiddenClass = "hide"

// SectionAssembler builds the comment section for one post.
type SectionAssembler interface {
	Assemble(ctx context.Context, postID int) maybe.Value[*dom.Node]
}

// Sections fetches comments and wraps them in collapsed sections.
type Sections struct {
	source client.Source
	log    *zap.Logger
}

// NewSections creates a comment section assembler.
func NewSections(source client.Source, log *zap.Logger) *Sections {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sections{source: source, log: log}
}

// Assemble returns <section class="comments hide" data-post-id=N> holding the
// post's comments. A failed or empty fetch still yields the empty section.
func (s *Sections) Assemble(ctx context.Context, postID int) (section maybe.Value[*dom.Node]) {
	if postID <= 0 {
		return maybe.None[*dom.Node]()
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("comment section assembly panicked", zap.Int("post_id", postID), zap.Any("panic", r))
			section = maybe.None[*dom.Node]()
		}
	}()

	el := dom.Element("section")
	dom.SetData(el, "post-id", strconv.Itoa(postID))
	dom.AddClass(el, "comments", HiddenClass)

	comments, ok := s.source.FetchPostComments(ctx, postID).Get()
	if !ok {
		return maybe.Some(el)
	}
	if frag, ok := render.CommentFragment(comments).Get(); ok {
		dom.Append(el, frag)
	}
	return maybe.Some(el)
}

// Toggle flips the live section for postID between collapsed and expanded.
// When no section exists a placeholder section is created, without fetching,
// and appended to the document body; None is returned in that case.
func (s *Sections) Toggle(page dom.Page, postID int) maybe.Value[*dom.Node] {
	if postID <= 0 {
		return maybe.None[*dom.Node]()
	}
	id := strconv.Itoa(postID)
	if section := page.Query(dom.And(dom.Tag("section"), dom.DataAttr("post-id", id))); section != nil {
		dom.ToggleClass(section, HiddenClass)
		return maybe.Some(section)
	}

	// TODO: attach to the post's own article instead of the body once the
	// layout guarantees one article per post id.
	orphan := render.TextNode("section", fmt.Sprintf("Comments for Post %d", postID), "")
	dom.SetData(orphan, "post-id", id)
	dom.Append(page.Body(), orphan)
	s.log.Debug("comment section missing, created placeholder", zap.Int("post_id", postID))
	return maybe.None[*dom.Node]()
}

// ToggleButton flips the label of the toggle control bound to postID.
func ToggleButton(page dom.Page, postID int) maybe.Value[*dom.Node] {
	if postID <= 0 {
		return maybe.None[*dom.Node]()
	}
	btn := page.Query(dom.And(dom.Tag("button"), dom.DataAttr("post-id", strconv.Itoa(postID))))
	if btn == nil {
		return maybe.None[*dom.Node]()
	}
	if dom.Text(btn) == render.ShowLabel {
		dom.SetText(btn, render.HideLabel)
	} else {
		dom.SetText(btn, render.ShowLabel)
	}
	return maybe.Some(btn)
}

// Expanded reports the expansion state recorded by a toggle control's label.
func Expanded(btn *dom.Node) bool {
	return dom.Text(btn) == render.HideLabel
}
