// Package page wires the assemblers to the live page: it populates the user
// selector, swaps the post list on selection changes and keeps the toggle
// controls bound.
package page

import (
	"context"
	"strconv"

	"postboard/app/assemble"
	"postboard/app/client"
	"postboard/app/dom"
	"postboard/app/maybe"
	"postboard/app/models"
	"postboard/app/render"

	"go.uber.org/zap"
)

// DefaultUserID is used when a change event carries no value.
const DefaultUserID = 1

// PostAssembler builds the post list fragment.
type PostAssembler interface {
	Assemble(ctx context.Context, posts []models.Post) maybe.Value[*dom.Node]
}

// Orchestrator is the only writer of the live page besides the toggle path.
type Orchestrator struct {
	page        dom.Page
	source      client.Source
	posts       PostAssembler
	sections    *assemble.Sections
	log         *zap.Logger
	initialized bool
}

// NewOrchestrator creates an Orchestrator over page.
func NewOrchestrator(page dom.Page, source client.Source, posts PostAssembler, sections *assemble.Sections, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		page:     page,
		source:   source,
		posts:    posts,
		sections: sections,
		log:      log,
	}
}

// Initialize populates the selector and binds its change handler. Only the
// first call has any effect.
func (o *Orchestrator) Initialize(ctx context.Context) maybe.Value[[]models.User] {
	if o.initialized {
		return maybe.None[[]models.User]()
	}
	o.initialized = true

	users := o.source.FetchUsers(ctx)
	if o.populateSelect(users).IsNone() {
		o.log.Info("user selector left empty")
	}

	if sel := o.page.SelectMenu(); sel != nil {
		o.page.AddListener(sel, dom.EventChange, func(ctx context.Context, ev dom.Event) {
			o.SelectChange(ctx, ev.Value)
		})
	}
	return users
}

func (o *Orchestrator) populateSelect(users maybe.Value[[]models.User]) maybe.Value[*dom.Node] {
	sel := o.page.SelectMenu()
	options, ok := render.SelectOptions(users).Get()
	if !ok || len(options) == 0 || sel == nil {
		return maybe.None[*dom.Node]()
	}
	for _, opt := range options {
		dom.Append(sel, opt)
	}
	return maybe.Some(sel)
}

// SelectChange handles a change of the selected user. The selector stays
// disabled until the refresh has finished, so refreshes never overlap.
func (o *Orchestrator) SelectChange(ctx context.Context, value string) (userID int, refreshed bool) {
	sel := o.page.SelectMenu()
	if sel != nil {
		dom.SetAttr(sel, "disabled", "")
		defer dom.RemoveAttr(sel, "disabled")
	}
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("refresh panicked", zap.String("value", value), zap.Any("panic", r))
			refreshed = false
		}
	}()

	userID = DefaultUserID
	if value != "" {
		id, err := strconv.Atoi(value)
		if err != nil {
			o.log.Warn("ignoring non-numeric user id", zap.String("value", value))
			return 0, false
		}
		userID = id
	}
	markSelected(sel, strconv.Itoa(userID))

	posts := o.source.FetchPostsByUser(ctx, userID)
	return userID, o.Refresh(ctx, posts)
}

func markSelected(sel *dom.Node, value string) {
	if sel == nil {
		return
	}
	for _, opt := range dom.Find(sel, dom.Tag("option")) {
		if v, _ := dom.Attr(opt, "value"); v == value {
			dom.SetAttr(opt, "selected", "")
		} else {
			dom.RemoveAttr(opt, "selected")
		}
	}
}

// Refresh swaps the content of <main>: unbind the old toggles, clear the
// region, attach the new posts (or the placeholder), bind the new toggles.
// An absent post list leaves the page untouched.
func (o *Orchestrator) Refresh(ctx context.Context, posts maybe.Value[[]models.Post]) bool {
	list, ok := posts.Get()
	if !ok {
		o.log.Warn("no posts to refresh with")
		return false
	}
	main := o.page.Main()

	unbound := o.unbindToggles()
	dom.RemoveChildren(main)
	o.display(ctx, main, list)
	bound := o.bindToggles()

	o.log.Debug("refreshed posts",
		zap.Int("posts", len(list)), zap.Int("unbound", unbound), zap.Int("bound", bound))
	return true
}

func (o *Orchestrator) display(ctx context.Context, main *dom.Node, list []models.Post) {
	if len(list) > 0 {
		if frag, ok := o.posts.Assemble(ctx, list).Get(); ok {
			dom.Append(main, frag)
			return
		}
	}
	dom.Append(main, render.Placeholder())
}

func (o *Orchestrator) toggles() []*dom.Node {
	return o.page.QueryAll(dom.And(dom.Tag("button"), dom.Within(dom.Tag("main"))))
}

func (o *Orchestrator) unbindToggles() int {
	removed := 0
	for _, btn := range o.toggles() {
		removed += o.page.RemoveAllListeners(btn, dom.EventClick)
	}
	return removed
}

func (o *Orchestrator) bindToggles() int {
	bound := 0
	for _, btn := range o.toggles() {
		postID, err := strconv.Atoi(dom.Data(btn, "post-id"))
		if err != nil || postID <= 0 {
			continue
		}
		o.page.AddListener(btn, dom.EventClick, func(ctx context.Context, ev dom.Event) {
			o.ToggleComments(postID)
		})
		bound++
	}
	return bound
}

// ToggleComments flips the comment section of postID and its control label.
func (o *Orchestrator) ToggleComments(postID int) (section, button maybe.Value[*dom.Node]) {
	if postID <= 0 {
		return maybe.None[*dom.Node](), maybe.None[*dom.Node]()
	}
	section = o.sections.Toggle(o.page, postID)
	button = assemble.ToggleButton(o.page, postID)
	return section, button
}
