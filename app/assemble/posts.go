package assemble

import (
	"context"
	"errors"
	"fmt"

	"postboard/app/client"
	"postboard/app/dom"
	"postboard/app/maybe"
	"postboard/app/models"
	"postboard/app/render"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errAuthorMissing = errors.New("author lookup failed")

// Posts builds the article list for a user's posts.
type Posts struct {
	source      client.Source
	sections    SectionAssembler
	parallelism int
	log         *zap.Logger
}

// NewPosts creates a post list assembler. With parallelism above one, posts
// are built concurrently, at most parallelism at a time; the output order is
// always the input order.
func NewPosts(source client.Source, sections SectionAssembler, parallelism int, log *zap.Logger) *Posts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Posts{
		source:      source,
		sections:    sections,
		parallelism: parallelism,
		log:         log,
	}
}

// Assemble returns a fragment with one article per post. An empty list, or a
// failed author lookup for any post, yields None. A post whose comment section
// cannot be assembled is left out on its own.
func (p *Posts) Assemble(ctx context.Context, posts []models.Post) maybe.Value[*dom.Node] {
	if len(posts) == 0 {
		return maybe.None[*dom.Node]()
	}

	articles := make([]*dom.Node, len(posts))
	var err error
	if p.parallelism <= 1 {
		err = p.sequential(ctx, posts, articles)
	} else {
		err = p.concurrent(ctx, posts, articles)
	}
	if err != nil {
		return maybe.None[*dom.Node]()
	}

	frag := dom.NewFragment()
	for _, article := range articles {
		if article != nil {
			dom.Append(frag, article)
		}
	}
	return maybe.Some(frag)
}

func (p *Posts) sequential(ctx context.Context, posts []models.Post, out []*dom.Node) error {
	for i, post := range posts {
		article, err := p.safeBuild(ctx, post)
		if err != nil {
			return err
		}
		out[i] = article
	}
	return nil
}

func (p *Posts) concurrent(ctx context.Context, posts []models.Post, out []*dom.Node) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, post := range posts {
		g.Go(func() error {
			article, err := p.safeBuild(gctx, post)
			if err != nil {
				return err
			}
			out[i] = article
			return nil
		})
	}
	return g.Wait()
}

// safeBuild runs build and turns a panic into an error, so a failing post
// discards the batch the same way in both modes, including on errgroup
// goroutines.
func (p *Posts) safeBuild(ctx context.Context, post models.Post) (article *dom.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("post assembly panicked", zap.Int("post_id", post.ID), zap.Any("panic", r))
			article, err = nil, fmt.Errorf("post %d: panic: %v", post.ID, r)
		}
	}()
	return p.build(ctx, post)
}

// build assembles one post. It fails only when the author cannot be resolved;
// a nil article with a nil error means the post was dropped.
func (p *Posts) build(ctx context.Context, post models.Post) (*dom.Node, error) {
	article := render.PostArticle(post)

	author, ok := p.source.FetchUser(ctx, post.UserID).Get()
	if !ok {
		p.log.Warn("author lookup failed, discarding post list",
			zap.Int("post_id", post.ID), zap.Int("user_id", post.UserID))
		return nil, errAuthorMissing
	}
	for _, line := range render.AuthorLines(author) {
		dom.Append(article, line)
	}
	dom.Append(article, render.ToggleButton(post.ID))

	section, ok := p.section(ctx, post.ID).Get()
	if !ok {
		p.log.Warn("comment section unavailable, dropping post", zap.Int("post_id", post.ID))
		return nil, nil
	}
	dom.Append(article, section)
	return article, nil
}

func (p *Posts) section(ctx context.Context, postID int) (section maybe.Value[*dom.Node]) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("comment section panicked", zap.Int("post_id", postID), zap.Any("panic", r))
			section = maybe.None[*dom.Node]()
		}
	}()
	return p.sections.Assemble(ctx, postID)
}
