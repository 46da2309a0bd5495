// Package client issues the read-only queries against the remote collection
// store. Every operation returns a maybe.Value and never an error: failures
// are logged and counted, then collapsed into the absent marker.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"postboard/app/maybe"
	"postboard/app/models"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public store the page was written against.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Record kinds, used as the "kind" log field and metric label.
const (
	KindUsers    = "users"
	KindPosts    = "posts"
	KindUser     = "user"
	KindComments = "comments"
)

// Source is the set of queries the assemblers depend on.
type Source interface {
	FetchUsers(ctx context.Context) maybe.Value[[]models.User]
	FetchPostsByUser(ctx context.Context, userID int) maybe.Value[[]models.Post]
	FetchUser(ctx context.Context, userID int) maybe.Value[models.User]
	FetchPostComments(ctx context.Context, postID int) maybe.Value[[]models.Comment]
}

// Client talks to a JSON collection store over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for failed requests.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics sets the request counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client for the store rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// FetchUsers retrieves every user. No partial result is ever exposed.
func (c *Client) FetchUsers(ctx context.Context) maybe.Value[[]models.User] {
	return fetchList[models.User](ctx, c, KindUsers, 0, "/users", nil)
}

// FetchPostsByUser retrieves the posts owned by userID.
func (c *Client) FetchPostsByUser(ctx context.Context, userID int) maybe.Value[[]models.Post] {
	if userID <= 0 {
		return maybe.None[[]models.Post]()
	}
	q := url.Values{"userId": {strconv.Itoa(userID)}}
	return fetchList[models.Post](ctx, c, KindPosts, userID, "/posts", q)
}

// FetchUser retrieves a single user.
func (c *Client) FetchUser(ctx context.Context, userID int) maybe.Value[models.User] {
	if userID <= 0 {
		return maybe.None[models.User]()
	}
	var user models.User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", userID), nil, &user); err != nil {
		c.fail(KindUser, userID, err)
		return maybe.None[models.User]()
	}
	if err := user.Validate(); err != nil {
		c.fail(KindUser, userID, err)
		return maybe.None[models.User]()
	}
	c.metrics.observe(KindUser, "ok")
	return maybe.Some(user)
}

// FetchPostComments retrieves the comments attached to postID.
func (c *Client) FetchPostComments(ctx context.Context, postID int) maybe.Value[[]models.Comment] {
	if postID <= 0 {
		return maybe.None[[]models.Comment]()
	}
	q := url.Values{"postId": {strconv.Itoa(postID)}}
	return fetchList[models.Comment](ctx, c, KindComments, postID, "/comments", q)
}

func fetchList[T any, P interface {
	*T
	Validate() error
}](ctx context.Context, c *Client, kind string, id int, path string, q url.Values) maybe.Value[[]T] {
	var records []T
	if err := c.get(ctx, path, q, &records); err != nil {
		c.fail(kind, id, err)
		return maybe.None[[]T]()
	}
	if err := models.ValidateAll[T, P](records); err != nil {
		c.fail(kind, id, err)
		return maybe.None[[]T]()
	}
	if records == nil {
		records = []T{}
	}
	c.metrics.observe(kind, "ok")
	return maybe.Some(records)
}

// get issues exactly one GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: u, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) fail(kind string, id int, err error) {
	outcome := "error"
	fields := []zap.Field{zap.String("kind", kind), zap.Error(err)}
	if id > 0 {
		fields = append(fields, zap.Int("id", id))
	}
	var se *StatusError
	if errors.As(err, &se) {
		outcome = "status"
		fields = append(fields, zap.Int("status", se.Code))
	}
	c.metrics.observe(kind, outcome)
	c.log.Warn("remote fetch failed", fields...)
}

// StatusError reports a non-success response from the store.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}
