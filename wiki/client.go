package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/olgasafonova/wikibridge/internal/base"
	werrors "github.com/olgasafonova/wikibridge/internal/errors"
	"github.com/olgasafonova/wikibridge/internal/infra"
	"github.com/olgasafonova/wikibridge/metrics"
	"github.com/olgasafonova/wikibridge/tracing"
)

// Client presents one normalized object model for a wiki regardless of
// which API dialect the server speaks. Construction is two-phase: NewClient
// performs no I/O, Connect probes the endpoint once and fixes the protocol
// for the client's lifetime. Every operation awaits Connect internally, so
// calling it explicitly is optional.
type Client struct {
	config    *Config
	transport *base.Client
	logger    *slog.Logger
	dedup     *infra.RequestDeduplicator

	connectOnce sync.Once
	connectErr  error

	// Set exactly once by Connect, read-only afterwards.
	backend backend
	legacy  bool
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client on the underlying transport
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.transport.HTTPClient = h
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
		c.transport.Logger = l
	}
}

// NewClient creates a new wiki client. No network I/O happens here.
func NewClient(config *Config, opts ...ClientOption) *Client {
	c := &Client{
		config: config,
		transport: base.NewClient(
			base.WithUserAgent(config.UserAgent),
		),
		logger: slog.Default(),
		dedup:  infra.NewRequestDeduplicator(),
	}
	if config.Timeout > 0 {
		c.transport.HTTPClient.Timeout = config.Timeout
	}

	for _, opt := range opts {
		opt(c)
	}
	c.transport.Logger = c.logger

	return c
}

// Connect determines which API dialect the server speaks and memoizes the
// result. Concurrent first calls coalesce; once resolved, Connect is a
// no-op. If neither dialect responds the client is unusable and every call
// returns the same endpoint error.
func (c *Client) Connect(ctx context.Context) error {
	c.connectOnce.Do(func() {
		c.connectErr = c.selectBackend(ctx)
	})
	return c.connectErr
}

// Legacy reports whether the client resolved to the legacy dialect.
// Valid only after Connect has succeeded.
func (c *Client) Legacy() bool {
	return c.legacy
}

// selectBackend probes the resource API's title-search route (present and
// cheap on every resource-API deployment); a 404 means the server predates
// the resource API, in which case the action endpoint must answer a
// siteinfo query or the endpoint is rejected as invalid.
func (c *Client) selectBackend(ctx context.Context) error {
	restBase := c.config.BaseURL + "/rest.php/v1"
	actionURL := c.config.BaseURL + "/api.php"

	body, status, err := c.transport.Do(ctx, base.Request{
		URL: restBase + "/search/title?q=wikibridge&limit=1",
	})
	if err == nil && status == http.StatusOK {
		c.backend = newModernBackend(c, restBase)
		c.logger.Info("Resolved wiki protocol", "protocol", protocolModern, "endpoint", restBase)
		return nil
	}
	if err == nil && status != http.StatusNotFound {
		if apiErr := classify(body); apiErr != nil {
			return fmt.Errorf("protocol detection failed: %w", apiErr)
		}
	}

	body, status, err = c.transport.Do(ctx, base.Request{
		URL: actionURL + "?action=query&meta=siteinfo&siprop=general&format=json&formatversion=2",
	})
	if err != nil || status != http.StatusOK {
		return &werrors.EndpointError{URL: c.config.BaseURL}
	}
	var probe struct {
		Query *struct {
			General map[string]any `json:"general"`
		} `json:"query"`
	}
	if jsonErr := json.Unmarshal(body, &probe); jsonErr != nil || probe.Query == nil {
		return &werrors.EndpointError{URL: c.config.BaseURL}
	}

	c.legacy = true
	c.backend = newLegacyBackend(c, actionURL)
	c.logger.Info("Resolved wiki protocol", "protocol", protocolLegacy, "endpoint", actionURL)
	return nil
}

// run connects, traces and measures one backend operation.
func (c *Client) run(ctx context.Context, op, title string, fn func(context.Context, backend) error) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	ctx, span := tracing.StartSpan(ctx, "wiki."+op)
	defer span.End()
	tracing.AddWikiAttributes(span, c.backend.protocol(), op, title)

	start := time.Now()
	err := fn(ctx, c.backend)
	metrics.RecordBackendCall(c.backend.protocol(), op, time.Since(start).Seconds(), err == nil)
	tracing.RecordError(span, err)
	return err
}

// Page returns a lazy handle for the page with the given title. No network
// I/O happens until a field is read.
func (c *Client) Page(title string) *PageHandle {
	return &PageHandle{client: c, title: title, mode: pageBare}
}

// Revision returns a lazy handle for the revision with the given id.
func (c *Client) Revision(id int64) *RevisionHandle {
	return &RevisionHandle{client: c, id: id}
}

// File returns a lazy handle for the file with the given title. The title
// may carry the "File:" namespace prefix or omit it.
func (c *Client) File(title string) *FileHandle {
	return &FileHandle{client: c, title: title}
}

// History returns a reusable history descriptor for the page, newest
// first. Each iteration re-executes the underlying network calls.
func (c *Client) History(title string) History {
	return History{client: c, title: title}
}

// fetchPage resolves a page snapshot. Concurrent fetches for the same
// title and mode coalesce into one request cycle.
func (c *Client) fetchPage(ctx context.Context, title string, mode pageMode) (*Page, error) {
	key := fmt.Sprintf("page:%s:%s", mode, title)
	result, shared, err := c.dedup.Do(ctx, key, func() (interface{}, error) {
		var page *Page
		err := c.run(ctx, "get_page_"+mode.String(), title, func(ctx context.Context, b backend) error {
			var err error
			page, err = b.getPage(ctx, title, mode)
			return err
		})
		return page, err
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Coalesced concurrent page fetch", "title", title)
	}
	return result.(*Page), nil
}

// fetchRevision resolves a revision snapshot, delta included.
func (c *Client) fetchRevision(ctx context.Context, id int64) (*RevisionWithPage, error) {
	key := fmt.Sprintf("revision:%d", id)
	result, _, err := c.dedup.Do(ctx, key, func() (interface{}, error) {
		var rev *RevisionWithPage
		err := c.run(ctx, "get_revision", "", func(ctx context.Context, b backend) error {
			var err error
			rev, err = b.getRevision(ctx, id)
			return err
		})
		return rev, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*RevisionWithPage), nil
}

// fetchFile resolves a file description.
func (c *Client) fetchFile(ctx context.Context, title string) (*File, error) {
	key := "file:" + title
	result, _, err := c.dedup.Do(ctx, key, func() (interface{}, error) {
		var file *File
		err := c.run(ctx, "get_file", title, func(ctx context.Context, b backend) error {
			var err error
			file, err = b.getFile(ctx, title)
			return err
		})
		return file, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*File), nil
}

// LanguageLinks returns the page's links to its counterparts on wikis in
// other languages.
func (c *Client) LanguageLinks(ctx context.Context, title string) ([]LanguageLink, error) {
	var links []LanguageLink
	err := c.run(ctx, "language_links", title, func(ctx context.Context, b backend) error {
		var err error
		links, err = b.languageLinks(ctx, title)
		return err
	})
	return links, err
}

// MediaLinks returns descriptions of the files used on the page.
func (c *Client) MediaLinks(ctx context.Context, title string) ([]File, error) {
	var files []File
	err := c.run(ctx, "media_links", title, func(ctx context.Context, b backend) error {
		var err error
		files, err = b.mediaLinks(ctx, title)
		return err
	})
	return files, err
}

// SearchPages runs a full-text content search. Limit must be in [1,100].
func (c *Client) SearchPages(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	if err := validateSearch(q, limit); err != nil {
		return nil, err
	}
	var results []SearchResult
	err := c.run(ctx, "search_pages", "", func(ctx context.Context, b backend) error {
		var err error
		results, err = b.searchPages(ctx, q, limit)
		return err
	})
	return results, err
}

// SearchTitles runs a title autocomplete search. Limit must be in [1,100].
func (c *Client) SearchTitles(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	if err := validateSearch(q, limit); err != nil {
		return nil, err
	}
	var results []SearchResult
	err := c.run(ctx, "search_titles", "", func(ctx context.Context, b backend) error {
		var err error
		results, err = b.searchTitles(ctx, q, limit)
		return err
	})
	return results, err
}

// Compare returns the difference between two revisions.
func (c *Client) Compare(ctx context.Context, from, to int64) (*Diff, error) {
	var diff *Diff
	err := c.run(ctx, "compare", "", func(ctx context.Context, b backend) error {
		var err error
		diff, err = b.compare(ctx, from, to)
		return err
	})
	return diff, err
}

// CreatePage creates a new page. A nil comment lets the server fill in the
// edit summary.
func (c *Client) CreatePage(ctx context.Context, title, source string, comment *string) (*Page, error) {
	if title == "" {
		return nil, werrors.NewValidationError("title", "", "page title is required")
	}
	var page *Page
	err := c.run(ctx, "create_page", title, func(ctx context.Context, b backend) error {
		var err error
		page, err = b.createPage(ctx, title, source, comment)
		return err
	})
	return page, err
}

// UpdatePage replaces a page's content. baseRevisionID is the
// optimistic-concurrency base revision; zero means "create new page".
// A concurrent-edit mismatch the server cannot merge surfaces as a
// classified API error.
func (c *Client) UpdatePage(ctx context.Context, title, source string, comment *string, baseRevisionID int64) (*Page, error) {
	if title == "" {
		return nil, werrors.NewValidationError("title", "", "page title is required")
	}
	var page *Page
	err := c.run(ctx, "update_page", title, func(ctx context.Context, b backend) error {
		var err error
		page, err = b.updatePage(ctx, title, source, comment, baseRevisionID)
		return err
	})
	return page, err
}

func validateSearch(q string, limit int) error {
	if q == "" {
		return werrors.NewValidationError("q", "", "search query is required")
	}
	if limit < MinSearchLimit || limit > MaxSearchLimit {
		return werrors.NewValidationError("limit", fmt.Sprintf("%d", limit),
			fmt.Sprintf("limit must be between %d and %d", MinSearchLimit, MaxSearchLimit))
	}
	return nil
}
