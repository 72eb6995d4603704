package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/olgasafonova/wikibridge/internal/base"
	"github.com/olgasafonova/wikibridge/metrics"
)

// modernBackend speaks the resource-oriented dialect. Responses already
// carry the normalized shapes, so this side is a thin mapping layer: the
// interesting work lives in legacy.go.
type modernBackend struct {
	client  *Client
	baseURL string // .../rest.php/v1
}

func newModernBackend(c *Client, baseURL string) *modernBackend {
	return &modernBackend{client: c, baseURL: baseURL}
}

func (m *modernBackend) protocol() string { return protocolModern }

// request performs one call against the resource API, classifies error
// envelopes and decodes the success payload into out.
func (m *modernBackend) request(ctx context.Context, r base.Request, out interface{}) error {
	body, status, err := m.client.transport.Do(ctx, r)
	if err != nil {
		return err
	}
	if apiErr := classify(body); apiErr != nil {
		return apiErr
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("unexpected status %d", status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (m *modernBackend) pageURL(title, suffix string) string {
	return m.baseURL + "/page/" + url.PathEscape(titleKey(title)) + suffix
}

// restPage is the wire shape shared by the bare, source and html page routes.
type restPage struct {
	ID           int64     `json:"id"`
	Key          string    `json:"key"`
	Title        string    `json:"title"`
	Latest       LatestRef `json:"latest"`
	ContentModel string    `json:"content_model"`
	License      License   `json:"license"`
	Source       string    `json:"source"`
	HTML         string    `json:"html"`
}

func (p *restPage) toPage() *Page {
	return &Page{
		ID:           p.ID,
		Key:          p.Key,
		Title:        p.Title,
		Latest:       p.Latest,
		ContentModel: p.ContentModel,
		License:      p.License,
		Source:       p.Source,
		HTML:         p.HTML,
	}
}

func (m *modernBackend) getPage(ctx context.Context, title string, mode pageMode) (*Page, error) {
	var suffix string
	switch mode {
	case pageSource:
		suffix = ""
	case pageHTML:
		suffix = "/with_html"
	default:
		suffix = "/bare"
	}

	var wire restPage
	if err := m.request(ctx, base.Request{URL: m.pageURL(title, suffix)}, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(), nil
}

// restRevision is the wire shape of a revision, with or without its page.
type restRevision struct {
	ID        int64     `json:"id"`
	Page      *PageRef  `json:"page"`
	User      User      `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Comment   *string   `json:"comment"`
	Size      int64     `json:"size"`
	Delta     *int64    `json:"delta"`
	Minor     bool      `json:"minor"`
}

func (r *restRevision) toRevision() Revision {
	return Revision{
		ID:        r.ID,
		User:      r.User,
		Timestamp: r.Timestamp,
		Comment:   r.Comment,
		Size:      r.Size,
		Delta:     r.Delta,
		Minor:     r.Minor,
	}
}

func (m *modernBackend) getRevision(ctx context.Context, id int64) (*RevisionWithPage, error) {
	var wire restRevision
	reqURL := m.baseURL + "/revision/" + strconv.FormatInt(id, 10) + "/bare"
	if err := m.request(ctx, base.Request{URL: reqURL}, &wire); err != nil {
		return nil, err
	}

	rev := &RevisionWithPage{Revision: wire.toRevision()}
	if wire.Page != nil {
		rev.Page = *wire.Page
	}
	return rev, nil
}

func (m *modernBackend) getFile(ctx context.Context, title string) (*File, error) {
	var wire File
	reqURL := m.baseURL + "/file/" + url.PathEscape(titleKey(fileTitle(title)))
	if err := m.request(ctx, base.Request{URL: reqURL}, &wire); err != nil {
		return nil, err
	}
	return &wire, nil
}

func (m *modernBackend) languageLinks(ctx context.Context, title string) ([]LanguageLink, error) {
	var links []LanguageLink
	if err := m.request(ctx, base.Request{URL: m.pageURL(title, "/links/language")}, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (m *modernBackend) mediaLinks(ctx context.Context, title string) ([]File, error) {
	var wire struct {
		Files []File `json:"files"`
	}
	if err := m.request(ctx, base.Request{URL: m.pageURL(title, "/links/media")}, &wire); err != nil {
		return nil, err
	}
	return wire.Files, nil
}

func (m *modernBackend) search(ctx context.Context, route, q string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(limit))

	var wire struct {
		Pages []SearchResult `json:"pages"`
	}
	reqURL := m.baseURL + "/search/" + route + "?" + params.Encode()
	if err := m.request(ctx, base.Request{URL: reqURL}, &wire); err != nil {
		return nil, err
	}
	return wire.Pages, nil
}

func (m *modernBackend) searchPages(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	return m.search(ctx, "page", q, limit)
}

func (m *modernBackend) searchTitles(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	return m.search(ctx, "title", q, limit)
}

func (m *modernBackend) compare(ctx context.Context, from, to int64) (*Diff, error) {
	var diff Diff
	reqURL := fmt.Sprintf("%s/revision/%d/compare/%d", m.baseURL, from, to)
	if err := m.request(ctx, base.Request{URL: reqURL}, &diff); err != nil {
		return nil, err
	}
	return &diff, nil
}

// historyBatch requests one native history page. The first batch is
// addressed by the descriptor; subsequent batches follow the server's
// opaque "older" cursor URL verbatim.
func (m *modernBackend) historyBatch(ctx context.Context, q historyQuery, cursor string, _ *historyState) (revisionBatch, error) {
	reqURL := cursor
	if reqURL == "" {
		params := url.Values{}
		if q.filter != FilterNone {
			params.Set("filter", string(q.filter))
		}
		if q.olderThan > 0 {
			params.Set("older_than", strconv.FormatInt(q.olderThan, 10))
		}
		reqURL = m.pageURL(q.title, "/history")
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
	}

	var wire struct {
		Revisions []restRevision `json:"revisions"`
		Older     string         `json:"older"`
	}
	if err := m.request(ctx, base.Request{URL: reqURL}, &wire); err != nil {
		return revisionBatch{}, err
	}
	metrics.HistoryBatchesTotal.WithLabelValues(protocolModern).Inc()

	batch := revisionBatch{cursor: wire.Older}
	batch.revisions = make([]Revision, 0, len(wire.Revisions))
	for i := range wire.Revisions {
		batch.revisions = append(batch.revisions, wire.Revisions[i].toRevision())
	}
	return batch, nil
}

// editToken is the CSRF token field for cookie-based sessions. With a
// bearer token configured the Authorization header authenticates the call
// and the anonymous token placeholder is accepted.
func (m *modernBackend) editToken() string {
	if m.client.config.CSRFToken != "" {
		return m.client.config.CSRFToken
	}
	return `+\`
}

func (m *modernBackend) authorization() string {
	if m.client.config.HasToken() {
		return "Bearer " + m.client.config.Token
	}
	return ""
}

type restEditLatest struct {
	ID int64 `json:"id"`
}

type restEditBody struct {
	Source  string          `json:"source"`
	Title   string          `json:"title,omitempty"`
	Comment *string         `json:"comment"`
	Latest  *restEditLatest `json:"latest,omitempty"`
	Token   string          `json:"token,omitempty"`
}

func (m *modernBackend) createPage(ctx context.Context, title, source string, comment *string) (*Page, error) {
	body := restEditBody{Source: source, Title: title, Comment: comment}
	if !m.client.config.HasToken() {
		body.Token = m.editToken()
	}

	var wire restPage
	err := m.request(ctx, base.Request{
		Method:        http.MethodPost,
		URL:           m.baseURL + "/page",
		JSON:          body,
		Authorization: m.authorization(),
	}, &wire)
	if err != nil {
		return nil, err
	}
	return wire.toPage(), nil
}

func (m *modernBackend) updatePage(ctx context.Context, title, source string, comment *string, baseRevisionID int64) (*Page, error) {
	body := restEditBody{Source: source, Comment: comment}
	if baseRevisionID > 0 {
		body.Latest = &restEditLatest{ID: baseRevisionID}
	}
	if !m.client.config.HasToken() {
		body.Token = m.editToken()
	}

	var wire restPage
	err := m.request(ctx, base.Request{
		Method:        http.MethodPut,
		URL:           m.pageURL(title, ""),
		JSON:          body,
		Authorization: m.authorization(),
	}, &wire)
	if err != nil {
		return nil, err
	}
	return wire.toPage(), nil
}
