package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/olgasafonova/wikibridge/internal/base"
	"github.com/olgasafonova/wikibridge/metrics"
)

// legacyBackend reconstructs every modern response shape from the
// parameter-based action dialect. All translation recipes live here;
// callers above the backend interface never see the difference.
type legacyBackend struct {
	client   *Client
	endpoint string // .../api.php
}

func newLegacyBackend(c *Client, endpoint string) *legacyBackend {
	return &legacyBackend{client: c, endpoint: endpoint}
}

func (l *legacyBackend) protocol() string { return protocolLegacy }

// ========== Wire shapes (formatversion=2) ==========

type actionResponse struct {
	Continue *struct {
		RvContinue string `json:"rvcontinue"`
	} `json:"continue"`
	Query *actionQuery `json:"query"`
	Parse *actionParse `json:"parse"`
	Edit  *actionEdit  `json:"edit"`
}

type actionQuery struct {
	Pages      []actionPage `json:"pages"`
	RightsInfo *struct {
		URL  string `json:"url"`
		Text string `json:"text"`
	} `json:"rightsinfo"`
	Search []struct {
		PageID  int64  `json:"pageid"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"search"`
	PrefixSearch []struct {
		PageID int64  `json:"pageid"`
		Title  string `json:"title"`
	} `json:"prefixsearch"`
	Tokens    map[string]string `json:"tokens"`
	BadRevIDs json.RawMessage   `json:"badrevids"`
}

type actionPage struct {
	PageID       int64            `json:"pageid"`
	Title        string           `json:"title"`
	Missing      bool             `json:"missing"`
	ContentModel string           `json:"contentmodel"`
	Revisions    []actionRevision `json:"revisions"`
	Images       []struct {
		Title string `json:"title"`
	} `json:"images"`
	ImageInfo []actionImageInfo `json:"imageinfo"`
	Thumbnail *struct {
		Source string `json:"source"`
		Width  int64  `json:"width"`
		Height int64  `json:"height"`
	} `json:"thumbnail"`
	Contributors []struct {
		UserID int64  `json:"userid"`
		Name   string `json:"name"`
	} `json:"contributors"`
}

type actionRevision struct {
	RevID         int64     `json:"revid"`
	ParentID      int64     `json:"parentid"`
	Minor         bool      `json:"minor"`
	Anon          bool      `json:"anon"`
	User          string    `json:"user"`
	UserID        int64     `json:"userid"`
	Timestamp     time.Time `json:"timestamp"`
	Size          int64     `json:"size"`
	Comment       string    `json:"comment"`
	CommentHidden bool      `json:"commenthidden"`
	Tags          []string  `json:"tags"`
	Slots         map[string]struct {
		ContentModel string `json:"contentmodel"`
		Content      string `json:"content"`
	} `json:"slots"`
}

type actionImageInfo struct {
	Timestamp      time.Time `json:"timestamp"`
	User           string    `json:"user"`
	UserID         int64     `json:"userid"`
	Size           int64     `json:"size"`
	Width          int64     `json:"width"`
	Height         int64     `json:"height"`
	Duration       float64   `json:"duration"`
	URL            string    `json:"url"`
	DescriptionURL string    `json:"descriptionurl"`
	MediaType      string    `json:"mediatype"`
}

type actionParse struct {
	Title     string `json:"title"`
	PageID    int64  `json:"pageid"`
	Text      string `json:"text"`
	LangLinks []struct {
		Lang     string `json:"lang"`
		Autonym  string `json:"autonym"`
		LangName string `json:"langname"`
		Title    string `json:"title"`
	} `json:"langlinks"`
}

type actionEdit struct {
	Result   string `json:"result"`
	PageID   int64  `json:"pageid"`
	Title    string `json:"title"`
	NewRevID int64  `json:"newrevid"`
}

// ========== Request plumbing ==========

func (l *legacyBackend) authorization() string {
	if l.client.config.HasToken() {
		return "Bearer " + l.client.config.Token
	}
	return ""
}

// request performs one GET action call, classifies error envelopes and
// decodes the success payload.
func (l *legacyBackend) request(ctx context.Context, params url.Values, out *actionResponse) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	body, status, err := l.client.transport.Do(ctx, base.Request{
		URL:           l.endpoint + "?" + params.Encode(),
		Authorization: l.authorization(),
	})
	if err != nil {
		return err
	}
	if apiErr := classify(body); apiErr != nil {
		return apiErr
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// post performs one mutating action call with an urlencoded body.
func (l *legacyBackend) post(ctx context.Context, form url.Values, out *actionResponse) error {
	form.Set("format", "json")
	form.Set("formatversion", "2")

	body, status, err := l.client.transport.Do(ctx, base.Request{
		Method:        http.MethodPost,
		URL:           l.endpoint,
		Form:          form,
		Authorization: l.authorization(),
	})
	if err != nil {
		return err
	}
	if apiErr := classify(body); apiErr != nil {
		return apiErr
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// firstPage returns the single page of a title- or revid-addressed query,
// converting a missing page into a classified not-found error.
func firstPage(resp *actionResponse, title string) (*actionPage, error) {
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, fmt.Errorf("unexpected response format: missing query pages")
	}
	page := &resp.Query.Pages[0]
	if page.Missing {
		return nil, &APIError{Code: "missingtitle", Message: fmt.Sprintf("The page %q does not exist.", title)}
	}
	return page, nil
}

// gather runs fns concurrently and returns the first error encountered,
// after all of them finish.
func gather(fns ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(fns))
	for i, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn()
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ========== Translation helpers ==========

// fileTitle strips the File: namespace token, keeping the substring after
// it. This is a literal string split, not title parsing.
func fileTitle(title string) string {
	if _, after, ok := strings.Cut(title, "File:"); ok {
		return after
	}
	return title
}

// schemeRelative rewrites an absolute legacy URL to the modern
// scheme-relative convention: the substring after the scheme token,
// prefixed with two slashes. Non-absolute URLs pass through unchanged.
func schemeRelative(u string) string {
	if _, after, ok := strings.Cut(u, "://"); ok {
		return "//" + after
	}
	return u
}

// legacyUserID normalizes the legacy dialect's userid 0 for anonymous and
// system edits to a null id.
func legacyUserID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// legacyDimension normalizes a zero width/height/size, which the legacy
// dialect reports when no meaningful value exists.
func legacyDimension(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func (r *actionRevision) toRevision() Revision {
	rev := Revision{
		ID:        r.RevID,
		User:      User{Name: r.User, ID: legacyUserID(r.UserID)},
		Timestamp: r.Timestamp,
		Size:      r.Size,
		Minor:     r.Minor,
	}
	if !r.CommentHidden {
		comment := r.Comment
		rev.Comment = &comment
	}
	return rev
}

// ========== Page ==========

func (l *legacyBackend) getPage(ctx context.Context, title string, mode pageMode) (*Page, error) {
	var (
		page     *Page
		html     string
		wantHTML = mode == pageHTML
	)

	fetchMeta := func() error {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("titles", title)
		params.Set("prop", "revisions|info")
		params.Set("rvlimit", "1")
		if mode == pageSource {
			params.Set("rvprop", "ids|timestamp|content")
			params.Set("rvslots", "main")
		} else {
			params.Set("rvprop", "ids|timestamp")
		}
		params.Set("meta", "siteinfo")
		params.Set("siprop", "rightsinfo")

		var resp actionResponse
		if err := l.request(ctx, params, &resp); err != nil {
			return err
		}
		wire, err := firstPage(&resp, title)
		if err != nil {
			return err
		}
		if len(wire.Revisions) == 0 {
			return fmt.Errorf("unexpected response format: page %q has no revision", title)
		}
		rev := wire.Revisions[0]

		page = &Page{
			ID:           wire.PageID,
			Key:          titleKey(wire.Title),
			Title:        wire.Title,
			Latest:       LatestRef{ID: rev.RevID, Timestamp: rev.Timestamp},
			ContentModel: wire.ContentModel,
		}
		if resp.Query.RightsInfo != nil {
			page.License = License{URL: resp.Query.RightsInfo.URL, Title: resp.Query.RightsInfo.Text}
		}
		if mode == pageSource {
			if slot, ok := rev.Slots["main"]; ok {
				page.Source = slot.Content
			}
		}
		return nil
	}

	fetchHTML := func() error {
		params := url.Values{}
		params.Set("action", "parse")
		params.Set("page", title)
		params.Set("prop", "text")

		var resp actionResponse
		if err := l.request(ctx, params, &resp); err != nil {
			return err
		}
		if resp.Parse == nil {
			return fmt.Errorf("unexpected response format: missing parse result")
		}
		html = resp.Parse.Text
		return nil
	}

	var err error
	if wantHTML {
		// Metadata and rendered HTML are independent; fetch them together.
		err = gather(fetchMeta, fetchHTML)
	} else {
		err = fetchMeta()
	}
	if err != nil {
		return nil, err
	}

	page.HTML = html
	return page, nil
}

// ========== Revision ==========

// parentSize fetches only the size of a revision, the secondary request
// behind every delta reconstruction.
func (l *legacyBackend) parentSize(ctx context.Context, id int64) (int64, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("revids", strconv.FormatInt(id, 10))
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids|size")

	metrics.RecordSecondaryFetch("parent_size")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return 0, err
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 || len(resp.Query.Pages[0].Revisions) == 0 {
		return 0, fmt.Errorf("unexpected response format: revision %d not returned", id)
	}
	return resp.Query.Pages[0].Revisions[0].Size, nil
}

// delta reconstructs the size delta for a revision: nil without any
// request when there is no parent, otherwise one size-only parent fetch.
func (l *legacyBackend) delta(ctx context.Context, rev *actionRevision) (*int64, error) {
	if rev.ParentID == 0 {
		return nil, nil
	}
	parent, err := l.parentSize(ctx, rev.ParentID)
	if err != nil {
		return nil, err
	}
	d := rev.Size - parent
	return &d, nil
}

func (l *legacyBackend) getRevision(ctx context.Context, id int64) (*RevisionWithPage, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("revids", strconv.FormatInt(id, 10))
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids|timestamp|user|userid|size|comment|flags")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Query != nil && len(resp.Query.BadRevIDs) > 0 {
		return nil, &APIError{Code: "nosuchrevid", Message: fmt.Sprintf("There is no revision with ID %d.", id)}
	}
	wire, err := firstPage(&resp, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if len(wire.Revisions) == 0 {
		return nil, fmt.Errorf("unexpected response format: revision %d not returned", id)
	}
	raw := wire.Revisions[0]

	rev := &RevisionWithPage{
		Revision: raw.toRevision(),
		Page:     PageRef{ID: wire.PageID, Title: wire.Title},
	}
	rev.Delta, err = l.delta(ctx, &raw)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// ========== Language links ==========

func (l *legacyBackend) languageLinks(ctx context.Context, title string) ([]LanguageLink, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "langlinks")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Parse == nil {
		return nil, fmt.Errorf("unexpected response format: missing parse result")
	}

	links := make([]LanguageLink, 0, len(resp.Parse.LangLinks))
	for _, ll := range resp.Parse.LangLinks {
		name := ll.Autonym
		if name == "" {
			name = ll.LangName
		}
		links = append(links, LanguageLink{
			Code:  ll.Lang,
			Name:  name,
			Key:   titleKey(ll.Title),
			Title: ll.Title,
		})
	}
	return links, nil
}

// ========== Files ==========

func (l *legacyBackend) getFile(ctx context.Context, title string) (*File, error) {
	full := "File:" + fileTitle(title)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", full)
	params.Set("prop", "imageinfo|pageimages")
	params.Set("iiprop", "timestamp|user|userid|size|url|mediatype")
	params.Set("piprop", "thumbnail")
	params.Set("pithumbsize", "300")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	wire, err := firstPage(&resp, full)
	if err != nil {
		return nil, err
	}
	if len(wire.ImageInfo) == 0 {
		return nil, &APIError{Code: "missingtitle", Message: fmt.Sprintf("The file %q does not exist.", full)}
	}
	ii := wire.ImageInfo[0]

	original := FileFormat{
		MediaType: ii.MediaType,
		Size:      legacyDimension(ii.Size),
		Width:     legacyDimension(ii.Width),
		Height:    legacyDimension(ii.Height),
		URL:       schemeRelative(ii.URL),
	}
	if ii.Duration > 0 {
		duration := ii.Duration
		original.Duration = &duration
	}

	// Without a distinct thumbnail rendition the original stands in, so
	// the normalized shape always carries all three formats.
	thumbnail := original
	if wire.Thumbnail != nil {
		thumbnail = FileFormat{
			MediaType: ii.MediaType,
			Width:     legacyDimension(wire.Thumbnail.Width),
			Height:    legacyDimension(wire.Thumbnail.Height),
			URL:       schemeRelative(wire.Thumbnail.Source),
		}
	}

	return &File{
		Title:              fileTitle(wire.Title),
		FileDescriptionURL: schemeRelative(ii.DescriptionURL),
		Latest: FileUpload{
			Timestamp: ii.Timestamp,
			User:      User{Name: ii.User, ID: legacyUserID(ii.UserID)},
		},
		Preferred: original,
		Original:  original,
		Thumbnail: thumbnail,
	}, nil
}

func (l *legacyBackend) mediaLinks(ctx context.Context, title string) ([]File, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "images")
	params.Set("imlimit", "max")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	wire, err := firstPage(&resp, title)
	if err != nil {
		return nil, err
	}

	// One detail fetch per image, issued concurrently and joined back in
	// the order the server listed them.
	files := make([]File, len(wire.Images))
	fns := make([]func() error, len(wire.Images))
	for i, img := range wire.Images {
		fns[i] = func() error {
			metrics.RecordSecondaryFetch("file_detail")
			file, err := l.getFile(ctx, img.Title)
			if err != nil {
				return err
			}
			files[i] = *file
			return nil
		}
	}
	if err := gather(fns...); err != nil {
		return nil, err
	}
	return files, nil
}

// ========== Search ==========

func (l *legacyBackend) searchPages(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", q)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Query == nil {
		return nil, fmt.Errorf("unexpected response format: missing query")
	}

	results := make([]SearchResult, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		results = append(results, SearchResult{
			ID:      hit.PageID,
			Key:     titleKey(hit.Title),
			Title:   hit.Title,
			Excerpt: hit.Snippet,
		})
	}
	return results, nil
}

func (l *legacyBackend) searchTitles(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "prefixsearch")
	params.Set("pssearch", q)
	params.Set("pslimit", strconv.Itoa(limit))

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Query == nil {
		return nil, fmt.Errorf("unexpected response format: missing query")
	}

	results := make([]SearchResult, 0, len(resp.Query.PrefixSearch))
	for _, hit := range resp.Query.PrefixSearch {
		results = append(results, SearchResult{
			ID:    hit.PageID,
			Key:   titleKey(hit.Title),
			Title: hit.Title,
		})
	}
	return results, nil
}

// ========== Compare ==========

// revisionSource fetches a revision's wikitext for diff reconstruction.
func (l *legacyBackend) revisionSource(ctx context.Context, id int64) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("revids", strconv.FormatInt(id, 10))
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids|content")
	params.Set("rvslots", "main")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return "", err
	}
	if resp.Query != nil && len(resp.Query.BadRevIDs) > 0 {
		return "", &APIError{Code: "nosuchrevid", Message: fmt.Sprintf("There is no revision with ID %d.", id)}
	}
	wire, err := firstPage(&resp, strconv.FormatInt(id, 10))
	if err != nil {
		return "", err
	}
	if len(wire.Revisions) == 0 {
		return "", fmt.Errorf("unexpected response format: revision %d not returned", id)
	}
	if slot, ok := wire.Revisions[0].Slots["main"]; ok {
		return slot.Content, nil
	}
	return "", fmt.Errorf("unexpected response format: revision %d has no main slot", id)
}

// compare reconstructs a line-level diff from the two revisions' sources.
// The legacy dialect has no structured comparison route, so the polyfill
// computes one: plain context/added/deleted lines with byte offsets, no
// intra-line highlight ranges.
func (l *legacyBackend) compare(ctx context.Context, from, to int64) (*Diff, error) {
	var fromSource, toSource string
	err := gather(
		func() error {
			var err error
			fromSource, err = l.revisionSource(ctx, from)
			return err
		},
		func() error {
			var err error
			toSource, err = l.revisionSource(ctx, to)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	return &Diff{
		From:  DiffSide{ID: from, SlotRole: "main"},
		To:    DiffSide{ID: to, SlotRole: "main"},
		Lines: lineDiff(fromSource, toSource),
	}, nil
}

// lineDiff computes line-level change records between two sources.
func lineDiff(fromSource, toSource string) []DiffLine {
	dmp := diffmatchpatch.New()
	fromChars, toChars, lines := dmp.DiffLinesToChars(fromSource, toSource)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(fromChars, toChars, false), lines)

	var (
		out        []DiffLine
		fromOffset int64
		toOffset   int64
		toLine     int64
	)
	for _, d := range diffs {
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			lineLen := int64(len(line)) + 1 // trailing newline

			switch d.Type {
			case diffmatchpatch.DiffEqual:
				toLine++
				n := toLine
				fo, to := fromOffset, toOffset
				out = append(out, DiffLine{
					Type:       DiffLineContext,
					LineNumber: &n,
					Text:       line,
					Offset:     DiffOffset{From: &fo, To: &to},
				})
				fromOffset += lineLen
				toOffset += lineLen

			case diffmatchpatch.DiffInsert:
				toLine++
				n := toLine
				to := toOffset
				out = append(out, DiffLine{
					Type:       DiffLineAdded,
					LineNumber: &n,
					Text:       line,
					Offset:     DiffOffset{To: &to},
				})
				toOffset += lineLen

			case diffmatchpatch.DiffDelete:
				fo := fromOffset
				out = append(out, DiffLine{
					Type:   DiffLineDeleted,
					Text:   line,
					Offset: DiffOffset{From: &fo},
				})
				fromOffset += lineLen
			}
		}
	}
	return out
}

// ========== History ==========

// botContributors fetches the page's bot-flagged contributor set, once per
// iteration. The contributor listing is capped server-side; a page with
// more distinct bot contributors than the cap is a known boundary of this
// polyfill.
func (l *legacyBackend) botContributors(ctx context.Context, title string) (map[int64]struct{}, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "contributors")
	params.Set("pcgroup", "bot")
	params.Set("pclimit", "max")

	metrics.RecordSecondaryFetch("bot_contributors")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return nil, err
	}
	wire, err := firstPage(&resp, title)
	if err != nil {
		return nil, err
	}

	bots := make(map[int64]struct{}, len(wire.Contributors))
	for _, c := range wire.Contributors {
		bots[c.UserID] = struct{}{}
	}
	return bots, nil
}

// matchesFilter applies one history filter to a raw revision. The bot
// filter tests page-level contributor membership because "bot" is a
// per-user role, not a per-revision tag.
func matchesFilter(rev *actionRevision, filter Filter, bots map[int64]struct{}) bool {
	switch filter {
	case FilterMinor:
		return rev.Minor
	case FilterAnonymous:
		return rev.Anon || rev.UserID == 0
	case FilterBot:
		_, ok := bots[rev.UserID]
		return ok
	case FilterReverted:
		for _, tag := range rev.Tags {
			if tag == "mw-reverted" {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// historyBatch requests a superset of revisions via continuation-token
// paging, applies the filter client-side and translates the survivors
// (delta reconstruction included) concurrently, joining results back into
// the order the server returned them.
func (l *legacyBackend) historyBatch(ctx context.Context, q historyQuery, cursor string, st *historyState) (revisionBatch, error) {
	if q.filter == FilterBot && !st.botFetched {
		bots, err := l.botContributors(ctx, q.title)
		if err != nil {
			return revisionBatch{}, err
		}
		st.botUsers = bots
		st.botFetched = true
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", q.title)
	params.Set("prop", "revisions")
	rvprop := "ids|timestamp|user|userid|size|comment|flags"
	if q.filter == FilterReverted {
		rvprop += "|tags"
	}
	params.Set("rvprop", rvprop)
	params.Set("rvlimit", strconv.Itoa(HistoryPageSize))
	if cursor != "" {
		params.Set("rvcontinue", cursor)
	} else if q.olderThan > 0 {
		params.Set("rvstartid", strconv.FormatInt(q.olderThan, 10))
	}

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return revisionBatch{}, err
	}
	metrics.HistoryBatchesTotal.WithLabelValues(protocolLegacy).Inc()

	wire, err := firstPage(&resp, q.title)
	if err != nil {
		return revisionBatch{}, err
	}

	// Parent sizes already present in the raw batch resolve deltas
	// locally; only parents outside the batch need a secondary fetch.
	sizes := make(map[int64]int64, len(wire.Revisions))
	for _, rev := range wire.Revisions {
		sizes[rev.RevID] = rev.Size
	}

	var kept []actionRevision
	for _, rev := range wire.Revisions {
		// rvstartid is inclusive; the olderThan bound is exclusive.
		if q.olderThan > 0 && rev.RevID >= q.olderThan {
			continue
		}
		if !matchesFilter(&rev, q.filter, st.botUsers) {
			metrics.HistoryRevisionsFiltered.WithLabelValues(string(q.filter)).Inc()
			continue
		}
		kept = append(kept, rev)
	}

	revisions := make([]Revision, len(kept))
	fns := make([]func() error, len(kept))
	for i, raw := range kept {
		fns[i] = func() error {
			rev := raw.toRevision()
			switch {
			case raw.ParentID == 0:
				// First revision of the page: no delta, no request.
			default:
				parent, ok := sizes[raw.ParentID]
				if !ok {
					var err error
					parent, err = l.parentSize(ctx, raw.ParentID)
					if err != nil {
						return err
					}
				}
				d := raw.Size - parent
				rev.Delta = &d
			}
			revisions[i] = rev
			return nil
		}
	}
	if err := gather(fns...); err != nil {
		return revisionBatch{}, err
	}

	batch := revisionBatch{revisions: revisions}
	if resp.Continue != nil {
		batch.cursor = resp.Continue.RvContinue
	}
	return batch, nil
}

// ========== Writes ==========

// csrfToken returns the caller-supplied edit token or obtains one from the
// server. Anonymous sessions receive the server's anonymous token.
func (l *legacyBackend) csrfToken(ctx context.Context) (string, error) {
	if l.client.config.CSRFToken != "" {
		return l.client.config.CSRFToken, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", "csrf")

	var resp actionResponse
	if err := l.request(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("failed to get edit token: %w", err)
	}
	if resp.Query == nil || resp.Query.Tokens["csrftoken"] == "" {
		return "", fmt.Errorf("unexpected response format: no edit token in response")
	}
	return resp.Query.Tokens["csrftoken"], nil
}

// edit performs one action=edit call and polyfills the modern response by
// resolving the resulting page.
func (l *legacyBackend) edit(ctx context.Context, form url.Values) (*Page, error) {
	token, err := l.csrfToken(ctx)
	if err != nil {
		return nil, err
	}
	form.Set("action", "edit")
	form.Set("token", token)

	var resp actionResponse
	if err := l.post(ctx, form, &resp); err != nil {
		return nil, err
	}
	if resp.Edit == nil {
		return nil, fmt.Errorf("unexpected response format: missing edit result")
	}
	if resp.Edit.Result != "Success" {
		return nil, &APIError{Code: "editfailed", Message: fmt.Sprintf("Edit failed: %s", resp.Edit.Result)}
	}

	return l.getPage(ctx, resp.Edit.Title, pageSource)
}

func (l *legacyBackend) createPage(ctx context.Context, title, source string, comment *string) (*Page, error) {
	form := url.Values{}
	form.Set("title", title)
	form.Set("text", source)
	form.Set("createonly", "1")
	if comment != nil {
		form.Set("summary", *comment)
	}
	return l.edit(ctx, form)
}

func (l *legacyBackend) updatePage(ctx context.Context, title, source string, comment *string, baseRevisionID int64) (*Page, error) {
	form := url.Values{}
	form.Set("title", title)
	form.Set("text", source)
	if comment != nil {
		form.Set("summary", *comment)
	}
	if baseRevisionID > 0 {
		form.Set("baserevid", strconv.FormatInt(baseRevisionID, 10))
		form.Set("nocreate", "1")
	}
	return l.edit(ctx, form)
}
