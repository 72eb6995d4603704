package wiki

import (
	"context"
)

// Protocol names, used in logs, metrics and traces.
const (
	protocolModern = "modern"
	protocolLegacy = "legacy"
)

// pageMode selects how much of a page to resolve in one fetch.
type pageMode int

const (
	pageBare pageMode = iota
	pageSource
	pageHTML
)

func (m pageMode) String() string {
	switch m {
	case pageSource:
		return "source"
	case pageHTML:
		return "html"
	default:
		return "bare"
	}
}

// Filter names a history filter kind.
type Filter string

const (
	FilterNone      Filter = ""
	FilterReverted  Filter = "reverted"
	FilterAnonymous Filter = "anonymous"
	FilterBot       Filter = "bot"
	FilterMinor     Filter = "minor"
)

// historyQuery carries the descriptor fields a backend needs to fetch one
// history batch. OlderThan is an exclusive upper revision-id bound; zero
// means "start from the newest revision".
type historyQuery struct {
	title     string
	filter    Filter
	olderThan int64
}

// historyState holds per-iteration state a backend may need across batches.
// The legacy dialect fetches the page's bot-flagged contributor set once per
// iteration; the modern dialect ignores it.
type historyState struct {
	botUsers   map[int64]struct{}
	botFetched bool
}

// revisionBatch is one fetched slice of a page's history, newest first,
// already filtered and fully translated. An empty cursor means the
// sequence is exhausted.
type revisionBatch struct {
	revisions []Revision
	cursor    string
}

// backend is the capability contract both wire dialects satisfy. The
// legacy implementation hides every translation recipe behind it, so
// callers above this interface never see which protocol is live.
type backend interface {
	protocol() string

	getPage(ctx context.Context, title string, mode pageMode) (*Page, error)
	getRevision(ctx context.Context, id int64) (*RevisionWithPage, error)
	getFile(ctx context.Context, title string) (*File, error)

	languageLinks(ctx context.Context, title string) ([]LanguageLink, error)
	mediaLinks(ctx context.Context, title string) ([]File, error)

	searchPages(ctx context.Context, q string, limit int) ([]SearchResult, error)
	searchTitles(ctx context.Context, q string, limit int) ([]SearchResult, error)

	compare(ctx context.Context, from, to int64) (*Diff, error)

	historyBatch(ctx context.Context, q historyQuery, cursor string, st *historyState) (revisionBatch, error)

	createPage(ctx context.Context, title, source string, comment *string) (*Page, error)
	updatePage(ctx context.Context, title, source string, comment *string, baseRevisionID int64) (*Page, error)
}
