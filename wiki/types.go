package wiki

import (
	"strings"
	"time"
)

// Constants for response limits
const (
	MinSearchLimit = 1
	MaxSearchLimit = 100

	// HistoryPageSize is the batch size used when paging through revision
	// history. The modern endpoint pages in groups of at most 20; the legacy
	// backend requests the same amount per continuation step so both dialects
	// produce identical batch boundaries.
	HistoryPageSize = 20
)

// User identifies the author of a revision or upload. ID is nil for
// anonymous and system edits (the legacy API reports those as userid 0).
type User struct {
	Name string `json:"name"`
	ID   *int64 `json:"id"`
}

// License describes the wiki-wide content license.
type License struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// LatestRef points at the newest revision of a page.
type LatestRef struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Page is a fully resolved, immutable page snapshot. Source and HTML are
// populated only when the page was fetched through WithSource or WithHTML.
type Page struct {
	ID           int64     `json:"id"`
	Key          string    `json:"key"`
	Title        string    `json:"title"`
	Latest       LatestRef `json:"latest"`
	ContentModel string    `json:"content_model"`
	License      License   `json:"license"`
	Source       string    `json:"source,omitempty"`
	HTML         string    `json:"html,omitempty"`
}

// Revision is one entry in a page's edit history. Comment is nil when the
// edit summary was suppressed; Delta is nil for a page's first revision.
type Revision struct {
	ID        int64     `json:"id"`
	User      User      `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Comment   *string   `json:"comment"`
	Size      int64     `json:"size"`
	Delta     *int64    `json:"delta"`
	Minor     bool      `json:"minor"`
}

// PageRef is the page a revision belongs to.
type PageRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// RevisionWithPage is a revision together with its page reference, as
// returned by revision lookups and history iteration.
type RevisionWithPage struct {
	Revision
	Page PageRef `json:"page"`
}

// LanguageLink points at the same page on a wiki in another language.
type LanguageLink struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Key   string `json:"key"`
	Title string `json:"title"`
}

// FileFormat describes one rendition of a file. Size, Width, Height and
// Duration are nil when the backend has no meaningful value for them.
type FileFormat struct {
	MediaType string   `json:"mediatype"`
	Size      *int64   `json:"size"`
	Width     *int64   `json:"width"`
	Height    *int64   `json:"height"`
	Duration  *float64 `json:"duration"`
	URL       string   `json:"url"`
}

// FileUpload records who uploaded the latest version of a file and when.
type FileUpload struct {
	Timestamp time.Time `json:"timestamp"`
	User      User      `json:"user"`
}

// File is a fully resolved file description. When the backend has no
// distinct thumbnail rendition, Thumbnail carries the original as a
// stand-in so callers can always rely on it being present.
type File struct {
	Title              string     `json:"title"`
	FileDescriptionURL string     `json:"file_description_url"`
	Latest             FileUpload `json:"latest"`
	Preferred          FileFormat `json:"preferred"`
	Original           FileFormat `json:"original"`
	Thumbnail          FileFormat `json:"thumbnail"`
}

// SearchResult is one hit from a page or title search.
type SearchResult struct {
	ID          int64   `json:"id"`
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Excerpt     string  `json:"excerpt,omitempty"`
	Description *string `json:"description"`
}

// Diff is the comparison between two revisions. Lines and their highlight
// ranges are passed through from the backend unmodified; byte offsets are
// never re-encoded.
type Diff struct {
	From  DiffSide   `json:"from"`
	To    DiffSide   `json:"to"`
	Lines []DiffLine `json:"diff"`
}

// DiffSide identifies one side of a comparison.
type DiffSide struct {
	ID       int64         `json:"id"`
	SlotRole string        `json:"slot_role"`
	Sections []DiffSection `json:"sections,omitempty"`
}

// DiffSection locates a heading in one side's source.
type DiffSection struct {
	Level   int64  `json:"level"`
	Heading string `json:"heading"`
	Offset  int64  `json:"offset"`
}

// DiffLine line types, matching the wire encoding.
const (
	DiffLineContext     = 0
	DiffLineAdded       = 1
	DiffLineDeleted     = 2
	DiffLineChanged     = 3
	DiffLineMovedTarget = 4
	DiffLineMovedSource = 5
)

// DiffLine is a single line-level change record.
type DiffLine struct {
	Type            int              `json:"type"`
	LineNumber      *int64           `json:"lineNumber,omitempty"`
	Text            string           `json:"text"`
	Offset          DiffOffset       `json:"offset"`
	HighlightRanges []HighlightRange `json:"highlightRanges,omitempty"`
	MoveInfo        *MoveInfo        `json:"moveInfo,omitempty"`
}

// DiffOffset is the byte offset of a line in each side's source.
type DiffOffset struct {
	From *int64 `json:"from"`
	To   *int64 `json:"to"`
}

// HighlightRange marks a changed byte range within a line.
type HighlightRange struct {
	Start  int64 `json:"start"`
	Length int64 `json:"length"`
	Type   int   `json:"type"`
}

// MoveInfo links the two halves of a paragraph move.
type MoveInfo struct {
	ID            string `json:"id"`
	LinkID        string `json:"linkId"`
	LinkDirection string `json:"linkDirection"`
}

// titleKey derives the URL-safe key for a title: every space becomes an
// underscore, consecutive spaces included.
func titleKey(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

// keyTitle is the reverse mapping, used when only a key is known.
func keyTitle(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
