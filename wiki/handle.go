package wiki

import (
	"context"
	"errors"
	"sync"
)

// PageHandle is a lazy reference to a page. Creating one performs no I/O;
// the first Get fetches the snapshot and memoizes it (the error included),
// so a handle observes the page at most once. Re-fetch by creating a new
// handle.
type PageHandle struct {
	client *Client
	title  string
	mode   pageMode

	once sync.Once
	page *Page
	err  error
}

// WithSource derives a handle that also resolves the page's wikitext.
// The derived handle fetches independently of the original.
func (h *PageHandle) WithSource() *PageHandle {
	return &PageHandle{client: h.client, title: h.title, mode: pageSource}
}

// WithHTML derives a handle that also resolves the rendered HTML.
func (h *PageHandle) WithHTML() *PageHandle {
	return &PageHandle{client: h.client, title: h.title, mode: pageHTML}
}

// Get resolves the page snapshot.
func (h *PageHandle) Get(ctx context.Context) (*Page, error) {
	h.once.Do(func() {
		h.page, h.err = h.client.fetchPage(ctx, h.title, h.mode)
	})
	return h.page, h.err
}

// Exists reports whether the page exists. A not-found API error resolves
// to false; every other failure surfaces as-is.
func (h *PageHandle) Exists(ctx context.Context) (bool, error) {
	_, err := h.Get(ctx)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// History returns a history descriptor for this page.
func (h *PageHandle) History() History {
	return h.client.History(h.title)
}

// RevisionHandle is a lazy reference to a revision by id.
type RevisionHandle struct {
	client *Client
	id     int64

	once sync.Once
	rev  *RevisionWithPage
	err  error
}

// Get resolves the revision, its size delta included.
func (h *RevisionHandle) Get(ctx context.Context) (*RevisionWithPage, error) {
	h.once.Do(func() {
		h.rev, h.err = h.client.fetchRevision(ctx, h.id)
	})
	return h.rev, h.err
}

// CompareTo returns the difference between this revision and another.
func (h *RevisionHandle) CompareTo(ctx context.Context, to int64) (*Diff, error) {
	return h.client.Compare(ctx, h.id, to)
}

// FileHandle is a lazy reference to a file description.
type FileHandle struct {
	client *Client
	title  string

	once sync.Once
	file *File
	err  error
}

// Get resolves the file description.
func (h *FileHandle) Get(ctx context.Context) (*File, error) {
	h.once.Do(func() {
		h.file, h.err = h.client.fetchFile(ctx, h.title)
	})
	return h.file, h.err
}

// Field accessors below resolve the handle on first use and read from the
// memoized snapshot afterwards, so any number of them costs one fetch.

// Title returns the canonical file title.
func (h *FileHandle) Title(ctx context.Context) (string, error) {
	file, err := h.Get(ctx)
	if err != nil {
		return "", err
	}
	return file.Title, nil
}

// DescriptionURL returns the URL of the file's description page.
func (h *FileHandle) DescriptionURL(ctx context.Context) (string, error) {
	file, err := h.Get(ctx)
	if err != nil {
		return "", err
	}
	return file.FileDescriptionURL, nil
}

// Latest returns the most recent upload of the file.
func (h *FileHandle) Latest(ctx context.Context) (FileUpload, error) {
	file, err := h.Get(ctx)
	if err != nil {
		return FileUpload{}, err
	}
	return file.Latest, nil
}

// Preferred returns the rendition best suited for display.
func (h *FileHandle) Preferred(ctx context.Context) (FileFormat, error) {
	file, err := h.Get(ctx)
	if err != nil {
		return FileFormat{}, err
	}
	return file.Preferred, nil
}

// Original returns the file as uploaded.
func (h *FileHandle) Original(ctx context.Context) (FileFormat, error) {
	file, err := h.Get(ctx)
	if err != nil {
		return FileFormat{}, err
	}
	return file.Original, nil
}

// Thumbnail returns the reduced-size rendition.
func (h *FileHandle) Thumbnail(ctx context.Context) (FileFormat, error) {
	file, err := h.Get(ctx)
	if err != nil {
		return FileFormat{}, err
	}
	return file.Thumbnail, nil
}
