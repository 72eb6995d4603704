package wiki

import (
	"context"
	"fmt"
	"iter"

	werrors "github.com/olgasafonova/wikibridge/internal/errors"
)

// History describes a walk over a page's revisions, newest first. It is a
// reusable value: the transform methods return new descriptors and never
// touch the network, and each call to All or Slice re-executes the
// underlying requests from scratch.
type History struct {
	client    *Client
	title     string
	filter    Filter
	olderThan int64
	newerThan int64
	limit     int
}

// Filter restricts iteration to revisions of one kind: reverted,
// anonymous, bot or minor edits.
func (h History) Filter(f Filter) History {
	h.filter = f
	return h
}

// OlderThan starts iteration strictly below the given revision id instead
// of at the newest revision.
func (h History) OlderThan(id int64) History {
	h.olderThan = id
	return h
}

// NewerThan stops iteration before revisions at or below the given id.
func (h History) NewerThan(id int64) History {
	h.newerThan = id
	return h
}

// Limit caps the number of revisions yielded. Zero means no cap.
func (h History) Limit(n int) History {
	h.limit = n
	return h
}

// All iterates the described revisions. Batches are fetched on demand as
// the consumer advances, so an early break stops paging immediately.
// Revisions already yielded stay valid if a later batch fails; the failure
// is yielded once as the final element.
func (h History) All(ctx context.Context) iter.Seq2[Revision, error] {
	return func(yield func(Revision, error) bool) {
		q := historyQuery{title: h.title, filter: h.filter, olderThan: h.olderThan}
		st := &historyState{}
		cursor := ""
		yielded := 0

		for {
			var batch revisionBatch
			err := h.client.run(ctx, "history_batch", h.title, func(ctx context.Context, b backend) error {
				var err error
				batch, err = b.historyBatch(ctx, q, cursor, st)
				return err
			})
			if err != nil {
				yield(Revision{}, err)
				return
			}

			for _, rev := range batch.revisions {
				if h.newerThan > 0 && rev.ID <= h.newerThan {
					return
				}
				if !yield(rev, nil) {
					return
				}
				yielded++
				if h.limit > 0 && yielded >= h.limit {
					return
				}
			}

			if batch.cursor == "" {
				return
			}
			cursor = batch.cursor
		}
	}
}

// Collect drains All into a slice, stopping at the first error.
func (h History) Collect(ctx context.Context) ([]Revision, error) {
	var revisions []Revision
	for rev, err := range h.All(ctx) {
		if err != nil {
			return revisions, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

// Slice returns the revisions from `from` (inclusive) down to `to`
// (exclusive), newest first. The from revision is resolved directly, so a
// bad id fails fast; the rest comes from a bounded iteration.
func (h History) Slice(ctx context.Context, from, to int64) ([]Revision, error) {
	if from <= to {
		return nil, werrors.NewValidationError("from", fmt.Sprintf("%d", from),
			fmt.Sprintf("from revision %d must be newer than to revision %d", from, to))
	}

	head, err := h.client.fetchRevision(ctx, from)
	if err != nil {
		return nil, err
	}

	revisions := []Revision{head.Revision}
	for rev, err := range h.OlderThan(from).NewerThan(to).Limit(0).All(ctx) {
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}
