package wiki

import (
	"context"
	"fmt"

	werrors "github.com/olgasafonova/wikibridge/internal/errors"
)

// MCP Tool wrapper methods
// These methods wrap the client API with Args/Result types for MCP integration.

const defaultSearchLimit = 10

// GetPageMCP is the MCP wrapper for page fetches
func (c *Client) GetPageMCP(ctx context.Context, args GetPageArgs) (GetPageResult, error) {
	handle := c.Page(args.Title)
	switch args.Format {
	case "", "bare":
	case "source":
		handle = handle.WithSource()
	case "html":
		handle = handle.WithHTML()
	default:
		return GetPageResult{}, werrors.NewValidationError("format", args.Format,
			`format must be "bare", "source" or "html"`)
	}

	page, err := handle.Get(ctx)
	if err != nil {
		return GetPageResult{}, err
	}
	return GetPageResult{Page: page}, nil
}

// GetRevisionMCP is the MCP wrapper for revision fetches
func (c *Client) GetRevisionMCP(ctx context.Context, args GetRevisionArgs) (GetRevisionResult, error) {
	rev, err := c.Revision(args.ID).Get(ctx)
	if err != nil {
		return GetRevisionResult{}, err
	}
	return GetRevisionResult{Revision: rev}, nil
}

// GetHistoryMCP is the MCP wrapper for history listing
func (c *Client) GetHistoryMCP(ctx context.Context, args GetHistoryArgs) (GetHistoryResult, error) {
	switch Filter(args.Filter) {
	case FilterNone, FilterReverted, FilterAnonymous, FilterBot, FilterMinor:
	default:
		return GetHistoryResult{}, werrors.NewValidationError("filter", args.Filter,
			`filter must be "reverted", "anonymous", "bot" or "minor"`)
	}

	limit := args.Limit
	if limit <= 0 {
		limit = HistoryPageSize
	}

	history := c.History(args.Title).
		Filter(Filter(args.Filter)).
		OlderThan(args.OlderThan).
		NewerThan(args.NewerThan).
		Limit(limit)

	revisions, err := history.Collect(ctx)
	if err != nil {
		return GetHistoryResult{}, err
	}
	return GetHistoryResult{Revisions: revisions, Count: len(revisions)}, nil
}

// CompareRevisionsMCP is the MCP wrapper for Compare
func (c *Client) CompareRevisionsMCP(ctx context.Context, args CompareRevisionsArgs) (CompareRevisionsResult, error) {
	diff, err := c.Compare(ctx, args.From, args.To)
	if err != nil {
		return CompareRevisionsResult{}, err
	}
	return CompareRevisionsResult{Diff: diff}, nil
}

// GetLanguageLinksMCP is the MCP wrapper for LanguageLinks
func (c *Client) GetLanguageLinksMCP(ctx context.Context, args GetLanguageLinksArgs) (GetLanguageLinksResult, error) {
	links, err := c.LanguageLinks(ctx, args.Title)
	if err != nil {
		return GetLanguageLinksResult{}, err
	}
	return GetLanguageLinksResult{Links: links, Count: len(links)}, nil
}

// GetMediaLinksMCP is the MCP wrapper for MediaLinks
func (c *Client) GetMediaLinksMCP(ctx context.Context, args GetMediaLinksArgs) (GetMediaLinksResult, error) {
	files, err := c.MediaLinks(ctx, args.Title)
	if err != nil {
		return GetMediaLinksResult{}, err
	}
	return GetMediaLinksResult{Files: files, Count: len(files)}, nil
}

// GetFileMCP is the MCP wrapper for file fetches
func (c *Client) GetFileMCP(ctx context.Context, args GetFileArgs) (GetFileResult, error) {
	file, err := c.File(args.Title).Get(ctx)
	if err != nil {
		return GetFileResult{}, err
	}
	return GetFileResult{File: file}, nil
}

// SearchPagesMCP is the MCP wrapper for SearchPages
func (c *Client) SearchPagesMCP(ctx context.Context, args SearchPagesArgs) (SearchResults, error) {
	limit := args.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	results, err := c.SearchPages(ctx, args.Query, limit)
	if err != nil {
		return SearchResults{}, err
	}
	return SearchResults{Results: results, Count: len(results)}, nil
}

// SearchTitlesMCP is the MCP wrapper for SearchTitles
func (c *Client) SearchTitlesMCP(ctx context.Context, args SearchTitlesArgs) (SearchResults, error) {
	limit := args.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	results, err := c.SearchTitles(ctx, args.Query, limit)
	if err != nil {
		return SearchResults{}, err
	}
	return SearchResults{Results: results, Count: len(results)}, nil
}

// CreatePageMCP is the MCP wrapper for CreatePage
func (c *Client) CreatePageMCP(ctx context.Context, args CreatePageArgs) (EditPageResult, error) {
	page, err := c.CreatePage(ctx, args.Title, args.Source, optionalComment(args.Comment))
	if err != nil {
		return EditPageResult{}, fmt.Errorf("failed to create page %q: %w", args.Title, err)
	}
	return EditPageResult{Page: page}, nil
}

// UpdatePageMCP is the MCP wrapper for UpdatePage
func (c *Client) UpdatePageMCP(ctx context.Context, args UpdatePageArgs) (EditPageResult, error) {
	page, err := c.UpdatePage(ctx, args.Title, args.Source, optionalComment(args.Comment), args.BaseRevisionID)
	if err != nil {
		return EditPageResult{}, fmt.Errorf("failed to update page %q: %w", args.Title, err)
	}
	return EditPageResult{Page: page}, nil
}

func optionalComment(comment string) *string {
	if comment == "" {
		return nil
	}
	return &comment
}
