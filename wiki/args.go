package wiki

// GetPageArgs contains parameters for fetching a page
type GetPageArgs struct {
	Title  string `json:"title" jsonschema:"required" jsonschema_description:"Page title, spaces allowed"`
	Format string `json:"format,omitempty" jsonschema_description:"What to resolve: \"bare\" metadata only (default), \"source\" with wikitext, \"html\" with rendered HTML"`
}

// GetPageResult is the result of fetching a page
type GetPageResult struct {
	Page *Page `json:"page"`
}

// GetRevisionArgs contains parameters for fetching a revision
type GetRevisionArgs struct {
	ID int64 `json:"id" jsonschema:"required" jsonschema_description:"Revision ID"`
}

// GetRevisionResult is the result of fetching a revision
type GetRevisionResult struct {
	Revision *RevisionWithPage `json:"revision"`
}

// GetHistoryArgs contains parameters for listing page history
type GetHistoryArgs struct {
	Title     string `json:"title" jsonschema:"required" jsonschema_description:"Page title"`
	Filter    string `json:"filter,omitempty" jsonschema_description:"Only include edits of one kind: \"reverted\", \"anonymous\", \"bot\" or \"minor\""`
	OlderThan int64  `json:"older_than,omitempty" jsonschema_description:"Start below this revision ID instead of at the newest revision"`
	NewerThan int64  `json:"newer_than,omitempty" jsonschema_description:"Stop before revisions at or below this revision ID"`
	Limit     int    `json:"limit,omitempty" jsonschema_description:"Max revisions to return (default 20)"`
}

// GetHistoryResult is the result of listing page history
type GetHistoryResult struct {
	Revisions []Revision `json:"revisions"`
	Count     int        `json:"count"`
}

// CompareRevisionsArgs contains parameters for comparing two revisions
type CompareRevisionsArgs struct {
	From int64 `json:"from" jsonschema:"required" jsonschema_description:"Source revision ID"`
	To   int64 `json:"to" jsonschema:"required" jsonschema_description:"Target revision ID"`
}

// CompareRevisionsResult is the result of comparing two revisions
type CompareRevisionsResult struct {
	Diff *Diff `json:"diff"`
}

// GetLanguageLinksArgs contains parameters for listing language links
type GetLanguageLinksArgs struct {
	Title string `json:"title" jsonschema:"required" jsonschema_description:"Page title"`
}

// GetLanguageLinksResult is the result of listing language links
type GetLanguageLinksResult struct {
	Links []LanguageLink `json:"links"`
	Count int            `json:"count"`
}

// GetMediaLinksArgs contains parameters for listing files used on a page
type GetMediaLinksArgs struct {
	Title string `json:"title" jsonschema:"required" jsonschema_description:"Page title"`
}

// GetMediaLinksResult is the result of listing files used on a page
type GetMediaLinksResult struct {
	Files []File `json:"files"`
	Count int    `json:"count"`
}

// GetFileArgs contains parameters for fetching a file description
type GetFileArgs struct {
	Title string `json:"title" jsonschema:"required" jsonschema_description:"File title, with or without the File: prefix"`
}

// GetFileResult is the result of fetching a file description
type GetFileResult struct {
	File *File `json:"file"`
}

// SearchPagesArgs contains parameters for a full-text search
type SearchPagesArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"Search text"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Max results, 1-100 (default 10)"`
}

// SearchTitlesArgs contains parameters for a title autocomplete search
type SearchTitlesArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"Title prefix to complete"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Max results, 1-100 (default 10)"`
}

// SearchResults is the result of either search variant
type SearchResults struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// CreatePageArgs contains parameters for creating a page
type CreatePageArgs struct {
	Title   string `json:"title" jsonschema:"required" jsonschema_description:"Title for the new page"`
	Source  string `json:"source" jsonschema:"required" jsonschema_description:"Wikitext content"`
	Comment string `json:"comment,omitempty" jsonschema_description:"Edit summary"`
}

// UpdatePageArgs contains parameters for replacing a page's content
type UpdatePageArgs struct {
	Title          string `json:"title" jsonschema:"required" jsonschema_description:"Title of the page to update"`
	Source         string `json:"source" jsonschema:"required" jsonschema_description:"Replacement wikitext content"`
	Comment        string `json:"comment,omitempty" jsonschema_description:"Edit summary"`
	BaseRevisionID int64  `json:"base_revision_id,omitempty" jsonschema_description:"Revision the edit is based on, for conflict detection"`
}

// EditPageResult is the result of a create or update
type EditPageResult struct {
	Page *Page `json:"page"`
}
