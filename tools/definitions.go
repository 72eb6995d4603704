package tools

// AllTools contains all tool specifications for the wikibridge MCP server.
// Tools are organized by category for easier maintenance.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:     "wiki_get_page",
		Method:   "GetPage",
		Title:    "Get Page",
		Category: "read",
		Description: `Retrieve a wiki page: metadata, wikitext source or rendered HTML.

USE WHEN: User says "show me the X page", "what's on the Main Page", "read the FAQ".

NOT FOR: Finding which page contains information (use wiki_search_pages). Not for edit history (use wiki_get_history).

PARAMETERS:
- title: Page name (required)
- format: "bare" metadata only (default), "source" with wikitext, "html" with rendered HTML

RETURNS: Page ID, key, title, latest revision, content model, license, and the requested content. Works identically on modern and legacy wikis.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wiki_get_file",
		Method:   "GetFile",
		Title:    "Get File",
		Category: "read",
		Description: `Get the description of a file hosted on the wiki.

USE WHEN: User asks "show file X", "what size is Logo.png", "where is the image hosted".

NOT FOR: Listing the files used on a page (use wiki_get_media_links).

PARAMETERS:
- title: File name, with or without the "File:" prefix (required)

RETURNS: Uploader, upload time, and the preferred, original and thumbnail renditions with URLs and dimensions.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wiki_get_media_links",
		Method:   "GetMediaLinks",
		Title:    "Get Media Links",
		Category: "read",
		Description: `List the files used on a wiki page, fully described.

USE WHEN: User asks "what images are on X", "list media on this page", "show files used in the article".

NOT FOR: A single known file (use wiki_get_file - cheaper).

PARAMETERS:
- title: Page name (required)

RETURNS: One file description per file used on the page, same shape as wiki_get_file.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wiki_get_language_links",
		Method:   "GetLanguageLinks",
		Title:    "Get Language Links",
		Category: "read",
		Description: `List a page's counterparts on wikis in other languages.

USE WHEN: User asks "is there a German version of X", "what languages is this page in".

PARAMETERS:
- title: Page name (required)

RETURNS: Language code, language name, and the counterpart page's key and title.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     "wiki_search_pages",
		Method:   "SearchPages",
		Title:    "Search Pages",
		Category: "search",
		Description: `Full-text search across the wiki's page content.

USE WHEN: User asks "find pages about X", "where is X documented", "search for X".

NOT FOR: Completing a partially known title (use wiki_search_titles).

PARAMETERS:
- query: Search text (required)
- limit: Max results, 1-100 (default 10)

RETURNS: Matching pages with excerpts highlighting the match.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wiki_search_titles",
		Method:   "SearchTitles",
		Title:    "Search Titles",
		Category: "search",
		Description: `Autocomplete page titles from a prefix.

USE WHEN: User knows roughly what a page is called: "pages starting with Conf", "complete the title Installa...".

NOT FOR: Searching page content (use wiki_search_pages).

PARAMETERS:
- query: Title prefix (required)
- limit: Max results, 1-100 (default 10)

RETURNS: Matching page titles with IDs and keys.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// HISTORY TOOLS
	// ==========================================================================
	{
		Name:     "wiki_get_revision",
		Method:   "GetRevision",
		Title:    "Get Revision",
		Category: "history",
		Description: `Get a single revision by ID, including its size delta.

USE WHEN: User asks "show revision 12345", "who made edit X", "how big was that change".

NOT FOR: Listing a page's revisions (use wiki_get_history).

PARAMETERS:
- id: Revision ID (required)

RETURNS: Author, timestamp, edit summary, size, size delta, minor flag, and the page the revision belongs to.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wiki_get_history",
		Method:   "GetHistory",
		Title:    "Get History",
		Category: "history",
		Description: `List a page's revisions, newest first, with optional filtering.

USE WHEN: User asks "who edited the FAQ", "show edit history of X", "list bot edits on this page".

NOT FOR: A single known revision (use wiki_get_revision). Not for comparing versions (use wiki_compare_revisions).

PARAMETERS:
- title: Page name (required)
- filter: Only "reverted", "anonymous", "bot" or "minor" edits (optional)
- older_than: Start below this revision ID (optional)
- newer_than: Stop at this revision ID, exclusive (optional)
- limit: Max revisions (default 20)

RETURNS: Revisions with authors, timestamps, summaries, sizes and deltas.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wiki_compare_revisions",
		Method:   "CompareRevisions",
		Title:    "Compare Revisions",
		Category: "history",
		Description: `Compare two revisions and show the line-level diff.

USE WHEN: User asks "what changed between versions", "show the diff", "compare old and new".

NOT FOR: Just listing revisions (use wiki_get_history).

PARAMETERS:
- from: Source revision ID (required)
- to: Target revision ID (required)

RETURNS: Line-level change records with byte offsets; on modern wikis also intra-line highlight ranges.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// WRITE TOOLS
	// ==========================================================================
	{
		Name:     "wiki_create_page",
		Method:   "CreatePage",
		Title:    "Create Page",
		Category: "write",
		Description: `Create a new wiki page.

USE WHEN: User says "create a page about X", "add a new article".

NOT FOR: Changing an existing page (use wiki_update_page).

PARAMETERS:
- title: Title for the new page (required)
- source: Wikitext content (required)
- comment: Edit summary (recommended)

RETURNS: The created page with its first revision.

NOTE: Fails if a page with that title already exists.`,
		ReadOnly:    false,
		Destructive: false,
		Idempotent:  false,
		OpenWorld:   true,
	},
	{
		Name:     "wiki_update_page",
		Method:   "UpdatePage",
		Title:    "Update Page",
		Category: "write",
		Description: `Replace the content of an existing wiki page.

USE WHEN: User says "rewrite the About page", "replace the content of X".

NOT FOR: Creating new pages (use wiki_create_page).

PARAMETERS:
- title: Page name (required)
- source: Replacement wikitext content (required)
- comment: Edit summary (recommended)
- base_revision_id: Revision the edit is based on; a concurrent edit the server cannot merge is rejected (recommended)

WARNING: This overwrites the entire page content.`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  false,
		OpenWorld:   true,
	},
}
