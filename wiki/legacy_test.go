package wiki

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func legacyClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := newLegacyServer(t, handler)
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !client.Legacy() {
		t.Fatal("expected legacy backend")
	}
	return client
}

func TestFileTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"File:Logo.png", "Logo.png"},
		{"Logo.png", "Logo.png"},
		{"File:Name with spaces.jpg", "Name with spaces.jpg"},
	}
	for _, tt := range tests {
		if got := fileTitle(tt.in); got != tt.want {
			t.Errorf("fileTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSchemeRelative(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://uploads.example.org/5/5f/Logo.png", "//uploads.example.org/5/5f/Logo.png"},
		{"http://uploads.example.org/a.png", "//uploads.example.org/a.png"},
		{"//uploads.example.org/a.png", "//uploads.example.org/a.png"},
		{"/relative/path.png", "/relative/path.png"},
	}
	for _, tt := range tests {
		if got := schemeRelative(tt.in); got != tt.want {
			t.Errorf("schemeRelative(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"A B", "A_B"},
		{"A  B", "A__B"}, // every space, consecutive included
		{"Single", "Single"},
		{"Main Page", "Main_Page"},
	}
	for _, tt := range tests {
		if got := titleKey(tt.title); got != tt.want {
			t.Errorf("titleKey(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestLegacyGetPage(t *testing.T) {
	var gotParams map[string]string
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotParams = map[string]string{
			"prop":   r.FormValue("prop"),
			"rvprop": r.FormValue("rvprop"),
			"meta":   r.FormValue("meta"),
			"siprop": r.FormValue("siprop"),
		}
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{
					"pageid": 42, "title": "Main Page", "contentmodel": "wikitext",
					"revisions": []map[string]any{{
						"revid": 100, "parentid": 99, "timestamp": "2024-05-01T10:00:00Z",
						"slots": map[string]any{"main": map[string]any{"contentmodel": "wikitext", "content": "Hello"}},
					}},
				}},
				"rightsinfo": map[string]any{
					"url":  "https://creativecommons.org/licenses/by-sa/4.0/",
					"text": "Creative Commons Attribution-Share Alike 4.0",
				},
			},
		})
	})

	page, err := client.Page("Main Page").WithSource().Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Page metadata and the wiki-wide license ride on one combined query.
	if gotParams["prop"] != "revisions|info" || gotParams["meta"] != "siteinfo" || gotParams["siprop"] != "rightsinfo" {
		t.Errorf("combined query params = %+v", gotParams)
	}
	if !strings.Contains(gotParams["rvprop"], "content") {
		t.Errorf("rvprop = %q, want content included for source mode", gotParams["rvprop"])
	}

	if page.ID != 42 || page.Key != "Main_Page" || page.Title != "Main Page" {
		t.Errorf("page identity = %+v", page)
	}
	if page.Latest.ID != 100 {
		t.Errorf("Latest.ID = %d, want 100", page.Latest.ID)
	}
	if page.License.Title != "Creative Commons Attribution-Share Alike 4.0" {
		t.Errorf("License = %+v", page.License)
	}
	if page.Source != "Hello" {
		t.Errorf("Source = %q, want %q", page.Source, "Hello")
	}
}

func TestLegacyGetPageMissing(t *testing.T) {
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{"title": "No Such Page", "missing": true}},
			},
		})
	})

	_, err := client.Page("No Such Page").Get(context.Background())
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want APIError", err)
	}
	if !apiErr.NotFound() {
		t.Errorf("NotFound() = false for %v", apiErr)
	}
}

func TestLegacyGetPageHTMLFetchesConcurrently(t *testing.T) {
	// Metadata query and parse call are independent; both must be issued.
	var queries, parses atomic.Int32
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.FormValue("action") {
		case "query":
			queries.Add(1)
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 42, "title": "Main Page", "contentmodel": "wikitext",
						"revisions": []map[string]any{{"revid": 100, "timestamp": "2024-05-01T10:00:00Z"}},
					}},
					"rightsinfo": map[string]any{"url": "https://example.org/l", "text": "L"},
				},
			})
		case "parse":
			parses.Add(1)
			writeJSON(t, w, map[string]any{
				"parse": map[string]any{"title": "Main Page", "pageid": 42, "text": "<p>Hello</p>"},
			})
		}
	})

	page, err := client.Page("Main Page").WithHTML().Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if page.HTML != "<p>Hello</p>" {
		t.Errorf("HTML = %q", page.HTML)
	}
	if queries.Load() != 1 || parses.Load() != 1 {
		t.Errorf("queries = %d, parses = %d, want 1 each", queries.Load(), parses.Load())
	}
}

func TestLegacyGetRevisionDelta(t *testing.T) {
	tests := []struct {
		name         string
		parentID     int64
		wantDelta    *int64
		wantRequests int32
	}{
		{
			// First revision of a page: no parent, no delta, and no
			// request spent discovering that.
			name:         "no parent",
			parentID:     0,
			wantDelta:    nil,
			wantRequests: 1,
		},
		{
			name:         "parent size fetched",
			parentID:     99,
			wantDelta:    ptrInt64(48),
			wantRequests: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				requests.Add(1)
				switch r.FormValue("revids") {
				case "100":
					writeJSON(t, w, map[string]any{
						"query": map[string]any{
							"pages": []map[string]any{{
								"pageid": 42, "title": "Main Page",
								"revisions": []map[string]any{{
									"revid": 100, "parentid": tt.parentID,
									"user": "Alice", "userid": 7,
									"timestamp": "2024-05-01T10:00:00Z",
									"size":      2048, "comment": "tweak",
								}},
							}},
						},
					})
				case "99":
					if got := r.FormValue("rvprop"); got != "ids|size" {
						t.Errorf("parent fetch rvprop = %q, want size only", got)
					}
					writeJSON(t, w, map[string]any{
						"query": map[string]any{
							"pages": []map[string]any{{
								"pageid": 42, "title": "Main Page",
								"revisions": []map[string]any{{"revid": 99, "size": 2000}},
							}},
						},
					})
				default:
					t.Errorf("unexpected revids = %q", r.FormValue("revids"))
				}
			})

			rev, err := client.Revision(100).Get(context.Background())
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantDelta, rev.Delta); diff != "" {
				t.Errorf("Delta mismatch (-want +got):\n%s", diff)
			}
			if got := requests.Load(); got != tt.wantRequests {
				t.Errorf("requests = %d, want %d", got, tt.wantRequests)
			}
			if rev.Page.ID != 42 || rev.Page.Title != "Main Page" {
				t.Errorf("Page = %+v", rev.Page)
			}
		})
	}
}

func TestLegacyRevisionUserNormalization(t *testing.T) {
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{
					"pageid": 42, "title": "Main Page",
					"revisions": []map[string]any{{
						"revid": 100, "parentid": 0,
						"user": "203.0.113.9", "userid": 0, "anon": true,
						"timestamp": "2024-05-01T10:00:00Z", "size": 10,
						"commenthidden": true,
					}},
				}},
			},
		})
	})

	rev, err := client.Revision(100).Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// userid 0 means anonymous: the normalized shape carries a null id.
	if rev.User.ID != nil {
		t.Errorf("User.ID = %v, want nil", rev.User.ID)
	}
	if rev.User.Name != "203.0.113.9" {
		t.Errorf("User.Name = %q", rev.User.Name)
	}
	if rev.Comment != nil {
		t.Errorf("Comment = %v, want nil for a suppressed summary", rev.Comment)
	}
}

func TestLegacyGetRevisionMissing(t *testing.T) {
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"query": map[string]any{"badrevids": map[string]any{"12345": map[string]any{"revid": 12345}}},
		})
	})

	_, err := client.Revision(12345).Get(context.Background())
	apiErr, ok := IsAPIError(err)
	if !ok || !apiErr.NotFound() {
		t.Errorf("error = %v, want not-found APIError", err)
	}
}

func fileInfoResponse(withThumbnail bool, width, height int64) map[string]any {
	page := map[string]any{
		"pageid": 9, "title": "File:Logo.png",
		"imageinfo": []map[string]any{{
			"timestamp": "2024-04-01T09:00:00Z",
			"user":      "Alice", "userid": 7,
			"size": 4096, "width": width, "height": height,
			"url":            "https://uploads.example.org/5/5f/Logo.png",
			"descriptionurl": "https://wiki.example.org/wiki/File:Logo.png",
			"mediatype":      "BITMAP",
		}},
	}
	if withThumbnail {
		page["thumbnail"] = map[string]any{
			"source": "https://uploads.example.org/thumb/Logo.png/300px-Logo.png",
			"width":  300, "height": 150,
		}
	}
	return map[string]any{"query": map[string]any{"pages": []map[string]any{page}}}
}

func TestLegacyGetFile(t *testing.T) {
	var gotTitles string
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotTitles = r.FormValue("titles")
		writeJSON(t, w, fileInfoResponse(true, 800, 400))
	})

	// The File: prefix is optional on input and absent on output.
	file, err := client.File("Logo.png").Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotTitles != "File:Logo.png" {
		t.Errorf("titles = %q, want File:Logo.png", gotTitles)
	}
	if file.Title != "Logo.png" {
		t.Errorf("Title = %q, want Logo.png", file.Title)
	}

	if file.Original.URL != "//uploads.example.org/5/5f/Logo.png" {
		t.Errorf("Original.URL = %q, want scheme-relative", file.Original.URL)
	}
	if file.FileDescriptionURL != "//wiki.example.org/wiki/File:Logo.png" {
		t.Errorf("FileDescriptionURL = %q", file.FileDescriptionURL)
	}
	if file.Original.Width == nil || *file.Original.Width != 800 {
		t.Errorf("Original.Width = %v, want 800", file.Original.Width)
	}
	if file.Thumbnail.Width == nil || *file.Thumbnail.Width != 300 {
		t.Errorf("Thumbnail.Width = %v, want 300", file.Thumbnail.Width)
	}
	// The original doubles as the preferred rendition on this dialect.
	if diff := cmp.Diff(file.Original, file.Preferred); diff != "" {
		t.Errorf("Preferred differs from Original:\n%s", diff)
	}
	if file.Latest.User.ID == nil || *file.Latest.User.ID != 7 {
		t.Errorf("Latest.User.ID = %v, want 7", file.Latest.User.ID)
	}
}

func TestLegacyGetFileZeroDimensions(t *testing.T) {
	// Audio files report width and height 0; the normalized shape uses nil.
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, fileInfoResponse(false, 0, 0))
	})

	file, err := client.File("File:Logo.png").Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if file.Original.Width != nil || file.Original.Height != nil {
		t.Errorf("dimensions = %v/%v, want nil/nil", file.Original.Width, file.Original.Height)
	}
	// No distinct thumbnail rendition: the original stands in.
	if diff := cmp.Diff(file.Original, file.Thumbnail); diff != "" {
		t.Errorf("Thumbnail should mirror Original:\n%s", diff)
	}
}

func TestLegacyLanguageLinks(t *testing.T) {
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.FormValue("action") != "parse" || r.FormValue("prop") != "langlinks" {
			t.Errorf("unexpected params: action=%q prop=%q", r.FormValue("action"), r.FormValue("prop"))
		}
		writeJSON(t, w, map[string]any{
			"parse": map[string]any{
				"title": "Main Page", "pageid": 42,
				"langlinks": []map[string]any{
					{"lang": "de", "autonym": "Deutsch", "langname": "German", "title": "Hauptseite"},
					{"lang": "fr", "autonym": "français", "langname": "French", "title": "Page principale"},
				},
			},
		})
	})

	links, err := client.LanguageLinks(context.Background(), "Main Page")
	if err != nil {
		t.Fatalf("LanguageLinks() error = %v", err)
	}

	want := []LanguageLink{
		{Code: "de", Name: "Deutsch", Key: "Hauptseite", Title: "Hauptseite"},
		{Code: "fr", Name: "français", Key: "Page_principale", Title: "Page principale"},
	}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestLegacyMediaLinksPreservesOrder(t *testing.T) {
	// Per-file detail fetches run concurrently but results come back in
	// the order the server listed the files.
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch {
		case r.FormValue("prop") == "images":
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 42, "title": "Main Page",
						"images": []map[string]any{
							{"title": "File:Zebra.png"},
							{"title": "File:Alpha.png"},
							{"title": "File:Middle.png"},
						},
					}},
				},
			})
		default:
			name := fileTitle(r.FormValue("titles"))
			// Stagger responses so completion order differs from list order.
			if name == "Zebra.png" {
				time.Sleep(30 * time.Millisecond)
			}
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 9, "title": "File:" + name,
						"imageinfo": []map[string]any{{
							"timestamp": "2024-04-01T09:00:00Z", "user": "Alice", "userid": 7,
							"size": 1, "width": 1, "height": 1,
							"url":            "https://uploads.example.org/" + name,
							"descriptionurl": "https://wiki.example.org/wiki/File:" + name,
							"mediatype":      "BITMAP",
						}},
					}},
				},
			})
		}
	})

	files, err := client.MediaLinks(context.Background(), "Main Page")
	if err != nil {
		t.Fatalf("MediaLinks() error = %v", err)
	}

	var titles []string
	for _, f := range files {
		titles = append(titles, f.Title)
	}
	want := []string{"Zebra.png", "Alpha.png", "Middle.png"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLegacySearchPages(t *testing.T) {
	var gotParams map[string]string
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotParams = map[string]string{
			"list":     r.FormValue("list"),
			"srsearch": r.FormValue("srsearch"),
			"srlimit":  r.FormValue("srlimit"),
		}
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"search": []map[string]any{
					{"pageid": 42, "title": "Go (programming language)", "snippet": "about <span>Go</span>"},
				},
			},
		})
	})

	results, err := client.SearchPages(context.Background(), "go", 5)
	if err != nil {
		t.Fatalf("SearchPages() error = %v", err)
	}
	if gotParams["list"] != "search" || gotParams["srsearch"] != "go" || gotParams["srlimit"] != "5" {
		t.Errorf("params = %+v", gotParams)
	}
	if len(results) != 1 || results[0].Key != "Go_(programming_language)" {
		t.Errorf("results = %+v", results)
	}
	if results[0].Excerpt == "" {
		t.Error("Excerpt should carry the snippet")
	}
}

func TestLegacySearchTitles(t *testing.T) {
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.FormValue("list") != "prefixsearch" || r.FormValue("pssearch") != "Ma" {
			t.Errorf("params: list=%q pssearch=%q", r.FormValue("list"), r.FormValue("pssearch"))
		}
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"prefixsearch": []map[string]any{
					{"pageid": 42, "title": "Main Page"},
					{"pageid": 43, "title": "Manual"},
				},
			},
		})
	})

	results, err := client.SearchTitles(context.Background(), "Ma", 10)
	if err != nil {
		t.Fatalf("SearchTitles() error = %v", err)
	}
	if len(results) != 2 || results[0].Title != "Main Page" || results[1].ID != 43 {
		t.Errorf("results = %+v", results)
	}
}

func TestLineDiff(t *testing.T) {
	lines := lineDiff("A\nB\nC\n", "A\nX\nC\n")

	var types []int
	var texts []string
	for _, l := range lines {
		types = append(types, l.Type)
		texts = append(texts, l.Text)
	}
	wantTypes := []int{DiffLineContext, DiffLineDeleted, DiffLineAdded, DiffLineContext}
	wantTexts := []string{"A", "B", "X", "C"}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantTexts, texts); diff != "" {
		t.Fatalf("texts mismatch (-want +got):\n%s", diff)
	}

	// Byte offsets track each side's source independently.
	if *lines[1].Offset.From != 2 || lines[1].Offset.To != nil {
		t.Errorf("deleted offset = %+v, want from=2 to=nil", lines[1].Offset)
	}
	if *lines[2].Offset.To != 2 || lines[2].Offset.From != nil {
		t.Errorf("added offset = %+v, want to=2 from=nil", lines[2].Offset)
	}
	if *lines[3].Offset.From != 4 || *lines[3].Offset.To != 4 {
		t.Errorf("trailing context offset = %+v, want 4/4", lines[3].Offset)
	}
	if *lines[2].LineNumber != 2 {
		t.Errorf("added LineNumber = %d, want 2", *lines[2].LineNumber)
	}
}

func TestLegacyCompare(t *testing.T) {
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		content := "A\nB\nC\n"
		if r.FormValue("revids") == "101" {
			content = "A\nX\nC\n"
		}
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{
					"pageid": 42, "title": "Main Page",
					"revisions": []map[string]any{{
						"revid": 100,
						"slots": map[string]any{"main": map[string]any{"content": content}},
					}},
				}},
			},
		})
	})

	diff, err := client.Compare(context.Background(), 100, 101)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if diff.From.ID != 100 || diff.To.ID != 101 {
		t.Errorf("sides = %+v / %+v", diff.From, diff.To)
	}
	if diff.From.SlotRole != "main" {
		t.Errorf("SlotRole = %q, want main", diff.From.SlotRole)
	}
	if len(diff.Lines) != 4 {
		t.Errorf("len(Lines) = %d, want 4", len(diff.Lines))
	}
}

// legacyHistoryRev builds one wire revision for history mocks.
func legacyHistoryRev(id, parent, size int64, extra map[string]any) map[string]any {
	rev := map[string]any{
		"revid": id, "parentid": parent,
		"user": "Alice", "userid": 7,
		"timestamp": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute).Format(time.RFC3339),
		"size":      size, "comment": "edit",
	}
	for k, v := range extra {
		rev[k] = v
	}
	return rev
}

func TestLegacyHistoryBatchDelta(t *testing.T) {
	var parentFetches atomic.Int32
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.FormValue("revids") != "" {
			// Only the oldest revision's parent lives outside the batch.
			parentFetches.Add(1)
			if got := r.FormValue("revids"); got != "100" {
				t.Errorf("parent fetch revids = %q, want 100", got)
			}
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 42, "title": "Main Page",
						"revisions": []map[string]any{{"revid": 100, "size": 4}},
					}},
				},
			})
			return
		}
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{
					"pageid": 42, "title": "Main Page",
					"revisions": []map[string]any{
						legacyHistoryRev(103, 102, 30, nil),
						legacyHistoryRev(102, 101, 20, nil),
						legacyHistoryRev(101, 100, 10, nil),
					},
				}},
			},
		})
	})

	revisions, err := client.History("Main Page").Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var deltas []int64
	for _, rev := range revisions {
		if rev.Delta == nil {
			t.Fatalf("revision %d has nil delta", rev.ID)
		}
		deltas = append(deltas, *rev.Delta)
	}
	// 30-20, 20-10 from within the batch; 10-4 from the secondary fetch.
	if diff := cmp.Diff([]int64{10, 10, 6}, deltas); diff != "" {
		t.Errorf("deltas mismatch (-want +got):\n%s", diff)
	}
	if got := parentFetches.Load(); got != 1 {
		t.Errorf("parent fetches = %d, want 1 (in-batch parents resolve locally)", got)
	}
}

func TestLegacyHistoryFilters(t *testing.T) {
	revisions := []map[string]any{
		legacyHistoryRev(105, 104, 50, map[string]any{"minor": true}),
		legacyHistoryRev(104, 103, 40, map[string]any{"user": "203.0.113.9", "userid": 0, "anon": true}),
		legacyHistoryRev(103, 102, 30, map[string]any{"user": "ImportBot", "userid": 99}),
		legacyHistoryRev(102, 101, 20, map[string]any{"tags": []string{"mw-reverted"}}),
		legacyHistoryRev(101, 0, 10, nil),
	}

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []int64
	}{
		{name: "minor", filter: FilterMinor, wantIDs: []int64{105}},
		{name: "anonymous", filter: FilterAnonymous, wantIDs: []int64{104}},
		{name: "bot", filter: FilterBot, wantIDs: []int64{103}},
		{name: "reverted", filter: FilterReverted, wantIDs: []int64{102}},
		{name: "unfiltered", filter: FilterNone, wantIDs: []int64{105, 104, 103, 102, 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contributorFetches atomic.Int32
			client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				switch {
				case r.FormValue("prop") == "contributors":
					contributorFetches.Add(1)
					if r.FormValue("pcgroup") != "bot" {
						t.Errorf("pcgroup = %q, want bot", r.FormValue("pcgroup"))
					}
					writeJSON(t, w, map[string]any{
						"query": map[string]any{
							"pages": []map[string]any{{
								"pageid": 42, "title": "Main Page",
								"contributors": []map[string]any{{"userid": 99, "name": "ImportBot"}},
							}},
						},
					})
				default:
					if tt.filter == FilterReverted && !strings.Contains(r.FormValue("rvprop"), "tags") {
						t.Errorf("rvprop = %q, want tags requested for the reverted filter", r.FormValue("rvprop"))
					}
					writeJSON(t, w, map[string]any{
						"query": map[string]any{
							"pages": []map[string]any{{
								"pageid": 42, "title": "Main Page", "revisions": revisions,
							}},
						},
					})
				}
			})

			got, err := client.History("Main Page").Filter(tt.filter).Collect(context.Background())
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			var ids []int64
			for _, rev := range got {
				ids = append(ids, rev.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}

			wantContribFetches := int32(0)
			if tt.filter == FilterBot {
				wantContribFetches = 1
			}
			if got := contributorFetches.Load(); got != wantContribFetches {
				t.Errorf("contributor fetches = %d, want %d", got, wantContribFetches)
			}
		})
	}
}

func TestLegacyHistoryCursorAndLimit(t *testing.T) {
	var batches atomic.Int32
	var secondCursor string
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.FormValue("revids") == "101" {
			// Revision 102's parent falls outside the first batch.
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 42, "title": "Main Page",
						"revisions": []map[string]any{{"revid": 101, "size": 10}},
					}},
				},
			})
			return
		}
		switch batches.Add(1) {
		case 1:
			writeJSON(t, w, map[string]any{
				"continue": map[string]any{"rvcontinue": "20240501|101"},
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 42, "title": "Main Page",
						"revisions": []map[string]any{
							legacyHistoryRev(103, 102, 30, nil),
							legacyHistoryRev(102, 101, 20, nil),
						},
					}},
				},
			})
		default:
			secondCursor = r.FormValue("rvcontinue")
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 42, "title": "Main Page",
						"revisions": []map[string]any{
							legacyHistoryRev(101, 0, 10, nil),
							legacyHistoryRev(100, 0, 5, nil),
						},
					}},
				},
			})
		}
	})

	revisions, err := client.History("Main Page").Limit(3).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var ids []int64
	for _, rev := range revisions {
		ids = append(ids, rev.ID)
	}
	if diff := cmp.Diff([]int64{103, 102, 101}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if batches.Load() != 2 {
		t.Errorf("batches = %d, want 2", batches.Load())
	}
	if secondCursor != "20240501|101" {
		t.Errorf("second batch cursor = %q, want the continuation token", secondCursor)
	}
}

func TestLegacyHistoryOlderThanIsExclusive(t *testing.T) {
	var gotStartID string
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotStartID = r.FormValue("rvstartid")
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{
					"pageid": 42, "title": "Main Page",
					"revisions": []map[string]any{
						// The server's start bound is inclusive.
						legacyHistoryRev(102, 101, 20, nil),
						legacyHistoryRev(101, 0, 10, nil),
					},
				}},
			},
		})
	})

	revisions, err := client.History("Main Page").OlderThan(102).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if gotStartID != "102" {
		t.Errorf("rvstartid = %q, want 102", gotStartID)
	}
	if len(revisions) != 1 || revisions[0].ID != 101 {
		t.Errorf("revisions = %+v, want only 101 (the bound itself is excluded)", revisions)
	}
}

func TestLegacyCreatePage(t *testing.T) {
	var tokenFetches atomic.Int32
	var editForm map[string]string
	client := legacyClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch {
		case r.FormValue("meta") == "tokens":
			tokenFetches.Add(1)
			writeJSON(t, w, map[string]any{
				"query": map[string]any{"tokens": map[string]any{"csrftoken": "abc123+\\"}},
			})
		case r.FormValue("action") == "edit":
			if r.Method != http.MethodPost {
				t.Errorf("edit method = %s, want POST", r.Method)
			}
			editForm = map[string]string{
				"title":      r.FormValue("title"),
				"text":       r.FormValue("text"),
				"token":      r.FormValue("token"),
				"createonly": r.FormValue("createonly"),
				"summary":    r.FormValue("summary"),
			}
			writeJSON(t, w, map[string]any{
				"edit": map[string]any{"result": "Success", "pageid": 77, "title": "New Page", "newrevid": 500},
			})
		case r.FormValue("action") == "query":
			writeJSON(t, w, map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"pageid": 77, "title": "New Page", "contentmodel": "wikitext",
						"revisions": []map[string]any{{
							"revid": 500, "timestamp": "2024-05-01T10:00:00Z",
							"slots": map[string]any{"main": map[string]any{"content": "content"}},
						}},
					}},
					"rightsinfo": map[string]any{"url": "https://example.org/l", "text": "L"},
				},
			})
		}
	})

	comment := "first draft"
	page, err := client.CreatePage(context.Background(), "New Page", "content", &comment)
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}

	if tokenFetches.Load() != 1 {
		t.Errorf("token fetches = %d, want 1", tokenFetches.Load())
	}
	if editForm["token"] != "abc123+\\" || editForm["createonly"] != "1" {
		t.Errorf("edit form = %+v", editForm)
	}
	if editForm["summary"] != "first draft" {
		t.Errorf("summary = %q", editForm["summary"])
	}
	// The modern response shape is polyfilled by resolving the result page.
	if page.ID != 77 || page.Latest.ID != 500 {
		t.Errorf("page = %+v", page)
	}
}

func TestLegacyUpdatePageConflict(t *testing.T) {
	server := newLegacyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.FormValue("action") {
		case "edit":
			if got := r.FormValue("baserevid"); got != "499" {
				t.Errorf("baserevid = %q, want 499", got)
			}
			writeJSON(t, w, map[string]any{
				"error": map[string]any{"code": "editconflict", "info": "Edit conflict."},
			})
		default:
			t.Errorf("unexpected action %q", r.FormValue("action"))
		}
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.config.CSRFToken = "preset-token" // skip the token fetch
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	_, err := client.UpdatePage(context.Background(), "Old Page", "text", nil, 499)
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Code != "editconflict" {
		t.Errorf("Code = %q, want editconflict", apiErr.Code)
	}
}
