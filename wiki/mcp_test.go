package wiki

import (
	"context"
	"net/http"
	"strings"
	"testing"

	werrors "github.com/olgasafonova/wikibridge/internal/errors"
)

func TestGetPageMCPRejectsUnknownFormat(t *testing.T) {
	client := newTestClient(t, "http://unreachable.invalid")
	_, err := client.GetPageMCP(context.Background(), GetPageArgs{Title: "Main Page", Format: "pdf"})
	if !werrors.IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestGetPageMCPFormats(t *testing.T) {
	tests := []struct {
		format   string
		wantPath string
	}{
		{format: "", wantPath: "/rest.php/v1/page/Main_Page/bare"},
		{format: "bare", wantPath: "/rest.php/v1/page/Main_Page/bare"},
		{format: "source", wantPath: "/rest.php/v1/page/Main_Page"},
		{format: "html", wantPath: "/rest.php/v1/page/Main_Page/with_html"},
	}
	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			var gotPath string
			client := modernClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				writeJSON(t, w, map[string]any{
					"id": 42, "key": "Main_Page", "title": "Main Page",
					"latest":        map[string]any{"id": 100, "timestamp": "2024-05-01T10:00:00Z"},
					"content_model": "wikitext",
					"license":       map[string]any{"url": "//example.org/license", "title": "CC"},
				})
			})

			result, err := client.GetPageMCP(context.Background(), GetPageArgs{Title: "Main Page", Format: tt.format})
			if err != nil {
				t.Fatalf("GetPageMCP() error = %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if result.Page == nil || result.Page.ID != 42 {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestGetHistoryMCPRejectsUnknownFilter(t *testing.T) {
	client := newTestClient(t, "http://unreachable.invalid")
	_, err := client.GetHistoryMCP(context.Background(), GetHistoryArgs{Title: "Main Page", Filter: "vandalism"})
	if !werrors.IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestGetHistoryMCPAppliesLimit(t *testing.T) {
	client := modernClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, historyBatchJSON("", 105, 104, 103, 102, 101))
	})

	result, err := client.GetHistoryMCP(context.Background(), GetHistoryArgs{Title: "Main Page", Limit: 2})
	if err != nil {
		t.Fatalf("GetHistoryMCP() error = %v", err)
	}
	if result.Count != 2 || len(result.Revisions) != 2 {
		t.Errorf("Count = %d with %d revisions, want 2", result.Count, len(result.Revisions))
	}
	if result.Revisions[0].ID != 105 {
		t.Errorf("first revision = %d, want 105", result.Revisions[0].ID)
	}
}

func TestSearchMCPDefaultsLimit(t *testing.T) {
	var gotLimit string
	client := modernClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		writeJSON(t, w, map[string]any{"pages": []any{}})
	})

	if _, err := client.SearchPagesMCP(context.Background(), SearchPagesArgs{Query: "golang"}); err != nil {
		t.Fatalf("SearchPagesMCP() error = %v", err)
	}
	if gotLimit != "10" {
		t.Errorf("limit = %q, want the default 10", gotLimit)
	}
}

func TestCreatePageMCPWrapsErrors(t *testing.T) {
	client := modernClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(t, w, map[string]any{
			"httpCode": 403, "name": "rest-permission-denied",
			"messageTranslations": map[string]any{"en": "You do not have permission to edit."},
		})
	})

	_, err := client.CreatePageMCP(context.Background(), CreatePageArgs{Title: "New Page", Source: "x"})
	if err == nil {
		t.Fatal("CreatePageMCP() error = nil")
	}
	if !strings.Contains(err.Error(), `create page "New Page"`) {
		t.Errorf("error = %v, want the page name in context", err)
	}
	if _, ok := IsAPIError(err); ok {
		t.Error("error should wrap, not be, the bare APIError")
	}
}

func TestOptionalComment(t *testing.T) {
	if got := optionalComment(""); got != nil {
		t.Errorf("optionalComment(\"\") = %v, want nil", got)
	}
	if got := optionalComment("summary"); got == nil || *got != "summary" {
		t.Errorf("optionalComment(\"summary\") = %v", got)
	}
}
