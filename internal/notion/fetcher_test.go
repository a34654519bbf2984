package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paragraph(runs ...string) Block {
	rts := make([]RichText, 0, len(runs))
	for _, r := range runs {
		rts = append(rts, RichText{Type: "text", PlainText: r})
	}
	return Block{Type: "paragraph", Paragraph: &RichTextContent{RichText: rts}}
}

func TestFetcher_FlattensRichTextRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/query"):
			_ = json.NewEncoder(w).Encode(QueryResponse{
				Object: "list",
				Results: []Page{{
					ID: "page-1",
					Properties: map[string]PropertyValue{
						"Name": {Type: "title", Title: []RichText{{PlainText: "Cards"}}},
					},
				}},
			})
		case strings.Contains(r.URL.Path, "/blocks/page-1/children"):
			_ = json.NewEncoder(w).Encode(BlocksResponse{
				Object: "list",
				Results: []Block{
					paragraph("问题", ": What is a slice?"),
					paragraph("答案: A view over an array"),
					{Type: "divider"},
				},
			})
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL), "db-1", discardLogger())
	docs, fetchErrs, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetchErrs) != 0 {
		t.Fatalf("unexpected fetch errors: %v", fetchErrs)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	doc := docs[0]
	if doc.ID != "page-1" || doc.Title != "Cards" {
		t.Errorf("unexpected document: %+v", doc)
	}

	lines := doc.Lines()
	want := []string{"问题: What is a slice?", "答案: A view over an array", ""}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestFetcher_OnePageFailureDoesNotAbortRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/query"):
			_ = json.NewEncoder(w).Encode(QueryResponse{
				Object:  "list",
				Results: []Page{{ID: "page-bad"}, {ID: "page-good"}},
			})
		case strings.Contains(r.URL.Path, "/blocks/page-bad/children"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"gone"}`))
		case strings.Contains(r.URL.Path, "/blocks/page-good/children"):
			_ = json.NewEncoder(w).Encode(BlocksResponse{
				Object:  "list",
				Results: []Block{paragraph("问题: Q"), paragraph("答案: A")},
			})
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL), "db-1", discardLogger())
	docs, fetchErrs, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 1 || docs[0].ID != "page-good" {
		t.Fatalf("expected only the good page, got %+v", docs)
	}
	if len(fetchErrs) != 1 {
		t.Fatalf("expected 1 fetch error, got %d", len(fetchErrs))
	}
	var fetchErr *FetchError
	if !errors.As(fetchErrs[0], &fetchErr) || fetchErr.PageID != "page-bad" {
		t.Errorf("unexpected fetch error: %v", fetchErrs[0])
	}
}

func TestFetcher_SearchModeWhenNoDatabase(t *testing.T) {
	var searched bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			searched = true
			_ = json.NewEncoder(w).Encode(SearchResponse{Object: "list"})
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL), "", discardLogger())
	docs, fetchErrs, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !searched {
		t.Error("expected the search endpoint to be used without a database id")
	}
	if len(docs) != 0 || len(fetchErrs) != 0 {
		t.Errorf("expected an empty run, got docs=%v errs=%v", docs, fetchErrs)
	}
}

func TestFetcher_SkipsChildPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/query"):
			_ = json.NewEncoder(w).Encode(QueryResponse{
				Object:  "list",
				Results: []Page{{ID: "page-1"}},
			})
		case strings.Contains(r.URL.Path, "/blocks/page-1/children"):
			_ = json.NewEncoder(w).Encode(BlocksResponse{
				Object: "list",
				Results: []Block{
					paragraph("问题: Q"),
					{Type: "child_page", ID: "child-1", HasChildren: true},
					paragraph("答案: A"),
				},
			})
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL), "db-1", discardLogger())
	docs, _, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	lines := docs[0].Lines()
	if len(lines) != 2 {
		t.Fatalf("expected child page content to be skipped, got lines %v", lines)
	}
}
