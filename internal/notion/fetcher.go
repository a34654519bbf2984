package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avasilyev/ankibridge/internal/config"
	"github.com/avasilyev/ankibridge/internal/entities"
)

// Fetcher resolves which pages are in scope and flattens their content into
// the flat document shape consumed by the extractor.
//
// Two deployment modes:
//   - databaseID set: query that database for pages whose status property
//     equals the import-ready value
//   - databaseID empty: every page shared with the integration
type Fetcher struct {
	client     *Client
	databaseID string
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. databaseID may be empty.
func NewFetcher(client *Client, databaseID string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:     client,
		databaseID: databaseID,
		logger:     logger,
	}
}

// readyFilter selects pages marked ready to import.
func readyFilter() json.RawMessage {
	filter := map[string]any{
		"property": config.StatusProperty,
		"select": map[string]any{
			"equals": config.StatusReadyValue,
		},
	}
	data, _ := json.Marshal(filter)
	return data
}

// Fetch retrieves all in-scope documents. Failures fetching the content of
// an individual page are returned alongside the documents that did succeed;
// only a failure to list pages at all aborts the fetch, via the final error.
func (f *Fetcher) Fetch(ctx context.Context) ([]entities.Document, []error, error) {
	pages, err := f.listPages(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list pages: %w", err)
	}

	f.logger.Info("listed pages to import", "count", len(pages))

	var docs []entities.Document
	var errs []error
	for _, page := range pages {
		if page.Archived {
			continue
		}

		doc, err := f.fetchDocument(ctx, page)
		if err != nil {
			errs = append(errs, &FetchError{PageID: page.ID, Err: err})
			continue
		}
		docs = append(docs, doc)
	}

	return docs, errs, nil
}

func (f *Fetcher) listPages(ctx context.Context) ([]Page, error) {
	if f.databaseID != "" {
		return f.client.QueryDatabaseAll(ctx, f.databaseID, readyFilter())
	}
	return f.client.SearchAllPages(ctx)
}

// fetchDocument reads a page's blocks and flattens each into one line of
// plain text. Blocks with children (toggles, nested lists) are descended
// into depth-first so their text keeps document order.
func (f *Fetcher) fetchDocument(ctx context.Context, page Page) (entities.Document, error) {
	doc := entities.Document{
		ID:    page.ID,
		Title: page.Title(),
	}

	blocks, err := f.fetchBlocks(ctx, page.ID)
	if err != nil {
		return entities.Document{}, err
	}
	doc.Blocks = blocks

	f.logger.Debug("fetched document", "page", page.ID, "title", doc.Title, "blocks", len(blocks))
	return doc, nil
}

func (f *Fetcher) fetchBlocks(ctx context.Context, blockID string) ([]entities.Block, error) {
	children, err := f.client.BlockChildrenAll(ctx, blockID)
	if err != nil {
		return nil, err
	}

	var out []entities.Block
	for _, block := range children {
		// Child pages are separate documents, not nested content.
		if block.Type == "child_page" || block.Type == "child_database" {
			continue
		}

		out = append(out, flatten(block))

		if block.HasChildren {
			nested, err := f.fetchBlocks(ctx, block.ID)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}

	return out, nil
}

// flatten maps one Notion block to the flat run-sequence shape. Blocks
// without text content become empty blocks, which the extractor treats as
// blank separator lines.
func flatten(block Block) entities.Block {
	rts := block.richText()
	runs := make([]string, 0, len(rts))
	for _, rt := range rts {
		runs = append(runs, rt.PlainText)
	}
	return entities.Block{Runs: runs}
}
