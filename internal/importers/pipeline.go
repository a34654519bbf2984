// Package importers wires the sync flow together:
//
//	fetch documents → extract candidates → deduplicate → create cards
//
// Documents are processed sequentially; the bottleneck is remote API round
// trips, and sequential imports keep the duplicate check ahead of the
// matching create.
package importers

import (
	"context"
	"log/slog"

	"github.com/avasilyev/ankibridge/internal/entities"
	"github.com/avasilyev/ankibridge/internal/extractor"
)

// Fetcher retrieves the in-scope documents. Per-document failures come back
// in the error slice; the final error means listing documents failed
// entirely.
type Fetcher interface {
	Fetch(ctx context.Context) ([]entities.Document, []error, error)
}

// CardImporter imports one candidate.
type CardImporter interface {
	Import(ctx context.Context, candidate entities.FlashcardCandidate) (entities.ImportStatus, error)
}

// Pipeline drives one sync run end to end and aggregates the outcome.
type Pipeline struct {
	fetcher  Fetcher
	importer CardImporter
	logger   *slog.Logger
}

func NewPipeline(fetcher Fetcher, importer CardImporter, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		importer: importer,
		logger:   logger,
	}
}

// Run performs one sync. The returned error is fatal (documents could not be
// listed at all); everything else is isolated per document or per candidate
// and reflected in the result.
func (p *Pipeline) Run(ctx context.Context) (entities.ImportResult, error) {
	var result entities.ImportResult

	docs, fetchErrs, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return result, err
	}

	for _, fetchErr := range fetchErrs {
		p.logger.Error("skipping document", "error", fetchErr)
	}
	result.DocumentsFetched = len(docs)
	result.DocumentsFailed = len(fetchErrs)

	for _, doc := range docs {
		candidates := extractor.ExtractDocument(doc)
		p.logger.Debug("extracted candidates", "document", doc.ID, "title", doc.Title, "count", len(candidates))

		for _, candidate := range candidates {
			status, err := p.importer.Import(ctx, candidate)
			if err != nil {
				p.logger.Error("failed to import card",
					"document", candidate.SourceDocumentID,
					"question", candidate.Question,
					"error", err)
				result.Failed = append(result.Failed, entities.ImportFailure{
					Candidate: candidate,
					Reason:    err.Error(),
				})
				continue
			}

			switch status {
			case entities.ImportStatusCreated:
				result.Created++
			case entities.ImportStatusSkipped:
				result.Skipped++
			}
		}
	}

	return result, nil
}
