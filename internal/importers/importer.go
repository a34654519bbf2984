package importers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avasilyev/ankibridge/internal/anki"
	"github.com/avasilyev/ankibridge/internal/config"
	"github.com/avasilyev/ankibridge/internal/entities"
)

// NoteClient is the slice of the AnkiConnect client the importer needs.
type NoteClient interface {
	FindNotes(ctx context.Context, query string) ([]int64, error)
	AddNote(ctx context.Context, deck, model, front, back string) (int64, error)
}

// Importer creates cards in Anki, skipping candidates whose question already
// exists in the target deck so re-runs are idempotent.
type Importer struct {
	client NoteClient
	logger *slog.Logger
}

func NewImporter(client NoteClient, logger *slog.Logger) *Importer {
	return &Importer{client: client, logger: logger}
}

// Import creates one card from a candidate. Returns the outcome status; a
// returned error is a transport-level failure that counts as failed but
// never aborts the run.
func (i *Importer) Import(ctx context.Context, candidate entities.FlashcardCandidate) (entities.ImportStatus, error) {
	// Anki renders fields as HTML, so paragraph breaks recovered by the
	// extractor are translated at this boundary.
	front := htmlBreaks(candidate.Question)
	back := htmlBreaks(candidate.Answer)

	ids, err := i.client.FindNotes(ctx, frontQuery(front))
	if err != nil {
		return "", fmt.Errorf("duplicate check failed: %w", err)
	}
	if len(ids) > 0 {
		i.logger.Debug("card already exists, skipping", "question", candidate.Question)
		return entities.ImportStatusSkipped, nil
	}

	if _, err := i.client.AddNote(ctx, config.DeckName, config.ModelName, front, back); err != nil {
		// Anki's own duplicate rejection is a skip, not a failure.
		if errors.Is(err, anki.ErrDuplicate) {
			i.logger.Debug("card rejected as duplicate, skipping", "question", candidate.Question)
			return entities.ImportStatusSkipped, nil
		}
		return "", fmt.Errorf("create failed: %w", err)
	}

	i.logger.Info("added card", "question", candidate.Question)
	return entities.ImportStatusCreated, nil
}

// frontQuery builds an Anki search for an exact Front-field match within the
// target deck.
func frontQuery(front string) string {
	return fmt.Sprintf("deck:%s Front:%s", quote(config.DeckName), quote(front))
}

// searchEscaper escapes Anki search metacharacters inside a quoted term.
// Backslash must come first so it does not re-escape the others; `*` and `_`
// are wildcards even inside quotes.
var searchEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`*`, `\*`,
	`_`, `\_`,
)

// quote wraps a search term in double quotes, escaping embedded
// metacharacters the way Anki's search syntax expects.
func quote(s string) string {
	return `"` + searchEscaper.Replace(s) + `"`
}

// htmlBreaks renders recovered paragraph breaks with Anki's line-break
// convention.
func htmlBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
