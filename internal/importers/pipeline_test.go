package importers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilyev/ankibridge/internal/entities"
	"github.com/avasilyev/ankibridge/internal/notion"
)

type fakeFetcher struct {
	docs     []entities.Document
	pageErrs []error
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]entities.Document, []error, error) {
	return f.docs, f.pageErrs, f.err
}

func lineDoc(id string, lines ...string) entities.Document {
	doc := entities.Document{ID: id}
	for _, line := range lines {
		doc.Blocks = append(doc.Blocks, entities.Block{Runs: []string{line}})
	}
	return doc
}

func TestPipeline_ImportsExtractedCards(t *testing.T) {
	fetcher := &fakeFetcher{docs: []entities.Document{
		lineDoc("doc-1", "问题: Q1", "答案: A1", "问题: Q2", "答案: A2"),
	}}
	client := newFakeNoteClient()
	pipeline := NewPipeline(fetcher, NewImporter(client, discardLogger()), discardLogger())

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 1, result.DocumentsFetched)
	assert.True(t, result.Ok())
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	docs := []entities.Document{
		lineDoc("doc-1", "问题: Q1", "答案: A1", "问题: Q2", "答案: A2"),
	}
	client := newFakeNoteClient()
	pipeline := NewPipeline(&fakeFetcher{docs: docs}, NewImporter(client, discardLogger()), discardLogger())

	first, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	second, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, client.added, 2, "re-run must not create new notes")
}

func TestPipeline_ZeroCandidateDocumentIsNotAFailure(t *testing.T) {
	fetcher := &fakeFetcher{docs: []entities.Document{
		lineDoc("doc-1", "just prose, no markers"),
	}}
	pipeline := NewPipeline(fetcher, NewImporter(newFakeNoteClient(), discardLogger()), discardLogger())

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Ok())
	assert.Equal(t, 0, result.Created)
}

func TestPipeline_FetchFailureDoesNotBlockOtherDocuments(t *testing.T) {
	fetcher := &fakeFetcher{
		docs: []entities.Document{
			lineDoc("doc-2", "问题: Q", "答案: A"),
		},
		pageErrs: []error{&notion.FetchError{PageID: "doc-1", Err: errors.New("boom")}},
	}
	pipeline := NewPipeline(fetcher, NewImporter(newFakeNoteClient(), discardLogger()), discardLogger())

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created, "remaining documents must still be imported")
	assert.Equal(t, 1, result.DocumentsFailed)
	assert.False(t, result.Ok(), "a failed fetch must be reflected in the exit status")
}

func TestPipeline_ImportFailureIsCollectedAndRunContinues(t *testing.T) {
	fetcher := &fakeFetcher{docs: []entities.Document{
		lineDoc("doc-1", "问题: Q1", "答案: A1", "问题: Q2", "答案: A2"),
	}}
	client := newFakeNoteClient()
	client.findErr = errors.New("connection refused")
	pipeline := NewPipeline(fetcher, NewImporter(client, discardLogger()), discardLogger())

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err, "per-candidate failures must not abort the run")

	assert.Len(t, result.Failed, 2)
	assert.Equal(t, "Q1", result.Failed[0].Candidate.Question)
	assert.False(t, result.Ok())
}

func TestPipeline_ListingFailureIsFatal(t *testing.T) {
	pipeline := NewPipeline(
		&fakeFetcher{err: errors.New("unauthorized")},
		NewImporter(newFakeNoteClient(), discardLogger()),
		discardLogger(),
	)

	_, err := pipeline.Run(context.Background())
	require.Error(t, err)
}
