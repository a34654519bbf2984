package entities

import "strings"

// Block is one paragraph-equivalent unit of a source document. Rich text
// segments a paragraph into multiple styled fragments; Runs keeps their
// plain text in order, styling dropped.
type Block struct {
	Runs []string
}

// Text joins the block's runs into one logical line.
func (b Block) Text() string {
	return strings.Join(b.Runs, "")
}

// Document is a fetched source page: an identifier plus its blocks in
// document order. Immutable for the duration of extraction.
type Document struct {
	ID     string
	Title  string
	Blocks []Block
}

// Lines flattens the document into one line of text per block.
func (d Document) Lines() []string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		lines = append(lines, b.Text())
	}
	return lines
}

// FlashcardCandidate is an extracted, not-yet-imported question/answer pair.
// Question and Answer are always trimmed and non-empty.
type FlashcardCandidate struct {
	Question         string
	Answer           string
	SourceDocumentID string
}

type ImportStatus string

const (
	ImportStatusCreated ImportStatus = "created"
	ImportStatusSkipped ImportStatus = "skipped"
)

// ImportFailure records a candidate that could not be imported.
type ImportFailure struct {
	Candidate FlashcardCandidate
	Reason    string
}

// ImportResult aggregates the outcome of one sync run.
type ImportResult struct {
	Created          int
	Skipped          int
	Failed           []ImportFailure
	DocumentsFetched int
	DocumentsFailed  int
}

// Ok reports whether every document was fetched and no import attempt hit a
// transport-level failure. Skips and zero-candidate documents are not
// failures.
func (r ImportResult) Ok() bool {
	return r.DocumentsFailed == 0 && len(r.Failed) == 0
}
