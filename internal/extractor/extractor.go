// Package extractor recognizes flashcards embedded in free-form document
// text. A flashcard is a question line (`问题:` / `Question:`) followed by an
// answer line (`答案:` / `回答:` / `Answer:`); both values may span multiple
// lines and may start on the line after the marker.
package extractor

import (
	"strings"

	"github.com/avasilyev/ankibridge/internal/entities"
)

type role int

const (
	roleNone role = iota
	roleQuestion
	roleAnswer
)

// marker is a literal line prefix identifying the start of a question or
// answer. The table is ordered so new locale variants are additive.
type marker struct {
	prefix string
	role   role
	folded bool // Latin variants match case-insensitively
}

var markers = []marker{
	{prefix: "问题:", role: roleQuestion},
	{prefix: "问题：", role: roleQuestion},
	{prefix: "Question:", role: roleQuestion, folded: true},
	{prefix: "答案:", role: roleAnswer},
	{prefix: "答案：", role: roleAnswer},
	{prefix: "回答:", role: roleAnswer},
	{prefix: "Answer:", role: roleAnswer, folded: true},
}

// classify tests a line against the marker table. A line matches at most one
// role; on a match the remainder after the marker and adjacent whitespace is
// returned (it may be empty when the value sits on the next line).
func classify(line string) (role, string) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, m := range markers {
		var ok bool
		if m.folded {
			ok = len(trimmed) >= len(m.prefix) && strings.EqualFold(trimmed[:len(m.prefix)], m.prefix)
		} else {
			ok = strings.HasPrefix(trimmed, m.prefix)
		}
		if ok {
			return m.role, strings.TrimSpace(trimmed[len(m.prefix):])
		}
	}
	return roleNone, ""
}

type state int

const (
	stateIdle state = iota
	stateCollectingQuestion
	stateCollectingAnswer
)

// machine is the per-document extraction state machine. One instance per
// document; nothing leaks into the next document.
type machine struct {
	state    state
	docID    string
	question []string
	answer   []string
	emitted  []entities.FlashcardCandidate
}

func newMachine(docID string) *machine {
	return &machine{docID: docID}
}

// feed advances the machine by one line.
func (m *machine) feed(line string) {
	role, rest := classify(line)

	switch role {
	case roleQuestion:
		// An open (question, answer) pair is complete; a question with no
		// answer yet is dropped, not emitted.
		if m.state == stateCollectingAnswer {
			m.emit()
		}
		m.state = stateCollectingQuestion
		m.question = m.question[:0]
		m.answer = m.answer[:0]
		if rest != "" {
			m.question = append(m.question, rest)
		}

	case roleAnswer:
		// An answer marker with no preceding question never opens a buffer.
		if m.state == stateIdle {
			return
		}
		if m.state == stateCollectingAnswer {
			// Treat a repeated answer marker as answer continuation.
			if rest != "" {
				m.answer = append(m.answer, rest)
			}
			return
		}
		m.state = stateCollectingAnswer
		m.answer = m.answer[:0]
		if rest != "" {
			m.answer = append(m.answer, rest)
		}

	default:
		if strings.TrimSpace(line) == "" {
			// Blank separator lines inside a buffer are skipped.
			return
		}
		switch m.state {
		case stateCollectingQuestion:
			m.question = append(m.question, line)
		case stateCollectingAnswer:
			m.answer = append(m.answer, line)
		}
	}
}

// finish flushes the machine at end of document. A pending pair is emitted
// only when collection reached the answer; partial state is dropped silently.
func (m *machine) finish() []entities.FlashcardCandidate {
	if m.state == stateCollectingAnswer {
		m.emit()
	}
	m.state = stateIdle
	return m.emitted
}

// emit finalizes the pending pair. Either side trimming to empty discards
// the pair instead of emitting it.
func (m *machine) emit() {
	question := strings.TrimSpace(strings.Join(m.question, "\n"))
	answer := strings.TrimSpace(strings.Join(m.answer, "\n"))
	m.question = m.question[:0]
	m.answer = m.answer[:0]
	if question == "" || answer == "" {
		return
	}
	m.emitted = append(m.emitted, entities.FlashcardCandidate{
		Question:         question,
		Answer:           answer,
		SourceDocumentID: m.docID,
	})
}

// Extract scans a document's lines (one per block, in document order) and
// returns the flashcard candidates found, in order of appearance. It is a
// pure function: malformed input yields fewer candidates, never an error.
func Extract(docID string, lines []string) []entities.FlashcardCandidate {
	m := newMachine(docID)
	for _, line := range lines {
		m.feed(line)
	}
	return m.finish()
}

// ExtractDocument extracts candidates from a fetched document.
func ExtractDocument(doc entities.Document) []entities.FlashcardCandidate {
	return Extract(doc.ID, doc.Lines())
}
