package anki

import (
	"errors"
	"fmt"
)

// ErrDuplicate indicates Anki rejected a note because an identical one
// already exists. Callers treat this as a skip, not a failure.
var ErrDuplicate = errors.New("note already exists in Anki")

// APIError is an error message returned inside an AnkiConnect response
// envelope.
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AnkiConnect %s failed: %s", e.Action, e.Message)
}
