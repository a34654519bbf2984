package config

// Default endpoints and file paths
const (
	// DefaultAnkiConnectURL is where the AnkiConnect add-on listens locally
	DefaultAnkiConnectURL = "http://localhost:8765"

	// DefaultDebugLogPath is where debug traces go when DEBUG_MODE is set
	DefaultDebugLogPath = "./ankibridge-debug.log"
)

// Destination constants. The deck and note model are owned by the importer
// and are deliberately not user-configurable.
const (
	// DeckName is the Anki deck cards are created under
	DeckName = "Notion Import"

	// ModelName is the Anki note type; "Basic" has Front/Back fields
	ModelName = "Basic"
)

// Source-side filter constants for the database deployment mode.
const (
	// StatusProperty is the Notion database property holding import state
	StatusProperty = "Status"

	// StatusReadyValue marks a page as ready to be imported
	StatusReadyValue = "Ready to Import"
)
