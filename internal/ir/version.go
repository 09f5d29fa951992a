package ir

// Version constants stamped on journals.
const (
	// JournalVersion is the journal record schema version.
	JournalVersion = "1"

	// EngineVersion is the strata engine version.
	EngineVersion = "0.1.0"
)
