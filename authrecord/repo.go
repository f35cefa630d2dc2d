package authrecord

// Repo persists exactly one Record per local user.
type Repo interface {
	// Load returns the saved record, or nil with no error when none exists
	Load() (*Record, error)

	// Save writes the record, replacing any previous one
	Save(record *Record) error

	// Delete removes the saved record; a missing record is not an error
	Delete() error

	// Path describes where the record lives
	Path() string
}
