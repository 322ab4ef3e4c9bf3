package submissions

// Repo is the local cache store contract. Only the session manager and the
// submission synchronizer may mutate it; UI collaborators read through
// ReadAll (typically via a View).
type Repo interface {
	// Upsert inserts records absent from the cache and fully replaces
	// records whose ID is already present. No partial merge: an upserted
	// record overwrites every field of the old one.
	Upsert(records []Submission) error
	// DeleteByKey removes the records with the given IDs. Unknown keys
	// are ignored.
	DeleteByKey(ids ...string) error
	// ReadAll returns all cached records in insertion order.
	ReadAll() ([]Submission, error)
}
