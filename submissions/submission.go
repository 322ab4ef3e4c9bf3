// Package submissions holds the local cache of cataloged dataset records.
//
// A Submission is the client-side projection of a dataset registered in the
// catalog. Records are created by register/list operations, refreshed from
// their source repository, and removed on delete; the cache store is the
// only owner of record state.
package submissions

// Submission is one cataloged dataset record.
type Submission struct {
	// ID is the catalog database identity (primary key in the cache).
	ID string
	// Identifier is the record's identifier within the source repository
	// or catalog-facing identifier. Distinct from ID; never assume the
	// two are equal.
	Identifier string
	// RepoIdentifier is the source repository's own external identifier,
	// used for refresh operations. May be empty.
	RepoIdentifier string

	Title   string
	Authors []string
	// Date is the submission date in epoch milliseconds.
	Date int64
	URL  string
}
