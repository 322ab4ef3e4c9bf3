package catalog

import (
	"encoding/json"
	"time"

	"github.com/cznethub/go-catalog-client/submissions"
)

// submissionRecord is the catalog's native representation of a cataloged
// dataset, as returned by the submission list endpoint.
type submissionRecord struct {
	ID         string   `json:"_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Submitted  string   `json:"submitted"`
	Identifier string   `json:"identifier"`
	URL        string   `json:"url"`
}

func (r submissionRecord) toSubmission() submissions.Submission {
	return submissions.Submission{
		ID:         r.ID,
		Identifier: r.Identifier,
		Title:      r.Title,
		Authors:    r.Authors,
		Date:       parseEpochMillis(r.Submitted),
		URL:        r.URL,
	}
}

// repositoryRecord is a repository-native metadata document, as returned
// by the register and refresh endpoints.
type repositoryRecord struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Creator     []creatorRecord `json:"creator"`
	DateCreated string          `json:"dateCreated"`
	Identifier  identifierList  `json:"identifier"`
	URL         string          `json:"url"`
}

type creatorRecord struct {
	Name string `json:"name"`
}

// toSubmission maps the repository-native fields onto the Submission
// shape. repoIdentifier is the repository's external identifier the record
// was fetched by; it is not part of the document itself.
func (r repositoryRecord) toSubmission(repoIdentifier string) submissions.Submission {
	authors := make([]string, 0, len(r.Creator))
	for _, c := range r.Creator {
		authors = append(authors, c.Name)
	}
	return submissions.Submission{
		ID:             r.ID,
		Identifier:     r.Identifier.First(),
		RepoIdentifier: repoIdentifier,
		Title:          r.Name,
		Authors:        authors,
		Date:           parseEpochMillis(r.DateCreated),
		URL:            r.URL,
	}
}

// identifierList tolerates the repository returning either a single
// identifier string or an array of them.
type identifierList []string

func (l *identifierList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = identifierList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = identifierList(many)
	return nil
}

// First returns the normalized identifier: the first element when the
// source was array-valued, empty when there is none.
func (l identifierList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

var submittedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseEpochMillis parses an ISO-like source date into epoch milliseconds,
// defaulting to 0 when the value is missing or unparseable.
func parseEpochMillis(value string) int64 {
	for _, layout := range submittedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
