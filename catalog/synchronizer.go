package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/cznethub/go-catalog-client/internal/errors"
	"github.com/cznethub/go-catalog-client/notifications"
	"github.com/cznethub/go-catalog-client/submissions"
)

const (
	submissionsPath = "/catalog/submission"
	datasetPath     = "/catalog/dataset"
	repositoryPath  = "/catalog/repository/hydroshare"
)

// SessionController is the slice of the session manager the synchronizer
// needs: the current token for requests, and forced logout when the server
// reports the session expired.
type SessionController interface {
	TokenProvider
	LogOut()
}

// Synchronizer reconciles the local submission cache with the catalog API.
// All remote operations are terminal: they resolve to a value, a nil
// sentinel, or a status code, and never propagate a raised error. Retry is
// the caller's business.
type Synchronizer struct {
	client   *Client
	sess     SessionController
	repo     submissions.Repo
	notifier notifications.Notifier

	mu         sync.Mutex
	isFetching bool
}

// NewSynchronizer initializes a Synchronizer with required dependencies.
func NewSynchronizer(client *Client, sess SessionController, repo submissions.Repo, notifier notifications.Notifier) (*Synchronizer, error) {
	if client == nil {
		return nil, errors.New("[NewSynchronizer] client is required")
	}
	if sess == nil {
		return nil, errors.New("[NewSynchronizer] session controller is required")
	}
	if repo == nil {
		return nil, errors.New("[NewSynchronizer] submission repo is required")
	}
	if notifier == nil {
		return nil, errors.New("[NewSynchronizer] notifier is required")
	}
	return &Synchronizer{
		client:   client,
		sess:     sess,
		repo:     repo,
		notifier: notifier,
	}, nil
}

// IsFetching reports whether a FetchSubmissions call is in flight.
func (s *Synchronizer) IsFetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFetching
}

// FetchSubmissions lists the authenticated user's submissions and upserts
// them into the cache. Returns the HTTP status code, 0 on transport
// failure. A 401 means the session expired and forces logout. The fetching
// flag is released on every path.
func (s *Synchronizer) FetchSubmissions(ctx context.Context) int {
	log.Debug().Msg("[catalog] fetching submissions...")
	s.setFetching(true)
	defer s.setFetching(false)

	var records []submissionRecord
	status, err := s.client.Get(submissionsPath).Do(ctx, &records)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] FetchSubmissions")
		return 0
	}

	switch {
	case isOK(status):
		batch := make([]submissions.Submission, 0, len(records))
		for _, record := range records {
			batch = append(batch, record.toSubmission())
		}
		if err := s.repo.Upsert(batch); err != nil {
			log.Error().Err(err).Msg("[catalog] FetchSubmissions upsert")
		}
	case status == http.StatusUnauthorized:
		log.Warn().Err(apperrors.ErrUnauthorized).Msg("[catalog] FetchSubmissions")
		s.sess.LogOut()
	}
	return status
}

// RegisterSubmission fetches a not-yet-cataloged resource from its source
// repository and returns it mapped to the Submission shape. Registration
// is a read+transform operation: the caller persists the returned record.
// A 400 means the resource is already registered and gets its own
// notification, distinct from the generic failure.
func (s *Synchronizer) RegisterSubmission(ctx context.Context, identifier string) *submissions.Submission {
	var record repositoryRecord
	status, err := s.client.Get(repositoryEndpoint(identifier)).Do(ctx, &record)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] RegisterSubmission")
		s.notifier.Toast("Failed to register submission", notifications.KindError)
		return nil
	}

	switch {
	case isOK(status):
		s.notifier.Toast("Your submission has been registered!", notifications.KindSuccess)
		mapped := record.toSubmission(identifier)
		return &mapped
	case status == http.StatusBadRequest:
		log.Debug().Err(apperrors.ErrAlreadyRegistered).Str("identifier", identifier).Msg("[catalog] RegisterSubmission")
		s.notifier.Toast("This resource has already been registered", notifications.KindError)
	case status == http.StatusUnauthorized:
		s.sess.LogOut()
	default:
		log.Error().Err(apperrors.ErrRemote).Int("status", status).Msg("[catalog] RegisterSubmission")
		s.notifier.Toast("Failed to register submission", notifications.KindError)
	}
	return nil
}

// UpdateSubmission triggers a server-side metadata refresh from the source
// repository and returns the updated record, nil on any failure.
func (s *Synchronizer) UpdateSubmission(ctx context.Context, repoIdentifier string) *submissions.Submission {
	var record repositoryRecord
	status, err := s.client.Put(repositoryEndpoint(repoIdentifier)).Do(ctx, &record)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] UpdateSubmission")
		s.notifier.Toast("Failed to update submission", notifications.KindError)
		return nil
	}

	switch {
	case isOK(status):
		s.notifier.Toast("Your submission has been updated!", notifications.KindSuccess)
		mapped := record.toSubmission(repoIdentifier)
		return &mapped
	case status == http.StatusUnauthorized:
		s.sess.LogOut()
	default:
		log.Error().Err(apperrors.ErrRemote).Int("status", status).Msg("[catalog] UpdateSubmission")
		s.notifier.Toast("Failed to update submission", notifications.KindError)
	}
	return nil
}

// DeleteSubmission deletes the record from the catalog by identifier, and
// on success removes the cache entry keyed by id. The two keys are
// deliberately different: identifier addresses the remote record, id the
// local one. A non-ok response leaves the cache untouched. Returns the
// HTTP status code, 0 on transport failure.
func (s *Synchronizer) DeleteSubmission(ctx context.Context, identifier, id string) int {
	log.Debug().Str("identifier", identifier).Msg("[catalog] deleting submission...")

	status, err := s.client.Delete(datasetEndpoint(identifier)).Do(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] DeleteSubmission")
		s.notifier.Toast("Failed to delete submission", notifications.KindError)
		return 0
	}

	switch {
	case isOK(status):
		if err := s.repo.DeleteByKey(id); err != nil {
			log.Error().Err(err).Msg("[catalog] DeleteSubmission cache removal")
		}
	case status == http.StatusUnauthorized:
		s.sess.LogOut()
	default:
		s.notifier.Toast("Failed to delete submission", notifications.KindError)
	}
	return status
}

// SubmitDataset submits a validated document to the catalog and returns
// the new record's database id, empty on failure.
func (s *Synchronizer) SubmitDataset(ctx context.Context, document json.RawMessage) string {
	var result struct {
		ID string `json:"_id"`
	}
	status, err := s.client.Post(datasetPath + "/").Json(document).Do(ctx, &result)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] SubmitDataset")
		return ""
	}
	if !isOK(status) {
		if status == http.StatusUnauthorized {
			s.sess.LogOut()
		}
		return ""
	}
	return result.ID
}

// UpdateDataset saves a document over an existing catalog record by its
// database id. Reports success; failures surface a notification only.
func (s *Synchronizer) UpdateDataset(ctx context.Context, id string, document json.RawMessage) bool {
	status, err := s.client.Put(datasetEndpoint(id)).Json(document).Do(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] UpdateDataset")
		s.notifier.Toast("Failed to save changes", notifications.KindError)
		return false
	}
	if !isOK(status) {
		s.notifier.Toast("Failed to save changes", notifications.KindError)
		return false
	}
	return true
}

// FetchDataset reads a catalog record's document by its database id, nil
// on failure.
func (s *Synchronizer) FetchDataset(ctx context.Context, id string) json.RawMessage {
	var document json.RawMessage
	status, err := s.client.Get(datasetEndpoint(id)).Do(ctx, &document)
	if err != nil {
		log.Error().Err(err).Msg("[catalog] FetchDataset")
		s.notifier.Toast("Failed to load dataset", notifications.KindError)
		return nil
	}
	if !isOK(status) {
		s.notifier.Toast("Failed to load dataset", notifications.KindError)
		return nil
	}
	return document
}

func (s *Synchronizer) setFetching(fetching bool) {
	s.mu.Lock()
	s.isFetching = fetching
	s.mu.Unlock()
}

func repositoryEndpoint(identifier string) string {
	return fmt.Sprintf("%s/%s/", repositoryPath, identifier)
}

func datasetEndpoint(key string) string {
	return fmt.Sprintf("%s/%s/", datasetPath, key)
}
