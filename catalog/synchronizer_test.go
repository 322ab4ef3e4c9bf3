package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cznethub/go-catalog-client/catalog"
	"github.com/cznethub/go-catalog-client/notifications"
	"github.com/cznethub/go-catalog-client/submissions"
)

// fakeSession is a minimal SessionController
type fakeSession struct {
	mu      sync.Mutex
	token   string
	logouts int
}

func (f *fakeSession) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) LogOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.token = ""
}

// recordingNotifier captures toasts for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	toasts []notifications.Notification
}

func (n *recordingNotifier) Toast(message string, kind notifications.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, notifications.Notification{Message: message, Kind: kind})
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.toasts))
	for _, toast := range n.toasts {
		out = append(out, toast.Message)
	}
	return out
}

// testFixture holds all test dependencies
type testFixture struct {
	sess     *fakeSession
	repo     *submissions.InMemoryRepo
	notifier *recordingNotifier
	sync     *catalog.Synchronizer
}

func setupTestFixture(t *testing.T, baseURL string) *testFixture {
	t.Helper()

	f := &testFixture{
		sess:     &fakeSession{token: "test-token"},
		repo:     submissions.NewInMemoryRepo(),
		notifier: &recordingNotifier{},
	}

	client, err := catalog.NewClient(baseURL, f.sess)
	require.NoError(t, err)

	synchronizer, err := catalog.NewSynchronizer(client, f.sess, f.repo, f.notifier)
	require.NoError(t, err)

	f.sync = synchronizer
	return f
}

func (f *testFixture) cached(t *testing.T) []submissions.Submission {
	t.Helper()
	all, err := f.repo.ReadAll()
	require.NoError(t, err)
	return all
}

const listPayload = `[
	{"_id":"a1","title":"T","authors":["X"],"submitted":"2020-01-01T00:00:00Z","identifier":"id1","url":"u"},
	{"_id":"b2","title":"S","authors":["Y","Z"],"submitted":"2021-06-01T12:00:00Z","identifier":"id2","url":"v"}
]`

func TestFetchSubmissionsUpsertsIntoCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/catalog/submission", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(listPayload))
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	status := f.sync.FetchSubmissions(context.Background())

	require.Equal(t, http.StatusOK, status)
	require.False(t, f.sync.IsFetching())

	cached := f.cached(t)
	require.Len(t, cached, 2)
	require.Equal(t, "a1", cached[0].ID)
	require.Equal(t, int64(1577836800000), cached[0].Date)
	require.Equal(t, "id1", cached[0].Identifier)
}

func TestFetchSubmissionsLogsOutOn401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	status := f.sync.FetchSubmissions(context.Background())

	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, 1, f.sess.logouts)
	require.Empty(t, f.cached(t))
	require.False(t, f.sync.IsFetching())
}

func TestFetchSubmissionsClearsFlagOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	f := setupTestFixture(t, server.URL)
	status := f.sync.FetchSubmissions(context.Background())

	require.Zero(t, status)
	require.False(t, f.sync.IsFetching())
	require.Empty(t, f.cached(t))
}

const repositoryPayload = `{
	"_id": "db-1",
	"name": "Lake Survey",
	"creator": [{"name": "Doe, J"}],
	"dateCreated": "2021-03-15T08:30:00Z",
	"identifier": ["hs-abc"],
	"url": "https://hydroshare.org/resource/hs-abc"
}`

func TestRegisterSubmissionMapsRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/catalog/repository/hydroshare/hs-abc/", r.URL.Path)
		_, _ = w.Write([]byte(repositoryPayload))
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	record := f.sync.RegisterSubmission(context.Background(), "hs-abc")

	require.NotNil(t, record)
	require.Equal(t, "db-1", record.ID)
	require.Equal(t, "hs-abc", record.Identifier)
	require.Equal(t, "hs-abc", record.RepoIdentifier)
	require.Equal(t, []string{"Doe, J"}, record.Authors)

	// Registration is read+transform: the cache is not written.
	require.Empty(t, f.cached(t))
	require.Equal(t, []string{"Your submission has been registered!"}, f.notifier.messages())
}

func TestRegisterSubmissionAlreadyRegistered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	record := f.sync.RegisterSubmission(context.Background(), "hs-abc")

	require.Nil(t, record)
	require.Empty(t, f.cached(t))
	// The conflict wording is distinct from the generic failure.
	require.Equal(t, []string{"This resource has already been registered"}, f.notifier.messages())
}

func TestRegisterSubmissionGenericFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	record := f.sync.RegisterSubmission(context.Background(), "hs-abc")

	require.Nil(t, record)
	require.Equal(t, []string{"Failed to register submission"}, f.notifier.messages())
}

func TestUpdateSubmissionRefreshes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/catalog/repository/hydroshare/hs-abc/", r.URL.Path)
		_, _ = w.Write([]byte(repositoryPayload))
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	record := f.sync.UpdateSubmission(context.Background(), "hs-abc")

	require.NotNil(t, record)
	require.Equal(t, "Lake Survey", record.Title)
	require.Equal(t, []string{"Your submission has been updated!"}, f.notifier.messages())
}

func TestUpdateSubmissionFailureReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	record := f.sync.UpdateSubmission(context.Background(), "hs-abc")

	require.Nil(t, record)
	require.Equal(t, []string{"Failed to update submission"}, f.notifier.messages())
}

func seedCache(t *testing.T, f *testFixture) {
	t.Helper()
	require.NoError(t, f.repo.Upsert([]submissions.Submission{
		{ID: "a1", Identifier: "id1", Title: "T"},
		{ID: "b2", Identifier: "id2", Title: "S"},
	}))
}

func TestDeleteSubmissionRemovesByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		// The remote call is keyed by identifier, not by cache id.
		require.Equal(t, "/catalog/dataset/id1/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	seedCache(t, f)

	status := f.sync.DeleteSubmission(context.Background(), "id1", "a1")

	require.Equal(t, http.StatusOK, status)
	cached := f.cached(t)
	require.Len(t, cached, 1)
	require.Equal(t, "b2", cached[0].ID)
}

func TestDeleteSubmissionFailureLeavesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	seedCache(t, f)

	status := f.sync.DeleteSubmission(context.Background(), "id1", "a1")

	require.Equal(t, http.StatusInternalServerError, status)
	require.Len(t, f.cached(t), 2)
	require.Equal(t, []string{"Failed to delete submission"}, f.notifier.messages())
}

func TestSubmitDatasetReturnsNewID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/catalog/dataset/", r.URL.Path)

		var doc map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		require.Equal(t, "Lake Survey", doc["name"])

		_, _ = w.Write([]byte(`{"_id": "new-1"}`))
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	id := f.sync.SubmitDataset(context.Background(), json.RawMessage(`{"name":"Lake Survey"}`))
	require.Equal(t, "new-1", id)
}

func TestUpdateAndFetchDataset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/dataset/db-1/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"name":"Lake Survey"}`))
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupTestFixture(t, server.URL)

	require.True(t, f.sync.UpdateDataset(context.Background(), "db-1", json.RawMessage(`{"name":"Lake Survey"}`)))

	doc := f.sync.FetchDataset(context.Background(), "db-1")
	require.JSONEq(t, `{"name":"Lake Survey"}`, string(doc))
}

func TestFetchDatasetFailureNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	require.Nil(t, f.sync.FetchDataset(context.Background(), "missing"))
	require.Equal(t, []string{"Failed to load dataset"}, f.notifier.messages())
}

func TestEmptyTokenProceedsAndExpiresServerSide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	f.sess.token = ""

	status := f.sync.FetchSubmissions(context.Background())
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, 1, f.sess.logouts)
}
