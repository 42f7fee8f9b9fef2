package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tchasinga/adminjobposter/internal/changefeed"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/repository"
)

type fakeJobStore struct {
	mu sync.Mutex

	latest    time.Time
	latestHit chan struct{}

	created   *models.Job
	lastSet   bson.M
	closedID  string
	deletedID string
	missing   bool
}

func (f *fakeJobStore) Create(_ context.Context, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.ID = primitive.NewObjectID()
	f.created = job
	return nil
}

func (f *fakeJobStore) FindByID(_ context.Context, id string) (*models.Job, error) {
	if f.missing {
		return nil, repository.ErrNotFound
	}
	return &models.Job{Title: "Backend Engineer"}, nil
}

func (f *fakeJobStore) List(context.Context, models.JobFilter) ([]*models.Job, error) {
	return []*models.Job{{Title: "Backend Engineer", Status: models.JobStatusActive}}, nil
}

func (f *fakeJobStore) Update(_ context.Context, id string, set bson.M) (*models.Job, error) {
	if f.missing {
		return nil, repository.ErrNotFound
	}
	f.lastSet = set
	return &models.Job{Title: "updated"}, nil
}

func (f *fakeJobStore) Close(_ context.Context, id string) (*models.Job, error) {
	if f.missing {
		return nil, repository.ErrNotFound
	}
	f.closedID = id
	return &models.Job{Status: models.JobStatusClosed}, nil
}

func (f *fakeJobStore) Delete(_ context.Context, id string) error {
	if f.missing {
		return repository.ErrNotFound
	}
	f.deletedID = id
	return nil
}

func (f *fakeJobStore) LatestUpdate(context.Context) (time.Time, error) {
	if f.latestHit != nil {
		select {
		case f.latestHit <- struct{}{}:
		default:
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, nil
}

func setupJobRouter(store JobStore, feed ChangeFeed) http.Handler {
	r := newTestRouter()
	h := NewJobHandler(store, feed)
	r.POST("/jobs", h.CreateJob)
	r.GET("/jobs", h.ListJobs)
	r.GET("/jobs/:id", h.GetJob)
	r.PUT("/jobs/:id", h.UpdateJob)
	r.DELETE("/jobs/:id", h.DeleteJob)
	return r
}

func validJob() map[string]string {
	return map[string]string{
		"title":                "<b>Backend</b> Engineer",
		"typeofcarees":         "Engineering",
		"typeofworks":          "Remote",
		"typeofsystem":         "Full-time",
		"questionone":          "Why us?",
		"questiontwo":          "Notice period?",
		"cardImgIcon":          "https://cdn.example.com/icon.png",
		"country":              "Kenya",
		"salary":               "$5,000",
		"description":          `<p>Build APIs</p><script>alert(1)</script>`,
		"bgdetailspage":        "https://cdn.example.com/bg.png",
		"projectdescription":   "<ul><li>Payments</li></ul>",
		"jobrequirementskills": "Go",
		"jobresponsibilities":  "Ship",
		"contractTerm":         "12 months",
	}
}

func sinceQuery(t time.Time) string {
	return url.QueryEscape(t.Format(time.RFC3339Nano))
}

func TestCreateJobSanitizesAndPublishes(t *testing.T) {
	store := &fakeJobStore{}
	feed := changefeed.NewBroker()
	w := doRequest(t, setupJobRouter(store, feed), http.MethodPost, "/jobs", validJob())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, store.created)
	assert.Equal(t, "Backend Engineer", store.created.Title)
	assert.Contains(t, store.created.Description, "<p>Build APIs</p>")
	assert.NotContains(t, store.created.Description, "script")
	assert.Equal(t, models.JobStatusActive, store.created.Status)
	assert.EqualValues(t, 1, feed.Version(changefeed.TopicJobs))
}

func TestCreateJobRequiresAllFields(t *testing.T) {
	body := validJob()
	delete(body, "contractTerm")
	w := doRequest(t, setupJobRouter(&fakeJobStore{}, changefeed.NewBroker()), http.MethodPost, "/jobs", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListJobs(t *testing.T) {
	updated := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeJobStore{latest: updated}
	w := doRequest(t, setupJobRouter(store, changefeed.NewBroker()), http.MethodGet, "/jobs?title=backend&salaryMin=1000", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.JobListResponse](t, w)
	require.Len(t, resp.Jobs, 1)
	require.NotNil(t, resp.LastUpdated)
	assert.True(t, updated.Equal(*resp.LastUpdated))
	assert.Equal(t, "backend", resp.Filters.Title)
	assert.Equal(t, "1000", resp.Filters.SalaryMin)
	assert.Empty(t, resp.Message)
}

func TestListJobsLongPollReturnsImmediatelyWhenStale(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeJobStore{latest: now}
	path := "/jobs?wait=true&since=" + sinceQuery(now.Add(-time.Minute))

	start := time.Now()
	w := doRequest(t, setupJobRouter(store, changefeed.NewBroker()), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Data updated", decode[models.JobListResponse](t, w).Message)
	assert.Less(t, time.Since(start), time.Second)
}

func TestListJobsLongPollWakesOnPublish(t *testing.T) {
	since := time.Now().UTC()
	store := &fakeJobStore{latest: since.Add(-time.Hour), latestHit: make(chan struct{}, 1)}
	feed := changefeed.NewBroker()
	r := setupJobRouter(store, feed)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doRequest(t, r, http.MethodGet, "/jobs?wait=true&timeout=10&since="+sinceQuery(since), nil)
	}()

	select {
	case <-store.latestHit:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never checked the latest update")
	}
	require.NoError(t, feed.Publish(context.Background(), changefeed.TopicJobs))

	select {
	case w := <-done:
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Data updated", decode[models.JobListResponse](t, w).Message)
	case <-time.After(5 * time.Second):
		t.Fatal("long-poll did not wake on publish")
	}
}

func TestListJobsLongPollTimesOut(t *testing.T) {
	since := time.Now().UTC()
	store := &fakeJobStore{latest: since.Add(-time.Hour)}
	path := "/jobs?wait=true&timeout=50ms&since=" + sinceQuery(since)

	w := doRequest(t, setupJobRouter(store, changefeed.NewBroker()), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.JobListResponse](t, w)
	assert.Equal(t, "Timed out waiting for changes", resp.Message)
	assert.Len(t, resp.Jobs, 1)
}

func TestListJobsLongPollValidation(t *testing.T) {
	r := setupJobRouter(&fakeJobStore{}, changefeed.NewBroker())

	w := doRequest(t, r, http.MethodGet, "/jobs?wait=true", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_since", decode[models.ErrorResponse](t, w).Error)

	w = doRequest(t, r, http.MethodGet, "/jobs?wait=true&timeout=soon&since="+sinceQuery(time.Now()), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseLongPollTimeout(t *testing.T) {
	d, err := parseLongPollTimeout("")
	require.NoError(t, err)
	assert.Equal(t, 25*time.Second, d)

	d, err = parseLongPollTimeout("10")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	d, err = parseLongPollTimeout("2m")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	_, err = parseLongPollTimeout("0")
	assert.Error(t, err)
}

func TestGetJobNotFound(t *testing.T) {
	w := doRequest(t, setupJobRouter(&fakeJobStore{missing: true}, changefeed.NewBroker()), http.MethodGet, "/jobs/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateJob(t *testing.T) {
	store := &fakeJobStore{}
	feed := changefeed.NewBroker()
	r := setupJobRouter(store, feed)
	path := "/jobs/" + primitive.NewObjectID().Hex()

	w := doRequest(t, r, http.MethodPut, path, map[string]string{"title": "<i>Lead</i>", "status": "closed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Lead", store.lastSet["title"])
	assert.Equal(t, models.JobStatusClosed, store.lastSet["status"])
	assert.Contains(t, store.lastSet, "closedAt")
	assert.EqualValues(t, 1, feed.Version(changefeed.TopicJobs))

	w = doRequest(t, r, http.MethodPut, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPut, path, map[string]string{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteJobActions(t *testing.T) {
	store := &fakeJobStore{}
	feed := changefeed.NewBroker()
	r := setupJobRouter(store, feed)
	id := primitive.NewObjectID().Hex()

	w := doRequest(t, r, http.MethodDelete, "/jobs/"+id+"?action=close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, store.closedID)

	w = doRequest(t, r, http.MethodDelete, "/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, store.deletedID)
	assert.EqualValues(t, 2, feed.Version(changefeed.TopicJobs))

	w = doRequest(t, r, http.MethodDelete, "/jobs/"+id+"?action=archive", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	missing := setupJobRouter(&fakeJobStore{missing: true}, changefeed.NewBroker())
	assert.Equal(t, http.StatusNotFound, doRequest(t, missing, http.MethodDelete, "/jobs/"+id, nil).Code)
}
