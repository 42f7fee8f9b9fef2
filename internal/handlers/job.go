package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tchasinga/adminjobposter/internal/changefeed"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

const (
	defaultLongPoll = 25 * time.Second
	maxLongPoll     = 30 * time.Second
)

type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, f models.JobFilter) ([]*models.Job, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Job, error)
	Close(ctx context.Context, id string) (*models.Job, error)
	Delete(ctx context.Context, id string) error
	LatestUpdate(ctx context.Context) (time.Time, error)
}

type ChangeFeed interface {
	Version(topic string) uint64
	Publish(ctx context.Context, topic string) error
	Wait(ctx context.Context, topic string, since uint64) (uint64, error)
}

// JobHandler handles job posting endpoints
type JobHandler struct {
	store JobStore
	feed  ChangeFeed
}

func NewJobHandler(store JobStore, feed ChangeFeed) *JobHandler {
	return &JobHandler{store: store, feed: feed}
}

// CreateJob godoc
// @Summary Create a job posting
// @Tags jobs
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body models.CreateJobRequest true "Job"
// @Success 201 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	job := &models.Job{
		Title:                utils.StripHTML(req.Title),
		TypeOfCarees:         utils.StripHTML(req.TypeOfCarees),
		TypeOfWorks:          utils.StripHTML(req.TypeOfWorks),
		TypeOfSystem:         utils.StripHTML(req.TypeOfSystem),
		QuestionOne:          utils.StripHTML(req.QuestionOne),
		QuestionTwo:          utils.StripHTML(req.QuestionTwo),
		CardImgIcon:          req.CardImgIcon,
		Country:              utils.StripHTML(req.Country),
		Salary:               utils.StripHTML(req.Salary),
		Description:          utils.SanitizeRichText(req.Description),
		BgDetailsPage:        req.BgDetailsPage,
		ProjectDescription:   utils.SanitizeRichText(req.ProjectDescription),
		JobRequirementSkills: utils.SanitizeRichText(req.JobRequirementSkills),
		JobResponsibilities:  utils.SanitizeRichText(req.JobResponsibilities),
		ContractTerm:         utils.StripHTML(req.ContractTerm),
		Status:               models.JobStatusActive,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Create(ctx, job); err != nil {
		serverError(c, err, "job")
		return
	}
	h.publish(ctx)

	c.JSON(http.StatusCreated, job)
}

// ListJobs godoc
// @Summary List job postings
// @Description With wait=true and since=<RFC3339> the request blocks until jobs change after since or the timeout (default 25s, max 30s) passes.
// @Tags jobs
// @Produce json
// @Param title query string false "Case-insensitive title match"
// @Param typeofcarees query string false "Career type"
// @Param salaryMin query string false "Minimum salary"
// @Param salaryMax query string false "Maximum salary"
// @Param wait query bool false "Long-poll for changes"
// @Param since query string false "RFC3339 time of the last seen update"
// @Param timeout query string false "Long-poll timeout, seconds or Go duration"
// @Success 200 {object} models.JobListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	var filter models.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	message := ""
	if c.Query("wait") == "true" {
		since, err := time.Parse(time.RFC3339Nano, c.Query("since"))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid_since", "since must be an RFC3339 timestamp")
			return
		}
		timeout, err := parseLongPollTimeout(c.Query("timeout"))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid_timeout", err.Error())
			return
		}

		message, err = h.waitForChange(c.Request.Context(), since, timeout)
		if err != nil {
			if c.Request.Context().Err() != nil {
				// client went away
				return
			}
			serverError(c, err, "jobs")
			return
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	jobs, err := h.store.List(ctx, filter)
	if err != nil {
		serverError(c, err, "jobs")
		return
	}
	latest, err := h.store.LatestUpdate(ctx)
	if err != nil {
		serverError(c, err, "jobs")
		return
	}

	resp := models.JobListResponse{Jobs: jobs, Filters: &filter, Message: message}
	if !latest.IsZero() {
		resp.LastUpdated = &latest
	}
	c.JSON(http.StatusOK, resp)
}

// waitForChange returns once jobs changed after since, or when timeout
// passes. The feed version is read before the store so a change landing in
// between still wakes the waiter.
func (h *JobHandler) waitForChange(ctx context.Context, since time.Time, timeout time.Duration) (string, error) {
	version := h.feed.Version(changefeed.TopicJobs)

	latest, err := h.store.LatestUpdate(ctx)
	if err != nil {
		return "", err
	}
	if latest.After(since) {
		return "Data updated", nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = h.feed.Wait(waitCtx, changefeed.TopicJobs, version)
	switch {
	case err == nil:
		return "Data updated", nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return "Timed out waiting for changes", nil
	default:
		return "", err
	}
}

// GetJob godoc
// @Summary Get a job posting
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	job, err := h.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		storeError(c, err, "job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob godoc
// @Summary Update a job posting
// @Description Partial update; omitted fields keep their value
// @Tags jobs
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param payload body models.UpdateJobRequest true "Fields to change"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req models.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	set, err := jobUpdates(&req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if len(set) == 0 {
		abortWithError(c, http.StatusBadRequest, "validation_error", "No fields to update")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	job, err := h.store.Update(ctx, c.Param("id"), set)
	if err != nil {
		storeError(c, err, "job")
		return
	}
	h.publish(ctx)

	c.JSON(http.StatusOK, job)
}

// DeleteJob godoc
// @Summary Close or delete a job posting
// @Tags jobs
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Job ID"
// @Param action query string false "close or delete" default(delete)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	switch action := c.DefaultQuery("action", "delete"); action {
	case "close":
		job, err := h.store.Close(ctx, c.Param("id"))
		if err != nil {
			storeError(c, err, "job")
			return
		}
		h.publish(ctx)
		c.JSON(http.StatusOK, gin.H{"message": "Job closed successfully", "job": job})
	case "delete":
		if err := h.store.Delete(ctx, c.Param("id")); err != nil {
			storeError(c, err, "job")
			return
		}
		h.publish(ctx)
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Job deleted successfully"})
	default:
		abortWithError(c, http.StatusBadRequest, "invalid_action", "action must be close or delete")
	}
}

func (h *JobHandler) publish(ctx context.Context) {
	if err := h.feed.Publish(ctx, changefeed.TopicJobs); err != nil {
		slog.Warn("publish job change", "err", err)
	}
}

func jobUpdates(req *models.UpdateJobRequest) (bson.M, error) {
	set := bson.M{}
	plain := map[string]*string{
		"title":        req.Title,
		"typeofcarees": req.TypeOfCarees,
		"typeofworks":  req.TypeOfWorks,
		"typeofsystem": req.TypeOfSystem,
		"questionone":  req.QuestionOne,
		"questiontwo":  req.QuestionTwo,
		"country":      req.Country,
		"salary":       req.Salary,
		"contractTerm": req.ContractTerm,
	}
	for field, v := range plain {
		if v != nil {
			set[field] = utils.StripHTML(*v)
		}
	}
	rich := map[string]*string{
		"description":          req.Description,
		"projectdescription":   req.ProjectDescription,
		"jobrequirementskills": req.JobRequirementSkills,
		"jobresponsibilities":  req.JobResponsibilities,
	}
	for field, v := range rich {
		if v != nil {
			set[field] = utils.SanitizeRichText(*v)
		}
	}
	if req.CardImgIcon != nil {
		set["cardImgIcon"] = *req.CardImgIcon
	}
	if req.BgDetailsPage != nil {
		set["bgdetailspage"] = *req.BgDetailsPage
	}
	if req.Status != nil {
		switch *req.Status {
		case models.JobStatusActive:
			set["status"] = models.JobStatusActive
			set["closedAt"] = nil
		case models.JobStatusClosed:
			set["status"] = models.JobStatusClosed
			set["closedAt"] = time.Now().UTC()
		default:
			return nil, errors.New("status must be active or closed")
		}
	}
	return set, nil
}

// parseLongPollTimeout accepts whole seconds ("20") or a Go duration ("20s").
func parseLongPollTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return defaultLongPoll, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, serr := strconv.Atoi(raw)
		if serr != nil {
			return 0, errors.New("timeout must be seconds or a duration such as 20s")
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, errors.New("timeout must be positive")
	}
	if d > maxLongPoll {
		d = maxLongPoll
	}
	return d, nil
}
