package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tchasinga/adminjobposter/internal/export"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

type ApplicantStore interface {
	Create(ctx context.Context, a *models.Applicant) error
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	List(ctx context.Context, f models.ApplicantFilter, page, limit int) ([]*models.Applicant, int64, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Applicant, error)
}

type ApplicantSuggester interface {
	Suggest(ctx context.Context, query string) ([]models.ApplicantSuggestion, error)
}

// ApplicantHandler serves the public apply form and the admin applicant views.
type ApplicantHandler struct {
	store  ApplicantStore
	search ApplicantSuggester
}

func NewApplicantHandler(store ApplicantStore, search ApplicantSuggester) *ApplicantHandler {
	return &ApplicantHandler{store: store, search: search}
}

var boardLabels = map[string]string{
	models.StatusPending:  "Pending",
	models.StatusReviewed: "Reviewed",
	models.StatusRejected: "Rejected",
	models.StatusHired:    "Hired",
}

// CreateApplicant godoc
// @Summary Submit an application
// @Tags applicants
// @Accept json
// @Produce json
// @Param payload body models.CreateApplicantRequest true "Application"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /applicants [post]
func (h *ApplicantHandler) CreateApplicant(c *gin.Context) {
	var req models.CreateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.Status != "" && !models.ValidApplicantStatus(req.Status) {
		abortWithError(c, http.StatusBadRequest, "invalid_status", "Invalid status value")
		return
	}

	a := req.ToApplicant()
	sanitizeApplicant(a)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Create(ctx, a); err != nil {
		storeError(c, err, "applicant")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Application submitted successfully",
		"applicant": a,
	})
}

// ListApplicants godoc
// @Summary List applicants
// @Description Filterable applicant list, newest first. Pagination applies when page and limit are both positive.
// @Tags applicants
// @Security ApiKeyAuth
// @Produce json
// @Param status query string false "pending, reviewed, rejected or hired"
// @Param country query string false "Case-insensitive country match"
// @Param search query string false "Matches name, email, company or telegram"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ApplicantListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /applicants [get]
func (h *ApplicantHandler) ListApplicants(c *gin.Context) {
	var filter models.ApplicantFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := requestContext(c)
	defer cancel()

	applicants, total, err := h.store.List(ctx, filter, page, limit)
	if err != nil {
		serverError(c, err, "applicants")
		return
	}

	resp := models.ApplicantListResponse{Applicants: applicants, Filters: &filter}
	if page > 0 && limit > 0 {
		resp.Pagination = models.NewPagination(total, page, limit)
	}
	c.JSON(http.StatusOK, resp)
}

// GetApplicant godoc
// @Summary Get an applicant
// @Tags applicants
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} models.Applicant
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applicants/{id} [get]
func (h *ApplicantHandler) GetApplicant(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		storeError(c, err, "applicant")
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateStatus godoc
// @Summary Move an applicant to another status
// @Tags applicants
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param payload body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Applicant
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applicants/{id}/status [put]
func (h *ApplicantHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Status is required")
		return
	}
	if !models.ValidApplicantStatus(req.Status) {
		abortWithError(c, http.StatusBadRequest, "invalid_status", "Invalid status value")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.store.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		storeError(c, err, "applicant")
		return
	}
	c.JSON(http.StatusOK, a)
}

// Board godoc
// @Summary Applicant pipeline board
// @Description Applicants grouped into one column per status
// @Tags applicants
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string][]models.BoardColumn
// @Router /applicants/board [get]
func (h *ApplicantHandler) Board(c *gin.Context) {
	var filter models.ApplicantFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	filter.Status = ""

	ctx, cancel := requestContext(c)
	defer cancel()

	applicants, _, err := h.store.List(ctx, filter, 0, 0)
	if err != nil {
		serverError(c, err, "applicant board")
		return
	}

	columns := make([]models.BoardColumn, len(models.ApplicantStatuses))
	index := make(map[string]int, len(models.ApplicantStatuses))
	for i, s := range models.ApplicantStatuses {
		columns[i] = models.BoardColumn{Status: s, Label: boardLabels[s], Applicants: []*models.Applicant{}}
		index[s] = i
	}
	for _, a := range applicants {
		i, ok := index[a.Status]
		if !ok {
			// legacy documents without a status sit in the first column
			i = 0
		}
		columns[i].Applicants = append(columns[i].Applicants, a)
		columns[i].Count++
	}

	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

// Suggest godoc
// @Summary Applicant name/email suggestions
// @Tags applicants
// @Security ApiKeyAuth
// @Produce json
// @Param q query string true "Partial name or email"
// @Success 200 {object} map[string][]models.ApplicantSuggestion
// @Router /applicants/suggest [get]
func (h *ApplicantHandler) Suggest(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	suggestions, err := h.search.Suggest(ctx, c.Query("q"))
	if err != nil {
		serverError(c, err, "suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Export godoc
// @Summary Export applicants
// @Tags applicants
// @Security ApiKeyAuth
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applicants/export [get]
func (h *ApplicantHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unsupported_format", "Supported formats: csv, pdf, xlsx")
		return
	}
	var filter models.ApplicantFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	applicants, _, err := h.store.List(ctx, filter, 0, 0)
	if err != nil {
		serverError(c, err, "export")
		return
	}
	if len(applicants) == 0 {
		abortWithError(c, http.StatusNotFound, "not_found", "No applicants found")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, applicants); err != nil {
		serverError(c, err, "export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func sanitizeApplicant(a *models.Applicant) {
	a.Fullname = utils.StripHTML(a.Fullname)
	a.Country = utils.StripHTML(a.Country)
	a.TelegramUsername = utils.StripHTML(a.TelegramUsername)
	a.ExperienceLevel = utils.StripHTML(a.ExperienceLevel)
	a.PreviousCompany = utils.StripHTML(a.PreviousCompany)
	a.Availability = utils.StripHTML(a.Availability)
	for i, s := range a.AppliedJobs {
		a.AppliedJobs[i] = utils.StripHTML(s)
	}
	for i, s := range a.PreviousAchievements {
		a.PreviousAchievements[i] = utils.StripHTML(s)
	}
}
