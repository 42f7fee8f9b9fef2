package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tchasinga/adminjobposter/internal/chart"
	"github.com/tchasinga/adminjobposter/internal/models"
)

type DashboardReader interface {
	ApplicantsChart(ctx context.Context, months int, groupBy string) (*models.ApplicantsChartResponse, error)
	JobsChart(ctx context.Context) (*models.JobsChartResponse, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type DashboardHandler struct {
	dashboard DashboardReader
}

func NewDashboardHandler(dashboard DashboardReader) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// ApplicantsChart godoc
// @Summary Applicants per period by status
// @Description Gap-filled applicant counts per day, ISO week or month over the last N months
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Param months query int false "Lookback in months (1-24)" default(12)
// @Param groupBy query string false "day, week or month" default(month)
// @Success 200 {object} models.ApplicantsChartResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /dashboard/applicants-chart [get]
func (h *DashboardHandler) ApplicantsChart(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "12"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_months", chart.ErrInvalidMonths.Error())
		return
	}

	resp, err := h.dashboard.ApplicantsChart(c.Request.Context(), months, c.DefaultQuery("groupBy", "month"))
	switch {
	case errors.Is(err, chart.ErrInvalidMonths):
		abortWithError(c, http.StatusBadRequest, "invalid_months", err.Error())
		return
	case errors.Is(err, chart.ErrInvalidGranularity):
		abortWithError(c, http.StatusBadRequest, "invalid_group_by", err.Error())
		return
	case err != nil:
		serverError(c, err, "applicants chart")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// JobsChart godoc
// @Summary Job distribution by type
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.JobsChartResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /dashboard/jobs-chart [get]
func (h *DashboardHandler) JobsChart(c *gin.Context) {
	resp, err := h.dashboard.JobsChart(c.Request.Context())
	if err != nil {
		serverError(c, err, "jobs chart")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats godoc
// @Summary Dashboard overview
// @Description Totals, breakdowns, recent applicants, popular jobs and 30 day trends
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Failure 500 {object} models.ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		serverError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
