package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tchasinga/adminjobposter/internal/chart"
	"github.com/tchasinga/adminjobposter/internal/models"
)

// fakeStatsStore serves canned dashboard data and records range arguments.
type fakeStatsStore struct {
	ApplicantEventsFn func(ctx context.Context, start, end time.Time) ([]chart.Event, error)
	salaries          []models.JobSalary
	failWith          error

	lastStart, lastEnd time.Time
	sinceArg           time.Time
}

func (f *fakeStatsStore) CountJobs(context.Context) (int64, error) { return 10, f.failWith }
func (f *fakeStatsStore) CountJobsByStatus(_ context.Context, status string) (int64, error) {
	return 7, nil
}
func (f *fakeStatsStore) CountApplicants(context.Context) (int64, error) { return 42, nil }
func (f *fakeStatsStore) CountApplicantsSince(_ context.Context, since time.Time) (int64, error) {
	f.sinceArg = since
	return 3, nil
}
func (f *fakeStatsStore) JobsByType(context.Context) ([]models.GroupCount, error) {
	return []models.GroupCount{{Key: "Engineering", Count: 6}}, nil
}
func (f *fakeStatsStore) ApplicantsByStatus(context.Context) ([]models.GroupCount, error) {
	return []models.GroupCount{{Key: "pending", Count: 30}}, nil
}
func (f *fakeStatsStore) ApplicantsByExperience(context.Context) ([]models.GroupCount, error) {
	return []models.GroupCount{{Key: "senior", Count: 12}}, nil
}
func (f *fakeStatsStore) PopularAppliedJobs(_ context.Context, limit int) ([]models.GroupCount, error) {
	return []models.GroupCount{{Key: "SRE", Count: 9}}, nil
}
func (f *fakeStatsStore) RecentApplicants(_ context.Context, limit int) ([]models.RecentApplicant, error) {
	return []models.RecentApplicant{{Fullname: "Ada"}}, nil
}
func (f *fakeStatsStore) JobSalaries(context.Context) ([]models.JobSalary, error) {
	return f.salaries, f.failWith
}
func (f *fakeStatsStore) ApplicantEvents(ctx context.Context, start, end time.Time) ([]chart.Event, error) {
	f.lastStart, f.lastEnd = start, end
	if f.ApplicantEventsFn != nil {
		return f.ApplicantEventsFn(ctx, start, end)
	}
	return nil, nil
}
func (f *fakeStatsStore) JobEvents(_ context.Context, start, end time.Time) ([]chart.Event, error) {
	return []chart.Event{{Timestamp: end, Category: models.JobStatusActive}}, nil
}

func newTestDashboard(store *fakeStatsStore, now time.Time) *DashboardService {
	svc := NewDashboardService(store, time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestApplicantsChartMonthly(t *testing.T) {
	now := time.Date(2024, time.February, 29, 18, 0, 0, 0, time.UTC)
	store := &fakeStatsStore{
		ApplicantEventsFn: func(ctx context.Context, start, end time.Time) ([]chart.Event, error) {
			return []chart.Event{
				{Timestamp: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), Category: "pending"},
				{Timestamp: time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), Category: "hired"},
			}, nil
		},
	}

	resp, err := newTestDashboard(store, now).ApplicantsChart(context.Background(), 1, "month")
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, time.Date(2024, time.January, 29, 18, 0, 0, 0, time.UTC), store.lastStart)
	assert.Equal(t, now, store.lastEnd)

	require.Len(t, resp.Data.Periods, 2)
	assert.Equal(t, "2024-01", resp.Data.Periods[0].Key)
	assert.Equal(t, 1, resp.Data.Periods[0].Counts["pending"])
	assert.Equal(t, 1, resp.Data.Periods[1].Counts["hired"])
	assert.Equal(t, "month", resp.Meta.GroupBy)
	assert.Equal(t, 1, resp.Meta.TotalMonths)
}

func TestApplicantsChartValidation(t *testing.T) {
	svc := newTestDashboard(&fakeStatsStore{}, time.Now())

	_, err := svc.ApplicantsChart(context.Background(), 25, "month")
	assert.ErrorIs(t, err, chart.ErrInvalidMonths)

	_, err = svc.ApplicantsChart(context.Background(), 6, "year")
	assert.ErrorIs(t, err, chart.ErrInvalidGranularity)
}

func TestApplicantsChartPropagatesFetchError(t *testing.T) {
	boom := errors.New("mongo down")
	store := &fakeStatsStore{
		ApplicantEventsFn: func(context.Context, time.Time, time.Time) ([]chart.Event, error) {
			return nil, boom
		},
	}
	_, err := newTestDashboard(store, time.Now()).ApplicantsChart(context.Background(), 3, "week")
	assert.Equal(t, boom, err)
}

func TestJobsChart(t *testing.T) {
	store := &fakeStatsStore{salaries: []models.JobSalary{
		{Type: "Engineering", Salary: "$5,000"},
		{Type: "Engineering", Salary: "$4,000"},
		{Type: "Engineering", Salary: "negotiable"},
		{Type: "Support", Salary: "$1,999.99"},
	}}

	resp, err := newTestDashboard(store, time.Now()).JobsChart(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, resp.TotalJobs)
	assert.Equal(t, []string{"Engineering", "Support"}, resp.Labels)

	require.Len(t, resp.Datasets, 1)
	ds := resp.Datasets[0]
	assert.Equal(t, []int64{3, 1}, ds.Data)
	assert.Equal(t, []string{"75.0", "25.0"}, ds.Percentages)
	assert.Equal(t, "4500", ds.AvgSalaries[0].String())
	assert.Equal(t, "1999.99", ds.AvgSalaries[1].String())
	assert.Equal(t, "#FF6384", ds.BorderColor[0])
	assert.Equal(t, "#36A2EBCC", ds.BackgroundColor[1])
}

func TestJobsChartEmpty(t *testing.T) {
	resp, err := newTestDashboard(&fakeStatsStore{}, time.Now()).JobsChart(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resp.TotalJobs)
	assert.Empty(t, resp.Labels)
}

func TestStats(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeStatsStore{}

	stats, err := newTestDashboard(store, now).Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, stats.Overview.TotalJobs)
	assert.EqualValues(t, 7, stats.Overview.ActiveJobs)
	assert.EqualValues(t, 42, stats.Overview.TotalApplicants)
	assert.EqualValues(t, 3, stats.Overview.ApplicantsThisMonth)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), store.sinceArg)

	// 30 days back plus today
	assert.Len(t, stats.Applicants.Trend.Periods, 31)
	assert.Len(t, stats.Jobs.Trend.Periods, 31)
	last := stats.Jobs.Trend.Periods[30]
	assert.Equal(t, "2024-03-15", last.Key)
	assert.Equal(t, 1, last.Counts[models.JobStatusActive])
	assert.Equal(t, "Ada", stats.Applicants.Recent[0].Fullname)
}

func TestStatsFailsWhenAnyQueryFails(t *testing.T) {
	store := &fakeStatsStore{failWith: errors.New("timeout")}
	_, err := newTestDashboard(store, time.Now()).Stats(context.Background())
	require.ErrorContains(t, err, "count jobs")
}
