package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tchasinga/adminjobposter/internal/chart"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

const (
	trendDays        = 30
	recentLimit      = 5
	popularJobsLimit = 5
)

// Chart palette; colors repeat once there are more job types than entries.
var jobChartPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0",
	"#9966FF", "#FF9F40", "#C9CBCF", "#7BC225",
}

// StatisticsStore is the read side the dashboard aggregates over.
type StatisticsStore interface {
	CountJobs(ctx context.Context) (int64, error)
	CountJobsByStatus(ctx context.Context, status string) (int64, error)
	CountApplicants(ctx context.Context) (int64, error)
	CountApplicantsSince(ctx context.Context, since time.Time) (int64, error)
	JobsByType(ctx context.Context) ([]models.GroupCount, error)
	ApplicantsByStatus(ctx context.Context) ([]models.GroupCount, error)
	ApplicantsByExperience(ctx context.Context) ([]models.GroupCount, error)
	PopularAppliedJobs(ctx context.Context, limit int) ([]models.GroupCount, error)
	RecentApplicants(ctx context.Context, limit int) ([]models.RecentApplicant, error)
	JobSalaries(ctx context.Context) ([]models.JobSalary, error)
	ApplicantEvents(ctx context.Context, start, end time.Time) ([]chart.Event, error)
	JobEvents(ctx context.Context, start, end time.Time) ([]chart.Event, error)
}

type DashboardService struct {
	store StatisticsStore
	loc   *time.Location
	now   func() time.Time
}

func NewDashboardService(store StatisticsStore, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{store: store, loc: loc, now: time.Now}
}

// ApplicantsChart buckets applicants created in the last months months by
// status. Validation errors come back as chart.ErrInvalidMonths or
// chart.ErrInvalidGranularity.
func (s *DashboardService) ApplicantsChart(ctx context.Context, months int, groupBy string) (*models.ApplicantsChartResponse, error) {
	g, err := chart.ParseGranularity(groupBy)
	if err != nil {
		return nil, err
	}
	start, end, err := chart.RangeForMonths(s.now(), months, s.loc)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ApplicantEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}

	series, err := chart.Aggregate(events, chart.Options{
		Granularity: g,
		Start:       start,
		End:         end,
		Categories:  models.ApplicantStatuses,
		Location:    s.loc,
	})
	if err != nil {
		return nil, err
	}

	return &models.ApplicantsChartResponse{
		Success: true,
		Data:    series,
		Meta: models.ApplicantsChartMeta{
			StartDate:   start,
			EndDate:     end,
			GroupBy:     string(g),
			TotalMonths: months,
		},
	}, nil
}

// JobsChart reports job counts, share and average salary per career type.
func (s *DashboardService) JobsChart(ctx context.Context) (*models.JobsChartResponse, error) {
	rows, err := s.store.JobSalaries(ctx)
	if err != nil {
		return nil, err
	}

	type typeStats struct {
		name    string
		count   int64
		sum     decimal.Decimal
		samples int64
	}
	byType := map[string]*typeStats{}
	for _, r := range rows {
		name := r.Type
		if name == "" {
			name = "unknown"
		}
		st, ok := byType[name]
		if !ok {
			st = &typeStats{name: name}
			byType[name] = st
		}
		st.count++
		if amount, ok := utils.ParseAmount(r.Salary); ok {
			st.sum = st.sum.Add(amount)
			st.samples++
		}
	}

	stats := make([]*typeStats, 0, len(byType))
	for _, st := range byType {
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].name < stats[j].name
	})

	total := int64(len(rows))
	resp := &models.JobsChartResponse{Labels: []string{}, TotalJobs: total}
	ds := models.JobsChartDataset{
		Label:           "Jobs by type",
		Data:            []int64{},
		Percentages:     []string{},
		AvgSalaries:     []decimal.Decimal{},
		BackgroundColor: []string{},
		BorderColor:     []string{},
	}
	for i, st := range stats {
		resp.Labels = append(resp.Labels, st.name)
		ds.Data = append(ds.Data, st.count)
		ds.Percentages = append(ds.Percentages, percentage(st.count, total))

		avg := decimal.Zero
		if st.samples > 0 {
			avg = st.sum.Div(decimal.NewFromInt(st.samples)).Round(2)
		}
		ds.AvgSalaries = append(ds.AvgSalaries, avg)

		color := jobChartPalette[i%len(jobChartPalette)]
		ds.BackgroundColor = append(ds.BackgroundColor, color+"CC")
		ds.BorderColor = append(ds.BorderColor, color)
	}
	resp.Datasets = []models.JobsChartDataset{ds}
	return resp, nil
}

// Stats runs the overview queries concurrently and fails if any of them does.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now().In(s.loc)
	monthStart := chart.PeriodStart(now, chart.GranularityMonth, s.loc)
	trendStart := chart.PeriodStart(now.AddDate(0, 0, -trendDays), chart.GranularityDay, s.loc)

	var out models.DashboardStats
	var jobEvents, applicantEvents []chart.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Overview.TotalJobs, err = s.store.CountJobs(gctx)
		return wrap("count jobs", err)
	})
	g.Go(func() (err error) {
		out.Overview.ActiveJobs, err = s.store.CountJobsByStatus(gctx, models.JobStatusActive)
		return wrap("count active jobs", err)
	})
	g.Go(func() (err error) {
		out.Overview.TotalApplicants, err = s.store.CountApplicants(gctx)
		return wrap("count applicants", err)
	})
	g.Go(func() (err error) {
		out.Overview.ApplicantsThisMonth, err = s.store.CountApplicantsSince(gctx, monthStart)
		return wrap("count applicants this month", err)
	})
	g.Go(func() (err error) {
		out.Jobs.ByType, err = s.store.JobsByType(gctx)
		return wrap("jobs by type", err)
	})
	g.Go(func() (err error) {
		out.Applicants.ByStatus, err = s.store.ApplicantsByStatus(gctx)
		return wrap("applicants by status", err)
	})
	g.Go(func() (err error) {
		out.Applicants.ByExperience, err = s.store.ApplicantsByExperience(gctx)
		return wrap("applicants by experience", err)
	})
	g.Go(func() (err error) {
		out.Applicants.Recent, err = s.store.RecentApplicants(gctx, recentLimit)
		return wrap("recent applicants", err)
	})
	g.Go(func() (err error) {
		out.Applicants.PopularJobs, err = s.store.PopularAppliedJobs(gctx, popularJobsLimit)
		return wrap("popular jobs", err)
	})
	g.Go(func() (err error) {
		jobEvents, err = s.store.JobEvents(gctx, trendStart, now)
		return wrap("job trend", err)
	})
	g.Go(func() (err error) {
		applicantEvents, err = s.store.ApplicantEvents(gctx, trendStart, now)
		return wrap("applicant trend", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var err error
	out.Jobs.Trend, err = chart.Aggregate(jobEvents, chart.Options{
		Granularity: chart.GranularityDay,
		Start:       trendStart,
		End:         now,
		Categories:  models.JobStatuses,
		Location:    s.loc,
	})
	if err != nil {
		return nil, err
	}
	out.Applicants.Trend, err = chart.Aggregate(applicantEvents, chart.Options{
		Granularity: chart.GranularityDay,
		Start:       trendStart,
		End:         now,
		Categories:  models.ApplicantStatuses,
		Location:    s.loc,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func percentage(part, total int64) string {
	if total == 0 {
		return "0.0"
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		StringFixed(1)
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
