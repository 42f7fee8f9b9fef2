package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tchasinga/adminjobposter/internal/chart"
)

// GroupCount is a generic $group result.
type GroupCount struct {
	Key   string `json:"key" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// JobSalary is the projection used to compute salary averages per type.
type JobSalary struct {
	Type   string `bson:"typeofcarees"`
	Salary string `bson:"salary"`
}

type ApplicantsChartMeta struct {
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	GroupBy     string    `json:"groupBy"`
	TotalMonths int       `json:"totalMonths"`
}

type ApplicantsChartResponse struct {
	Success bool                `json:"success"`
	Data    chart.Series        `json:"data"`
	Meta    ApplicantsChartMeta `json:"meta"`
}

type JobsChartDataset struct {
	Label           string            `json:"label"`
	Data            []int64           `json:"data"`
	Percentages     []string          `json:"percentages"`
	AvgSalaries     []decimal.Decimal `json:"avgSalaries"`
	BackgroundColor []string          `json:"backgroundColor"`
	BorderColor     []string          `json:"borderColor"`
}

type JobsChartResponse struct {
	Labels    []string           `json:"labels"`
	Datasets  []JobsChartDataset `json:"datasets"`
	TotalJobs int64              `json:"totalJobs"`
}

type DashboardOverview struct {
	TotalJobs           int64 `json:"totalJobs"`
	ActiveJobs          int64 `json:"activeJobs"`
	TotalApplicants     int64 `json:"totalApplicants"`
	ApplicantsThisMonth int64 `json:"applicantsThisMonth"`
}

type RecentApplicant struct {
	Fullname    string    `json:"fullname" bson:"fullname"`
	Email       string    `json:"email" bson:"email"`
	AppliedJobs []string  `json:"appliedJobs" bson:"appliedJobs"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type JobStats struct {
	ByType []GroupCount `json:"byType"`
	Trend  chart.Series `json:"trend"`
}

type ApplicantStats struct {
	ByStatus     []GroupCount      `json:"byStatus"`
	ByExperience []GroupCount      `json:"byExperience"`
	Recent       []RecentApplicant `json:"recent"`
	PopularJobs  []GroupCount      `json:"popularJobs"`
	Trend        chart.Series      `json:"trend"`
}

type DashboardStats struct {
	Overview   DashboardOverview `json:"overview"`
	Jobs       JobStats          `json:"jobs"`
	Applicants ApplicantStats    `json:"applicants"`
}
