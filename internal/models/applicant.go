package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Applicant statuses, in pipeline order.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusRejected = "rejected"
	StatusHired    = "hired"
)

var ApplicantStatuses = []string{StatusPending, StatusReviewed, StatusRejected, StatusHired}

func ValidApplicantStatus(s string) bool {
	for _, v := range ApplicantStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Applicant struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Fullname             string             `json:"fullname" bson:"fullname"`
	Country              string             `json:"country" bson:"country"`
	Email                string             `json:"email" bson:"email"`
	TelegramUsername     string             `json:"telegramUsername,omitempty" bson:"telegramUsername,omitempty"`
	AppliedJobs          []string           `json:"appliedJobs" bson:"appliedJobs"`
	SalaryExpectation    float64            `json:"salaryExpectation" bson:"salaryExpectation"`
	ExperienceLevel      string             `json:"experienceLevel" bson:"experienceLevel"`
	UploadResume         string             `json:"uploadResume,omitempty" bson:"uploadResume,omitempty"`
	CasinoExperience     bool               `json:"casinoExperience" bson:"casinoExperience"`
	StrokeIgaming        bool               `json:"strokeIgaming" bson:"strokeIgaming"`
	PreviousCompany      string             `json:"previousCompany,omitempty" bson:"previousCompany,omitempty"`
	PreviousAchievements []string           `json:"previousAchievements" bson:"previousAchievements"`
	Availability         string             `json:"availability" bson:"availability"`
	Status               string             `json:"status" bson:"status"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateApplicantRequest struct {
	Fullname             string   `json:"fullname" binding:"required"`
	Country              string   `json:"country" binding:"required"`
	Email                string   `json:"email" binding:"required,email"`
	TelegramUsername     string   `json:"telegramUsername"`
	AppliedJobs          []string `json:"appliedJobs"`
	SalaryExpectation    float64  `json:"salaryExpectation" binding:"required,gt=0"`
	ExperienceLevel      string   `json:"experienceLevel" binding:"required"`
	UploadResume         string   `json:"uploadResume" binding:"omitempty,url"`
	CasinoExperience     bool     `json:"casinoExperience"`
	StrokeIgaming        bool     `json:"strokeIgaming"`
	PreviousCompany      string   `json:"previousCompany"`
	PreviousAchievements []string `json:"previousAchievements"`
	Availability         string   `json:"availability" binding:"required"`
	Status               string   `json:"status"`
}

// ToApplicant builds the document for insertion. Status defaults to pending.
func (r *CreateApplicantRequest) ToApplicant() *Applicant {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	return &Applicant{
		Fullname:             r.Fullname,
		Country:              r.Country,
		Email:                r.Email,
		TelegramUsername:     r.TelegramUsername,
		AppliedJobs:          nonNil(r.AppliedJobs),
		SalaryExpectation:    r.SalaryExpectation,
		ExperienceLevel:      r.ExperienceLevel,
		UploadResume:         r.UploadResume,
		CasinoExperience:     r.CasinoExperience,
		StrokeIgaming:        r.StrokeIgaming,
		PreviousCompany:      r.PreviousCompany,
		PreviousAchievements: nonNil(r.PreviousAchievements),
		Availability:         r.Availability,
		Status:               status,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ApplicantFilter holds the list query parameters. Zero values mean "no filter".
type ApplicantFilter struct {
	Status            string   `json:"status,omitempty" form:"status"`
	Country           string   `json:"country,omitempty" form:"country"`
	ExperienceLevel   string   `json:"experienceLevel,omitempty" form:"experienceLevel"`
	Availability      string   `json:"availability,omitempty" form:"availability"`
	MinSalary         *float64 `json:"minSalary,omitempty" form:"minSalary"`
	MaxSalary         *float64 `json:"maxSalary,omitempty" form:"maxSalary"`
	CasinoExperience  *bool    `json:"casinoExperience,omitempty" form:"casinoExperience"`
	IgamingExperience *bool    `json:"igamingExperience,omitempty" form:"igamingExperience"`
	Search            string   `json:"search,omitempty" form:"search"`
}

type ApplicantListResponse struct {
	Applicants []*Applicant     `json:"applicants"`
	Pagination *Pagination      `json:"pagination,omitempty"`
	Filters    *ApplicantFilter `json:"filters"`
}

// BoardColumn is one status column of the applicant pipeline board.
type BoardColumn struct {
	Status     string       `json:"status"`
	Label      string       `json:"label"`
	Count      int          `json:"count"`
	Applicants []*Applicant `json:"applicants"`
}

type ApplicantSuggestion struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Score    int    `json:"score"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
