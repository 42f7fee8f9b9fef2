package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

var JobStatuses = []string{JobStatusActive, JobStatusClosed}

type Job struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title                string             `json:"title" bson:"title"`
	TypeOfCarees         string             `json:"typeofcarees" bson:"typeofcarees"`
	TypeOfWorks          string             `json:"typeofworks" bson:"typeofworks"`
	TypeOfSystem         string             `json:"typeofsystem" bson:"typeofsystem"`
	QuestionOne          string             `json:"questionone" bson:"questionone"`
	QuestionTwo          string             `json:"questiontwo" bson:"questiontwo"`
	CardImgIcon          string             `json:"cardImgIcon" bson:"cardImgIcon"`
	Country              string             `json:"country" bson:"country"`
	Salary               string             `json:"salary" bson:"salary"`
	Description          string             `json:"description" bson:"description"`
	BgDetailsPage        string             `json:"bgdetailspage" bson:"bgdetailspage"`
	ProjectDescription   string             `json:"projectdescription" bson:"projectdescription"`
	JobRequirementSkills string             `json:"jobrequirementskills" bson:"jobrequirementskills"`
	JobResponsibilities  string             `json:"jobresponsibilities" bson:"jobresponsibilities"`
	ContractTerm         string             `json:"contractTerm" bson:"contractTerm"`
	Status               string             `json:"status" bson:"status"`
	ClosedAt             *time.Time         `json:"closedAt,omitempty" bson:"closedAt,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateJobRequest struct {
	Title                string `json:"title" binding:"required"`
	TypeOfCarees         string `json:"typeofcarees" binding:"required"`
	TypeOfWorks          string `json:"typeofworks" binding:"required"`
	TypeOfSystem         string `json:"typeofsystem" binding:"required"`
	QuestionOne          string `json:"questionone" binding:"required"`
	QuestionTwo          string `json:"questiontwo" binding:"required"`
	CardImgIcon          string `json:"cardImgIcon" binding:"required"`
	Country              string `json:"country" binding:"required"`
	Salary               string `json:"salary" binding:"required"`
	Description          string `json:"description" binding:"required"`
	BgDetailsPage        string `json:"bgdetailspage" binding:"required"`
	ProjectDescription   string `json:"projectdescription" binding:"required"`
	JobRequirementSkills string `json:"jobrequirementskills" binding:"required"`
	JobResponsibilities  string `json:"jobresponsibilities" binding:"required"`
	ContractTerm         string `json:"contractTerm" binding:"required"`
}

// UpdateJobRequest is a partial update: nil fields are left unchanged.
type UpdateJobRequest struct {
	Title                *string `json:"title"`
	TypeOfCarees         *string `json:"typeofcarees"`
	TypeOfWorks          *string `json:"typeofworks"`
	TypeOfSystem         *string `json:"typeofsystem"`
	QuestionOne          *string `json:"questionone"`
	QuestionTwo          *string `json:"questiontwo"`
	CardImgIcon          *string `json:"cardImgIcon"`
	Country              *string `json:"country"`
	Salary               *string `json:"salary"`
	Description          *string `json:"description"`
	BgDetailsPage        *string `json:"bgdetailspage"`
	ProjectDescription   *string `json:"projectdescription"`
	JobRequirementSkills *string `json:"jobrequirementskills"`
	JobResponsibilities  *string `json:"jobresponsibilities"`
	ContractTerm         *string `json:"contractTerm"`
	Status               *string `json:"status"`
}

type JobFilter struct {
	Title        string `json:"title,omitempty" form:"title"`
	TypeOfCarees string `json:"typeofcarees,omitempty" form:"typeofcarees"`
	TypeOfWorks  string `json:"typeofworks,omitempty" form:"typeofworks"`
	Country      string `json:"country,omitempty" form:"country"`
	ContractTerm string `json:"contractTerm,omitempty" form:"contractTerm"`
	SalaryMin    string `json:"salaryMin,omitempty" form:"salaryMin"`
	SalaryMax    string `json:"salaryMax,omitempty" form:"salaryMax"`
}

type JobListResponse struct {
	Jobs        []*Job     `json:"jobs"`
	LastUpdated *time.Time `json:"lastUpdated"`
	Filters     *JobFilter `json:"filters"`
	Message     string     `json:"message,omitempty"`
}
