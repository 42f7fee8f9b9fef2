package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tchasinga/adminjobposter/internal/chart"
	"github.com/tchasinga/adminjobposter/internal/models"
)

// StatisticsRepository runs the read-only aggregations behind the dashboard.
type StatisticsRepository struct {
	jobCollection       *mongo.Collection
	applicantCollection *mongo.Collection
}

func NewStatisticsRepository(db *mongo.Database) *StatisticsRepository {
	return &StatisticsRepository{
		jobCollection:       db.Collection("jobs"),
		applicantCollection: db.Collection("applicants"),
	}
}

func (r *StatisticsRepository) CountJobs(ctx context.Context) (int64, error) {
	return r.jobCollection.CountDocuments(ctx, bson.M{})
}

func (r *StatisticsRepository) CountJobsByStatus(ctx context.Context, status string) (int64, error) {
	return r.jobCollection.CountDocuments(ctx, bson.M{"status": status})
}

func (r *StatisticsRepository) CountApplicants(ctx context.Context) (int64, error) {
	return r.applicantCollection.CountDocuments(ctx, bson.M{})
}

func (r *StatisticsRepository) CountApplicantsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.applicantCollection.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

// JobsByType groups jobs by career type, largest first
func (r *StatisticsRepository) JobsByType(ctx context.Context) ([]models.GroupCount, error) {
	return groupCount(ctx, r.jobCollection, "$typeofcarees")
}

func (r *StatisticsRepository) ApplicantsByStatus(ctx context.Context) ([]models.GroupCount, error) {
	return groupCount(ctx, r.applicantCollection, "$status")
}

func (r *StatisticsRepository) ApplicantsByExperience(ctx context.Context) ([]models.GroupCount, error) {
	return groupCount(ctx, r.applicantCollection, "$experienceLevel")
}

// PopularAppliedJobs counts how often each job title appears in appliedJobs.
func (r *StatisticsRepository) PopularAppliedJobs(ctx context.Context, limit int) ([]models.GroupCount, error) {
	pipeline := []bson.M{
		{"$unwind": "$appliedJobs"},
		{"$group": bson.M{
			"_id":   "$appliedJobs",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": limit},
	}
	return aggregateGroups(ctx, r.applicantCollection, pipeline)
}

func (r *StatisticsRepository) RecentApplicants(ctx context.Context, limit int) ([]models.RecentApplicant, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"fullname": 1, "email": 1, "appliedJobs": 1, "status": 1, "createdAt": 1})

	cursor, err := r.applicantCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.RecentApplicant{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// JobSalaries returns (type, salary) for every job.
func (r *StatisticsRepository) JobSalaries(ctx context.Context) ([]models.JobSalary, error) {
	findOptions := options.Find().SetProjection(bson.M{"typeofcarees": 1, "salary": 1, "_id": 0})

	cursor, err := r.jobCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.JobSalary
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *StatisticsRepository) ApplicantEvents(ctx context.Context, start, end time.Time) ([]chart.Event, error) {
	return fetchStatusEvents(ctx, r.applicantCollection, start, end)
}

func (r *StatisticsRepository) JobEvents(ctx context.Context, start, end time.Time) ([]chart.Event, error) {
	return fetchStatusEvents(ctx, r.jobCollection, start, end)
}

func groupCount(ctx context.Context, coll *mongo.Collection, field string) ([]models.GroupCount, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   bson.M{"$ifNull": bson.A{field, "unknown"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	}
	return aggregateGroups(ctx, coll, pipeline)
}

func aggregateGroups(ctx context.Context, coll *mongo.Collection, pipeline []bson.M) ([]models.GroupCount, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.GroupCount{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
