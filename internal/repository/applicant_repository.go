package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tchasinga/adminjobposter/internal/chart"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

type ApplicantRepository struct {
	collection *mongo.Collection
}

func NewApplicantRepository(db *mongo.Database) *ApplicantRepository {
	return &ApplicantRepository{
		collection: db.Collection("applicants"),
	}
}

// EnsureIndexes creates the unique email index and the createdAt index used
// by list sorting and chart range scans.
func (r *ApplicantRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
	})
	return err
}

func (r *ApplicantRepository) Create(ctx context.Context, a *models.Applicant) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return duplicateEmail(err)
	}
	return nil
}

func (r *ApplicantRepository) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var a models.Applicant
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// List returns applicants matching f, newest first. Pagination applies only
// when both page and limit are positive; total is the full match count.
func (r *ApplicantRepository) List(ctx context.Context, f models.ApplicantFilter, page, limit int) ([]*models.Applicant, int64, error) {
	filter := applicantQuery(f)

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	paginate := page > 0 && limit > 0
	if paginate {
		findOptions.SetSkip(int64((page - 1) * limit))
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	applicants := []*models.Applicant{}
	if err = cursor.All(ctx, &applicants); err != nil {
		return nil, 0, err
	}

	if !paginate {
		return applicants, int64(len(applicants)), nil
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return applicants, total, nil
}

func (r *ApplicantRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Applicant, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a models.Applicant
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// SearchCandidates returns the newest applicants with just the fields needed
// for suggestion matching.
func (r *ApplicantRepository) SearchCandidates(ctx context.Context, limit int) ([]*models.Applicant, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"fullname": 1, "email": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.Applicant
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type statusEventDoc struct {
	CreatedAt time.Time `bson:"createdAt"`
	Status    string    `bson:"status"`
}

// StatusEvents fetches (createdAt, status) for applicants created within
// [start, end].
func (r *ApplicantRepository) StatusEvents(ctx context.Context, start, end time.Time) ([]chart.Event, error) {
	return fetchStatusEvents(ctx, r.collection, start, end)
}

func fetchStatusEvents(ctx context.Context, coll *mongo.Collection, start, end time.Time) ([]chart.Event, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": start, "$lte": end}}
	findOptions := options.Find().SetProjection(bson.M{"createdAt": 1, "status": 1, "_id": 0})

	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("fetch %s events: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []statusEventDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s events: %w", coll.Name(), err)
	}

	events := make([]chart.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, chart.Event{Timestamp: d.CreatedAt, Category: d.Status})
	}
	return events, nil
}

func applicantQuery(f models.ApplicantFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Country != "" {
		filter["country"] = bson.M{"$regex": utils.EscapeRegex(f.Country), "$options": "i"}
	}
	if f.ExperienceLevel != "" {
		filter["experienceLevel"] = f.ExperienceLevel
	}
	if f.Availability != "" {
		filter["availability"] = f.Availability
	}
	if f.MinSalary != nil || f.MaxSalary != nil {
		salary := bson.M{}
		if f.MinSalary != nil {
			salary["$gte"] = *f.MinSalary
		}
		if f.MaxSalary != nil {
			salary["$lte"] = *f.MaxSalary
		}
		filter["salaryExpectation"] = salary
	}
	if f.CasinoExperience != nil {
		filter["casinoExperience"] = *f.CasinoExperience
	}
	if f.IgamingExperience != nil {
		filter["strokeIgaming"] = *f.IgamingExperience
	}
	if f.Search != "" {
		re := bson.M{"$regex": utils.EscapeRegex(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"fullname": re},
			bson.M{"email": re},
			bson.M{"previousCompany": re},
			bson.M{"telegramUsername": re},
		}
	}
	return filter
}
