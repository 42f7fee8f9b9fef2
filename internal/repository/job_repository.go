package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

// JobRepository handles job posting persistence
type JobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{
		collection: db.Collection("jobs"),
	}
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("idx_updated_at"),
		},
		{
			Keys:    bson.D{{Key: "typeofcarees", Value: 1}},
			Options: options.Index().SetName("idx_type"),
		},
	})
	return err
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var job models.Job
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&job); err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

// List returns jobs matching f, newest first. Salary bounds are compared
// numerically after parsing, since salaries are stored as display strings.
func (r *JobRepository) List(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, jobQuery(f), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []*models.Job{}
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}

	if f.SalaryMin == "" && f.SalaryMax == "" {
		return jobs, nil
	}
	filtered := jobs[:0]
	for _, j := range jobs {
		if salaryInRange(j.Salary, f.SalaryMin, f.SalaryMax) {
			filtered = append(filtered, j)
		}
	}
	return filtered, nil
}

// Update applies set to the job and returns the updated document.
func (r *JobRepository) Update(ctx context.Context, id string, set bson.M) (*models.Job, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	fields := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var job models.Job
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&job); err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

func (r *JobRepository) Close(ctx context.Context, id string) (*models.Job, error) {
	return r.Update(ctx, id, bson.M{
		"status":   models.JobStatusClosed,
		"closedAt": time.Now().UTC(),
	})
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// LatestUpdate returns the newest updatedAt across all jobs, or the zero time
// when the collection is empty.
func (r *JobRepository) LatestUpdate(ctx context.Context) (time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"updatedAt": 1})

	var doc struct {
		UpdatedAt time.Time `bson:"updatedAt"`
	}
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return doc.UpdatedAt, nil
}

func jobQuery(f models.JobFilter) bson.M {
	filter := bson.M{}
	if f.Title != "" {
		filter["title"] = bson.M{"$regex": utils.EscapeRegex(f.Title), "$options": "i"}
	}
	if f.TypeOfCarees != "" {
		filter["typeofcarees"] = f.TypeOfCarees
	}
	if f.TypeOfWorks != "" {
		filter["typeofworks"] = f.TypeOfWorks
	}
	if f.Country != "" {
		filter["country"] = f.Country
	}
	if f.ContractTerm != "" {
		filter["contractTerm"] = f.ContractTerm
	}
	return filter
}

func salaryInRange(salary, minRaw, maxRaw string) bool {
	amount, ok := utils.ParseAmount(salary)
	if !ok {
		return false
	}
	if lo, ok := utils.ParseAmount(minRaw); ok && amount.LessThan(lo) {
		return false
	}
	if hi, ok := utils.ParseAmount(maxRaw); ok && amount.GreaterThan(hi) {
		return false
	}
	return true
}
