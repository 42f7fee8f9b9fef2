package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tchasinga/adminjobposter/internal/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetName("idx_google_id").SetSparse(true),
		},
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	// If ID is not set, generate a new one
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return duplicateEmail(err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error {
	return r.set(ctx, userID, bson.M{"refreshToken": refreshToken})
}

// LinkGoogle attaches a Google identity to an existing account.
func (r *UserRepository) LinkGoogle(ctx context.Context, userID, googleID, picture string) error {
	fields := bson.M{"googleId": googleID}
	if picture != "" {
		fields["picture"] = picture
	}
	return r.set(ctx, userID, fields)
}

// IncrementLoginAttempts atomically bumps the failure counter and returns
// the new value.
func (r *UserRepository) IncrementLoginAttempts(ctx context.Context, userID string) (int, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, err
	}
	update := bson.M{
		"$inc": bson.M{"loginAttempts": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"loginAttempts": 1})

	var doc struct {
		LoginAttempts int `bson:"loginAttempts"`
	}
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return 0, notFound(err)
	}
	return doc.LoginAttempts, nil
}

func (r *UserRepository) LockAccount(ctx context.Context, userID string, until time.Time) error {
	return r.set(ctx, userID, bson.M{"lockedUntil": until})
}

func (r *UserRepository) ResetLoginAttempts(ctx context.Context, userID string) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set":   bson.M{"loginAttempts": 0, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"lockedUntil": ""},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *UserRepository) set(ctx context.Context, userID string, fields bson.M) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	fields["updatedAt"] = time.Now().UTC()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
