package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username      string             `json:"username" bson:"username"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password,omitempty"` // Never send password to client
	Admin         bool               `json:"admins" bson:"admins"`
	Picture       string             `json:"picture,omitempty" bson:"picture,omitempty"`
	Provider      string             `json:"provider" bson:"provider"` // "email" or "google"
	GoogleID      string             `json:"-" bson:"googleId,omitempty"`
	LoginAttempts int                `json:"-" bson:"loginAttempts"`
	LockedUntil   *time.Time         `json:"-" bson:"lockedUntil,omitempty"`
	RefreshToken  string             `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleAuthRequest struct {
	Code string `json:"code" binding:"required"`
}

// AuthResponse is returned on signin; tokens also travel as HTTP-only cookies.
type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
