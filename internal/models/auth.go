package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest carries the portal credential used to confirm a student.
type RegisterRequest struct {
	StudentID string `json:"student_id" validate:"required,numeric,min=4,max=20"`
	Password  string `json:"password" validate:"required"`
	Grade     int    `json:"grade,omitempty" validate:"omitempty,min=1000,max=9999"`
}

// SessionResponse returns the issued gateway token and the confirmed user.
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        User      `json:"user"`
}

// SessionClaims represents the JWT payload for gateway access tokens.
type SessionClaims struct {
	StudentID string `json:"student_id"`
	Grade     int    `json:"grade"`
	jwt.RegisteredClaims
}
