package users

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

var ErrConflict = errors.New("user conflict")

// User owns the location profile the event ranking resolver reads.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Latitude     *float64
	Longitude    *float64
	City         *string
	Country      *string
	IsAdmin      bool
	CreatedAt    time.Time
}

type UserParams struct {
	Email        string
	Name         string
	PasswordHash string
	Latitude     *float64
	Longitude    *float64
	City         *string
	Country      *string
}

// LocationParams updates only the location profile.
type LocationParams struct {
	Latitude  *float64
	Longitude *float64
	City      *string
	Country   *string
}

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, params UserParams) (*User, error)
	Update(ctx context.Context, id int64, params UserParams) (*User, error)
	UpdateLocation(ctx context.Context, id int64, params LocationParams) (*User, error)
	Delete(ctx context.Context, id int64) error
}
