// Package repository defines the persistence contracts used by the services.
// mongostore and sqlitestore provide the implementations.
package repository

import (
	"context"
	"errors"

	"github.com/isdelr/storefront-be/internal/models"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository is the credential store. Emails are stored lowercased and
// the store enforces their uniqueness.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Insert(ctx context.Context, user models.User) (models.User, error)
}

// ProductRepository persists catalogue products.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, id string, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// PostRepository persists blog posts.
type PostRepository interface {
	List(ctx context.Context, category string) ([]models.Post, error)
	GetBySlug(ctx context.Context, slug string) (models.Post, error)
	Create(ctx context.Context, post models.Post) (models.Post, error)
	Update(ctx context.Context, id string, post models.Post) (models.Post, error)
	Delete(ctx context.Context, id string) error
	// ReplaceAll removes every post and inserts posts in their place.
	ReplaceAll(ctx context.Context, posts []models.Post) (int, error)
	Count(ctx context.Context) (int64, error)
}

// EventRepository persists the activity log.
type EventRepository interface {
	Create(ctx context.Context, event models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// Stores bundles every repository backed by one database handle.
type Stores struct {
	Users    UserRepository
	Products ProductRepository
	Posts    PostRepository
	Events   EventRepository

	// Ping checks the underlying database.
	Ping func(ctx context.Context) error
	// Close releases the underlying database handle.
	Close func(ctx context.Context) error
}
