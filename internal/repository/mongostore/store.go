// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"github.com/isdelr/storefront-be/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names. They match the ones the site has always used.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	PostsCollection    = "posts"
	EventsCollection   = "events"
)

// New builds the repository bundle on db. Close disconnects the owning client.
func New(db *mongo.Database) repository.Stores {
	return repository.Stores{
		Users:    NewUserRepository(db.Collection(UsersCollection)),
		Products: NewProductRepository(db.Collection(ProductsCollection)),
		Posts:    NewPostRepository(db.Collection(PostsCollection)),
		Events:   NewEventRepository(db.Collection(EventsCollection)),
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func mapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}
