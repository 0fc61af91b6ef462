package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert lowercases email and returns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.Insert(context.Background(), models.User{
			Name:         "Ana",
			Email:        " Ana@X.com ",
			PasswordHash: "$2a$10$hash",
			Role:         models.RoleUser,
		})
		require.NoError(mt, err)
		assert.Equal(mt, "ana@x.com", user.Email)
		assert.NotEmpty(mt, user.ID)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate email maps to ErrDuplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shop.users index: email_1",
		}))

		_, err := repo.Insert(context.Background(), models.User{Name: "Ana", Email: "a@x.com", Role: models.RoleUser})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("find by email decodes the stored document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		oid := primitive.NewObjectID()
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Admin"},
			{Key: "email", Value: "admin@x.com"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "type", Value: "admin"},
			{Key: "createdAt", Value: created},
		}))

		user, err := repo.FindByEmail(context.Background(), "ADMIN@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), user.ID)
		assert.Equal(mt, models.RoleAdmin, user.Role)
		assert.Equal(mt, "$2a$10$hash", user.PasswordHash)
		assert.True(mt, created.Equal(user.CreatedAt))
	})

	mt.Run("unknown type maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "Eve"},
			{Key: "email", Value: "eve@x.com"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "type", Value: "superuser"},
		}))

		_, err := repo.FindByEmail(context.Background(), "eve@x.com")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("missing user maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("malformed id is not found without a round trip", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)

		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
