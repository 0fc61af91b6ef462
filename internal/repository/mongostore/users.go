package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Type      string             `bson:"type"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) toModel() (models.User, error) {
	role, err := models.ParseRole(d.Type)
	if err != nil {
		// Treated as absent so a corrupt record fails login like any unknown account.
		log.Warn().Err(err).Str("user_id", d.ID.Hex()).Msg("User record has an unknown type")
		return models.User{}, fmt.Errorf("user %s: %w", d.ID.Hex(), repository.ErrNotFound)
	}
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         role,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// UserRepository stores users in a collection with a unique index on email.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a UserRepository on coll.
func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

// FindByEmail loads a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByID loads a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.User{}, mapFindErr(err)
	}
	return doc.toModel()
}

// Insert adds a new user. A taken email yields repository.ErrDuplicate.
func (r *UserRepository) Insert(ctx context.Context, user models.User) (models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	doc := userDoc{
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Type:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.User{}, mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return user, nil
}
