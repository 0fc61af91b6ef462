package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// UserRepository stores users in the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, email, password_hash, role, created_at"

func scanUser(row scanner) (models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return models.User{}, mapScanErr(err)
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		// Treated as absent so a corrupt record fails login like any unknown account.
		log.Warn().Err(err).Str("user_id", user.ID).Msg("User record has an unknown role")
		return models.User{}, fmt.Errorf("user %s: %w", user.ID, repository.ErrNotFound)
	}
	user.Role = parsed
	return user, nil
}

// FindByEmail retrieves a single user by email, including the password hash.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// FindByID retrieves a single user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// Insert creates a user. A taken email yields repository.ErrDuplicate.
func (r *UserRepository) Insert(ctx context.Context, user models.User) (models.User, error) {
	user.ID = uuid.New().String()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users("+userColumns+") VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		return models.User{}, mapWriteErr(err)
	}
	return user, nil
}
