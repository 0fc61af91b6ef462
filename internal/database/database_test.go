package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/isdelr/storefront-be/internal/config"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesDirectoryAndSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "shop.db")

	stores, err := Open(ctx, &config.Config{DatabaseDriver: config.DriverSQLite, DatabasePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close(ctx) })

	require.NoError(t, stores.Ping(ctx))

	user, err := stores.Users.Insert(ctx, models.User{Name: "Ana", Email: "ana@x.com", PasswordHash: "h", Role: models.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.FileExists(t, path)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DatabaseDriver: "postgres"})
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestConnectMongoRequiresURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "")
	assert.Error(t, err)
}
