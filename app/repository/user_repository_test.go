package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/saasbase/app/models"
	"github.com/ManuelReschke/saasbase/internal/pkg/database"
)

// openTestDB connects to the database named by TEST_DB_DSN and skips the
// test when none is configured or reachable.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL-dependent test: TEST_DB_DSN not set")
	}
	db, err := database.Open(dsn)
	if err != nil {
		t.Skipf("Skipping MySQL-dependent test: %v", err)
	}
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE email LIKE ?", "%@repo-test.local")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := models.NewUser(uuid.NewString(), "Repo Test", email, "cus_"+uuid.NewString())
	require.NoError(t, err)
	return u
}

func TestUserRepositoryCreateIfAbsent(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	email := uuid.NewString() + "@repo-test.local"
	first := newTestUser(t, email)

	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := newTestUser(t, email)
	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created, "second insert for the same email must be ignored")

	stored, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, models.PlanNone, stored.Plan)
}

func TestUserRepositoryGetByEmailNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByEmail(context.Background(), "missing-"+uuid.NewString()+"@repo-test.local")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserRepositoryTouchLastLogin(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newTestUser(t, uuid.NewString()+"@repo-test.local")
	_, err := repo.CreateIfAbsent(ctx, u)
	require.NoError(t, err)

	require.NoError(t, repo.TouchLastLogin(ctx, u.ID))

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}
