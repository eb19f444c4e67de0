package seed_test

import (
	"context"
	"path/filepath"
	"testing"

	"resumebuilder/internal/database"
	"resumebuilder/internal/models"
	"resumebuilder/internal/repositories"
	"resumebuilder/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "seed.db") + "?_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	users := repositories.NewGORMUserRepository(db)
	resumes := repositories.NewGORMResumeRepository(db)

	require.NoError(t, seed.Run(ctx, users, resumes, bcrypt.MinCost))

	john, err := users.GetByIdentifier(ctx, "test@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(john.Password), []byte("password123")))

	demo, err := users.GetByIdentifier(ctx, "+9876543210")
	require.NoError(t, err)
	assert.Nil(t, demo.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(demo.Password), []byte("demo123")))

	resume, err := resumes.GetByUserID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, seed.DemoResume().Summary, resume.Summary)
	assert.Len(t, resume.Skills, 5)

	// A second run leaves the data alone.
	require.NoError(t, seed.Run(ctx, users, resumes, bcrypt.MinCost))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
