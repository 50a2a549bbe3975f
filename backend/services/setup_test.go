package services

import (
	"lms/backend/config"
	"lms/backend/utils"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB поднимает изолированную in-memory базу для одного теста.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:               "testsecret",
		RecordUnchangedProgress: true,
	}
}
