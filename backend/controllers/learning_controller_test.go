package controllers_test

import (
	"bytes"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"lms/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAccessRow(t *testing.T, db *gorm.DB, userID, materialID uint, at time.Time, accessType string, minutes int) {
	t.Helper()
	require.NoError(t, db.Create(&models.MaterialAccess{
		UserID:       userID,
		MaterialID:   materialID,
		AccessType:   accessType,
		SpentMinutes: minutes,
		AccessedAt:   at,
	}).Error)
}

func TestLearningSummaryEndpoint(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")

	now := time.Now()
	seedAccessRow(t, db, user.ID, material.ID, now.Add(-time.Hour), "view", 30)
	seedAccessRow(t, db, user.ID, material.ID, now.Add(-2*time.Hour), "complete", 10)

	resp := doJSON(t, app, "GET", "/api/learning/summary", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_access_count"])
	assert.Equal(t, float64(40), data["total_spent_minutes"])
	assert.Equal(t, float64(1), data["materials_completed"])
}

func TestLearningSummaryInvalidDate(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")

	resp := doJSON(t, app, "GET", "/api/learning/summary?startDate=bad", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLearningExportCSV(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")

	seedAccessRow(t, db, user.ID, material.ID, time.Now().Add(-time.Hour), "view", 75)

	resp := doJSON(t, app, "GET", "/api/learning/export/csv?type=daily", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "learning-daily.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1:15", rows[1][1])
}

func TestLearningExportCSVUnknownType(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")

	resp := doJSON(t, app, "GET", "/api/learning/export/csv?type=bogus", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLearningExportXLSX(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")
	seedAccessRow(t, db, user.ID, material.ID, time.Now().Add(-time.Hour), "view", 10)

	resp := doJSON(t, app, "GET", "/api/learning/export/xlsx", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "learning-report.xlsx")
}

func TestLearningAccessHistoryEndpoint(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")

	seedAccessRow(t, db, user.ID, material.ID, time.Now().Add(-time.Hour), "view", 30)
	// Чужие события не попадают в выдачу
	seedAccessRow(t, db, user.ID+1, material.ID, time.Now().Add(-time.Hour), "view", 99)

	resp := doJSON(t, app, "GET", "/api/learning/access-history", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	accesses := data["accesses"].([]interface{})
	require.Len(t, accesses, 1)
	access := accesses[0].(map[string]interface{})
	assert.Equal(t, "view", access["accessType"])
	assert.Equal(t, float64(30), access["spentMinutes"])

	daily := data["daily"].([]interface{})
	require.Len(t, daily, 1)
}
