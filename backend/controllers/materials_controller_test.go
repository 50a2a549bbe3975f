package controllers_test

import (
	"fmt"
	"testing"

	"lms/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMaterialLogsView(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")

	resp := doJSON(t, app, "GET", fmt.Sprintf("/api/materials/%d", material.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var accesses []models.MaterialAccess
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&accesses).Error)
	require.Len(t, accesses, 1)
	assert.Equal(t, "view", accesses[0].AccessType)

	// Просмотр заводит агрегат прогресса
	var progress models.MaterialProgress
	require.NoError(t, db.Where("user_id = ? AND material_id = ?", user.ID, material.ID).
		First(&progress).Error)
	assert.False(t, progress.IsCompleted)
}

func TestLogAccessComplete(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")

	resp := doJSON(t, app, "POST", fmt.Sprintf("/api/materials/%d/access", material.ID), token,
		map[string]interface{}{"access_type": "complete", "spent_minutes": 20})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var progress models.MaterialProgress
	require.NoError(t, db.Where("user_id = ? AND material_id = ?", user.ID, material.ID).
		First(&progress).Error)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, float64(100), progress.ProgressRate)
	assert.Equal(t, 20, progress.SpentMinutes)
}

func TestLogAccessValidation(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")
	path := fmt.Sprintf("/api/materials/%d/access", material.ID)

	resp := doJSON(t, app, "POST", path, token,
		map[string]interface{}{"access_type": "bogus"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "POST", path, token,
		map[string]interface{}{"access_type": "view", "spent_minutes": -1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAddMaterialRequiresAdmin(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, userToken := createTestUser(t, db, cfg, "student", "user")
	_, adminToken := createTestUser(t, db, cfg, "admin", "admin")

	course := models.Course{Title: "Go", AuthorID: 1}
	require.NoError(t, db.Create(&course).Error)
	lesson := models.Lesson{CourseID: course.ID, Title: "Basics", SequenceOrder: 1}
	require.NoError(t, db.Create(&lesson).Error)

	body := map[string]interface{}{
		"Title":        "Slides",
		"MaterialType": "file",
		"FilePath":     "/tmp/slides.pdf",
	}
	path := fmt.Sprintf("/api/admin/lessons/%d/materials", lesson.ID)

	resp := doJSON(t, app, "POST", path, userToken, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", path, adminToken, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, "Material added", result["message"])
}

func TestDeleteMaterialCascadesProgress(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, userToken := createTestUser(t, db, cfg, "student", "user")
	_, adminToken := createTestUser(t, db, cfg, "admin", "admin")
	material := createMaterial(t, db, "Reading")

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/materials/%d/progress", material.ID), userToken,
		map[string]interface{}{"progressRate": 30})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/materials/%d/progress", material.ID), userToken,
		map[string]interface{}{"progressRate": 60})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/admin/materials/%d", material.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["deleted_history_entries"])

	var histories int64
	db.Model(&models.ProgressHistory{}).Count(&histories)
	assert.Zero(t, histories)
	var progresses int64
	db.Model(&models.MaterialProgress{}).Count(&progresses)
	assert.Zero(t, progresses)
}
