package controllers_test

import (
	"fmt"
	"testing"

	"lms/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createMaterial(t *testing.T, db *gorm.DB, title string) models.Material {
	t.Helper()
	material := models.Material{Title: title, MaterialType: "url", URL: "https://example.com"}
	require.NoError(t, db.Create(&material).Error)
	return material
}

func TestUpdateManualProgressValidation(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")
	path := fmt.Sprintf("/api/materials/%d/progress", material.ID)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"fractional rate", map[string]interface{}{"progressRate": 50.5}},
		{"negative rate", map[string]interface{}{"progressRate": -10}},
		{"rate above 100", map[string]interface{}{"progressRate": 150}},
		{"missing rate", map[string]interface{}{"notes": "no rate"}},
		{"negative minutes", map[string]interface{}{"progressRate": 50, "spentMinutes": -5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, "PUT", path, token, tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			// Отклонённая отправка не доходит до журнала
			var count int64
			db.Model(&models.ProgressHistory{}).Count(&count)
			assert.Zero(t, count)
		})
	}
}

func TestUpdateManualProgressUnauthorized(t *testing.T) {
	app, db, _ := newTestApp(t)
	material := createMaterial(t, db, "Reading")

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/materials/%d/progress", material.ID), "",
		map[string]interface{}{"progressRate": 50})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateManualProgressAndHistory(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")
	material := createMaterial(t, db, "Reading")
	path := fmt.Sprintf("/api/materials/%d/progress", material.ID)

	resp := doJSON(t, app, "PUT", path, token, map[string]interface{}{
		"progressRate": 40,
		"spentMinutes": 15,
		"notes":        "first pass",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(40), data["progressRate"])
	assert.Equal(t, float64(15), data["spentMinutes"])
	assert.Equal(t, false, data["isCompleted"])
	progressID := int(data["progressId"].(float64))

	// Ставка 100 завершает материал
	resp = doJSON(t, app, "PUT", path, token, map[string]interface{}{"progressRate": 100})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, true, data["isCompleted"])

	// Журнал: новые записи первыми
	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/progress/%d/history", progressID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeBody(t, resp)["data"].([]interface{})
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, float64(100), first["progressRate"])
	second := entries[1].(map[string]interface{})
	assert.Equal(t, float64(40), second["progressRate"])
	assert.Equal(t, "first pass", second["notes"])

	// Последняя запись совпадает с головой журнала
	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/progress/%d/history/latest", progressID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	latest := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, first["id"], latest["id"])
}

func TestGetProgressHistoryEmpty(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")

	resp := doJSON(t, app, "GET", "/api/progress/999/history", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeBody(t, resp)["data"].([]interface{})
	assert.Empty(t, entries)

	resp = doJSON(t, app, "GET", "/api/progress/999/history/latest", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, decodeBody(t, resp)["data"])
}

func TestGetMaterialHistoryAnnotated(t *testing.T) {
	app, db, cfg := newTestApp(t)
	me, token := createTestUser(t, db, cfg, "student", "user")
	_, otherToken := createTestUser(t, db, cfg, "other", "user")
	material := createMaterial(t, db, "Reading")
	path := fmt.Sprintf("/api/materials/%d/progress", material.ID)

	resp := doJSON(t, app, "PUT", path, token, map[string]interface{}{"progressRate": 25})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, "PUT", path, otherToken, map[string]interface{}{"progressRate": 90})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Только свой журнал по материалу, с идентичностью агрегата
	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/materials/%d/history", material.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeBody(t, resp)["data"].([]interface{})
	require.Len(t, entries, 1)

	entry := entries[0].(map[string]interface{})
	assert.Equal(t, float64(25), entry["progressRate"])
	progress := entry["progress"].(map[string]interface{})
	assert.Equal(t, float64(me.ID), progress["userId"])
	assert.Equal(t, float64(material.ID), progress["materialId"])
}

func TestGetUserHistoryAcrossMaterials(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")
	first := createMaterial(t, db, "Reading")
	second := createMaterial(t, db, "Video")

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/materials/%d/progress", first.ID), token,
		map[string]interface{}{"progressRate": 10})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/materials/%d/progress", second.ID), token,
		map[string]interface{}{"progressRate": 20})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/user/history", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeBody(t, resp)["data"].([]interface{})
	assert.Len(t, entries, 2)
}
