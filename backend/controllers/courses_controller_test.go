package controllers_test

import (
	"fmt"
	"testing"

	"lms/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, userToken := createTestUser(t, db, cfg, "student", "user")
	admin, adminToken := createTestUser(t, db, cfg, "admin", "admin")

	body := map[string]interface{}{
		"Title":      "Go for beginners",
		"ShortDesc":  "Short description",
		"Difficulty": "beginner",
		"Topic":      "Programming",
	}

	resp := doJSON(t, app, "POST", "/api/admin/courses", userToken, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/admin/courses", adminToken, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, "Course created", result["message"])
	course := result["course"].(map[string]interface{})
	assert.Equal(t, "Go for beginners", course["Title"])
	assert.Equal(t, float64(admin.ID), course["AuthorID"])
}

func TestCreateCourseRequiresTitle(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createTestUser(t, db, cfg, "admin", "admin")

	resp := doJSON(t, app, "POST", "/api/admin/courses", adminToken,
		map[string]interface{}{"ShortDesc": "no title"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetCoursesOnlyPublished(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")

	require.NoError(t, db.Create(&models.Course{Title: "Published", IsPublished: true}).Error)
	require.NoError(t, db.Create(&models.Course{Title: "Draft"}).Error)

	resp := doJSON(t, app, "GET", "/api/courses", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	courses := decodeBody(t, resp)["data"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, "Published", courses[0].(map[string]interface{})["title"])
}

func TestGetCourseDetailsWithProgress(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createTestUser(t, db, cfg, "student", "user")

	course := models.Course{Title: "Go", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	lesson := models.Lesson{CourseID: course.ID, Title: "Basics", SequenceOrder: 1}
	require.NoError(t, db.Create(&lesson).Error)
	material := models.Material{LessonID: lesson.ID, Title: "Intro", MaterialType: "url"}
	require.NoError(t, db.Create(&material).Error)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/materials/%d/progress", material.ID), token,
		map[string]interface{}{"progressRate": 100})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/courses/%d", course.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	progress := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(1), progress["materials_total"])
	assert.Equal(t, float64(1), progress["materials_completed"])
}

func TestAddLessonSequenceOrder(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createTestUser(t, db, cfg, "admin", "admin")

	course := models.Course{Title: "Go"}
	require.NoError(t, db.Create(&course).Error)

	path := fmt.Sprintf("/api/admin/courses/%d/lessons", course.ID)

	resp := doJSON(t, app, "POST", path, adminToken, map[string]interface{}{"Title": "First"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	lesson := decodeBody(t, resp)["lesson"].(map[string]interface{})
	assert.Equal(t, float64(1), lesson["SequenceOrder"])

	resp = doJSON(t, app, "POST", path, adminToken, map[string]interface{}{"Title": "Second"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	lesson = decodeBody(t, resp)["lesson"].(map[string]interface{})
	assert.Equal(t, float64(2), lesson["SequenceOrder"])
}
