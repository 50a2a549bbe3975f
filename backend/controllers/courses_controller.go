package controllers

import (
	"errors"
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	topic := c.Query("topic")
	search := c.Query("search")

	query := cc.DB.Model(&models.Course{}).Where("is_published = ?", true)

	if topic != "" {
		query = query.Where("LOWER(topic) LIKE ?", "%"+strings.ToLower(topic)+"%")
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(short_desc) LIKE ?", pattern, pattern)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"short_desc":  course.ShortDesc,
			"difficulty":  course.Difficulty,
			"topic":       course.Topic,
			"logo_url":    course.LogoURL,
			"created_at":  course.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("lessons.sequence_order ASC")
	}).Preload("Lessons.Materials").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// Прогресс пользователя по материалам курса
	materialIDs := []uint{}
	for _, lesson := range course.Lessons {
		for _, m := range lesson.Materials {
			materialIDs = append(materialIDs, m.ID)
		}
	}

	progressByMaterial := map[uint]models.MaterialProgress{}
	if len(materialIDs) > 0 {
		var progresses []models.MaterialProgress
		cc.DB.Where("user_id = ? AND material_id IN ?", userID, materialIDs).Find(&progresses)
		for _, p := range progresses {
			progressByMaterial[p.MaterialID] = p
		}
	}

	completed := 0
	for _, p := range progressByMaterial {
		if p.IsCompleted {
			completed++
		}
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"short_desc":  course.ShortDesc,
			"description": course.Description,
			"difficulty":  course.Difficulty,
			"topic":       course.Topic,
			"logo_url":    course.LogoURL,
			"author":      course.AuthorID,
			"lessons":     course.Lessons,
		},
		"progress": fiber.Map{
			"materials_total":     len(materialIDs),
			"materials_completed": completed,
		},
	})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if course.Title == "" {
		return utils.BadRequest(c, "title is required")
	}

	course.AuthorID = userID
	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	type CourseInput struct {
		Title       *string `json:"title"`
		ShortDesc   *string `json:"short_desc"`
		Description *string `json:"description"`
		Difficulty  *string `json:"difficulty"`
		Topic       *string `json:"topic"`
		LogoURL     *string `json:"logo_url"`
		IsPublished *bool   `json:"is_published"`
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.ShortDesc != nil {
		course.ShortDesc = *input.ShortDesc
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Difficulty != nil {
		course.Difficulty = *input.Difficulty
	}
	if input.Topic != nil {
		course.Topic = *input.Topic
	}
	if input.LogoURL != nil {
		course.LogoURL = *input.LogoURL
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var lesson models.Lesson
	if err := c.BodyParser(&lesson); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	lesson.CourseID = course.ID
	if lesson.SequenceOrder == 0 {
		var count int64
		cc.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&count)
		lesson.SequenceOrder = int(count) + 1
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return c.JSON(fiber.Map{
		"message": "Lesson added",
		"lesson":  lesson,
	})
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := cc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	type LessonInput struct {
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		Content       *string `json:"content"`
		SequenceOrder *int    `json:"sequence_order"`
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Description != nil {
		lesson.Description = *input.Description
	}
	if input.Content != nil {
		lesson.Content = *input.Content
	}
	if input.SequenceOrder != nil {
		lesson.SequenceOrder = *input.SequenceOrder
	}

	if err := cc.DB.Save(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not update lesson")
	}

	return c.JSON(fiber.Map{
		"message": "Lesson updated",
		"lesson":  lesson,
	})
}
